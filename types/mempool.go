package types

// MempoolContext says why CheckTx is being called.
type MempoolContext uint8

const (
	MempoolFirstSeen    MempoolContext = 1
	MempoolRevalidation MempoolContext = 2
)

// GateVerdict is the result of decoding an extrinsic ahead of execution.
// Acceptance means the bytes form a well-tagged call; it says nothing
// about whether the call will succeed.
type GateVerdict struct {
	// 0 accepts; otherwise a pallets.ErrorKind.
	Code uint32 `cramberry:"1"`
	Info string `cramberry:"2"`
	// Caller of the decoded extrinsic.
	Sender string `cramberry:"3"`
}

// Accepted reports whether the extrinsic decoded.
func (v GateVerdict) Accepted() bool { return v.Code == 0 }
