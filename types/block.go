package types

import "time"

// Timestamp is a block production time as whole seconds since the Unix
// epoch plus nanoseconds. The runtime never reads it; it is carried for
// logs and drivers.
type Timestamp struct {
	Seconds int64 `cramberry:"1"`
	Nanos   int32 `cramberry:"2"`
}

// TimeToTimestamp truncates t to a Timestamp.
func TimeToTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// ToTime returns ts in UTC.
func (ts Timestamp) ToTime() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// IsZero reports whether the producer left the time unset.
func (ts Timestamp) IsZero() bool { return ts.Seconds == 0 && ts.Nanos == 0 }

// TxOutcome is the result of executing a single extrinsic.
type TxOutcome struct {
	// Position of this tx in the block (0-indexed).
	Index uint32 `cramberry:"1"`
	// Error kind of the dispatch (pallets.ErrorKind). 0 = success.
	Code uint32 `cramberry:"2"`
	// Human-readable result info (for debugging).
	Info string `cramberry:"3"`
	// Encoded caller of the extrinsic, empty if the tx did not decode.
	Caller string `cramberry:"4"`
	// Events emitted by this extrinsic.
	Events []Event `cramberry:"5"`
}

// OK returns true if the extrinsic executed successfully.
func (t TxOutcome) OK() bool { return t.Code == 0 }

// BlockOutcome is the output of executing a finalized block.
type BlockOutcome struct {
	// Per-extrinsic results, in block order.
	TxOutcomes []TxOutcome `cramberry:"1"`
	// Block-level events.
	BlockEvents []Event `cramberry:"2"`
	// Runtime state fingerprint after this block.
	AppHash AppHash `cramberry:"3"`
	// Height the runtime reached while executing this block.
	Height uint64 `cramberry:"4"`
}

// Failed returns the outcomes that did not succeed.
func (b BlockOutcome) Failed() []TxOutcome {
	var out []TxOutcome
	for _, o := range b.TxOutcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// FinalizedBlock is an ordered batch of encoded extrinsics plus the
// height its producer expects it to execute at.
type FinalizedBlock struct {
	Height uint64    `cramberry:"1"`
	Time   Timestamp `cramberry:"2"`
	Txs    []Tx      `cramberry:"3"`
}

// CommitResult is returned after the application commits staged state.
type CommitResult struct {
	// Height of the committed state.
	Height uint64 `cramberry:"1"`
	// Fingerprint of the committed state.
	AppHash AppHash `cramberry:"2"`
}
