// Package support defines the envelope shapes shared by every pallet and
// the runtime: blocks, headers, extrinsics and the dispatch contract.
package support

// Header carries the height a block declares it executes at.
type Header[BlockNumber any] struct {
	BlockNumber BlockNumber
}

// Extrinsic is a caller-tagged request to invoke one call.
type Extrinsic[Caller, Call any] struct {
	Caller Caller
	Call   Call
}

// Block is an ordered batch of extrinsics plus a header.
type Block[BlockNumber, Caller, Call any] struct {
	Header     Header[BlockNumber]
	Extrinsics []Extrinsic[Caller, Call]
}

// NewBlock builds a block at the given height.
func NewBlock[BlockNumber, Caller, Call any](n BlockNumber, xts ...Extrinsic[Caller, Call]) Block[BlockNumber, Caller, Call] {
	return Block[BlockNumber, Caller, Call]{
		Header:     Header[BlockNumber]{BlockNumber: n},
		Extrinsics: xts,
	}
}

// Dispatch routes a call to the method that implements it. Call is a
// closed union of the implementor's operations; Dispatch matches on the
// variant and returns the method's error unchanged.
type Dispatch[Caller, Call any] interface {
	Dispatch(caller Caller, call Call) error
}
