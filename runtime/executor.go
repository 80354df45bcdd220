package runtime

import (
	"fmt"

	"github.com/blockberries/pallets"
)

// Outcome records the result of one extrinsic of a block.
type Outcome struct {
	Index  int
	Caller AccountID
	Module string
	Call   string
	Err    error
}

// OK returns true if the extrinsic succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Receipt collects the outcome of every extrinsic of an executed block.
type Receipt struct {
	BlockNumber BlockNumber
	Outcomes    []Outcome
}

// Failed returns the outcomes of the extrinsics that failed.
func (r Receipt) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// ExecuteBlock advances the height, checks the block's declared height
// against it and applies every extrinsic in order.
//
// A height mismatch rejects the whole block with a
// *pallets.BlockNumberMismatchError before any extrinsic runs. The height
// has already advanced at that point and is not rolled back, so a
// rejected block still consumes its slot. Package node commits that
// height at once; see pallets.Lifecycle.ExecuteBlock.
//
// A runtime already at the largest BlockNumber refuses every block with
// pallets.ErrCounterOverflow and is left untouched.
//
// A failing extrinsic is logged and recorded in the receipt; it does not
// stop the remaining extrinsics. The returned error is only ever the
// mismatch or the overflow.
func (rt *Runtime) ExecuteBlock(block Block) (Receipt, error) {
	if err := rt.System.IncBlockNumber(); err != nil {
		rt.logger.Warn("block refused",
			"height", rt.System.BlockNumber(),
			"declared", block.Header.BlockNumber,
			"err", err,
		)
		return Receipt{BlockNumber: rt.System.BlockNumber()}, fmt.Errorf("advance block number: %w", err)
	}
	height := rt.System.BlockNumber()
	receipt := Receipt{BlockNumber: height}

	if block.Header.BlockNumber != height {
		err := pallets.NewBlockNumberMismatchError(uint64(height), uint64(block.Header.BlockNumber))
		rt.logger.Warn("block rejected",
			"height", height,
			"declared", block.Header.BlockNumber,
			"extrinsics", len(block.Extrinsics),
			"err", err,
		)
		return receipt, err
	}

	receipt.Outcomes = make([]Outcome, 0, len(block.Extrinsics))
	for i, xt := range block.Extrinsics {
		err := rt.ApplyExtrinsic(xt)
		if err != nil {
			rt.logger.Warn("extrinsic failed",
				"index", i,
				"height", height,
				"caller", xt.Caller,
				"call", xt.Call.Name(),
				"err", err,
			)
		}
		receipt.Outcomes = append(receipt.Outcomes, Outcome{
			Index:  i,
			Caller: xt.Caller,
			Module: xt.Call.Module(),
			Call:   xt.Call.Name(),
			Err:    err,
		})
	}

	rt.logger.Debug("block executed",
		"height", height,
		"extrinsics", len(block.Extrinsics),
		"failed", len(receipt.Failed()),
	)
	return receipt, nil
}
