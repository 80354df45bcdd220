package palletsgrpc

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Request wrappers for methods whose arguments are not a single struct.

// CheckTxRequest carries the arguments of CheckTx.
type CheckTxRequest struct {
	Tx      types.Tx             `cramberry:"1"`
	Context types.MempoolContext `cramberry:"2"`
}

// CommitRequest is the empty Commit request.
type CommitRequest struct{}

// SimulateRequest carries the argument of Simulate.
type SimulateRequest struct {
	Tx types.Tx `cramberry:"1"`
}

// Trailer keys carrying a rejected block's heights and the hash of the
// state its consumed height committed.
const (
	trailerExpected = "pallets-expected-height"
	trailerGot      = "pallets-declared-height"
	trailerAppHash  = "pallets-app-hash"
)

// toStatus converts an application error into a gRPC status. A height
// mismatch becomes FailedPrecondition with both heights in the trailer.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if m, ok := pallets.IsBlockNumberMismatch(err); ok {
		_ = grpc.SetTrailer(ctx, metadata.Pairs(
			trailerExpected, strconv.FormatUint(m.Expected, 10),
			trailerGot, strconv.FormatUint(m.Got, 10),
		))
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Unknown, err.Error())
}

// fromStatus restores a height mismatch from the trailer; other errors
// are returned unchanged.
func fromStatus(err error, trailer metadata.MD) error {
	if status.Code(err) != codes.FailedPrecondition {
		return err
	}
	expected, ok1 := trailerUint(trailer, trailerExpected)
	got, ok2 := trailerUint(trailer, trailerGot)
	if !ok1 || !ok2 {
		return err
	}
	return pallets.NewBlockNumberMismatchError(expected, got)
}

func trailerUint(md metadata.MD, key string) (uint64, bool) {
	vals := md.Get(key)
	if len(vals) != 1 {
		return 0, false
	}
	n, err := strconv.ParseUint(vals[0], 10, 64)
	return n, err == nil
}

// setRejectedTrailer records the app hash of a rejected block's outcome.
func setRejectedTrailer(ctx context.Context, outcome types.BlockOutcome) {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(trailerAppHash, hex.EncodeToString(outcome.AppHash[:])))
}

// rejectedOutcome rebuilds the outcome of a rejected block: the consumed
// height and, when the server sent it, the resulting app hash.
func rejectedOutcome(err error, md metadata.MD) types.BlockOutcome {
	m, ok := pallets.IsBlockNumberMismatch(err)
	if !ok {
		return types.BlockOutcome{}
	}
	out := types.BlockOutcome{Height: m.Expected}
	if vals := md.Get(trailerAppHash); len(vals) == 1 {
		if b, err := hex.DecodeString(vals[0]); err == nil && len(b) == len(out.AppHash) {
			copy(out.AppHash[:], b)
		}
	}
	return out
}
