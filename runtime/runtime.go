// Package runtime composes the system, balances and proof-of-existence
// pallets into one state machine, routes runtime calls to the owning
// pallet and executes blocks.
//
// A Runtime is not safe for concurrent use. Extrinsics must be observed
// in submission order, so callers that need concurrency (see package
// node) serialise access and execute on a Clone.
package runtime

import (
	"log/slog"

	"github.com/blockberries/pallets/balances"
	"github.com/blockberries/pallets/claims"
	"github.com/blockberries/pallets/support"
	"github.com/blockberries/pallets/system"
)

var _ support.Dispatch[AccountID, RuntimeCall] = (*Runtime)(nil)

// Runtime aggregates one instance of every pallet.
type Runtime struct {
	System           *system.Pallet[AccountID, BlockNumber, Nonce]
	Balances         *balances.Pallet[AccountID, Balance]
	ProofOfExistence *claims.Pallet[AccountID, Content]

	logger *slog.Logger
}

// New creates a runtime with empty state at height zero.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		System:           system.New[AccountID, BlockNumber, Nonce](),
		Balances:         balances.New[AccountID, Balance](),
		ProofOfExistence: claims.New[AccountID, Content](),
		logger:           discardLogger(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Clone returns a deep copy sharing the logger.
func (rt *Runtime) Clone() *Runtime {
	return &Runtime{
		System:           rt.System.Clone(),
		Balances:         rt.Balances.Clone(),
		ProofOfExistence: rt.ProofOfExistence.Clone(),
		logger:           rt.logger,
	}
}

// Dispatch forwards call to the pallet it is tagged with. Pallet errors
// are returned unchanged.
func (rt *Runtime) Dispatch(caller AccountID, call RuntimeCall) error {
	if err := call.Validate(); err != nil {
		return err
	}
	switch {
	case call.Balances != nil:
		return rt.Balances.Dispatch(caller, *call.Balances)
	default:
		return rt.ProofOfExistence.Dispatch(caller, *call.ProofOfExistence)
	}
}

// ApplyExtrinsic advances the caller's nonce and dispatches the call. The
// nonce advances whether or not the call succeeds. A caller whose nonce is
// at its maximum gets pallets.ErrCounterOverflow and the call is not
// dispatched.
func (rt *Runtime) ApplyExtrinsic(xt Extrinsic) error {
	if err := rt.System.IncNonce(xt.Caller); err != nil {
		return err
	}
	return rt.Dispatch(xt.Caller, xt.Call)
}
