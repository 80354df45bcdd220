package runtime

import (
	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/balances"
	"github.com/blockberries/pallets/claims"
	"github.com/blockberries/pallets/support"
)

// Module names used in logs, metrics and the wire format.
const (
	ModuleBalances         = "balances"
	ModuleProofOfExistence = "proof_of_existence"
)

// RuntimeCall is the union of every pallet's call type, tagged by pallet.
// Exactly one field is set.
type RuntimeCall struct {
	Balances         *balances.Call[AccountID, Balance]
	ProofOfExistence *claims.Call[Content]
}

// Extrinsic is a runtime-level operation.
type Extrinsic = support.Extrinsic[AccountID, RuntimeCall]

// Block is a runtime-level block.
type Block = support.Block[BlockNumber, AccountID, RuntimeCall]

// NewBlock builds a block declaring height n.
func NewBlock(n BlockNumber, xts ...Extrinsic) Block {
	return support.NewBlock(n, xts...)
}

// Transfer builds a balances transfer extrinsic.
func Transfer(caller, to AccountID, amount Balance) Extrinsic {
	call := balances.TransferCall(to, amount)
	return Extrinsic{Caller: caller, Call: RuntimeCall{Balances: &call}}
}

// CreateClaim builds a proof-of-existence create extrinsic.
func CreateClaim(caller AccountID, claim Content) Extrinsic {
	call := claims.CreateClaimCall(claim)
	return Extrinsic{Caller: caller, Call: RuntimeCall{ProofOfExistence: &call}}
}

// RevokeClaim builds a proof-of-existence revoke extrinsic.
func RevokeClaim(caller AccountID, claim Content) Extrinsic {
	call := claims.RevokeClaimCall(claim)
	return Extrinsic{Caller: caller, Call: RuntimeCall{ProofOfExistence: &call}}
}

// Module returns the name of the pallet the call is routed to, empty
// unless exactly one pallet is tagged.
func (c RuntimeCall) Module() string {
	if c.modules() != 1 {
		return ""
	}
	switch {
	case c.Balances != nil:
		return ModuleBalances
	default:
		return ModuleProofOfExistence
	}
}

// Name returns the pallet-local operation name.
func (c RuntimeCall) Name() string {
	if c.modules() != 1 {
		return ""
	}
	switch {
	case c.Balances != nil:
		return c.Balances.Name()
	default:
		return c.ProofOfExistence.Name()
	}
}

// Validate checks that exactly one pallet is tagged and that the pallet
// call itself has exactly one variant. It returns pallets.ErrEmptyCall or
// pallets.ErrAmbiguousCall otherwise.
func (c RuntimeCall) Validate() error {
	switch c.modules() {
	case 0:
		return pallets.ErrEmptyCall
	case 1:
	default:
		return pallets.ErrAmbiguousCall
	}
	switch {
	case c.Balances != nil:
		return c.Balances.Validate()
	default:
		return c.ProofOfExistence.Validate()
	}
}

func (c RuntimeCall) modules() int {
	n := 0
	if c.Balances != nil {
		n++
	}
	if c.ProofOfExistence != nil {
		n++
	}
	return n
}
