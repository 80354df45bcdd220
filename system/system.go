// Package system tracks the block height and a per-account nonce.
//
// Both counters are advanced only by the runtime's block executor: the
// height once per block before any extrinsic runs, and the caller's nonce
// once per extrinsic immediately before it is dispatched.
package system

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/arith"
)

// Pallet is the system pallet. The type parameters are its configuration:
// the account identifier, block-number and nonce types.
type Pallet[AccountID cmp.Ordered, BlockNumber, Nonce arith.Counter] struct {
	blockNumber BlockNumber
	nonces      map[AccountID]Nonce
}

// New creates a system pallet at height zero with no nonces.
func New[AccountID cmp.Ordered, BlockNumber, Nonce arith.Counter]() *Pallet[AccountID, BlockNumber, Nonce] {
	return &Pallet[AccountID, BlockNumber, Nonce]{
		nonces: make(map[AccountID]Nonce),
	}
}

// BlockNumber returns the current height.
func (p *Pallet[AccountID, BlockNumber, Nonce]) BlockNumber() BlockNumber {
	return p.blockNumber
}

// IncBlockNumber advances the height by one. At the type's maximum it
// returns pallets.ErrCounterOverflow and leaves the height unchanged.
func (p *Pallet[AccountID, BlockNumber, Nonce]) IncBlockNumber() error {
	n, ok := arith.CheckedInc(p.blockNumber)
	if !ok {
		return pallets.ErrCounterOverflow
	}
	p.blockNumber = n
	return nil
}

// SetBlockNumber overwrites the height. It is used to restore state and
// is not reachable through dispatch.
func (p *Pallet[AccountID, BlockNumber, Nonce]) SetBlockNumber(n BlockNumber) {
	p.blockNumber = n
}

// SetNonce overwrites the nonce of who. Like SetBlockNumber it is not
// reachable through dispatch.
func (p *Pallet[AccountID, BlockNumber, Nonce]) SetNonce(who AccountID, n Nonce) {
	p.nonces[who] = n
}

// Nonce returns the nonce of who. Accounts never seen have nonce zero.
func (p *Pallet[AccountID, BlockNumber, Nonce]) Nonce(who AccountID) Nonce {
	return p.nonces[who]
}

// IncNonce advances the nonce of who by one. At the type's maximum it
// returns pallets.ErrCounterOverflow and leaves the nonce unchanged.
func (p *Pallet[AccountID, BlockNumber, Nonce]) IncNonce(who AccountID) error {
	n, ok := arith.CheckedInc(p.nonces[who])
	if !ok {
		return pallets.ErrCounterOverflow
	}
	p.nonces[who] = n
	return nil
}

// Accounts returns every account with a stored nonce, sorted.
func (p *Pallet[AccountID, BlockNumber, Nonce]) Accounts() []AccountID {
	return slices.Sorted(maps.Keys(p.nonces))
}

// Clone returns a deep copy.
func (p *Pallet[AccountID, BlockNumber, Nonce]) Clone() *Pallet[AccountID, BlockNumber, Nonce] {
	return &Pallet[AccountID, BlockNumber, Nonce]{
		blockNumber: p.blockNumber,
		nonces:      maps.Clone(p.nonces),
	}
}
