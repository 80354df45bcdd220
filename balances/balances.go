// Package balances tracks per-account funds and performs checked
// transfers between accounts.
package balances

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/arith"
	"github.com/blockberries/pallets/support"
)

// Pallet is the balances pallet. AccountID comes from the system
// configuration; Balance is this pallet's own requirement.
type Pallet[AccountID cmp.Ordered, Balance arith.Balance[Balance]] struct {
	balances map[AccountID]Balance
}

// New creates a balances pallet with no funded accounts.
func New[AccountID cmp.Ordered, Balance arith.Balance[Balance]]() *Pallet[AccountID, Balance] {
	return &Pallet[AccountID, Balance]{
		balances: make(map[AccountID]Balance),
	}
}

// SetBalance overwrites the balance of who. It is used for genesis
// funding and is not reachable through Dispatch.
func (p *Pallet[AccountID, Balance]) SetBalance(who AccountID, amount Balance) {
	p.balances[who] = amount
}

// Balance returns the balance of who, zero if never funded.
func (p *Pallet[AccountID, Balance]) Balance(who AccountID) Balance {
	return p.balances[who]
}

// Transfer moves amount from sender to receiver. Both new balances are
// computed from the pre-transfer state and validated before either is
// written, so a failed transfer leaves state untouched.
func (p *Pallet[AccountID, Balance]) Transfer(sender, receiver AccountID, amount Balance) error {
	senderBalance := p.Balance(sender)
	receiverBalance := p.Balance(receiver)

	newSenderBalance, ok := senderBalance.CheckedSub(amount)
	if !ok {
		return pallets.ErrInsufficientFunds
	}
	newReceiverBalance, ok := receiverBalance.CheckedAdd(amount)
	if !ok {
		return pallets.ErrOverflow
	}
	if sender == receiver {
		// Both checks passed; the net effect is nothing.
		return nil
	}

	p.balances[sender] = newSenderBalance
	p.balances[receiver] = newReceiverBalance
	return nil
}

// Accounts returns every account with a stored balance, sorted.
func (p *Pallet[AccountID, Balance]) Accounts() []AccountID {
	return slices.Sorted(maps.Keys(p.balances))
}

// TotalIssuance sums every stored balance. It reports false if the sum
// is not representable.
func (p *Pallet[AccountID, Balance]) TotalIssuance() (Balance, bool) {
	var total Balance
	for _, who := range p.Accounts() {
		var ok bool
		if total, ok = total.CheckedAdd(p.balances[who]); !ok {
			return total, false
		}
	}
	return total, true
}

// Clone returns a deep copy.
func (p *Pallet[AccountID, Balance]) Clone() *Pallet[AccountID, Balance] {
	return &Pallet[AccountID, Balance]{balances: maps.Clone(p.balances)}
}

// Transfer is the argument set of the transfer call.
type Transfer[AccountID, Balance any] struct {
	To     AccountID
	Amount Balance
}

// Call is the closed union of dispatchable balances operations. Exactly
// one variant is set.
type Call[AccountID cmp.Ordered, Balance arith.Balance[Balance]] struct {
	Transfer *Transfer[AccountID, Balance]
}

// TransferCall builds a transfer call.
func TransferCall[AccountID cmp.Ordered, Balance arith.Balance[Balance]](to AccountID, amount Balance) Call[AccountID, Balance] {
	return Call[AccountID, Balance]{Transfer: &Transfer[AccountID, Balance]{To: to, Amount: amount}}
}

// Name returns the call's operation name, empty for an empty call.
func (c Call[AccountID, Balance]) Name() string {
	switch {
	case c.Transfer != nil:
		return "transfer"
	default:
		return ""
	}
}

// Validate reports pallets.ErrEmptyCall if no variant is set.
func (c Call[AccountID, Balance]) Validate() error {
	if c.Transfer == nil {
		return pallets.ErrEmptyCall
	}
	return nil
}

var _ support.Dispatch[string, Call[string, arith.U64]] = (*Pallet[string, arith.U64])(nil)

// Dispatch routes call to the pallet method it names.
func (p *Pallet[AccountID, Balance]) Dispatch(caller AccountID, call Call[AccountID, Balance]) error {
	switch {
	case call.Transfer != nil:
		return p.Transfer(caller, call.Transfer.To, call.Transfer.Amount)
	default:
		return pallets.ErrEmptyCall
	}
}
