// Package claims records first-claimer ownership over opaque content
// identifiers (proof of existence).
package claims

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/support"
)

// Pallet is the proof-of-existence pallet. AccountID comes from the
// system configuration; Content is this pallet's own requirement.
type Pallet[AccountID, Content cmp.Ordered] struct {
	claims map[Content]AccountID
}

// New creates a pallet with no claims.
func New[AccountID, Content cmp.Ordered]() *Pallet[AccountID, Content] {
	return &Pallet[AccountID, Content]{
		claims: make(map[Content]AccountID),
	}
}

// GetClaim returns the owner of claim, if any.
func (p *Pallet[AccountID, Content]) GetClaim(claim Content) (AccountID, bool) {
	owner, ok := p.claims[claim]
	return owner, ok
}

// CreateClaim records caller as the owner of claim.
func (p *Pallet[AccountID, Content]) CreateClaim(caller AccountID, claim Content) error {
	if _, ok := p.claims[claim]; ok {
		return pallets.ErrAlreadyClaimed
	}
	p.claims[claim] = caller
	return nil
}

// RevokeClaim removes caller's ownership of claim, making it claimable
// again by anyone.
func (p *Pallet[AccountID, Content]) RevokeClaim(caller AccountID, claim Content) error {
	owner, ok := p.claims[claim]
	if !ok {
		return pallets.ErrClaimNotFound
	}
	if owner != caller {
		return pallets.ErrNotOwner
	}
	delete(p.claims, claim)
	return nil
}

// Contents returns every claimed content key, sorted.
func (p *Pallet[AccountID, Content]) Contents() []Content {
	return slices.Sorted(maps.Keys(p.claims))
}

// Clone returns a deep copy.
func (p *Pallet[AccountID, Content]) Clone() *Pallet[AccountID, Content] {
	return &Pallet[AccountID, Content]{claims: maps.Clone(p.claims)}
}

// ClaimArgs is the argument set shared by both claim calls.
type ClaimArgs[Content any] struct {
	Claim Content
}

// Call is the closed union of dispatchable claim operations. Exactly one
// variant is set.
type Call[Content cmp.Ordered] struct {
	CreateClaim *ClaimArgs[Content]
	RevokeClaim *ClaimArgs[Content]
}

// CreateClaimCall builds a create-claim call.
func CreateClaimCall[Content cmp.Ordered](claim Content) Call[Content] {
	return Call[Content]{CreateClaim: &ClaimArgs[Content]{Claim: claim}}
}

// RevokeClaimCall builds a revoke-claim call.
func RevokeClaimCall[Content cmp.Ordered](claim Content) Call[Content] {
	return Call[Content]{RevokeClaim: &ClaimArgs[Content]{Claim: claim}}
}

// Name returns the call's operation name, empty unless exactly one
// variant is set.
func (c Call[Content]) Name() string {
	if c.variants() != 1 {
		return ""
	}
	switch {
	case c.CreateClaim != nil:
		return "create_claim"
	default:
		return "revoke_claim"
	}
}

func (c Call[Content]) variants() int {
	n := 0
	if c.CreateClaim != nil {
		n++
	}
	if c.RevokeClaim != nil {
		n++
	}
	return n
}

// Validate reports pallets.ErrEmptyCall or pallets.ErrAmbiguousCall
// unless exactly one variant is set.
func (c Call[Content]) Validate() error {
	switch c.variants() {
	case 0:
		return pallets.ErrEmptyCall
	case 1:
		return nil
	default:
		return pallets.ErrAmbiguousCall
	}
}

var _ support.Dispatch[string, Call[string]] = (*Pallet[string, string])(nil)

// Dispatch routes call to the pallet method it names.
func (p *Pallet[AccountID, Content]) Dispatch(caller AccountID, call Call[Content]) error {
	if err := call.Validate(); err != nil {
		return err
	}
	switch {
	case call.CreateClaim != nil:
		return p.CreateClaim(caller, call.CreateClaim.Claim)
	default:
		return p.RevokeClaim(caller, call.RevokeClaim.Claim)
	}
}
