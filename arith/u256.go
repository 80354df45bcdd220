package arith

import (
	"fmt"

	"github.com/holiman/uint256"
)

// U256 is a 256-bit unsigned balance. The zero value is 0.
type U256 struct {
	v uint256.Int
}

var _ = assertBalance[U256]

// NewU256 returns n as a U256.
func NewU256(n uint64) U256 {
	var u U256
	u.v.SetUint64(n)
	return u
}

// MaxU256 returns 2^256-1.
func MaxU256() U256 {
	var u U256
	u.v.SetAllOne()
	return u
}

// ParseU256 parses a base-10 string.
func ParseU256(s string) (U256, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return U256{}, fmt.Errorf("parse balance %q: %w", s, err)
	}
	return U256{v: *v}, nil
}

func (a U256) CheckedAdd(b U256) (U256, bool) {
	var r U256
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		return U256{}, false
	}
	return r, true
}

func (a U256) CheckedSub(b U256) (U256, bool) {
	var r U256
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return U256{}, false
	}
	return r, true
}

// IsZero reports whether a == 0.
func (a U256) IsZero() bool { return a.v.IsZero() }

// Cmp returns -1, 0 or +1.
func (a U256) Cmp(b U256) int { return a.v.Cmp(&b.v) }

// Bytes32 returns the big-endian encoding.
func (a U256) Bytes32() [32]byte { return a.v.Bytes32() }

func (a U256) String() string { return a.v.Dec() }
