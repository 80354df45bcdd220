// Package arith declares the numeric capabilities the pallets require of
// their configured types and provides the balance types used by the
// runtime.
//
// Zero values are the Go zero values of the configured types: a pallet
// never needs a constructor to obtain zero, and an absent map entry reads
// back as exactly that value.
package arith

import "strconv"

// Counter is satisfied by block-number and nonce types. Counters start
// at zero and advance by one. Plain addition wraps at the type's maximum,
// so pallets advance them with CheckedInc.
type Counter interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// One returns the increment unit of a counter type.
func One[T Counter]() T { return 1 }

// MaxCounter returns the largest value of a counter type.
func MaxCounter[T Counter]() T { return ^T(0) }

// CheckedInc returns v+1, or false if v is already the maximum.
func CheckedInc[T Counter](v T) (T, bool) {
	if v == MaxCounter[T]() {
		return v, false
	}
	return v + One[T](), true
}

// Balance is satisfied by account-funds types. Both operations report
// false instead of wrapping when the result is not representable.
type Balance[T any] interface {
	comparable
	CheckedAdd(T) (T, bool)
	CheckedSub(T) (T, bool)
	String() string
}

// assertBalance fails to compile unless T satisfies Balance.
func assertBalance[T Balance[T]]() {}

// U64 is a 64-bit balance.
type U64 uint64

var _ = assertBalance[U64]

func (a U64) CheckedAdd(b U64) (U64, bool) {
	c := a + b
	if c < a {
		return 0, false
	}
	return c, true
}

func (a U64) CheckedSub(b U64) (U64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

func (a U64) String() string { return strconv.FormatUint(uint64(a), 10) }
