package pallets

import (
	"errors"
	"fmt"
)

// Dispatch errors. Pallets return these unchanged so that callers can
// match them with errors.Is at any layer.
var (
	ErrInsufficientFunds = errors.New("pallets: insufficient funds")
	ErrOverflow          = errors.New("pallets: balance overflow")
	ErrAlreadyClaimed    = errors.New("pallets: content already claimed")
	ErrClaimNotFound     = errors.New("pallets: claim not found")
	ErrNotOwner          = errors.New("pallets: caller is not the claim owner")

	// ErrCounterOverflow means a block number or nonce is at its type's
	// maximum and cannot advance.
	ErrCounterOverflow = errors.New("pallets: counter overflow")

	// ErrEmptyCall and ErrAmbiguousCall reject malformed call unions.
	ErrEmptyCall     = errors.New("pallets: call has no variant set")
	ErrAmbiguousCall = errors.New("pallets: call has more than one variant set")
)

// BlockNumberMismatchError is returned by block execution when the
// header's declared height is not the next expected height. It is fatal
// for the block: no extrinsic of that block is applied.
type BlockNumberMismatchError struct {
	Expected uint64
	Got      uint64
}

func (e *BlockNumberMismatchError) Error() string {
	return fmt.Sprintf("pallets: block number mismatch: expected %d, got %d", e.Expected, e.Got)
}

// NewBlockNumberMismatchError creates a new BlockNumberMismatchError.
func NewBlockNumberMismatchError(expected, got uint64) *BlockNumberMismatchError {
	return &BlockNumberMismatchError{Expected: expected, Got: got}
}

// IsBlockNumberMismatch checks whether an error is a
// BlockNumberMismatchError and returns it.
func IsBlockNumberMismatch(err error) (*BlockNumberMismatchError, bool) {
	var m *BlockNumberMismatchError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// ErrorKind is the closed classification of runtime errors. It doubles
// as the result code of an executed transaction; 0 is success.
type ErrorKind uint32

const (
	KindNone ErrorKind = iota
	KindInsufficientFunds
	KindOverflow
	KindAlreadyClaimed
	KindClaimNotFound
	KindNotOwner
	KindBlockNumberMismatch
	KindMalformedCall
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindOverflow:
		return "Overflow"
	case KindAlreadyClaimed:
		return "AlreadyClaimed"
	case KindClaimNotFound:
		return "ClaimNotFound"
	case KindNotOwner:
		return "NotOwner"
	case KindBlockNumberMismatch:
		return "BlockNumberMismatch"
	case KindMalformedCall:
		return "MalformedCall"
	default:
		return "Unknown"
	}
}

// Kind classifies err. A nil error is KindNone.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrOverflow), errors.Is(err, ErrCounterOverflow):
		return KindOverflow
	case errors.Is(err, ErrAlreadyClaimed):
		return KindAlreadyClaimed
	case errors.Is(err, ErrClaimNotFound):
		return KindClaimNotFound
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.Is(err, ErrEmptyCall), errors.Is(err, ErrAmbiguousCall):
		return KindMalformedCall
	}
	if _, ok := IsBlockNumberMismatch(err); ok {
		return KindBlockNumberMismatch
	}
	return KindUnknown
}
