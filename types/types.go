// Package types defines the boundary data types through which a driver
// feeds blocks to a pallet application and reads results back.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

// Hash is a 32-byte hash.
type Hash [32]byte

// AppHash is a deterministic fingerprint of the runtime state after
// execution.
type AppHash [32]byte

// Tx is an encoded extrinsic. Drivers never inspect its contents.
type Tx []byte

// QueryPath is a structured key for state queries
// (e.g., "/balances/balance").
type QueryPath string

// BlockID uniquely identifies a point in the chain.
type BlockID struct {
	Height uint64 `cramberry:"1"`
	Hash   Hash   `cramberry:"2"`
}
