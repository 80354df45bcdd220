// Package pallets is a modular state-transition runtime: independently
// developed state modules ("pallets") composed into one runtime that
// executes blocks of ordered extrinsics deterministically.
//
// This package holds the closed error taxonomy shared by every pallet and
// the application boundary through which a driver (the in-process
// connection, the gRPC transport, the test harness) feeds blocks to a
// runtime. The core [Lifecycle] interface is required; [Simulator] is an
// optional capability discovered via Go type assertion at handshake time.
package pallets

import (
	"context"

	"github.com/blockberries/pallets/types"
)

// Lifecycle is the interface every pallet application implements.
//
// The driver guarantees the following call order:
//  1. Handshake is called exactly once, before anything else.
//  2. ExecuteBlock(h) is called at most once per height h.
//  3. Commit is called exactly once after each successful ExecuteBlock.
//  4. CheckTx, Query may be called concurrently at any time after Handshake.
type Lifecycle interface {
	// Handshake is called once on every startup.
	//
	// If LastCommitted is nil, this is a fresh genesis and Genesis will be
	// populated; its AppState seeds the pallets' initial state.
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error)

	// CheckTx decodes and structurally validates an extrinsic without
	// executing it.
	//
	// This method MUST be safe for concurrent use.
	CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error)

	// ExecuteBlock executes every extrinsic of the block in order and
	// reports one outcome per extrinsic. A failing extrinsic does not
	// abort the block; a height mismatch does, and is returned as a
	// *BlockNumberMismatchError.
	//
	// Changes are staged; they become visible to Query after Commit. The
	// one exception is a height mismatch: the rejected block still
	// consumes its height, that height is committed at once without a
	// Commit call, and the returned BlockOutcome carries only Height and
	// AppHash of the resulting state.
	ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error)

	// Commit makes the state staged by the last ExecuteBlock the
	// committed state.
	Commit(ctx context.Context) (types.CommitResult, error)

	// Query reads committed state.
	//
	// This method MUST be safe for concurrent use, including concurrent
	// with ExecuteBlock.
	Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error)
}

// Simulator dry-runs a single extrinsic against committed state.
//
// Declared via: types.CapSimulation in HandshakeResponse.Capabilities
type Simulator interface {
	// Simulate executes tx on a copy of the committed state and discards
	// the result. This method MUST be safe for concurrent use.
	Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error)
}

// Application embeds every interface.
type Application interface {
	Lifecycle
	Simulator
}

// Connection represents a transport-agnostic connection to a pallet
// application. Both gRPC clients and in-process adapters implement this.
type Connection interface {
	Lifecycle

	// Capabilities returns the capabilities discovered at handshake.
	// Must only be called after Handshake completes.
	Capabilities() types.Capabilities

	// AsSimulator returns the Simulator interface if available.
	AsSimulator() Simulator

	// Close terminates the connection.
	Close() error
}
