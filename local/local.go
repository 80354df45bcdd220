// Package local provides an in-process connection to a pallet
// application: lifecycle enforcement and capability discovery with no
// encoding step.
package local

import (
	"context"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/server"
	"github.com/blockberries/pallets/types"
)

var _ pallets.Connection = (*Connection)(nil)

// Connection drives an application compiled into the same binary.
type Connection struct {
	srv *server.Server
}

// NewConnection wraps app. Options are passed to the underlying server.
func NewConnection(app pallets.Lifecycle, opts ...server.Option) *Connection {
	return &Connection{srv: server.New(app, opts...)}
}

func (c *Connection) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	return c.srv.Handshake(ctx, req)
}

func (c *Connection) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	return c.srv.CheckTx(ctx, tx, mctx)
}

func (c *Connection) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	return c.srv.ExecuteBlock(ctx, block)
}

func (c *Connection) Commit(ctx context.Context) (types.CommitResult, error) {
	return c.srv.Commit(ctx)
}

func (c *Connection) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	return c.srv.Query(ctx, req)
}

func (c *Connection) Capabilities() types.Capabilities {
	return c.srv.Capabilities()
}

func (c *Connection) AsSimulator() pallets.Simulator {
	return c.srv.AsSimulator()
}

// Apply executes and commits one block.
func (c *Connection) Apply(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, types.CommitResult, error) {
	outcome, err := c.srv.ExecuteBlock(ctx, block)
	if err != nil {
		return outcome, types.CommitResult{}, err
	}
	result, err := c.srv.Commit(ctx)
	return outcome, result, err
}

func (c *Connection) Close() error { return nil }

// Server returns the underlying server.
func (c *Connection) Server() *server.Server {
	return c.srv
}
