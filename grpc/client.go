package palletsgrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/server"
	"github.com/blockberries/pallets/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

var _ pallets.Connection = (*Client)(nil)

// Client is a Connection to a remote application. It runs its own
// lifecycle guard so ordering bugs surface on the driver side.
type Client struct {
	cc    *grpc.ClientConn
	caps  types.Capabilities
	guard *server.LifecycleGuard
}

// Dial connects to a remote application. The connection is lazy; the
// first RPC establishes it.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("pallets client: dial %s: %w", addr, err)
	}
	return &Client{
		cc:    cc,
		guard: server.NewLifecycleGuard(),
	}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	_, err := c.invokeTrailer(ctx, method, req, resp)
	return err
}

func (c *Client) invokeTrailer(ctx context.Context, method string, req, resp any) (metadata.MD, error) {
	var trailer metadata.MD
	if err := c.cc.Invoke(ctx, fullMethod(method), req, resp, grpc.Trailer(&trailer)); err != nil {
		return trailer, fromStatus(err, trailer)
	}
	return trailer, nil
}

func (c *Client) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	c.guard.AcquireHandshake()

	resp := new(types.HandshakeResponse)
	if err := c.invoke(ctx, "Handshake", &req, resp); err != nil {
		c.guard.FailHandshake()
		return types.HandshakeResponse{}, err
	}

	c.caps = resp.Capabilities
	c.guard.CompleteHandshake()
	return *resp, nil
}

func (c *Client) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	c.guard.CheckConcurrent()

	resp := new(types.GateVerdict)
	if err := c.invoke(ctx, "CheckTx", &CheckTxRequest{Tx: tx, Context: mctx}, resp); err != nil {
		return types.GateVerdict{}, err
	}
	return *resp, nil
}

func (c *Client) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	c.guard.AcquireExecute()

	resp := new(types.BlockOutcome)
	trailer, err := c.invokeTrailer(ctx, "ExecuteBlock", &block, resp)
	if err != nil {
		c.guard.FailExecute()
		return rejectedOutcome(err, trailer), err
	}

	c.guard.CompleteExecute()
	return *resp, nil
}

func (c *Client) Commit(ctx context.Context) (types.CommitResult, error) {
	c.guard.AcquireCommit()
	defer c.guard.CompleteCommit()

	resp := new(types.CommitResult)
	if err := c.invoke(ctx, "Commit", &CommitRequest{}, resp); err != nil {
		return types.CommitResult{}, err
	}
	return *resp, nil
}

func (c *Client) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	c.guard.CheckConcurrent()

	resp := new(types.StateQueryResult)
	if err := c.invoke(ctx, "Query", &req, resp); err != nil {
		return types.StateQueryResult{}, err
	}
	return *resp, nil
}

func (c *Client) Capabilities() types.Capabilities { return c.caps }

func (c *Client) AsSimulator() pallets.Simulator {
	if c.caps.Has(types.CapSimulation) {
		return clientSimulator{c}
	}
	return nil
}

type clientSimulator struct{ c *Client }

func (w clientSimulator) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	w.c.guard.CheckConcurrent()

	resp := new(types.TxOutcome)
	if err := w.c.invoke(ctx, "Simulate", &SimulateRequest{Tx: tx}, resp); err != nil {
		return types.TxOutcome{}, err
	}
	return *resp, nil
}
