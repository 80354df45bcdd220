// Package pallettest provides test utilities for pallet applications: a
// configurable mock, a harness that drives an application through the
// lifecycle guard, and a compliance suite.
package pallettest

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/types"
)

var (
	_ pallets.Lifecycle = (*MockApp)(nil)
	_ pallets.Simulator = (*MockApp)(nil)
)

// MockApp is a configurable application for driver tests. Every method
// can be replaced through its Fn field. By default it tracks a block
// height the way the runtime does: each ExecuteBlock advances it and a
// block declaring another height is rejected.
type MockApp struct {
	mu        sync.Mutex
	height    uint64
	staged    uint64
	committed uint64

	// DeclaredCapabilities is returned at handshake.
	DeclaredCapabilities types.Capabilities

	HandshakeFn    func(context.Context, types.HandshakeRequest) (types.HandshakeResponse, error)
	CheckTxFn      func(context.Context, types.Tx, types.MempoolContext) (types.GateVerdict, error)
	ExecuteBlockFn func(context.Context, types.FinalizedBlock) (types.BlockOutcome, error)
	CommitFn       func(context.Context) (types.CommitResult, error)
	QueryFn        func(context.Context, types.StateQuery) (types.StateQueryResult, error)
	SimulateFn     func(context.Context, types.Tx) (types.TxOutcome, error)

	HandshakeCalls    atomic.Int64
	CheckTxCalls      atomic.Int64
	ExecuteBlockCalls atomic.Int64
	CommitCalls       atomic.Int64
	QueryCalls        atomic.Int64
	SimulateCalls     atomic.Int64
}

// mockHash derives a non-zero app hash from a height.
func mockHash(height uint64) types.AppHash {
	var h types.AppHash
	h[0] = 0x01
	binary.BigEndian.PutUint64(h[24:], height)
	return h
}

func (m *MockApp) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	m.HandshakeCalls.Add(1)
	if m.HandshakeFn != nil {
		return m.HandshakeFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h := mockHash(m.committed)
	return types.HandshakeResponse{
		AppHash:      &h,
		Capabilities: m.DeclaredCapabilities,
	}, nil
}

func (m *MockApp) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	m.CheckTxCalls.Add(1)
	if m.CheckTxFn != nil {
		return m.CheckTxFn(ctx, tx, mctx)
	}
	return types.GateVerdict{}, nil
}

func (m *MockApp) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	m.ExecuteBlockCalls.Add(1)
	if m.ExecuteBlockFn != nil {
		return m.ExecuteBlockFn(ctx, block)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.height++
	if block.Height != m.height {
		m.committed = m.height
		return types.BlockOutcome{Height: m.height, AppHash: mockHash(m.height)},
			pallets.NewBlockNumberMismatchError(m.height, block.Height)
	}
	outcomes := make([]types.TxOutcome, len(block.Txs))
	for i := range block.Txs {
		outcomes[i] = types.TxOutcome{Index: uint32(i)}
	}
	m.staged = m.height
	return types.BlockOutcome{
		TxOutcomes: outcomes,
		AppHash:    mockHash(m.height),
		Height:     m.height,
	}, nil
}

func (m *MockApp) Commit(ctx context.Context) (types.CommitResult, error) {
	m.CommitCalls.Add(1)
	if m.CommitFn != nil {
		return m.CommitFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = m.staged
	return types.CommitResult{Height: m.committed, AppHash: mockHash(m.committed)}, nil
}

func (m *MockApp) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	m.QueryCalls.Add(1)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.StateQueryResult{Key: req.Data, Height: m.committed}, nil
}

func (m *MockApp) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	m.SimulateCalls.Add(1)
	if m.SimulateFn != nil {
		return m.SimulateFn(ctx, tx)
	}
	return types.TxOutcome{}, nil
}
