package pallettest

import (
	"context"
	"testing"
	"time"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/server"
	"github.com/blockberries/pallets/types"
)

// Harness drives an application through a server.Server and fails the
// test on unexpected errors.
type Harness struct {
	t   testing.TB
	srv *server.Server
}

// NewHarness wraps app.
func NewHarness(t testing.TB, app pallets.Lifecycle, opts ...server.Option) *Harness {
	t.Helper()
	return &Harness{t: t, srv: server.New(app, opts...)}
}

// Server returns the underlying server.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Genesis performs a genesis handshake.
func (h *Harness) Genesis(genesis types.GenesisDoc) types.HandshakeResponse {
	h.t.Helper()
	resp, err := h.srv.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &genesis,
	})
	if err != nil {
		h.t.Fatalf("Handshake (genesis) failed: %v", err)
	}
	return resp
}

// GenesisDefault performs a genesis handshake with DefaultGenesis(nil).
func (h *Harness) GenesisDefault() types.HandshakeResponse {
	h.t.Helper()
	return h.Genesis(DefaultGenesis(nil))
}

// ExecuteBlock executes a block without committing.
func (h *Harness) ExecuteBlock(block types.FinalizedBlock) types.BlockOutcome {
	h.t.Helper()
	outcome, err := h.srv.ExecuteBlock(context.Background(), block)
	if err != nil {
		h.t.Fatalf("ExecuteBlock (height=%d) failed: %v", block.Height, err)
	}
	return outcome
}

// MustRejectBlock executes a block that must be rejected for declaring
// the wrong height, and returns the mismatch.
func (h *Harness) MustRejectBlock(block types.FinalizedBlock) *pallets.BlockNumberMismatchError {
	h.t.Helper()
	_, err := h.srv.ExecuteBlock(context.Background(), block)
	m, ok := pallets.IsBlockNumberMismatch(err)
	if !ok {
		h.t.Fatalf("ExecuteBlock (height=%d): expected block number mismatch, got %v", block.Height, err)
	}
	return m
}

// Commit commits the last executed block.
func (h *Harness) Commit() types.CommitResult {
	h.t.Helper()
	result, err := h.srv.Commit(context.Background())
	if err != nil {
		h.t.Fatalf("Commit failed: %v", err)
	}
	return result
}

// ExecuteAndCommit executes a block and commits it.
func (h *Harness) ExecuteAndCommit(block types.FinalizedBlock) types.BlockOutcome {
	h.t.Helper()
	outcome := h.ExecuteBlock(block)
	h.Commit()
	return outcome
}

// CheckTx submits a transaction as first seen.
func (h *Harness) CheckTx(tx types.Tx) types.GateVerdict {
	h.t.Helper()
	verdict, err := h.srv.CheckTx(context.Background(), tx, types.MempoolFirstSeen)
	if err != nil {
		h.t.Fatalf("CheckTx failed: %v", err)
	}
	return verdict
}

// Query reads committed state.
func (h *Harness) Query(path types.QueryPath, data []byte) types.StateQueryResult {
	h.t.Helper()
	result, err := h.srv.Query(context.Background(), types.StateQuery{
		Path: path,
		Data: data,
	})
	if err != nil {
		h.t.Fatalf("Query failed: %v", err)
	}
	return result
}

// Simulate dry-runs tx. The application must declare CapSimulation.
func (h *Harness) Simulate(tx types.Tx) types.TxOutcome {
	h.t.Helper()
	outcome, err := h.srv.Simulate(context.Background(), tx)
	if err != nil {
		h.t.Fatalf("Simulate failed: %v", err)
	}
	return outcome
}

// MustAcceptTx asserts that CheckTx accepts tx.
func (h *Harness) MustAcceptTx(tx types.Tx) types.GateVerdict {
	h.t.Helper()
	v := h.CheckTx(tx)
	if !v.Accepted() {
		h.t.Fatalf("expected tx accepted, got code=%d info=%q", v.Code, v.Info)
	}
	return v
}

// MustRejectTx asserts that CheckTx rejects tx.
func (h *Harness) MustRejectTx(tx types.Tx) {
	h.t.Helper()
	if v := h.CheckTx(tx); v.Accepted() {
		h.t.Fatal("expected tx rejected, got accepted")
	}
}

// MustFail asserts that outcome failed with kind.
func MustFail(t testing.TB, outcome types.TxOutcome, kind pallets.ErrorKind) {
	t.Helper()
	if got := pallets.ErrorKind(outcome.Code); got != kind {
		t.Fatalf("tx %d: expected %s, got %s (%s)", outcome.Index, kind, got, outcome.Info)
	}
}

// MustSucceed asserts that outcome succeeded.
func MustSucceed(t testing.TB, outcome types.TxOutcome) {
	t.Helper()
	if !outcome.OK() {
		t.Fatalf("tx %d: expected success, got %s (%s)", outcome.Index, pallets.ErrorKind(outcome.Code), outcome.Info)
	}
}

var genesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultGenesis returns a genesis document starting at height 1 with
// the given app state.
func DefaultGenesis(appState []byte) types.GenesisDoc {
	return types.GenesisDoc{
		ChainID:       "test-chain",
		GenesisTime:   types.TimeToTimestamp(genesisTime),
		InitialHeight: 1,
		AppState:      appState,
	}
}

// MakeBlock creates a block at height with txs, timestamped five
// seconds per height after genesis.
func MakeBlock(height uint64, txs ...types.Tx) types.FinalizedBlock {
	return types.FinalizedBlock{
		Height: height,
		Time:   types.TimeToTimestamp(genesisTime.Add(time.Duration(height) * 5 * time.Second)),
		Txs:    txs,
	}
}

// MakeEmptyBlock creates an empty block at height.
func MakeEmptyBlock(height uint64) types.FinalizedBlock {
	return MakeBlock(height)
}
