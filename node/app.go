// Package node implements a pallet application over the runtime: it
// decodes transactions into extrinsics, seeds genesis state, stages block
// execution until Commit and answers state queries.
//
// Transaction format: a cramberry-encoded WireExtrinsic.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/metrics"
	"github.com/blockberries/pallets/runtime"
	"github.com/blockberries/pallets/types"
)

// Compile-time interface checks.
var (
	_ pallets.Lifecycle = (*App)(nil)
	_ pallets.Simulator = (*App)(nil)
)

// ErrNothingStaged is returned by Commit when no block is staged.
var ErrNothingStaged = errors.New("node: commit without an executed block")

// App is a pallet application. Committed state is read concurrently;
// blocks execute on a staged clone.
type App struct {
	mu      sync.RWMutex
	current *runtime.Runtime
	staged  *runtime.Runtime
	chainID string

	defaultGenesis *Genesis
	logger         *slog.Logger
	metrics        *metrics.Runtime
}

// New creates an application with empty runtime state.
func New(opts ...Option) *App {
	app := &App{logger: discardLogger()}
	for _, opt := range opts {
		opt(app)
	}
	app.current = app.newRuntime()
	return app
}

func (app *App) newRuntime() *runtime.Runtime {
	return runtime.New(runtime.WithLogger(app.logger))
}

func (app *App) Handshake(_ context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if req.LastCommitted == nil {
		rt := app.newRuntime()
		if err := app.applyGenesis(rt, req.Genesis); err != nil {
			return types.HandshakeResponse{}, err
		}
		app.current = rt
		app.staged = nil

		h := types.AppHash(rt.StateHash())
		app.logger.Info("genesis applied",
			"chain_id", app.chainID,
			"accounts", len(rt.Balances.Accounts()),
			"claims", len(rt.ProofOfExistence.Contents()),
		)
		return types.HandshakeResponse{
			AppHash:      &h,
			Capabilities: types.CapSimulation,
		}, nil
	}

	// Restart: report committed state.
	h := types.AppHash(app.current.StateHash())
	return types.HandshakeResponse{
		LastBlock: &types.BlockID{
			Height: uint64(app.current.System.BlockNumber()),
		},
		AppHash:      &h,
		Capabilities: types.CapSimulation,
	}, nil
}

func (app *App) applyGenesis(rt *runtime.Runtime, doc *types.GenesisDoc) error {
	var g Genesis
	if app.defaultGenesis != nil {
		g = *app.defaultGenesis
	}
	chainID := app.chainID
	if doc != nil {
		if doc.InitialHeight > 1 {
			return fmt.Errorf("node: initial height %d not supported, runtime starts at 1", doc.InitialHeight)
		}
		if len(doc.AppState) > 0 {
			parsed, err := ParseGenesis(doc.AppState)
			if err != nil {
				return err
			}
			g = parsed
		}
		if doc.ChainID != "" {
			chainID = doc.ChainID
		}
	}
	if err := g.Apply(rt); err != nil {
		return err
	}
	app.chainID = chainID
	return nil
}

func (app *App) CheckTx(_ context.Context, tx types.Tx, _ types.MempoolContext) (types.GateVerdict, error) {
	xt, err := DecodeExtrinsic(tx)
	if err != nil {
		return types.GateVerdict{
			Code: uint32(pallets.KindMalformedCall),
			Info: err.Error(),
		}, nil
	}
	return types.GateVerdict{Code: 0, Sender: xt.Caller}, nil
}

func (app *App) ExecuteBlock(_ context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	if block.Height > math.MaxUint32 {
		return types.BlockOutcome{}, fmt.Errorf("node: block height %d out of range", block.Height)
	}

	app.mu.RLock()
	rt := app.current.Clone()
	app.mu.RUnlock()

	outcomes := make([]types.TxOutcome, len(block.Txs))
	xts := make([]runtime.Extrinsic, 0, len(block.Txs))
	positions := make([]int, 0, len(block.Txs))

	for i, tx := range block.Txs {
		xt, err := DecodeExtrinsic(tx)
		if err != nil {
			// Undecodable: no caller is known, so no nonce advances.
			outcomes[i] = types.TxOutcome{
				Index: uint32(i),
				Code:  uint32(pallets.KindMalformedCall),
				Info:  err.Error(),
			}
			app.metrics.ObserveExtrinsic("", pallets.KindMalformedCall.String())
			continue
		}
		xts = append(xts, xt)
		positions = append(positions, i)
	}

	receipt, err := rt.ExecuteBlock(runtime.NewBlock(runtime.BlockNumber(block.Height), xts...))
	if err != nil {
		err = fmt.Errorf("execute block %d: %w", block.Height, err)
		if _, ok := pallets.IsBlockNumberMismatch(err); !ok {
			return types.BlockOutcome{}, err
		}
		// Only the height moved; a rejected block keeps its slot and
		// that height is committed without waiting for Commit.
		app.mu.Lock()
		app.current = rt
		app.staged = nil
		app.mu.Unlock()
		app.metrics.ObserveBlockRejected(uint64(receipt.BlockNumber))
		return types.BlockOutcome{
			Height:  uint64(receipt.BlockNumber),
			AppHash: types.AppHash(rt.StateHash()),
		}, err
	}

	for j, o := range receipt.Outcomes {
		i := positions[j]
		outcomes[i] = txOutcome(uint32(i), xts[j], o.Err)
		result := metrics.ResultOK
		if o.Err != nil {
			result = pallets.Kind(o.Err).String()
		}
		app.metrics.ObserveExtrinsic(o.Module, result)
	}
	app.metrics.ObserveBlockExecuted(uint64(receipt.BlockNumber))

	h := types.AppHash(rt.StateHash())

	// Stage changes (not visible until Commit).
	app.mu.Lock()
	app.staged = rt
	app.mu.Unlock()

	attrs := []any{"height", receipt.BlockNumber, "txs", len(block.Txs), "app_hash", fmt.Sprintf("%x", h[:8])}
	if !block.Time.IsZero() {
		attrs = append(attrs, "time", block.Time.ToTime())
	}
	app.logger.Debug("block staged", attrs...)

	return types.BlockOutcome{
		TxOutcomes: outcomes,
		AppHash:    h,
		Height:     uint64(receipt.BlockNumber),
	}, nil
}

func (app *App) Commit(_ context.Context) (types.CommitResult, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.staged == nil {
		return types.CommitResult{}, ErrNothingStaged
	}
	app.current = app.staged
	app.staged = nil

	return types.CommitResult{
		Height:  uint64(app.current.System.BlockNumber()),
		AppHash: types.AppHash(app.current.StateHash()),
	}, nil
}

// Simulate applies tx to a copy of committed state.
func (app *App) Simulate(_ context.Context, tx types.Tx) (types.TxOutcome, error) {
	xt, err := DecodeExtrinsic(tx)
	if err != nil {
		return types.TxOutcome{
			Code: uint32(pallets.KindMalformedCall),
			Info: err.Error(),
		}, nil
	}

	app.mu.RLock()
	rt := app.current.Clone()
	app.mu.RUnlock()

	return txOutcome(0, xt, rt.ApplyExtrinsic(xt)), nil
}

// State returns a dump of committed state.
func (app *App) State() runtime.State {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.current.State()
}

// ChainID returns the chain id from genesis, or the WithChainID default.
func (app *App) ChainID() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.chainID
}

func txOutcome(index uint32, xt runtime.Extrinsic, err error) types.TxOutcome {
	out := types.TxOutcome{
		Index:  index,
		Code:   uint32(pallets.Kind(err)),
		Caller: xt.Caller,
	}
	if err != nil {
		out.Info = err.Error()
		return out
	}
	out.Events = []types.Event{extrinsicEvent(xt)}
	return out
}

func extrinsicEvent(xt runtime.Extrinsic) types.Event {
	c := xt.Call
	switch {
	case c.Balances != nil:
		t := c.Balances.Transfer
		return types.NewEvent(types.EventTransfer, []string{"from", "to"},
			"from", xt.Caller, "to", t.To, "amount", t.Amount.String())
	case c.ProofOfExistence.CreateClaim != nil:
		return types.NewEvent(types.EventClaimCreated, []string{"owner", "claim"},
			"owner", xt.Caller, "claim", c.ProofOfExistence.CreateClaim.Claim)
	default:
		return types.NewEvent(types.EventClaimRevoked, []string{"owner", "claim"},
			"owner", xt.Caller, "claim", c.ProofOfExistence.RevokeClaim.Claim)
	}
}
