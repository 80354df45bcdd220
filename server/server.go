package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/types"
)

var _ pallets.Connection = (*Server)(nil)

// Server wraps a pallet application with lifecycle enforcement and
// capability routing. Drivers talk to the application only through it.
type Server struct {
	app    pallets.Lifecycle
	guard  *LifecycleGuard
	caps   types.Capabilities
	logger *slog.Logger

	// nil unless the application implements Simulator.
	simulator pallets.Simulator

	// Held between ExecuteBlock and Commit.
	mu          sync.Mutex
	lastOutcome *types.BlockOutcome
	lastCommit  types.CommitResult
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server wrapping app.
func New(app pallets.Lifecycle, opts ...Option) *Server {
	s := &Server{
		app:    app,
		guard:  NewLifecycleGuard(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.simulator, _ = app.(pallets.Simulator)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handshake performs the startup handshake and validates the declared
// capabilities against the interfaces the application implements.
func (s *Server) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	s.guard.AcquireHandshake()

	resp, err := s.app.Handshake(ctx, req)
	if err != nil {
		s.guard.FailHandshake()
		return resp, err
	}
	if err := s.checkCapabilities(resp.Capabilities); err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	s.caps = resp.Capabilities
	if resp.LastBlock != nil {
		s.lastCommit.Height = resp.LastBlock.Height
	}
	if resp.AppHash != nil {
		s.lastCommit.AppHash = *resp.AppHash
	}
	s.guard.CompleteHandshake()
	s.logger.Info("handshake complete",
		"genesis", req.LastCommitted == nil,
		"capabilities", resp.Capabilities.String(),
	)
	return resp, nil
}

// CheckTx decodes a transaction for mempool admission.
func (s *Server) CheckTx(ctx context.Context, tx types.Tx, mctx types.MempoolContext) (types.GateVerdict, error) {
	s.guard.CheckConcurrent()
	return s.app.CheckTx(ctx, tx, mctx)
}

// ExecuteBlock executes a block. On error nothing is staged and the
// server is ready for the next block.
func (s *Server) ExecuteBlock(ctx context.Context, block types.FinalizedBlock) (types.BlockOutcome, error) {
	s.guard.AcquireExecute()

	outcome, err := s.app.ExecuteBlock(ctx, block)
	if err != nil {
		if _, ok := pallets.IsBlockNumberMismatch(err); ok && outcome.Height > 0 {
			// The rejected block's height is already committed.
			s.mu.Lock()
			s.lastCommit = types.CommitResult{Height: outcome.Height, AppHash: outcome.AppHash}
			s.mu.Unlock()
		}
		s.guard.FailExecute()
		s.logger.Warn("block not executed", "height", block.Height, "err", err)
		return outcome, err
	}

	s.mu.Lock()
	s.lastOutcome = &outcome
	s.mu.Unlock()

	s.guard.CompleteExecute()
	s.logger.Debug("block executed",
		"height", block.Height,
		"txs", len(block.Txs),
		"failed", len(outcome.Failed()),
	)
	return outcome, nil
}

// Commit makes the staged block the committed state.
func (s *Server) Commit(ctx context.Context) (types.CommitResult, error) {
	s.guard.AcquireCommit()

	result, err := s.app.Commit(ctx)

	s.mu.Lock()
	s.lastOutcome = nil
	if err == nil {
		s.lastCommit = result
	}
	s.mu.Unlock()

	s.guard.CompleteCommit()
	if err != nil {
		s.logger.Error("commit failed", "err", err)
		return result, err
	}
	s.logger.Info("committed", "height", result.Height, "app_hash", fmt.Sprintf("%x", result.AppHash[:8]))
	return result, nil
}

// Query reads committed state.
func (s *Server) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	s.guard.CheckConcurrent()
	return s.app.Query(ctx, req)
}

// Simulate dry-runs tx if the application declared CapSimulation.
func (s *Server) Simulate(ctx context.Context, tx types.Tx) (types.TxOutcome, error) {
	sim := s.AsSimulator()
	if sim == nil {
		return types.TxOutcome{}, fmt.Errorf("pallets: Simulator not supported")
	}
	s.guard.CheckConcurrent()
	return sim.Simulate(ctx, tx)
}

// Initialized reports whether the handshake has completed.
func (s *Server) Initialized() bool {
	return s.guard.HandshakeDone()
}

// Capabilities returns the capabilities declared at handshake.
func (s *Server) Capabilities() types.Capabilities {
	return s.caps
}

// AsSimulator returns the Simulator or nil.
func (s *Server) AsSimulator() pallets.Simulator {
	if s.caps.Has(types.CapSimulation) {
		return s.simulator
	}
	return nil
}

// LastOutcome returns the outcome staged by ExecuteBlock, or nil if
// none is pending.
func (s *Server) LastOutcome() *types.BlockOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// LastCommit returns the result of the most recent Commit, or the state
// reported at handshake.
func (s *Server) LastCommit() types.CommitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommit
}

// Close is a no-op.
func (s *Server) Close() error { return nil }

func (s *Server) checkCapabilities(declared types.Capabilities) error {
	hasSimulator := s.simulator != nil
	if declared.Has(types.CapSimulation) && !hasSimulator {
		return fmt.Errorf("pallets: app declared CapSimulation but does not implement Simulator")
	}
	if !declared.Has(types.CapSimulation) && hasSimulator {
		s.logger.Warn("app implements Simulator but did not declare it; capability will not be used")
	}
	return nil
}
