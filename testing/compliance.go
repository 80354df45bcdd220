package pallettest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/types"
)

// Fixture is the chain-specific input of the compliance suite.
type Fixture struct {
	// Genesis seeds every fresh application.
	Genesis types.GenesisDoc
	// Txs is a block's worth of transactions valid for Genesis.
	Txs []types.Tx
	// Query is a path every application answers.
	Query types.QueryPath
}

// RunComplianceSuite checks the lifecycle behaviour shared by every
// pallet application. factory must return a fresh instance per call.
func RunComplianceSuite(t *testing.T, factory func() pallets.Lifecycle, fx Fixture) {
	t.Helper()

	start := func(t *testing.T) *Harness {
		h := NewHarness(t, factory())
		h.Genesis(fx.Genesis)
		return h
	}

	t.Run("genesis_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		resp := h.Genesis(fx.Genesis)
		if resp.LastBlock != nil {
			t.Error("genesis handshake should return nil LastBlock")
		}
		if resp.AppHash == nil {
			t.Error("genesis handshake should return a non-nil AppHash")
		}
	})

	t.Run("execute_commit_cycle", func(t *testing.T) {
		h := start(t)
		for i := uint64(1); i <= 5; i++ {
			outcome := h.ExecuteBlock(MakeEmptyBlock(i))
			if outcome.AppHash == (types.AppHash{}) {
				t.Errorf("height %d: zero app hash", i)
			}
			result := h.Commit()
			if result.Height != i {
				t.Errorf("height %d: committed height %d", i, result.Height)
			}
			if result.AppHash != outcome.AppHash {
				t.Errorf("height %d: commit hash differs from executed block", i)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		h1, h2 := start(t), start(t)
		blocks := []types.FinalizedBlock{
			MakeBlock(1, fx.Txs...),
			MakeEmptyBlock(2),
			MakeBlock(3, fx.Txs...),
		}
		for _, block := range blocks {
			o1 := h1.ExecuteAndCommit(block)
			o2 := h2.ExecuteAndCommit(block)
			if o1.AppHash != o2.AppHash {
				t.Errorf("height %d: non-deterministic: %x != %x", block.Height, o1.AppHash, o2.AppHash)
			}
			if len(o1.TxOutcomes) != len(o2.TxOutcomes) {
				t.Fatalf("height %d: outcome count mismatch: %d != %d", block.Height, len(o1.TxOutcomes), len(o2.TxOutcomes))
			}
			for i := range o1.TxOutcomes {
				if o1.TxOutcomes[i].Code != o2.TxOutcomes[i].Code {
					t.Errorf("height %d tx %d: code %d != %d", block.Height, i, o1.TxOutcomes[i].Code, o2.TxOutcomes[i].Code)
				}
			}
		}
	})

	t.Run("tx_outcome_per_tx", func(t *testing.T) {
		h := start(t)
		outcome := h.ExecuteAndCommit(MakeBlock(1, fx.Txs...))
		if len(outcome.TxOutcomes) != len(fx.Txs) {
			t.Fatalf("expected %d tx outcomes, got %d", len(fx.Txs), len(outcome.TxOutcomes))
		}
		for i, o := range outcome.TxOutcomes {
			if o.Index != uint32(i) {
				t.Errorf("tx %d: expected index %d, got %d", i, i, o.Index)
			}
		}
	})

	t.Run("wrong_height_rejected", func(t *testing.T) {
		h := start(t)
		m := h.MustRejectBlock(MakeBlock(5, fx.Txs...))
		if m.Expected != 1 || m.Got != 5 {
			t.Errorf("expected mismatch 1/5, got %d/%d", m.Expected, m.Got)
		}
		// The rejected block consumed height 1, and that height is
		// committed without a Commit call.
		last := h.Server().LastCommit()
		if last.Height != 1 {
			t.Errorf("expected last commit height 1 after rejection, got %d", last.Height)
		}
		if got := h.Query(fx.Query, nil).Height; got != last.Height {
			t.Errorf("expected query height %d to match last commit, got %d", last.Height, got)
		}

		h.MustRejectBlock(MakeEmptyBlock(1))
		if got := h.Server().LastCommit(); got.Height != 2 || got.AppHash == last.AppHash {
			t.Errorf("expected last commit to move to height 2 with a new hash, got %d %x", got.Height, got.AppHash)
		}
		committed := h.ExecuteAndCommit(MakeEmptyBlock(3))
		if committed.Height != 3 {
			t.Errorf("expected height 3, got %d", committed.Height)
		}
	})

	t.Run("concurrent_reads", func(t *testing.T) {
		h := start(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if len(fx.Txs) > 0 {
					tx := fx.Txs[i%len(fx.Txs)]
					if _, err := h.Server().CheckTx(context.Background(), tx, types.MempoolFirstSeen); err != nil {
						t.Errorf("concurrent CheckTx failed: %v", err)
					}
				}
				if _, err := h.Server().Query(context.Background(), types.StateQuery{Path: fx.Query}); err != nil {
					t.Errorf("concurrent Query failed: %v", err)
				}
			}(i)
		}
		wg.Wait()
	})

	t.Run("query_returns_height", func(t *testing.T) {
		h := start(t)
		h.ExecuteAndCommit(MakeEmptyBlock(1))
		h.ExecuteAndCommit(MakeEmptyBlock(2))

		if result := h.Query(fx.Query, nil); result.Height != 2 {
			t.Errorf("expected query height 2, got %d", result.Height)
		}
	})
}
