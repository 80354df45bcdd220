package pallettest

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/types"
)

func TestMockApp_Compliance(t *testing.T) {
	RunComplianceSuite(t, func() pallets.Lifecycle { return &MockApp{} }, Fixture{
		Genesis: DefaultGenesis(nil),
		Txs:     []types.Tx{{0x01}, {0x02}},
		Query:   "/mock",
	})
}

func TestMockApp_Counters(t *testing.T) {
	app := &MockApp{DeclaredCapabilities: types.CapSimulation}
	h := NewHarness(t, app)
	h.GenesisDefault()

	h.MustAcceptTx(types.Tx{0x01})
	h.ExecuteAndCommit(MakeBlock(1, types.Tx{0x01}))
	h.Query("/x", nil)
	h.Simulate(types.Tx{0x01})

	counts := map[string]int64{
		"Handshake":    app.HandshakeCalls.Load(),
		"CheckTx":      app.CheckTxCalls.Load(),
		"ExecuteBlock": app.ExecuteBlockCalls.Load(),
		"Commit":       app.CommitCalls.Load(),
		"Query":        app.QueryCalls.Load(),
		"Simulate":     app.SimulateCalls.Load(),
	}
	for name, n := range counts {
		if n != 1 {
			t.Errorf("%s: expected 1 call, got %d", name, n)
		}
	}
}

func TestMockApp_Overrides(t *testing.T) {
	errExec := errors.New("exec")
	app := &MockApp{
		CheckTxFn: func(context.Context, types.Tx, types.MempoolContext) (types.GateVerdict, error) {
			return types.GateVerdict{Code: uint32(pallets.KindMalformedCall)}, nil
		},
		ExecuteBlockFn: func(context.Context, types.FinalizedBlock) (types.BlockOutcome, error) {
			return types.BlockOutcome{}, errExec
		},
	}
	h := NewHarness(t, app)
	h.GenesisDefault()

	h.MustRejectTx(types.Tx{0x01})
	if _, err := h.Server().ExecuteBlock(context.Background(), MakeEmptyBlock(1)); !errors.Is(err, errExec) {
		t.Fatalf("expected override error, got %v", err)
	}
}

func TestMustFail(t *testing.T) {
	MustFail(t, types.TxOutcome{Code: uint32(pallets.KindNotOwner)}, pallets.KindNotOwner)
	MustSucceed(t, types.TxOutcome{})
}
