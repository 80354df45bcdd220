package local

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/arith"
	"github.com/blockberries/pallets/node"
	"github.com/blockberries/pallets/types"
)

func genesisDoc() *types.GenesisDoc {
	return &types.GenesisDoc{
		ChainID:       "test",
		InitialHeight: 1,
		AppState:      []byte("balances:\n  alice: \"100\"\n"),
	}
}

func TestLocalConnection_FullCycle(t *testing.T) {
	conn := NewConnection(node.New())
	defer conn.Close()

	_, err := conn.Handshake(context.Background(), types.HandshakeRequest{Genesis: genesisDoc()})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	if !conn.Capabilities().Has(types.CapSimulation) {
		t.Errorf("expected CapSimulation, got %s", conn.Capabilities())
	}
	if conn.AsSimulator() == nil {
		t.Fatal("expected non-nil Simulator")
	}

	outcome, result, err := conn.Apply(context.Background(), types.FinalizedBlock{
		Height: 1,
		Txs: []types.Tx{
			node.TransferTx("alice", "bob", arith.NewU256(30)),
			node.TransferTx("bob", "charlie", arith.NewU256(50)),
		},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !outcome.TxOutcomes[0].OK() {
		t.Fatalf("tx 0 failed: %s", outcome.TxOutcomes[0].Info)
	}
	if got := pallets.ErrorKind(outcome.TxOutcomes[1].Code); got != pallets.KindInsufficientFunds {
		t.Errorf("tx 1: expected %s, got %s", pallets.KindInsufficientFunds, got)
	}
	if result.Height != 1 {
		t.Errorf("expected height 1, got %d", result.Height)
	}

	res, err := conn.Query(context.Background(), types.StateQuery{
		Path: node.PathBalance,
		Data: []byte("bob"),
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if string(res.Value) != "30" {
		t.Errorf("expected bob=30, got %s", res.Value)
	}
}

func TestLocalConnection_CheckTxConcurrent(t *testing.T) {
	conn := NewConnection(node.New())

	_, err := conn.Handshake(context.Background(), types.HandshakeRequest{Genesis: genesisDoc()})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := conn.CheckTx(context.Background(), node.CreateClaimTx("alice", "doc"), types.MempoolFirstSeen)
			if err != nil {
				t.Errorf("CheckTx error: %v", err)
				return
			}
			if v.Sender != "alice" {
				t.Errorf("expected sender alice, got %q", v.Sender)
			}
		}()
	}
	wg.Wait()
}
