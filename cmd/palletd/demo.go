package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/arith"
	"github.com/blockberries/pallets/local"
	"github.com/blockberries/pallets/node"
	"github.com/blockberries/pallets/types"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Execute sample blocks in process and print the resulting state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context, w io.Writer) error {
	app := node.New()
	conn := local.NewConnection(app)
	defer conn.Close()

	genesis := &types.GenesisDoc{
		ChainID:       "pallets-demo",
		InitialHeight: 1,
		AppState:      []byte("balances:\n  alice: \"100\"\n"),
	}
	if _, err := conn.Handshake(ctx, types.HandshakeRequest{Genesis: genesis}); err != nil {
		return err
	}

	blocks := []types.FinalizedBlock{
		{Height: 1, Txs: []types.Tx{
			node.TransferTx("alice", "bob", arith.NewU256(30)),
			node.TransferTx("alice", "charlie", arith.NewU256(20)),
		}},
		{Height: 2, Txs: []types.Tx{
			node.CreateClaimTx("alice", "doc"),
			node.CreateClaimTx("bob", "doc"),
		}},
		// Declares 5 while 3 is next.
		{Height: 5, Txs: []types.Tx{
			node.TransferTx("alice", "bob", arith.NewU256(1)),
		}},
	}

	for _, block := range blocks {
		fmt.Fprintf(w, "block %d\n", block.Height)
		outcome, _, err := conn.Apply(ctx, block)
		if err != nil {
			if _, ok := pallets.IsBlockNumberMismatch(err); !ok {
				return err
			}
			fmt.Fprintf(w, "  rejected: %v\n", err)
			continue
		}
		for _, o := range outcome.TxOutcomes {
			result := "ok"
			if !o.OK() {
				result = pallets.ErrorKind(o.Code).String()
			}
			fmt.Fprintf(w, "  tx %d %-8s %s\n", o.Index, o.Caller, result)
		}
	}

	return printState(w, app)
}

func printState(w io.Writer, app *node.App) error {
	state := app.State()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\nblock number\t%d\n", state.BlockNumber)
	for _, b := range state.Balances {
		fmt.Fprintf(tw, "balance\t%s\t%s\n", b.Account, b.Amount)
	}
	for _, n := range state.Nonces {
		fmt.Fprintf(tw, "nonce\t%s\t%d\n", n.Account, n.Nonce)
	}
	for _, c := range state.Claims {
		fmt.Fprintf(tw, "claim\t%s\t%s\n", c.Content, c.Owner)
	}
	return tw.Flush()
}
