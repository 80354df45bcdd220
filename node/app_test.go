package node_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/arith"
	"github.com/blockberries/pallets/metrics"
	"github.com/blockberries/pallets/node"
	"github.com/blockberries/pallets/runtime"
	pallettest "github.com/blockberries/pallets/testing"
	"github.com/blockberries/pallets/types"
)

const testAppState = `
balances:
  alice: "100"
claims:
  manifesto: charlie
`

func u(n uint64) arith.U256 { return arith.NewU256(n) }

func newHarness(t *testing.T, opts ...node.Option) (*node.App, *pallettest.Harness) {
	t.Helper()
	app := node.New(opts...)
	h := pallettest.NewHarness(t, app)
	h.Genesis(pallettest.DefaultGenesis([]byte(testAppState)))
	return app, h
}

func query(h *pallettest.Harness, path types.QueryPath, key string) string {
	return string(h.Query(path, []byte(key)).Value)
}

func TestApp_Compliance(t *testing.T) {
	pallettest.RunComplianceSuite(t, func() pallets.Lifecycle { return node.New() }, pallettest.Fixture{
		Genesis: pallettest.DefaultGenesis([]byte(testAppState)),
		Txs: []types.Tx{
			node.TransferTx("alice", "bob", u(30)),
			node.TransferTx("bob", "charlie", u(50)),
			node.CreateClaimTx("alice", "doc"),
			node.RevokeClaimTx("bob", "manifesto"),
		},
		Query: node.PathBlockNumber,
	})
}

func TestApp_Genesis(t *testing.T) {
	app, h := newHarness(t)

	assert.Equal(t, "100", query(h, node.PathBalance, "alice"))
	assert.Equal(t, "charlie", query(h, node.PathClaim, "manifesto"))
	assert.Equal(t, "0", query(h, node.PathBlockNumber, ""))
	assert.Equal(t, "test-chain", app.ChainID())
	assert.Empty(t, app.State().Nonces)
}

func TestApp_ChainID(t *testing.T) {
	ctx := context.Background()

	app := node.New(node.WithChainID("from-config"))
	assert.Equal(t, "from-config", app.ChainID())
	_, err := app.Handshake(ctx, types.HandshakeRequest{Genesis: &types.GenesisDoc{InitialHeight: 1}})
	require.NoError(t, err)
	assert.Equal(t, "from-config", app.ChainID())

	app = node.New(node.WithChainID("from-config"))
	doc := pallettest.DefaultGenesis(nil)
	_, err = app.Handshake(ctx, types.HandshakeRequest{Genesis: &doc})
	require.NoError(t, err)
	assert.Equal(t, "test-chain", app.ChainID())

	// A failed genesis leaves the default in place.
	app = node.New(node.WithChainID("from-config"))
	bad := pallettest.DefaultGenesis([]byte("balances: ["))
	_, err = app.Handshake(ctx, types.HandshakeRequest{Genesis: &bad})
	require.Error(t, err)
	assert.Equal(t, "from-config", app.ChainID())
}

func TestApp_GenesisRejectsBadState(t *testing.T) {
	cases := map[string]types.GenesisDoc{
		"bad yaml":       pallettest.DefaultGenesis([]byte("balances: [")),
		"bad amount":     pallettest.DefaultGenesis([]byte("balances:\n  alice: ten\n")),
		"initial height": {ChainID: "x", InitialHeight: 10},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := node.New().Handshake(context.Background(), types.HandshakeRequest{Genesis: &doc})
			require.Error(t, err)
		})
	}
}

func TestApp_TransferScenario(t *testing.T) {
	app, h := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		node.TransferTx("alice", "bob", u(30)),
		node.TransferTx("bob", "charlie", u(50)),
	))

	require.Len(t, outcome.TxOutcomes, 2)
	pallettest.MustSucceed(t, outcome.TxOutcomes[0])
	pallettest.MustFail(t, outcome.TxOutcomes[1], pallets.KindInsufficientFunds)
	assert.Equal(t, "bob", outcome.TxOutcomes[1].Caller)

	assert.Equal(t, "70", query(h, node.PathBalance, "alice"))
	assert.Equal(t, "30", query(h, node.PathBalance, "bob"))
	assert.Equal(t, "0", query(h, node.PathBalance, "charlie"))
	assert.Equal(t, "1", query(h, node.PathNonce, "alice"))
	assert.Equal(t, "1", query(h, node.PathNonce, "bob"))
	assert.Equal(t, "1", query(h, node.PathBlockNumber, ""))
	assert.Equal(t, "100", query(h, node.PathTotalIssuance, ""))
	assert.Equal(t, uint32(1), uint32(app.State().BlockNumber))
}

func TestApp_ClaimScenario(t *testing.T) {
	_, h := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		node.CreateClaimTx("alice", "doc"),
		node.CreateClaimTx("bob", "doc"),
		node.RevokeClaimTx("bob", "doc"),
		node.RevokeClaimTx("alice", "doc"),
		node.RevokeClaimTx("alice", "doc"),
	))

	require.Len(t, outcome.TxOutcomes, 5)
	pallettest.MustSucceed(t, outcome.TxOutcomes[0])
	pallettest.MustFail(t, outcome.TxOutcomes[1], pallets.KindAlreadyClaimed)
	pallettest.MustFail(t, outcome.TxOutcomes[2], pallets.KindNotOwner)
	pallettest.MustSucceed(t, outcome.TxOutcomes[3])
	pallettest.MustFail(t, outcome.TxOutcomes[4], pallets.KindClaimNotFound)

	res := h.Query(node.PathClaim, []byte("doc"))
	assert.Equal(t, node.QueryNotFound, res.Code)
	assert.Equal(t, "3", query(h, node.PathNonce, "alice"))
	assert.Equal(t, "2", query(h, node.PathNonce, "bob"))
}

func TestApp_Events(t *testing.T) {
	_, h := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		node.TransferTx("alice", "bob", u(1)),
		node.CreateClaimTx("alice", "doc"),
		node.RevokeClaimTx("charlie", "manifesto"),
		node.TransferTx("bob", "alice", u(5)),
	))

	kinds := make([]string, 0, 3)
	for _, o := range outcome.TxOutcomes {
		for _, ev := range o.Events {
			kinds = append(kinds, ev.Kind)
		}
	}
	assert.Equal(t, []string{types.EventTransfer, types.EventClaimCreated, types.EventClaimRevoked}, kinds)
	assert.Empty(t, outcome.TxOutcomes[3].Events)

	transfer := outcome.TxOutcomes[0].Events[0]
	assert.Contains(t, transfer.Attributes, types.EventAttribute{Key: "amount", Value: "1"})
	assert.Contains(t, transfer.Attributes, types.EventAttribute{Key: "to", Value: "bob", Index: true})
	owner, ok := outcome.TxOutcomes[2].Events[0].Attr("owner")
	assert.True(t, ok)
	assert.Equal(t, "charlie", owner)
}

func TestApp_MalformedTxInBlock(t *testing.T) {
	_, h := newHarness(t)

	outcome := h.ExecuteAndCommit(pallettest.MakeBlock(1,
		node.TransferTx("alice", "bob", u(10)),
		types.Tx{0xde, 0xad, 0xbe, 0xef},
		node.TransferTx("alice", "bob", u(10)),
	))

	require.Len(t, outcome.TxOutcomes, 3)
	pallettest.MustSucceed(t, outcome.TxOutcomes[0])
	pallettest.MustFail(t, outcome.TxOutcomes[1], pallets.KindMalformedCall)
	assert.Empty(t, outcome.TxOutcomes[1].Caller)
	pallettest.MustSucceed(t, outcome.TxOutcomes[2])
	assert.Equal(t, uint32(2), outcome.TxOutcomes[2].Index)

	assert.Equal(t, "20", query(h, node.PathBalance, "bob"))
	assert.Equal(t, "2", query(h, node.PathNonce, "alice"))
}

func TestApp_BlockNumberMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	app, h := newHarness(t, node.WithMetrics(m))
	genesisHash := h.Server().LastCommit().AppHash

	mismatch := h.MustRejectBlock(pallettest.MakeBlock(2, node.TransferTx("alice", "bob", u(10))))
	assert.Equal(t, uint64(1), mismatch.Expected)
	assert.Equal(t, uint64(2), mismatch.Got)

	// The consumed height is committed and the server's record follows it.
	last := h.Server().LastCommit()
	assert.Equal(t, uint64(1), last.Height)
	assert.NotEqual(t, genesisHash, last.AppHash)
	assert.Equal(t, app.State().BlockNumber, runtime.BlockNumber(last.Height))

	// No extrinsic ran, but the height slot is consumed.
	assert.Equal(t, "100", query(h, node.PathBalance, "alice"))
	assert.Equal(t, "0", query(h, node.PathNonce, "alice"))
	assert.Equal(t, "1", query(h, node.PathBlockNumber, ""))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP pallets_blocks_rejected_total Number of blocks rejected for a block number mismatch.
# TYPE pallets_blocks_rejected_total counter
pallets_blocks_rejected_total 1
`), "pallets_blocks_rejected_total"))

	h.ExecuteAndCommit(pallettest.MakeEmptyBlock(2))
	assert.Equal(t, "2", query(h, node.PathBlockNumber, ""))
	assert.Equal(t, uint64(2), h.Server().LastCommit().Height)
}

func TestApp_StagedUntilCommit(t *testing.T) {
	_, h := newHarness(t)

	h.ExecuteBlock(pallettest.MakeBlock(1, node.TransferTx("alice", "bob", u(10))))
	assert.Equal(t, "0", query(h, node.PathBalance, "bob"))
	assert.Equal(t, "0", query(h, node.PathBlockNumber, ""))

	result := h.Commit()
	assert.Equal(t, uint64(1), result.Height)
	assert.Equal(t, "10", query(h, node.PathBalance, "bob"))
}

func TestApp_CommitWithoutBlock(t *testing.T) {
	app := node.New()
	_, err := app.Commit(context.Background())
	require.ErrorIs(t, err, node.ErrNothingStaged)
}

func TestApp_CheckTx(t *testing.T) {
	_, h := newHarness(t)

	v := h.MustAcceptTx(node.TransferTx("dave", "bob", u(1000)))
	assert.Equal(t, "dave", v.Sender)
	h.MustRejectTx(types.Tx{0x00})
}

func TestApp_Simulate(t *testing.T) {
	_, h := newHarness(t)

	out := h.Simulate(node.TransferTx("alice", "bob", u(40)))
	pallettest.MustSucceed(t, out)
	require.Len(t, out.Events, 1)

	out = h.Simulate(node.RevokeClaimTx("alice", "manifesto"))
	pallettest.MustFail(t, out, pallets.KindNotOwner)

	out = h.Simulate(types.Tx{0xff})
	pallettest.MustFail(t, out, pallets.KindMalformedCall)

	// Nothing committed.
	assert.Equal(t, "0", query(h, node.PathBalance, "bob"))
	assert.Equal(t, "0", query(h, node.PathNonce, "alice"))
}

func TestApp_Queries(t *testing.T) {
	_, h := newHarness(t)

	res := h.Query("/nope", nil)
	assert.Equal(t, node.QueryUnknownPath, res.Code)

	res = h.Query(node.PathClaim, []byte("missing"))
	assert.Equal(t, node.QueryNotFound, res.Code)

	res = h.Query(node.PathBalance, []byte("alice"))
	assert.Equal(t, node.QueryOK, res.Code)
	assert.Equal(t, []byte("alice"), res.Key)
}

func TestApp_Restart(t *testing.T) {
	app, h := newHarness(t)
	committed := h.ExecuteAndCommit(pallettest.MakeBlock(1, node.TransferTx("alice", "bob", u(1))))

	resp, err := app.Handshake(context.Background(), types.HandshakeRequest{
		LastCommitted: &types.BlockID{Height: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.LastBlock)
	assert.Equal(t, uint64(1), resp.LastBlock.Height)
	assert.Equal(t, committed.AppHash, *resp.AppHash)
}

func TestApp_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	_, h := newHarness(t, node.WithMetrics(m))

	h.ExecuteAndCommit(pallettest.MakeBlock(1,
		node.TransferTx("alice", "bob", u(10)),
		node.TransferTx("bob", "charlie", u(50)),
		node.CreateClaimTx("alice", "doc"),
		types.Tx{0x01},
	))

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP pallets_block_height Current runtime block height.
# TYPE pallets_block_height gauge
pallets_block_height 1
# HELP pallets_blocks_executed_total Number of blocks whose extrinsics were executed.
# TYPE pallets_blocks_executed_total counter
pallets_blocks_executed_total 1
# HELP pallets_extrinsics_total Executed extrinsics by pallet and result.
# TYPE pallets_extrinsics_total counter
pallets_extrinsics_total{module="balances",result="InsufficientFunds"} 1
pallets_extrinsics_total{module="balances",result="ok"} 1
pallets_extrinsics_total{module="proof_of_existence",result="ok"} 1
pallets_extrinsics_total{module="unknown",result="MalformedCall"} 1
`), "pallets_block_height", "pallets_blocks_executed_total", "pallets_extrinsics_total"))
}

func TestApp_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, h := newHarness(t, node.WithLogger(logger))

	h.ExecuteAndCommit(pallettest.MakeBlock(1, node.TransferTx("bob", "alice", u(1))))
	assert.Contains(t, buf.String(), "extrinsic failed")
	assert.Contains(t, buf.String(), "genesis applied")
}

func TestApp_DefaultGenesis(t *testing.T) {
	g, err := node.ParseGenesis([]byte("balances:\n  zed: \"9\"\n"))
	require.NoError(t, err)

	app := node.New(node.WithDefaultGenesis(g))
	h := pallettest.NewHarness(t, app)
	h.Genesis(pallettest.DefaultGenesis(nil))
	assert.Equal(t, "9", query(h, node.PathBalance, "zed"))

	// App state in the handshake wins.
	app = node.New(node.WithDefaultGenesis(g))
	h = pallettest.NewHarness(t, app)
	h.Genesis(pallettest.DefaultGenesis([]byte(testAppState)))
	assert.Equal(t, "0", query(h, node.PathBalance, "zed"))
	assert.Equal(t, "100", query(h, node.PathBalance, "alice"))
}
