package balances

import (
	"testing"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/arith"
	"github.com/stretchr/testify/require"
)

func TestBalances_Init(t *testing.T) {
	b := New[string, arith.U64]()

	require.Equal(t, arith.U64(0), b.Balance("alice"))
	b.SetBalance("alice", 100)
	require.Equal(t, arith.U64(100), b.Balance("alice"))
	require.Equal(t, arith.U64(0), b.Balance("bob"))
}

func TestBalances_Transfer(t *testing.T) {
	b := New[string, arith.U64]()

	require.ErrorIs(t, b.Transfer("alice", "bob", 51), pallets.ErrInsufficientFunds)

	b.SetBalance("alice", 100)
	require.NoError(t, b.Transfer("alice", "bob", 51))
	require.Equal(t, arith.U64(49), b.Balance("alice"))
	require.Equal(t, arith.U64(51), b.Balance("bob"))

	// Same arguments, updated state: the second call now fails.
	require.ErrorIs(t, b.Transfer("alice", "bob", 51), pallets.ErrInsufficientFunds)
	require.Equal(t, arith.U64(49), b.Balance("alice"))
	require.Equal(t, arith.U64(51), b.Balance("bob"))
}

func TestBalances_TransferConservation(t *testing.T) {
	b := New[string, arith.U256]()
	b.SetBalance("a", arith.NewU256(1_000))
	b.SetBalance("b", arith.NewU256(250))

	before, ok := b.TotalIssuance()
	require.True(t, ok)

	require.NoError(t, b.Transfer("a", "b", arith.NewU256(300)))
	require.Equal(t, arith.NewU256(700), b.Balance("a"))
	require.Equal(t, arith.NewU256(550), b.Balance("b"))

	after, ok := b.TotalIssuance()
	require.True(t, ok)
	require.Equal(t, before, after)
}

func TestBalances_TransferOverflowIsAtomic(t *testing.T) {
	b := New[string, arith.U256]()
	b.SetBalance("rich", arith.MaxU256())
	b.SetBalance("alice", arith.NewU256(10))

	err := b.Transfer("alice", "rich", arith.NewU256(1))
	require.ErrorIs(t, err, pallets.ErrOverflow)
	require.Equal(t, arith.NewU256(10), b.Balance("alice"))
	require.Equal(t, arith.MaxU256(), b.Balance("rich"))
}

func TestBalances_TransferInsufficientIsAtomic(t *testing.T) {
	b := New[string, arith.U64]()
	b.SetBalance("alice", 5)

	require.ErrorIs(t, b.Transfer("alice", "bob", 6), pallets.ErrInsufficientFunds)
	require.Equal(t, arith.U64(5), b.Balance("alice"))
	require.Equal(t, arith.U64(0), b.Balance("bob"))
	require.Equal(t, []string{"alice"}, b.Accounts())
}

func TestBalances_SelfTransfer(t *testing.T) {
	b := New[string, arith.U64]()
	b.SetBalance("alice", 40)

	require.NoError(t, b.Transfer("alice", "alice", 40))
	require.Equal(t, arith.U64(40), b.Balance("alice"))

	require.ErrorIs(t, b.Transfer("alice", "alice", 41), pallets.ErrInsufficientFunds)
	require.Equal(t, arith.U64(40), b.Balance("alice"))
}

func TestBalances_Dispatch(t *testing.T) {
	b := New[string, arith.U64]()
	b.SetBalance("alice", 10)

	call := TransferCall("bob", arith.U64(4))
	require.Equal(t, "transfer", call.Name())
	require.NoError(t, b.Dispatch("alice", call))
	require.Equal(t, arith.U64(6), b.Balance("alice"))
	require.Equal(t, arith.U64(4), b.Balance("bob"))

	require.ErrorIs(t, b.Dispatch("alice", TransferCall("bob", arith.U64(7))), pallets.ErrInsufficientFunds)
	require.ErrorIs(t, b.Dispatch("alice", Call[string, arith.U64]{}), pallets.ErrEmptyCall)
}

func TestBalances_Clone(t *testing.T) {
	b := New[string, arith.U64]()
	b.SetBalance("alice", 10)

	c := b.Clone()
	require.NoError(t, c.Transfer("alice", "bob", 10))

	require.Equal(t, arith.U64(10), b.Balance("alice"))
	require.Equal(t, arith.U64(0), b.Balance("bob"))
}
