package system

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/pallets"
)

func TestSystem_Counters(t *testing.T) {
	sys := New[string, uint32, uint32]()

	require.NoError(t, sys.IncBlockNumber())
	require.NoError(t, sys.IncNonce("temi"))

	require.Equal(t, uint32(1), sys.BlockNumber())
	require.Equal(t, uint32(1), sys.Nonce("temi"))
	require.Equal(t, uint32(0), sys.Nonce("faithful"))
}

func TestSystem_UnseenAccount(t *testing.T) {
	sys := New[string, uint32, uint64]()
	require.Zero(t, sys.Nonce("nobody"))
	require.Empty(t, sys.Accounts())
	require.Zero(t, sys.BlockNumber())
}

func TestSystem_NonceMonotonic(t *testing.T) {
	sys := New[string, uint64, uint8]()
	for i := 1; i <= 10; i++ {
		require.NoError(t, sys.IncNonce("alice"))
		require.Equal(t, uint8(i), sys.Nonce("alice"))
	}
	require.NoError(t, sys.IncNonce("bob"))
	require.Equal(t, []string{"alice", "bob"}, sys.Accounts())
}

func TestSystem_CountersDoNotWrap(t *testing.T) {
	sys := New[string, uint8, uint8]()
	for range 255 {
		require.NoError(t, sys.IncBlockNumber())
		require.NoError(t, sys.IncNonce("alice"))
	}
	require.Equal(t, uint8(255), sys.BlockNumber())
	require.Equal(t, uint8(255), sys.Nonce("alice"))

	require.ErrorIs(t, sys.IncBlockNumber(), pallets.ErrCounterOverflow)
	require.ErrorIs(t, sys.IncNonce("alice"), pallets.ErrCounterOverflow)
	require.Equal(t, uint8(255), sys.BlockNumber())
	require.Equal(t, uint8(255), sys.Nonce("alice"))
}

func TestSystem_Clone(t *testing.T) {
	sys := New[string, uint32, uint32]()
	require.NoError(t, sys.IncBlockNumber())
	require.NoError(t, sys.IncNonce("alice"))

	c := sys.Clone()
	require.NoError(t, c.IncBlockNumber())
	require.NoError(t, c.IncNonce("alice"))

	require.Equal(t, uint32(1), sys.BlockNumber())
	require.Equal(t, uint32(1), sys.Nonce("alice"))
	require.Equal(t, uint32(2), c.BlockNumber())
	require.Equal(t, uint32(2), c.Nonce("alice"))
}
