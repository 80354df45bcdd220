package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRuntime_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBlockExecuted(1)
	m.ObserveBlockRejected(2)
	m.ObserveExtrinsic("balances", ResultOK)
	m.ObserveExtrinsic("balances", "InsufficientFunds")
	m.ObserveExtrinsic("", "")

	require.Equal(t, 1.0, testutil.ToFloat64(m.blocksExecuted))
	require.Equal(t, 1.0, testutil.ToFloat64(m.blocksRejected))
	require.Equal(t, 2.0, testutil.ToFloat64(m.height))
	require.Equal(t, 1.0, testutil.ToFloat64(m.extrinsics.WithLabelValues("balances", "InsufficientFunds")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.extrinsics.WithLabelValues("unknown", ResultOK)))

	count, err := testutil.GatherAndCount(reg, "pallets_extrinsics_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestRuntime_NilSafe(t *testing.T) {
	var m *Runtime
	m.ObserveBlockExecuted(1)
	m.ObserveBlockRejected(1)
	m.ObserveExtrinsic("balances", ResultOK)
}
