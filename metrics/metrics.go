// Package metrics exposes Prometheus instruments for block execution.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Result label values.
const (
	ResultOK = "ok"
)

// Runtime holds the block-execution instruments. A nil *Runtime is a
// valid no-op recorder.
type Runtime struct {
	blocksExecuted prometheus.Counter
	blocksRejected prometheus.Counter
	extrinsics     *prometheus.CounterVec
	height         prometheus.Gauge
}

// New creates the instruments and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Runtime {
	m := &Runtime{
		blocksExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pallets_blocks_executed_total",
			Help: "Number of blocks whose extrinsics were executed.",
		}),
		blocksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pallets_blocks_rejected_total",
			Help: "Number of blocks rejected for a block number mismatch.",
		}),
		extrinsics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pallets_extrinsics_total",
			Help: "Executed extrinsics by pallet and result.",
		}, []string{"module", "result"}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pallets_block_height",
			Help: "Current runtime block height.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.blocksExecuted, m.blocksRejected, m.extrinsics, m.height)
	}
	return m
}

// ObserveBlockExecuted records an executed block and the height reached.
func (m *Runtime) ObserveBlockExecuted(height uint64) {
	if m == nil {
		return
	}
	m.blocksExecuted.Inc()
	m.height.Set(float64(height))
}

// ObserveBlockRejected records a rejected block. The height still
// advanced, so the gauge follows it.
func (m *Runtime) ObserveBlockRejected(height uint64) {
	if m == nil {
		return
	}
	m.blocksRejected.Inc()
	m.height.Set(float64(height))
}

// ObserveExtrinsic records one extrinsic outcome. result is ResultOK or
// an error kind name.
func (m *Runtime) ObserveExtrinsic(module, result string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if result == "" {
		result = ResultOK
	}
	m.extrinsics.WithLabelValues(module, result).Inc()
}

