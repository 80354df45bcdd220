package node

import (
	"io"
	"log/slog"

	"github.com/blockberries/pallets/metrics"
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the application logger. It is also handed to the
// runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(app *App) {
		if logger != nil {
			app.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Runtime) Option {
	return func(app *App) {
		app.metrics = m
	}
}

// WithDefaultGenesis sets the app state used when a genesis handshake
// carries none.
func WithDefaultGenesis(g Genesis) Option {
	return func(app *App) {
		app.defaultGenesis = &g
	}
}

// WithChainID sets the chain id reported before genesis and kept when the
// genesis document names none.
func WithChainID(id string) Option {
	return func(app *App) {
		app.chainID = id
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
