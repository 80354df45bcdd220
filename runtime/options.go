package runtime

import (
	"io"
	"log/slog"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger that receives block and extrinsic failures.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
