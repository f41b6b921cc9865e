package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

// hook is a lifecycle callback run at startup or shutdown.
type hook func(context.Context) error

type runConfig struct {
	baseCtx         context.Context
	logger          *slog.Logger
	onStart         []hook
	onStop          []hook
	shutdownTimeout time.Duration
}

func newRunConfig(opts []RunOption) *runConfig {
	cfg := &runConfig{
		baseCtx:         context.Background(),
		logger:          slog.New(slog.DiscardHandler),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the server lifecycle logger. Nil keeps logging disabled.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds graceful shutdown, server drain and hooks
// together. Non-positive values keep the 30 second default.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn before the listener is opened. An error aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.onStart = append(c.onStart, fn)
		}
	}
}

// ShutdownHook runs fn after the server has drained, in registration
// order. Every hook runs even if an earlier one fails.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.onStop = append(c.onStop, fn)
		}
	}
}

// WithContext sets the parent context; cancelling it stops the server
// like SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
