package middlewares

import (
	"net/http"
	"runtime"

	"github.com/dmitrymomot/waymark/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize int  // bytes of stack to capture; 0 disables capture
	LogStack  bool // include the stack in the log entry
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets how many bytes of stack to capture.
// Zero disables capture.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = max(size, 0)
	}
}

// WithRecoverDisablePrintStack keeps the stack out of the log entry.
// It is still attached to the PanicError.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.LogStack = false
	}
}

// Recover returns middleware that turns a handler panic into a *PanicError
// (500) tagged with the route name, and logs it.
// http.ErrAbortHandler is re-panicked so net/http can abort the response.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
		LogStack:  true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				pe := &PanicError{Value: v, Route: c.RouteName(), Stack: captureStack(cfg.StackSize)}

				attrs := []any{"panic", v}
				if cfg.LogStack && pe.Stack != nil {
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)

				err = pe
			}()

			return next(c)
		}
	}
}

func captureStack(size int) []byte {
	if size <= 0 {
		return nil
	}
	buf := make([]byte, size)
	return buf[:runtime.Stack(buf, false)]
}
