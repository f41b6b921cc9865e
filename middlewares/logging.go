package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/waymark/internal"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	Skip  func(c internal.Context) bool // Skip returns true for requests that should not be logged
	Level slog.Level                    // Level for successful requests
}

// LoggingOption configures the request logging middleware.
type LoggingOption func(*LoggingConfig)

// WithLoggingSkip sets a predicate for requests that should not be logged.
func WithLoggingSkip(fn func(c internal.Context) bool) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.Skip = fn
	}
}

// WithLoggingLevel sets the level used for requests that complete below 400.
func WithLoggingLevel(level slog.Level) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.Level = level
	}
}

// Logging returns middleware that logs one line per request with the
// method, path, matched route, status and duration.
// 4xx responses are logged at warn and 5xx at error.
func Logging(opts ...LoggingOption) internal.Middleware {
	cfg := &LoggingConfig{
		Level: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if cfg.Skip != nil && cfg.Skip(c) {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := responseStatus(c, err)
			level := cfg.Level
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route", c.RouteName(),
				"status", status,
				"duration", time.Since(start),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			c.Logger().Log(c.Request().Context(), level, "request", attrs...)

			return err
		}
	}
}

// responseStatus is the status the client will see. A returned error is
// rendered after the middleware chain unwinds, so its code wins over
// whatever has been written so far.
func responseStatus(c internal.Context, err error) int {
	if err != nil && !c.Written() {
		return internal.StatusCode(err)
	}
	return c.Status()
}
