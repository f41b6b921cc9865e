package logger

import "log/slog"

// NewNope creates a logger that discards all output and reports every level as disabled.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
