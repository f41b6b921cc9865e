package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// defaultFlushTimeout bounds the flush hook when ctx has no deadline.
const defaultFlushTimeout = 2 * time.Second

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	Config
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string `env:"SENTRY_RELEASE"`
	// MinLevel is the lowest level kept as a Sentry log. Errors always create issues.
	MinLevel slog.Level
}

// NewWithSentry creates a logger that writes to the configured output and
// to Sentry. The returned flush function drains buffered events and fits
// waymark.ShutdownHook.
//
// With an empty DSN, or when the SDK fails to initialise, only the local
// output is used and flush is a no-op.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) (*slog.Logger, func(context.Context) error) {
	local := newHandler(cfg.Config)
	noop := func(context.Context) error { return nil }

	if cfg.DSN == "" {
		return slog.New(NewContextHandler(local, extractors...)), noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(local, extractors...)), noop
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLogLevels(cfg.MinLevel),
	}.NewSentryHandler(context.Background())

	log := slog.New(NewContextHandler(fanout{local, remote}, extractors...))
	return log, flushSentry
}

// sentryLogLevels lists the levels at or above floor, never below warn.
func sentryLogLevels(floor slog.Level) []slog.Level {
	var levels []slog.Level
	for _, l := range []slog.Level{slog.LevelWarn, slog.LevelError} {
		if l >= floor {
			levels = append(levels, l)
		}
	}
	return levels
}

func flushSentry(ctx context.Context) error {
	timeout := defaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !sentry.Flush(timeout) {
		return ErrSentryFlush
	}
	return nil
}
