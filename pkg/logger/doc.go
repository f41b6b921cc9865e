// Package logger builds log/slog loggers with context extraction and optional Sentry reporting.
//
// # Basic Usage
//
//	log := logger.NewWithConfig(logger.Config{Level: "debug", Format: logger.FormatText},
//	    middlewares.RequestIDExtractor(),
//	)
//	log.InfoContext(ctx, "route matched", slog.String("route", "blog"))
//
// Config fields carry env tags (LOG_LEVEL, LOG_FORMAT) so they can be
// filled by any env-based config loader. New is a shortcut for JSON at
// info level on stdout; NewNope discards everything.
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute out of a context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// NewContextHandler runs the extractors on every record, so request-scoped
// values such as request IDs are always fresh. It wraps any slog.Handler.
// StringValue covers the common case of a string stored under a key.
//
// # Sentry
//
// NewWithSentry fans records out to the local output and Sentry. Errors
// become Sentry issues; warnings are kept as Sentry logs. With an empty
// DSN, or if Sentry fails to initialise, only the local output is used.
// The returned flush function belongs in a shutdown hook:
//
//	log, flush := logger.NewWithSentry(cfg, middlewares.RequestIDExtractor())
//	app.Run(":8080", waymark.Logger(log), waymark.ShutdownHook(flush))
package logger
