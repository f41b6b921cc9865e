// Package middlewares provides HTTP middleware for waymark applications.
//
// Middlewares run after route resolution, so every one of them can read the
// matched route name through Context.RouteName.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing and debugging.
// It reuses an upstream ID from the request headers or generates a UUID.
//
//	app := waymark.New(
//	    waymark.WithLogger("api", middlewares.RequestIDExtractor()),
//	    waymark.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// # Recover
//
// Recover catches panics and converts them to a *PanicError, which the
// ErrorHandler can inspect with IsPanicError and AsPanicError.
//
// # Timeout
//
// Timeout enforces a request deadline and returns a *TimeoutError (503).
// The handler goroutine keeps running after the deadline; handlers should
// watch c.Done() to stop early.
//
// # Logging
//
// Logging writes one log line per request with method, path, route,
// status and duration.
//
// # Tracing
//
// Tracing starts an OpenTelemetry server span per request, named after the
// method and route. An upstream trace context in the request headers
// becomes the parent span.
//
// # Metrics
//
// Metrics records waymark_http_requests_total and
// waymark_http_request_duration_seconds labelled by route, method and status.
// Pair it with WithMetrics to expose the registry:
//
//	reg := prometheus.NewRegistry()
//	app := waymark.New(
//	    waymark.WithMetrics("/metrics", reg),
//	    waymark.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Logging(),
//	        middlewares.Metrics(reg),
//	        middlewares.Recover(),
//	        middlewares.Timeout(5*time.Second),
//	    ),
//	)
//
// Order matters: RequestID first so later log lines carry the ID, Recover
// inside Logging and Metrics so panics are still counted.
package middlewares
