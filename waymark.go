package waymark

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/waymark/internal"
	"github.com/dmitrymomot/waymark/pkg/health"
	"github.com/dmitrymomot/waymark/pkg/logger"
	"github.com/dmitrymomot/waymark/pkg/route"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It matches requests against named routes and manages graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RouteOption configures a route declared with Router.Route.
	RouteOption = internal.RouteOption

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error with an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter wraps http.ResponseWriter and records the status.
	ResponseWriter = internal.ResponseWriter

	// Params holds route parameters by placeholder name.
	Params = route.Params

	// Route is a compiled, named URI template.
	Route = route.Route

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := waymark.New(
//	    waymark.WithMiddleware(middlewares.RequestID()),
//	    waymark.WithHandlers(
//	        handlers.NewBlog(repo),
//	    ),
//	)
//
//	err := app.Run(":8080", waymark.Logger(slog))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, after route resolution.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware that runs before routing.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutesFile loads named routes from a YAML file.
// With watch set, the file is reloaded on change while the app runs.
//
// Example:
//
//	waymark.New(
//	    waymark.WithRoutesFile("routes.yaml", true),
//	    waymark.WithHandlers(handlers.NewBlog(repo)),
//	)
//
// where the handler binds to file routes by name:
//
//	func (h *Blog) Routes(r waymark.Router) {
//	    r.Bind("blog.post", h.showPost)
//	}
func WithRoutesFile(path string, watch bool) Option {
	return internal.WithRoutesFile(path, watch)
}

// WithPatternCache shares a compiled-pattern cache between apps.
func WithPatternCache(c *route.Cache) Option {
	return internal.WithPatternCache(c)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	waymark.New(
//	    waymark.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	waymark.WithHealthChecks(
//	    waymark.WithReadinessCheck("db", pingDB),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics serves gatherer at path in the Prometheus text format.
func WithMetrics(path string, gatherer prometheus.Gatherer) Option {
	return internal.WithMetrics(path, gatherer)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	waymark.New(
//	    waymark.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	waymark.New(
//	    waymark.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Route options

// Regex sets per-placeholder expressions, replacing the default segment
// class for the named keys.
//
// Example:
//
//	r.Route("blog.post", "blog/<year>/<slug>", h.showPost,
//	    waymark.Regex(map[string]string{"year": `\d{4}`}),
//	)
func Regex(regex map[string]string) RouteOption {
	return internal.Regex(regex)
}

// Defaults sets default parameter values. They fill missing params on
// match and let reverse routing omit optional groups.
func Defaults(d Params) RouteOption {
	return internal.Defaults(d)
}

// Methods restricts the route to the given HTTP methods.
func Methods(methods ...string) RouteOption {
	return internal.Methods(methods...)
}

// Filter adds a match filter. See route.Filter.
func Filter(f route.Filter) RouteOption {
	return internal.Filter(f)
}

// With adds route-specific middleware.
func With(mw ...Middleware) RouteOption {
	return internal.With(mw...)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Logger sets the server logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run during server startup.
// Hooks run in registration order before the server accepts requests.
// If any hook fails, the server stops and returns the error.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	waymark.ShutdownHook(func(ctx context.Context) error {
//	    return pool.Close()
//	})
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when embedding the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// StatusCode returns the HTTP status an error maps to. Errors without a
// status map to 500.
func StatusCode(err error) int {
	return internal.StatusCode(err)
}

// WithError attaches an underlying error to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// WithErrorCode attaches a machine-readable code to an HTTPError.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// Helpers

// ContextValue retrieves a typed value from the request context.
// Returns the zero value if the key is absent or of another type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}
