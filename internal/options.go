package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/waymark/pkg/logger"
	"github.com/dmitrymomot/waymark/pkg/route"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Global middleware wraps every request dispatched through the route
// table, matched or not, and runs after the route is resolved, so
// c.RouteName() and c.Param() are available.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds standard net/http middleware to the mux.
// It runs before route matching and also covers health, metrics and
// mounted handlers.
//
// Example:
//
//	waymark.New(
//	    waymark.WithHTTPMiddleware(middleware.RealIP, middleware.Compress(5)),
//	)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup, in order.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutesFile loads named routes from a YAML file. Handlers attach to
// them with Router.Bind. File routes are matched after routes declared in
// code. When watch is true the file is reloaded on change while the app
// runs; a broken edit keeps the previous routes.
func WithRoutesFile(path string, watch bool) Option {
	return func(a *App) {
		a.routesFile = path
		a.watchRoutes = watch
	}
}

// WithPatternCache shares a compiled-pattern cache between apps.
func WithPatternCache(c *route.Cache) Option {
	return func(a *App) {
		if c != nil {
			a.cache = c
		}
	}
}

// WithStaticFiles serves files from fsys/subDir under the chi pattern
// prefix, ahead of the route table. Directory paths answer 404.
// It panics if subDir is not a valid path in fsys.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	waymark.New(
//	    waymark.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(prefix string, fsys fs.FS, subDir string) Option {
	root, err := fs.Sub(fsys, subDir)
	if err != nil {
		panic(fmt.Sprintf("waymark: static files: %v", err))
	}
	pattern := strings.TrimSuffix(prefix, "/") + "/*"

	return func(a *App) {
		a.mounts = append(a.mounts, mount{handler: staticHandler(prefix, root), pattern: pattern})
	}
}

func staticHandler(prefix string, root fs.FS) http.Handler {
	files := http.StripPrefix(strings.TrimSuffix(prefix, "/"), http.FileServerFS(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		h := w.Header()
		h.Set("Cache-Control", "public, max-age=3600")
		h.Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// WithErrorHandler replaces the default error rendering. h receives every
// error a handler or middleware returns before anything is written; if h
// itself fails, the default rendering runs.
//
// Example:
//
//	waymark.WithErrorHandler(func(c waymark.Context, err error) error {
//	    return c.JSON(waymark.StatusCode(err), map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets the handler for requests no route matches.
//
// Example:
//
//	waymark.WithNotFoundHandler(func(c waymark.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks serves a liveness probe (default /health/live) and a
// readiness probe (default /health/ready) in front of the route table.
// Readiness runs every configured check; with a routes file it also
// fails while the file holds no routes.
//
// Example:
//
//	waymark.WithHealthChecks(
//	    waymark.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics exposes gatherer in the Prometheus text format at path.
// A nil gatherer uses prometheus.DefaultGatherer.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	waymark.New(
//	    waymark.WithMetrics("/metrics", reg),
//	    waymark.WithMiddleware(middlewares.Metrics(reg)),
//	)
func WithMetrics(path string, gatherer prometheus.Gatherer) Option {
	return func(a *App) {
		if path == "" {
			path = "/metrics"
		}
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		a.metricsConfig = &metricsConfig{
			path:    path,
			handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		}
	}
}

// WithLogger installs a JSON stdout logger tagged with component. The
// extractors add request-scoped attributes such as request_id.
//
// Example:
//
//	waymark.New(
//	    waymark.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With(slog.String("component", component))
	}
}

// WithCustomLogger sets a pre-built logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
