package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/waymark/pkg/health"
	"github.com/dmitrymomot/waymark/pkg/logger"
	"github.com/dmitrymomot/waymark/pkg/route"
	"github.com/dmitrymomot/waymark/pkg/routefile"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle.
//
// Requests are matched against the route table: routes declared by
// handlers first, in declaration order, then routes from the routes file.
// Health checks, metrics and mounted handlers are served by the chi mux
// in front of the table.
type App struct {
	router          chi.Router
	table           *route.Table
	fileTable       *route.Table
	cache           *route.Cache
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	healthConfig    *healthConfig
	metricsConfig   *metricsConfig
	logger          *slog.Logger
	bindings        map[string]HandlerFunc
	routesFile      string
	middlewares     []Middleware
	httpMiddlewares []func(http.Handler) http.Handler
	handlers        []Handler
	mounts          []mount
	watchRoutes     bool
}

// mount is an http.Handler attached at a chi pattern.
type mount struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
// The App is immutable after creation. It panics if a declared route
// does not compile or the routes file cannot be loaded.
//
// Example:
//
//	app := waymark.New(
//	    waymark.WithMiddleware(middlewares.RequestID()),
//	    waymark.WithRoutesFile("routes.yaml", true),
//	    waymark.WithHandlers(handlers.NewBlog(repo)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:   chi.NewRouter(),
		cache:    route.NewCache(),
		logger:   logger.NewNope(),
		bindings: make(map[string]HandlerFunc),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.table = route.NewTable(route.WithTableCache(a.cache))
	a.fileTable = route.NewTable(route.WithTableCache(a.cache))

	if err := a.setupRoutesFile(); err != nil {
		panic(fmt.Sprintf("waymark: %v", err))
	}

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Routes returns all routes in match order.
func (a *App) Routes() []*route.Route {
	return append(a.table.All(), a.fileTable.All()...)
}

// Route looks up a route by name.
func (a *App) Route(name string) (*route.Route, error) {
	if r, err := a.table.Get(name); err == nil {
		return r, nil
	}
	return a.fileTable.Get(name)
}

// URL generates the URL of a named route. Internal routes yield a
// site-absolute path, external routes an absolute URL.
func (a *App) URL(name string, params route.Params) (string, error) {
	r, err := a.Route(name)
	if err != nil {
		return "", err
	}
	return r.URL("", params)
}

// Run starts the HTTP server and blocks until shutdown.
// The routes file watcher, if enabled, runs for the server's lifetime.
//
// Example:
//
//	err := app.Run(":8080", waymark.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(opts)

	if a.watchRoutes {
		w, err := routefile.NewWatcher(a.routesFile, a.fileTable,
			routefile.WithCache(a.cache),
			routefile.WithLogger(a.logger),
		)
		if err != nil {
			return fmt.Errorf("waymark: routes watcher: %w", err)
		}
		cfg.onStart = append([]hook{w.Start}, cfg.onStart...)
		cfg.onStop = append(cfg.onStop, w.Shutdown())
	}

	return newServer(addr, a, cfg).run()
}

func (a *App) setupRoutesFile() error {
	if a.routesFile == "" {
		return nil
	}
	defs, err := routefile.Load(a.routesFile)
	if err != nil {
		return err
	}
	return routefile.Apply(a.fileTable, defs, a.cache)
}

// setupRoutes configures the mux: plain http middleware, health, metrics,
// mounts, then the route table as the catch-all.
func (a *App) setupRoutes() {
	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}

	if a.healthConfig != nil {
		checks := a.healthConfig.checks
		if a.routesFile != "" {
			checks = checks.With("routes", health.TableCheck(a.fileTable))
		}
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(checks, health.WithLogger(a.logger)))
	}

	if a.metricsConfig != nil {
		a.router.Handle(a.metricsConfig.path, a.metricsConfig.handler)
	}

	for _, m := range a.mounts {
		a.router.Handle(m.pattern, m.handler)
	}

	r := &routerAdapter{app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	a.router.Handle("/*", http.HandlerFunc(a.dispatch))
}

// dispatch runs the first matching route through the global middleware.
func (a *App) dispatch(w http.ResponseWriter, req *http.Request) {
	rw := NewResponseWriter(w)

	rt, params, ok := a.table.Match(req)
	if !ok {
		rt, params, ok = a.fileTable.Match(req)
	}

	var h HandlerFunc
	switch {
	case !ok:
		h = a.notFound
	case a.bindings[rt.Name()] == nil:
		h = func(c Context) error {
			c.LogWarn("route has no handler")
			return ErrNotFound("")
		}
	default:
		h = a.bindings[rt.Name()]
	}

	c := newContext(rw, req, a, rt, params)
	if err := chain(h, a.middlewares...)(c); err != nil {
		a.handleError(c, err)
	}
}

func (a *App) notFound(c Context) error {
	if a.notFoundHandler != nil {
		return a.notFoundHandler(c)
	}
	return ErrNotFound("")
}

// handleError handles errors from handlers using the configured error handler.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("handler error after response was written", slog.Any("error", err))
		return
	}

	if a.errorHandler != nil {
		herr := a.errorHandler(c, err)
		if herr == nil {
			return
		}
		c.LogError("error handler failed", slog.Any("error", herr))
		if c.Written() {
			return
		}
	}

	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err))
	}
	http.Error(c.Response(), publicMessage(err, code), code)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn func(context.Context) error) HealthOption {
	return func(c *healthConfig) {
		c.checks = c.checks.With(name, fn)
	}
}

// metricsConfig holds the metrics endpoint.
type metricsConfig struct {
	handler http.Handler
	path    string
}
