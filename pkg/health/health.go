package health

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/waymark/pkg/route"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is the standard health check function signature.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// With returns a copy of c with fn added under name.
func (c Checks) With(name string, fn CheckFunc) Checks {
	out := maps.Clone(c)
	if out == nil {
		out = make(Checks, 1)
	}
	if fn != nil {
		out[name] = fn
	}
	return out
}

// TableCheck reports unhealthy while t holds no routes.
func TableCheck(t *route.Table) CheckFunc {
	return func(context.Context) error {
		if t.Len() == 0 {
			return ErrNoRoutes
		}
		return nil
	}
}

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check represents the status of a single health check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks in parallel and aggregates the result.
// A check still running when the timeout expires is reported as ErrCheckTimeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	resp.Checks = make(map[string]Check, len(checks))

	for name, check := range checks {
		g.Go(func() error {
			result := evaluate(ctx, check)
			if result.Error != "" {
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", result.Error),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = result
			if result.Status == StatusUnhealthy {
				resp.Status = StatusUnhealthy
			}
			return nil
		})
	}

	_ = g.Wait()
	return resp
}

// evaluate runs one check. A check that returns after the deadline counts
// as timed out even if it reports success.
func evaluate(ctx context.Context, check CheckFunc) Check {
	err := check(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = errors.Join(ErrCheckTimeout, err)
	case err == nil && ctx.Err() != nil:
		err = ErrCheckTimeout
	}
	if err != nil {
		return Check{Status: StatusUnhealthy, Error: err.Error()}
	}
	return Check{Status: StatusHealthy}
}
