package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/waymark/internal"
)

// DefaultTimeout is used when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that gives each request a deadline. The
// request context, and so c.Done(), is replaced by one that expires after
// d. A handler still running at the deadline yields a *TimeoutError (503).
//
// The handler goroutine is not killed; it should return once c.Done()
// is closed.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetContext(ctx)

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
			}

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				// client went away
				return ctx.Err()
			}
			c.LogWarn("request timeout", "timeout", d.String())
			return &TimeoutError{Route: c.RouteName(), Duration: d}
		}
	}
}
