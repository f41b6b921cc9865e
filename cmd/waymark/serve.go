package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waymark"
	"github.com/dmitrymomot/waymark/middlewares"
)

func serveCmd(c *cli) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routes file with an echo handler",
		Long: `Serve every route in the file. Each matched request is answered with
the route name and its parameters as JSON; unmatched paths return 404.
With --watch the file is reloaded on change. Errors are reported to
Sentry when SENTRY_DSN is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newEchoApp(c, watch)
			if err != nil {
				return err
			}
			c.log.Info("serving routes", "file", c.cfg.RoutesFile, "addr", addr, "watch", watch)
			return app.Run(addr,
				waymark.Logger(c.log),
				waymark.ShutdownTimeout(5*time.Second),
				waymark.WithContext(cmd.Context()),
				waymark.ShutdownHook(c.flush),
			)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the routes file on change")

	return cmd
}

// echoResponse is written for every matched route.
type echoResponse struct {
	Params waymark.Params `json:"params"`
	Route  string         `json:"route"`
	Method string         `json:"method"`
}

// newEchoApp checks the routes file up front; waymark.New panics on a
// file it cannot load.
func newEchoApp(c *cli, watch bool) (*waymark.App, error) {
	if _, err := c.loadTable(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()

	mws := []waymark.Middleware{
		middlewares.RequestID(),
		middlewares.Logging(),
		middlewares.Tracing(),
		middlewares.Metrics(reg),
		middlewares.Recover(),
	}
	if c.cfg.RateLimit > 0 {
		mws = append(mws, middlewares.RateLimit(c.cfg.RateLimit, c.cfg.RateBurst))
	}

	return waymark.New(
		waymark.WithCustomLogger(c.log),
		waymark.WithRoutesFile(c.cfg.RoutesFile, watch),
		waymark.WithHealthChecks(),
		waymark.WithMetrics("/metrics", reg),
		waymark.WithMiddleware(append(mws, echo)...),
	), nil
}

// echo answers matched routes itself, so file routes need no bindings
// and survive reloads.
func echo(next waymark.HandlerFunc) waymark.HandlerFunc {
	return func(c waymark.Context) error {
		if c.RouteName() == "" {
			return next(c)
		}
		return c.JSON(http.StatusOK, echoResponse{
			Route:  c.RouteName(),
			Method: c.Request().Method,
			Params: c.Params(),
		})
	}
}
