// Command waymark inspects and serves YAML route files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waymark/pkg/logger"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errNoMatch is returned by the match command when no route accepts the path.
var errNoMatch = errors.New("no route matches")

// config is read from the environment; flags override it.
type config struct {
	RoutesFile string `env:"WAYMARK_ROUTES" envDefault:"routes.yaml"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
	SentryDSN  string `env:"SENTRY_DSN"`

	// RateLimit caps requests per second per route in serve; 0 disables it.
	RateLimit float64 `env:"WAYMARK_RATE_LIMIT"`
	RateBurst int     `env:"WAYMARK_RATE_BURST" envDefault:"10"`
}

// cli carries state shared by all subcommands.
type cli struct {
	log   *slog.Logger
	flush func(context.Context) error
	cfg   config
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "waymark",
		Short: "Inspect and serve named route files",
		Long: `waymark works with YAML route files: list the routes in priority order,
find the route a path resolves to, build URIs by route name, or serve the
file so every matched route echoes its parameters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			file := c.cfg.RoutesFile
			if err := env.Parse(&c.cfg); err != nil {
				return fmt.Errorf("read environment: %w", err)
			}
			if cmd.Flags().Changed("file") {
				c.cfg.RoutesFile = file
			}
			c.log, c.flush = logger.NewWithSentry(logger.SentryConfig{
				Config: logger.Config{
					Output: logOutput,
					Level:  c.cfg.LogLevel,
					Format: c.cfg.LogFormat,
				},
				DSN:     c.cfg.SentryDSN,
				Release: version,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.cfg.RoutesFile, "file", "f", "routes.yaml", "routes file (env WAYMARK_ROUTES)")

	root.AddCommand(
		routesCmd(c),
		matchCmd(c),
		urlCmd(c),
		serveCmd(c),
		versionCmd(),
	)

	return root
}
