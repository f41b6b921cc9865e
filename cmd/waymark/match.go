package main

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func matchCmd(c *cli) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Show the route a path resolves to",
		Long: `Resolve a path against the routes file in priority order and print the
first route that accepts it together with its parameters, defaults included.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := c.loadTable()
			if err != nil {
				return err
			}

			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse path: %w", err)
			}
			req := &http.Request{Method: strings.ToUpper(method), URL: u, Header: http.Header{}}

			r, params, ok := table.Match(req)
			if !ok {
				return fmt.Errorf("%w: %s %s", errNoMatch, req.Method, u.Path)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "route: %s\n", r.Name())
			for _, k := range slices.Sorted(maps.Keys(params)) {
				fmt.Fprintf(out, "  %s = %s\n", k, params[k])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")

	return cmd
}
