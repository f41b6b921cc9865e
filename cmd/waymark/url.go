package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waymark/pkg/route"
)

func urlCmd(c *cli) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "url <name> [key=value ...]",
		Short: "Build the URI of a named route",
		Long: `Expand a named route with the given parameters. Optional groups whose
values equal their defaults are left out; a required parameter with no
value and no default is an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			table, err := c.loadTable()
			if err != nil {
				return err
			}

			u, err := table.URL(args[0], base, params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base URL for internal routes, e.g. https://example.com")

	return cmd
}

func parseParams(args []string) (route.Params, error) {
	params := make(route.Params, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", arg)
		}
		params[k] = v
	}
	return params, nil
}
