package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waymark/pkg/route"
	"github.com/dmitrymomot/waymark/pkg/routefile"
)

func routesCmd(c *cli) *cobra.Command {
	var showRegex bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List routes in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := c.loadTable()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			header := "NAME\tTEMPLATE\tDEFAULTS"
			if showRegex {
				header += "\tREGEX"
			}
			fmt.Fprintln(w, header)

			for _, r := range table.All() {
				line := fmt.Sprintf("%s\t%s\t%s", r.Name(), displayTemplate(r.Template()), formatParams(r.Defaults()))
				if showRegex {
					line += "\t" + r.Pattern().String()
				}
				fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showRegex, "regex", false, "include the compiled expression")

	return cmd
}

func (c *cli) loadTable() (*route.Table, error) {
	table, err := routefile.LoadTable(c.cfg.RoutesFile, nil)
	if err != nil {
		return nil, err
	}
	c.log.Debug("routes loaded", "file", c.cfg.RoutesFile, "count", table.Len())
	return table, nil
}

func displayTemplate(t string) string {
	return "/" + t
}

// formatParams renders params as sorted key=value pairs.
func formatParams(p route.Params) string {
	if len(p) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		pairs = append(pairs, k+"="+p[k])
	}
	return strings.Join(pairs, ",")
}
