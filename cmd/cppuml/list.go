package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var externals bool

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List the classes found in the project",
		Long: `List every class and struct declared in the project, in declaration order.
An optional query keeps only names containing it (case-insensitive).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.parse(cmd.Context())
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = strings.ToLower(args[0])
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, e := range snap.Model.Entities() {
				if !strings.Contains(strings.ToLower(e.Name), query) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s:%d\t%d fields\t%d methods\n",
					e.Name, e.Kind, e.File, e.Line, len(e.Fields), len(e.Methods))
			}
			if externals {
				seen := make(map[string]bool)
				for _, e := range snap.Edges {
					if snap.Model.Has(e.To) || seen[e.To] || !strings.Contains(strings.ToLower(e.To), query) {
						continue
					}
					seen[e.To] = true
					fmt.Fprintf(tw, "%s\texternal\t\t\t\n", e.To)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&externals, "externals", false, "also list referenced classes declared outside the project")
	return cmd
}
