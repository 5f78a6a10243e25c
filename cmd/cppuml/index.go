//go:build cgo

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/graph"
)

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Persist the class graph to a Kuzu database",
		Long: `Parse the project and write its classes and relationships to the Kuzu
database at graphPath (default .cppuml/graph.kuzu under the project root),
replacing any previous index. The database can then be queried with Cypher.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			snap, err := a.parse(ctx)
			if err != nil {
				return err
			}

			path := a.cfg.GraphPath
			if !filepath.IsAbs(path) {
				path = filepath.Join(a.rootDir, path)
			}
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("remove old index: %w", err)
			}
			store, err := graph.NewKuzuFileStore(path)
			if err != nil {
				return fmt.Errorf("open graph: %w", err)
			}
			defer store.Close()

			if err := store.InitSchema(ctx); err != nil {
				return err
			}
			if err := graph.SaveSnapshot(ctx, store, snap.Model, snap.Edges); err != nil {
				return err
			}
			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "Indexed %d classes, %d external classes, %d relationships into %s\n",
				stats.ClassCount, stats.ExternalCount, stats.EdgeCount, path)
			return err
		},
	}
}
