package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/export"
	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/project"
)

const (
	formatJSON    = "json"
	formatMermaid = "mermaid"
	formatPUML    = "puml"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		f      *renderFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "export [class]",
		Short: "Export a diagram or the class model",
		Long: `Export the neighbourhood of a class, or the whole project when no class is
given, in one of these formats:

  json     class model, relationships and diagnostics
  mermaid  Mermaid classDiagram
  puml     PlantUML markup
  png|svg|txt  image rendered by the configured PlantUML server`,
		Example: `  cppuml export Animal --format svg -o animal.svg
  cppuml export --format json -o model.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			snap, err := a.parse(cmd.Context())
			if err != nil {
				return err
			}
			sel, err := f.selection(a.cfg, snap, args)
			if err != nil {
				return err
			}
			data, err := a.export(cmd.Context(), f, snap, sel, format)
			if err != nil {
				return err
			}
			return a.writeOutput(f.output, data)
		},
	}
	f = addRenderFlags(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, mermaid, puml, png, svg or txt (default from config)")
	return cmd
}

func (a *app) export(ctx context.Context, f *renderFlags, snap *project.Snapshot, sel graph.Selection, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf, snap.Document(a.projectName(), &sel)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatMermaid:
		store, err := selectionStore(ctx, snap, sel)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		out, err := export.GenerateMermaid(ctx, store)
		return []byte(out), err
	}

	markup, err := f.markup(a.cfg, snap, sel)
	if err != nil {
		return nil, err
	}
	if format == formatPUML {
		return []byte(markup), nil
	}
	if !export.ValidFormat(format) {
		return nil, fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, format)
	}
	a.logger.WithFields(logrus.Fields{"server": a.cfg.Server, "format": format}).Info("Rendering via PlantUML server")
	return a.cfg.RenderClient().Render(ctx, markup, format)
}

// selectionStore loads the classes and edges of sel into an in-memory store.
func selectionStore(ctx context.Context, snap *project.Snapshot, sel graph.Selection) (*graph.MemStore, error) {
	sub := graph.NewModel()
	for _, name := range sel.Names {
		if e := snap.Model.Get(name); e != nil {
			if err := sub.Put(*e); err != nil {
				return nil, err
			}
		}
	}
	sub.Freeze()
	store := graph.NewMemStore()
	if err := graph.SaveSnapshot(ctx, store, sub, sel.Edges); err != nil {
		return nil, err
	}
	return store, nil
}
