package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/config"
	"github.com/dusk-indust/cppuml/internal/export"
	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/project"
)

// renderFlags are the diagram options shared by the rendering commands.
// Unset flags fall back to the project configuration.
type renderFlags struct {
	depth        int
	kinds        []string
	show         []string
	multiplicity bool
	title        string
	output       string

	cmd *cobra.Command
}

func addRenderFlags(cmd *cobra.Command, withDepth bool) *renderFlags {
	f := &renderFlags{cmd: cmd}
	if withDepth {
		cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "maximum relationship hops from the start class (default from config)")
	}
	cmd.Flags().StringSliceVarP(&f.kinds, "kinds", "k", nil, "relationship kinds to follow: inheritance,composition,aggregation,dependency")
	cmd.Flags().StringSliceVar(&f.show, "show", nil, "class body sections to show: members,methods")
	cmd.Flags().BoolVar(&f.multiplicity, "multiplicity", false, "label collection relationships with their multiplicity")
	cmd.Flags().StringVar(&f.title, "title", "", "diagram title (default depends on the diagram)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	return f
}

func (f *renderFlags) maxDepth(cfg *config.Config) (int, error) {
	if !f.cmd.Flags().Changed("depth") {
		return cfg.Depth, nil
	}
	if f.depth < 0 {
		return 0, fmt.Errorf("--depth must not be negative, got %d", f.depth)
	}
	return f.depth, nil
}

func (f *renderFlags) kindSet(cfg *config.Config) (graph.KindSet, error) {
	if len(f.kinds) == 0 {
		return cfg.KindSet(), nil
	}
	return config.ParseKinds(f.kinds)
}

func (f *renderFlags) options(cfg *config.Config) (export.RenderOptions, error) {
	opts := cfg.RenderOptions()
	if len(f.show) > 0 {
		for _, s := range f.show {
			if s != export.ShowMembers && s != export.ShowMethods {
				return opts, fmt.Errorf("unknown display category %q (want %s or %s)", s, export.ShowMembers, export.ShowMethods)
			}
		}
		opts.Show = f.show
	}
	if f.cmd.Flags().Changed("multiplicity") {
		opts.Multiplicity = f.multiplicity
	}
	opts.Title = f.title
	return opts, nil
}

// selection resolves the command arguments against snap: no argument selects
// the whole model, one argument starts a traversal from that class.
func (f *renderFlags) selection(cfg *config.Config, snap *project.Snapshot, args []string) (graph.Selection, error) {
	kinds, err := f.kindSet(cfg)
	if err != nil {
		return graph.Selection{}, err
	}
	if len(args) == 0 {
		return snap.All(kinds), nil
	}
	depth, err := f.maxDepth(cfg)
	if err != nil {
		return graph.Selection{}, err
	}
	sel := snap.Traverse(args[0], depth, kinds)
	if sel.Status == graph.StatusUnknownStart {
		return sel, fmt.Errorf("class %q not found", args[0])
	}
	return sel, nil
}

// markup renders sel with the resolved options.
func (f *renderFlags) markup(cfg *config.Config, snap *project.Snapshot, sel graph.Selection) (string, error) {
	opts, err := f.options(cfg)
	if err != nil {
		return "", err
	}
	return export.RenderPlantUML(snap.Model, sel, opts), nil
}
