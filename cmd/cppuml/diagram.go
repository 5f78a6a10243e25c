package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/export"
	"github.com/dusk-indust/cppuml/internal/graph"
)

func newDiagramCmd(a *app) *cobra.Command {
	var f *renderFlags
	cmd := &cobra.Command{
		Use:   "diagram <class>",
		Short: "Render the neighbourhood of a class",
		Long: `Render a PlantUML class diagram of every class within --depth relationship
hops of the given class. Relationships are followed in both directions, so a
base class pulls in its subclasses and a class pulls in the classes that hold
or use it.`,
		Example: `  cppuml diagram Animal --depth 2
  cppuml diagram Vehicle --kinds inheritance --show methods -o vehicle.puml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.parse(cmd.Context())
			if err != nil {
				return err
			}
			sel, err := f.selection(a.cfg, snap, args)
			if err != nil {
				return err
			}
			markup, err := f.markup(a.cfg, snap, sel)
			if err != nil {
				return err
			}
			return a.writeOutput(f.output, []byte(markup))
		},
	}
	f = addRenderFlags(cmd, true)
	return cmd
}

func newSelectedCmd(a *app) *cobra.Command {
	var f *renderFlags
	cmd := &cobra.Command{
		Use:   "selected <class>...",
		Short: "Render exactly the named classes",
		Long: `Render a PlantUML class diagram containing only the named classes, in the
order given, and the relationships among them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.parse(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range args {
				if !snap.Model.Has(name) {
					return fmt.Errorf("class %q not found", name)
				}
			}
			kinds, err := f.kindSet(a.cfg)
			if err != nil {
				return err
			}
			markup, err := f.markup(a.cfg, snap, snap.Select(args, kinds))
			if err != nil {
				return err
			}
			return a.writeOutput(f.output, []byte(markup))
		},
	}
	f = addRenderFlags(cmd, false)
	return cmd
}

func newAllCmd(a *app) *cobra.Command {
	var (
		f       *renderFlags
		split   bool
		minSize int
	)
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Render every class of the project",
		Long: `Render a PlantUML class diagram of the whole project. With --split, each
connected group of related classes becomes its own diagram; -o then names a
directory that receives one <FirstClass>.puml file per group.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.parse(cmd.Context())
			if err != nil {
				return err
			}
			kinds, err := f.kindSet(a.cfg)
			if err != nil {
				return err
			}
			opts, err := f.options(a.cfg)
			if err != nil {
				return err
			}
			if !split {
				markup := export.RenderPlantUML(snap.Model, snap.All(kinds), opts)
				return a.writeOutput(f.output, []byte(markup))
			}

			var combined strings.Builder
			for _, sel := range graph.SplitSelections(snap.Model, snap.Edges, kinds, minSize) {
				o := opts
				if o.Title == "" {
					o.Title = "Component: " + sel.Names[0]
				}
				markup := export.RenderPlantUML(snap.Model, sel, o)
				if f.output == "" || f.output == "-" {
					combined.WriteString(markup)
					continue
				}
				if err := a.writeOutput(filepath.Join(f.output, sel.Names[0]+".puml"), []byte(markup)); err != nil {
					return err
				}
			}
			if combined.Len() == 0 {
				return nil
			}
			return a.writeOutput("", []byte(combined.String()))
		},
	}
	f = addRenderFlags(cmd, false)
	cmd.Flags().BoolVar(&split, "split", false, "render each connected group of classes separately")
	cmd.Flags().IntVar(&minSize, "min-size", 1, "with --split, skip groups smaller than this")
	return cmd
}
