package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// GenerateMermaid produces a Mermaid classDiagram from a graph store.
// External classes are annotated; every stored edge becomes a relation.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	classes, err := store.QueryClasses(ctx, "", 0)
	if err != nil {
		return "", fmt.Errorf("query classes: %w", err)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, c := range classes {
		if c.External {
			fmt.Fprintf(&sb, "  class %s\n  <<external>> %s\n", c.Name, c.Name)
			continue
		}
		fmt.Fprintf(&sb, "  class %s\n", c.Name)
	}

	for _, e := range edges {
		arrow, ok := arrows[e.Kind]
		if !ok {
			continue
		}
		if e.Kind == graph.RelationInheritance {
			fmt.Fprintf(&sb, "  %s %s %s\n", e.To, arrow, e.From)
			continue
		}
		if e.Label != "" {
			fmt.Fprintf(&sb, "  %s %s %q %s\n", e.From, arrow, e.Label, e.To)
			continue
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", e.From, arrow, e.To)
	}

	return sb.String(), nil
}
