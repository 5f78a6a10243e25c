package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppuml/internal/graph"
)

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	m := newModel(t,
		graph.ClassEntity{Name: "Widget", Kind: graph.EntityKindClass},
		graph.ClassEntity{Name: "Label", Kind: graph.EntityKindClass},
	)
	edges := []graph.Edge{
		{From: "Widget", To: "QWidget", Kind: graph.RelationInheritance},
		{From: "Widget", To: "Label", Kind: graph.RelationAggregation, Label: "*"},
		{From: "Label", To: "Widget", Kind: graph.RelationDependency},
	}
	store := graph.NewMemStore()
	require.NoError(t, graph.SaveSnapshot(ctx, store, m, edges))

	out, err := GenerateMermaid(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, `classDiagram
  class Widget
  class Label
  class QWidget
  <<external>> QWidget
  QWidget <|-- Widget
  Widget o-- "*" Label
  Label ..> Widget
`, out)
}
