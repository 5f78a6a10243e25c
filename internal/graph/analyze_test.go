package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_AnimalSample(t *testing.T) {
	m := newTestModel(t, animalEntities()...)

	edges, err := Analyze(m, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, []Edge{
		{From: "Dog", To: "Animal", Kind: RelationInheritance},
		{From: "Cat", To: "Animal", Kind: RelationInheritance},
		{From: "Zoo", To: "Animal", Kind: RelationAggregation, Label: "*"},
	}, edges)
}

func TestAnalyze_CompositionVersusAggregation(t *testing.T) {
	m := newTestModel(t,
		ClassEntity{Name: "Engine"},
		ClassEntity{Name: "Car", Fields: []Member{
			field("engine", "Engine"),
			field("spare", "Engine*"),
			field("fleet", "std::vector<Engine>"),
			field("ref", "const Engine&"),
		}},
	)

	edges, err := Analyze(m, AnalyzeOptions{})
	require.NoError(t, err)
	require.Len(t, edges, 4, "one edge per field, no merging")

	assert.Equal(t, RelationComposition, edges[0].Kind)
	assert.Equal(t, RelationAggregation, edges[1].Kind)
	assert.Empty(t, edges[1].Label)
	assert.Equal(t, RelationAggregation, edges[2].Kind)
	assert.Equal(t, "*", edges[2].Label)
	assert.Equal(t, RelationAggregation, edges[3].Kind)
	for _, e := range edges {
		assert.Equal(t, "Car", e.From)
		assert.Equal(t, "Engine", e.To)
	}
}

func TestAnalyze_SmartPointerIsCompositionByDefault(t *testing.T) {
	entities := []ClassEntity{
		{Name: "Engine"},
		{Name: "Car", Fields: []Member{field("engine", "std::shared_ptr<Engine>")}},
	}

	edges, err := Analyze(newTestModel(t, entities...), AnalyzeOptions{})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, RelationComposition, edges[0].Kind)

	opts := AnalyzeOptions{HandleWrappers: []string{"shared_ptr"}}
	edges, err = Analyze(newTestModel(t, entities...), opts)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, RelationAggregation, edges[0].Kind)
}

func TestAnalyze_SkipsUnknownAndSelfTypes(t *testing.T) {
	m := newTestModel(t, ClassEntity{
		Name:  "Node",
		Bases: []string{"Node"},
		Fields: []Member{
			field("next", "Node*"),
			field("payload", "std::string"),
		},
		Methods: []Method{{Name: "clone", ReturnType: "Node*"}},
	})

	edges, err := Analyze(m, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestAnalyze_ExternalBasesKeepInheritanceEdges(t *testing.T) {
	m := newTestModel(t, ClassEntity{Name: "Widget", Bases: []string{"Qt::QObject", "ns::Mixin<Widget>"}})

	edges, err := Analyze(m, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{From: "Widget", To: "QObject", Kind: RelationInheritance},
		{From: "Widget", To: "Mixin", Kind: RelationInheritance},
	}, edges)
}

func TestAnalyze_DependenciesDeduplicatedAndSuppressed(t *testing.T) {
	m := newTestModel(t,
		ClassEntity{Name: "Logger"},
		ClassEntity{Name: "Request"},
		ClassEntity{Name: "Response"},
		ClassEntity{
			Name:   "Handler",
			Fields: []Member{field("log", "Logger*")},
			Methods: []Method{
				{Name: "handle", ReturnType: "Response", Params: []Param{{Type: "const Request&", Name: "req"}}},
				{Name: "retry", ReturnType: "Response", Params: []Param{{Type: "Request", Name: "req"}}},
				{Name: "setLogger", ReturnType: "void", Params: []Param{{Type: "Logger*"}}},
			},
		},
	)

	edges, err := Analyze(m, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{From: "Handler", To: "Logger", Kind: RelationAggregation},
		{From: "Handler", To: "Response", Kind: RelationDependency},
		{From: "Handler", To: "Request", Kind: RelationDependency},
	}, edges)
}

func TestAnalyze_Deterministic(t *testing.T) {
	first, err := Analyze(newTestModel(t, animalEntities()...), AnalyzeOptions{})
	require.NoError(t, err)
	second, err := Analyze(newTestModel(t, animalEntities()...), AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckDependencies_DuplicatePair(t *testing.T) {
	err := checkDependencies([]Edge{
		{From: "A", To: "B", Kind: RelationDependency},
		{From: "A", To: "B", Kind: RelationComposition},
		{From: "A", To: "B", Kind: RelationDependency},
	})
	require.ErrorIs(t, err, ErrDuplicateEdge)
	assert.NoError(t, checkDependencies([]Edge{
		{From: "A", To: "B", Kind: RelationDependency},
		{From: "B", To: "A", Kind: RelationDependency},
	}))
}
