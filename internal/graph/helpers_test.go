package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestModel stores the given entities in order and freezes the model.
func newTestModel(t *testing.T, entities ...ClassEntity) *Model {
	t.Helper()
	m := NewModel()
	for _, e := range entities {
		require.NoError(t, m.Put(e))
	}
	m.Freeze()
	return m
}

func field(name, typ string) Member {
	return Member{Name: name, Type: typ, Visibility: VisibilityPrivate}
}

// animalEntities mirrors the Animal/Dog/Cat/Zoo sample header.
func animalEntities() []ClassEntity {
	return []ClassEntity{
		{
			Name: "Animal",
			Kind: EntityKindClass,
			Fields: []Member{
				{Name: "name", Type: "std::string", Visibility: VisibilityProtected},
				{Name: "age", Type: "int", Visibility: VisibilityProtected},
			},
			Methods: []Method{
				{Name: "Animal", Visibility: VisibilityPublic, IsConstructor: true},
				{Name: "~Animal", Visibility: VisibilityPublic, IsDestructor: true, IsVirtual: true},
				{Name: "speak", ReturnType: "void", Visibility: VisibilityPublic, IsVirtual: true, IsPureVirtual: true},
				{Name: "setName", ReturnType: "void", Visibility: VisibilityPublic,
					Params: []Param{{Type: "const std::string&", Name: "name"}}},
				{Name: "getName", ReturnType: "std::string", Visibility: VisibilityPublic, IsConst: true},
			},
		},
		{
			Name:   "Dog",
			Kind:   EntityKindClass,
			Bases:  []string{"Animal"},
			Fields: []Member{field("breed", "std::string"), field("trained", "bool")},
			Methods: []Method{
				{Name: "Dog", Visibility: VisibilityPublic, IsConstructor: true},
				{Name: "speak", ReturnType: "void", Visibility: VisibilityPublic},
				{Name: "fetch", ReturnType: "void", Visibility: VisibilityPublic},
			},
		},
		{
			Name:   "Cat",
			Kind:   EntityKindClass,
			Bases:  []string{"Animal"},
			Fields: []Member{field("lives", "int")},
			Methods: []Method{
				{Name: "Cat", Visibility: VisibilityPublic, IsConstructor: true},
				{Name: "speak", ReturnType: "void", Visibility: VisibilityPublic},
				{Name: "scratch", ReturnType: "void", Visibility: VisibilityPublic},
			},
		},
		{
			Name:   "Zoo",
			Kind:   EntityKindClass,
			Fields: []Member{field("animals", "std::vector<Animal*>"), field("zooName", "std::string")},
			Methods: []Method{
				{Name: "addAnimal", ReturnType: "void", Visibility: VisibilityPublic,
					Params: []Param{{Type: "Animal*", Name: "animal"}}},
				{Name: "showAll", ReturnType: "void", Visibility: VisibilityPublic},
			},
		},
	}
}

// chain returns composition edges linking names in order.
func chain(names ...string) []Edge {
	var edges []Edge
	for i := 0; i+1 < len(names); i++ {
		edges = append(edges, Edge{From: names[i], To: names[i+1], Kind: RelationComposition})
	}
	return edges
}

func plainEntities(names ...string) []ClassEntity {
	out := make([]ClassEntity, 0, len(names))
	for _, n := range names {
		out = append(out, ClassEntity{Name: n, Kind: EntityKindClass})
	}
	return out
}
