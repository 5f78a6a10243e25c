//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore_InitSchemaIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InitSchema(context.Background()))
}

func TestKuzuStore_ClassRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	node := ClassNode{Name: "Animal", Kind: EntityKindClass, File: "Animal.hpp", Line: 5, FieldCount: 2, MethodCount: 5}
	require.NoError(t, s.AddClass(ctx, node))

	got, err := s.GetClass(ctx, "Animal")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, node, *got)

	missing, err := s.GetClass(ctx, "Unicorn")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKuzuStore_AddClassUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddClass(ctx, ClassNode{Name: "A", Line: 1}))
	require.NoError(t, s.AddClass(ctx, ClassNode{Name: "A", Line: 9}))

	got, err := s.GetClass(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Line)
}

func TestKuzuStore_SaveSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := newTestModel(t, append(animalEntities(),
		ClassEntity{Name: "Widget", Bases: []string{"QObject"}})...)
	edges, err := Analyze(m, AnalyzeOptions{})
	require.NoError(t, err)
	require.NoError(t, SaveSnapshot(ctx, s, m, edges))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{ClassCount: 5, ExternalCount: 1, EdgeCount: 4}, stats)

	all, err := s.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, edges, all)

	in, err := s.GetRelated(ctx, "Animal", DirectionIncoming)
	require.NoError(t, err)
	assert.Len(t, in, 3)

	found, err := s.QueryClasses(ctx, "a", 0)
	require.NoError(t, err)
	names := make([]string, 0, len(found))
	for _, c := range found {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Animal", "Cat"}, names)
}

func TestKuzuStore_UnsupportedRelation(t *testing.T) {
	s := newTestStore(t)
	err := s.AddEdge(context.Background(), Edge{From: "A", To: "B", Kind: "friend"})
	assert.Error(t, err)
}

func TestKuzuFileStore_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "graph.kuzu")
	ctx := context.Background()

	s, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddClass(ctx, ClassNode{Name: "Zoo"}))
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetClass(ctx, "Zoo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Zoo", got.Name)
}
