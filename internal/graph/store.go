package graph

import (
	"context"
	"fmt"
	"io"
)

// Store persists an analyzed class graph.
// Implementations: KuzuStore (cgo, on disk), MemStore (in process).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddClass(ctx context.Context, node ClassNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetClass(ctx context.Context, name string) (*ClassNode, error)
	QueryClasses(ctx context.Context, query string, limit int) ([]ClassNode, error)
	GetRelated(ctx context.Context, name string, direction Direction) ([]Edge, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction selects which end of an edge a lookup matches.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing" // edges owned by the class
	DirectionIncoming Direction = "incoming" // edges pointing at the class
)

// ClassNode is the stored summary of a class. External nodes stand for base
// classes referenced by the project but declared elsewhere.
type ClassNode struct {
	Name        string     `json:"name"`
	Kind        EntityKind `json:"kind,omitempty"`
	File        string     `json:"file,omitempty"`
	Line        int        `json:"line,omitempty"`
	External    bool       `json:"external,omitempty"`
	FieldCount  int        `json:"fieldCount"`
	MethodCount int        `json:"methodCount"`
}

// NodeFor summarizes an entity for storage.
func NodeFor(e *ClassEntity) ClassNode {
	return ClassNode{
		Name:        e.Name,
		Kind:        e.Kind,
		File:        e.File,
		Line:        e.Line,
		FieldCount:  len(e.Fields),
		MethodCount: len(e.Methods),
	}
}

// SaveSnapshot writes every entity of m, an external node for each edge
// target outside m, and then every edge.
func SaveSnapshot(ctx context.Context, s Store, m *Model, edges []Edge) error {
	for _, e := range m.Entities() {
		if err := s.AddClass(ctx, NodeFor(e)); err != nil {
			return fmt.Errorf("save class %s: %w", e.Name, err)
		}
	}
	externals := make(map[string]bool)
	for _, e := range edges {
		if m.Has(e.To) || externals[e.To] {
			continue
		}
		externals[e.To] = true
		if err := s.AddClass(ctx, ClassNode{Name: e.To, External: true}); err != nil {
			return fmt.Errorf("save external %s: %w", e.To, err)
		}
	}
	for _, e := range edges {
		if err := s.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("save edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return nil
}

// StatsOf counts the classes of m, the distinct edge targets outside m and
// the edges.
func StatsOf(m *Model, edges []Edge) GraphStats {
	externals := make(map[string]bool)
	for _, e := range edges {
		if !m.Has(e.To) {
			externals[e.To] = true
		}
	}
	return GraphStats{ClassCount: m.Len(), ExternalCount: len(externals), EdgeCount: len(edges)}
}
