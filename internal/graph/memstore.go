package graph

import (
	"context"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
// Queries return classes in insertion order.
type MemStore struct {
	mu      sync.RWMutex
	order   []string
	classes map[string]ClassNode
	edges   []Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{classes: make(map[string]ClassNode)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddClass stores a class node keyed by name, replacing an earlier one.
func (m *MemStore) AddClass(_ context.Context, node ClassNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[node.Name]; !ok {
		m.order = append(m.order, node.Name)
	}
	m.classes[node.Name] = node
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetClass returns the class with the given name, or nil if not found.
func (m *MemStore) GetClass(_ context.Context, name string) (*ClassNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// QueryClasses returns classes whose name contains query (case-insensitive),
// up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) QueryClasses(_ context.Context, query string, limit int) ([]ClassNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []ClassNode
	for _, name := range m.order {
		if !strings.Contains(strings.ToLower(name), lowerQuery) {
			continue
		}
		results = append(results, m.classes[name])
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// GetRelated returns the edges leaving (outgoing) or entering (incoming) the
// named class, in insertion order.
func (m *MemStore) GetRelated(_ context.Context, name string, direction Direction) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, e := range m.edges {
		switch direction {
		case DirectionOutgoing:
			if e.From == name {
				out = append(out, e)
			}
		case DirectionIncoming:
			if e.To == name {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Stats returns class, external and edge counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &GraphStats{EdgeCount: len(m.edges)}
	for _, c := range m.classes {
		if c.External {
			stats.ExternalCount++
		} else {
			stats.ClassCount++
		}
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
