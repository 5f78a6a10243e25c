package graph

import (
	"errors"
	"fmt"
	"sort"

	dgraph "github.com/dominikbraun/graph"
)

// CycleReport names an inheritance edge that would have closed a cycle.
type CycleReport struct {
	Derived string `json:"derived"`
	Base    string `json:"base"`
}

func (c CycleReport) String() string {
	return fmt.Sprintf("cyclic inheritance: %s -> %s dropped", c.Derived, c.Base)
}

// Hierarchy is the inheritance graph of a model, directed from derived class
// to base class. Edges that would close a cycle are dropped and reported, so
// every closure computed over it terminates.
type Hierarchy struct {
	g      dgraph.Graph[string, string]
	Cycles []CycleReport
}

// BuildHierarchy collects the inheritance edges of edges into a Hierarchy.
func BuildHierarchy(edges []Edge) (*Hierarchy, error) {
	h := &Hierarchy{
		g: dgraph.New(dgraph.StringHash, dgraph.Directed(), dgraph.PreventCycles()),
	}
	for _, e := range edges {
		if e.Kind != RelationInheritance {
			continue
		}
		for _, v := range []string{e.From, e.To} {
			if err := h.g.AddVertex(v); err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("hierarchy: add %s: %w", v, err)
			}
		}
		err := h.g.AddEdge(e.From, e.To)
		switch {
		case err == nil, errors.Is(err, dgraph.ErrEdgeAlreadyExists):
		case errors.Is(err, dgraph.ErrEdgeCreatesCycle):
			h.Cycles = append(h.Cycles, CycleReport{Derived: e.From, Base: e.To})
		default:
			return nil, fmt.Errorf("hierarchy: %s -> %s: %w", e.From, e.To, err)
		}
	}
	return h, nil
}

// Ancestors returns every direct and indirect base of name, sorted by name.
// Unknown names have no ancestors.
func (h *Hierarchy) Ancestors(name string) []string {
	var out []string
	err := dgraph.BFS(h.g, name, func(v string) bool {
		if v != name {
			out = append(out, v)
		}
		return false
	})
	if err != nil {
		return nil
	}
	sort.Strings(out)
	return out
}

// Descendants returns every direct and indirect subclass of name, sorted by
// name.
func (h *Hierarchy) Descendants(name string) []string {
	preds, err := h.g.PredecessorMap()
	if err != nil {
		return nil
	}
	if _, ok := preds[name]; !ok {
		return nil
	}
	seen := map[string]bool{name: true}
	queue := []string{name}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for sub := range preds[cur] {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			out = append(out, sub)
			queue = append(queue, sub)
		}
	}
	sort.Strings(out)
	return out
}

// Roots returns the classes that have subclasses but no base, sorted.
func (h *Hierarchy) Roots() []string {
	adj, err := h.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []string
	for v, bases := range adj {
		if len(bases) == 0 {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
