package graph

import (
	"errors"
	"fmt"
)

// ErrDuplicateEdge signals a broken analyzer invariant: a relationship that
// must be unique per ordered pair was emitted twice.
var ErrDuplicateEdge = errors.New("graph: duplicate edge")

// DefaultHandleWrappers are template wrappers whose fields hold a collection
// of handles rather than an embedded value. Smart pointers are deliberately
// absent: a std::shared_ptr<T> field is spelled like a value and classifies
// as composition unless configured otherwise.
var DefaultHandleWrappers = []string{
	"vector", "list", "deque", "forward_list", "array", "span",
	"set", "multiset", "unordered_set", "unordered_multiset",
	"map", "multimap", "unordered_map", "unordered_multimap",
	"queue", "stack", "priority_queue",
	"QList", "QVector", "QSet", "QMap", "QHash",
}

// AnalyzeOptions tunes relationship classification.
type AnalyzeOptions struct {
	// HandleWrappers overrides DefaultHandleWrappers when non-empty.
	HandleWrappers []string
}

func (o AnalyzeOptions) wrapperSet() map[string]bool {
	names := o.HandleWrappers
	if len(names) == 0 {
		names = DefaultHandleWrappers
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Analyze infers the relationship edges of a model. Edges are emitted in
// model order; for each entity inheritance comes first, then one edge per
// field, then dependencies.
func Analyze(m *Model, opts AnalyzeOptions) ([]Edge, error) {
	wrappers := opts.wrapperSet()
	var edges []Edge
	for _, e := range m.Entities() {
		edges = append(edges, analyzeEntity(m, e, wrappers)...)
	}
	if err := checkDependencies(edges); err != nil {
		return nil, err
	}
	return edges, nil
}

func analyzeEntity(m *Model, e *ClassEntity, wrappers map[string]bool) []Edge {
	var edges []Edge
	structural := make(map[string]bool)

	for _, base := range e.Bases {
		name := BaseClassName(base)
		if name == "" || name == e.Name {
			continue
		}
		edges = append(edges, Edge{From: e.Name, To: name, Kind: RelationInheritance})
		structural[name] = true
	}

	for _, f := range e.Fields {
		ref := ParseTypeRef(f.Type)
		if ref.Name == e.Name || !m.Has(ref.Name) {
			continue
		}
		edge := Edge{From: e.Name, To: ref.Name, Kind: RelationComposition}
		if collection := heldByWrapper(ref, wrappers); ref.Handle || collection {
			edge.Kind = RelationAggregation
			if collection {
				edge.Label = "*"
			}
		}
		edges = append(edges, edge)
		structural[ref.Name] = true
	}

	seen := make(map[string]bool)
	addDependency := func(typeText string) {
		name := BaseTypeName(typeText)
		if name == "" || name == e.Name || !m.Has(name) || structural[name] || seen[name] {
			return
		}
		seen[name] = true
		edges = append(edges, Edge{From: e.Name, To: name, Kind: RelationDependency})
	}
	for _, method := range e.Methods {
		addDependency(method.ReturnType)
		for _, p := range method.Params {
			addDependency(p.Type)
		}
	}

	return edges
}

func heldByWrapper(ref TypeRef, wrappers map[string]bool) bool {
	for _, w := range ref.Wrappers {
		if wrappers[w] {
			return true
		}
	}
	return false
}

// checkDependencies verifies that at most one dependency edge exists per
// ordered pair.
func checkDependencies(edges []Edge) error {
	seen := make(map[[2]string]bool)
	for _, e := range edges {
		if e.Kind != RelationDependency {
			continue
		}
		key := [2]string{e.From, e.To}
		if seen[key] {
			return fmt.Errorf("%w: dependency %s -> %s", ErrDuplicateEdge, e.From, e.To)
		}
		seen[key] = true
	}
	return nil
}
