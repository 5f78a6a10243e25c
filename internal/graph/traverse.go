package graph

// SelectionMode records how a Selection was produced.
type SelectionMode string

const (
	ModeTraversal SelectionMode = "traversal"
	ModeSelected  SelectionMode = "selected"
	ModeAll       SelectionMode = "all"
)

// SelectionStatus is the caller-visible outcome of a selection.
type SelectionStatus string

const (
	StatusOK           SelectionStatus = "ok"
	StatusUnknownStart SelectionStatus = "unknown_start"
)

// Selection is the subgraph handed to the diagram serializer.
type Selection struct {
	Mode     SelectionMode   `json:"mode"`
	Status   SelectionStatus `json:"status"`
	Start    string          `json:"start,omitempty"`
	MaxDepth int             `json:"maxDepth,omitempty"`
	Names    []string        `json:"names"`
	Depths   map[string]int  `json:"depths,omitempty"`
	Edges    []Edge          `json:"edges"`
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool { return len(s.Names) == 0 }

// Contains reports whether name is part of the selection.
func (s Selection) Contains(name string) bool {
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

// TraverseOptions configures a depth-bounded traversal.
type TraverseOptions struct {
	Start    string
	MaxDepth int
	Kinds    KindSet
}

// Traverse selects the classes within MaxDepth hops of Start. Edges of an
// allowed kind are followed in both directions, so a base class reaches its
// subclasses and a class reaches the classes that hold or use it.
//
// A class keeps the depth at which it was first reached. Classes at MaxDepth
// are included but not expanded. Every allowed edge between two selected
// classes is kept, in discovery order; edges leading past MaxDepth are
// dropped. Names absent from the model, such as external base classes, are
// never selected or expanded; an edge reaching one is kept so the renderer
// can draw it as a bare reference. An unknown Start yields an empty selection with
// StatusUnknownStart.
func Traverse(m *Model, edges []Edge, opts TraverseOptions) Selection {
	sel := Selection{
		Mode:     ModeTraversal,
		Status:   StatusOK,
		Start:    opts.Start,
		MaxDepth: opts.MaxDepth,
	}
	if !m.Has(opts.Start) {
		sel.Status = StatusUnknownStart
		return sel
	}
	maxDepth := opts.MaxDepth
	if maxDepth < 0 {
		maxDepth = 0
	}

	incident := incidence(edges, opts.Kinds)

	depths := map[string]int{opts.Start: 0}
	names := []string{opts.Start}
	queue := []string{opts.Start}
	recorded := make(map[int]bool)
	var order []int

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		d := depths[name]

		for _, idx := range incident[name] {
			nb := edges[idx].Other(name)
			if !m.Has(nb) {
				if d < maxDepth && !recorded[idx] {
					recorded[idx] = true
					order = append(order, idx)
				}
				continue
			}
			if _, seen := depths[nb]; !seen {
				if d >= maxDepth {
					continue
				}
				depths[nb] = d + 1
				names = append(names, nb)
				queue = append(queue, nb)
			}
			if !recorded[idx] {
				recorded[idx] = true
				order = append(order, idx)
			}
		}
	}

	sel.Names = names
	sel.Depths = depths
	sel.Edges = make([]Edge, 0, len(order))
	for _, idx := range order {
		sel.Edges = append(sel.Edges, edges[idx])
	}
	return sel
}

// SelectSet selects exactly the given classes, in the given order, together
// with every allowed edge whose endpoints are both selected.
func SelectSet(edges []Edge, names []string, kinds KindSet) Selection {
	sel := Selection{Mode: ModeSelected, Status: StatusOK}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || set[n] {
			continue
		}
		set[n] = true
		sel.Names = append(sel.Names, n)
	}
	sel.Edges = []Edge{}
	for _, e := range edges {
		if kinds.Allows(e.Kind) && set[e.From] && set[e.To] {
			sel.Edges = append(sel.Edges, e)
		}
	}
	return sel
}

// SelectAll selects every class of the model and every allowed edge,
// including edges to external base classes.
func SelectAll(m *Model, edges []Edge, kinds KindSet) Selection {
	sel := Selection{Mode: ModeAll, Status: StatusOK, Names: m.Names(), Edges: []Edge{}}
	for _, e := range edges {
		if kinds.Allows(e.Kind) {
			sel.Edges = append(sel.Edges, e)
		}
	}
	return sel
}

// incidence indexes allowed edges by both endpoints, preserving edge order.
func incidence(edges []Edge, kinds KindSet) map[string][]int {
	idx := make(map[string][]int)
	for i, e := range edges {
		if !kinds.Allows(e.Kind) {
			continue
		}
		idx[e.From] = append(idx[e.From], i)
		if e.To != e.From {
			idx[e.To] = append(idx[e.To], i)
		}
	}
	return idx
}
