package graph

// Component is one connected cluster of classes.
type Component struct {
	Name    string   `json:"name"` // first member in model order
	Members []string `json:"members"`
}

// Components finds the connected components of the model's class graph,
// treating allowed edges as undirected. External names join the component of
// the class that references them. Components are returned in model order and
// members in breadth-first discovery order.
func Components(m *Model, edges []Edge, kinds KindSet) []Component {
	adj := buildAdjacency(edges, kinds)

	visited := make(map[string]bool, m.Len())
	var out []Component
	for _, name := range m.Names() {
		if visited[name] {
			continue
		}
		members := bfsComponent(name, adj, visited)
		out = append(out, Component{Name: name, Members: members})
	}
	return out
}

// SplitSelections turns each component with at least minSize members into
// its own selected-set selection.
func SplitSelections(m *Model, edges []Edge, kinds KindSet, minSize int) []Selection {
	var out []Selection
	for _, c := range Components(m, edges, kinds) {
		if len(c.Members) < minSize {
			continue
		}
		out = append(out, SelectSet(edges, c.Members, kinds))
	}
	return out
}

// buildAdjacency constructs an ordered bidirectional adjacency list in a
// single pass over the edges.
func buildAdjacency(edges []Edge, kinds KindSet) map[string][]string {
	adj := make(map[string][]string)
	linked := make(map[[2]string]bool)
	link := func(a, b string) {
		if linked[[2]string{a, b}] {
			return
		}
		linked[[2]string{a, b}] = true
		adj[a] = append(adj[a], b)
	}
	for _, e := range edges {
		if !kinds.Allows(e.Kind) || e.From == e.To {
			continue
		}
		link(e.From, e.To)
		link(e.To, e.From)
	}
	return adj
}

// bfsComponent performs BFS from start and returns all reachable nodes,
// marking them visited.
func bfsComponent(start string, adj map[string][]string, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for _, neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	return component
}
