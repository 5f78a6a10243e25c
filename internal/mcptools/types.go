package mcptools

import (
	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/parse"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates JSON schemas from these struct tags.

// ParseProjectInput is the input for the parse_project MCP tool.
type ParseProjectInput struct {
	Root string `json:"root,omitempty" jsonschema:"project directory to parse (default: the server's project root)"`
}

// ParseProjectOutput is the result of the parse_project MCP tool.
type ParseProjectOutput struct {
	RunID       string             `json:"runId"`
	Stats       graph.GraphStats   `json:"stats"`
	Diagnostics []parse.Diagnostic `json:"diagnostics,omitempty"`
}

// ListClassesInput is the input for the list_classes MCP tool.
type ListClassesInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive substring of the class name"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 50)"`
}

// ListClassesOutput is the result of the list_classes MCP tool.
type ListClassesOutput struct {
	Classes []graph.ClassNode `json:"classes"`
	Total   int               `json:"total"`
}

// RenderDiagramInput is the input for the render_diagram MCP tool.
type RenderDiagramInput struct {
	Start string   `json:"start" jsonschema:"class to start the traversal from"`
	Depth *int     `json:"depth,omitempty" jsonschema:"maximum number of hops from the start class (default: configured depth)"`
	Kinds []string `json:"kinds,omitempty" jsonschema:"relationship kinds to follow: inheritance, composition, aggregation, dependency (default: all)"`
	Show  []string `json:"show,omitempty" jsonschema:"class body sections to show: members, methods (default: both)"`
	Title string   `json:"title,omitempty" jsonschema:"diagram title override"`
}

// RenderSelectedInput is the input for the render_selected MCP tool.
type RenderSelectedInput struct {
	Names []string `json:"names" jsonschema:"classes to draw, in order"`
	Kinds []string `json:"kinds,omitempty" jsonschema:"relationship kinds to draw (default: all)"`
	Show  []string `json:"show,omitempty" jsonschema:"class body sections to show: members, methods (default: both)"`
	Title string   `json:"title,omitempty" jsonschema:"diagram title override"`
}

// DiagramOutput is the result of the render tools.
type DiagramOutput struct {
	Status graph.SelectionStatus `json:"status"`
	Markup string                `json:"markup,omitempty"`
	Names  []string              `json:"names"`
	Edges  []graph.Edge          `json:"edges"`
}

// GetHierarchyInput is the input for the get_hierarchy MCP tool.
type GetHierarchyInput struct {
	Class string `json:"class" jsonschema:"class whose inheritance hierarchy is returned"`
}

// GetHierarchyOutput is the result of the get_hierarchy MCP tool.
type GetHierarchyOutput struct {
	Class       string   `json:"class"`
	Known       bool     `json:"known"`
	Ancestors   []string `json:"ancestors"`
	Descendants []string `json:"descendants"`
	Roots       []string `json:"roots"`
	Cycles      []string `json:"cycles,omitempty"`
}

// GetRelationsInput is the input for the get_relations MCP tool.
type GetRelationsInput struct {
	Class     string `json:"class" jsonschema:"class whose relationships are returned"`
	Direction string `json:"direction,omitempty" jsonschema:"outgoing (edges owned by the class) or incoming (edges pointing at it). Default: outgoing"`
}

// GetRelationsOutput is the result of the get_relations MCP tool.
type GetRelationsOutput struct {
	Edges []graph.Edge `json:"edges"`
}
