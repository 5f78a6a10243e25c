package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// Display categories accepted by RenderOptions.Show.
const (
	ShowMembers = "members"
	ShowMethods = "methods"
)

// arrows maps relationship kinds to PlantUML relationship tokens.
var arrows = map[graph.RelationKind]string{
	graph.RelationInheritance: "<|--",
	graph.RelationComposition: "*--",
	graph.RelationAggregation: "o--",
	graph.RelationDependency:  "..>",
}

// accessOrder is the order in which visibility groups are written.
var accessOrder = []graph.Visibility{
	graph.VisibilityPublic,
	graph.VisibilityProtected,
	graph.VisibilityPrivate,
}

// RenderOptions controls diagram output.
type RenderOptions struct {
	// Title overrides the title derived from the selection mode.
	Title string
	// Show limits the class body to the listed categories (ShowMembers,
	// ShowMethods). Empty shows everything.
	Show []string
	// Multiplicity writes edge labels as a quoted target cardinality.
	Multiplicity bool
}

func (o RenderOptions) shows(category string) bool {
	if len(o.Show) == 0 {
		return true
	}
	for _, s := range o.Show {
		if s == category {
			return true
		}
	}
	return false
}

// DefaultTitle returns the title used for sel when none is given.
func DefaultTitle(sel graph.Selection) string {
	switch sel.Mode {
	case graph.ModeSelected:
		return "Selected Classes Diagram"
	case graph.ModeAll:
		return "Full Class Diagram"
	default:
		return fmt.Sprintf("Class Diagram: %s (depth=%d)", sel.Start, sel.MaxDepth)
	}
}

// RenderPlantUML writes sel as a PlantUML class diagram. Class blocks follow
// the selection order and relationship lines the edge order; names without
// an entity in m appear only as relationship endpoints.
func RenderPlantUML(m *graph.Model, sel graph.Selection, opts RenderOptions) string {
	title := opts.Title
	if title == "" {
		title = DefaultTitle(sel)
	}

	var sb strings.Builder
	sb.WriteString("@startuml\n")
	fmt.Fprintf(&sb, "title %s\n\n", title)
	sb.WriteString("skinparam classAttributeIconSize 0\n")
	sb.WriteString("skinparam classFontStyle bold\n\n")

	for _, name := range sel.Names {
		e := m.Get(name)
		if e == nil {
			continue
		}
		writeClass(&sb, e, opts)
		sb.WriteString("\n")
	}

	if len(sel.Edges) > 0 {
		sb.WriteString("' Relationships\n")
		for _, e := range sel.Edges {
			sb.WriteString(relationLine(e, opts.Multiplicity))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("@enduml\n")
	return sb.String()
}

func writeClass(sb *strings.Builder, e *graph.ClassEntity, opts RenderOptions) {
	// PlantUML has no struct keyword for classes.
	fmt.Fprintf(sb, "class %s {\n", e.Name)

	var fields, methods []string
	if opts.shows(ShowMembers) {
		for _, vis := range accessOrder {
			for _, f := range e.Fields {
				if f.Visibility == vis {
					fields = append(fields, fmt.Sprintf("  %s%s: %s", vis.Marker(), f.Name, escapeType(f.Type)))
				}
			}
		}
	}
	if opts.shows(ShowMethods) {
		for _, vis := range accessOrder {
			for _, m := range e.Methods {
				if m.Visibility == vis {
					methods = append(methods, "  "+methodLine(m))
				}
			}
		}
	}

	for _, line := range fields {
		sb.WriteString(line + "\n")
	}
	if len(fields) > 0 && len(methods) > 0 {
		sb.WriteString("  --\n")
	}
	for _, line := range methods {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("}\n")
}

func methodLine(m graph.Method) string {
	params := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		if p.Name != "" {
			params = append(params, p.Name+": "+escapeType(p.Type))
		} else {
			params = append(params, escapeType(p.Type))
		}
	}
	line := fmt.Sprintf("%s%s(%s)", m.Visibility.Marker(), m.Name, strings.Join(params, ", "))
	if m.IsConstructor || m.IsDestructor || m.ReturnType == "" {
		return line
	}
	return line + ": " + escapeType(m.ReturnType)
}

func relationLine(e graph.Edge, multiplicity bool) string {
	arrow, ok := arrows[e.Kind]
	if !ok {
		arrow = "-->"
	}
	if e.Kind == graph.RelationInheritance {
		return fmt.Sprintf("%s %s %s", e.To, arrow, e.From)
	}
	if multiplicity && e.Label != "" {
		return fmt.Sprintf("%s %s %q %s", e.From, arrow, e.Label, e.To)
	}
	return fmt.Sprintf("%s %s %s", e.From, arrow, e.To)
}

// escapeType rewrites template brackets, which PlantUML reserves, to '~'.
func escapeType(t string) string {
	return strings.NewReplacer("<", "~", ">", "~").Replace(t)
}
