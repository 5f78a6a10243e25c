package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/parse"
)

// Document is the JSON export of an analyzed project or of one selection.
type Document struct {
	Name        string              `json:"name"`
	RunID       string              `json:"runId,omitempty"`
	ExportedAt  string              `json:"exportedAt"`
	Stats       graph.GraphStats    `json:"stats"`
	Selection   *SelectionExport    `json:"selection,omitempty"`
	Classes     []graph.ClassEntity `json:"classes"`
	Edges       []graph.Edge        `json:"edges"`
	Diagnostics []parse.Diagnostic  `json:"diagnostics,omitempty"`
}

// SelectionExport describes how the exported subgraph was chosen.
type SelectionExport struct {
	Mode     graph.SelectionMode   `json:"mode"`
	Status   graph.SelectionStatus `json:"status"`
	Start    string                `json:"start,omitempty"`
	MaxDepth int                   `json:"maxDepth,omitempty"`
	Depths   map[string]int        `json:"depths,omitempty"`
}

// ExportInput carries what a Document is built from.
type ExportInput struct {
	Name        string
	RunID       string
	Model       *graph.Model
	Edges       []graph.Edge
	Diagnostics []parse.Diagnostic
	// Selection restricts classes and edges when set.
	Selection *graph.Selection
}

// ExportJSON builds a Document. Without a selection every class and edge is
// exported; with one, only the selected classes known to the model and the
// selected edges.
func ExportJSON(in ExportInput) *Document {
	doc := &Document{
		Name:        in.Name,
		RunID:       in.RunID,
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		Classes:     []graph.ClassEntity{},
		Edges:       in.Edges,
		Diagnostics: in.Diagnostics,
	}

	names := in.Model.Names()
	if sel := in.Selection; sel != nil {
		names = sel.Names
		doc.Edges = sel.Edges
		doc.Selection = &SelectionExport{
			Mode:     sel.Mode,
			Status:   sel.Status,
			Start:    sel.Start,
			MaxDepth: sel.MaxDepth,
			Depths:   sel.Depths,
		}
	}
	for _, name := range names {
		if e := in.Model.Get(name); e != nil {
			doc.Classes = append(doc.Classes, *e)
		}
	}
	if doc.Edges == nil {
		doc.Edges = []graph.Edge{}
	}
	doc.Stats = graph.StatsOf(in.Model, doc.Edges)
	doc.Stats.ClassCount = len(doc.Classes)
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: write json: %w", err)
	}
	return nil
}
