package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/cppuml/internal/config"
	"github.com/dusk-indust/cppuml/internal/export"
	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/project"
)

// ErrNotParsed is returned by query tools before parse_project has run.
var ErrNotParsed = errors.New("no project parsed yet; call parse_project first")

const defaultListLimit = 50

// ClassService holds the latest snapshot and its graph store for the MCP
// tool handlers. Handlers may run concurrently; a parse swaps the snapshot
// and store atomically under mu.
type ClassService struct {
	cfg    *config.Config
	logger *logrus.Logger
	parser *project.Service
	root   string

	mu    sync.RWMutex
	snap  *project.Snapshot
	store *graph.MemStore
}

// NewClassService creates a service that parses root when parse_project is
// called without an explicit directory.
func NewClassService(cfg *config.Config, logger *logrus.Logger, root string) (*ClassService, error) {
	parser, err := project.NewService(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &ClassService{cfg: cfg, logger: logger, parser: parser, root: root}, nil
}

// Close releases the parser cache and the current store.
func (s *ClassService) Close() error {
	s.parser.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Load installs an already built snapshot, as parse_project would.
func (s *ClassService) Load(ctx context.Context, snap *project.Snapshot) error {
	store := graph.NewMemStore()
	if err := graph.SaveSnapshot(ctx, store, snap.Model, snap.Edges); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.mu.Lock()
	old := s.store
	s.snap, s.store = snap, store
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

func (s *ClassService) current() (*project.Snapshot, *graph.MemStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, nil, ErrNotParsed
	}
	return s.snap, s.store, nil
}

// ParseProject parses a source tree and replaces the current snapshot.
func (s *ClassService) ParseProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ParseProjectInput,
) (*mcp.CallToolResult, ParseProjectOutput, error) {
	root := input.Root
	if root == "" {
		root = s.root
	}
	if root == "" {
		return nil, ParseProjectOutput{}, fmt.Errorf("root is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, ParseProjectOutput{}, fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, ParseProjectOutput{}, fmt.Errorf("root is not a directory: %s", root)
	}

	snap, err := s.parser.Parse(ctx, root, nil)
	if err != nil {
		return nil, ParseProjectOutput{}, err
	}
	if err := s.Load(ctx, snap); err != nil {
		return nil, ParseProjectOutput{}, err
	}
	return nil, ParseProjectOutput{
		RunID:       snap.RunID,
		Stats:       snap.Stats(),
		Diagnostics: snap.Diagnostics,
	}, nil
}

// ListClasses searches the stored classes by name.
func (s *ClassService) ListClasses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListClassesInput,
) (*mcp.CallToolResult, ListClassesOutput, error) {
	_, store, err := s.current()
	if err != nil {
		return nil, ListClassesOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	classes, err := store.QueryClasses(ctx, input.Query, limit)
	if err != nil {
		return nil, ListClassesOutput{}, fmt.Errorf("query classes: %w", err)
	}
	if classes == nil {
		classes = []graph.ClassNode{}
	}
	return nil, ListClassesOutput{Classes: classes, Total: len(classes)}, nil
}

// RenderDiagram draws the neighbourhood of a class. An unknown start class is
// reported through the status field rather than as a tool error.
func (s *ClassService) RenderDiagram(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RenderDiagramInput,
) (*mcp.CallToolResult, DiagramOutput, error) {
	snap, _, err := s.current()
	if err != nil {
		return nil, DiagramOutput{}, err
	}
	if input.Start == "" {
		return nil, DiagramOutput{}, fmt.Errorf("start is required")
	}
	depth := s.cfg.Depth
	if input.Depth != nil {
		depth = *input.Depth
	}
	if depth < 0 {
		return nil, DiagramOutput{}, fmt.Errorf("depth must not be negative, got %d", depth)
	}
	kinds, opts, err := s.renderSettings(input.Kinds, input.Show, input.Title)
	if err != nil {
		return nil, DiagramOutput{}, err
	}
	sel := snap.Traverse(input.Start, depth, kinds)
	return nil, diagramOutput(snap, sel, opts), nil
}

// RenderSelected draws exactly the named classes.
func (s *ClassService) RenderSelected(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RenderSelectedInput,
) (*mcp.CallToolResult, DiagramOutput, error) {
	snap, _, err := s.current()
	if err != nil {
		return nil, DiagramOutput{}, err
	}
	kinds, opts, err := s.renderSettings(input.Kinds, input.Show, input.Title)
	if err != nil {
		return nil, DiagramOutput{}, err
	}
	sel := snap.Select(input.Names, kinds)
	return nil, diagramOutput(snap, sel, opts), nil
}

// GetHierarchy returns the inheritance ancestors and descendants of a class.
func (s *ClassService) GetHierarchy(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetHierarchyInput,
) (*mcp.CallToolResult, GetHierarchyOutput, error) {
	snap, _, err := s.current()
	if err != nil {
		return nil, GetHierarchyOutput{}, err
	}
	h, err := graph.BuildHierarchy(snap.Edges)
	if err != nil {
		return nil, GetHierarchyOutput{}, err
	}
	out := GetHierarchyOutput{
		Class:       input.Class,
		Known:       snap.Model.Has(input.Class),
		Ancestors:   nonNil(h.Ancestors(input.Class)),
		Descendants: nonNil(h.Descendants(input.Class)),
		Roots:       nonNil(h.Roots()),
	}
	for _, c := range h.Cycles {
		out.Cycles = append(out.Cycles, c.String())
	}
	return nil, out, nil
}

// GetRelations lists the stored edges touching a class.
func (s *ClassService) GetRelations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRelationsInput,
) (*mcp.CallToolResult, GetRelationsOutput, error) {
	_, store, err := s.current()
	if err != nil {
		return nil, GetRelationsOutput{}, err
	}
	dir := graph.Direction(input.Direction)
	switch dir {
	case "":
		dir = graph.DirectionOutgoing
	case graph.DirectionOutgoing, graph.DirectionIncoming:
	default:
		return nil, GetRelationsOutput{}, fmt.Errorf("direction must be %q or %q, got %q",
			graph.DirectionOutgoing, graph.DirectionIncoming, input.Direction)
	}
	edges, err := store.GetRelated(ctx, input.Class, dir)
	if err != nil {
		return nil, GetRelationsOutput{}, fmt.Errorf("get relations: %w", err)
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	return nil, GetRelationsOutput{Edges: edges}, nil
}

func (s *ClassService) renderSettings(kindNames, show []string, title string) (graph.KindSet, export.RenderOptions, error) {
	opts := s.cfg.RenderOptions()
	kinds := s.cfg.KindSet()
	if len(kindNames) > 0 {
		var err error
		if kinds, err = config.ParseKinds(kindNames); err != nil {
			return nil, opts, err
		}
	}
	if len(show) > 0 {
		for _, v := range show {
			if v != export.ShowMembers && v != export.ShowMethods {
				return nil, opts, fmt.Errorf("unknown show value %q", v)
			}
		}
		opts.Show = show
	}
	opts.Title = title
	return kinds, opts, nil
}

func diagramOutput(snap *project.Snapshot, sel graph.Selection, opts export.RenderOptions) DiagramOutput {
	out := DiagramOutput{
		Status: sel.Status,
		Names:  nonNil(sel.Names),
		Edges:  sel.Edges,
	}
	if out.Edges == nil {
		out.Edges = []graph.Edge{}
	}
	if sel.Status == graph.StatusOK {
		out.Markup = export.RenderPlantUML(snap.Model, sel, opts)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
