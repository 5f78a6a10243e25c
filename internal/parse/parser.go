package parse

import (
	"context"
	"fmt"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// Backend names accepted by New.
const (
	BackendScanner    = "scanner"
	BackendTreeSitter = "treesitter"
)

// Unit is one source unit: an identifier (usually a path) and its text.
type Unit struct {
	Path   string
	Source []byte
}

// Diagnostic is a non-fatal problem found while extracting a unit.
type Diagnostic struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", d.Path, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// Result holds the entities and diagnostics extracted from one unit.
type Result struct {
	Entities    []graph.ClassEntity `json:"entities"`
	Diagnostics []Diagnostic        `json:"diagnostics,omitempty"`
}

// Extractor turns a source unit into class entities. Implementations keep no
// state between calls and are safe for concurrent use.
type Extractor interface {
	// Extract returns a best-effort result. Unparseable constructs become
	// diagnostics; an error is returned only when the unit cannot be
	// processed at all (for example on context cancellation).
	Extract(ctx context.Context, u Unit) (*Result, error)

	// Name returns the backend name.
	Name() string
}

// New returns the extractor registered under backend. An empty name selects
// the text scanner.
func New(backend string) (Extractor, error) {
	switch backend {
	case "", BackendScanner:
		return NewScanner(), nil
	case BackendTreeSitter:
		return NewTreeSitter(), nil
	default:
		return nil, fmt.Errorf("unknown parser backend %q (want %s or %s)", backend, BackendScanner, BackendTreeSitter)
	}
}
