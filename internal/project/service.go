package project

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/cppuml/internal/config"
	"github.com/dusk-indust/cppuml/internal/export"
	"github.com/dusk-indust/cppuml/internal/graph"
	"github.com/dusk-indust/cppuml/internal/parse"
)

// Snapshot is the frozen result of one parse run. It is never modified
// after Parse returns; a re-parse builds a new Snapshot.
type Snapshot struct {
	RunID       string
	Root        string
	CreatedAt   time.Time
	Model       *graph.Model
	Edges       []graph.Edge
	Diagnostics []parse.Diagnostic
}

// Traverse selects the classes within depth hops of start.
func (s *Snapshot) Traverse(start string, depth int, kinds graph.KindSet) graph.Selection {
	return graph.Traverse(s.Model, s.Edges, graph.TraverseOptions{Start: start, MaxDepth: depth, Kinds: kinds})
}

// Select selects exactly the named classes.
func (s *Snapshot) Select(names []string, kinds graph.KindSet) graph.Selection {
	return graph.SelectSet(s.Edges, names, kinds)
}

// All selects the whole model.
func (s *Snapshot) All(kinds graph.KindSet) graph.Selection {
	return graph.SelectAll(s.Model, s.Edges, kinds)
}

// Stats summarizes the snapshot.
func (s *Snapshot) Stats() graph.GraphStats {
	return graph.StatsOf(s.Model, s.Edges)
}

// Document returns the JSON export of the snapshot, restricted to sel when
// it is not nil.
func (s *Snapshot) Document(name string, sel *graph.Selection) *export.Document {
	return export.ExportJSON(export.ExportInput{
		Name:        name,
		RunID:       s.RunID,
		Model:       s.Model,
		Edges:       s.Edges,
		Diagnostics: s.Diagnostics,
		Selection:   sel,
	})
}

// ProgressFunc receives the number of extracted units and the total. It is
// called from worker goroutines.
type ProgressFunc func(done, total int)

// Service turns a source tree into snapshots.
type Service struct {
	cfg       *config.Config
	logger    *logrus.Logger
	extractor parse.Extractor
	cache     *parse.Cache
}

// NewService creates a service using the configured parser backend. When
// cfg.CacheSize is positive, unchanged units are reused between runs.
func NewService(cfg *config.Config, logger *logrus.Logger) (*Service, error) {
	ex, err := parse.New(cfg.Parser)
	if err != nil {
		return nil, err
	}
	s := &Service{cfg: cfg, logger: logger, extractor: ex}
	if cfg.CacheSize > 0 {
		if s.cache, err = parse.NewCache(cfg.CacheSize); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases the extraction cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Parse walks root and builds a snapshot of every source unit found.
func (s *Service) Parse(ctx context.Context, root string, progress ProgressFunc) (*Snapshot, error) {
	walker, err := NewWalker(root, s.cfg.Extensions, s.cfg.Exclude)
	if err != nil {
		return nil, err
	}
	units, err := walker.Units(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.ParseUnits(ctx, units, progress)
	if err != nil {
		return nil, err
	}
	snap.Root = root
	return snap, nil
}

// ParseUnits builds a snapshot from units already in memory.
func (s *Service) ParseUnits(ctx context.Context, units []parse.Unit, progress ProgressFunc) (*Snapshot, error) {
	runID := uuid.NewString()
	log := s.logger.WithField("run", runID)
	log.WithFields(logrus.Fields{
		"units":  len(units),
		"parser": s.extractor.Name(),
	}).Info("Starting extraction")

	var done atomic.Int32
	opts := parse.Options{
		Workers: s.cfg.Workers,
		Cache:   s.cache,
		OnUnit: func(u parse.Unit, res *parse.Result) {
			log.WithFields(logrus.Fields{
				"unit":        u.Path,
				"entities":    len(res.Entities),
				"diagnostics": len(res.Diagnostics),
			}).Debug("Extracted unit")
			if progress != nil {
				progress(int(done.Add(1)), len(units))
			}
		},
	}

	model, diags, err := parse.ExtractAll(ctx, s.extractor, units, opts)
	if err != nil {
		return nil, err
	}
	edges, err := graph.Analyze(model, s.cfg.AnalyzeOptions())
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	for _, d := range diags {
		log.WithField("unit", d.Path).Debug(d.String())
	}
	log.WithFields(logrus.Fields{
		"entities":    model.Len(),
		"edges":       len(edges),
		"diagnostics": len(diags),
	}).Info("Extraction completed")

	return &Snapshot{
		RunID:       runID,
		CreatedAt:   time.Now(),
		Model:       model,
		Edges:       edges,
		Diagnostics: diags,
	}, nil
}
