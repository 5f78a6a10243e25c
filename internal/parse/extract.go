package parse

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"

	"github.com/maypok86/otter"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// Options configures ExtractAll.
type Options struct {
	// Workers bounds concurrent extraction; <= 0 uses GOMAXPROCS.
	Workers int
	// Cache, when set, reuses results for units whose content is unchanged.
	Cache *Cache
	// OnUnit is called after each unit is extracted. It is called from
	// worker goroutines and must be safe for concurrent use.
	OnUnit func(u Unit, res *Result)
}

// ExtractAll runs ex over every unit in parallel and merges the results into
// a frozen model. Each worker scans its unit in isolation; merging happens
// afterwards on the calling goroutine in input order, so a class defined in
// several units resolves to the last definition.
//
// A unit whose extraction fails contributes a diagnostic instead of
// entities. The returned error is non-nil only when ctx is cancelled.
func ExtractAll(ctx context.Context, ex Extractor, units []Unit, opts Options) (*graph.Model, []Diagnostic, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, u := range units {
		g.Go(func() error {
			res, err := opts.Cache.extract(gctx, ex, u)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				res = &Result{Diagnostics: []Diagnostic{{
					Path:    u.Path,
					Message: fmt.Sprintf("extraction failed: %v", err),
				}}}
			}
			results[i] = res
			if opts.OnUnit != nil {
				opts.OnUnit(u, res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("extract: %w", err)
	}

	m, diags := Merge(results)
	return m, diags, nil
}

// Merge folds per-unit results into one frozen model in slice order. A name
// defined again replaces the earlier entity and is reported.
func Merge(results []*Result) (*graph.Model, []Diagnostic) {
	m := graph.NewModel()
	var diags []Diagnostic
	for _, res := range results {
		if res == nil {
			continue
		}
		diags = append(diags, res.Diagnostics...)
		for _, e := range res.Entities {
			if prev := m.Get(e.Name); prev != nil {
				diags = append(diags, Diagnostic{
					Path:    e.File,
					Line:    e.Line,
					Message: fmt.Sprintf("%s redefined, replacing definition at %s:%d", e.Name, prev.File, prev.Line),
				})
			}
			// The model is not frozen yet and every entity is named.
			_ = m.Put(e)
		}
	}
	m.Freeze()
	return m, diags
}

// Cache keeps extraction results keyed by backend and unit path, validated
// against a hash of the unit's source. It is safe for concurrent use.
type Cache struct {
	c otter.Cache[string, cacheEntry]
}

type cacheEntry struct {
	sum [sha256.Size]byte
	res *Result
}

// NewCache returns a cache holding at most capacity unit results.
func NewCache(capacity int) (*Cache, error) {
	c, err := otter.MustBuilder[string, cacheEntry](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build extraction cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// Len returns the number of cached results.
func (c *Cache) Len() int { return c.c.Size() }

// Close stops the cache's background work.
func (c *Cache) Close() { c.c.Close() }

// extract returns the cached result for u when its content is unchanged and
// runs ex otherwise. A nil cache always runs ex.
func (c *Cache) extract(ctx context.Context, ex Extractor, u Unit) (*Result, error) {
	if c == nil {
		return ex.Extract(ctx, u)
	}
	key := ex.Name() + "\x00" + u.Path
	sum := sha256.Sum256(u.Source)
	if entry, ok := c.c.Get(key); ok && entry.sum == sum {
		return entry.res, nil
	}
	res, err := ex.Extract(ctx, u)
	if err != nil {
		return nil, err
	}
	c.c.Set(key, cacheEntry{sum: sum, res: res})
	return res, nil
}
