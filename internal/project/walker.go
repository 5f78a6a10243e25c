package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/dusk-indust/cppuml/internal/parse"
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Walker finds C++ source units below a root directory.
type Walker struct {
	root    string
	exts    map[string]bool
	exclude []compiledPattern
}

// NewWalker creates a walker accepting files with one of extensions and
// rejecting paths (relative to root, slash separated) matching exclude.
func NewWalker(root string, extensions, exclude []string) (*Walker, error) {
	w := &Walker{root: root, exts: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		w.exts[strings.ToLower(ext)] = true
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		w.exclude = append(w.exclude, compiledPattern{pattern: pattern, glob: g})
		// "**/x/**" should also match x at the root.
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if g, err := glob.Compile(rest, '/'); err == nil {
				w.exclude = append(w.exclude, compiledPattern{pattern: rest, glob: g})
			}
		}
	}
	return w, nil
}

// Root returns the directory the walker starts from.
func (w *Walker) Root() string { return w.root }

// Excluded reports whether the slash-separated relative path is excluded.
// Directories are passed with a trailing slash.
func (w *Walker) Excluded(rel string) bool {
	if rel == ".cppuml/" || strings.HasPrefix(rel, ".cppuml/") {
		return true
	}
	for _, cp := range w.exclude {
		if cp.glob.Match(rel) {
			return true
		}
	}
	return false
}

// Accepts reports whether a relative file path is a source unit.
func (w *Walker) Accepts(rel string) bool {
	return w.exts[strings.ToLower(filepath.Ext(rel))] && !w.Excluded(rel)
}

// Files returns the relative paths of all source units in lexical order.
func (w *Walker) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && w.Excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if w.Accepts(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", w.root, err)
	}
	return files, nil
}

// Units reads every source unit. Unit paths are relative to the root.
func (w *Walker) Units(ctx context.Context) ([]parse.Unit, error) {
	files, err := w.Files(ctx)
	if err != nil {
		return nil, err
	}
	units := make([]parse.Unit, 0, len(files))
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		units = append(units, parse.Unit{Path: rel, Source: data})
	}
	return units, nil
}
