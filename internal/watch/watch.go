package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/cppuml/internal/project"
)

// DefaultDebounce is the quiet period after the last change before the
// change handler runs.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc handles one debounced batch of changed source paths, relative
// to the watched root and sorted.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches a project tree for source changes.
type Watcher struct {
	walker   *project.Walker
	watcher  *fsnotify.Watcher
	logger   *logrus.Logger
	debounce time.Duration
}

// New creates a watcher over every directory the walker would descend
// into. A debounce <= 0 uses DefaultDebounce.
func New(walker *project.Walker, logger *logrus.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{walker: walker, watcher: fw, logger: logger, debounce: debounce}
	if err := w.addTree(walker.Root()); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(path); ok && rel != "." && w.walker.Excluded(rel+"/") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.walker.Root(), path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Run delivers debounced change batches to fn until ctx is done. fn runs on
// the calling goroutine, so batches never overlap.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	var timer *time.Timer
	var fire <-chan time.Time
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.WithError(err).Warn("Failed to watch new directory")
					}
					continue
				}
			}
			rel, ok := w.relevant(event)
			if !ok {
				continue
			}
			changed[rel] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(changed))
			for p := range changed {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			changed = make(map[string]bool)
			w.logger.WithField("files", len(batch)).Debug("Source change detected")
			fn(ctx, batch)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("File watcher error")
		}
	}
}

// relevant reports the relative path of an event on a source unit.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	rel, ok := w.rel(event.Name)
	if !ok || !w.walker.Accepts(rel) {
		return "", false
	}
	return rel, true
}
