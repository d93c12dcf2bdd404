package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sjperalta/komplek-api/pkg/logger"
)

// ChangeHandler receives the keys that changed during one debounce window
type ChangeHandler func(keys []string)

// Watcher reports key changes made to a LocalStorage directory by any process.
// It is the server-side counterpart of the browser "storage" event: best effort,
// at least once, no ordering between writers.
type Watcher struct {
	dir      string
	debounce time.Duration
	filter   map[string]bool
	handler  ChangeHandler
}

// NewWatcher creates a watcher for dir. A nil filter reports every key.
func NewWatcher(dir string, debounce time.Duration, filter map[string]bool, handler ChangeHandler) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{dir: dir, debounce: debounce, filter: filter, handler: handler}
}

// Run blocks until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("Watching storage for changes", "dir", w.dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := KeyFromFilename(ev.Name)
			if !ok || (w.filter != nil && !w.filter[key]) {
				continue
			}
			pending[key] = time.Now()
		case <-ticker.C:
			if keys := w.settled(pending); len(keys) > 0 {
				w.handler(keys)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Storage watch error", "error", err)
		}
	}
}

// settled pops keys that have been quiet for a full debounce window
func (w *Watcher) settled(pending map[string]time.Time) []string {
	now := time.Now()
	var keys []string
	for key, at := range pending {
		if now.Sub(at) >= w.debounce {
			keys = append(keys, key)
			delete(pending, key)
		}
	}
	sort.Strings(keys)
	return keys
}
