package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/anythingbutmetric/abm/internal/snapshot"
)

// Loader owns one named snapshot variant, reloading it from the JSON
// data files on demand or on file change. A reload swaps in a fresh
// Snapshot value; readers holding the old pointer keep a consistent view.
type Loader struct {
	name      string
	unitsPath string
	edgesPath string

	mu      sync.RWMutex
	current *snapshot.Snapshot
	onSwap  []func(old, new *snapshot.Snapshot)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(name, unitsPath, edgesPath string) (*Loader, error) {
	l := &Loader{name: name, unitsPath: unitsPath, edgesPath: edgesPath}
	s, err := LoadSnapshot(name, unitsPath, edgesPath)
	if err != nil {
		return nil, err
	}
	l.current = s
	return l, nil
}

// Snapshot returns the current snapshot.
func (l *Loader) Snapshot() *snapshot.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnSwap registers a callback invoked after every snapshot replacement.
// Used to evict the replaced snapshot's graph index from the cache.
func (l *Loader) OnSwap(fn func(old, new *snapshot.Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onSwap = append(l.onSwap, fn)
}

// Reload loads the data files and swaps in the fresh snapshot.
func (l *Loader) Reload() error {
	s, err := LoadSnapshot(l.name, l.unitsPath, l.edgesPath)
	if err != nil {
		return err
	}

	l.mu.Lock()
	old := l.current
	l.current = s
	callbacks := make([]func(old, new *snapshot.Snapshot), len(l.onSwap))
	copy(callbacks, l.onSwap)
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn(old, s)
	}
	return nil
}

// Watch starts a background goroutine that reloads the snapshot when
// either data file changes. Invalid intermediate states (e.g. a partial
// write) are skipped and the old snapshot stays live. Call the returned
// stop function to clean up.
func (l *Loader) Watch(onError func(error)) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("data watcher: %w", err)
	}
	// Watch the containing directories: editors and atomic writers
	// replace files rather than writing in place.
	dirs := map[string]bool{
		filepath.Dir(l.unitsPath): true,
		filepath.Dir(l.edgesPath): true,
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("data watcher add %s: %w", dir, err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !l.isDataFile(ev.Name) {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					if err := l.Reload(); err != nil && onError != nil {
						onError(err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

func (l *Loader) isDataFile(path string) bool {
	return filepath.Clean(path) == filepath.Clean(l.unitsPath) ||
		filepath.Clean(path) == filepath.Clean(l.edgesPath)
}
