package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// Resolved pairs a catalog snapshot with the operating points derived from
// it. The pair is immutable and safe to share across concurrent stages.
type Resolved struct {
	Snapshot *Snapshot
	Points   models.OperatingPoints
}

// ResolveFunc derives operating points from a snapshot. It is supplied by
// the caller so the store stays independent of the scoring policy.
type ResolveFunc func(*Snapshot) (models.OperatingPoints, error)

// Store holds the current resolved catalog and swaps in new immutable
// versions on reload. Readers never see a partially-applied reload.
type Store struct {
	path    string
	resolve ResolveFunc

	mu      sync.RWMutex
	current *Resolved
	version int

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore loads the catalog at path and resolves its operating points.
// A load or resolution failure here is fatal: the process cannot route
// without a valid catalog.
func NewStore(path string, resolve ResolveFunc) (*Store, error) {
	s := &Store{path: path, resolve: resolve}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the latest resolved catalog.
func (s *Store) Current() *Resolved {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// reload loads a new snapshot, resolves it, and swaps it in atomically.
// A failed reload leaves the previous version in place.
func (s *Store) reload() error {
	s.mu.Lock()
	version := s.version + 1
	s.mu.Unlock()

	snapshot, err := Load(s.path, version)
	if err != nil {
		return err
	}
	points, err := s.resolve(snapshot)
	if err != nil {
		return fmt.Errorf("resolve operating points: %w", err)
	}

	s.mu.Lock()
	s.version = version
	s.current = &Resolved{Snapshot: snapshot, Points: points}
	s.mu.Unlock()
	return nil
}

// Watch starts watching the catalog file for changes and reloads on write.
// onReload and onError are optional observation hooks. Call Close to stop.
func (s *Store) Watch(onReload func(*Resolved), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory rather than the file: editors replace files on
	// save, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch catalog directory: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.reload(); err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				if onReload != nil {
					onReload(s.Current())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}

// Close stops the file watcher if one is running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}
