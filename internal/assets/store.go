// Package assets serves template files such as background images from a
// directory and drops cached copies when the files change on disk.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumeforge/internal/errors"
)

const defaultDebounce = time.Second

// Store caches files from one directory.
type Store struct {
	mu    sync.RWMutex
	dir   string
	cache map[string][]byte

	debounce time.Duration
	logger   *errors.Logger
}

// NewStore creates a store over dir. An empty dir disables the store.
func NewStore(dir string, debounce time.Duration, logger *errors.Logger) *Store {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = errors.Discard()
	}
	return &Store{
		dir:      dir,
		cache:    make(map[string][]byte),
		debounce: debounce,
		logger:   logger,
	}
}

// Enabled reports whether the store has a directory to serve from.
func (s *Store) Enabled() bool {
	return s != nil && s.dir != ""
}

// Dir is the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the contents of name, reading and caching it on first use.
// Only plain file names inside the directory are served.
func (s *Store) Get(name string) ([]byte, bool) {
	if !s.Enabled() || name == "" || name != filepath.Base(name) {
		return nil, false
	}

	s.mu.RLock()
	data, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return data, true
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read template asset", "asset", name, "error", err)
		}
		return nil, false
	}

	s.mu.Lock()
	s.cache[name] = data
	s.mu.Unlock()
	return data, true
}

// Names lists the regular files currently in the directory.
func (s *Store) Names() []string {
	if !s.Enabled() {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Invalidate drops the cached copy of name.
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

// Cached reports whether name is held in memory.
func (s *Store) Cached(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[name]
	return ok
}

// Watch invalidates cached files as they change until ctx is done.
// A store without a readable directory returns immediately.
func (s *Store) Watch(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if _, err := os.Stat(s.dir); err != nil {
		s.logger.Info("Template asset directory not available, watching disabled", "directory", s.dir)
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			s.logger.LogError(closeErr, "Failed to close asset watcher")
		}
	}()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", s.dir, err)
	}
	s.logger.Info("Template asset watcher started",
		"directory", s.dir,
		"debounce_delay", s.debounce)

	pending := make(map[string]struct{})
	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Template asset watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldProcessEvent(event) {
				continue
			}
			pending[filepath.Base(event.Name)] = struct{}{}
			timer.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.LogError(err, "Asset watcher error")

		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				s.Invalidate(name)
				names = append(names, name)
			}
			clear(pending)
			sort.Strings(names)
			s.logger.Info("Template assets changed, cache invalidated", "assets", names)
		}
	}
}

func shouldProcessEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
