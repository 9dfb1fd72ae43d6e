// Package knowledge implements the file-backed knowledge base for pmline.
// Each section of the knowledge base is a single markdown file in the
// knowledge directory; the store loads them all into an in-memory snapshot
// and reloads on file changes.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Section keys. Every snapshot carries all of them, empty or not.
const (
	SectionProduct    = "product"
	SectionCustomers  = "customers"
	SectionRoadmap    = "roadmap"
	SectionPriorities = "priorities"
	SectionResources  = "resources"
	SectionPMMemory   = "pmMemory"
)

// Sections lists all section keys in a stable order.
var Sections = []string{
	SectionProduct,
	SectionCustomers,
	SectionRoadmap,
	SectionPriorities,
	SectionResources,
	SectionPMMemory,
}

// sectionFiles maps section keys to their backing file names.
var sectionFiles = map[string]string{
	SectionProduct:    "product.md",
	SectionCustomers:  "customers.md",
	SectionRoadmap:    "roadmap.md",
	SectionPriorities: "priorities.md",
	SectionResources:  "resources.md",
	SectionPMMemory:   "pm_memory.md",
}

// Snapshot is an immutable view of the knowledge base at load time.
// Callers must not mutate Sections; the store hands out the same map
// to concurrent readers.
type Snapshot struct {
	Sections map[string]string
	LoadedAt time.Time
}

// Get returns the content of a section, or "" for unknown keys.
func (s *Snapshot) Get(key string) string {
	return s.Sections[key]
}

// emptySnapshot returns a snapshot with every section key present and empty.
func emptySnapshot() *Snapshot {
	sections := make(map[string]string, len(Sections))
	for _, key := range Sections {
		sections[key] = ""
	}
	return &Snapshot{Sections: sections}
}

// Store owns the knowledge snapshot. Load replaces the snapshot as a
// whole; readers always observe either the old or the new one, never a
// mix of sections from both.
type Store struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	current *Snapshot

	// newWatcher builds the change watcher. Overridable in tests.
	newWatcher func(dir string) (Watcher, error)
}

// NewStore creates a store reading from dir. The initial snapshot is
// empty until the first Load.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:        dir,
		logger:     logger.With("component", "knowledge"),
		current:    emptySnapshot(),
		newWatcher: newDirWatcher,
	}
}

// Load reads every section file and swaps in a fresh snapshot.
// A missing file leaves that section empty and never aborts the load.
// Returns the snapshot it installed.
func (s *Store) Load() *Snapshot {
	snap := emptySnapshot()
	snap.LoadedAt = time.Now()

	for _, key := range Sections {
		path := filepath.Join(s.dir, sectionFiles[key])
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn("knowledge file missing, section left empty", "section", key, "path", path)
			} else {
				s.logger.Warn("knowledge file unreadable, section left empty", "section", key, "path", path, "error", err)
			}
			continue
		}
		snap.Sections[key] = string(data)
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.logger.Info("knowledge base loaded", "dir", s.dir, "sections", len(Sections))
	return snap
}

// Snapshot returns the current snapshot. Never blocks on I/O.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Watch reloads the knowledge base whenever a markdown file in the
// directory changes. Best-effort: a watch setup failure is returned so
// the caller can log it, but the store keeps serving the last loaded
// snapshot either way. Blocks until ctx is done once the watch is up,
// so run it in a goroutine.
func (s *Store) Watch(ctx context.Context) error {
	w, err := s.newWatcher(s.dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}
	defer w.Close()

	s.logger.Info("watching knowledge directory", "dir", s.dir)

	// Debounce bursts of events (editors write + rename in quick
	// succession) into a single reload.
	var pending bool
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !pending {
				pending = true
				timer.Reset(debounceWindow)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			s.logger.Warn("knowledge watcher error", "error", err)
		case <-timer.C:
			pending = false
			s.logger.Debug("knowledge change detected, reloading")
			s.Load()
		}
	}
}

const debounceWindow = 200 * time.Millisecond
