package knowledge

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event is a single file-change notification from the knowledge directory.
type Event struct {
	Path string
}

// Watcher produces a stream of change events for the knowledge directory.
// The stream is unbounded and non-restartable; Close tears it down and
// closes both channels. It exists as an interface so the store is not
// tied to any particular OS notification mechanism.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// dirWatcher is the fsnotify-backed Watcher, filtered to markdown files.
type dirWatcher struct {
	fs     *fsnotify.Watcher
	events chan Event
	errs   chan error
	done   chan struct{}
}

// newDirWatcher watches dir for create/write/remove/rename of .md files.
func newDirWatcher(dir string) (Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}

	w := &dirWatcher{
		fs:     fs,
		events: make(chan Event, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *dirWatcher) run() {
	defer close(w.events)
	defer close(w.errs)

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(strings.ToLower(filepath.Base(ev.Name)), ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue // chmod etc.
			}
			select {
			case w.events <- Event{Path: ev.Name}:
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			case <-w.done:
				return
			}
		}
	}
}

func (w *dirWatcher) Events() <-chan Event { return w.events }
func (w *dirWatcher) Errors() <-chan error { return w.errs }

func (w *dirWatcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
