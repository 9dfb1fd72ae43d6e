package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeSection(t *testing.T, dir, file, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", file, err)
	}
}

func TestLoadAllSections(t *testing.T) {
	dir := t.TempDir()
	writeSection(t, dir, "product.md", "# Product\nfeature list")
	writeSection(t, dir, "customers.md", "# Customers")
	writeSection(t, dir, "roadmap.md", "# Roadmap")
	writeSection(t, dir, "priorities.md", "# Priorities")
	writeSection(t, dir, "resources.md", "# Resources")
	writeSection(t, dir, "pm_memory.md", "# Memory")

	store := NewStore(dir, nil)
	snap := store.Load()

	if got := snap.Get(SectionProduct); got != "# Product\nfeature list" {
		t.Errorf("Get(product) = %q, want file content", got)
	}
	for _, key := range Sections {
		if _, ok := snap.Sections[key]; !ok {
			t.Errorf("snapshot missing section %q", key)
		}
	}
	if snap.LoadedAt.IsZero() {
		t.Error("LoadedAt is zero after Load")
	}
}

func TestLoadMissingFilesLeaveSectionsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeSection(t, dir, "product.md", "only product exists")

	store := NewStore(dir, nil)
	snap := store.Load()

	if got := snap.Get(SectionProduct); got != "only product exists" {
		t.Errorf("Get(product) = %q, want file content", got)
	}
	if got := snap.Get(SectionCustomers); got != "" {
		t.Errorf("Get(customers) = %q, want empty for missing file", got)
	}
	// Every key must still be present.
	if len(snap.Sections) != len(Sections) {
		t.Errorf("snapshot has %d sections, want %d", len(snap.Sections), len(Sections))
	}
}

func TestSnapshotBeforeFirstLoad(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	snap := store.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot() = nil before first Load")
	}
	if got := snap.Get(SectionProduct); got != "" {
		t.Errorf("Get(product) = %q, want empty before first Load", got)
	}
}

func TestSnapshotGetUnknownKey(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	if got := store.Snapshot().Get("nope"); got != "" {
		t.Errorf("Get(unknown) = %q, want empty", got)
	}
}

// TestSnapshotAtomicity checks that concurrent readers never observe a
// snapshot mixing sections from two different loads.
func TestSnapshotAtomicity(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	writeAll := func(version string) {
		for _, file := range []string{"product.md", "customers.md", "roadmap.md", "priorities.md", "resources.md", "pm_memory.md"} {
			writeSection(t, dir, file, version)
		}
	}

	writeAll("v0")
	store.Load()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			writeAll("v" + string(rune('0'+i%10)))
			store.Load()
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := store.Snapshot()
				first := snap.Get(SectionProduct)
				for _, key := range Sections {
					if got := snap.Get(key); got != first {
						t.Errorf("mixed snapshot: section %q = %q, product = %q", key, got, first)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
}

// fakeWatcher feeds scripted events into Store.Watch.
type fakeWatcher struct {
	events chan Event
	errs   chan error
}

func (f *fakeWatcher) Events() <-chan Event { return f.events }
func (f *fakeWatcher) Errors() <-chan error { return f.errs }
func (f *fakeWatcher) Close() error         { return nil }

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeSection(t, dir, "product.md", "before")

	store := NewStore(dir, nil)
	store.Load()

	fw := &fakeWatcher{events: make(chan Event, 8), errs: make(chan error, 1)}
	store.newWatcher = func(string) (Watcher, error) { return fw, nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	writeSection(t, dir, "product.md", "after")
	// Burst of events must collapse into one reload.
	fw.events <- Event{Path: filepath.Join(dir, "product.md")}
	fw.events <- Event{Path: filepath.Join(dir, "product.md")}

	deadline := time.After(3 * time.Second)
	for {
		if store.Snapshot().Get(SectionProduct) == "after" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("snapshot not reloaded after change event")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() returned error on cancel: %v", err)
	}
}

func TestWatchSetupFailure(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	store.newWatcher = func(dir string) (Watcher, error) {
		return nil, os.ErrPermission
	}
	if err := store.Watch(context.Background()); err == nil {
		t.Error("Watch() = nil error, want setup failure")
	}
}
