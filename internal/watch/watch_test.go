package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ethicslab/aigov/internal/library"
)

func fakeWrite(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}

const testDebounce = 100 * time.Millisecond

func newTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib := library.New(t.TempDir())
	if err := lib.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return lib
}

// startWatcher runs a watcher feeding batches into the returned channel
// until the test ends.
func startWatcher(t *testing.T, lib *library.Library) <-chan []Event {
	t.Helper()

	batches := make(chan []Event, 8)
	handler := func(_ context.Context, events []Event) {
		batches <- events
	}

	w, err := New(lib, handler, testDebounce)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})

	// Give the event loop a moment to arm before the test writes files.
	time.Sleep(50 * time.Millisecond)
	return batches
}

func waitBatch(t *testing.T, batches <-chan []Event) []Event {
	t.Helper()
	select {
	case events := <-batches:
		return events
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a batch")
		return nil
	}
}

func writeRaw(t *testing.T, lib *library.Library, rel, content string) {
	t.Helper()
	abs := filepath.Join(lib.Root(), filepath.FromSlash(rel))
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherSeesNewDocument(t *testing.T) {
	lib := newTestLibrary(t)
	batches := startWatcher(t, lib)

	writeRaw(t, lib, "cards/new.md", "---\nid: n-1\n---\n\nbody\n")

	events := waitBatch(t, batches)
	if len(events) != 1 {
		t.Fatalf("events = %+v, want 1", events)
	}
	if events[0].Path != "cards/new.md" || events[0].Op != OpModified {
		t.Errorf("event = %+v", events[0])
	}
}

func TestWatcherDebouncesSaveBursts(t *testing.T) {
	lib := newTestLibrary(t)
	batches := startWatcher(t, lib)

	for i := 0; i < 3; i++ {
		writeRaw(t, lib, "cards/burst.md", "---\nid: b-1\n---\n\nrevision\n")
		time.Sleep(10 * time.Millisecond)
	}

	events := waitBatch(t, batches)
	if len(events) != 1 || events[0].Path != "cards/burst.md" {
		t.Errorf("burst collapsed to %+v, want one event", events)
	}
}

func TestWatcherReportsRemoval(t *testing.T) {
	lib := newTestLibrary(t)
	writeRaw(t, lib, "guides/old.md", "---\nid: g-1\n---\n\nbody\n")

	batches := startWatcher(t, lib)

	if err := os.Remove(filepath.Join(lib.Root(), "guides", "old.md")); err != nil {
		t.Fatal(err)
	}

	events := waitBatch(t, batches)
	if len(events) != 1 {
		t.Fatalf("events = %+v, want 1", events)
	}
	if events[0].Path != "guides/old.md" || events[0].Op != OpRemoved {
		t.Errorf("event = %+v", events[0])
	}
}

func TestWatcherIgnoresNonMarkdown(t *testing.T) {
	lib := newTestLibrary(t)
	batches := startWatcher(t, lib)

	writeRaw(t, lib, "cards/scratch.txt", "not a document")
	writeRaw(t, lib, "cards/real.md", "---\nid: r-1\n---\n\nbody\n")

	events := waitBatch(t, batches)
	for _, e := range events {
		if e.Path == "cards/scratch.txt" {
			t.Errorf("non-markdown file reported: %+v", events)
		}
	}
}

func TestTrackSkipsDotPaths(t *testing.T) {
	lib := newTestLibrary(t)
	w := &Watcher{lib: lib}
	pending := make(map[string]bool)

	type tc struct {
		name string
		want bool
	}
	tests := []tc{
		{filepath.Join(lib.Root(), ".aigov", "note.md"), false},
		{filepath.Join(lib.Root(), "cards", "ok.md"), true},
		{filepath.Join(lib.Root(), "cards", "ok.txt"), false},
	}

	for _, tt := range tests {
		got := w.track(fakeWrite(tt.name), pending)
		if got != tt.want {
			t.Errorf("track(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if len(pending) != 1 || !pending["cards/ok.md"] {
		t.Errorf("pending = %v", pending)
	}
}

func TestFlushResolvesOps(t *testing.T) {
	lib := newTestLibrary(t)
	writeRaw(t, lib, "cards/kept.md", "---\nid: k-1\n---\n\nbody\n")

	w := &Watcher{lib: lib}
	pending := map[string]bool{
		"cards/kept.md": true,
		"cards/gone.md": true,
	}

	events := w.flush(pending)
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Path != "cards/gone.md" || events[0].Op != OpRemoved {
		t.Errorf("gone = %+v", events[0])
	}
	if events[1].Path != "cards/kept.md" || events[1].Op != OpModified {
		t.Errorf("kept = %+v", events[1])
	}
	if len(pending) != 0 {
		t.Errorf("pending not drained: %v", pending)
	}
}
