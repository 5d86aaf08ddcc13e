// Package watch keeps the catalog and search index in step with the
// library while documents are being edited. Filesystem events are
// debounced so editor save bursts produce one revalidation per file, and
// lint findings are logged as they appear.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ethicslab/aigov/internal/library"
)

// DefaultDebounce is how long the watcher waits after the last event
// before revalidating.
const DefaultDebounce = 500 * time.Millisecond

// Op describes what happened to a document by the time the change
// settled.
type Op string

const (
	// OpModified means the document exists and was created or rewritten.
	OpModified Op = "modified"

	// OpRemoved means the document is gone.
	OpRemoved Op = "removed"
)

// Event is one settled change to a managed document.
type Event struct {
	// Path is library-relative.
	Path string

	// Op is modified or removed.
	Op Op
}

// Handler consumes a settled batch of events.
type Handler func(ctx context.Context, events []Event)

// Watcher debounces filesystem events under a library into batches of
// document changes.
type Watcher struct {
	lib      *library.Library
	handler  Handler
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New builds a watcher over lib's document directories. A non-positive
// debounce falls back to DefaultDebounce.
func New(lib *library.Library, handler Handler, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := []string{
		lib.Root(),
		filepath.Join(lib.Root(), library.CardsDir),
		filepath.Join(lib.Root(), library.ChecklistsDir),
		filepath.Join(lib.Root(), library.GuidesDir),
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return &Watcher{lib: lib, handler: handler, debounce: debounce, fsw: fsw}, nil
}

// Run processes events until ctx is cancelled. Cancellation is a clean
// shutdown and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	log.Info("watching library", "root", w.lib.Root(), "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.track(event, pending) {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "err", err)

		case <-timer.C:
			events := w.flush(pending)
			if len(events) > 0 {
				w.handler(ctx, events)
			}
		}
	}
}

// track records a relevant event and reports whether the debounce window
// should restart.
func (w *Watcher) track(event fsnotify.Event, pending map[string]bool) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	// Directories created under a watched one join the watch so documents
	// inside them are still seen.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				_ = w.fsw.Add(event.Name)
			}
			return false
		}
	}

	if !strings.HasSuffix(event.Name, ".md") {
		return false
	}

	rel, err := filepath.Rel(w.lib.Root(), event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, ".") {
		return false
	}

	pending[rel] = true
	return true
}

// flush drains pending changes, resolving each to modified or removed by
// what is on disk now.
func (w *Watcher) flush(pending map[string]bool) []Event {
	events := make([]Event, 0, len(pending))
	for rel := range pending {
		op := OpModified
		if _, err := os.Stat(filepath.Join(w.lib.Root(), filepath.FromSlash(rel))); err != nil {
			op = OpRemoved
		}
		events = append(events, Event{Path: rel, Op: op})
		delete(pending, rel)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}
