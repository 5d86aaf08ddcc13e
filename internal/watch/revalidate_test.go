package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/lint"
	"github.com/ethicslab/aigov/internal/search"
	"github.com/ethicslab/aigov/internal/types"
)

func newRevalidator(t *testing.T) (*Revalidator, *library.Library, *catalog.Catalog, *search.Index) {
	t.Helper()

	lib := newTestLibrary(t)
	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	index := search.New()
	linter := lint.New(lib.Root(), 2)
	return NewRevalidator(lib, linter, index, cat), lib, cat, index
}

func TestRevalidatorUpdate(t *testing.T) {
	r, lib, cat, index := newRevalidator(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	doc, err := lib.WriteDocument(types.Document{
		Front: types.Frontmatter{
			ID:        "w-0000001",
			Kind:      types.KindGuide,
			Title:     "Escalation Guide",
			Status:    types.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Body: "# Escalation Guide\n\nWhen the oncologist is unavailable, page the fellow.\n",
	})
	if err != nil {
		t.Fatal(err)
	}

	r.HandleBatch(ctx, []Event{{Path: doc.Path, Op: OpModified}})

	rec, err := cat.GetByPath(ctx, doc.Path)
	if err != nil {
		t.Fatalf("catalog row missing: %v", err)
	}
	if rec.Title != "Escalation Guide" {
		t.Errorf("title = %q", rec.Title)
	}

	hits := index.Search("oncologist", 5)
	if len(hits) != 1 || hits[0].Path != doc.Path {
		t.Errorf("search hits = %+v", hits)
	}

	if _, err := os.Stat(lib.IndexPath()); err != nil {
		t.Errorf("index not saved: %v", err)
	}
}

func TestRevalidatorRemove(t *testing.T) {
	r, lib, cat, index := newRevalidator(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	doc, err := lib.WriteDocument(types.Document{
		Front: types.Frontmatter{
			ID:        "w-0000002",
			Kind:      types.KindGuide,
			Title:     "Stale Guide",
			Status:    types.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Body: "# Stale Guide\n\nOutdated advice.\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	r.HandleBatch(ctx, []Event{{Path: doc.Path, Op: OpModified}})

	if err := os.Remove(filepath.Join(lib.Root(), filepath.FromSlash(doc.Path))); err != nil {
		t.Fatal(err)
	}
	r.HandleBatch(ctx, []Event{{Path: doc.Path, Op: OpRemoved}})

	if _, err := cat.GetByPath(ctx, doc.Path); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("catalog row still present: %v", err)
	}
	if hits := index.Search("outdated", 5); len(hits) != 0 {
		t.Errorf("search still finds removed document: %+v", hits)
	}
}

func TestRevalidatorSkipsUnparseable(t *testing.T) {
	r, lib, cat, _ := newRevalidator(t)
	ctx := context.Background()

	abs := filepath.Join(lib.Root(), "cards", "broken.md")
	if err := os.WriteFile(abs, []byte("no frontmatter at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	r.HandleBatch(ctx, []Event{{Path: "cards/broken.md", Op: OpModified}})

	if _, err := cat.GetByPath(ctx, "cards/broken.md"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unparseable file reached the catalog: %v", err)
	}
}
