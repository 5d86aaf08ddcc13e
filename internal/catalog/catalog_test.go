package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethicslab/aigov/internal/types"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), ".aigov", "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func makeDoc(id, kind, title, path string) types.Document {
	return types.Document{
		Path: path,
		Front: types.Frontmatter{
			ID:        id,
			Kind:      types.DocKind(kind),
			Title:     title,
			Tier:      types.TierHigh,
			Category:  types.CategoryDataPrivacy,
			Status:    types.StatusDraft,
			CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		},
		Checksum: "abc123",
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	c1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatal(err)
	}

	// Second open must not re-apply migrations.
	c2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer c2.Close()

	n, err := c2.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestUpsertAndGet(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	doc := makeDoc("doc-1", "model-card", "Model Card: triage", "cards/triage.md")
	if err := c.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rec, err := c.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Kind != "model-card" || rec.Title != "Model Card: triage" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Tier != "High" || rec.Category != "Data Privacy" {
		t.Errorf("classification not mapped: %+v", rec)
	}
	if rec.Checksum != "abc123" {
		t.Errorf("checksum = %q", rec.Checksum)
	}
	if rec.IndexedAt.IsZero() {
		t.Error("IndexedAt should be set on upsert")
	}

	byPath, err := c.GetByPath(ctx, "cards/triage.md")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if byPath.ID != "doc-1" {
		t.Errorf("GetByPath id = %q", byPath.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	c := openTestCatalog(t)

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	_, err = c.GetByPath(context.Background(), "cards/missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertReplaces(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	doc := makeDoc("doc-1", "model-card", "Original", "cards/a.md")
	if err := c.Upsert(ctx, doc); err != nil {
		t.Fatal(err)
	}

	doc.Front.Title = "Renamed"
	doc.Path = "cards/b.md"
	if err := c.Upsert(ctx, doc); err != nil {
		t.Fatal(err)
	}

	n, err := c.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1 after re-upsert", n)
	}

	rec, err := c.Get(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Title != "Renamed" || rec.Path != "cards/b.md" {
		t.Errorf("record not updated: %+v", rec)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	c := openTestCatalog(t)

	doc := makeDoc("", "guide", "No ID", "guides/x.md")
	if err := c.Upsert(context.Background(), doc); err == nil {
		t.Error("expected error for document without id")
	}
}

func TestReindexPrunesVanishedFiles(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	keep := makeDoc("doc-1", "model-card", "Keep", "cards/keep.md")
	gone := makeDoc("doc-2", "guide", "Gone", "guides/gone.md")
	if _, err := c.Reindex(ctx, []types.Document{keep, gone}); err != nil {
		t.Fatalf("seed Reindex: %v", err)
	}

	stats, err := c.Reindex(ctx, []types.Document{keep})
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if stats.Indexed != 1 || stats.Pruned != 1 {
		t.Errorf("stats = %+v, want Indexed 1 Pruned 1", stats)
	}

	if _, err := c.Get(ctx, "doc-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("pruned row still present: %v", err)
	}
	if _, err := c.Get(ctx, "doc-1"); err != nil {
		t.Errorf("kept row missing: %v", err)
	}
}

func TestReindexEmptyWipes(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if _, err := c.Reindex(ctx, []types.Document{makeDoc("doc-1", "guide", "G", "guides/g.md")}); err != nil {
		t.Fatal(err)
	}

	stats, err := c.Reindex(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", stats.Pruned)
	}

	n, err := c.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestReindexSkipsDocsWithoutID(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	plain := types.Document{Path: "guides/plain.md", Front: types.Frontmatter{Kind: types.KindGuide, Title: "Plain"}}
	stats, err := c.Reindex(ctx, []types.Document{plain, makeDoc("doc-1", "guide", "G", "guides/g.md")})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", stats.Indexed)
	}
}

func TestListFilters(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	docs := []types.Document{
		makeDoc("doc-1", "model-card", "Model Card: triage", "cards/triage.md"),
		makeDoc("doc-2", "model-card", "Model Card: imaging", "cards/imaging.md"),
		makeDoc("doc-3", "checklist", "EU AI Act Checklist", "checklists/eu.md"),
	}
	if _, err := c.Reindex(ctx, docs); err != nil {
		t.Fatal(err)
	}

	t.Run("by kind", func(t *testing.T) {
		records, err := c.List(ctx, Filter{Kind: "model-card"})
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		// Ordered by path: imaging before triage.
		if records[0].Path != "cards/imaging.md" {
			t.Errorf("first record = %s, want cards/imaging.md", records[0].Path)
		}
	})

	t.Run("by title substring", func(t *testing.T) {
		records, err := c.List(ctx, Filter{Title: "TRIAGE"})
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 || records[0].ID != "doc-1" {
			t.Errorf("records = %+v, want doc-1 only", records)
		}
	})

	t.Run("no filter", func(t *testing.T) {
		records, err := c.List(ctx, Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 {
			t.Errorf("got %d records, want 3", len(records))
		}
	})

	t.Run("no match", func(t *testing.T) {
		records, err := c.List(ctx, Filter{Kind: "guide"})
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 0 {
			t.Errorf("got %d records, want 0", len(records))
		}
	})
}

func TestAuditLog(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.LogAction(ctx, ActionCardNew, "cards/triage.md"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	if err := c.LogAction(ctx, ActionReindex, "3 documents"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}

	entries, err := c.AuditLog(ctx, 0)
	if err != nil {
		t.Fatalf("AuditLog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Most recent first.
	if entries[0].Action != ActionReindex || entries[1].Action != ActionCardNew {
		t.Errorf("order wrong: %s, %s", entries[0].Action, entries[1].Action)
	}
	if entries[0].Username == "" {
		t.Error("username should be recorded")
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("timestamp should be recorded")
	}

	limited, err := c.AuditLog(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Action != ActionReindex {
		t.Errorf("limited = %+v", limited)
	}
}

func TestAuditLogSurvivesReindex(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.LogAction(ctx, ActionCardNew, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Reindex(ctx, nil); err != nil {
		t.Fatal(err)
	}

	entries, err := c.AuditLog(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("audit entries = %d, want 1 (reindex must not touch the audit trail)", len(entries))
	}
}
