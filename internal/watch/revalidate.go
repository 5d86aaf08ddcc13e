package watch

import (
	"context"
	"os"
	"path/filepath"

	log "github.com/charmbracelet/log"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/lint"
	"github.com/ethicslab/aigov/internal/search"
	"github.com/ethicslab/aigov/internal/types"
)

// Revalidator is the standard watch handler: lint what changed, keep the
// search index current, and keep the catalog row in step with the file.
type Revalidator struct {
	lib    *library.Library
	linter *lint.Linter
	index  *search.Index
	cat    *catalog.Catalog
}

// NewRevalidator wires a handler over an open catalog and a loaded index.
func NewRevalidator(lib *library.Library, linter *lint.Linter, index *search.Index, cat *catalog.Catalog) *Revalidator {
	return &Revalidator{lib: lib, linter: linter, index: index, cat: cat}
}

// HandleBatch implements Handler. The index is saved once per batch.
func (r *Revalidator) HandleBatch(ctx context.Context, events []Event) {
	for _, event := range events {
		switch event.Op {
		case OpRemoved:
			r.remove(ctx, event.Path)
		default:
			r.update(ctx, event.Path)
		}
	}

	if err := r.index.Save(r.lib.IndexPath()); err != nil {
		log.Error("save search index", "err", err)
	}
}

func (r *Revalidator) remove(ctx context.Context, rel string) {
	r.index.Remove(rel)
	if err := r.cat.Remove(ctx, rel); err != nil {
		log.Error("remove catalog row", "path", rel, "err", err)
	}
	log.Info("document removed", "path", rel)
}

func (r *Revalidator) update(ctx context.Context, rel string) {
	abs := filepath.Join(r.lib.Root(), filepath.FromSlash(rel))

	raw, err := os.ReadFile(abs)
	if err != nil {
		log.Error("read document", "path", rel, "err", err)
		return
	}
	r.index.Add(rel, raw)

	findings := r.linter.File(abs)
	for _, f := range findings {
		if f.Severity == types.SeverityError {
			log.Error(f.Message, "path", f.Path, "rule", f.Rule)
		} else {
			log.Warn(f.Message, "path", f.Path, "rule", f.Rule)
		}
	}

	doc, err := r.lib.LoadDocument(rel)
	if err != nil || doc.Front.ID == "" {
		// Unparseable or incomplete documents stay out of the catalog;
		// the lint findings above already said why.
		return
	}
	if err := r.cat.Upsert(ctx, doc); err != nil {
		log.Error("update catalog row", "path", rel, "err", err)
		return
	}

	log.Info("document revalidated", "path", rel, "findings", len(findings))
}
