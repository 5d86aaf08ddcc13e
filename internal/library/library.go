// Package library manages the on-disk layout of a governance library:
// where each document kind lives, how files are named, and how writes
// stay atomic.
package library

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ethicslab/aigov/internal/docs"
	"github.com/ethicslab/aigov/internal/types"
)

const (
	// MetaDir is the library's private directory for catalog, index, and
	// config.
	MetaDir = ".aigov"

	// CardsDir holds model and data cards.
	CardsDir = "cards"

	// ChecklistsDir holds framework checklists.
	ChecklistsDir = "checklists"

	// GuidesDir holds guides and generated reports.
	GuidesDir = "guides"

	// IndexDir holds the search index inside MetaDir.
	IndexDir = "index"

	// CatalogFile is the sqlite catalog inside MetaDir.
	CatalogFile = "catalog.db"

	// IndexFile is the search index terms file inside IndexDir.
	IndexFile = "terms.jsonl"

	// ConfigFile is the project config inside MetaDir.
	ConfigFile = "config.yaml"

	// SlugMaxLength is the maximum length for filename slugs.
	SlugMaxLength = 50

	// SlugMinWordBoundary is the minimum length before trimming at a word
	// boundary.
	SlugMinWordBoundary = 30
)

// ErrNotALibrary is returned when no .aigov directory exists at or above
// the starting path.
var ErrNotALibrary = errors.New("not inside an aigov library (no .aigov directory found)")

// Library is a rooted governance library.
type Library struct {
	root string

	mu sync.Mutex
}

// New returns a Library rooted at dir without checking initialization.
func New(dir string) *Library {
	return &Library{root: dir}
}

// Discover walks from start up through parent directories until it finds a
// .aigov directory, mirroring how version control roots are located.
func Discover(start string) (*Library, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		meta := filepath.Join(dir, MetaDir)
		if info, err := os.Stat(meta); err == nil && info.IsDir() {
			return New(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotALibrary
		}
		dir = parent
	}
}

// Root returns the library root directory.
func (l *Library) Root() string {
	return l.root
}

// MetaPath returns the library's private directory.
func (l *Library) MetaPath() string {
	return filepath.Join(l.root, MetaDir)
}

// CatalogPath returns the sqlite catalog location.
func (l *Library) CatalogPath() string {
	return filepath.Join(l.root, MetaDir, CatalogFile)
}

// IndexPath returns the search index location.
func (l *Library) IndexPath() string {
	return filepath.Join(l.root, MetaDir, IndexDir, IndexFile)
}

// ConfigPath returns the project config location.
func (l *Library) ConfigPath() string {
	return filepath.Join(l.root, MetaDir, ConfigFile)
}

// DirFor returns the library-relative directory for a document kind.
func DirFor(kind types.DocKind) string {
	switch kind {
	case types.KindChecklist:
		return ChecklistsDir
	case types.KindGuide:
		return GuidesDir
	default:
		return CardsDir
	}
}

// Init creates the library directory structure. Safe to call on an
// existing library.
func (l *Library) Init() error {
	dirs := []string{
		filepath.Join(l.root, CardsDir),
		filepath.Join(l.root, ChecklistsDir),
		filepath.Join(l.root, GuidesDir),
		filepath.Join(l.root, MetaDir, IndexDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Filename builds the canonical document filename:
// YYYY-MM-DD-{slug}-{id[:7]}.md.
func Filename(title, id string, date time.Time) string {
	shortID := id
	if len(shortID) > 7 {
		shortID = shortID[:7]
	}
	return fmt.Sprintf("%s-%s-%s.md", date.Format("2006-01-02"), generateSlug(title), shortID)
}

// WriteDocument serializes and stores a document. When doc.Path is empty a
// canonical path is assigned from the kind, title, and ID. The write is
// atomic; a crash never leaves a torn file. Returns the document with
// Path and Checksum set.
func (l *Library) WriteDocument(doc types.Document) (types.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if doc.Front.ID == "" {
		return doc, errors.New("document ID is required")
	}
	if doc.Path == "" {
		name := Filename(doc.Front.Title, doc.Front.ID, doc.Front.CreatedAt)
		doc.Path = path.Join(DirFor(doc.Front.Kind), name)
	}

	raw, err := docs.Serialize(doc)
	if err != nil {
		return doc, err
	}

	abs := filepath.Join(l.root, filepath.FromSlash(doc.Path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return doc, fmt.Errorf("create directory for %s: %w", doc.Path, err)
	}
	if err := renameio.WriteFile(abs, raw, 0o644); err != nil {
		return doc, fmt.Errorf("write %s: %w", doc.Path, err)
	}

	doc.Checksum = docs.Checksum(raw)
	return doc, nil
}

// LoadDocument reads one managed document by library-relative path.
func (l *Library) LoadDocument(rel string) (types.Document, error) {
	abs := filepath.Join(l.root, filepath.FromSlash(rel))
	return docs.Load(abs, rel)
}

// Scan collects every managed document in the library.
func (l *Library) Scan() ([]types.Document, []docs.FileError, error) {
	return docs.Scan(l.root)
}

// Exists reports whether a library-relative path is present.
func (l *Library) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(l.root, filepath.FromSlash(rel)))
	return err == nil
}

// generateSlug creates a URL-safe slug from a document title.
func generateSlug(text string) string {
	if text == "" {
		return "document"
	}

	s := slugify(strings.ToLower(text))
	s = truncateSlug(s)

	if s == "" {
		return "document"
	}
	return s
}

// slugify replaces non-alphanumeric runs with single hyphens and trims
// leading/trailing hyphens.
func slugify(input string) string {
	var result strings.Builder
	lastHyphen := false
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			result.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(result.String(), "-")
}

// truncateSlug limits the slug to SlugMaxLength, preferring word
// boundaries.
func truncateSlug(s string) string {
	if len(s) <= SlugMaxLength {
		return s
	}
	s = s[:SlugMaxLength]
	if idx := strings.LastIndex(s, "-"); idx > SlugMinWordBoundary {
		s = s[:idx]
	}
	return s
}
