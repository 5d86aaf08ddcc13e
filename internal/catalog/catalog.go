// Package catalog maintains the library's SQLite catalog: a queryable
// mirror of document frontmatter plus an append-only audit trail. Files
// are the source of truth; catalog rows are derived and rebuilt by reindex.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/ethicslab/aigov/internal/types"
)

// Audit actions recorded by mutating commands.
const (
	ActionCardNew       = "CARD_NEW"
	ActionChecklistInit = "CHECKLIST_INIT"
	ActionReindex       = "REINDEX"
	ActionBundleExport  = "BUNDLE_EXPORT"
	ActionBundleImport  = "BUNDLE_IMPORT"
	ActionProbeRun      = "PROBE_RUN"
)

// ErrNotFound is returned when a lookup matches no catalog row.
var ErrNotFound = errors.New("document not found in catalog")

// Record is one catalog row describing a managed document.
type Record struct {
	bun.BaseModel `bun:"table:documents" json:"-" yaml:"-"`

	ID        string    `bun:"id,pk" json:"id" yaml:"id"`
	Kind      string    `bun:"kind" json:"kind" yaml:"kind"`
	Title     string    `bun:"title" json:"title" yaml:"title"`
	Path      string    `bun:"path" json:"path" yaml:"path"`
	Model     string    `bun:"model" json:"model,omitempty" yaml:"model,omitempty"`
	Version   string    `bun:"version" json:"version,omitempty" yaml:"version,omitempty"`
	Tier      string    `bun:"tier" json:"tier,omitempty" yaml:"tier,omitempty"`
	Category  string    `bun:"category" json:"category,omitempty" yaml:"category,omitempty"`
	Framework string    `bun:"framework" json:"framework,omitempty" yaml:"framework,omitempty"`
	Status    string    `bun:"status" json:"status,omitempty" yaml:"status,omitempty"`
	Checksum  string    `bun:"checksum" json:"checksum" yaml:"checksum"`
	CreatedAt time.Time `bun:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `bun:"updated_at" json:"updated_at" yaml:"updated_at"`
	IndexedAt time.Time `bun:"indexed_at" json:"indexed_at" yaml:"indexed_at"`
}

// AuditEntry is one append-only audit_log row. Entries are never updated
// or deleted by the tool.
type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_log" json:"-" yaml:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id" yaml:"id"`
	Timestamp time.Time `bun:"timestamp" json:"timestamp" yaml:"timestamp"`
	Username  string    `bun:"username" json:"username" yaml:"username"`
	Action    string    `bun:"action" json:"action" yaml:"action"`
	Details   string    `bun:"details" json:"details,omitempty" yaml:"details,omitempty"`
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Kind      string
	Tier      string
	Category  string
	Framework string
	Status    string

	// Title matches as a case-insensitive substring.
	Title string
}

// Stats summarizes a reindex pass.
type Stats struct {
	// Indexed is the number of documents written to the catalog.
	Indexed int `json:"indexed" yaml:"indexed"`

	// Pruned is the number of rows removed because their files vanished.
	Pruned int `json:"pruned" yaml:"pruned"`
}

// Catalog wraps the library's SQLite database.
type Catalog struct {
	sqlDB *sql.DB
	db    *bun.DB
}

// migrations are applied in order; PRAGMA user_version tracks progress.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		model TEXT NOT NULL DEFAULT '',
		version TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		framework TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		checksum TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		indexed_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
	CREATE INDEX IF NOT EXISTS idx_documents_tier ON documents(tier);`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP NOT NULL,
		username TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT ''
	);`,
}

// Open opens (creating if needed) the catalog database at path and
// applies pending migrations.
func Open(path string) (*Catalog, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// Single writer keeps the pure Go driver free of lock contention.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := migrate(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Catalog{
		sqlDB: sqlDB,
		db:    bun.NewDB(sqlDB, sqlitedialect.New()),
	}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bump schema version to %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// recordFrom maps document frontmatter onto a catalog row.
func recordFrom(doc types.Document, indexedAt time.Time) Record {
	return Record{
		ID:        doc.Front.ID,
		Kind:      string(doc.Front.Kind),
		Title:     doc.Front.Title,
		Path:      doc.Path,
		Model:     doc.Front.Model,
		Version:   doc.Front.Version,
		Tier:      string(doc.Front.Tier),
		Category:  string(doc.Front.Category),
		Framework: string(doc.Front.Framework),
		Status:    string(doc.Front.Status),
		Checksum:  doc.Checksum,
		CreatedAt: doc.Front.CreatedAt,
		UpdatedAt: doc.Front.UpdatedAt,
		IndexedAt: indexedAt,
	}
}

func upsert(ctx context.Context, db bun.IDB, rec *Record) error {
	_, err := db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("title = EXCLUDED.title").
		Set("path = EXCLUDED.path").
		Set("model = EXCLUDED.model").
		Set("version = EXCLUDED.version").
		Set("tier = EXCLUDED.tier").
		Set("category = EXCLUDED.category").
		Set("framework = EXCLUDED.framework").
		Set("status = EXCLUDED.status").
		Set("checksum = EXCLUDED.checksum").
		Set("created_at = EXCLUDED.created_at").
		Set("updated_at = EXCLUDED.updated_at").
		Set("indexed_at = EXCLUDED.indexed_at").
		Exec(ctx)
	return err
}

// Upsert writes or refreshes the catalog row for one document.
func (c *Catalog) Upsert(ctx context.Context, doc types.Document) error {
	if doc.Front.ID == "" {
		return fmt.Errorf("upsert %s: document has no id", doc.Path)
	}
	rec := recordFrom(doc, time.Now().UTC())
	if err := upsert(ctx, c.db, &rec); err != nil {
		return fmt.Errorf("upsert %s: %w", doc.Path, err)
	}
	return nil
}

// Remove deletes the catalog row for a path, for when its file vanished.
func (c *Catalog) Remove(ctx context.Context, path string) error {
	_, err := c.db.NewDelete().
		Model((*Record)(nil)).
		Where("path = ?", path).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Reindex rebuilds the catalog from the given documents in one
// transaction: every document is upserted and rows for vanished files
// are pruned.
func (c *Catalog) Reindex(ctx context.Context, documents []types.Document) (Stats, error) {
	var stats Stats
	now := time.Now().UTC()

	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ids := make([]string, 0, len(documents))
		for _, doc := range documents {
			if doc.Front.ID == "" {
				continue
			}
			rec := recordFrom(doc, now)
			if err := upsert(ctx, tx, &rec); err != nil {
				return fmt.Errorf("index %s: %w", doc.Path, err)
			}
			ids = append(ids, rec.ID)
			stats.Indexed++
		}

		del := tx.NewDelete().Model((*Record)(nil))
		if len(ids) == 0 {
			del = del.Where("1 = 1")
		} else {
			del = del.Where("id NOT IN (?)", bun.In(ids))
		}
		res, err := del.Exec(ctx)
		if err != nil {
			return fmt.Errorf("prune stale rows: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			stats.Pruned = int(n)
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("reindex: %w", err)
	}
	return stats, nil
}

// Get returns the record with the given document id.
func (c *Catalog) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := c.db.NewSelect().Model(&rec).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &rec, nil
}

// GetByPath returns the record for a library-relative path.
func (c *Catalog) GetByPath(ctx context.Context, path string) (*Record, error) {
	var rec Record
	err := c.db.NewSelect().Model(&rec).Where("path = ?", path).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: path %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return &rec, nil
}

// List returns records matching the filter, ordered by path.
func (c *Catalog) List(ctx context.Context, f Filter) ([]Record, error) {
	var records []Record
	q := c.db.NewSelect().Model(&records).Order("path ASC")
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Tier != "" {
		q = q.Where("tier = ?", f.Tier)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Framework != "" {
		q = q.Where("framework = ?", f.Framework)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Title != "" {
		q = q.Where("lower(title) LIKE ?", "%"+strings.ToLower(f.Title)+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return records, nil
}

// Count returns the number of cataloged documents.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	n, err := c.db.NewSelect().Model((*Record)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// LogAction appends one audit trail entry attributed to the current
// OS user.
func (c *Catalog) LogAction(ctx context.Context, action, details string) error {
	entry := AuditEntry{
		Timestamp: time.Now().UTC(),
		Username:  currentUsername(),
		Action:    action,
		Details:   details,
	}
	if _, err := c.db.NewInsert().Model(&entry).Exec(ctx); err != nil {
		return fmt.Errorf("log %s: %w", action, err)
	}
	return nil
}

// AuditLog returns audit entries, most recent first, up to limit
// (0 means all).
func (c *Catalog) AuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	var entries []AuditEntry
	q := c.db.NewSelect().Model(&entries).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

func currentUsername() string {
	curUser, err := user.Current()
	if err != nil {
		return "unknown"
	}
	// Windows reports DOMAIN\user.
	if parts := strings.Split(curUser.Username, `\`); len(parts) > 1 {
		return parts[1]
	}
	return curUser.Username
}
