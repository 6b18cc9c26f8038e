package knowledge

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSourceNotFound indicates a catalog lookup for an unknown source file.
var ErrSourceNotFound = errors.New("source not found in catalog")

// SourceRecord is the catalog entry for one indexed documentation file.
type SourceRecord struct {
	Name        string    `json:"name"`
	DocType     string    `json:"doc_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ChunkCount  int       `json:"chunk_count"`
	ContentHash string    `json:"content_hash"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// TypeStats aggregates catalog entries for one document type.
type TypeStats struct {
	DocType string `json:"doc_type"`
	Files   int    `json:"files"`
	Chunks  int    `json:"chunks"`
}

// Catalog tracks indexed source files in a SQLite database next to the
// vector store. The content hash lets prepare skip files that have not
// changed since the previous run.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the catalog database at dbPath and applies
// pending schema migrations.
func OpenCatalog(dbPath string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrateCatalog(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Catalog{db: db}, nil
}

// migrateCatalog applies the embedded schema migrations.
func migrateCatalog(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migrate driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Ping verifies the catalog database is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Record upserts the catalog entry for one source file.
func (c *Catalog) Record(ctx context.Context, rec SourceRecord) error {
	const q = `
		INSERT INTO sources (name, doc_type, size_bytes, chunk_count, content_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			doc_type = excluded.doc_type,
			size_bytes = excluded.size_bytes,
			chunk_count = excluded.chunk_count,
			content_hash = excluded.content_hash,
			indexed_at = excluded.indexed_at`

	_, err := c.db.ExecContext(ctx, q,
		rec.Name, rec.DocType, rec.SizeBytes, rec.ChunkCount, rec.ContentHash,
		rec.IndexedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording source %q: %w", rec.Name, err)
	}
	return nil
}

// Get returns the catalog entry for name, or ErrSourceNotFound.
func (c *Catalog) Get(ctx context.Context, name string) (*SourceRecord, error) {
	const q = `
		SELECT name, doc_type, size_bytes, chunk_count, content_hash, indexed_at
		FROM sources WHERE name = ?`

	rec, err := scanSource(c.db.QueryRowContext(ctx, q, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
		}
		return nil, fmt.Errorf("looking up source %q: %w", name, err)
	}
	return rec, nil
}

// List returns all catalog entries, ordered by name.
func (c *Catalog) List(ctx context.Context) ([]SourceRecord, error) {
	const q = `
		SELECT name, doc_type, size_bytes, chunk_count, content_hash, indexed_at
		FROM sources ORDER BY name`

	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var records []SourceRecord
	for rows.Next() {
		rec, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Stats aggregates file and chunk counts per document type.
func (c *Catalog) Stats(ctx context.Context) ([]TypeStats, error) {
	const q = `
		SELECT doc_type, COUNT(*), COALESCE(SUM(chunk_count), 0)
		FROM sources GROUP BY doc_type ORDER BY doc_type`

	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("aggregating catalog stats: %w", err)
	}
	defer rows.Close()

	var stats []TypeStats
	for rows.Next() {
		var s TypeStats
		if err := rows.Scan(&s.DocType, &s.Files, &s.Chunks); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Delete removes the catalog entry for name. Deleting an unknown source
// returns ErrSourceNotFound.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM sources WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting source %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting source %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	return nil
}

// Clear removes every catalog entry. Used by prepare --reset.
func (c *Catalog) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM sources`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*SourceRecord, error) {
	var rec SourceRecord
	var indexedAt string
	if err := row.Scan(&rec.Name, &rec.DocType, &rec.SizeBytes, &rec.ChunkCount,
		&rec.ContentHash, &indexedAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, indexedAt); err == nil {
		rec.IndexedAt = t
	}
	return &rec, nil
}
