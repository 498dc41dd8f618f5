// Package manifest records completed conversions in SQLite so unchanged
// pages can be skipped on the next run.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	page_id      TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	output_path  TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	format       TEXT NOT NULL DEFAULT 'md',
	converted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_converted_at ON conversions(converted_at);
CREATE INDEX IF NOT EXISTS idx_conversions_output_path ON conversions(output_path);
`

// Entry is one recorded conversion.
type Entry struct {
	PageID      string    `json:"page_id"`
	Title       string    `json:"title"`
	OutputPath  string    `json:"output_path"`
	ContentHash string    `json:"content_hash"`
	Format      string    `json:"format"`
	ConvertedAt time.Time `json:"converted_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("manifest: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open: %w", err)
	}
	// One connection keeps ":memory:" a single database and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("manifest: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the entry for pageID, or nil when none is recorded.
func (s *Store) Lookup(ctx context.Context, pageID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT page_id, title, output_path, content_hash, format, converted_at
		FROM conversions WHERE page_id = ?`, pageID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: lookup %s: %w", pageID, err)
	}
	return e, nil
}

// Owner returns the id of the page last recorded at outputPath, or "" when
// no conversion was written there.
func (s *Store) Owner(ctx context.Context, outputPath string) (string, error) {
	var pageID string
	err := s.db.QueryRowContext(ctx, `
		SELECT page_id FROM conversions WHERE output_path = ?
		ORDER BY converted_at DESC LIMIT 1`, outputPath).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("manifest: owner of %s: %w", outputPath, err)
	}
	return pageID, nil
}

// Record inserts or replaces the entry for e.PageID. A zero ConvertedAt is
// set to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ConvertedAt.IsZero() {
		e.ConvertedAt = time.Now()
	}
	if e.Format == "" {
		e.Format = "md"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions (page_id, title, output_path, content_hash, format, converted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			title = excluded.title,
			output_path = excluded.output_path,
			content_hash = excluded.content_hash,
			format = excluded.format,
			converted_at = excluded.converted_at`,
		e.PageID, e.Title, e.OutputPath, e.ContentHash, e.Format, e.ConvertedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("manifest: record %s: %w", e.PageID, err)
	}
	return nil
}

// List returns up to limit entries, most recent first. limit <= 0 means 100.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_id, title, output_path, content_hash, format, converted_at
		FROM conversions ORDER BY converted_at DESC, page_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("manifest: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("manifest: scan: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Unchanged reports whether e already holds content with hash at the same
// output path and format, and that file still exists.
func Unchanged(e *Entry, hash, outputPath, format string) bool {
	if e == nil || e.ContentHash != hash || e.OutputPath != outputPath || e.Format != format {
		return false
	}
	_, err := os.Stat(outputPath)
	return err == nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var ms int64
	if err := row.Scan(&e.PageID, &e.Title, &e.OutputPath, &e.ContentHash, &e.Format, &ms); err != nil {
		return nil, err
	}
	e.ConvertedAt = time.UnixMilli(ms)
	return &e, nil
}
