// Package fetchlog journals document fetch attempts in SQLite so the
// fetch layer's behaviour (cache hits, stale fallbacks, challenge
// escalations, failures) stays inspectable after the run.
package fetchlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fetch_log (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user          TEXT NOT NULL,
    kind          TEXT NOT NULL,
    page          INTEGER NOT NULL DEFAULT 0,
    url           TEXT NOT NULL,
    status_code   INTEGER NOT NULL DEFAULT 0,
    source        TEXT NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    fetched_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_user ON fetch_log(user, fetched_at DESC);
`

// Entry is one journalled fetch attempt.
type Entry struct {
	ID           int64  `json:"id"`
	User         string `json:"user"`
	Kind         string `json:"kind"` // "profile" | "diary"
	Page         int    `json:"page"`
	URL          string `json:"url"`
	StatusCode   int    `json:"status_code"`
	Source       string `json:"source"` // "cache" | "network" | "browser" | "stale" | "none"
	ErrorMessage string `json:"error_message"`
	DurationMs   int64  `json:"duration_ms"`
	FetchedAt    int64  `json:"fetched_at"` // unix milliseconds
}

// Store wraps the journal database.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the journal at path with the production-safe
// pragmas applied, creating parent directories on demand. Use ":memory:"
// in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("fetchlog: mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("fetchlog: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("fetchlog: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("fetchlog: apply schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// Insert journals one attempt.
func (s *Store) Insert(ctx context.Context, e *Entry) error {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO fetch_log (user, kind, page, url, status_code, source,
		error_message, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.User, e.Kind, e.Page, e.URL, e.StatusCode, e.Source,
		e.ErrorMessage, e.DurationMs, e.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("fetchlog: insert: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// History returns a user's journal entries, newest first.
func (s *Store) History(ctx context.Context, user string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user, kind, page, url, status_code, source,
		error_message, duration_ms, fetched_at
		FROM fetch_log WHERE user = ?
		ORDER BY fetched_at DESC, id DESC LIMIT ?`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("fetchlog: history: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.User, &e.Kind, &e.Page, &e.URL,
			&e.StatusCode, &e.Source, &e.ErrorMessage, &e.DurationMs, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("fetchlog: scan: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

// Close closes the journal database.
func (s *Store) Close() error {
	return s.DB.Close()
}
