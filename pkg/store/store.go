// Package store is the durable local cache behind the sync engine: the
// last-scraped item set with its reconciliation flags, the user's
// suppression set, the identity-key → remote-task index, and a few meta
// flags. It is the single source of truth; writers replace whole
// collections rather than patching rows, so concurrent triggers degrade
// to last-write-wins on a consistent snapshot.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the cache database at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		position INTEGER PRIMARY KEY,
		course TEXT NOT NULL DEFAULT '',
		course_code TEXT NOT NULL DEFAULT '',
		assignment TEXT NOT NULL DEFAULT '',
		href TEXT NOT NULL DEFAULT '',
		due TEXT NOT NULL DEFAULT '',
		due_text TEXT NOT NULL DEFAULT '',
		is_grading BOOLEAN NOT NULL DEFAULT 0,
		in_google BOOLEAN NOT NULL DEFAULT 0,
		completed_in_google BOOLEAN NOT NULL DEFAULT 0,
		google_task_id TEXT NOT NULL DEFAULT '',
		google_list_id TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS suppression (
		key TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS sync_index (
		key TEXT PRIMARY KEY,
		list_id TEXT NOT NULL,
		task_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
