// Package store provides SQLite storage for replay runs and their flushed batches.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a history that lives only as long as the Store.
const MemoryPath = ":memory:"

// busyTimeout covers a recorder flushing while the HTTP API reads history.
const busyTimeout = 5 * time.Second

// Store holds replay history: one row per run, one row per flushed batch.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the history database at path, creating its directory and
// schema when missing.
func New(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Batches cascade with their run only while foreign keys are on, and the
	// pragmas are applied per connection. A single connection also keeps a
	// memory database alive for the Store's lifetime.
	db.SetMaxOpenConns(1)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if fk != 1 {
		db.Close()
		return nil, fmt.Errorf("foreign keys disabled for %s", path)
	}

	s := &Store{db: db, path: path}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("store: opened", "path", path)
	return s, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	return "file:" + path + "?" + q.Encode()
}

// Path returns the database location the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}
