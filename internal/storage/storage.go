// Package storage persists chunks, relationships, business rules,
// snapshots, and error logs in a single-writer SQLite database.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, registers "sqlite"
)

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("storage: not found")

// ErrInvalidMetadata is returned when a chunk's metadata fails schema validation.
var ErrInvalidMetadata = errors.New("storage: invalid metadata")

// Store owns the database handle. It is safe to share across calls as long
// as the caller serializes access the way §5 of the design requires — Store
// itself does not re-enter a lock.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and runs
// schema bootstrap and migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite does not support concurrent writers; a single connection
	// matches the single-writer model the design assumes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}

	if err := bootstrap(db); err != nil {
		db.Close()

		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()

		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for advanced callers. Core operations
// should prefer the typed methods.
func (s *Store) DB() *sql.DB {
	return s.db
}
