// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry is the durable store of paper records and their
// status history: the single source of truth for the pipeline.
//
// The store is designed single-writer-at-a-time: one process owns the
// database for writes while WAL mode keeps concurrent readers (report
// tooling) unblocked. Every mutation runs in a short transaction so the
// on-disk state survives an unclean shutdown.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports a lookup that matched no paper.
var ErrNotFound = errors.New("paper not found")

// PersistenceError reports a registry write that did not complete. The
// operation must be treated as not-applied; retrying is safe because
// status transitions are idempotent.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("registry %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store wraps the registry SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the registry database at path and brings its
// schema up to date. The write connection is capped at one so SQLite
// transactions never contend within the process.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating registry: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for the cache and checkpoint stores,
// which share the registry database file.
func (s *Store) DB() *sql.DB {
	return s.db
}
