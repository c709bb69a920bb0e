// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache is a TTL-keyed store for idempotent external lookups,
// backed by the registry database. Entries are immutable once written;
// expired entries are invisible to reads and eligible for removal.
//
// Concurrent misses for the same key each compute independently and the
// later writer wins. Staleness beyond the TTL is the only correctness
// contract; there is no single-flight deduplication.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Store wraps the cache table.
type Store struct {
	db *sql.DB
}

// New returns a cache store over the given database handle (normally
// registry.Store.DB()).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// now is stubbed in tests.
var now = time.Now

// timeFmt is fixed-width (no trailing-zero trimming) so stored
// timestamps compare lexically in SQL.
const timeFmt = "2006-01-02T15:04:05.000000000Z"

// Key derives a stable cache key from request parameters.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:])
}

// Get returns the cached value for key if present and unexpired.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt string
	err := s.db.QueryRow(`SELECT value, expires_at FROM cache WHERE key = ?`, key).
		Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	t, err := time.Parse(timeFmt, expiresAt)
	if err != nil || !t.After(now().UTC()) {
		// Expired rows stay invisible; remove opportunistically.
		s.db.Exec(`DELETE FROM cache WHERE key = ?`, key)
		return nil, false, nil
	}
	return value, true, nil
}

// GetOrCompute returns the cached value for key, computing and storing
// it with expiry now+ttl on a miss. A failed compute stores nothing.
func (s *Store) GetOrCompute(key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, error) {
	if value, ok, err := s.Get(key); err != nil {
		return nil, err
	} else if ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	nowUTC := now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value=excluded.value, created_at=excluded.created_at, expires_at=excluded.expires_at`,
		key, value, nowUTC.Format(timeFmt), nowUTC.Add(ttl).Format(timeFmt),
	)
	if err != nil {
		return nil, fmt.Errorf("storing cache entry: %w", err)
	}
	return value, nil
}

// Purge removes all expired entries and reports how many were deleted.
func (s *Store) Purge() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM cache WHERE expires_at <= ?`, now().UTC().Format(timeFmt))
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}
