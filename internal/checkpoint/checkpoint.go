// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists per-phase progress markers so interrupted
// batch runs resume where they stopped instead of starting over.
package checkpoint

import (
	"database/sql"
	"fmt"
	"time"
)

// Phase states stored alongside the cursor.
const (
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

const timeFmt = time.RFC3339Nano

// Checkpoint records how far a named phase has progressed. Cursor is
// phase-defined: ingest stores the last processed filename, search the
// last completed query.
type Checkpoint struct {
	Phase     string
	Cursor    string
	State     string
	UpdatedAt time.Time
}

// Store reads and writes checkpoints in the registry database.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the checkpoint for phase, or ok=false when the phase has
// never run.
func (s *Store) Load(phase string) (Checkpoint, bool, error) {
	var cp Checkpoint
	var updated string
	err := s.db.QueryRow(
		`SELECT phase_name, cursor, status, updated_at FROM checkpoints WHERE phase_name = ?`,
		phase,
	).Scan(&cp.Phase, &cp.Cursor, &cp.State, &updated)
	if err == sql.ErrNoRows {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("loading checkpoint %s: %w", phase, err)
	}
	if cp.UpdatedAt, err = time.Parse(timeFmt, updated); err != nil {
		return Checkpoint{}, false, fmt.Errorf("loading checkpoint %s: %w", phase, err)
	}
	return cp, true, nil
}

// Advance records that work up to and including cursor is done and the
// phase is still running. Advancing a completed phase restarts it.
func (s *Store) Advance(phase, cursor string) error {
	return s.write(phase, cursor, StateInProgress)
}

// Complete marks the phase finished. The final cursor is kept for
// inspection.
func (s *Store) Complete(phase, cursor string) error {
	return s.write(phase, cursor, StateCompleted)
}

// Fail marks the phase as stopped by an error, preserving the cursor so
// the next run resumes after the last durable item.
func (s *Store) Fail(phase, cursor string) error {
	return s.write(phase, cursor, StateFailed)
}

// Clear removes the checkpoint so the next run starts from scratch.
func (s *Store) Clear(phase string) error {
	if _, err := s.db.Exec(`DELETE FROM checkpoints WHERE phase_name = ?`, phase); err != nil {
		return fmt.Errorf("clearing checkpoint %s: %w", phase, err)
	}
	return nil
}

func (s *Store) write(phase, cursor, state string) error {
	_, err := s.db.Exec(
		`INSERT INTO checkpoints (phase_name, cursor, status, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(phase_name) DO UPDATE SET
			cursor=excluded.cursor, status=excluded.status, updated_at=excluded.updated_at`,
		phase, cursor, state, time.Now().UTC().Format(timeFmt),
	)
	if err != nil {
		return fmt.Errorf("writing checkpoint %s: %w", phase, err)
	}
	return nil
}
