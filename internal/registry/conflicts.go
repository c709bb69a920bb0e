// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Conflict is a queued discovery record that fuzzy-matched more than one
// existing paper. It is never resolved automatically; a human adjudicates
// and either merges manually or inserts a new paper.
type Conflict struct {
	ID           int64           `json:"id" yaml:"id"`
	Record       types.RawRecord `json:"record" yaml:"record"`
	CandidateIDs []string        `json:"candidate_ids" yaml:"candidate_ids"`
	CreatedAt    time.Time       `json:"created_at" yaml:"created_at"`
	Resolved     bool            `json:"resolved" yaml:"resolved"`
}

// QueueConflict stores an incoming record for manual adjudication. The
// record is queued, not dropped and not force-merged.
func (s *Store) QueueConflict(rec types.RawRecord, candidateIDs []string) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return &PersistenceError{Op: "queue conflict", Err: err}
	}
	idsJSON, err := json.Marshal(candidateIDs)
	if err != nil {
		return &PersistenceError{Op: "queue conflict", Err: err}
	}
	_, err = s.db.Exec(
		`INSERT INTO conflicts (record, candidate_ids, created_at) VALUES (?, ?, ?)`,
		string(recJSON), string(idsJSON), time.Now().UTC().Format(timeFmt),
	)
	if err != nil {
		return &PersistenceError{Op: "queue conflict", Err: err}
	}
	return nil
}

// Conflicts returns queued conflicts, unresolved ones only unless
// includeResolved is set.
func (s *Store) Conflicts(includeResolved bool) ([]Conflict, error) {
	query := `SELECT id, record, candidate_ids, created_at, resolved FROM conflicts`
	if !includeResolved {
		query += ` WHERE resolved = 0`
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("reading conflicts: %w", err)
	}
	defer rows.Close()

	var out []Conflict
	for rows.Next() {
		var (
			c                Conflict
			recJSON, idsJSON string
			createdAt        string
			resolved         int
		)
		if err := rows.Scan(&c.ID, &recJSON, &idsJSON, &createdAt, &resolved); err != nil {
			return nil, fmt.Errorf("reading conflict row: %w", err)
		}
		if err := json.Unmarshal([]byte(recJSON), &c.Record); err != nil {
			return nil, fmt.Errorf("decoding conflict %d: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(idsJSON), &c.CandidateIDs); err != nil {
			return nil, fmt.Errorf("decoding conflict %d: %w", c.ID, err)
		}
		if t, err := time.Parse(timeFmt, createdAt); err == nil {
			c.CreatedAt = t
		}
		c.Resolved = resolved != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// ResolveConflict marks a queued conflict as adjudicated.
func (s *Store) ResolveConflict(id int64) error {
	res, err := s.db.Exec(`UPDATE conflicts SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "resolve conflict", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conflict %d: %w", id, ErrNotFound)
	}
	return nil
}

// SaveSummary records the synthesis collaborator's output for a paper.
func (s *Store) SaveSummary(sum types.Summary) error {
	if sum.GeneratedAt.IsZero() {
		sum.GeneratedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO summaries (paper_id, content, provider, model, generated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			content=excluded.content, provider=excluded.provider,
			model=excluded.model, generated_at=excluded.generated_at`,
		sum.PaperID, sum.Content, sum.Provider, sum.Model,
		sum.GeneratedAt.UTC().Format(timeFmt),
	)
	if err != nil {
		return &PersistenceError{Op: "save summary", Err: err}
	}
	return nil
}

// GetSummary returns the stored summary for a paper, or ErrNotFound.
func (s *Store) GetSummary(paperID string) (*types.Summary, error) {
	var sum types.Summary
	var generatedAt string
	err := s.db.QueryRow(
		`SELECT paper_id, content, provider, model, generated_at FROM summaries WHERE paper_id = ?`,
		paperID,
	).Scan(&sum.PaperID, &sum.Content, &sum.Provider, &sum.Model, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary for %q: %w", paperID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary for %q: %w", paperID, err)
	}
	if t, err := time.Parse(timeFmt, generatedAt); err == nil {
		sum.GeneratedAt = t
	}
	return &sum, nil
}
