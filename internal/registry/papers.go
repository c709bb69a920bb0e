// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

const timeFmt = time.RFC3339Nano

// Insert persists a newly created paper aggregate. The id must be
// unused; papers are created exactly once and never physically deleted.
func (s *Store) Insert(p *types.Paper) error {
	if p.ID == "" {
		return &PersistenceError{Op: "insert", Err: fmt.Errorf("paper has no id")}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}
	defer tx.Rollback()

	if err := upsertPaperRow(tx, p, true); err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}
	if err := writeIdentifiers(tx, p); err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}
	if err := appendHistory(tx, p); err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}
	return nil
}

// Save upserts a mutated paper aggregate: core fields, identifier index
// rows, and any history entries not yet persisted, all in one
// transaction. History rows are keyed by sequence number and inserted
// with OR IGNORE, so re-running a failed Save never duplicates them.
func (s *Store) Save(p *types.Paper) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	if err := upsertPaperRow(tx, p, false); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := writeIdentifiers(tx, p); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := appendHistory(tx, p); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// GetByID returns the full paper aggregate, or ErrNotFound.
func (s *Store) GetByID(id string) (*types.Paper, error) {
	row := s.db.QueryRow(paperSelect+` WHERE id = ?`, id)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("paper %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading paper %q: %w", id, err)
	}
	if err := s.loadHistory(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByIdentifier resolves a (source, native id) pair through the
// identifier index, or returns ErrNotFound.
func (s *Store) GetByIdentifier(source, nativeID string) (*types.Paper, error) {
	var paperID string
	err := s.db.QueryRow(
		`SELECT paper_id FROM paper_identifiers WHERE source = ? AND native_id = ?`,
		source, nativeID,
	).Scan(&paperID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("identifier %s:%s: %w", source, nativeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving identifier %s:%s: %w", source, nativeID, err)
	}
	return s.GetByID(paperID)
}

// All returns every paper in the registry, ordered by creation time
// then id.
func (s *Store) All() ([]*types.Paper, error) {
	return s.queryPapers(paperSelect + ` ORDER BY created_at, id`)
}

// GetByStatus returns all papers in the given status, ordered by
// creation time then id so batch operations iterate deterministically.
func (s *Store) GetByStatus(status types.Status) ([]*types.Paper, error) {
	return s.queryPapers(paperSelect+` WHERE status = ? ORDER BY created_at, id`, string(status))
}

// GetByYear returns all papers with the given publication year; the
// dedup engine uses it to bound the fuzzy-match candidate set.
func (s *Store) GetByYear(year int) ([]*types.Paper, error) {
	return s.queryPapers(paperSelect+` WHERE year = ? ORDER BY created_at, id`, year)
}

// CountByStatus returns the number of papers per status.
func (s *Store) CountByStatus() (map[types.Status]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM papers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting papers: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("counting papers: %w", err)
		}
		counts[types.Status(status)] = n
	}
	return counts, rows.Err()
}

const paperSelect = `SELECT id, title, authors, year, venue, abstract, external_ids,
	status, artifact_path, created_at, exclusion_reason, exclusion_notes, discrepancies
	FROM papers`

func (s *Store) queryPapers(query string, args ...any) ([]*types.Paper, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []*types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("reading paper row: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	for _, p := range papers {
		if err := s.loadHistory(p); err != nil {
			return nil, err
		}
	}
	return papers, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (*types.Paper, error) {
	var (
		p                    types.Paper
		authorsJSON, idsJSON string
		discrepanciesJSON    string
		createdAt            string
		exclusionReason      string
	)
	err := row.Scan(&p.ID, &p.Title, &authorsJSON, &p.Year, &p.Venue, &p.Abstract,
		&idsJSON, (*string)(&p.Status), &p.ArtifactPath, &createdAt,
		&exclusionReason, &p.ExclusionNotes, &discrepanciesJSON)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return nil, fmt.Errorf("decoding authors for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(idsJSON), &p.ExternalIDs); err != nil {
		return nil, fmt.Errorf("decoding external ids for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(discrepanciesJSON), &p.Discrepancies); err != nil {
		return nil, fmt.Errorf("decoding discrepancies for %s: %w", p.ID, err)
	}
	p.ExclusionReason = types.ExclusionReason(exclusionReason)
	if t, err := time.Parse(timeFmt, createdAt); err == nil {
		p.CreatedAt = t
	}
	return &p, nil
}

func (s *Store) loadHistory(p *types.Paper) error {
	rows, err := s.db.Query(
		`SELECT status, occurred_at, actor FROM status_history WHERE paper_id = ? ORDER BY seq`,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("reading history for %s: %w", p.ID, err)
	}
	defer rows.Close()

	p.History = nil
	for rows.Next() {
		var ev types.StatusEvent
		var occurredAt string
		if err := rows.Scan((*string)(&ev.Status), &occurredAt, &ev.Actor); err != nil {
			return fmt.Errorf("reading history for %s: %w", p.ID, err)
		}
		if t, err := time.Parse(timeFmt, occurredAt); err == nil {
			ev.OccurredAt = t
		}
		p.History = append(p.History, ev)
	}
	return rows.Err()
}

func upsertPaperRow(tx *sql.Tx, p *types.Paper, insertOnly bool) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	idsJSON, err := json.Marshal(p.ExternalIDs)
	if err != nil {
		return fmt.Errorf("encoding external ids: %w", err)
	}
	discrepanciesJSON, err := json.Marshal(p.Discrepancies)
	if err != nil {
		return fmt.Errorf("encoding discrepancies: %w", err)
	}
	if p.Discrepancies == nil {
		discrepanciesJSON = []byte(`[]`)
	}
	if p.Authors == nil {
		authorsJSON = []byte(`[]`)
	}
	if p.ExternalIDs == nil {
		idsJSON = []byte(`{}`)
	}

	query := `INSERT INTO papers (id, title, authors, year, venue, abstract, external_ids,
		status, artifact_path, created_at, exclusion_reason, exclusion_notes, discrepancies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if !insertOnly {
		query += ` ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, year=excluded.year,
			venue=excluded.venue, abstract=excluded.abstract, external_ids=excluded.external_ids,
			status=excluded.status, artifact_path=excluded.artifact_path,
			exclusion_reason=excluded.exclusion_reason, exclusion_notes=excluded.exclusion_notes,
			discrepancies=excluded.discrepancies`
	}

	_, err = tx.Exec(query,
		p.ID, p.Title, string(authorsJSON), p.Year, p.Venue, p.Abstract, string(idsJSON),
		string(p.Status), p.ArtifactPath, p.CreatedAt.UTC().Format(timeFmt),
		string(p.ExclusionReason), p.ExclusionNotes, string(discrepanciesJSON),
	)
	return err
}

func writeIdentifiers(tx *sql.Tx, p *types.Paper) error {
	for source, nativeID := range p.ExternalIDs {
		_, err := tx.Exec(
			`INSERT INTO paper_identifiers (source, native_id, paper_id) VALUES (?, ?, ?)
			 ON CONFLICT(source, native_id) DO NOTHING`,
			source, nativeID, p.ID,
		)
		if err != nil {
			return fmt.Errorf("indexing identifier %s:%s: %w", source, nativeID, err)
		}
	}
	return nil
}

func appendHistory(tx *sql.Tx, p *types.Paper) error {
	for seq, ev := range p.History {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO status_history (paper_id, seq, status, occurred_at, actor)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, seq, string(ev.Status), ev.OccurredAt.UTC().Format(timeFmt), ev.Actor,
		)
		if err != nil {
			return fmt.Errorf("appending history entry %d: %w", seq, err)
		}
	}
	return nil
}
