// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"database/sql"
	"fmt"
)

// migration is one step of schema evolution. Migrations are additive
// only: columns and tables are added, never dropped or repurposed, so
// rows written by an older binary keep reading with field defaults.
type migration struct {
	version int
	name    string
	up      func(*sql.Tx) error
}

// migrations is applied in order at Open. Each step is idempotent and
// safe to re-run.
var migrations = []migration{
	{1, "base_schema", migrateV1},
	{2, "exclusion_tracking", migrateV2},
	{3, "merge_audit_and_synthesis", migrateV3},
}

// migrate applies all pending migrations, tracking progress in
// PRAGMA user_version.
func (s *Store) migrate() error {
	var current int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.version, err)
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

func migrateV1(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT NOT NULL DEFAULT '[]',
			year INTEGER NOT NULL DEFAULT 0,
			venue TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			external_ids TEXT NOT NULL DEFAULT '{}',
			status TEXT NOT NULL,
			artifact_path TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS status_history (
			paper_id TEXT NOT NULL REFERENCES papers(id),
			seq INTEGER NOT NULL,
			status TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (paper_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS paper_identifiers (
			source TEXT NOT NULL,
			native_id TEXT NOT NULL,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			PRIMARY KEY (source, native_id)
		)`,
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checkpoints (
			phase_name TEXT PRIMARY KEY,
			cursor TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_status ON papers(status)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
		`CREATE INDEX IF NOT EXISTS idx_identifiers_paper ON paper_identifiers(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache(expires_at)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV2 adds PRISMA exclusion tracking. Pre-existing rows read back
// with empty reason and notes.
func migrateV2(tx *sql.Tx) error {
	return addColumns(tx, "papers", map[string]string{
		"exclusion_reason": `TEXT NOT NULL DEFAULT ''`,
		"exclusion_notes":  `TEXT NOT NULL DEFAULT ''`,
	})
}

// migrateV3 adds the merge audit trail, the conflict queue, and
// synthesis records.
func migrateV3(tx *sql.Tx) error {
	if err := addColumns(tx, "papers", map[string]string{
		"discrepancies": `TEXT NOT NULL DEFAULT '[]'`,
	}); err != nil {
		return err
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conflicts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record TEXT NOT NULL,
			candidate_ids TEXT NOT NULL,
			created_at TEXT NOT NULL,
			resolved INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			paper_id TEXT PRIMARY KEY REFERENCES papers(id),
			content TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			generated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// addColumns runs ALTER TABLE ADD COLUMN for each column that does not
// already exist, keeping migrations re-runnable.
func addColumns(tx *sql.Tx, table string, columns map[string]string) error {
	existing := make(map[string]bool)
	rows, err := tx.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			rows.Close()
			return err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	// Close before ALTER: the tx shares one SQLite connection.
	if err := rows.Close(); err != nil {
		return err
	}

	for name, definition := range columns {
		if existing[name] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, name, definition)
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
