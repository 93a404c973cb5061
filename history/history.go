// Package history records scan runs and their findings in a local sqlite
// database, so watch mode and CI can report what is new since the last
// run. The database is an optional cache: deleting it only loses the
// baseline.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/viewcheck/viewcheck/checks"
)

// Schema for the scan history tables. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS scan_runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	files_scanned INTEGER NOT NULL,
	finding_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scan_findings (
	run_id TEXT NOT NULL REFERENCES scan_runs(id),
	rule TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_findings_run ON scan_findings(run_id);
`

// Store persists scan runs to sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record stores one completed scan run and returns its id.
func (s *Store) Record(filesScanned int, findings []checks.Finding) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO scan_runs (id, started_at, files_scanned, finding_count) VALUES (?, ?, ?, ?)`,
		runID, time.Now().Unix(), filesScanned, len(findings),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for _, f := range findings {
		_, err = tx.Exec(
			`INSERT INTO scan_findings (run_id, rule, severity, message, file, line) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.Rule, string(f.Severity), f.Message, f.File, f.Line,
		)
		if err != nil {
			return "", fmt.Errorf("insert finding: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history tx: %w", err)
	}
	return runID, nil
}

// LastRunID returns the id of the most recent run before the given one,
// or "" when there is no prior run.
func (s *Store) LastRunID(before string) (string, error) {
	row := s.db.QueryRow(
		`SELECT id FROM scan_runs WHERE id != ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		before,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// NewSince returns the findings not present in the baseline run,
// matching on rule, file and message (line numbers shift too easily to
// participate in identity).
func (s *Store) NewSince(baseline string, findings []checks.Finding) ([]checks.Finding, error) {
	if baseline == "" {
		return findings, nil
	}
	rows, err := s.db.Query(
		`SELECT rule, file, message FROM scan_findings WHERE run_id = ?`, baseline,
	)
	if err != nil {
		return nil, fmt.Errorf("load baseline findings: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var rule, file, message string
		if err := rows.Scan(&rule, &file, &message); err != nil {
			return nil, err
		}
		known[rule+"\x00"+file+"\x00"+message] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fresh []checks.Finding
	for _, f := range findings {
		if !known[f.Rule+"\x00"+f.File+"\x00"+f.Message] {
			fresh = append(fresh, f)
		}
	}
	return fresh, nil
}
