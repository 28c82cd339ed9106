// Package store persists validation runs to SQLite. Records are append-only:
// a run is written once when it completes and never updated, so the store
// doubles as an audit trail.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/wudi/evidencekit/evidence"
)

// ErrNotFound is returned when no run exists for the requested document.
var ErrNotFound = errors.New("run not found")

// Run is one persisted validation run.
type Run struct {
	DocumentID  string
	Format      evidence.Format
	CompletedAt time.Time
	Report      evidence.ValidationReport
}

// Store is a SQLite-backed run store. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the run database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run store schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		format TEXT NOT NULL,
		completed_at DATETIME NOT NULL,
		overall_pass INTEGER NOT NULL,
		report JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_document_id ON runs(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save appends one completed run.
func (s *Store) Save(ctx context.Context, run Run) error {
	payload, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (document_id, format, completed_at, overall_pass, report)
		VALUES (?, ?, ?, ?, ?)`,
		run.DocumentID, string(run.Format), run.CompletedAt.UTC(), boolInt(run.Report.OverallPass), payload)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// Get returns the most recent run for a document.
func (s *Store) Get(ctx context.Context, documentID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, format, completed_at, report
		FROM runs WHERE document_id = ?
		ORDER BY id DESC LIMIT 1`, documentID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// List returns the most recent runs, newest first, up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, format, completed_at, report
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var format string
	var payload []byte
	if err := row.Scan(&run.DocumentID, &format, &run.CompletedAt, &payload); err != nil {
		return Run{}, err
	}
	run.Format = evidence.Format(format)
	if err := json.Unmarshal(payload, &run.Report); err != nil {
		return Run{}, fmt.Errorf("decode report: %w", err)
	}
	return run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
