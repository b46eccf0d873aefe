// Package history persists batch run summaries in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/imgx-dev/imgx/internal/report"
)

// Store is a SQLite-backed record of past conversion runs.
type Store struct{ db *sql.DB }

//go:embed migrations/*.sql
var migrationFS embed.FS

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema, err := migrationFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// NewRunID mints an identifier for a batch run.
func NewRunID() string { return uuid.NewString() }

// Run is one recorded batch run.
type Run struct {
	ID          string
	StartedAt   time.Time
	Format      string
	Total       int
	Successful  int
	Failed      int
	Duration    time.Duration
	InputBytes  int64
	OutputBytes int64
}

// RecordRun stores a summary and its per-file failures in one transaction.
func (s *Store) RecordRun(ctx context.Context, sum report.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, format, total, successful, failed, duration_ms, input_bytes, output_bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.StartedAt.UTC().Format(time.RFC3339Nano), sum.Format,
		sum.Total, sum.Successful, sum.Failed,
		sum.Duration.Milliseconds(), sum.InputBytes, sum.OutputBytes)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, f := range sum.Failures {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_failures (run_id, path, position, error) VALUES (?, ?, ?, ?)`,
			sum.RunID, f.Path, f.Index, f.Error)
		if err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, format, total, successful, failed, duration_ms, input_bytes, output_bytes
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			started    string
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &started, &r.Format, &r.Total, &r.Successful,
			&r.Failed, &durationMs, &r.InputBytes, &r.OutputBytes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at for run %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Failures returns the per-file failures recorded for one run, in the order
// they occurred.
func (s *Store) Failures(ctx context.Context, runID string) ([]report.FileError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, position, error FROM run_failures WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []report.FileError
	for rows.Next() {
		var f report.FileError
		if err := rows.Scan(&f.Path, &f.Index, &f.Error); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
