/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package history keeps acceptance run results in a local SQLite file so
// CI can spot cases that flip between pass and fail.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/defaults"
	"github.com/stk5800/cliharness/pkg/header"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	admin_host TEXT NOT NULL,
	status     TEXT NOT NULL,
	passed     INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	recorded_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS case_results (
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	case_name   TEXT NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT,
	started_at  DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, case_name)
);
CREATE INDEX IF NOT EXISTS idx_case_results_name ON case_results(case_name, started_at);
`

// Entry is one recorded case result.
type Entry struct {
	RunID    string           `json:"runId" yaml:"runId"`
	Case     string           `json:"case" yaml:"case"`
	Status   cases.CaseStatus `json:"status" yaml:"status"`
	Message  string           `json:"message,omitempty" yaml:"message,omitempty"`
	Started  time.Time        `json:"started" yaml:"started"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// Store is a SQLite backed run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// one writer; the harness records a run at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run report. Recording the same run twice replaces it.
func (s *Store) Record(ctx context.Context, rep *cases.Report) error {
	if rep == nil || rep.RunID == "" {
		return fmt.Errorf("report has no run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM case_results WHERE run_id = ?`, rep.RunID); err != nil {
		return fmt.Errorf("failed to clear previous results: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, admin_host, status, passed, failed, skipped, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID, rep.Metadata[header.MetaHost], string(rep.Summary.Status),
		rep.Summary.Passed, rep.Summary.Failed, rep.Summary.Skipped,
		rep.Summary.Duration.Milliseconds(), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record run %s: %w", rep.RunID, err)
	}

	for _, r := range rep.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO case_results (run_id, case_name, status, message, started_at, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rep.RunID, r.Name, string(r.Status), r.Message, r.Started.UTC(), r.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("failed to record case %s: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rep.RunID, err)
	}
	return nil
}

// Recent returns up to limit results for caseName, newest first. An
// empty caseName returns results of every case.
func (s *Store) Recent(ctx context.Context, caseName string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaults.HistoryLimit
	}

	query := `SELECT run_id, case_name, status, COALESCE(message, ''), started_at, duration_ms
		FROM case_results`
	args := []any{}
	if caseName != "" {
		query += ` WHERE case_name = ?`
		args = append(args, caseName)
	}
	query += ` ORDER BY started_at DESC, case_name LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			status string
			ms     int64
		)
		if err := rows.Scan(&e.RunID, &e.Case, &status, &e.Message, &e.Started, &ms); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		e.Status = cases.CaseStatus(status)
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return out, nil
}

// Flaky returns the cases that both passed and failed within their last
// window results.
func (s *Store) Flaky(ctx context.Context, window int) ([]string, error) {
	entries, err := s.Recent(ctx, "", 1<<20)
	if err != nil {
		return nil, err
	}

	type seen struct {
		n              int
		passed, failed bool
	}
	byCase := make(map[string]*seen)
	var order []string
	for _, e := range entries {
		st, ok := byCase[e.Case]
		if !ok {
			st = &seen{}
			byCase[e.Case] = st
			order = append(order, e.Case)
		}
		if st.n >= window {
			continue
		}
		st.n++
		switch e.Status {
		case cases.CaseStatusPassed:
			st.passed = true
		case cases.CaseStatusFailed:
			st.failed = true
		}
	}

	var flaky []string
	for _, name := range order {
		if st := byCase[name]; st.passed && st.failed {
			flaky = append(flaky, name)
		}
	}
	return flaky, nil
}
