// Package history persists simulation run summaries in a local sqlite
// database so past runs can be compared from the CLI.
package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	ticks       INTEGER NOT NULL,
	dispatches  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS task_runs (
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	task       TEXT NOT NULL,
	dispatches INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_runs_run ON task_runs(run_id);
`

// Run is one stored run summary.
type Run struct {
	ID         int64
	Started    time.Time
	Duration   time.Duration
	Ticks      int64
	Dispatches int64
}

// Store wraps the sqlite database holding run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite prefers a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores one run summary and its per-task dispatch totals.
func (s *Store) Append(ctx context.Context, r Run, totals map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(started_at, duration_ms, ticks, dispatches) VALUES(?,?,?,?)`,
		r.Started.Format(time.RFC3339Nano), r.Duration.Milliseconds(), r.Ticks, r.Dispatches,
	)
	if err != nil {
		return err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for task, n := range totals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_runs(run_id, task, dispatches) VALUES(?,?,?)`,
			runID, task, n,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Recent returns up to limit run summaries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, ticks, dispatches
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r     Run
			start string
			durMS int64
		)
		if err := rows.Scan(&r.ID, &start, &durMS, &r.Ticks, &r.Dispatches); err != nil {
			return nil, err
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, start)
		r.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// TaskTotals returns the per-task dispatch counts recorded for a run.
func (s *Store) TaskTotals(ctx context.Context, runID int64) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task, dispatches FROM task_runs WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var (
			task string
			n    int64
		)
		if err := rows.Scan(&task, &n); err != nil {
			return nil, err
		}
		totals[task] = n
	}
	return totals, rows.Err()
}
