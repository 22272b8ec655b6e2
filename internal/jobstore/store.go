// Package jobstore records extraction-job history in a local SQLite database.
package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"policyscan/constants"
)

// Job is one recorded extraction run.
type Job struct {
	ID            string              `json:"id"`
	Path          string              `json:"path"`
	Status        constants.JobStatus `json:"status"`
	Method        string              `json:"method,omitempty"`
	Pages         int                 `json:"pages"`
	TextChars     int                 `json:"text_chars"`
	IsValid       bool                `json:"is_valid"`
	MissingFields int                 `json:"missing_fields"`
	ErrorMessage  string              `json:"error_message,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
}

// Outcome is the terminal state persisted for a finished job.
type Outcome struct {
	Method        string
	Pages         int
	TextChars     int
	IsValid       bool
	MissingFields int
	ErrorMessage  string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the job database with WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS extract_jobs (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	status TEXT NOT NULL,
	method TEXT,
	pages INTEGER DEFAULT 0,
	text_chars INTEGER DEFAULT 0,
	is_valid INTEGER DEFAULT 0,
	missing_fields INTEGER DEFAULT 0,
	error_message TEXT,
	started_at TEXT NOT NULL,
	finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_extract_jobs_started ON extract_jobs(started_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Start records a new job in RUNNING state.
func (s *Store) Start(ctx context.Context, id, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extract_jobs (id, path, status, started_at) VALUES (?, ?, ?, ?)`,
		id, path, string(constants.JobStatusRunning), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Finish marks a job terminal: OK when Outcome.ErrorMessage is empty,
// FAILED otherwise.
func (s *Store) Finish(ctx context.Context, id string, out Outcome) error {
	status := constants.JobStatusOK
	if out.ErrorMessage != "" {
		status = constants.JobStatusFailed
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE extract_jobs
		 SET status = ?, method = ?, pages = ?, text_chars = ?, is_valid = ?,
		     missing_fields = ?, error_message = ?, finished_at = ?
		 WHERE id = ?`,
		string(status), out.Method, out.Pages, out.TextChars, boolToInt(out.IsValid),
		out.MissingFields, nullIfEmpty(out.ErrorMessage),
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// Recent returns the most recently started jobs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, status, COALESCE(method, ''), pages, text_chars,
		        is_valid, missing_fields, COALESCE(error_message, ''),
		        started_at, COALESCE(finished_at, '')
		 FROM extract_jobs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var status, started, finished string
		var valid int
		if err := rows.Scan(&j.ID, &j.Path, &status, &j.Method, &j.Pages,
			&j.TextChars, &valid, &j.MissingFields, &j.ErrorMessage,
			&started, &finished); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Status = constants.JobStatus(status)
		j.IsValid = valid != 0
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			j.StartedAt = t
		}
		if finished != "" {
			if t, err := time.Parse(time.RFC3339, finished); err == nil {
				j.FinishedAt = &t
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
