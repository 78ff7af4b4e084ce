package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the outcome of an episode or stage.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StageRecord is the outcome of one stage within an episode run.
type StageRecord struct {
	Stage    string
	Status   Status
	Duration time.Duration
	Error    string
}

// Run is one processed episode.
type Run struct {
	ID           int64
	RunID        string
	Episode      int
	Status       Status
	FailedStage  string
	ErrorKind    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	Stages       []StageRecord
}

// Elapsed is the wall-clock time the run took.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Filter narrows List results.
type Filter struct {
	// Episode restricts results to one episode when positive.
	Episode int
	// Limit caps the number of runs; zero means 20.
	Limit int
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores run and its stage records in one transaction and returns
// the new row id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO episode_runs (
            run_id, episode, status, failed_stage, error_kind, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Episode,
		string(run.Status),
		nullableString(run.FailedStage),
		nullableString(run.ErrorKind),
		nullableString(run.ErrorMessage),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert episode run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for i, stage := range run.Stages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stage_runs (episode_run_id, position, stage, status, duration_ms, error_message)
             VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, stage.Stage, string(stage.Status), stage.Duration.Milliseconds(), nullableString(stage.Error),
		); err != nil {
			return 0, fmt.Errorf("insert stage run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record: %w", err)
	}
	return id, nil
}

// List returns runs newest first, each with its stage records.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, run_id, episode, status, failed_stage, error_kind, error_message, started_at, finished_at
        FROM episode_runs`
	args := []any{}
	if filter.Episode > 0 {
		query += " WHERE episode = ?"
		args = append(args, filter.Episode)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                                  Run
			status                               string
			failedStage, errorKind, errorMessage sql.NullString
			startedAt, finishedAt                string
		)
		if err := rows.Scan(&run.ID, &run.RunID, &run.Episode, &status, &failedStage, &errorKind, &errorMessage, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = Status(status)
		run.FailedStage = failedStage.String
		run.ErrorKind = errorKind.String
		run.ErrorMessage = errorMessage.String
		run.StartedAt = parseTime(startedAt)
		run.FinishedAt = parseTime(finishedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		stages, err := s.stages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = stages
	}
	return runs, nil
}

func (s *Store) stages(ctx context.Context, runID int64) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, status, duration_ms, error_message FROM stage_runs
         WHERE episode_run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var (
			record   StageRecord
			status   string
			duration int64
			message  sql.NullString
		)
		if err := rows.Scan(&record.Stage, &status, &duration, &message); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		record.Status = Status(status)
		record.Duration = time.Duration(duration) * time.Millisecond
		record.Error = message.String
		stages = append(stages, record)
	}
	return stages, rows.Err()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
