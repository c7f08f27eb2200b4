package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scribe/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id            TEXT PRIMARY KEY,
    input         TEXT NOT NULL,
    state         TEXT NOT NULL,
    item_count    INTEGER NOT NULL DEFAULT 0,
    succeeded     INTEGER NOT NULL DEFAULT 0,
    failed        INTEGER NOT NULL DEFAULT 0,
    artifact_path TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state);
`

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the jobs database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
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

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new pending job for the given input descriptor.
func (s *Store) Create(ctx context.Context, input string) (*Job, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("job input required")
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (id, input, state, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, input, StatePending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetByID(ctx, id)
}

// MarkRunning transitions a job to running.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET state = ?, updated_at = ? WHERE id = ?`,
		StateRunning, now(), id)
}

// MarkCompleted records a finished batch and where its artifact landed. The
// item count is the sum of succeeded and failed; the scheduler guarantees
// every item ends in exactly one of the two.
func (s *Store) MarkCompleted(ctx context.Context, id string, succeeded, failed int, artifactPath string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET state = ?, item_count = ?, succeeded = ?, failed = ?, artifact_path = ?, updated_at = ? WHERE id = ?`,
		StateCompleted, succeeded+failed, succeeded, failed, artifactPath, now(), id)
}

// MarkFailed records a job that never produced a batch result.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET state = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StateFailed, strings.TrimSpace(message), now(), id)
}

// GetByID fetches a single job.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, state, item_count, succeeded, failed, artifact_path, error_message, created_at, updated_at
         FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

// List returns jobs newest first, optionally filtered by state.
func (s *Store) List(ctx context.Context, states ...State) ([]*Job, error) {
	query := `SELECT id, input, state, item_count, succeeded, failed, artifact_path, error_message, created_at, updated_at
              FROM jobs`
	args := make([]any, 0, len(states))
	if len(states) > 0 {
		placeholders := make([]string, len(states))
		for i, state := range states {
			placeholders[i] = "?"
			args = append(args, state)
		}
		query += " WHERE state IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats returns job counts keyed by state.
func (s *Store) Stats(ctx context.Context) (map[State]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[State]int)
	for rows.Next() {
		var state State
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan job stats: %w", err)
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var state string
	var createdAt, updatedAt string
	err := row.Scan(&job.ID, &job.Input, &state, &job.ItemCount, &job.Succeeded, &job.Failed,
		&job.ArtifactPath, &job.ErrorMessage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	job.State = State(state)
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		job.CreatedAt = ts
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		job.UpdatedAt = ts
	}
	return &job, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
