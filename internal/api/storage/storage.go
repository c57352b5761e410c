package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pocketpod/internal/api/domain"
	"pocketpod/internal/api/model"
	"pocketpod/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			user_id, id, url, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.UserID,
		job.ID,
		job.URL,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJob fetches one job scoped to its owner. A user can never read another
// user's job through this path.
func (s *Storage) GetJob(ctx context.Context, userID, jobID string) (*model.Job, error) {
	var job model.Job
	query := `
		SELECT
			user_id, id, url, title, status,
			audio_key, error_message, created_at, updated_at
		FROM jobs
		WHERE user_id = $1 AND id = $2
	`

	err := s.db.GetContext(ctx, &job, query, userID, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

type JobFilter struct {
	UserID   string
	Status   string
	PageSize int
	Cursor   *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListJobs returns the user's jobs newest first, with keyset pagination on
// (created_at, id). One extra row beyond PageSize is fetched so the caller
// can tell whether a next page exists.
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `
        SELECT
            user_id, id, url, title, status,
            audio_key, error_message, created_at, updated_at
        FROM jobs
        WHERE user_id = $1
    `
	args := []interface{}{filter.UserID}
	argIdx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.Job
	err := s.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// DeleteJob removes the job record and returns its audio key, if any, so
// the caller can delete the artifact as well
func (s *Storage) DeleteJob(ctx context.Context, userID, jobID string) (string, error) {
	var audioKey sql.NullString
	query := `
		DELETE FROM jobs
		WHERE user_id = $1 AND id = $2
		RETURNING audio_key
	`

	err := s.db.QueryRowContext(ctx, query, userID, jobID).Scan(&audioKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrJobNotFound
		}
		return "", fmt.Errorf("failed to delete job: %w", err)
	}

	return audioKey.String, nil
}
