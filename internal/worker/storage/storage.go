package storage

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"pocketpod/internal/worker/domain"
)

// Storage is the worker's record-store adapter. Updates are keyed by
// (user_id, id) and unconditional; exactly one worker processes a given job
// at a time, so last-writer-wins is sufficient.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// MarkProcessing records that the job is in flight. This write must land
// before any external side effect so observers can distinguish queued from
// running.
func (s *Storage) MarkProcessing(ctx context.Context, userID, jobID string) error {
	query := `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE user_id = $2 AND id = $3
	`

	return s.update(ctx, "mark processing", query, domain.JobStatusProcessing, userID, jobID)
}

// MarkCompleted is the final write of a successful pipeline run. Title and
// audio key land in the same statement as the status so no observer can see
// a completed job without its artifact key.
func (s *Storage) MarkCompleted(ctx context.Context, userID, jobID, title, audioKey string) error {
	query := `
		UPDATE jobs
		SET status = $1, title = $2, audio_key = $3, error_message = NULL, updated_at = NOW()
		WHERE user_id = $4 AND id = $5
	`

	return s.update(ctx, "mark completed", query, domain.JobStatusCompleted, title, audioKey, userID, jobID)
}

// MarkFailed records a terminal failure with its reason
func (s *Storage) MarkFailed(ctx context.Context, userID, jobID, reason string) error {
	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE user_id = $3 AND id = $4
	`

	return s.update(ctx, "mark failed", query, domain.JobStatusFailed, reason, userID, jobID)
}

func (s *Storage) update(ctx context.Context, op, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &domain.TransientStoreError{Op: op, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &domain.TransientStoreError{Op: op, Err: err}
	}

	if rows == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}
