package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pocketpod/internal/artifact"
	"pocketpod/internal/synthesis"
	"pocketpod/internal/worker/domain"
	"pocketpod/shared/redisstream"
)

// consumeLoop is the worker's single processing loop. It alternates between
// blocking group reads of new entries and, on an interval, a sweep of stale
// pending entries left behind by dead consumers.
func (w *Worker) consumeLoop(ctx context.Context) {
	defer w.wg.Done()

	w.lastReclaim = time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
		}

		w.flushRemoveBacklog(ctx)

		if w.reclaimInterval > 0 && time.Since(w.lastReclaim) >= w.reclaimInterval {
			w.reclaimStale(ctx)
			w.lastReclaim = time.Now()
		}

		entries, err := w.stream.ReadNext(ctx, w.consumer, w.readCount, w.blockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to read from stream", slog.String("error", err.Error()))

			select {
			case <-ctx.Done():
				return
			case <-w.stopChan:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, entry := range entries {
			w.handleEntry(ctx, entry)

			select {
			case <-ctx.Done():
				return
			case <-w.stopChan:
				return
			default:
			}
		}
	}
}

// handleEntry runs the pipeline for one entry and settles it on the stream
// according to the outcome
func (w *Worker) handleEntry(ctx context.Context, entry redisstream.Entry) {
	err := w.processEntry(ctx, entry)
	w.settle(ctx, entry.ID, err)
}

// settle decides the stream-side fate of an entry from its processing
// outcome. Success and terminal failures are acknowledged and removed;
// transient failures leave the entry pending so the group redelivers it.
func (w *Worker) settle(ctx context.Context, entryID string, err error) {
	if err == nil {
		w.finishEntry(ctx, entryID)
		return
	}

	if errors.Is(err, domain.ErrMalformedEvent) {
		w.logger.Warn("Dropping malformed entry", slog.String("entry_id", entryID))
		w.finishEntry(ctx, entryID)
		return
	}

	if errors.Is(err, domain.ErrJobNotFound) {
		w.logger.Warn("Dropping entry for missing job record", slog.String("entry_id", entryID))
		w.finishEntry(ctx, entryID)
		return
	}

	if isTransient(err) {
		w.logger.Warn("Leaving entry pending for redelivery",
			slog.String("entry_id", entryID),
			slog.String("error", err.Error()),
		)
		return
	}

	// Terminal failure already recorded on the job; the entry has nothing
	// left to offer.
	w.logger.Error("Job failed",
		slog.String("entry_id", entryID),
		slog.String("error", err.Error()),
	)
	w.finishEntry(ctx, entryID)
}

// finishEntry acknowledges the entry and removes it from the stream so the
// backlog only ever holds live work
func (w *Worker) finishEntry(ctx context.Context, entryID string) {
	if err := w.stream.Ack(ctx, entryID); err != nil {
		w.logger.Error("Failed to ack entry",
			slog.String("entry_id", entryID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := w.stream.Remove(ctx, entryID); err != nil {
		// Acked entries are never redelivered, so a failed delete would
		// otherwise linger in the stream forever. Queue it for another try.
		w.logger.Error("Failed to remove entry, queued for retry",
			slog.String("entry_id", entryID),
			slog.String("error", err.Error()),
		)
		w.removeBacklog = append(w.removeBacklog, entryID)
	}
}

// flushRemoveBacklog retries deletes that failed after a successful ack
func (w *Worker) flushRemoveBacklog(ctx context.Context) {
	if len(w.removeBacklog) == 0 {
		return
	}

	var remaining []string
	for _, entryID := range w.removeBacklog {
		if err := w.stream.Remove(ctx, entryID); err != nil {
			remaining = append(remaining, entryID)
		}
	}

	if len(remaining) > 0 {
		w.logger.Warn("Entries still awaiting removal", slog.Int("count", len(remaining)))
	}
	w.removeBacklog = remaining
}

// isTransient reports whether the failure is worth a redelivery: the world
// may look different next time (store hiccup, upload failure, synthesis
// backend down, shutdown mid-job)
func isTransient(err error) bool {
	var storeErr *domain.TransientStoreError
	if errors.As(err, &storeErr) {
		return true
	}

	var uploadErr *artifact.UploadError
	if errors.As(err, &uploadErr) {
		return true
	}

	var unavailableErr *synthesis.UnavailableError
	if errors.As(err, &unavailableErr) {
		return true
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
