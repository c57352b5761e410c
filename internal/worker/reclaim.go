package worker

import (
	"context"
	"log/slog"

	"pocketpod/internal/worker/domain"
	"pocketpod/shared/redisstream"
)

const reclaimBatchSize = 32

// reclaimStale sweeps the group's pending list for entries whose consumer
// went quiet. Entries under the delivery cap are claimed and retried here;
// entries at or over the cap are failed and forwarded to the dead-letter
// stream so nothing circulates forever.
func (w *Worker) reclaimStale(ctx context.Context) {
	pending, err := w.stream.Pending(ctx, w.reclaimMinIdle, reclaimBatchSize)
	if err != nil {
		w.logger.Error("Failed to inspect pending entries", slog.String("error", err.Error()))
		return
	}
	if len(pending) == 0 {
		return
	}

	var retry, dead []string
	meta := make(map[string]redisstream.PendingEntry, len(pending))
	for _, p := range pending {
		meta[p.ID] = p
		if w.maxDeliveries > 0 && p.Deliveries >= w.maxDeliveries {
			dead = append(dead, p.ID)
		} else {
			retry = append(retry, p.ID)
		}
	}

	w.logger.Info("Reclaiming stale entries",
		slog.Int("retry", len(retry)),
		slog.Int("dead", len(dead)),
	)

	if len(dead) > 0 {
		w.deadLetter(ctx, dead, meta)
	}

	if len(retry) > 0 {
		entries, err := w.stream.Claim(ctx, w.consumer, w.reclaimMinIdle, retry)
		if err != nil {
			w.logger.Error("Failed to claim stale entries", slog.String("error", err.Error()))
			return
		}

		for _, entry := range entries {
			w.handleEntry(ctx, entry)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// deadLetter takes ownership of exhausted entries, marks their jobs failed
// and forwards them to the dead-letter stream before settling them. A job
// whose entry dies always still reaches a terminal status.
func (w *Worker) deadLetter(ctx context.Context, entryIDs []string, meta map[string]redisstream.PendingEntry) {
	entries, err := w.stream.Claim(ctx, w.consumer, w.reclaimMinIdle, entryIDs)
	if err != nil {
		w.logger.Error("Failed to claim exhausted entries", slog.String("error", err.Error()))
		return
	}

	for _, entry := range entries {
		w.deadLetterEntry(ctx, entry, meta[entry.ID])
	}
}

func (w *Worker) deadLetterEntry(ctx context.Context, entry redisstream.Entry, info redisstream.PendingEntry) {
	event, err := domain.EventFromValues(entry.Values)
	if err != nil {
		// Malformed and exhausted; nothing to record, just drop it.
		w.logger.Warn("Dropping malformed exhausted entry", slog.String("entry_id", entry.ID))
		w.finishEntry(ctx, entry.ID)
		return
	}

	log := w.logger.With(
		slog.String("entry_id", entry.ID),
		slog.String("job_id", event.ID),
		slog.String("user_id", event.UserID),
	)

	if err := w.records.MarkFailed(ctx, event.UserID, event.ID, domain.ErrMaxDeliveries.Error()); err != nil {
		if isTransient(err) {
			// Keep the entry pending; the next sweep tries again.
			log.Error("Failed to record dead-lettered job", slog.String("error", err.Error()))
			return
		}
		log.Warn("Job record already gone", slog.String("error", err.Error()))
	}

	values := event.Values()
	values["deliveries"] = info.Deliveries
	values["lastConsumer"] = info.Consumer

	if _, err := w.stream.AddDeadLetter(ctx, values); err != nil {
		log.Error("Failed to forward entry to dead-letter stream", slog.String("error", err.Error()))
		return
	}

	log.Warn("Entry moved to dead-letter stream")
	w.finishEntry(ctx, entry.ID)
}
