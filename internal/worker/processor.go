package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"pocketpod/internal/worker/domain"
	"pocketpod/shared/redisstream"
)

// processEntry runs one job through the pipeline:
// decode -> mark processing -> extract -> synthesize -> upload -> mark
// completed. The processing write lands before any external side effect,
// and a completed job always carries its title and audio key together.
func (w *Worker) processEntry(ctx context.Context, entry redisstream.Entry) error {
	event, err := domain.EventFromValues(entry.Values)
	if err != nil {
		return err
	}

	log := w.logger.With(
		slog.String("job_id", event.ID),
		slog.String("user_id", event.UserID),
		slog.String("url", event.URL),
	)
	log.Info("Processing job")

	if err := w.records.MarkProcessing(ctx, event.UserID, event.ID); err != nil {
		return err
	}

	article, err := w.extractor.Extract(ctx, event.URL)
	if err != nil {
		// Fetch and extraction failures are terminal for the job. Only a
		// shutdown mid-fetch leaves the entry for redelivery, and that is
		// keyed on our own context, not on sentinels the fetch error may
		// happen to wrap.
		if ctx.Err() != nil {
			return err
		}
		return w.failJob(ctx, event, fmt.Errorf("extract article: %w", err))
	}

	text := article.Title + "\n\n" + article.Body
	if w.titleOnly {
		text = article.Title
	}

	audioKey, err := w.synthesize(ctx, event, text)
	if err != nil {
		if isTransient(err) {
			return err
		}
		return w.failJob(ctx, event, fmt.Errorf("synthesize audio: %w", err))
	}

	if err := w.records.MarkCompleted(ctx, event.UserID, event.ID, article.Title, audioKey); err != nil {
		return err
	}

	log.Info("Job completed", slog.String("audio_key", audioKey))
	return nil
}

// synthesize produces the audio artifact for the job and returns its storage
// key. The task strategy uploads from inside the synthesizer; the inline
// strategy hands the payload back for the worker to upload.
func (w *Worker) synthesize(ctx context.Context, event *domain.JobEvent, text string) (string, error) {
	keyPrefix := event.UserID + "/" + event.ID

	if w.taskSynth != nil {
		return w.taskSynth.SynthesizeToKey(ctx, text, keyPrefix)
	}

	audio, err := w.synth.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	key := keyPrefix + "." + audio.Format
	reader := bytes.NewReader(audio.Data)
	if err := w.artifacts.Upload(ctx, key, reader, int64(len(audio.Data)), audio.ContentType()); err != nil {
		return "", err
	}

	return key, nil
}

// failJob records a terminal failure on the job. If the failure write itself
// cannot land, that error takes precedence so the entry is settled by the
// store outcome rather than the pipeline one.
func (w *Worker) failJob(ctx context.Context, event *domain.JobEvent, cause error) error {
	if err := w.records.MarkFailed(ctx, event.UserID, event.ID, cause.Error()); err != nil {
		return err
	}

	return cause
}
