package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"pocketpod/internal/extract"
	"pocketpod/internal/synthesis"
	"pocketpod/shared/redisstream"
)

// StreamClient is the slice of the stream adapter the worker drives
type StreamClient interface {
	EnsureGroup(ctx context.Context) error
	ReadNext(ctx context.Context, consumer string, count int64, block time.Duration) ([]redisstream.Entry, error)
	Ack(ctx context.Context, entryID string) error
	Remove(ctx context.Context, entryID string) error
	Pending(ctx context.Context, minIdle time.Duration, count int64) ([]redisstream.PendingEntry, error)
	Claim(ctx context.Context, consumer string, minIdle time.Duration, entryIDs []string) ([]redisstream.Entry, error)
	AddDeadLetter(ctx context.Context, values map[string]any) (string, error)
}

// RecordStore owns the job record's status transitions
type RecordStore interface {
	MarkProcessing(ctx context.Context, userID, jobID string) error
	MarkCompleted(ctx context.Context, userID, jobID, title, audioKey string) error
	MarkFailed(ctx context.Context, userID, jobID, reason string) error
}

// Extractor reduces an article URL to clean title and body text
type Extractor interface {
	Extract(ctx context.Context, url string) (*extract.Article, error)
}

// ArtifactStore uploads synthesized audio
type ArtifactStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// TaskSynthesizer writes audio to the artifact store itself and returns the
// key it chose
type TaskSynthesizer interface {
	SynthesizeToKey(ctx context.Context, text, keyPrefix string) (string, error)
}

// Config holds worker configuration
type Config struct {
	Logger  *slog.Logger
	Stream  StreamClient
	Records RecordStore

	Extractor Extractor
	Artifacts ArtifactStore

	// Exactly one synthesis strategy is set. With Synthesizer the worker
	// uploads the returned payload; with TaskSynthesizer the synthesizer
	// uploads it and the worker only records the key.
	Synthesizer     synthesis.Synthesizer
	TaskSynthesizer TaskSynthesizer

	Consumer        string
	ReadCount       int64
	BlockTimeout    time.Duration
	ReclaimInterval time.Duration
	ReclaimMinIdle  time.Duration
	MaxDeliveries   int64
	TitleOnly       bool
}

// Worker runs the podcast pipeline: one consumer loop that drains the job
// stream, drives each job through extract, synthesize and upload, and
// advances the job record at every step. Entries are processed one at a
// time; horizontal scale comes from running more worker processes under
// the same consumer group.
type Worker struct {
	logger  *slog.Logger
	stream  StreamClient
	records RecordStore

	extractor Extractor
	artifacts ArtifactStore
	synth     synthesis.Synthesizer
	taskSynth TaskSynthesizer

	consumer        string
	readCount       int64
	blockTimeout    time.Duration
	reclaimInterval time.Duration
	reclaimMinIdle  time.Duration
	maxDeliveries   int64
	titleOnly       bool

	lastReclaim   time.Time
	removeBacklog []string
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 1
	}

	return &Worker{
		logger:          cfg.Logger,
		stream:          cfg.Stream,
		records:         cfg.Records,
		extractor:       cfg.Extractor,
		artifacts:       cfg.Artifacts,
		synth:           cfg.Synthesizer,
		taskSynth:       cfg.TaskSynthesizer,
		consumer:        cfg.Consumer,
		readCount:       readCount,
		blockTimeout:    cfg.BlockTimeout,
		reclaimInterval: cfg.ReclaimInterval,
		reclaimMinIdle:  cfg.ReclaimMinIdle,
		maxDeliveries:   cfg.MaxDeliveries,
		titleOnly:       cfg.TitleOnly,
		stopChan:        make(chan struct{}),
	}
}

// Start creates the consumer group and runs the consume loop until the
// context is canceled or Stop is called
func (w *Worker) Start(ctx context.Context) error {
	if err := w.stream.EnsureGroup(ctx); err != nil {
		return err
	}

	w.logger.Info("Starting worker",
		slog.String("consumer", w.consumer),
		slog.Int64("read_count", w.readCount),
		slog.Duration("block_timeout", w.blockTimeout),
	)

	w.wg.Add(1)
	go w.consumeLoop(ctx)

	select {
	case <-ctx.Done():
		w.logger.Info("Worker context canceled, stopping...")
	case <-w.stopChan:
	}

	w.wg.Wait()
	return nil
}

// Stop gracefully stops the worker, waiting for the in-flight entry to
// finish
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")

	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}

	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
