package synthesis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// Audio is a synthesized speech payload ready for upload
type Audio struct {
	Data       []byte
	Format     string // file extension: wav, mp3
	SampleRate int
}

// ContentType returns the MIME type for the payload
func (a *Audio) ContentType() string {
	switch a.Format {
	case "mp3":
		return "audio/mpeg"
	default:
		return "audio/wav"
	}
}

// InputError indicates the text was rejected (empty, unsupported) and
// retrying will not help
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "synthesis rejected input: " + e.Reason
}

// UnavailableError indicates a transient engine failure; the job may be
// retried
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return "synthesis unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// renderer produces raw samples for one bounded chunk of text
type renderer interface {
	Render(text string) ([]float32, int, error)
}

// Synthesizer converts text into a single audio payload
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// InlineSynthesizer renders text chunk by chunk and returns the
// concatenated audio to the caller, who is responsible for uploading it.
// Chunks are split on sentence boundaries so no synthesis unit ever starts
// mid-sentence.
type InlineSynthesizer struct {
	engine        renderer
	maxChunkChars int
}

// NewInlineSynthesizer creates an inline synthesizer over the given engine
func NewInlineSynthesizer(engine renderer, maxChunkChars int) *InlineSynthesizer {
	return &InlineSynthesizer{
		engine:        engine,
		maxChunkChars: maxChunkChars,
	}
}

// Synthesize converts text to one WAV payload
func (s *InlineSynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	chunks := ChunkText(text, s.maxChunkChars)
	if len(chunks) == 0 {
		return nil, &InputError{Reason: "empty text"}
	}

	var samples []float32
	sampleRate := 0

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, &UnavailableError{Err: err}
		}

		chunkSamples, rate, err := s.engine.Render(chunk)
		if err != nil {
			return nil, err
		}

		if sampleRate == 0 {
			sampleRate = rate
		} else if rate != sampleRate {
			return nil, &UnavailableError{Err: fmt.Errorf("engine changed sample rate mid-job: %d != %d", rate, sampleRate)}
		}

		samples = append(samples, chunkSamples...)
	}

	if len(samples) == 0 {
		return nil, &InputError{Reason: "no audio produced"}
	}

	return &Audio{
		Data:       EncodeWAV(samples, sampleRate),
		Format:     "wav",
		SampleRate: sampleRate,
	}, nil
}

// artifactUploader is the slice of the object store the task synthesizer
// needs
type artifactUploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// TaskSynthesizer renders text and writes the resulting audio straight to
// the artifact store under a key of its own choosing, returning that key.
// Useful when the caller should not hold the payload in memory.
type TaskSynthesizer struct {
	inline *InlineSynthesizer
	store  artifactUploader
}

// NewTaskSynthesizer creates a task synthesizer over the given engine and
// store
func NewTaskSynthesizer(engine renderer, maxChunkChars int, store artifactUploader) *TaskSynthesizer {
	return &TaskSynthesizer{
		inline: NewInlineSynthesizer(engine, maxChunkChars),
		store:  store,
	}
}

// SynthesizeToKey converts text to audio and uploads it under keyPrefix,
// returning the chosen object key
func (s *TaskSynthesizer) SynthesizeToKey(ctx context.Context, text, keyPrefix string) (string, error) {
	audio, err := s.inline.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	key := strings.TrimSuffix(keyPrefix, "/") + "." + audio.Format
	if err := s.store.Upload(ctx, key, bytes.NewReader(audio.Data), int64(len(audio.Data)), audio.ContentType()); err != nil {
		return "", err
	}

	return key, nil
}
