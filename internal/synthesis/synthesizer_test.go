package synthesis

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	calls []string
	rate  int
	err   error
}

func (f *fakeRenderer) Render(text string) ([]float32, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.calls = append(f.calls, text)
	// one sample per rendered rune keeps lengths predictable
	return make([]float32, len([]rune(text))), f.rate, nil
}

func TestInlineSynthesizer_Synthesize(t *testing.T) {
	t.Run("empty text is an input error", func(t *testing.T) {
		s := NewInlineSynthesizer(&fakeRenderer{rate: 22050}, 100)

		_, err := s.Synthesize(context.Background(), "   ")
		require.Error(t, err)

		var inputErr *InputError
		assert.True(t, errors.As(err, &inputErr))
	})

	t.Run("concatenates chunk audio", func(t *testing.T) {
		r := &fakeRenderer{rate: 22050}
		s := NewInlineSynthesizer(r, 25)

		audio, err := s.Synthesize(context.Background(), "One sentence here. Another sentence there.")
		require.NoError(t, err)

		assert.Len(t, r.calls, 2)
		assert.Equal(t, "wav", audio.Format)
		assert.Equal(t, 22050, audio.SampleRate)

		wantSamples := len([]rune(r.calls[0])) + len([]rune(r.calls[1]))
		assert.Len(t, audio.Data, 44+wantSamples*2)
	})

	t.Run("engine errors propagate", func(t *testing.T) {
		engineErr := &UnavailableError{Err: errors.New("model crashed")}
		s := NewInlineSynthesizer(&fakeRenderer{err: engineErr}, 100)

		_, err := s.Synthesize(context.Background(), "Hello.")
		require.Error(t, err)

		var unavailable *UnavailableError
		assert.True(t, errors.As(err, &unavailable))
	})

	t.Run("canceled context stops between chunks", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := NewInlineSynthesizer(&fakeRenderer{rate: 22050}, 100)

		_, err := s.Synthesize(ctx, "Hello.")
		require.Error(t, err)

		var unavailable *UnavailableError
		assert.True(t, errors.As(err, &unavailable))
	})
}

type fakeUploader struct {
	key         string
	contentType string
	size        int64
	err         error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	f.contentType = contentType
	f.size = size
	return nil
}

func TestTaskSynthesizer_SynthesizeToKey(t *testing.T) {
	t.Run("uploads under the prefix and returns the key", func(t *testing.T) {
		store := &fakeUploader{}
		s := NewTaskSynthesizer(&fakeRenderer{rate: 22050}, 100, store)

		key, err := s.SynthesizeToKey(context.Background(), "Hello there.", "u1/j1")
		require.NoError(t, err)

		assert.Equal(t, "u1/j1.wav", key)
		assert.Equal(t, key, store.key)
		assert.Equal(t, "audio/wav", store.contentType)
		assert.Positive(t, store.size)
	})

	t.Run("upload failures propagate", func(t *testing.T) {
		store := &fakeUploader{err: errors.New("connection reset")}
		s := NewTaskSynthesizer(&fakeRenderer{rate: 22050}, 100, store)

		_, err := s.SynthesizeToKey(context.Background(), "Hello there.", "u1/j1")
		require.Error(t, err)
	})
}
