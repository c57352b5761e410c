package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Hello</title></head>
<body>
<article>
<h1>Hello</h1>
<p>World. This paragraph carries enough text that readability treats it as
the primary content of the page rather than boilerplate to be stripped.</p>
<p>A second paragraph keeps the scoring heuristics comfortable.</p>
</article>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		url        string
		wantTitle  string
		wantInBody string
		wantErr    bool
	}{
		{
			name:       "simple article",
			html:       articlePage,
			url:        "https://example.com/a",
			wantTitle:  "Hello",
			wantInBody: "World",
		},
		{
			name:    "empty page",
			html:    "<html><head></head><body></body></html>",
			url:     "https://example.com/empty",
			wantErr: true,
		},
		{
			name:    "title but no body",
			html:    "<html><head><title>Only a title</title></head><body></body></html>",
			url:     "https://example.com/bare",
			wantErr: true,
		},
		{
			name:    "invalid url",
			html:    articlePage,
			url:     "://not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := FromHTML(tt.html, tt.url)

			if tt.wantErr {
				require.Error(t, err)

				var extractErr *ExtractionError
				assert.True(t, errors.As(err, &extractErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, article.Title)
			assert.Contains(t, article.Body, tt.wantInBody)
		})
	}
}

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	return s.html, s.err
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("propagates fetch errors", func(t *testing.T) {
		fetchErr := &FetchError{URL: "https://example.com/x", Err: errors.New("navigation timeout")}
		e := NewExtractor(&stubFetcher{err: fetchErr})

		_, err := e.Extract(context.Background(), "https://example.com/x")
		require.Error(t, err)

		var fe *FetchError
		assert.True(t, errors.As(err, &fe))
	})

	t.Run("extracts from fetched markup", func(t *testing.T) {
		e := NewExtractor(&stubFetcher{html: articlePage})

		article, err := e.Extract(context.Background(), "https://example.com/a")
		require.NoError(t, err)
		assert.Equal(t, "Hello", article.Title)
		assert.Contains(t, article.Body, "World")
	})
}
