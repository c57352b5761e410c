package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{
			name:     "empty text",
			text:     "   \n\n  ",
			maxChars: 100,
			want:     nil,
		},
		{
			name:     "short text stays whole",
			text:     "Hello world.",
			maxChars: 100,
			want:     []string{"Hello world."},
		},
		{
			name:     "paragraphs packed into one chunk",
			text:     "First paragraph.\n\nSecond paragraph.",
			maxChars: 100,
			want:     []string{"First paragraph. Second paragraph."},
		},
		{
			name:     "paragraphs split across chunks",
			text:     "First paragraph here.\n\nSecond paragraph here.",
			maxChars: 25,
			want:     []string{"First paragraph here.", "Second paragraph here."},
		},
		{
			name:     "long paragraph split on sentences",
			text:     "One sentence here. Another sentence there. A third one too.",
			maxChars: 25,
			want:     []string{"One sentence here.", "Another sentence there.", "A third one too."},
		},
		{
			name:     "oversized sentence emitted whole",
			text:     "This single sentence is much longer than the limit allows.",
			maxChars: 10,
			want:     []string{"This single sentence is much longer than the limit allows."},
		},
		{
			name:     "abbreviation dots do not split",
			text:     "Prices rose by approx.4% today. Markets reacted calmly.",
			maxChars: 40,
			want:     []string{"Prices rose by approx.4% today.", "Markets reacted calmly."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.text, tt.maxChars)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunkText_NeverSplitsSentences(t *testing.T) {
	text := strings.Repeat("A fairly ordinary sentence about nothing much. ", 50)

	chunks := ChunkText(text, 200)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 200)
		assert.True(t, strings.HasSuffix(chunk, "."), "chunk should end at a sentence boundary: %q", chunk)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Is it done? It is! Good. Trailing words without a period")
	assert.Equal(t, []string{
		"Is it done?",
		"It is!",
		"Good.",
		"Trailing words without a period",
	}, got)
}
