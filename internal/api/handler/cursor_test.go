package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketpod/internal/api/storage"
)

func TestJobCursorRoundTrip(t *testing.T) {
	cursor := &storage.JobCursor{
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC),
		JobID:     "b7a9c1e2-0d4f-4c3a-9e8b-1f2a3c4d5e6f",
	}

	encoded, err := EncodeJobCursor(cursor)
	require.NoError(t, err)

	decoded, err := DecodeJobCursor(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.CreatedAt.Equal(cursor.CreatedAt))
	assert.Equal(t, cursor.JobID, decoded.JobID)
}

func TestDecodeJobCursor(t *testing.T) {
	tests := []struct {
		name      string
		cursorStr string
		wantErr   bool
		wantNil   bool
	}{
		{
			name:      "empty cursor means first page",
			cursorStr: "",
			wantNil:   true,
		},
		{
			name:      "not base64",
			cursorStr: "%%%",
			wantErr:   true,
		},
		{
			name:      "missing separator",
			cursorStr: "bm90LWEtY3Vyc29y", // "not-a-cursor"
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := DecodeJobCursor(tt.cursorStr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, cursor)
			}
		})
	}
}
