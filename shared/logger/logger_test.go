package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantDebugOn bool
		wantErrorOn bool
	}{
		{
			name: "json format with debug level",
			config: &Config{
				Level:  "debug",
				Format: "json",
				Output: "stdout",
			},
			wantDebugOn: true,
			wantErrorOn: true,
		},
		{
			name: "console format with info level",
			config: &Config{
				Level:  "info",
				Format: "console",
				Output: "stdout",
			},
			wantDebugOn: false,
			wantErrorOn: true,
		},
		{
			name: "error level suppresses warn",
			config: &Config{
				Level:  "error",
				Format: "json",
				Output: "stderr",
			},
			wantDebugOn: false,
			wantErrorOn: true,
		},
		{
			name: "unknown level defaults to info",
			config: &Config{
				Level:  "verbose",
				Format: "json",
			},
			wantDebugOn: false,
			wantErrorOn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, log)

			ctx := context.Background()
			assert.Equal(t, tt.wantDebugOn, log.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantErrorOn, log.Enabled(ctx, slog.LevelError))
		})
	}
}

func TestNewDefault(t *testing.T) {
	log := NewDefault()
	require.NotNil(t, log)

	ctx := context.Background()
	assert.True(t, log.Enabled(ctx, slog.LevelInfo))
	assert.False(t, log.Enabled(ctx, slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestWith(t *testing.T) {
	log := NewDefault()
	child := log.With("service", "worker")

	require.NotNil(t, child)
	assert.NotSame(t, log, child)
}
