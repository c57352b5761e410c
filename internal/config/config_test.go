package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				// Verify some key fields are populated
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "pocketpod", cfg.Database.Database)
				assert.Equal(t, "podcast:jobs", cfg.Redis.Stream)
				assert.Equal(t, "podcast-workers", cfg.Redis.Group)
				assert.Equal(t, "pocket-pod-audio", cfg.Artifact.Bucket)
				assert.Equal(t, "inline", cfg.Synthesis.Strategy)
				assert.Equal(t, 5*time.Second, cfg.Worker.BlockTimeout)
				assert.Equal(t, int64(3), cfg.Worker.MaxDeliveries)
				assert.Equal(t, "pocket-pod", cfg.App.Name)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "pocketpod",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Stream: "podcast:jobs",
			Group:  "podcast-workers",
		},
		Artifact: ArtifactConfig{
			Endpoint: "localhost:9000",
			Bucket:   "pocket-pod-audio",
		},
		Synthesis: SynthesisConfig{
			Strategy:      "inline",
			Mode:          "article",
			ModelDir:      "/opt/models/vits",
			MaxChunkChars: 1500,
		},
		Worker: WorkerConfig{
			ReadCount:       1,
			BlockTimeout:    5 * time.Second,
			MaxDeliveries:   3,
			ShutdownTimeout: 30 * time.Second,
		},
	}
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "invalid server port",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "missing redis addr",
			mutate:    func(c *Config) { c.Redis.Addr = "" },
			wantErr:   true,
			errString: "redis addr is required",
		},
		{
			name:      "missing stream",
			mutate:    func(c *Config) { c.Redis.Stream = "" },
			wantErr:   true,
			errString: "redis stream is required",
		},
		{
			name:      "missing artifact bucket",
			mutate:    func(c *Config) { c.Artifact.Bucket = "" },
			wantErr:   true,
			errString: "artifact bucket is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "missing group",
			mutate:    func(c *Config) { c.Redis.Group = "" },
			wantErr:   true,
			errString: "redis group is required",
		},
		{
			name:      "zero read count",
			mutate:    func(c *Config) { c.Worker.ReadCount = 0 },
			wantErr:   true,
			errString: "read_count must be greater than 0",
		},
		{
			name:      "zero block timeout",
			mutate:    func(c *Config) { c.Worker.BlockTimeout = 0 },
			wantErr:   true,
			errString: "block_timeout must be greater than 0",
		},
		{
			name:      "zero max deliveries",
			mutate:    func(c *Config) { c.Worker.MaxDeliveries = 0 },
			wantErr:   true,
			errString: "max_deliveries must be greater than 0",
		},
		{
			name:      "unknown synthesis strategy",
			mutate:    func(c *Config) { c.Synthesis.Strategy = "batch" },
			wantErr:   true,
			errString: "synthesis strategy",
		},
		{
			name:      "unknown synthesis mode",
			mutate:    func(c *Config) { c.Synthesis.Mode = "summary" },
			wantErr:   true,
			errString: "synthesis mode",
		},
		{
			name:      "missing model dir",
			mutate:    func(c *Config) { c.Synthesis.ModelDir = "" },
			wantErr:   true,
			errString: "model_dir is required",
		},
		{
			name:      "zero chunk size",
			mutate:    func(c *Config) { c.Synthesis.MaxChunkChars = 0 },
			wantErr:   true,
			errString: "max_chunk_chars must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
