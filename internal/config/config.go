package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Artifact  ArtifactConfig  `yaml:"artifact"`
	Browser   BrowserConfig   `yaml:"browser"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Worker    WorkerConfig    `yaml:"worker"`
	Logging   LoggingConfig   `yaml:"logging"`
	App       AppConfig       `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RedisConfig holds Redis connection and stream configuration
type RedisConfig struct {
	Addr             string        `yaml:"addr"`
	Password         string        `yaml:"password"`
	DB               int           `yaml:"db"`
	Stream           string        `yaml:"stream"`
	Group            string        `yaml:"group"`
	DeadLetterStream string        `yaml:"dead_letter_stream"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
}

// ArtifactConfig holds object-store connection configuration
type ArtifactConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	Bucket        string        `yaml:"bucket"`
	UseSSL        bool          `yaml:"use_ssl"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// BrowserConfig holds headless-browser rendering configuration
type BrowserConfig struct {
	BinaryPath string        `yaml:"binary_path"`
	Stealth    bool          `yaml:"stealth"`
	Proxy      string        `yaml:"proxy"`
	NavTimeout time.Duration `yaml:"nav_timeout"`
}

// SynthesisConfig holds speech-synthesis configuration
type SynthesisConfig struct {
	Strategy      string  `yaml:"strategy"` // inline, task
	Mode          string  `yaml:"mode"`     // article, title
	ModelDir      string  `yaml:"model_dir"`
	SpeakerID     int     `yaml:"speaker_id"`
	Speed         float32 `yaml:"speed"`
	MaxChunkChars int     `yaml:"max_chunk_chars"`
	NumThreads    int     `yaml:"num_threads"`
}

// WorkerConfig holds worker service configuration
type WorkerConfig struct {
	ReadCount       int64         `yaml:"read_count"`
	BlockTimeout    time.Duration `yaml:"block_timeout"`
	ReclaimInterval time.Duration `yaml:"reclaim_interval"`
	ReclaimMinIdle  time.Duration `yaml:"reclaim_min_idle"`
	MaxDeliveries   int64         `yaml:"max_deliveries"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// validateShared checks the sections both services depend on
func (c *Config) validateShared() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}

	if c.Redis.Stream == "" {
		return fmt.Errorf("redis stream is required")
	}

	if c.Artifact.Endpoint == "" {
		return fmt.Errorf("artifact endpoint is required")
	}

	if c.Artifact.Bucket == "" {
		return fmt.Errorf("artifact bucket is required")
	}

	return nil
}

// ValidateAPIConfig checks the configuration for the API service
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	return c.validateShared()
}

// ValidateWorkerConfig checks the configuration for the worker service
func (c *Config) ValidateWorkerConfig() error {
	if err := c.validateShared(); err != nil {
		return err
	}

	if c.Redis.Group == "" {
		return fmt.Errorf("redis group is required")
	}

	if c.Worker.ReadCount <= 0 {
		return fmt.Errorf("worker read_count must be greater than 0")
	}

	if c.Worker.BlockTimeout <= 0 {
		return fmt.Errorf("worker block_timeout must be greater than 0")
	}

	if c.Worker.MaxDeliveries <= 0 {
		return fmt.Errorf("worker max_deliveries must be greater than 0")
	}

	if c.Worker.ShutdownTimeout <= 0 {
		return fmt.Errorf("worker shutdown_timeout must be greater than 0")
	}

	switch c.Synthesis.Strategy {
	case "inline", "task":
	default:
		return fmt.Errorf("synthesis strategy must be \"inline\" or \"task\", got %q", c.Synthesis.Strategy)
	}

	switch c.Synthesis.Mode {
	case "article", "title":
	default:
		return fmt.Errorf("synthesis mode must be \"article\" or \"title\", got %q", c.Synthesis.Mode)
	}

	if c.Synthesis.ModelDir == "" {
		return fmt.Errorf("synthesis model_dir is required")
	}

	if c.Synthesis.MaxChunkChars <= 0 {
		return fmt.Errorf("synthesis max_chunk_chars must be greater than 0")
	}

	return nil
}
