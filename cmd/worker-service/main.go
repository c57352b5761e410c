package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"pocketpod/internal/artifact"
	"pocketpod/internal/config"
	"pocketpod/internal/extract"
	"pocketpod/internal/synthesis"
	"pocketpod/internal/worker"
	"pocketpod/internal/worker/storage"
	"pocketpod/shared/logger"
	"pocketpod/shared/postgresql"
	"pocketpod/shared/redisstream"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	// Initialize Redis stream client
	streamClient, err := initRedisStream(&cfg.Redis, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	appLogger.Info("Redis connection established")

	// Initialize artifact store and make sure the bucket exists
	artifactStore, err := artifact.NewStore(&artifact.Config{
		Endpoint:      cfg.Artifact.Endpoint,
		AccessKey:     cfg.Artifact.AccessKey,
		SecretKey:     cfg.Artifact.SecretKey,
		Bucket:        cfg.Artifact.Bucket,
		UseSSL:        cfg.Artifact.UseSSL,
		PresignExpiry: cfg.Artifact.PresignExpiry,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	bucketCtx, bucketCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = artifactStore.EnsureBucket(bucketCtx)
	bucketCancel()
	if err != nil {
		return fmt.Errorf("failed to ensure artifact bucket: %w", err)
	}

	// Browser-backed article extractor. The browser starts lazily on the
	// first job.
	fetcher := extract.NewFetcher(extract.FetcherOptions{
		BinaryPath: cfg.Browser.BinaryPath,
		Stealth:    cfg.Browser.Stealth,
		Proxy:      cfg.Browser.Proxy,
		NavTimeout: cfg.Browser.NavTimeout,
	})
	extractor := extract.NewExtractor(fetcher)

	// Speech synthesis engine and strategy
	engine, err := synthesis.NewEngine(synthesis.EngineConfig{
		ModelDir:   cfg.Synthesis.ModelDir,
		SpeakerID:  cfg.Synthesis.SpeakerID,
		Speed:      cfg.Synthesis.Speed,
		NumThreads: cfg.Synthesis.NumThreads,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize synthesis engine: %w", err)
	}

	workerConfig := &worker.Config{
		Logger:          appLogger.Logger,
		Stream:          streamClient,
		Records:         storage.NewStorage(dbClient.GetDB(), appLogger.Logger),
		Extractor:       extractor,
		Artifacts:       artifactStore,
		Consumer:        consumerName(),
		ReadCount:       cfg.Worker.ReadCount,
		BlockTimeout:    cfg.Worker.BlockTimeout,
		ReclaimInterval: cfg.Worker.ReclaimInterval,
		ReclaimMinIdle:  cfg.Worker.ReclaimMinIdle,
		MaxDeliveries:   cfg.Worker.MaxDeliveries,
		TitleOnly:       cfg.Synthesis.Mode == "title",
	}

	switch cfg.Synthesis.Strategy {
	case "task":
		workerConfig.TaskSynthesizer = synthesis.NewTaskSynthesizer(engine, cfg.Synthesis.MaxChunkChars, artifactStore)
	default:
		workerConfig.Synthesizer = synthesis.NewInlineSynthesizer(engine, cfg.Synthesis.MaxChunkChars)
	}

	workerInstance := worker.NewWorker(workerConfig)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	// Cancel context to stop worker
	cancel()

	// Give worker time to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Stop worker
	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	// Cleanup function to close all resources
	cleanup := func() {
		if err := fetcher.Close(); err != nil {
			appLogger.Error("Failed to close browser", slog.Any("error", err))
		}
		if err := engine.Close(); err != nil {
			appLogger.Error("Failed to close synthesis engine", slog.Any("error", err))
		}
		if streamClient != nil {
			streamClient.Close()
		}
		if dbClient != nil {
			dbClient.Close()
		}
	}
	cleanup()

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// consumerName derives a stable-enough consumer name for this process.
// Uniqueness matters more than stability; a crashed consumer's pending
// entries are recovered by the reclaim sweep, not by name reuse.
func consumerName() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}
	return hostname + "-" + uuid.New().String()[:8]
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRedisStream initializes the Redis stream client
func initRedisStream(cfg *config.RedisConfig, logger *slog.Logger) (*redisstream.Client, error) {
	streamConfig := &redisstream.Config{
		Addr:             cfg.Addr,
		Password:         cfg.Password,
		DB:               cfg.DB,
		Stream:           cfg.Stream,
		Group:            cfg.Group,
		DeadLetterStream: cfg.DeadLetterStream,
		ConnectTimeout:   cfg.ConnectTimeout,
	}

	return redisstream.NewClient(streamConfig, logger)
}
