package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds object-store connection configuration
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// UploadError indicates the store rejected an upload after the client's own
// retry policy was exhausted
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Store is an S3-compatible object store adapter for audio artifacts
type Store struct {
	client *minio.Client
	config *Config
	logger *slog.Logger
}

// NewStore creates a new artifact store client
func NewStore(config *Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	logger.Info("Object store client initialized",
		slog.String("endpoint", config.Endpoint),
		slog.String("bucket", config.Bucket),
	)

	return &Store{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// EnsureBucket creates the artifact bucket if it does not exist
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.config.Bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.config.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.config.Bucket, err)
	}

	s.logger.Info("Created artifact bucket",
		slog.String("bucket", s.config.Bucket),
	)

	return nil
}

// Upload streams content to the store under key. The payload is not
// buffered here; the reader is handed to the client as-is.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.config.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return &UploadError{Key: key, Err: err}
	}

	s.logger.Debug("Artifact uploaded",
		slog.String("key", key),
		slog.Int64("size", size),
	)

	return nil
}

// PresignedURL returns a time-limited GET URL for the given key and the
// moment it expires
func (s *Store) PresignedURL(ctx context.Context, key string) (string, time.Time, error) {
	expiry := s.config.PresignExpiry
	if expiry <= 0 {
		expiry = time.Minute
	}

	u, err := s.client.PresignedGetObject(ctx, s.config.Bucket, key, expiry, url.Values{})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign %s: %w", key, err)
	}

	return u.String(), time.Now().Add(expiry), nil
}

// Delete removes the object under key
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}
