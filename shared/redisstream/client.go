package redisstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection and stream configuration
type Config struct {
	Addr             string
	Password         string
	DB               int
	Stream           string
	Group            string
	DeadLetterStream string
	ConnectTimeout   time.Duration
}

// Client wraps a Redis connection for grouped, acknowledged stream
// consumption. Entries are retained until explicitly removed, so the stream
// acts as a work queue rather than an audit trail.
type Client struct {
	rdb    *redis.Client
	config *Config
	logger *slog.Logger
}

// Entry is a single stream entry as delivered to a consumer
type Entry struct {
	ID     string
	Values map[string]string
}

// PendingEntry describes an entry delivered to the group but not yet
// acknowledged
type PendingEntry struct {
	ID         string
	Consumer   string
	Idle       time.Duration
	Deliveries int64
}

// NewClient creates a new Redis stream client and verifies the connection
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	connectTimeout := config.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	logger.Info("Connecting to Redis",
		slog.String("addr", config.Addr),
		slog.Int("db", config.DB),
	)

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis",
		slog.String("stream", config.Stream),
	)

	return &Client{
		rdb:    rdb,
		config: config,
		logger: logger,
	}, nil
}

// EnsureGroup idempotently creates the stream and consumer group, reading
// from the beginning of history. A group that already exists is not an
// error; anything else is fatal to startup.
func (c *Client) EnsureGroup(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.config.Stream, c.config.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %q on stream %q: %w", c.config.Group, c.config.Stream, err)
	}

	c.logger.Info("Consumer group ready",
		slog.String("stream", c.config.Stream),
		slog.String("group", c.config.Group),
	)

	return nil
}

// ReadNext blocks up to block waiting for undelivered entries and returns
// zero or more of them. A block timeout is not an error; it returns an
// empty slice so the caller can poll again.
func (c *Client) ReadNext(ctx context.Context, consumer string, count int64, block time.Duration) ([]Entry, error) {
	streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.config.Group,
		Consumer: consumer,
		Streams:  []string{c.config.Stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	var entries []Entry
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			entries = append(entries, toEntry(msg))
		}
	}

	return entries, nil
}

// Ack marks delivery of an entry complete for the consumer group
func (c *Client) Ack(ctx context.Context, entryID string) error {
	if err := c.rdb.XAck(ctx, c.config.Stream, c.config.Group, entryID).Err(); err != nil {
		return fmt.Errorf("failed to ack entry %s: %w", entryID, err)
	}
	return nil
}

// Remove physically deletes an entry from the stream. Call only after the
// downstream record has been durably advanced past this entry.
func (c *Client) Remove(ctx context.Context, entryID string) error {
	if err := c.rdb.XDel(ctx, c.config.Stream, entryID).Err(); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	return nil
}

// Add appends an event to the stream and returns the assigned entry id
func (c *Client) Add(ctx context.Context, values map[string]any) (string, error) {
	id, err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.config.Stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append to stream: %w", err)
	}

	c.logger.Debug("Appended entry to stream",
		slog.String("stream", c.config.Stream),
		slog.String("entry_id", id),
	)

	return id, nil
}

// AddDeadLetter appends an event to the dead-letter stream
func (c *Client) AddDeadLetter(ctx context.Context, values map[string]any) (string, error) {
	stream := c.config.DeadLetterStream
	if stream == "" {
		stream = c.config.Stream + ":dead"
	}

	id, err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append to dead-letter stream: %w", err)
	}

	return id, nil
}

// Pending lists entries delivered to the group but unacknowledged for at
// least minIdle, with their delivery counts
func (c *Client) Pending(ctx context.Context, minIdle time.Duration, count int64) ([]PendingEntry, error) {
	ext, err := c.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.config.Stream,
		Group:  c.config.Group,
		Idle:   minIdle,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}

	pending := make([]PendingEntry, 0, len(ext))
	for _, p := range ext {
		pending = append(pending, PendingEntry{
			ID:         p.ID,
			Consumer:   p.Consumer,
			Idle:       p.Idle,
			Deliveries: p.RetryCount,
		})
	}

	return pending, nil
}

// Claim transfers ownership of the given pending entries to consumer and
// returns them with their field values for reprocessing
func (c *Client) Claim(ctx context.Context, consumer string, minIdle time.Duration, entryIDs []string) ([]Entry, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	msgs, err := c.rdb.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.config.Stream,
		Group:    c.config.Group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: entryIDs,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim entries: %w", err)
	}

	entries := make([]Entry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, toEntry(msg))
	}

	return entries, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	c.logger.Info("Closing Redis connection")

	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection",
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

func toEntry(msg redis.XMessage) Entry {
	values := make(map[string]string, len(msg.Values))
	for k, v := range msg.Values {
		if s, ok := v.(string); ok {
			values[k] = s
		} else {
			values[k] = fmt.Sprint(v)
		}
	}
	return Entry{ID: msg.ID, Values: values}
}
