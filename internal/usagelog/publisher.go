// Package usagelog captures tool-invocation events for analytics.
// Events flow through a Redis stream into the append-only usage_logs
// table; publishing is fire-and-forget so bookkeeping failures never
// fail the parent request.
package usagelog

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/textmagic/textmagic/internal/metrics"
)

const (
	// StreamKey is the Redis stream for usage events.
	StreamKey = "stream:usage_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:usage_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// EventPayload is the compact event format for the Redis stream.
type EventPayload struct {
	EventID   string `json:"eid"` // ULID, idempotency key for inserts
	UserID    int64  `json:"uid"`
	Tool      string `json:"tl"`
	InvokedAt int64  `json:"t"` // Unix milliseconds
}

// ValidatePayload rejects events that cannot become usage_logs rows.
func ValidatePayload(p EventPayload) error {
	if p.EventID == "" {
		return errors.New("missing event id")
	}
	if p.UserID <= 0 {
		return errors.New("missing user id")
	}
	if p.Tool == "" {
		return errors.New("missing tool")
	}
	if p.InvokedAt <= 0 {
		return errors.New("missing timestamp")
	}
	return nil
}

// Publisher enqueues usage events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new usage event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "usagelog.publisher"),
		metrics: recorder,
	}
}

// NewEventID returns a fresh ULID for a usage event.
func NewEventID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}

// Publish adds a usage event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event EventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event EventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish usage event",
				"tool", event.Tool,
				"user_id", event.UserID,
				"error", err,
			)
			p.metrics.IncUsageEventPublished("dropped")
			return
		}

		p.logger.Debug("usage event published",
			"tool", event.Tool,
			"stream_id", streamID,
		)
		p.metrics.IncUsageEventPublished("success")
	}()
}
