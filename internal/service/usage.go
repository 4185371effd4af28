package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/textmagic/textmagic/internal/metrics"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/usagelog"
)

// QuotaError signals that an account exhausted its daily quota.
type QuotaError struct {
	Plan  model.Plan
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily limit of %d reached on the %s plan", e.Limit, e.Plan)
}

// UsageStore defines the persistence operations UsageService needs.
type UsageStore interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	RecordUsage(ctx context.Context, userID int64, day string) (int, error)
	UsageStats(ctx context.Context, userID int64) ([]model.ToolUsage, error)
}

// EventPublisher enqueues usage-log events without blocking the caller.
type EventPublisher interface {
	PublishAsync(event usagelog.EventPayload)
}

// UsageService tracks per-account daily usage. Counters reset lazily:
// a stored reset date before today reads as zero, and the first
// recording of the day writes today's date back.
type UsageService struct {
	store     UsageStore
	publisher EventPublisher
	logger    *slog.Logger
	metrics   metrics.Recorder

	// now is swappable for day-boundary tests.
	now func() time.Time
}

// NewUsageService creates a new UsageService. publisher may be nil
// when the usage-log pipeline is disabled.
func NewUsageService(store UsageStore, publisher EventPublisher, logger *slog.Logger, recorder metrics.Recorder) *UsageService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UsageService{
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "usage"),
		metrics:   recorder,
		now:       time.Now,
	}
}

// CurrentUsage returns today's usage count for the account without
// mutating anything.
func (s *UsageService) CurrentUsage(ctx context.Context, userID int64) (int, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	return user.EffectiveUsage(model.UsageDay(s.now())), nil
}

// Authorize checks the account against its plan quota. It returns a
// *QuotaError when today's usage has reached the daily limit.
//
// The check and the later Record are deliberately not transactional:
// a concurrent pair of requests may both pass at count quota-1. The
// counter itself never loses increments.
func (s *UsageService) Authorize(user *model.User) error {
	quota := user.Plan.DailyQuota()
	used := user.EffectiveUsage(model.UsageDay(s.now()))

	if used >= quota {
		s.metrics.IncQuotaDenied(string(user.Plan))
		return &QuotaError{Plan: user.Plan, Limit: quota}
	}
	return nil
}

// Record increments today's usage counter atomically and returns the
// new count. A usage-log event is published fire-and-forget; pipeline
// failures never surface to the caller.
func (s *UsageService) Record(ctx context.Context, userID int64, toolID string) (int, error) {
	now := s.now()

	count, err := s.store.RecordUsage(ctx, userID, model.UsageDay(now))
	if err != nil {
		return 0, fmt.Errorf("record usage: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishAsync(usagelog.EventPayload{
			EventID:   usagelog.NewEventID(now),
			UserID:    userID,
			Tool:      toolID,
			InvokedAt: now.UnixMilli(),
		})
	}

	return count, nil
}

// Stats returns per-tool lifetime usage counts for the account.
func (s *UsageService) Stats(ctx context.Context, userID int64) ([]model.ToolUsage, error) {
	stats, err := s.store.UsageStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}
	return stats, nil
}
