package usagelog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/textmagic/textmagic/internal/metrics"
	"github.com/textmagic/textmagic/internal/repository"
	"github.com/textmagic/textmagic/internal/testutil"
)

type collectingStore struct {
	mu      sync.Mutex
	records []repository.UsageLogRecord
}

func (s *collectingStore) InsertUsageLogs(ctx context.Context, records []repository.UsageLogRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return len(records), nil
}

func (s *collectingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseMessages(t *testing.T) {
	store := &collectingStore{}
	worker := NewWorker(nil, store, testLogger(), "test-consumer", nil)

	event := EventPayload{
		EventID:   NewEventID(time.Now()),
		UserID:    7,
		Tool:      "summarize",
		InvokedAt: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	messages := []redis.XMessage{
		{ID: "1-0", Values: map[string]interface{}{"payload": string(payload)}},
	}

	records, messageIDs := worker.parseMessages(context.Background(), messages)
	if len(records) != 1 {
		t.Fatalf("records len = %d, want 1", len(records))
	}
	if len(messageIDs) != 1 || messageIDs[0] != "1-0" {
		t.Fatalf("messageIDs = %v, want [1-0]", messageIDs)
	}

	rec := records[0]
	if rec.EventID != event.EventID {
		t.Errorf("event id = %q, want %q", rec.EventID, event.EventID)
	}
	if rec.UserID != 7 || rec.Tool != "summarize" {
		t.Errorf("record = %+v", rec)
	}
	if rec.CreatedAt.UnixMilli() != event.InvokedAt {
		t.Errorf("created_at = %v, want unix ms %d", rec.CreatedAt, event.InvokedAt)
	}
}

// TestWorkerConsumesPublishedEvents runs the full publish-consume
// cycle against a real Redis. Set TEST_REDIS_URL to enable.
func TestWorkerConsumesPublishedEvents(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	if err := testutil.FlushRedis(ctx, client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	logger := testLogger()
	store := &collectingStore{}
	recorder := metrics.NewInMemory()

	publisher := NewPublisher(client, logger, nil)
	worker := NewWorker(client, store, logger, "test-consumer", recorder)
	worker.SetBlockTimeout(100 * time.Millisecond)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = worker.Run(workerCtx)
	}()

	now := time.Now()
	events := []EventPayload{
		{EventID: NewEventID(now), UserID: 1, Tool: "summarize", InvokedAt: now.UnixMilli()},
		{EventID: NewEventID(now), UserID: 1, Tool: "translate", InvokedAt: now.UnixMilli()},
		{EventID: NewEventID(now), UserID: 2, Tool: "rewrite", InvokedAt: now.UnixMilli()},
	}
	for _, event := range events {
		if _, err := publisher.Publish(ctx, event); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	deadline := time.After(5 * time.Second)
	for store.count() < len(events) {
		select {
		case <-deadline:
			t.Fatalf("consumed %d of %d events before timeout", store.count(), len(events))
		case <-time.After(50 * time.Millisecond):
		}
	}

	// The stream keeps acked entries (capped), so once the worker has
	// looped past the publishes the depth gauge reads the stream length.
	depthDeadline := time.After(5 * time.Second)
	for recorder.Snapshot().UsageQueueDepth != int64(len(events)) {
		select {
		case <-depthDeadline:
			t.Fatalf("queue depth = %d, want %d", recorder.Snapshot().UsageQueueDepth, len(events))
		case <-time.After(50 * time.Millisecond):
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := worker.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	<-workerDone

	store.mu.Lock()
	defer store.mu.Unlock()
	seen := make(map[string]bool, len(store.records))
	for _, rec := range store.records {
		seen[rec.EventID] = true
	}
	for _, event := range events {
		if !seen[event.EventID] {
			t.Errorf("event %s was not persisted", event.EventID)
		}
	}
}
