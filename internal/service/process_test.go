package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/tool"
)

type stubCompleter struct {
	output string
	err    error
	calls  int
	lastIn string
}

func (s *stubCompleter) Complete(_ context.Context, instruction string) (string, error) {
	s.calls++
	s.lastIn = instruction
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func newTestProcessService(store *fakeUsageStore, completer Completer, now time.Time) *ProcessService {
	usage := newTestUsageService(store, nil, now)
	return NewProcessService(usage, completer, discardLogger(), nil)
}

func TestProcessLive(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := &model.User{ID: 1, Plan: model.PlanPro, UsageCount: 10, UsageResetDate: model.UsageDay(now)}
	store := &fakeUsageStore{users: map[int64]*model.User{1: user}}
	completer := &stubCompleter{output: "A concise summary."}
	svc := newTestProcessService(store, completer, now)

	result, err := svc.Process(context.Background(), user, "summarize", "Long input text.", tool.Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Text != "A concise summary." {
		t.Errorf("result text = %q", result.Text)
	}
	if result.Demo {
		t.Error("live run reported as demo")
	}
	if result.Used != 11 {
		t.Errorf("used = %d, want 11", result.Used)
	}
	if result.Limit != 500 || result.Plan != model.PlanPro {
		t.Errorf("usage standing = %d/%q, want 500/pro", result.Limit, result.Plan)
	}
	if !strings.Contains(completer.lastIn, "Long input text.") {
		t.Errorf("instruction does not embed the input: %q", completer.lastIn)
	}
}

func TestProcessDemoWithoutProvider(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := &model.User{ID: 1, Plan: model.PlanFree, UsageResetDate: model.UsageDay(now)}
	store := &fakeUsageStore{users: map[int64]*model.User{1: user}}
	svc := newTestProcessService(store, nil, now)

	result, err := svc.Process(context.Background(), user, "headline", "Our product launched.", tool.Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !result.Demo {
		t.Error("run without provider should report demo mode")
	}
	if result.Text == "" {
		t.Error("demo response is empty")
	}
	if result.Used != 1 {
		t.Errorf("used = %d, want 1", result.Used)
	}
}

func TestProcessUnknownTool(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := &model.User{ID: 1, Plan: model.PlanFree, UsageResetDate: model.UsageDay(now)}
	store := &fakeUsageStore{users: map[int64]*model.User{1: user}}
	svc := newTestProcessService(store, nil, now)

	_, err := svc.Process(context.Background(), user, "mind-reader", "text", tool.Options{})
	if !errors.Is(err, tool.ErrUnknownTool) {
		t.Errorf("err = %v, want ErrUnknownTool", err)
	}
	if user.UsageCount != 0 {
		t.Error("unknown tool must not consume quota")
	}
}

func TestProcessQuotaExhausted(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := &model.User{ID: 1, Plan: model.PlanFree, UsageCount: 5, UsageResetDate: model.UsageDay(now)}
	store := &fakeUsageStore{users: map[int64]*model.User{1: user}}
	completer := &stubCompleter{output: "should not run"}
	svc := newTestProcessService(store, completer, now)

	_, err := svc.Process(context.Background(), user, "summarize", "text", tool.Options{})

	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("err = %v, want *QuotaError", err)
	}
	if quotaErr.Limit != 5 || quotaErr.Plan != model.PlanFree {
		t.Errorf("quota error = %+v, want free/5", quotaErr)
	}
	if completer.calls != 0 {
		t.Error("provider must not be called after quota denial")
	}
}

func TestProcessProviderFailure(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := &model.User{ID: 1, Plan: model.PlanPro, UsageResetDate: model.UsageDay(now)}
	store := &fakeUsageStore{users: map[int64]*model.User{1: user}}
	completer := &stubCompleter{err: errors.New("upstream 500")}
	svc := newTestProcessService(store, completer, now)

	_, err := svc.Process(context.Background(), user, "summarize", "text", tool.Options{})
	if !errors.Is(err, ErrProcessingFailed) {
		t.Errorf("err = %v, want ErrProcessingFailed", err)
	}
	if user.UsageCount != 0 {
		t.Error("failed run must not consume quota")
	}
}

// Free accounts get exactly five runs per day; the sixth is denied and
// the next day starts fresh.
func TestProcessFreeDailyCycle(t *testing.T) {
	day1 := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := &model.User{ID: 1, Plan: model.PlanFree, UsageResetDate: model.UsageDay(day1)}
	store := &fakeUsageStore{users: map[int64]*model.User{1: user}}
	svc := newTestProcessService(store, nil, day1)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		result, err := svc.Process(ctx, user, "grammar", "some text", tool.Options{})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if result.Used != i {
			t.Fatalf("run %d reported used = %d", i, result.Used)
		}
	}

	var quotaErr *QuotaError
	if _, err := svc.Process(ctx, user, "grammar", "some text", tool.Options{}); !errors.As(err, &quotaErr) {
		t.Fatalf("sixth run: err = %v, want *QuotaError", err)
	}

	// Next day the counter reads as zero again.
	day2 := day1.Add(24 * time.Hour)
	svc = newTestProcessService(store, nil, day2)
	result, err := svc.Process(ctx, user, "grammar", "some text", tool.Options{})
	if err != nil {
		t.Fatalf("next-day run: %v", err)
	}
	if result.Used != 1 {
		t.Errorf("next-day used = %d, want 1", result.Used)
	}
}
