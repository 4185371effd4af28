package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/textmagic/textmagic/internal/metrics"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/tool"
)

// ErrProcessingFailed hides provider failures behind a generic error.
// The underlying cause is logged, never returned to the client.
var ErrProcessingFailed = errors.New("text processing failed")

// Completer produces a completion for a rendered tool instruction.
type Completer interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

// ProcessResult is the outcome of a tool run, including the usage
// standing the response reports back to the client.
type ProcessResult struct {
	Text  string
	Used  int
	Limit int
	Plan  model.Plan
	Demo  bool
}

// ProcessService orchestrates a tool run: entitlement check, dispatch
// to the AI provider (or the canned demo response when no provider is
// configured), and usage recording.
type ProcessService struct {
	usage     *UsageService
	completer Completer
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewProcessService creates a new ProcessService. completer may be nil,
// which switches every tool to demo responses.
func NewProcessService(usage *UsageService, completer Completer, logger *slog.Logger, recorder metrics.Recorder) *ProcessService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProcessService{
		usage:     usage,
		completer: completer,
		logger:    logger.With("component", "process"),
		metrics:   recorder,
	}
}

// Process runs one tool over the input text for the account.
//
// The quota check happens before any provider call so exhausted
// accounts never consume provider budget. The usage counter increments
// only after a successful run.
func (s *ProcessService) Process(ctx context.Context, user *model.User, toolID, text string, opts tool.Options) (*ProcessResult, error) {
	tl, err := tool.Lookup(toolID)
	if err != nil {
		return nil, err
	}

	if err := s.usage.Authorize(user); err != nil {
		return nil, err
	}

	mode := "demo"
	if s.completer != nil {
		mode = "live"
	}

	start := time.Now()
	var output string
	if s.completer != nil {
		output, err = s.completer.Complete(ctx, tl.Prompt(text, opts))
		if err != nil {
			s.logger.Error("provider call failed",
				"tool", toolID,
				"user_id", user.ID,
				"error", err.Error(),
			)
			return nil, ErrProcessingFailed
		}
	} else {
		output = tl.Demo(text, opts)
	}

	s.metrics.IncToolInvocation(toolID, mode)
	s.metrics.ObserveToolDuration(time.Since(start))

	used, err := s.usage.Record(ctx, user.ID, toolID)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Text:  output,
		Used:  used,
		Limit: user.Plan.DailyQuota(),
		Plan:  user.Plan,
		Demo:  mode == "demo",
	}, nil
}
