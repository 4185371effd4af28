package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/textmagic/textmagic/internal/metrics"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/repository"
)

// Store defines the user-store operations Billing Sync writes through.
// Billing never touches usage counters; plan and billing references only.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserPlan(ctx context.Context, id int64, plan model.Plan, customerID, subscriptionID *string) error
	DowngradeBySubscriptionID(ctx context.Context, subscriptionID string) error
}

// Service applies normalized billing events to the user store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewService creates a billing service.
func NewService(store Store, logger *slog.Logger, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{
		store:   store,
		logger:  logger.With("component", "billing"),
		metrics: recorder,
	}
}

// Apply executes the plan transition carried by the event.
//
// An event whose account cannot be resolved is logged and treated as
// processed: the provider retries on non-2xx responses and an account
// deleted between webhook delivery attempts would retry forever.
func (s *Service) Apply(ctx context.Context, event *Event) error {
	switch event.Type {
	case EventIgnored:
		s.logger.Debug("ignoring billing event",
			"provider", event.Provider,
			"event", event.ProviderEvent,
		)
		s.metrics.IncBillingEvent(event.Provider, "ignored")
		return nil

	case EventSubscribed:
		return s.applyUpgrade(ctx, event)

	case EventCanceled:
		return s.applyDowngrade(ctx, event)

	default:
		return fmt.Errorf("unknown billing event type %q", event.Type)
	}
}

func (s *Service) applyUpgrade(ctx context.Context, event *Event) error {
	user, err := s.resolveUser(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("billing event for unknown account",
				"provider", event.Provider,
				"event", event.ProviderEvent,
			)
			s.metrics.IncBillingEvent(event.Provider, "ignored")
			return nil
		}
		return err
	}

	var customerID, subscriptionID *string
	if event.CustomerID != "" {
		customerID = &event.CustomerID
	}
	if event.SubscriptionID != "" {
		subscriptionID = &event.SubscriptionID
	}

	if err := s.store.UpdateUserPlan(ctx, user.ID, event.Plan, customerID, subscriptionID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("billing event for unknown account",
				"provider", event.Provider,
				"user_id", user.ID,
			)
			s.metrics.IncBillingEvent(event.Provider, "ignored")
			return nil
		}
		return fmt.Errorf("apply upgrade: %w", err)
	}

	s.logger.Info("plan upgraded",
		"user_id", user.ID,
		"plan", event.Plan,
		"provider", event.Provider,
	)
	s.metrics.IncBillingEvent(event.Provider, "processed")
	return nil
}

func (s *Service) applyDowngrade(ctx context.Context, event *Event) error {
	// Cancellations identify the account differently per provider:
	// Paddle embeds the email, Stripe only carries the subscription id.
	var err error
	var userID int64

	switch {
	case event.Email != "":
		var user *model.User
		user, err = s.store.GetUserByEmail(ctx, event.Email)
		if err == nil {
			userID = user.ID
			err = s.store.UpdateUserPlan(ctx, user.ID, model.PlanFree, nil, nil)
		}
	case event.SubscriptionID != "":
		err = s.store.DowngradeBySubscriptionID(ctx, event.SubscriptionID)
	default:
		s.logger.Warn("cancellation event without account reference",
			"provider", event.Provider,
			"event", event.ProviderEvent,
		)
		s.metrics.IncBillingEvent(event.Provider, "ignored")
		return nil
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("cancellation for unknown account",
				"provider", event.Provider,
				"event", event.ProviderEvent,
			)
			s.metrics.IncBillingEvent(event.Provider, "ignored")
			return nil
		}
		return fmt.Errorf("apply downgrade: %w", err)
	}

	s.logger.Info("plan downgraded to free",
		"user_id", userID,
		"provider", event.Provider,
	)
	s.metrics.IncBillingEvent(event.Provider, "processed")
	return nil
}

// resolveUser finds the account an upgrade event refers to. The Stripe
// flow carries the user id in checkout metadata; the Paddle flow
// carries the email in custom data.
func (s *Service) resolveUser(ctx context.Context, event *Event) (*model.User, error) {
	if event.UserID > 0 {
		return &model.User{ID: event.UserID}, nil
	}
	if event.Email != "" {
		return s.store.GetUserByEmail(ctx, event.Email)
	}
	return nil, repository.ErrUserNotFound
}
