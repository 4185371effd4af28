// Package billing normalizes payment-provider webhooks into plan
// transitions and creates checkout/portal sessions.
//
// Both providers express the same three transitions: a subscription
// becomes active (upgrade), a subscription ends (downgrade to free),
// or the event is irrelevant (acknowledged no-op). Provider adapters
// translate raw webhook payloads into Event values; Service applies
// them to the user store.
package billing

import (
	"errors"

	"github.com/textmagic/textmagic/internal/model"
)

// EventType is a normalized billing transition.
type EventType string

// Normalized transitions.
const (
	EventSubscribed EventType = "subscribed" // paid plan became active
	EventCanceled   EventType = "canceled"   // subscription ended or past due
	EventIgnored    EventType = "ignored"    // irrelevant provider event
)

// Common adapter errors.
var (
	// ErrBadSignature indicates webhook signature verification failed.
	// The event must be rejected before any state mutation.
	ErrBadSignature = errors.New("webhook signature verification failed")

	// ErrNoSecret indicates no webhook secret is configured. Callers
	// decide whether to apply the insecure development bypass.
	ErrNoSecret = errors.New("webhook secret not configured")
)

// Event is a provider-independent billing event. Exactly one of the
// account references (UserID, Email, SubscriptionID) identifies the
// affected account, depending on the provider flow.
type Event struct {
	Type          EventType
	Provider      string // "stripe" or "paddle"
	ProviderEvent string // original provider event name

	Plan model.Plan // target plan for EventSubscribed

	UserID         int64  // from checkout metadata (Stripe flow)
	Email          string // from custom data (Paddle flow)
	CustomerID     string // provider customer reference
	SubscriptionID string // provider subscription reference
}
