package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v3"

	"github.com/textmagic/textmagic/internal/model"
)

// PaddleConfig holds Paddle webhook verification settings.
type PaddleConfig struct {
	WebhookSecret   string
	BusinessPriceID string
}

// PaddleProvider implements the overlay-checkout flow. Checkout runs
// client-side against Paddle; the server only consumes webhooks.
type PaddleProvider struct {
	config   PaddleConfig
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle adapter.
func NewPaddleProvider(config PaddleConfig) *PaddleProvider {
	p := &PaddleProvider{config: config}
	if config.WebhookSecret != "" {
		p.verifier = paddle.NewWebhookVerifier(config.WebhookSecret)
	}
	return p
}

// paddlePayload mirrors the subset of the Paddle webhook envelope the
// billing transitions need.
type paddlePayload struct {
	EventType string `json:"event_type"`
	Data      struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		CustomerID string `json:"customer_id"`
		CustomData struct {
			UserEmail string `json:"user_email"`
		} `json:"custom_data"`
		Items []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"items"`
	} `json:"data"`
}

// ParseWebhook verifies the Paddle signature over the raw body and
// translates the event into a normalized billing transition.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	if p.verifier == nil {
		return nil, ErrNoSecret
	}

	// The SDK verifier consumes an *http.Request carrying the raw body
	// and the Paddle-Signature header.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !valid {
		return nil, ErrBadSignature
	}

	return p.translate(payload)
}

// translate maps a verified Paddle payload to a billing Event.
func (p *PaddleProvider) translate(payload []byte) (*Event, error) {
	var parsed paddlePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal paddle payload: %w", err)
	}

	event := &Event{
		Type:          EventIgnored,
		Provider:      "paddle",
		ProviderEvent: parsed.EventType,
	}

	switch parsed.EventType {
	case "subscription.created", "subscription.activated":
		if parsed.Data.Status != "active" || parsed.Data.CustomData.UserEmail == "" {
			return event, nil
		}

		// Price id decides the tier: the configured business price
		// upgrades to business, any other paid price to pro.
		plan := model.PlanPro
		if len(parsed.Data.Items) > 0 &&
			parsed.Data.Items[0].Price.ID != "" &&
			parsed.Data.Items[0].Price.ID == p.config.BusinessPriceID {
			plan = model.PlanBusiness
		}

		event.Type = EventSubscribed
		event.Plan = plan
		event.Email = parsed.Data.CustomData.UserEmail
		event.CustomerID = parsed.Data.CustomerID
		event.SubscriptionID = parsed.Data.ID

	case "subscription.canceled", "subscription.past_due":
		if parsed.Data.CustomData.UserEmail == "" {
			return event, nil
		}
		event.Type = EventCanceled
		event.Email = parsed.Data.CustomData.UserEmail
		event.SubscriptionID = parsed.Data.ID
	}

	return event, nil
}
