package billing

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textmagic/textmagic/internal/model"
)

const stripeTestSecret = "whsec_test_secret"

// signStripePayload produces a valid Stripe-Signature header for the body.
func signStripePayload(t *testing.T, payload []byte) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, stripeTestSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func newTestStripeProvider() *StripeProvider {
	return &StripeProvider{config: StripeConfig{
		WebhookSecret:   stripeTestSecret,
		ProPriceID:      "price_pro",
		BusinessPriceID: "price_business",
		BaseURL:         "https://app.example.com",
	}}
}

func TestStripeParseWebhookCheckoutCompleted(t *testing.T) {
	provider := newTestStripeProvider()

	payload := []byte(`{
		"id": "evt_001",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_001",
				"customer": {"id": "cus_001"},
				"subscription": {"id": "sub_001"},
				"metadata": {"userId": "42", "plan": "pro"}
			}
		}
	}`)

	event, err := provider.ParseWebhook(context.Background(), payload, signStripePayload(t, payload))
	require.NoError(t, err)

	assert.Equal(t, EventSubscribed, event.Type)
	assert.Equal(t, "stripe", event.Provider)
	assert.Equal(t, int64(42), event.UserID)
	assert.Equal(t, model.PlanPro, event.Plan)
	assert.Equal(t, "cus_001", event.CustomerID)
	assert.Equal(t, "sub_001", event.SubscriptionID)
}

func TestStripeParseWebhookSubscriptionDeleted(t *testing.T) {
	provider := newTestStripeProvider()

	payload := []byte(`{
		"id": "evt_002",
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": "sub_001",
				"customer": {"id": "cus_001"}
			}
		}
	}`)

	event, err := provider.ParseWebhook(context.Background(), payload, signStripePayload(t, payload))
	require.NoError(t, err)

	assert.Equal(t, EventCanceled, event.Type)
	assert.Equal(t, "sub_001", event.SubscriptionID)
}

func TestStripeParseWebhookUnhandledEventIsIgnored(t *testing.T) {
	provider := newTestStripeProvider()

	payload := []byte(`{"id": "evt_003", "type": "invoice.paid", "data": {"object": {}}}`)

	event, err := provider.ParseWebhook(context.Background(), payload, signStripePayload(t, payload))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, event.Type)
	assert.Equal(t, "invoice.paid", event.ProviderEvent)
}

func TestStripeParseWebhookBadSignature(t *testing.T) {
	provider := newTestStripeProvider()

	payload := []byte(`{"id": "evt_004", "type": "invoice.paid", "data": {"object": {}}}`)

	_, err := provider.ParseWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestStripeParseWebhookNoSecret(t *testing.T) {
	provider := &StripeProvider{}

	_, err := provider.ParseWebhook(context.Background(), []byte(`{}`), "t=1,v1=abc")
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestStripeParseWebhookRejectsInvalidMetadata(t *testing.T) {
	provider := newTestStripeProvider()

	tests := []struct {
		name     string
		metadata string
	}{
		{"missing userId", `{"plan": "pro"}`},
		{"non-numeric userId", `{"userId": "abc", "plan": "pro"}`},
		{"invalid plan", `{"userId": "42", "plan": "free"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(fmt.Sprintf(`{
				"id": "evt_005",
				"type": "checkout.session.completed",
				"data": {"object": {"id": "cs_001", "metadata": %s}}
			}`, tt.metadata))

			_, err := provider.ParseWebhook(context.Background(), payload, signStripePayload(t, payload))
			require.Error(t, err)
		})
	}
}

func TestStripePriceID(t *testing.T) {
	provider := newTestStripeProvider()

	id, err := provider.PriceID(model.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, "price_pro", id)

	id, err = provider.PriceID(model.PlanBusiness)
	require.NoError(t, err)
	assert.Equal(t, "price_business", id)

	_, err = provider.PriceID(model.PlanFree)
	require.Error(t, err)
}
