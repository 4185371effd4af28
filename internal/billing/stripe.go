package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/textmagic/textmagic/internal/model"
)

// StripeConfig holds Stripe credentials and price identifiers.
type StripeConfig struct {
	SecretKey       string
	WebhookSecret   string
	ProPriceID      string
	BusinessPriceID string
	BaseURL         string // redirect target base for checkout/portal
}

// StripeProvider implements the checkout-session redirect flow.
type StripeProvider struct {
	config StripeConfig
}

// NewStripeProvider creates a Stripe adapter and wires the global API key.
func NewStripeProvider(config StripeConfig) *StripeProvider {
	if config.SecretKey != "" {
		stripe.Key = config.SecretKey
	}
	return &StripeProvider{config: config}
}

// Enabled reports whether live Stripe billing is configured.
func (p *StripeProvider) Enabled() bool {
	return p.config.SecretKey != ""
}

// PriceID returns the Stripe price for a paid plan.
func (p *StripeProvider) PriceID(plan model.Plan) (string, error) {
	switch plan {
	case model.PlanPro:
		return p.config.ProPriceID, nil
	case model.PlanBusiness:
		return p.config.BusinessPriceID, nil
	default:
		return "", fmt.Errorf("no price configured for plan %q", plan)
	}
}

// CreateCheckoutSession starts a subscription checkout for the user.
// The user id and target plan travel in session metadata and come back
// on the checkout.session.completed webhook.
func (p *StripeProvider) CreateCheckoutSession(user *model.User, plan model.Plan) (string, error) {
	priceID, err := p.PriceID(plan)
	if err != nil {
		return "", err
	}
	if priceID == "" {
		return "", fmt.Errorf("price id for plan %q is not configured", plan)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"userId": strconv.FormatInt(user.ID, 10),
			"plan":   string(plan),
		},
		SuccessURL: stripe.String(p.config.BaseURL + "/dashboard?success=true"),
		CancelURL:  stripe.String(p.config.BaseURL + "/pricing?canceled=true"),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return sess.URL, nil
}

// CreatePortalSession opens the Stripe customer portal for an account
// that already has a customer reference.
func (p *StripeProvider) CreatePortalSession(customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(p.config.BaseURL + "/dashboard"),
	}

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}

	return sess.URL, nil
}

// ParseWebhook verifies the Stripe signature over the raw body and
// translates the event into a normalized billing transition.
func (p *StripeProvider) ParseWebhook(_ context.Context, payload []byte, signature string) (*Event, error) {
	if p.config.WebhookSecret == "" {
		return nil, ErrNoSecret
	}

	stripeEvent, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		p.config.WebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	event := &Event{
		Type:          EventIgnored,
		Provider:      "stripe",
		ProviderEvent: string(stripeEvent.Type),
	}

	switch stripeEvent.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("unmarshal checkout session: %w", err)
		}

		userID, err := strconv.ParseInt(sess.Metadata["userId"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("checkout session metadata missing userId: %w", err)
		}

		plan := model.Plan(sess.Metadata["plan"])
		if !plan.IsPaid() {
			return nil, fmt.Errorf("checkout session metadata carries invalid plan %q", sess.Metadata["plan"])
		}

		event.Type = EventSubscribed
		event.UserID = userID
		event.Plan = plan
		if sess.Customer != nil {
			event.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			event.SubscriptionID = sess.Subscription.ID
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("unmarshal subscription: %w", err)
		}

		event.Type = EventCanceled
		event.SubscriptionID = sub.ID
		if sub.Customer != nil {
			event.CustomerID = sub.Customer.ID
		}
	}

	return event, nil
}
