package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/textmagic/textmagic/internal/billing"
	"github.com/textmagic/textmagic/internal/handler/dto"
)

// maxWebhookBody caps provider webhook payloads.
const maxWebhookBody = 1 << 20

// WebhookProvider verifies a raw webhook payload and translates it
// into a normalized billing event.
type WebhookProvider interface {
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*billing.Event, error)
}

// WebhookHandler receives billing provider webhooks. Signature headers
// differ per provider; everything after verification is shared.
type WebhookHandler struct {
	stripe  WebhookProvider
	paddle  WebhookProvider
	billing *billing.Service
	logger  *slog.Logger

	// allowUnverified acknowledges webhooks without processing when no
	// secret is configured. Development only.
	allowUnverified bool
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(stripe, paddle WebhookProvider, svc *billing.Service, allowUnverified bool, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		stripe:          stripe,
		paddle:          paddle,
		billing:         svc,
		logger:          logger,
		allowUnverified: allowUnverified,
	}
}

// Stripe handles POST /webhooks/stripe.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "stripe", h.stripe, r.Header.Get("Stripe-Signature"))
}

// Paddle handles POST /webhooks/paddle.
func (h *WebhookHandler) Paddle(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "paddle", h.paddle, r.Header.Get("Paddle-Signature"))
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request, provider string, p WebhookProvider, signature string) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
		return
	}

	event, err := p.ParseWebhook(r.Context(), payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNoSecret):
			if h.allowUnverified {
				// Ack without processing so local stacks without
				// provider secrets do not retry forever.
				h.logger.Warn("webhook secret not configured, skipping event",
					"provider", provider,
				)
				writeJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
				return
			}
			h.logger.Error("webhook secret not configured", "provider", provider)
			writeError(w, http.StatusInternalServerError, "WEBHOOK_MISCONFIGURED", "Webhook verification is not configured")

		case errors.Is(err, billing.ErrBadSignature):
			h.logger.Warn("webhook signature verification failed",
				"provider", provider,
				"error", err.Error(),
			)
			writeError(w, http.StatusBadRequest, "BAD_SIGNATURE", "Webhook signature verification failed")

		default:
			h.logger.Error("webhook parse failed",
				"provider", provider,
				"error", err.Error(),
			)
			writeError(w, http.StatusBadRequest, "INVALID_WEBHOOK", "Could not parse webhook payload")
		}
		return
	}

	if err := h.billing.Apply(r.Context(), event); err != nil {
		h.logger.Error("webhook apply failed",
			"provider", provider,
			"event", event.ProviderEvent,
			"error", err.Error(),
		)
		// Non-2xx so the provider redelivers.
		writeError(w, http.StatusInternalServerError, "WEBHOOK_FAILED", "Could not process webhook")
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
}
