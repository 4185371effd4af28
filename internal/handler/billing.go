package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/billing"
	"github.com/textmagic/textmagic/internal/handler/dto"
	"github.com/textmagic/textmagic/internal/model"
)

// BillingHandler creates provider-hosted checkout and portal sessions.
type BillingHandler struct {
	stripe *billing.StripeProvider
	logger *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(stripe *billing.StripeProvider, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		stripe: stripe,
		logger: logger,
	}
}

// Checkout handles POST /api/v1/billing/checkout. Requires the auth
// middleware.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	plan := model.Plan(req.Plan)
	if !plan.IsPaid() {
		writeError(w, http.StatusBadRequest, "INVALID_PLAN", "Invalid plan")
		return
	}

	if !h.stripe.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "BILLING_DISABLED", "Billing is not configured")
		return
	}

	url, err := h.stripe.CreateCheckoutSession(user, plan)
	if err != nil {
		h.logger.Error("checkout session failed", "error", err, "user_id", user.ID, "plan", plan)
		writeError(w, http.StatusInternalServerError, "CHECKOUT_FAILED", "Could not create a checkout session")
		return
	}

	writeJSON(w, http.StatusOK, dto.RedirectResponse{URL: url})
}

// Portal handles POST /api/v1/billing/portal. Requires the auth
// middleware and an existing billing account.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if user.CustomerID == nil || *user.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "NO_BILLING_ACCOUNT", "No billing account on file")
		return
	}

	if !h.stripe.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "BILLING_DISABLED", "Billing is not configured")
		return
	}

	url, err := h.stripe.CreatePortalSession(*user.CustomerID)
	if err != nil {
		h.logger.Error("portal session failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "PORTAL_FAILED", "Could not create a portal session")
		return
	}

	writeJSON(w, http.StatusOK, dto.RedirectResponse{URL: url})
}
