package handler

import (
	"log/slog"
	"net/http"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/handler/dto"
	"github.com/textmagic/textmagic/internal/service"
)

// UsageHandler exposes the account's usage standing and per-tool
// breakdown.
type UsageHandler struct {
	usage  *service.UsageService
	logger *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usage *service.UsageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		usage:  usage,
		logger: logger,
	}
}

// Stats handles GET /api/v1/usage/stats. Requires the auth middleware.
func (h *UsageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	used, err := h.usage.CurrentUsage(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("usage lookup failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	stats, err := h.usage.Stats(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("usage stats failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.UsageStatsResponse{
		Usage: dto.UsageStanding{
			Used:  used,
			Limit: user.Plan.DailyQuota(),
			Plan:  string(user.Plan),
		},
		Tools: dto.ToToolUsageEntries(stats),
	})
}
