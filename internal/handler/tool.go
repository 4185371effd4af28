package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/handler/dto"
	"github.com/textmagic/textmagic/internal/middleware"
	"github.com/textmagic/textmagic/internal/service"
	"github.com/textmagic/textmagic/internal/tool"
)

// ToolHandler handles the tool catalog and tool runs.
type ToolHandler struct {
	process *service.ProcessService
	logger  *slog.Logger
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(process *service.ProcessService, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{
		process: process,
		logger:  logger,
	}
}

// List handles GET /api/v1/tools. The catalog is public.
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ToToolListResponse(tool.List()))
}

// Process handles POST /api/v1/tools/process. Requires the auth
// middleware.
func (h *ToolHandler) Process(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.ToolID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOOL", "A tool id is required")
		return
	}
	if err := middleware.ValidateInputText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TEXT", err.Error())
		return
	}

	opts := tool.Options{
		Length:     req.Options.Length,
		Tone:       req.Options.Tone,
		Platform:   req.Options.Platform,
		Style:      req.Options.Style,
		TargetLang: req.Options.TargetLang,
	}

	result, err := h.process.Process(r.Context(), user, req.ToolID, req.Text, opts)
	if err != nil {
		h.handleProcessError(w, err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProcessResponse{
		Success: true,
		Result:  result.Text,
		Demo:    result.Demo,
		Usage: dto.UsageStanding{
			Used:  result.Used,
			Limit: result.Limit,
			Plan:  string(result.Plan),
		},
	})
}

func (h *ToolHandler) handleProcessError(w http.ResponseWriter, err error, userID int64) {
	var quotaErr *service.QuotaError

	switch {
	case errors.Is(err, tool.ErrUnknownTool):
		writeError(w, http.StatusBadRequest, "UNKNOWN_TOOL", "Unknown tool")

	case errors.As(err, &quotaErr):
		writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
			Error:        "Daily usage limit reached. Upgrade your plan for more runs.",
			Code:         "LIMIT_REACHED",
			LimitReached: true,
		})

	case errors.Is(err, service.ErrProcessingFailed):
		writeError(w, http.StatusInternalServerError, "PROCESSING_FAILED", "Processing failed. Please try again.")

	default:
		h.logger.Error("tool run failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
