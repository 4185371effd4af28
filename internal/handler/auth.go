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
)

// AuthHandler handles registration, login, logout, and the current-user
// endpoint.
type AuthHandler struct {
	accounts      *service.AccountService
	usage         *service.UsageService
	tokens        *auth.TokenService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be
// true everywhere TLS terminates in front of the service.
func NewAuthHandler(accounts *service.AccountService, usage *service.UsageService, tokens *auth.TokenService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:      accounts,
		usage:         usage,
		tokens:        tokens,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", err.Error())
		return
	}
	if err := middleware.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PASSWORD", err.Error())
		return
	}
	if err := middleware.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email is already registered")
			return
		}
		h.logger.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.issueSession(w, user.ID); err != nil {
		h.logger.Error("issue session failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		User:    dto.ToUserResponse(user, 0),
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Email and password are required")
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.issueSession(w, user.ID); err != nil {
		h.logger.Error("issue session failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	usage, err := h.usage.CurrentUsage(r.Context(), user.ID)
	if err != nil {
		usage = 0
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		User:    dto.ToUserResponse(user, usage),
	})
}

// Logout handles POST /api/v1/auth/logout. It clears the session
// cookie; the token itself simply expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /api/v1/auth/me. Requires the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return
	}

	usage, err := h.usage.CurrentUsage(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("usage lookup failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.MeResponse{User: dto.ToUserResponse(user, usage)})
}

// issueSession signs a token for the account and sets the auth cookie.
func (h *AuthHandler) issueSession(w http.ResponseWriter, userID int64) error {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
