package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/model"
)

// AuthCookieName is the session cookie carrying the signed token.
const AuthCookieName = "auth_token"

// UserStore loads accounts for authenticated requests.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenService
	Store  UserStore
}

// RequireUser returns a middleware that authenticates requests via the
// session cookie (or a bearer token for non-browser clients), loads
// the account, and injects it into the request context. Requests that
// fail any step get a uniform 401.
func RequireUser(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, reason := resolveRequestUser(r, cfg)
			if user == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser resolves the account when credentials are present but
// lets anonymous requests through. Handlers distinguish the cases via
// auth.UserFromContext.
func OptionalUser(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, _ := resolveRequestUser(r, cfg); user != nil {
				r = r.WithContext(auth.ContextWithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveRequestUser authenticates the request end to end: extract the
// token, verify it, load the account. The reason string is for logs
// only; the client always sees the same 401.
func resolveRequestUser(r *http.Request, cfg AuthConfig) (*model.User, string) {
	token := extractToken(r)
	if token == "" {
		return nil, "missing_token"
	}

	userID, ok := cfg.Tokens.Resolve(token)
	if !ok {
		return nil, "invalid_token"
	}

	user, err := cfg.Store.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil, "unknown_user"
	}

	return user, ""
}

// extractToken reads the session token from the auth cookie, falling
// back to an Authorization bearer header.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	return ""
}

// writeAuthError writes a 401 Unauthorized response. The same message
// is used for every auth failure to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required","code":"UNAUTHORIZED"}`))
}
