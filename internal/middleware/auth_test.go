package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/repository"
)

type stubUserStore struct {
	users map[int64]*model.User
}

func (s *stubUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func newAuthTestConfig(t *testing.T) (AuthConfig, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-test-secret-test-key")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	cfg := AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: tokens,
		Store: &stubUserStore{users: map[int64]*model.User{
			1: {ID: 1, Email: "user@example.com", Plan: model.PlanFree},
		}},
	}
	return cfg, tokens
}

func TestRequireUserWithCookie(t *testing.T) {
	cfg, tokens := newAuthTestConfig(t)

	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotUser *model.User
	handler := RequireUser(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/stats", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser == nil || gotUser.ID != 1 {
		t.Errorf("handler saw user %+v, want user 1", gotUser)
	}
}

func TestRequireUserWithBearerHeader(t *testing.T) {
	cfg, tokens := newAuthTestConfig(t)

	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := RequireUser(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireUserRejections(t *testing.T) {
	cfg, tokens := newAuthTestConfig(t)

	unknownUserToken, err := tokens.Issue(999)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name    string
		prepare func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"garbage cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "not-a-token"})
		}},
		{"token for deleted account", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: unknownUserToken})
		}},
		{"non-bearer authorization", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireUser(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/stats", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestOptionalUserAllowsAnonymous(t *testing.T) {
	cfg, _ := newAuthTestConfig(t)

	var sawUser bool
	handler := OptionalUser(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUser = auth.UserFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/process", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sawUser {
		t.Error("anonymous request should carry no user")
	}
}

func TestOptionalUserResolvesCredentials(t *testing.T) {
	cfg, tokens := newAuthTestConfig(t)

	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotUser *model.User
	handler := OptionalUser(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/process", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if gotUser == nil || gotUser.ID != 1 {
		t.Errorf("handler saw user %+v, want user 1", gotUser)
	}
}
