package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/handler/dto"
	"github.com/textmagic/textmagic/internal/middleware"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/repository"
	"github.com/textmagic/textmagic/internal/service"
)

type memAccountStore struct {
	byEmail map[string]*model.User
	byID    map[int64]*model.User
	nextID  int64
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{
		byEmail: make(map[string]*model.User),
		byID:    make(map[int64]*model.User),
		nextID:  1,
	}
}

func (m *memAccountStore) CreateUser(_ context.Context, user *model.User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *memAccountStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memAccountStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memAccountStore) RecordUsage(_ context.Context, userID int64, day string) (int, error) {
	user := m.byID[userID]
	if user.UsageResetDate == day {
		user.UsageCount++
	} else {
		user.UsageCount = 1
		user.UsageResetDate = day
	}
	return user.UsageCount, nil
}

func (m *memAccountStore) UsageStats(_ context.Context, _ int64) ([]model.ToolUsage, error) {
	return nil, nil
}

func newAuthTestHandler(t *testing.T, store *memAccountStore) *AuthHandler {
	t.Helper()
	tokens, err := auth.NewTokenService("handler-test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	accounts := service.NewAccountService(store, testLogger())
	usage := service.NewUsageService(store, nil, testLogger(), nil)
	return NewAuthHandler(accounts, usage, tokens, false, testLogger())
}

func authCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterHandler(t *testing.T) {
	store := newMemAccountStore()
	h := newAuthTestHandler(t, store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"user@example.com","password":"secret123","name":"Ada"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	cookie := authCookie(rec)
	if cookie == nil {
		t.Fatal("auth cookie not set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = %+v, want HttpOnly SameSite=Lax", cookie)
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("cookie max-age = %d, want 7 days", cookie.MaxAge)
	}

	var resp dto.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.User.Email != "user@example.com" || resp.User.Plan != "free" {
		t.Errorf("response = %+v", resp)
	}
	if resp.User.UsageLimit != 5 {
		t.Errorf("usage limit = %d, want 5", resp.User.UsageLimit)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{`, "INVALID_JSON"},
		{"bad email", `{"email":"nope","password":"secret123"}`, "INVALID_EMAIL"},
		{"short password", `{"email":"a@b.com","password":"123"}`, "INVALID_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthTestHandler(t, newMemAccountStore())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	store := newMemAccountStore()
	h := newAuthTestHandler(t, store)

	body := `{"email":"user@example.com","password":"secret123"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("first register: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d, want 400", rec.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	store := newMemAccountStore()
	h := newAuthTestHandler(t, store)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"user@example.com","password":"secret123"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register: %d", rec.Code)
	}

	t.Run("correct credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"secret123"}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if authCookie(rec) == nil {
			t.Error("auth cookie not set on login")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"wrong"}`)))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestLogoutHandlerClearsCookie(t *testing.T) {
	h := newAuthTestHandler(t, newMemAccountStore())

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookie := authCookie(rec)
	if cookie == nil {
		t.Fatal("logout must set a clearing cookie")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie = %+v, want cleared", cookie)
	}
}

func TestMeHandler(t *testing.T) {
	store := newMemAccountStore()
	h := newAuthTestHandler(t, store)
	user := &model.User{Email: "user@example.com", Plan: model.PlanPro, UsageCount: 7, UsageResetDate: model.UsageDay(time.Now())}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = requestWithUser(req, user)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp dto.MeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Plan != "pro" || resp.User.UsageCount != 7 || resp.User.UsageLimit != 500 {
		t.Errorf("user = %+v, want pro 7/500", resp.User)
	}
}

func TestMeHandlerAnonymous(t *testing.T) {
	h := newAuthTestHandler(t, newMemAccountStore())

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
