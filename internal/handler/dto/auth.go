// Package dto defines request and response shapes for the HTTP API.
package dto

import "github.com/textmagic/textmagic/internal/model"

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`

	// LimitReached is set on quota denials so clients can render an
	// upgrade prompt instead of a generic error.
	LimitReached bool `json:"limitReached,omitempty"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Plan       string `json:"plan"`
	UsageCount int    `json:"usageCount"`
	UsageLimit int    `json:"usageLimit"`
	CreatedAt  string `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// MeResponse is returned by GET /api/v1/auth/me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// ToUserResponse converts a User model to its public view. usage is
// today's effective usage count, already lazily reset.
func ToUserResponse(user *model.User, usage int) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Plan:       string(user.Plan),
		UsageCount: usage,
		UsageLimit: user.Plan.DailyQuota(),
		CreatedAt:  user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
