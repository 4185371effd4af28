package auth

import (
	"context"

	"github.com/textmagic/textmagic/internal/model"
)

// contextKey is a private type to avoid context key collisions.
type contextKey struct{}

var userKey contextKey

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user from the context.
// Returns nil when the request is anonymous.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}
