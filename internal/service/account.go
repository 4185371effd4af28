// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/repository"
)

// Account service errors.
var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore defines the persistence operations AccountService needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AccountService handles registration and login.
type AccountService struct {
	store  UserStore
	logger *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store UserStore, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger.With("component", "account"),
	}
}

// Register creates a new free-plan account. The caller validates the
// input shape; this layer hashes the password. Emails are stored
// verbatim and matched case-sensitively everywhere, including billing
// webhook lookups.
func (s *AccountService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:          strings.TrimSpace(email),
		PasswordHash:   hash,
		Name:           strings.TrimSpace(name),
		Plan:           model.PlanFree,
		UsageResetDate: model.UsageDay(time.Now()),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("account registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns the account. Either an
// unknown email or a wrong password yields ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
