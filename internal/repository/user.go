package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/textmagic/textmagic/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, email, password_hash, name, plan, customer_id, subscription_id, usage_count, usage_reset_date, created_at`

// CreateUser inserts a new user and fills in the generated id and
// creation timestamp.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, plan)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		model.PlanFree,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.Plan = model.PlanFree
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id), "ID")
}

// GetUserByEmail retrieves a user by their email address.
// Emails are matched case-sensitively, as stored.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email), "email")
}

// UpdateUserPlan sets the plan and billing references for a user.
// Passing nil references clears them (downgrade path).
func (r *Repository) UpdateUserPlan(ctx context.Context, id int64, plan model.Plan, customerID, subscriptionID *string) error {
	query := `
		UPDATE users
		SET plan = $2, customer_id = $3, subscription_id = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, plan, customerID, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to update user plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DowngradeBySubscriptionID moves the matching account back to the
// free plan and clears its billing references. Used when a cancellation
// event only carries the provider subscription id.
func (r *Repository) DowngradeBySubscriptionID(ctx context.Context, subscriptionID string) error {
	query := `
		UPDATE users
		SET plan = $2, customer_id = NULL, subscription_id = NULL
		WHERE subscription_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, subscriptionID, model.PlanFree)
	if err != nil {
		return fmt.Errorf("failed to downgrade by subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repository) scanUser(row pgx.Row, by string) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Plan,
		&user.CustomerID,
		&user.SubscriptionID,
		&user.UsageCount,
		&user.UsageResetDate,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", by, err)
	}

	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
