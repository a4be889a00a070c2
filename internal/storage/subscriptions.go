package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/overmind-app/overmind/internal/models"
)

// CreateSubscription inserts a subscription row for a user and returns its ID.
func (s *Storage) CreateSubscription(ctx context.Context, userID int64, tier string) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO subscriptions (user_id, tier) VALUES ($1, $2) RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, userID, tier).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscription returns the subscription of a user, or (nil, nil) when absent.
func (s *Storage) GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, tier, starts_at, expires_at, is_active, created_at, updated_at
			  FROM subscriptions
			  WHERE user_id = $1`
	sub := &models.Subscription{}
	var startsAt, expiresAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Tier, &startsAt, &expiresAt,
		&sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if startsAt.Valid {
		sub.StartsAt = &startsAt.Time
	}
	if expiresAt.Valid {
		sub.ExpiresAt = &expiresAt.Time
	}
	return sub, nil
}
