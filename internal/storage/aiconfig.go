package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/overmind-app/overmind/internal/models"
)

// GetModelPriority returns the priority row for (country, tier), or
// (nil, nil) when absent.
func (s *Storage) GetModelPriority(ctx context.Context, country, tier string) (*models.ModelPriority, error) {
	const op = "storage.GetModelPriority"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, country, tier, priority_1, priority_2, priority_3, created_at, updated_at
			  FROM ai_model_priorities
			  WHERE country = $1 AND tier = $2`
	p := &models.ModelPriority{}
	err := s.DB.QueryRowContext(ctx, query, country, tier).Scan(
		&p.ID, &p.Country, &p.Tier, &p.Priority1, &p.Priority2, &p.Priority3,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListModelPriorities returns all priority rows ordered by country then tier.
func (s *Storage) ListModelPriorities(ctx context.Context) ([]*models.ModelPriority, error) {
	const op = "storage.ListModelPriorities"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, country, tier, priority_1, priority_2, priority_3, created_at, updated_at
			  FROM ai_model_priorities
			  ORDER BY country, tier`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ModelPriority
	for rows.Next() {
		var p models.ModelPriority
		if err = rows.Scan(&p.ID, &p.Country, &p.Tier, &p.Priority1, &p.Priority2,
			&p.Priority3, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertModelPriority creates or replaces the priority row for
// (country, tier) and returns the stored row.
func (s *Storage) UpsertModelPriority(ctx context.Context, p models.ModelPriority) (*models.ModelPriority, error) {
	const op = "storage.UpsertModelPriority"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO ai_model_priorities (country, tier, priority_1, priority_2, priority_3)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (country, tier) DO UPDATE SET
			      priority_1 = EXCLUDED.priority_1,
			      priority_2 = EXCLUDED.priority_2,
			      priority_3 = EXCLUDED.priority_3,
			      updated_at = NOW()
			  RETURNING id, country, tier, priority_1, priority_2, priority_3, created_at, updated_at`
	out := &models.ModelPriority{}
	err := s.DB.QueryRowContext(ctx, query,
		p.Country, p.Tier, p.Priority1, p.Priority2, p.Priority3).Scan(
		&out.ID, &out.Country, &out.Tier, &out.Priority1, &out.Priority2,
		&out.Priority3, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// RemoveModelPriority deletes the priority row for (country, tier) and
// returns the number of affected rows.
func (s *Storage) RemoveModelPriority(ctx context.Context, country, tier string) (int64, error) {
	const op = "storage.RemoveModelPriority"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM ai_model_priorities WHERE country = $1 AND tier = $2`, country, tier)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
