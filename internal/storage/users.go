package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/overmind-app/overmind/internal/models"
)

// CreateUser inserts a new user and returns its ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, hashed_password, role, is_active, is_blocked)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.HashedPassword, user.Role, user.IsActive, user.IsBlocked).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail returns a user by email, or (nil, nil) when absent.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, hashed_password, role, is_active, is_blocked, created_at, updated_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.IsActive, &u.IsBlocked,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser returns a user by ID, or (nil, nil) when absent.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, hashed_password, role, is_active, is_blocked, created_at, updated_at
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.IsActive, &u.IsBlocked,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers returns users matching the optional role and status filters,
// newest first, with pagination.
func (s *Storage) ListUsers(ctx context.Context, roleFilter, statusFilter string, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, hashed_password, role, is_active, is_blocked, created_at, updated_at
			  FROM users
			  WHERE ($1 = '' OR role = $1)
			    AND ($2 <> 'blocked' OR is_blocked)
			    AND ($2 <> 'inactive' OR NOT is_active)
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, roleFilter, statusFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.IsActive,
			&u.IsBlocked, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUsers returns the number of users matching the same filters as ListUsers.
func (s *Storage) CountUsers(ctx context.Context, roleFilter, statusFilter string) (int, error) {
	const op = "storage.CountUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM users
			  WHERE ($1 = '' OR role = $1)
			    AND ($2 <> 'blocked' OR is_blocked)
			    AND ($2 <> 'inactive' OR NOT is_active)`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, roleFilter, statusFilter).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// UpdateUserStatus updates role/is_active/is_blocked; nil fields are kept.
// Returns the number of affected rows.
func (s *Storage) UpdateUserStatus(ctx context.Context, id int64, role *string, isActive, isBlocked *bool) (int64, error) {
	const op = "storage.UpdateUserStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = COALESCE($1, role),
			      is_active = COALESCE($2, is_active),
			      is_blocked = COALESCE($3, is_blocked),
			      updated_at = NOW()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, role, isActive, isBlocked, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// RemoveUser deletes a user; profiles, subscriptions, conversations and
// diaries cascade. Returns the number of affected rows.
func (s *Storage) RemoveUser(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
