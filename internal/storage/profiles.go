package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/overmind-app/overmind/internal/models"
)

// CreateProfile inserts an empty profile row for a user and returns its ID.
func (s *Storage) CreateProfile(ctx context.Context, userID int64) (int64, error) {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO profiles (user_id) VALUES ($1) RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetProfile returns the profile of a user, or (nil, nil) when absent.
func (s *Storage) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, nickname, birth_date, gender, job, hobbies,
			      family_composition, pets, country
			  FROM profiles
			  WHERE user_id = $1`
	p := &models.Profile{}
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Nickname, &p.BirthDate, &p.Gender, &p.Job,
		&p.Hobbies, &p.FamilyComposition, &p.Pets, &p.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpsertProfile creates the profile row if missing and updates the provided
// fields; nil fields keep their stored value.
func (s *Storage) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	const op = "storage.UpsertProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (user_id, nickname, birth_date, gender, job,
			      hobbies, family_composition, pets, country)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (user_id) DO UPDATE SET
			      nickname = COALESCE(EXCLUDED.nickname, profiles.nickname),
			      birth_date = COALESCE(EXCLUDED.birth_date, profiles.birth_date),
			      gender = COALESCE(EXCLUDED.gender, profiles.gender),
			      job = COALESCE(EXCLUDED.job, profiles.job),
			      hobbies = COALESCE(EXCLUDED.hobbies, profiles.hobbies),
			      family_composition = COALESCE(EXCLUDED.family_composition, profiles.family_composition),
			      pets = COALESCE(EXCLUDED.pets, profiles.pets),
			      country = COALESCE(EXCLUDED.country, profiles.country)
			  RETURNING id, user_id, nickname, birth_date, gender, job, hobbies,
			      family_composition, pets, country`
	out := &models.Profile{}
	err := s.DB.QueryRowContext(ctx, query,
		p.UserID, p.Nickname, p.BirthDate, p.Gender, p.Job,
		p.Hobbies, p.FamilyComposition, p.Pets, p.Country).Scan(
		&out.ID, &out.UserID, &out.Nickname, &out.BirthDate, &out.Gender, &out.Job,
		&out.Hobbies, &out.FamilyComposition, &out.Pets, &out.Country)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
