// Package admin implements user administration and AI model priority
// management.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/services/modelselector"
)

// Repository is the storage contract the admin service needs.
type Repository interface {
	ListUsers(ctx context.Context, roleFilter, statusFilter string, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context, roleFilter, statusFilter string) (int, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id int64, role *string, isActive, isBlocked *bool) (int64, error)
	RemoveUser(ctx context.Context, id int64) (int64, error)

	ListModelPriorities(ctx context.Context) ([]*models.ModelPriority, error)
	UpsertModelPriority(ctx context.Context, p models.ModelPriority) (*models.ModelPriority, error)
	RemoveModelPriority(ctx context.Context, country, tier string) (int64, error)
}

// CacheInvalidator drops cached priority rows after admin changes.
// May be nil.
type CacheInvalidator interface {
	Invalidate(key string) error
}

// Service implements the admin operations.
type Service struct {
	log   *slog.Logger
	repo  Repository
	cache CacheInvalidator
}

// New creates an admin service. cache may be nil.
func New(log *slog.Logger, repo Repository, cache CacheInvalidator) *Service {
	return &Service{log: log, repo: repo, cache: cache}
}

// ListUsers returns a page of users plus the total count. roleFilter and
// statusFilter are optional ("" disables them).
func (s *Service) ListUsers(ctx context.Context, roleFilter, statusFilter string, limit, offset int) ([]*models.User, int, error) {
	const op = "admin.ListUsers"

	users, err := s.repo.ListUsers(ctx, roleFilter, statusFilter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountUsers(ctx, roleFilter, statusFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "admin.GetUser"

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, apperr.NotFound(apperr.CodeUserNotFound,
			"사용자를 찾을 수 없습니다.", map[string]any{"user_id": id})
	}
	return user, nil
}

// UpdateUserStatus patches role/active/blocked flags of a user and returns
// the updated row.
func (s *Service) UpdateUserStatus(ctx context.Context, id int64, req models.UpdateUserStatusRequest) (*models.User, error) {
	const op = "admin.UpdateUserStatus"

	affected, err := s.repo.UpdateUserStatus(ctx, id, req.Role, req.IsActive, req.IsBlocked)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, apperr.NotFound(apperr.CodeUserNotFound,
			"사용자를 찾을 수 없습니다.", map[string]any{"user_id": id})
	}
	return s.repo.GetUser(ctx, id)
}

// RemoveUser deletes a user and everything cascading from it.
func (s *Service) RemoveUser(ctx context.Context, id int64) error {
	const op = "admin.RemoveUser"

	affected, err := s.repo.RemoveUser(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return apperr.NotFound(apperr.CodeUserNotFound,
			"사용자를 찾을 수 없습니다.", map[string]any{"user_id": id})
	}
	return nil
}

// ListPriorities returns all AI model priority rows.
func (s *Service) ListPriorities(ctx context.Context) ([]*models.ModelPriority, error) {
	const op = "admin.ListPriorities"

	priorities, err := s.repo.ListModelPriorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return priorities, nil
}

// UpsertPriority creates or replaces the priority row for a (country, tier)
// pair and invalidates its cache entry.
func (s *Service) UpsertPriority(ctx context.Context, req models.UpsertPriorityRequest) (*models.ModelPriority, error) {
	const op = "admin.UpsertPriority"

	for _, provider := range []string{req.Priority1, req.Priority2, req.Priority3} {
		switch provider {
		case models.ProviderClaude, models.ProviderGoogleAI, models.ProviderOpenAI:
		default:
			return nil, apperr.BadRequest(apperr.CodeInvalidRequest,
				fmt.Sprintf("invalid provider: %s", provider), nil)
		}
	}

	priority, err := s.repo.UpsertModelPriority(ctx, models.ModelPriority{
		Country:   req.Country,
		Tier:      req.Tier,
		Priority1: req.Priority1,
		Priority2: req.Priority2,
		Priority3: req.Priority3,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(req.Country, req.Tier)
	return priority, nil
}

// RemovePriority deletes the priority row for a (country, tier) pair.
func (s *Service) RemovePriority(ctx context.Context, country, tier string) error {
	const op = "admin.RemovePriority"

	affected, err := s.repo.RemoveModelPriority(ctx, country, tier)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return apperr.NotFound(apperr.CodeAIPriorityNotFound,
			"AI 우선순위 설정을 찾을 수 없습니다.",
			map[string]any{"country": country, "tier": tier})
	}

	s.invalidate(country, tier)
	return nil
}

func (s *Service) invalidate(country, tier string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(modelselector.CacheKey(country, tier)); err != nil {
		s.log.Warn("priority cache invalidation failed", sl.Err(err))
	}
}
