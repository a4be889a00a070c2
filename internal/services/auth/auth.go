// Package auth holds signup, login and profile business logic.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/lib/jwt"
	"github.com/overmind-app/overmind/internal/lib/password"
	"github.com/overmind-app/overmind/internal/models"
)

// Repository is the storage contract the auth service needs.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateProfile(ctx context.Context, userID int64) (int64, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
	CreateSubscription(ctx context.Context, userID int64, tier string) (int64, error)
}

// Service implements registration, login and profile management.
type Service struct {
	repo     Repository
	jwtMaker jwt.Maker
}

// New creates an auth service.
func New(repo Repository, jwtMaker jwt.Maker) *Service {
	return &Service{repo: repo, jwtMaker: jwtMaker}
}

// Signup registers a new user with an empty profile and a free
// subscription, and returns the user with a fresh access token.
func (s *Service) Signup(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Signup"

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, "", apperr.BadRequest(apperr.CodeEmailAlreadyExists,
			"이미 등록된 이메일입니다.", map[string]any{"email": email})
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:          email,
		HashedPassword: hashed,
		Role:           models.RoleUser,
		IsActive:       true,
	}
	user.ID, err = s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err = s.repo.CreateProfile(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.repo.CreateSubscription(ctx, user.ID, models.TierFree); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, nil
}

// Login verifies credentials and account status, then issues a token.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil || password.CompareHash(user.HashedPassword, rawPassword) != nil {
		return nil, "", apperr.Unauthorized(apperr.CodeInvalidCredentials,
			"이메일 또는 비밀번호가 올바르지 않습니다.")
	}
	if !user.IsActive {
		return nil, "", apperr.Forbidden(apperr.CodeAccountInactive,
			"비활성화된 계정입니다. 고객센터에 문의해주세요.")
	}
	if user.IsBlocked {
		return nil, "", apperr.Forbidden(apperr.CodeAccountBlocked,
			"차단된 계정입니다. 고객센터에 문의해주세요.")
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// GetProfile returns the profile of a user.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	const op = "auth.GetProfile"

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile == nil {
		return nil, apperr.NotFound(apperr.CodeProfileNotFound,
			"프로필을 찾을 수 없습니다.", map[string]any{"user_id": userID})
	}
	return profile, nil
}

// UpdateProfile applies a partial profile update, creating the profile row
// if the user never had one.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.Profile, error) {
	const op = "auth.UpdateProfile"

	profile := models.Profile{
		UserID:            userID,
		Nickname:          req.Nickname,
		Gender:            req.Gender,
		Job:               req.Job,
		Hobbies:           req.Hobbies,
		FamilyComposition: req.FamilyComposition,
		Pets:              req.Pets,
		Country:           req.Country,
	}
	if req.BirthDate != nil {
		birthDate, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, apperr.BadRequest(apperr.CodeInvalidRequest,
				"invalid birth_date format, expected YYYY-MM-DD", nil)
		}
		profile.BirthDate = &birthDate
	}

	updated, err := s.repo.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}
