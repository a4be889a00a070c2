package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/lib/jwt"
	"github.com/overmind-app/overmind/internal/lib/password"
	"github.com/overmind-app/overmind/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateProfile(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, p)
	if res := args.Get(0); res != nil {
		return res.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateSubscription(ctx context.Context, userID int64, tier string) (int64, error) {
	args := m.Called(ctx, userID, tier)
	return args.Get(0).(int64), args.Error(1)
}

func newTestMaker(t *testing.T) jwt.Maker {
	t.Helper()
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestSignup_Success(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" && u.Role == models.RoleUser && u.IsActive
	})).Return(int64(7), nil)
	repo.On("CreateProfile", mock.Anything, int64(7)).Return(int64(1), nil)
	repo.On("CreateSubscription", mock.Anything, int64(7), models.TierFree).Return(int64(1), nil)

	service := New(repo, newTestMaker(t))
	user, token, err := service.Signup(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NotEmpty(t, token)
	repo.AssertExpectations(t)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{ID: 1, Email: "taken@example.com"}, nil)

	service := New(repo, newTestMaker(t))
	_, _, err := service.Signup(context.Background(), "taken@example.com", "password123")

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeEmailAlreadyExists, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hashed, err := password.GetHash("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name         string
		user         *models.User
		rawPassword  string
		expectedCode string
	}{
		{
			name:        "success",
			user:        &models.User{ID: 1, Email: "a@b.com", HashedPassword: hashed, Role: models.RoleUser, IsActive: true},
			rawPassword: "correct-password",
		},
		{
			name:         "unknown email",
			user:         nil,
			rawPassword:  "correct-password",
			expectedCode: apperr.CodeInvalidCredentials,
		},
		{
			name:         "wrong password",
			user:         &models.User{ID: 1, HashedPassword: hashed, IsActive: true},
			rawPassword:  "wrong-password",
			expectedCode: apperr.CodeInvalidCredentials,
		},
		{
			name:         "inactive account",
			user:         &models.User{ID: 1, HashedPassword: hashed, IsActive: false},
			rawPassword:  "correct-password",
			expectedCode: apperr.CodeAccountInactive,
		},
		{
			name:         "blocked account",
			user:         &models.User{ID: 1, HashedPassword: hashed, IsActive: true, IsBlocked: true},
			rawPassword:  "correct-password",
			expectedCode: apperr.CodeAccountBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(tt.user, nil)

			service := New(repo, newTestMaker(t))
			_, token, err := service.Login(context.Background(), "a@b.com", tt.rawPassword)

			if tt.expectedCode == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				return
			}
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.expectedCode, appErr.Code)
		})
	}
}

func TestUpdateProfile_ParsesBirthDate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		return p.UserID == 5 && p.BirthDate != nil && p.BirthDate.Year() == 1995
	})).Return(&models.Profile{UserID: 5}, nil)

	birthDate := "1995-03-14"
	service := New(repo, newTestMaker(t))
	_, err := service.UpdateProfile(context.Background(), 5, models.UpdateProfileRequest{
		BirthDate: &birthDate,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_RejectsBadBirthDate(t *testing.T) {
	repo := new(MockRepository)
	badDate := "14/03/1995"

	service := New(repo, newTestMaker(t))
	_, err := service.UpdateProfile(context.Background(), 5, models.UpdateProfileRequest{
		BirthDate: &badDate,
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeInvalidRequest, appErr.Code)
	repo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProfile", mock.Anything, int64(9)).Return(nil, nil)

	service := New(repo, newTestMaker(t))
	_, err := service.GetProfile(context.Background(), 9)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeProfileNotFound, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
