package register

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/models"
)

// MockService implements register.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Signup(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful signup",
			body: `{"email":"jin@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, "jin@example.com", "secret123").Return(
					&models.User{ID: 7, Email: "jin@example.com", Role: models.RoleUser},
					"token-abc", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"access_token":"token-abc"`,
		},
		{
			name:           "invalid email rejected before service call",
			body:           `{"email":"not-an-email","password":"secret123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "must be a valid email",
		},
		{
			name:           "malformed json",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "failed to decode request body",
		},
		{
			name: "duplicate email maps to domain error",
			body: `{"email":"jin@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, "jin@example.com", "secret123").Return(
					nil, "",
					apperr.BadRequest(apperr.CodeEmailAlreadyExists, "이미 등록된 이메일입니다.", nil))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error_code":"AUTH_1002"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/api/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
