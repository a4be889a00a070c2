package chat

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

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/apperr"
)

// MockGateway implements chat.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, provider string, req aiclient.Request) (*aiclient.Response, error) {
	args := m.Called(ctx, provider, req)
	if res := args.Get(0); res != nil {
		return res.(*aiclient.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestChatHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockGateway)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "explicit model is passed through",
			body: `{"provider":"claude","model":"claude-opus-4-5-20251101","prompt":"안녕"}`,
			setupMock: func(m *MockGateway) {
				m.On("Generate", mock.Anything, "claude",
					mock.MatchedBy(func(req aiclient.Request) bool {
						return req.Model == "claude-opus-4-5-20251101" && req.Prompt == "안녕"
					})).Return(&aiclient.Response{
					Provider: "claude",
					Model:    "claude-opus-4-5-20251101",
					Text:     "안녕하세요!",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"response":"안녕하세요!"`,
		},
		{
			name: "missing model falls back to provider default",
			body: `{"provider":"openai","prompt":"hi"}`,
			setupMock: func(m *MockGateway) {
				m.On("Generate", mock.Anything, "openai",
					mock.MatchedBy(func(req aiclient.Request) bool {
						return req.Model == "gpt-4o-mini"
					})).Return(&aiclient.Response{
					Provider: "openai",
					Model:    "gpt-4o-mini",
					Text:     "hello",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"model":"gpt-4o-mini"`,
		},
		{
			name:           "unknown provider rejected by validation",
			body:           `{"provider":"mistral","prompt":"hi"}`,
			setupMock:      func(_ *MockGateway) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "unsupported value",
		},
		{
			name: "upstream timeout maps to 504",
			body: `{"provider":"claude","prompt":"hi"}`,
			setupMock: func(m *MockGateway) {
				m.On("Generate", mock.Anything, "claude", mock.Anything).Return(nil,
					apperr.Service(http.StatusGatewayTimeout, apperr.CodeAIServiceTimeout,
						"AI service timeout", map[string]any{"provider": "claude"}))
			},
			expectedStatus: http.StatusGatewayTimeout,
			expectedBody:   `"error_code":"AI_5001"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGateway := new(MockGateway)
			tt.setupMock(mockGateway)

			handler := New(logger, mockGateway)

			req := httptest.NewRequest(http.MethodPost, "/ai/api/req", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockGateway.AssertExpectations(t)
		})
	}
}
