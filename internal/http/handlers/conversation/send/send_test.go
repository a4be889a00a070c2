package send

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/services/quality"
)

// MockService implements send.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) SendMessage(ctx context.Context, userID, conversationID int64, req models.SendMessageRequest) (*models.Message, quality.Report, error) {
	args := m.Called(ctx, userID, conversationID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Message), args.Get(1).(quality.Report), args.Error(2)
	}
	return nil, args.Get(1).(quality.Report), args.Error(2)
}

func newRequest(method, url, body, conversationID string, userID int64) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", conversationID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middlewarectx.UserID, userID)
	return req.WithContext(ctx)
}

func TestSendHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		conversationID string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "successful exchange",
			conversationID: "42",
			body:           `{"content":"오늘은 공원에 다녀왔어요"}`,
			setupMock: func(m *MockService) {
				m.On("SendMessage", mock.Anything, int64(7), int64(42),
					mock.MatchedBy(func(req models.SendMessageRequest) bool {
						return req.Content == "오늘은 공원에 다녀왔어요"
					})).Return(
					&models.Message{ID: 101, Role: models.MessageRoleAI, Content: "좋은 하루였겠네요!"},
					quality.Report{IsSufficient: false, Level: quality.LevelInsufficient, MessageCount: 1},
					nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"level":"insufficient"`,
		},
		{
			name:           "non-numeric conversation id",
			conversationID: "abc",
			body:           `{"content":"hello"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "failed to decode id from url",
		},
		{
			name:           "empty content rejected",
			conversationID: "42",
			body:           `{"content":""}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "required field",
		},
		{
			name:           "conversation not active",
			conversationID: "42",
			body:           `{"content":"hello"}`,
			setupMock: func(m *MockService) {
				m.On("SendMessage", mock.Anything, int64(7), int64(42), mock.Anything).Return(
					nil, quality.Report{},
					apperr.BadRequest(apperr.CodeConversationNotActive, "이미 완료된 대화입니다.", nil))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error_code":"CONV_3002"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := newRequest(http.MethodPost, "/diary/api/conversations/"+tt.conversationID+"/messages",
				tt.body, tt.conversationID, 7)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}

func TestSendHandler_MissingUser(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(logger, new(MockService))

	req := httptest.NewRequest(http.MethodPost, "/diary/api/conversations/42/messages",
		strings.NewReader(`{"content":"hello"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
