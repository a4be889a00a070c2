package generate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/http/middlewarectx"
	"github.com/overmind-app/overmind/internal/models"
)

// MockService implements generate.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, userID int64, req models.GenerateDiaryRequest) (*models.DiaryEntry, error) {
	args := m.Called(ctx, userID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.DiaryEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func strPtr(s string) *string { return &s }

func authedRequest(body string, userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/diary/api/diaries", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middlewarectx.UserID, userID)
	return req.WithContext(ctx)
}

func TestGenerateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful generation",
			body: `{"conversation_id":42,"title":"봄날의 산책","length_type":"normal"}`,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, int64(7),
					mock.MatchedBy(func(req models.GenerateDiaryRequest) bool {
						return req.ConversationID == 42 && req.LengthType == models.LengthNormal
					})).Return(&models.DiaryEntry{
					ID:        11,
					UserID:    7,
					Title:     "봄날의 산책",
					Content:   "오늘은 공원에 다녀왔다.",
					Mood:      strPtr("긍정적"),
					EntryDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"mood":"긍정적"`,
		},
		{
			name:           "unknown length type rejected",
			body:           `{"conversation_id":42,"title":"t","length_type":"huge"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "unsupported value",
		},
		{
			name: "insufficient conversation returns thresholds",
			body: `{"conversation_id":42,"title":"t"}`,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, int64(7), mock.Anything).Return(nil,
					apperr.New(http.StatusUnprocessableEntity, apperr.CodeInsufficientConversation,
						"대화가 아직 충분하지 않습니다.", map[string]any{
							"message_count":          1,
							"required_message_count": 3,
						}))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error_code":"DIARY_4006"`,
		},
		{
			name: "conversation not found",
			body: `{"conversation_id":99,"title":"t"}`,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, int64(7), mock.Anything).Return(nil,
					apperr.NotFound(apperr.CodeConversationNotFound, "대화를 찾을 수 없습니다.", nil))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error_code":"CONV_3001"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, authedRequest(tt.body, 7))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
