package diary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/rabbitmq"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error) {
	args := m.Called(ctx, id, userID)
	if c := args.Get(0); c != nil {
		return c.(*models.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CompleteConversation(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateDiaryEntry(ctx context.Context, entry models.DiaryEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetDiaryEntry(ctx context.Context, id, userID int64) (*models.DiaryEntry, error) {
	args := m.Called(ctx, id, userID)
	if e := args.Get(0); e != nil {
		return e.(*models.DiaryEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetDiaryEntryByDate(ctx context.Context, userID int64, entryDate time.Time) (*models.DiaryEntry, error) {
	args := m.Called(ctx, userID, entryDate)
	if e := args.Get(0); e != nil {
		return e.(*models.DiaryEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListDiaryEntries(ctx context.Context, userID int64, startDate, endDate *time.Time, limit, offset int) ([]*models.DiaryEntry, error) {
	args := m.Called(ctx, userID, startDate, endDate, limit, offset)
	if e := args.Get(0); e != nil {
		return e.([]*models.DiaryEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CountDiaryEntries(ctx context.Context, userID int64, startDate, endDate *time.Time) (int, error) {
	args := m.Called(ctx, userID, startDate, endDate)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemoveDiaryEntry(ctx context.Context, id, userID int64) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, provider string, req aiclient.Request) (*aiclient.Response, error) {
	args := m.Called(ctx, provider, req)
	if r := args.Get(0); r != nil {
		return r.(*aiclient.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var entryDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func sufficientMessages() []models.Message {
	content := strings.Repeat("오늘 있었던 일을 자세히 이야기했어요 ", 3)
	return []models.Message{
		{Role: models.MessageRoleAI, Content: "오늘 하루 어떠셨어요?"},
		{Role: models.MessageRoleUser, Content: content},
		{Role: models.MessageRoleUser, Content: content},
		{Role: models.MessageRoleUser, Content: content},
	}
}

func TestGenerate_Success(t *testing.T) {
	repo := new(MockRepository)
	gateway := new(MockGateway)
	publisher := new(MockPublisher)

	conv := &models.Conversation{ID: 42, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).Return(conv, nil)
	repo.On("ListMessages", mock.Anything, int64(42)).Return(sufficientMessages(), nil)
	repo.On("GetProfile", mock.Anything, int64(1)).Return(nil, nil)

	// Content, mood and summary calls all go to the fixed provider.
	gateway.On("Generate", mock.Anything, models.ProviderClaude, mock.MatchedBy(func(req aiclient.Request) bool {
		return req.MaxTokens == 2000
	})).Return(&aiclient.Response{Text: "2025년 6월 1일 일요일\n오늘은 알찬 하루였다."}, nil).Once()
	gateway.On("Generate", mock.Anything, models.ProviderClaude, mock.MatchedBy(func(req aiclient.Request) bool {
		return req.MaxTokens == moodMaxTokens
	})).Return(&aiclient.Response{Text: "긍정적\n"}, nil).Once()
	gateway.On("Generate", mock.Anything, models.ProviderClaude, mock.MatchedBy(func(req aiclient.Request) bool {
		return req.MaxTokens == summaryMaxTokens
	})).Return(&aiclient.Response{Text: "알찬 하루를 보냈다."}, nil).Once()

	repo.On("CreateDiaryEntry", mock.Anything, mock.MatchedBy(func(entry models.DiaryEntry) bool {
		return entry.UserID == 1 &&
			*entry.ConversationID == 42 &&
			*entry.Mood == "긍정적" &&
			*entry.Summary == "알찬 하루를 보냈다."
	})).Return(int64(5), nil)
	repo.On("CompleteConversation", mock.Anything, int64(42)).Return(int64(1), nil)
	publisher.On("Publish", rabbitmq.RoutingKeyDiaryGenerated, mock.Anything).Return(nil)
	repo.On("GetDiaryEntry", mock.Anything, int64(5), int64(1)).
		Return(&models.DiaryEntry{ID: 5, UserID: 1, Title: "하루 기록"}, nil)

	service := New(discardLogger(), repo, gateway, publisher)
	entry, err := service.Generate(context.Background(), 1, models.GenerateDiaryRequest{
		ConversationID: 42,
		Title:          "하루 기록",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), entry.ID)
	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestGenerate_InsufficientConversation(t *testing.T) {
	repo := new(MockRepository)
	gateway := new(MockGateway)

	conv := &models.Conversation{ID: 42, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).Return(conv, nil)
	repo.On("ListMessages", mock.Anything, int64(42)).Return([]models.Message{
		{Role: models.MessageRoleAI, Content: "오늘 하루 어떠셨어요?"},
		{Role: models.MessageRoleUser, Content: "그냥 그랬어요"},
	}, nil)

	service := New(discardLogger(), repo, gateway, nil)
	_, err := service.Generate(context.Background(), 1, models.GenerateDiaryRequest{
		ConversationID: 42,
		Title:          "하루 기록",
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeInsufficientConversation, appErr.Code)
	assert.Equal(t, 1, appErr.Details["message_count"])
	assert.Equal(t, 3, appErr.Details["required_message_count"])
	gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_NoMessages(t *testing.T) {
	repo := new(MockRepository)
	conv := &models.Conversation{ID: 42, UserID: 1, EntryDate: entryDate}
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).Return(conv, nil)
	repo.On("ListMessages", mock.Anything, int64(42)).Return([]models.Message{}, nil)

	service := New(discardLogger(), repo, new(MockGateway), nil)
	_, err := service.Generate(context.Background(), 1, models.GenerateDiaryRequest{ConversationID: 42, Title: "제목"})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeConversationNoMessages, appErr.Code)
}

func TestGenerate_MoodAndSummaryFallbacks(t *testing.T) {
	repo := new(MockRepository)
	gateway := new(MockGateway)

	conv := &models.Conversation{ID: 42, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).Return(conv, nil)
	repo.On("ListMessages", mock.Anything, int64(42)).Return(sufficientMessages(), nil)
	repo.On("GetProfile", mock.Anything, int64(1)).Return(nil, nil)

	gateway.On("Generate", mock.Anything, models.ProviderClaude, mock.MatchedBy(func(req aiclient.Request) bool {
		return req.MaxTokens == 2000
	})).Return(&aiclient.Response{Text: "오늘의 일기"}, nil).Once()
	// Mood and summary calls fail; generation still succeeds.
	gateway.On("Generate", mock.Anything, models.ProviderClaude, mock.Anything).
		Return(nil, errors.New("upstream error")).Twice()

	repo.On("CreateDiaryEntry", mock.Anything, mock.MatchedBy(func(entry models.DiaryEntry) bool {
		return *entry.Mood == DefaultMood && entry.Summary == nil
	})).Return(int64(5), nil)
	repo.On("CompleteConversation", mock.Anything, int64(42)).Return(int64(1), nil)
	repo.On("GetDiaryEntry", mock.Anything, int64(5), int64(1)).
		Return(&models.DiaryEntry{ID: 5, UserID: 1}, nil)

	service := New(discardLogger(), repo, gateway, nil)
	_, err := service.Generate(context.Background(), 1, models.GenerateDiaryRequest{
		ConversationID: 42,
		Title:          "하루 기록",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGenerate_ConversationNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetConversation", mock.Anything, int64(99), int64(1)).Return(nil, nil)

	service := New(discardLogger(), repo, new(MockGateway), nil)
	_, err := service.Generate(context.Background(), 1, models.GenerateDiaryRequest{ConversationID: 99, Title: "제목"})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeConversationNotFound, appErr.Code)
}

func TestGetByDate_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetDiaryEntryByDate", mock.Anything, int64(1), entryDate).Return(nil, nil)

	service := New(discardLogger(), repo, new(MockGateway), nil)
	_, err := service.GetByDate(context.Background(), 1, entryDate)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeDiaryNotFound, appErr.Code)
}

func TestDelete_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("RemoveDiaryEntry", mock.Anything, int64(9), int64(1)).Return(int64(0), nil)

	service := New(discardLogger(), repo, new(MockGateway), nil)
	err := service.Delete(context.Background(), 1, 9)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeDiaryNotFound, appErr.Code)
}
