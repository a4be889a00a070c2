package conversation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateConversation(ctx context.Context, userID int64, entryDate time.Time) (int64, error) {
	args := m.Called(ctx, userID, entryDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error) {
	args := m.Called(ctx, id, userID)
	if c := args.Get(0); c != nil {
		return c.(*models.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetActiveConversation(ctx context.Context, userID int64, entryDate time.Time) (*models.Conversation, error) {
	args := m.Called(ctx, userID, entryDate)
	if c := args.Get(0); c != nil {
		return c.(*models.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CompleteConversation(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	args := m.Called(ctx, msg)
	if res := args.Get(0); res != nil {
		return res.(*models.Message), args.Error(1)
	}
	return nil, args.Error(1)
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

type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectForUser(ctx context.Context, userID int64) (string, string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.String(1), args.Error(2)
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var entryDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestStart_IdempotentWithoutForceNew(t *testing.T) {
	repo := new(MockRepository)
	existing := &models.Conversation{ID: 42, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}
	repo.On("GetActiveConversation", mock.Anything, int64(1), entryDate).Return(existing, nil)
	repo.On("ListMessages", mock.Anything, int64(42)).Return([]models.Message{
		{ID: 1, Role: models.MessageRoleAI, Content: DefaultGreeting},
	}, nil)

	service := New(discardLogger(), repo, new(MockSelector), new(MockGateway))
	conv, created, err := service.Start(context.Background(), 1, entryDate, "", false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(42), conv.ID)
	repo.AssertNotCalled(t, "CreateConversation", mock.Anything, mock.Anything, mock.Anything)
}

func TestStart_ForceNewSupersedesActive(t *testing.T) {
	repo := new(MockRepository)
	selector := new(MockSelector)
	gateway := new(MockGateway)

	existing := &models.Conversation{ID: 42, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}
	repo.On("GetActiveConversation", mock.Anything, int64(1), entryDate).Return(existing, nil)
	repo.On("CompleteConversation", mock.Anything, int64(42)).Return(int64(1), nil)
	repo.On("CreateConversation", mock.Anything, int64(1), entryDate).Return(int64(43), nil)
	selector.On("SelectForUser", mock.Anything, int64(1)).Return(models.ProviderOpenAI, "gpt-4o-mini", nil)
	gateway.On("Generate", mock.Anything, models.ProviderOpenAI, mock.MatchedBy(func(req aiclient.Request) bool {
		return req.MaxTokens == greetingMaxTokens
	})).Return(&aiclient.Response{Provider: models.ProviderOpenAI, Model: "gpt-4o-mini", Text: "다시 시작해볼까요? 오늘 하루 어땠어요?"}, nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.ConversationID == 43 && msg.Role == models.MessageRoleAI && msg.Content == "다시 시작해볼까요? 오늘 하루 어땠어요?"
	})).Return(&models.Message{ID: 100, ConversationID: 43, Role: models.MessageRoleAI, Content: "다시 시작해볼까요? 오늘 하루 어땠어요?"}, nil)
	repo.On("GetConversation", mock.Anything, int64(43), int64(1)).
		Return(&models.Conversation{ID: 43, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}, nil)

	service := New(discardLogger(), repo, selector, gateway)
	conv, created, err := service.Start(context.Background(), 1, entryDate, "", true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(43), conv.ID)
	assert.NotEqual(t, existing.ID, conv.ID)
	repo.AssertExpectations(t)
}

func TestStart_GreetingFallsBackOnAIFailure(t *testing.T) {
	repo := new(MockRepository)
	selector := new(MockSelector)
	gateway := new(MockGateway)

	repo.On("GetActiveConversation", mock.Anything, int64(1), entryDate).Return(nil, nil)
	repo.On("CreateConversation", mock.Anything, int64(1), entryDate).Return(int64(7), nil)
	selector.On("SelectForUser", mock.Anything, int64(1)).Return(models.ProviderClaude, "claude-haiku-4-5", nil)
	gateway.On("Generate", mock.Anything, models.ProviderClaude, mock.Anything).Return(nil,
		apperr.Service(504, apperr.CodeAIServiceTimeout, "AI service timeout", nil))
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.Content == DefaultGreeting && msg.Role == models.MessageRoleAI
	})).Return(&models.Message{ID: 1, ConversationID: 7, Role: models.MessageRoleAI, Content: DefaultGreeting}, nil)
	repo.On("GetConversation", mock.Anything, int64(7), int64(1)).
		Return(&models.Conversation{ID: 7, UserID: 1, Status: models.ConversationActive}, nil)

	service := New(discardLogger(), repo, selector, gateway)
	conv, created, err := service.Start(context.Background(), 1, entryDate, "", false)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultGreeting, conv.Messages[0].Content)
	repo.AssertExpectations(t)
}

func TestStart_CustomInitialMessage(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetActiveConversation", mock.Anything, int64(1), entryDate).Return(nil, nil)
	repo.On("CreateConversation", mock.Anything, int64(1), entryDate).Return(int64(7), nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.Content == "어제 여행은 어떠셨어요?"
	})).Return(&models.Message{ID: 1, ConversationID: 7}, nil)
	repo.On("GetConversation", mock.Anything, int64(7), int64(1)).
		Return(&models.Conversation{ID: 7, UserID: 1, Status: models.ConversationActive}, nil)

	gateway := new(MockGateway)
	service := New(discardLogger(), repo, new(MockSelector), gateway)
	_, created, err := service.Start(context.Background(), 1, entryDate, "어제 여행은 어떠셨어요?", false)
	require.NoError(t, err)
	assert.True(t, created)
	gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestSendMessage_FullFlow(t *testing.T) {
	repo := new(MockRepository)
	selector := new(MockSelector)
	gateway := new(MockGateway)

	conv := &models.Conversation{ID: 42, UserID: 1, Status: models.ConversationActive, EntryDate: entryDate}
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).Return(conv, nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.Role == models.MessageRoleUser && msg.Content == "오늘은 공원에서 산책했어요"
	})).Return(&models.Message{ID: 10}, nil).Once()
	repo.On("ListMessages", mock.Anything, int64(42)).Return([]models.Message{
		{ID: 1, Role: models.MessageRoleAI, Content: DefaultGreeting},
		{ID: 10, Role: models.MessageRoleUser, Content: "오늘은 공원에서 산책했어요"},
	}, nil)
	repo.On("GetProfile", mock.Anything, int64(1)).Return(nil, nil)
	selector.On("SelectForUser", mock.Anything, int64(1)).Return(models.ProviderOpenAI, "gpt-4o-mini", nil)
	gateway.On("Generate", mock.Anything, models.ProviderOpenAI, mock.MatchedBy(func(req aiclient.Request) bool {
		return req.Model == "gpt-4o-mini" && req.MaxTokens == replyMaxTokens
	})).Return(&aiclient.Response{Provider: models.ProviderOpenAI, Model: "gpt-4o-mini", Text: "산책 좋죠! 날씨는 어땠어요?"}, nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.Role == models.MessageRoleAI && msg.Content == "산책 좋죠! 날씨는 어땠어요?"
	})).Return(&models.Message{ID: 11, ConversationID: 42, Role: models.MessageRoleAI, Content: "산책 좋죠! 날씨는 어땠어요?"}, nil).Once()

	service := New(discardLogger(), repo, selector, gateway)
	reply, report, err := service.SendMessage(context.Background(), 1, 42, models.SendMessageRequest{
		Content: "오늘은 공원에서 산책했어요",
	})
	require.NoError(t, err)
	assert.Equal(t, "산책 좋죠! 날씨는 어땠어요?", reply.Content)
	assert.Equal(t, 1, report.MessageCount)
	assert.False(t, report.IsSufficient)
	repo.AssertExpectations(t)
}

func TestSendMessage_NotActive(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).
		Return(&models.Conversation{ID: 42, Status: models.ConversationCompleted}, nil)

	service := New(discardLogger(), repo, new(MockSelector), new(MockGateway))
	_, _, err := service.SendMessage(context.Background(), 1, 42, models.SendMessageRequest{Content: "안녕"})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeConversationNotActive, appErr.Code)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestSendMessage_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetConversation", mock.Anything, int64(99), int64(1)).Return(nil, nil)

	service := New(discardLogger(), repo, new(MockSelector), new(MockGateway))
	_, _, err := service.SendMessage(context.Background(), 1, 99, models.SendMessageRequest{Content: "안녕"})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeConversationNotFound, appErr.Code)
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetConversation", mock.Anything, int64(42), int64(1)).
		Return(&models.Conversation{ID: 42, Status: models.ConversationCompleted}, nil)

	service := New(discardLogger(), repo, new(MockSelector), new(MockGateway))
	_, err := service.Complete(context.Background(), 1, 42)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeConversationNotActive, appErr.Code)
	repo.AssertNotCalled(t, "CompleteConversation", mock.Anything, mock.Anything)
}
