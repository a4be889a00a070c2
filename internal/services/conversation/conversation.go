// Package conversation manages diary chat sessions: starting them,
// relaying messages to the AI and completing them.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/services/prompts"
	"github.com/overmind-app/overmind/internal/services/quality"
)

// DefaultGreeting opens a conversation when the client sends no initial
// message and the AI greeting call fails.
const DefaultGreeting = "오늘 하루 어떠셨어요?"

const (
	replyMaxTokens   = 500
	replyTemperature = 0.8
	replyTimeout     = 30 * time.Second

	greetingMaxTokens = 100
	greetingTimeout   = 10 * time.Second
)

// Repository is the storage contract the conversation service needs.
type Repository interface {
	CreateConversation(ctx context.Context, userID int64, entryDate time.Time) (int64, error)
	GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error)
	GetActiveConversation(ctx context.Context, userID int64, entryDate time.Time) (*models.Conversation, error)
	CompleteConversation(ctx context.Context, id int64) (int64, error)
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
}

// ModelSelector resolves the provider and model for a user's AI call.
type ModelSelector interface {
	SelectForUser(ctx context.Context, userID int64) (provider, model string, err error)
}

// AIGateway is the outbound AI call contract.
type AIGateway interface {
	Generate(ctx context.Context, provider string, req aiclient.Request) (*aiclient.Response, error)
}

// Service implements the conversation flows.
type Service struct {
	log      *slog.Logger
	repo     Repository
	selector ModelSelector
	ai       AIGateway
}

// New creates a conversation service.
func New(log *slog.Logger, repo Repository, selector ModelSelector, ai AIGateway) *Service {
	return &Service{log: log, repo: repo, selector: selector, ai: ai}
}

// Start opens a conversation for a date. If an active conversation already
// exists it is returned unchanged, unless forceNew is set, in which case
// the stale one is completed and a fresh one created. The returned bool
// reports whether a new conversation was created.
func (s *Service) Start(ctx context.Context, userID int64, entryDate time.Time, initialMessage string, forceNew bool) (*models.Conversation, bool, error) {
	const op = "conversation.Start"

	existing, err := s.repo.GetActiveConversation(ctx, userID, entryDate)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		if !forceNew {
			existing.Messages, err = s.repo.ListMessages(ctx, existing.ID)
			if err != nil {
				return nil, false, fmt.Errorf("%s: %w", op, err)
			}
			return existing, false, nil
		}
		if _, err = s.repo.CompleteConversation(ctx, existing.ID); err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("superseded active conversation",
			slog.Int64("conversation_id", existing.ID),
			slog.Int64("user_id", userID))
	}

	convID, err := s.repo.CreateConversation(ctx, userID, entryDate)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	greeting := initialMessage
	if greeting == "" {
		greeting = s.greet(ctx, userID, entryDate)
	}
	first, err := s.repo.CreateMessage(ctx, models.Message{
		ConversationID: convID,
		Role:           models.MessageRoleAI,
		Content:        greeting,
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	conv, err := s.repo.GetConversation(ctx, convID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	conv.Messages = []models.Message{*first}
	return conv, true, nil
}

// greet asks the user's selected model for a date-aware opening line.
// Any failure falls back to the fixed greeting: starting a conversation
// must not depend on the AI being reachable.
func (s *Service) greet(ctx context.Context, userID int64, entryDate time.Time) string {
	provider, model, err := s.selector.SelectForUser(ctx, userID)
	if err != nil {
		s.log.Warn("greeting model selection failed", sl.Err(err))
		return DefaultGreeting
	}

	callCtx, cancel := context.WithTimeout(ctx, greetingTimeout)
	defer cancel()
	resp, err := s.ai.Generate(callCtx, provider, aiclient.Request{
		Model:       model,
		Prompt:      prompts.InitialGreeting(entryDate, time.Now()),
		MaxTokens:   greetingMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		s.log.Warn("greeting generation failed", sl.Err(err))
		return DefaultGreeting
	}
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text
	}
	return DefaultGreeting
}

// GetActive returns the active conversation for a date with its messages.
func (s *Service) GetActive(ctx context.Context, userID int64, entryDate time.Time) (*models.Conversation, error) {
	const op = "conversation.GetActive"

	conv, err := s.repo.GetActiveConversation(ctx, userID, entryDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conv == nil {
		return nil, apperr.NotFound(apperr.CodeConversationNotFound,
			"해당 날짜에 진행 중인 대화가 없습니다.",
			map[string]any{"entry_date": entryDate.Format("2006-01-02")})
	}
	conv.Messages, err = s.repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return conv, nil
}

// SendMessage persists a user message, asks the selected AI model for a
// reply and persists it. The returned quality report reflects the
// conversation including the new user message; it is informational and
// not stored.
func (s *Service) SendMessage(ctx context.Context, userID, conversationID int64, req models.SendMessageRequest) (*models.Message, quality.Report, error) {
	const op = "conversation.SendMessage"

	conv, err := s.repo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	if conv == nil {
		return nil, quality.Report{}, apperr.NotFound(apperr.CodeConversationNotFound,
			"대화를 찾을 수 없습니다.", map[string]any{"conversation_id": conversationID})
	}
	if conv.Status != models.ConversationActive {
		return nil, quality.Report{}, apperr.BadRequest(apperr.CodeConversationNotActive,
			"이미 종료된 대화입니다.", map[string]any{"conversation_id": conversationID})
	}

	if _, err = s.repo.CreateMessage(ctx, models.Message{
		ConversationID: conversationID,
		Role:           models.MessageRoleUser,
		Content:        req.Content,
		ImageURL:       req.ImageURL,
	}); err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	messages, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	report := quality.Evaluate(messages, models.LengthNormal)

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	provider, model, err := s.selector.SelectForUser(ctx, userID)
	if err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	// History excludes the message just sent; the prompt carries it
	// separately as the latest user message.
	history := messages[:len(messages)-1]
	prompt := prompts.Conversation(req.Content, history, profile) +
		prompts.QualityGuidance(report.Level)

	callCtx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	resp, err := s.ai.Generate(callCtx, provider, aiclient.Request{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	aiMessage, err := s.repo.CreateMessage(ctx, models.Message{
		ConversationID: conversationID,
		Role:           models.MessageRoleAI,
		Content:        resp.Text,
	})
	if err != nil {
		return nil, quality.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	return aiMessage, report, nil
}

// Complete marks a conversation as completed.
func (s *Service) Complete(ctx context.Context, userID, conversationID int64) (*models.Conversation, error) {
	const op = "conversation.Complete"

	conv, err := s.repo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conv == nil {
		return nil, apperr.NotFound(apperr.CodeConversationNotFound,
			"대화를 찾을 수 없습니다.", map[string]any{"conversation_id": conversationID})
	}
	if conv.Status != models.ConversationActive {
		return nil, apperr.BadRequest(apperr.CodeConversationNotActive,
			"이미 종료된 대화입니다.", map[string]any{"conversation_id": conversationID})
	}

	if _, err = s.repo.CompleteConversation(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.repo.GetConversation(ctx, conversationID, userID)
}
