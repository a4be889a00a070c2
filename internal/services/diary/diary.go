// Package diary turns completed conversations into diary entries and
// manages the stored entries.
package diary

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
	"github.com/overmind-app/overmind/internal/rabbitmq"
	"github.com/overmind-app/overmind/internal/services/prompts"
	"github.com/overmind-app/overmind/internal/services/quality"
)

// Creative writing always goes to one fixed provider, regardless of the
// user's country or tier. The selector is bypassed on purpose here.
const (
	generationProvider = models.ProviderClaude
	generationModel    = "claude-haiku-4-5"
)

// DefaultMood applies when mood analysis fails; it is non-critical.
const DefaultMood = "중립"

const (
	contentTimeout    = 60 * time.Second
	enrichmentTimeout = 15 * time.Second

	moodMaxTokens    = 50
	summaryMaxTokens = 200
)

// tokenBudget maps length types to generation budgets.
var tokenBudget = map[string]int{
	models.LengthSummary:  500,
	models.LengthNormal:   2000,
	models.LengthDetailed: 4000,
}

// Repository is the storage contract the diary service needs.
type Repository interface {
	GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error)
	CompleteConversation(ctx context.Context, id int64) (int64, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	CreateDiaryEntry(ctx context.Context, entry models.DiaryEntry) (int64, error)
	GetDiaryEntry(ctx context.Context, id, userID int64) (*models.DiaryEntry, error)
	GetDiaryEntryByDate(ctx context.Context, userID int64, entryDate time.Time) (*models.DiaryEntry, error)
	ListDiaryEntries(ctx context.Context, userID int64, startDate, endDate *time.Time, limit, offset int) ([]*models.DiaryEntry, error)
	CountDiaryEntries(ctx context.Context, userID int64, startDate, endDate *time.Time) (int, error)
	RemoveDiaryEntry(ctx context.Context, id, userID int64) (int64, error)
}

// AIGateway is the outbound AI call contract.
type AIGateway interface {
	Generate(ctx context.Context, provider string, req aiclient.Request) (*aiclient.Response, error)
}

// EventPublisher emits domain events after diary creation. May be nil.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Service implements diary generation and CRUD.
type Service struct {
	log       *slog.Logger
	repo      Repository
	ai        AIGateway
	publisher EventPublisher
}

// New creates a diary service. publisher may be nil when no broker is
// configured.
func New(log *slog.Logger, repo Repository, ai AIGateway, publisher EventPublisher) *Service {
	return &Service{log: log, repo: repo, ai: ai, publisher: publisher}
}

// Generate builds a diary entry from a conversation. The conversation must
// exist, have messages and pass the quality gate for the requested length
// type. On success the conversation is marked completed.
func (s *Service) Generate(ctx context.Context, userID int64, req models.GenerateDiaryRequest) (*models.DiaryEntry, error) {
	const op = "diary.Generate"

	lengthType := req.LengthType
	if lengthType == "" {
		lengthType = models.LengthNormal
	}

	conv, err := s.repo.GetConversation(ctx, req.ConversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conv == nil {
		return nil, apperr.NotFound(apperr.CodeConversationNotFound,
			"대화를 찾을 수 없습니다.", map[string]any{"conversation_id": req.ConversationID})
	}

	messages, err := s.repo.ListMessages(ctx, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(messages) == 0 {
		return nil, apperr.BadRequest(apperr.CodeConversationNoMessages,
			"대화 내용이 없어 일기를 생성할 수 없습니다.",
			map[string]any{"conversation_id": req.ConversationID})
	}

	report := quality.Evaluate(messages, lengthType)
	if !report.IsSufficient {
		return nil, apperr.BadRequest(apperr.CodeInsufficientConversation,
			"대화 내용이 부족하여 일기를 생성할 수 없습니다.",
			map[string]any{
				"message_count":          report.MessageCount,
				"required_message_count": report.RequiredMessageCount,
				"total_length":           report.TotalLength,
				"required_total_length":  report.RequiredTotalLength,
				"feedback":               report.Feedback,
			})
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	content, err := s.generateContent(ctx, messages, lengthType, conv.EntryDate, profile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mood := s.analyzeMood(ctx, content)
	summary := s.summarize(ctx, content)

	entry := models.DiaryEntry{
		UserID:         userID,
		ConversationID: &conv.ID,
		Title:          req.Title,
		Content:        content,
		EntryDate:      conv.EntryDate,
		LengthType:     lengthType,
		Mood:           &mood,
		Summary:        summary,
	}
	entry.ID, err = s.repo.CreateDiaryEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = s.repo.CompleteConversation(ctx, conv.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publishGenerated(userID, &entry)

	created, err := s.repo.GetDiaryEntry(ctx, entry.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (s *Service) generateContent(ctx context.Context, messages []models.Message, lengthType string, entryDate time.Time, profile *models.Profile) (string, error) {
	prompt := prompts.DiaryGeneration(messages, lengthType, entryDate, profile)

	callCtx, cancel := context.WithTimeout(ctx, contentTimeout)
	defer cancel()
	resp, err := s.ai.Generate(callCtx, generationProvider, aiclient.Request{
		Model:       generationModel,
		Prompt:      prompt,
		MaxTokens:   tokenBudget[lengthType],
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// analyzeMood classifies the diary mood; failures fall back to the default
// since mood is an enrichment, not a required field.
func (s *Service) analyzeMood(ctx context.Context, content string) string {
	callCtx, cancel := context.WithTimeout(ctx, enrichmentTimeout)
	defer cancel()
	resp, err := s.ai.Generate(callCtx, generationProvider, aiclient.Request{
		Model:       generationModel,
		Prompt:      prompts.MoodAnalysis(content),
		MaxTokens:   moodMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		s.log.Warn("mood analysis failed", sl.Err(err))
		return DefaultMood
	}
	return strings.TrimSpace(resp.Text)
}

// summarize produces the short summary; failures leave it unset.
func (s *Service) summarize(ctx context.Context, content string) *string {
	callCtx, cancel := context.WithTimeout(ctx, enrichmentTimeout)
	defer cancel()
	resp, err := s.ai.Generate(callCtx, generationProvider, aiclient.Request{
		Model:       generationModel,
		Prompt:      prompts.Summary(content),
		MaxTokens:   summaryMaxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		s.log.Warn("summary generation failed", sl.Err(err))
		return nil
	}
	summary := strings.TrimSpace(resp.Text)
	return &summary
}

func (s *Service) publishGenerated(userID int64, entry *models.DiaryEntry) {
	if s.publisher == nil {
		return
	}
	mood := ""
	if entry.Mood != nil {
		mood = *entry.Mood
	}
	err := s.publisher.Publish(rabbitmq.RoutingKeyDiaryGenerated, rabbitmq.DiaryGeneratedEvent{
		UserID:    userID,
		DiaryID:   entry.ID,
		EntryDate: entry.EntryDate.Format("2006-01-02"),
		Mood:      mood,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to publish diary.generated event", sl.Err(err))
	}
}

// Get returns one diary entry of a user.
func (s *Service) Get(ctx context.Context, userID, diaryID int64) (*models.DiaryEntry, error) {
	const op = "diary.Get"

	entry, err := s.repo.GetDiaryEntry(ctx, diaryID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entry == nil {
		return nil, apperr.NotFound(apperr.CodeDiaryNotFound,
			"일기를 찾을 수 없습니다.", map[string]any{"diary_id": diaryID})
	}
	return entry, nil
}

// GetByDate returns the diary entry for a calendar date.
func (s *Service) GetByDate(ctx context.Context, userID int64, entryDate time.Time) (*models.DiaryEntry, error) {
	const op = "diary.GetByDate"

	entry, err := s.repo.GetDiaryEntryByDate(ctx, userID, entryDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entry == nil {
		return nil, apperr.NotFound(apperr.CodeDiaryNotFound,
			"해당 날짜의 일기가 없습니다.",
			map[string]any{"entry_date": entryDate.Format("2006-01-02")})
	}
	return entry, nil
}

// List returns a page of diary entries plus the total count for the
// optional date range.
func (s *Service) List(ctx context.Context, userID int64, startDate, endDate *time.Time, limit, offset int) ([]*models.DiaryEntry, int, error) {
	const op = "diary.List"

	entries, err := s.repo.ListDiaryEntries(ctx, userID, startDate, endDate, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountDiaryEntries(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return entries, total, nil
}

// Delete removes a diary entry.
func (s *Service) Delete(ctx context.Context, userID, diaryID int64) error {
	const op = "diary.Delete"

	affected, err := s.repo.RemoveDiaryEntry(ctx, diaryID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return apperr.NotFound(apperr.CodeDiaryNotFound,
			"일기를 찾을 수 없습니다.", map[string]any{"diary_id": diaryID})
	}
	return nil
}
