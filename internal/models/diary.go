package models

import "time"

// Conversation statuses. The transition is one-way: active -> completed.
const (
	ConversationActive    = "active"
	ConversationCompleted = "completed"
)

// Message roles.
const (
	MessageRoleAI   = "ai"
	MessageRoleUser = "user"
)

// Diary length types with their quality-threshold multipliers and token
// budgets.
const (
	LengthSummary  = "summary"
	LengthNormal   = "normal"
	LengthDetailed = "detailed"
)

// Conversation is one diary chat session bound to a calendar date.
type Conversation struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	EntryDate time.Time  `json:"entry_date"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Messages  []Message  `json:"messages,omitempty"`
}

// Message is a single turn inside a conversation; append-only.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"` // ai or user
	Content        string    `json:"content"`
	ImageURL       *string   `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DiaryEntry is the artifact generated from a completed conversation.
// ConversationID is nullable: deleting the conversation keeps the diary.
type DiaryEntry struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ConversationID *int64    `json:"conversation_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	EntryDate      time.Time `json:"entry_date"`
	LengthType     string    `json:"length_type"`
	Mood           *string   `json:"mood"`
	Summary        *string   `json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
}

// StartConversationRequest is the JSON body of POST /diary/api/conversations.
type StartConversationRequest struct {
	EntryDate      string `json:"entry_date" validate:"required"`
	InitialMessage string `json:"initial_message"`
	ForceNew       bool   `json:"force_new"`
}

// SendMessageRequest is the JSON body of
// POST /diary/api/conversations/{id}/messages.
type SendMessageRequest struct {
	Content  string  `json:"content" validate:"required,max=4000"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=500"`
}

// GenerateDiaryRequest is the JSON body of POST /diary/api/diaries.
type GenerateDiaryRequest struct {
	ConversationID int64  `json:"conversation_id" validate:"required"`
	Title          string `json:"title" validate:"required,max=200"`
	LengthType     string `json:"length_type" validate:"omitempty,oneof=summary normal detailed"`
}
