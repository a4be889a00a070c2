package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/overmind-app/overmind/internal/models"
)

// CreateConversation inserts a new active conversation and returns its ID.
func (s *Storage) CreateConversation(ctx context.Context, userID int64, entryDate time.Time) (int64, error) {
	const op = "storage.CreateConversation"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO conversations (user_id, entry_date, status)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query, userID, entryDate, models.ConversationActive).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetConversation returns a conversation owned by the user, or (nil, nil)
// when absent.
func (s *Storage) GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error) {
	const op = "storage.GetConversation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, entry_date, status, started_at, ended_at
			  FROM conversations
			  WHERE id = $1 AND user_id = $2`
	c := &models.Conversation{}
	var endedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&c.ID, &c.UserID, &c.EntryDate, &c.Status, &c.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endedAt.Valid {
		c.EndedAt = &endedAt.Time
	}
	return c, nil
}

// GetActiveConversation returns the user's active conversation for a date,
// or (nil, nil) when none exists.
func (s *Storage) GetActiveConversation(ctx context.Context, userID int64, entryDate time.Time) (*models.Conversation, error) {
	const op = "storage.GetActiveConversation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, entry_date, status, started_at, ended_at
			  FROM conversations
			  WHERE user_id = $1 AND entry_date = $2 AND status = $3
			  ORDER BY started_at DESC
			  LIMIT 1`
	c := &models.Conversation{}
	var endedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userID, entryDate, models.ConversationActive).Scan(
		&c.ID, &c.UserID, &c.EntryDate, &c.Status, &c.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endedAt.Valid {
		c.EndedAt = &endedAt.Time
	}
	return c, nil
}

// CompleteConversation marks a conversation completed and stamps ended_at.
// Returns the number of affected rows.
func (s *Storage) CompleteConversation(ctx context.Context, id int64) (int64, error) {
	const op = "storage.CompleteConversation"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE conversations
			  SET status = $1, ended_at = NOW()
			  WHERE id = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query,
		models.ConversationCompleted, id, models.ConversationActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// CreateMessage appends a message to a conversation and returns it with
// its assigned ID and timestamp.
func (s *Storage) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	const op = "storage.CreateMessage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO messages (conversation_id, role, content, image_url)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`
	err := s.DB.QueryRowContext(ctx, query,
		msg.ConversationID, msg.Role, msg.Content, msg.ImageURL).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &msg, nil
}

// ListMessages returns all messages of a conversation in send order.
func (s *Storage) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	const op = "storage.ListMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, conversation_id, role, content, image_url, created_at
			  FROM messages
			  WHERE conversation_id = $1
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Message
	for rows.Next() {
		var m models.Message
		if err = rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content,
			&m.ImageURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
