package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/overmind-app/overmind/internal/models"
)

// CreateDiaryEntry inserts a diary entry and returns its ID.
func (s *Storage) CreateDiaryEntry(ctx context.Context, entry models.DiaryEntry) (int64, error) {
	const op = "storage.CreateDiaryEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO diary_entries (user_id, conversation_id, title, content,
			      entry_date, length_type, mood, summary)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		entry.UserID, entry.ConversationID, entry.Title, entry.Content,
		entry.EntryDate, entry.LengthType, entry.Mood, entry.Summary).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetDiaryEntry returns a diary entry owned by the user, or (nil, nil)
// when absent.
func (s *Storage) GetDiaryEntry(ctx context.Context, id, userID int64) (*models.DiaryEntry, error) {
	const op = "storage.GetDiaryEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, conversation_id, title, content, entry_date,
			      length_type, mood, summary, created_at
			  FROM diary_entries
			  WHERE id = $1 AND user_id = $2`
	return s.scanDiaryEntry(s.DB.QueryRowContext(ctx, query, id, userID), op)
}

// GetDiaryEntryByDate returns the diary entry for a date, or (nil, nil)
// when absent.
func (s *Storage) GetDiaryEntryByDate(ctx context.Context, userID int64, entryDate time.Time) (*models.DiaryEntry, error) {
	const op = "storage.GetDiaryEntryByDate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, conversation_id, title, content, entry_date,
			      length_type, mood, summary, created_at
			  FROM diary_entries
			  WHERE user_id = $1 AND entry_date = $2
			  ORDER BY created_at DESC
			  LIMIT 1`
	return s.scanDiaryEntry(s.DB.QueryRowContext(ctx, query, userID, entryDate), op)
}

// ListDiaryEntries returns the user's entries inside the optional date
// range, newest entry_date first, with pagination.
func (s *Storage) ListDiaryEntries(ctx context.Context, userID int64, startDate, endDate *time.Time, limit, offset int) ([]*models.DiaryEntry, error) {
	const op = "storage.ListDiaryEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, conversation_id, title, content, entry_date,
			      length_type, mood, summary, created_at
			  FROM diary_entries
			  WHERE user_id = $1
			    AND ($2::DATE IS NULL OR entry_date >= $2)
			    AND ($3::DATE IS NULL OR entry_date <= $3)
			  ORDER BY entry_date DESC
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, userID, startDate, endDate, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DiaryEntry
	for rows.Next() {
		var e models.DiaryEntry
		var conversationID sql.NullInt64
		if err = rows.Scan(&e.ID, &e.UserID, &conversationID, &e.Title, &e.Content,
			&e.EntryDate, &e.LengthType, &e.Mood, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if conversationID.Valid {
			e.ConversationID = &conversationID.Int64
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountDiaryEntries returns the number of entries inside the optional
// date range.
func (s *Storage) CountDiaryEntries(ctx context.Context, userID int64, startDate, endDate *time.Time) (int, error) {
	const op = "storage.CountDiaryEntries"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM diary_entries
			  WHERE user_id = $1
			    AND ($2::DATE IS NULL OR entry_date >= $2)
			    AND ($3::DATE IS NULL OR entry_date <= $3)`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, userID, startDate, endDate).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// RemoveDiaryEntry deletes a diary entry owned by the user and returns the
// number of affected rows.
func (s *Storage) RemoveDiaryEntry(ctx context.Context, id, userID int64) (int64, error) {
	const op = "storage.RemoveDiaryEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM diary_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

func (s *Storage) scanDiaryEntry(row *sql.Row, op string) (*models.DiaryEntry, error) {
	e := &models.DiaryEntry{}
	var conversationID sql.NullInt64
	err := row.Scan(&e.ID, &e.UserID, &conversationID, &e.Title, &e.Content,
		&e.EntryDate, &e.LengthType, &e.Mood, &e.Summary, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conversationID.Valid {
		e.ConversationID = &conversationID.Int64
	}
	return e, nil
}
