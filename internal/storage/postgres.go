// Package storage implements the PostgreSQL persistence layer for users,
// profiles, subscriptions, conversations, messages, diary entries and AI
// model priorities. Lookup methods return (nil, nil) when no row matches,
// mirroring optional relations; all other failures are wrapped with the
// operation name.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	// pgx driver registration for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage wraps the database handle and implements the repository methods.
type Storage struct {
	DB *sql.DB
}

// New opens a PostgreSQL connection and verifies it with a ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady verifies the schema has been migrated.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'conversations'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table conversations missing or query error: %w", err)
	}
	return nil
}
