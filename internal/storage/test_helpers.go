package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/overmind-app/overmind/internal/models"
)

// TestDataFactory creates rows used as fixtures by the integration tests.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory creates a factory over the given storage.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser inserts a test user and returns its ID.
func (f *TestDataFactory) CreateUser(t *testing.T, email, hashedPassword, role string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, hashed_password, role)
		VALUES ($1, $2, $3) RETURNING id`,
		email, hashedPassword, role).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription inserts a subscription row for a user.
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID int64, tier string) {
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions (user_id, tier) VALUES ($1, $2)`,
		userID, tier)
	require.NoError(t, err)
}

// CreateProfileWithCountry inserts a profile row carrying a country code.
func (f *TestDataFactory) CreateProfileWithCountry(t *testing.T, userID int64, country string) {
	_, err := f.storage.DB.Exec(`INSERT INTO profiles (user_id, country) VALUES ($1, $2)`,
		userID, country)
	require.NoError(t, err)
}

// CreateConversationWithMessages inserts a conversation with alternating
// ai/user messages and returns the conversation ID.
func (f *TestDataFactory) CreateConversationWithMessages(t *testing.T, userID int64, entryDate time.Time, userContents []string) int64 {
	ctx := context.Background()
	convID, err := f.storage.CreateConversation(ctx, userID, entryDate)
	require.NoError(t, err)

	_, err = f.storage.CreateMessage(ctx, models.Message{
		ConversationID: convID,
		Role:           models.MessageRoleAI,
		Content:        "오늘 하루 어떠셨어요?",
	})
	require.NoError(t, err)

	for _, content := range userContents {
		_, err = f.storage.CreateMessage(ctx, models.Message{
			ConversationID: convID,
			Role:           models.MessageRoleUser,
			Content:        content,
		})
		require.NoError(t, err)
	}
	return convID
}

// setupTestDatabase starts a disposable PostgreSQL container, applies the
// schema and returns a ready Storage with a cleanup function.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	// Simple protocol lets the multi-statement schema script run in one Exec.
	connStr, err := container.ConnectionString(ctx, "sslmode=disable", "default_query_exec_mode=simple_protocol")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil && storage.DB.Ping() == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	schema, err := os.ReadFile("../../migrations/000001_init.up.sql")
	require.NoError(t, err, "failed to read schema")

	_, err = storage.DB.Exec(string(schema))
	require.NoError(t, err, "failed to apply schema")

	cleanup := func() {
		_ = storage.DB.Close()
		_ = container.Terminate(ctx)
	}
	return storage, cleanup
}
