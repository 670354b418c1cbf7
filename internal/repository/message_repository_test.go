package repository

import (
	"context"
	"fmt"
	"testing"

	"chat-relay-demo/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database so every pooled connection sees the same
	// in-memory store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Message{}, &models.APIKey{}))
	return db
}

func newMessage(messageID, sessionID, sender, content, timestamp string) *models.Message {
	return &models.Message{
		MessageID:      messageID,
		SessionID:      sessionID,
		Content:        content,
		Timestamp:      timestamp,
		Sender:         sender,
		WordCount:      1,
		CharacterCount: len(content),
		ProcessedAt:    "2023-06-15T14:30:00Z",
	}
}

func TestSaveAndListInInsertionOrder(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	// Client timestamps deliberately out of order: retrieval must follow
	// commit order, not timestamp order.
	require.NoError(t, repo.Save(ctx, newMessage("m1", "s1", "user", "first", "2023-06-15T14:30:00Z")))
	require.NoError(t, repo.Save(ctx, newMessage("m2", "s1", "system", "second", "2023-06-15T10:00:00Z")))
	require.NoError(t, repo.Save(ctx, newMessage("m3", "s1", "user", "third", "2023-06-15T12:00:00Z")))

	messages, err := repo.ListBySession(ctx, "s1", 10, 0, "")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "m1", messages[0].MessageID)
	assert.Equal(t, "m2", messages[1].MessageID)
	assert.Equal(t, "m3", messages[2].MessageID)
}

func TestSaveDuplicateMessageID(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newMessage("m1", "s1", "user", "original", "2023-06-15T14:30:00Z")))

	err := repo.Save(ctx, newMessage("m1", "s2", "system", "imposter", "2023-06-15T15:00:00Z"))
	assert.ErrorIs(t, err, ErrDuplicateMessageID)

	// Only the first insert survived, and the failed one left nothing behind.
	count, err := repo.CountBySession(ctx, "s1", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	count, err = repo.CountBySession(ctx, "s2", "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestListPaginationAndSenderFilter(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		sender := models.SenderUser
		if i%2 == 1 {
			sender = models.SenderSystem
		}
		msg := newMessage(fmt.Sprintf("m%d", i), "s1", sender, fmt.Sprintf("msg %d", i), "2023-06-15T14:30:00Z")
		require.NoError(t, repo.Save(ctx, msg))
	}

	page, err := repo.ListBySession(ctx, "s1", 2, 1, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "m1", page[0].MessageID)
	assert.Equal(t, "m2", page[1].MessageID)

	users, err := repo.ListBySession(ctx, "s1", 10, 0, models.SenderUser)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	count, err := repo.CountBySession(ctx, "s1", models.SenderSystem)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestListIsSessionScoped(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newMessage("m1", "s1", "user", "mine", "2023-06-15T14:30:00Z")))
	require.NoError(t, repo.Save(ctx, newMessage("m2", "s2", "user", "other", "2023-06-15T14:30:00Z")))

	messages, err := repo.ListBySession(ctx, "s1", 10, 0, "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].MessageID)
}

func TestSearchFilters(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newMessage("m1", "s1", "user", "hello world", "2023-06-15T10:00:00Z")))
	require.NoError(t, repo.Save(ctx, newMessage("m2", "s1", "system", "hello again", "2023-06-15T12:00:00Z")))
	require.NoError(t, repo.Save(ctx, newMessage("m3", "s1", "user", "goodbye", "2023-06-15T14:00:00Z")))

	// Substring match on content.
	results, err := repo.Search(ctx, "s1", SearchFilters{Query: "hello"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Empty query matches everything.
	results, err = repo.Search(ctx, "s1", SearchFilters{}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Inclusive timestamp bounds, compared as strings.
	results, err = repo.Search(ctx, "s1", SearchFilters{
		StartDate: "2023-06-15T12:00:00Z",
		EndDate:   "2023-06-15T14:00:00Z",
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "m2", results[0].MessageID)
	assert.Equal(t, "m3", results[1].MessageID)

	// All filters AND together.
	results, err = repo.Search(ctx, "s1", SearchFilters{
		Query:  "hello",
		Sender: models.SenderUser,
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].MessageID)

	total, err := repo.CountSearch(ctx, "s1", SearchFilters{Query: "hello"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestSearchNoMatches(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newMessage("m1", "s1", "user", "hello", "2023-06-15T10:00:00Z")))

	results, err := repo.Search(ctx, "s1", SearchFilters{Query: "absent"}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	total, err := repo.CountSearch(ctx, "s1", SearchFilters{Query: "absent"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
