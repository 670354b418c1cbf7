package repository

import (
	"context"
	"errors"

	"chat-relay-demo/backend/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateMessageID is returned by Save when the message identity key is
// already present in the store.
var ErrDuplicateMessageID = errors.New("message id already exists")

// SearchFilters narrows a history search. Zero values mean "no restriction";
// all supplied filters are ANDed together. StartDate and EndDate are compared
// against the stored timestamp string, so bounds must use the same ISO format
// as the stored values to produce chronological results.
type SearchFilters struct {
	Query     string
	StartDate string
	EndDate   string
	Sender    string
}

// MessageRepository is the persistence boundary for chat messages. Retrieval
// is always in insertion (commit) order, never client-timestamp order.
type MessageRepository interface {
	Save(ctx context.Context, message *models.Message) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int, sender string) ([]models.Message, error)
	CountBySession(ctx context.Context, sessionID string, sender string) (int64, error)
	Search(ctx context.Context, sessionID string, filters SearchFilters, limit, offset int) ([]models.Message, error)
	CountSearch(ctx context.Context, sessionID string, filters SearchFilters) (int64, error)
}

// GormMessageRepository is the gorm-backed message store.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a message repository on the given database
// handle. The handle must be opened with TranslateError enabled so duplicate
// inserts surface as gorm.ErrDuplicatedKey.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Save inserts the message in a single statement. Uniqueness of the message
// ID is enforced by the store's unique index, not by a prior existence check,
// so concurrent inserts of the same ID yield exactly one success.
func (r *GormMessageRepository) Save(ctx context.Context, message *models.Message) error {
	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateMessageID
		}
		return err
	}
	return nil
}

// ListBySession returns up to limit messages for the session in insertion
// order, skipping offset, optionally restricted to one sender.
func (r *GormMessageRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int, sender string) ([]models.Message, error) {
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if sender != "" {
		query = query.Where("sender = ?", sender)
	}

	var messages []models.Message
	err := query.Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

// CountBySession returns the total number of messages for the session,
// optionally restricted to one sender.
func (r *GormMessageRepository) CountBySession(ctx context.Context, sessionID string, sender string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("session_id = ?", sessionID)
	if sender != "" {
		query = query.Where("sender = ?", sender)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// Search returns messages matching the filters in insertion order.
func (r *GormMessageRepository) Search(ctx context.Context, sessionID string, filters SearchFilters, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.searchQuery(ctx, sessionID, filters).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

// CountSearch returns the total number of messages matching the filters.
func (r *GormMessageRepository) CountSearch(ctx context.Context, sessionID string, filters SearchFilters) (int64, error) {
	var count int64
	err := r.searchQuery(ctx, sessionID, filters).Count(&count).Error
	return count, err
}

func (r *GormMessageRepository) searchQuery(ctx context.Context, sessionID string, filters SearchFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("session_id = ?", sessionID)

	if filters.Query != "" {
		query = query.Where("content LIKE ?", "%"+filters.Query+"%")
	}
	if filters.StartDate != "" {
		// Inclusive string comparison, matching the stored timestamp format.
		query = query.Where("timestamp >= ?", filters.StartDate)
	}
	if filters.EndDate != "" {
		query = query.Where("timestamp <= ?", filters.EndDate)
	}
	if filters.Sender != "" {
		query = query.Where("sender = ?", filters.Sender)
	}

	return query
}
