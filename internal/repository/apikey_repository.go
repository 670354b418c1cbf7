package repository

import (
	"context"
	"errors"
	"time"

	"chat-relay-demo/backend/internal/models"

	"gorm.io/gorm"
)

// ErrAPIKeyNotFound is returned when no credential matches the lookup.
var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKeyRepository is the persistence boundary for issued credentials.
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	FindActiveByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	FindByID(ctx context.Context, id uint) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id uint) error
	Revoke(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.APIKey, error)
}

// GormAPIKeyRepository is the gorm-backed credential store.
type GormAPIKeyRepository struct {
	db *gorm.DB
}

// NewGormAPIKeyRepository creates a credential repository on the given
// database handle.
func NewGormAPIKeyRepository(db *gorm.DB) *GormAPIKeyRepository {
	return &GormAPIKeyRepository{db: db}
}

// Create inserts a new credential record.
func (r *GormAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

// FindActiveByHash looks up an active credential by its secret hash. Revoked
// credentials are invisible to this lookup.
func (r *GormAPIKeyRepository) FindActiveByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	var key models.APIKey
	err := r.db.WithContext(ctx).
		Where("key_hash = ? AND is_active = ?", keyHash, true).
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

// FindByID looks up a credential by ID, active or not.
func (r *GormAPIKeyRepository) FindByID(ctx context.Context, id uint) (*models.APIKey, error) {
	var key models.APIKey
	err := r.db.WithContext(ctx).First(&key, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

// TouchLastUsed records a successful validation against the credential.
func (r *GormAPIKeyRepository) TouchLastUsed(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", now).Error
}

// Revoke soft-deletes a credential by flipping is_active. The row is kept.
func (r *GormAPIKeyRepository) Revoke(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// List returns all credential records in creation order.
func (r *GormAPIKeyRepository) List(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).Order("id ASC").Find(&keys).Error
	return keys, err
}
