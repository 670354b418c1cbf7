package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"strconv"
	"time"

	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/internal/repository"
	"chat-relay-demo/backend/pkg/cache"
	"chat-relay-demo/backend/pkg/errors"
	"chat-relay-demo/backend/pkg/logger"
)

const apiKeyCachePrefix = "apikey:"

// APIKeyService issues, validates and revokes opaque bearer credentials.
// Validation results are cached briefly in Redis keyed by secret hash; the
// cache entry is dropped on revocation so a revoked key stops validating
// immediately.
type APIKeyService struct {
	repo     repository.APIKeyRepository
	cache    *cache.Client
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewAPIKeyService creates the credential service. cacheClient may be nil to
// run without the validation cache.
func NewAPIKeyService(repo repository.APIKeyRepository, cacheClient *cache.Client, cacheTTL time.Duration, log *logger.Logger) *APIKeyService {
	return &APIKeyService{
		repo:     repo,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
		log:      log.WithComponent("apikey_service"),
	}
}

// Create issues a new credential. The plaintext secret is returned exactly
// once; only its SHA-256 hash is stored.
func (s *APIKeyService) Create(ctx context.Context, name string) (string, *models.APIKeyResponse, error) {
	plaintext, err := generateAPIKey()
	if err != nil {
		return "", nil, err
	}

	key := &models.APIKey{
		KeyHash:   hashAPIKey(plaintext),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, key); err != nil {
		return "", nil, err
	}

	return plaintext, key.ToResponse(), nil
}

// Validate checks a plaintext credential and records its use. Returns the
// credential ID and true when the key is known and active.
func (s *APIKeyService) Validate(ctx context.Context, plaintext string) (uint, bool) {
	if plaintext == "" {
		return 0, false
	}

	keyHash := hashAPIKey(plaintext)

	if cached, hit := s.cache.Get(ctx, apiKeyCachePrefix+keyHash); hit {
		id, err := strconv.ParseUint(cached, 10, 64)
		if err == nil {
			s.touch(ctx, uint(id))
			return uint(id), true
		}
	}

	key, err := s.repo.FindActiveByHash(ctx, keyHash)
	if err != nil {
		if !stderrors.Is(err, repository.ErrAPIKeyNotFound) {
			s.log.LogError(err, "Credential lookup failed")
		}
		return 0, false
	}

	s.touch(ctx, key.ID)

	if err := s.cache.Set(ctx, apiKeyCachePrefix+keyHash, strconv.FormatUint(uint64(key.ID), 10), s.cacheTTL); err != nil {
		s.log.Warn("Failed to cache credential validation", "error", err.Error())
	}

	return key.ID, true
}

// Revoke soft-deletes a credential. Returns repository.ErrAPIKeyNotFound for
// unknown IDs.
func (s *APIKeyService) Revoke(ctx context.Context, id uint) error {
	// Fetch first so the cache entry can be dropped by hash.
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Revoke(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Del(ctx, apiKeyCachePrefix+key.KeyHash); err != nil {
		s.log.Warn("Failed to evict revoked credential from cache", "error", err.Error())
	}

	s.log.Info("Credential revoked", "key_id", id, "name", key.Name)
	return nil
}

// List returns metadata for every issued credential, never secrets.
func (s *APIKeyService) List(ctx context.Context) ([]*models.APIKeyResponse, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.APIKeyResponse, len(keys))
	for i := range keys {
		responses[i] = keys[i].ToResponse()
	}
	return responses, nil
}

func (s *APIKeyService) touch(ctx context.Context, id uint) {
	if err := s.repo.TouchLastUsed(ctx, id); err != nil {
		s.log.Warn("Failed to update credential last_used_at", "key_id", id, "error", err.Error())
	}
}

// generateAPIKey returns 32 random bytes as 64 hex characters.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// NotFoundError maps a repository miss to the boundary error shape.
func NotFoundError(err error) *errors.AppError {
	if stderrors.Is(err, repository.ErrAPIKeyNotFound) {
		return errors.NewNotFoundError(errors.CodeNotFound, "API key not found")
	}
	return errors.NewInternalServerError(errors.CodeServerError, "Internal server error")
}
