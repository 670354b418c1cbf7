package service

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"chat-relay-demo/backend/internal/repository"
	"chat-relay-demo/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexSecret = regexp.MustCompile(`^[0-9a-f]{64}$`)

func newTestAPIKeyService(t *testing.T) *APIKeyService {
	t.Helper()
	repo := repository.NewGormAPIKeyRepository(newServiceTestDB(t))
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	return NewAPIKeyService(repo, nil, time.Minute, log)
}

func TestAPIKeyCreateAndValidate(t *testing.T) {
	svc := newTestAPIKeyService(t)
	ctx := context.Background()

	plaintext, response, err := svc.Create(ctx, "ci-bot")
	require.NoError(t, err)
	assert.Regexp(t, hexSecret, plaintext)
	assert.Equal(t, "ci-bot", response.Name)
	assert.True(t, response.IsActive)
	assert.Empty(t, response.LastUsedAt)

	id, ok := svc.Validate(ctx, plaintext)
	assert.True(t, ok)
	assert.Equal(t, response.ID, id)

	// Validation records use.
	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotEmpty(t, keys[0].LastUsedAt)
}

func TestAPIKeySecretsAreUnique(t *testing.T) {
	svc := newTestAPIKeyService(t)
	ctx := context.Background()

	first, _, err := svc.Create(ctx, "one")
	require.NoError(t, err)
	second, _, err := svc.Create(ctx, "two")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAPIKeyValidateRejectsUnknownAndEmpty(t *testing.T) {
	svc := newTestAPIKeyService(t)
	ctx := context.Background()

	_, ok := svc.Validate(ctx, "")
	assert.False(t, ok)

	_, ok = svc.Validate(ctx, "not-a-real-key")
	assert.False(t, ok)
}

func TestAPIKeyRevoke(t *testing.T) {
	svc := newTestAPIKeyService(t)
	ctx := context.Background()

	plaintext, response, err := svc.Create(ctx, "short-lived")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, response.ID))

	// A revoked credential no longer validates but still appears in the
	// listing as inactive.
	_, ok := svc.Validate(ctx, plaintext)
	assert.False(t, ok)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.False(t, keys[0].IsActive)
}

func TestAPIKeyRevokeUnknown(t *testing.T) {
	svc := newTestAPIKeyService(t)

	err := svc.Revoke(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrAPIKeyNotFound)

	appErr := NotFoundError(err)
	assert.Equal(t, 404, appErr.StatusCode)
}
