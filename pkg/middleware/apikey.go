package middleware

import (
	"context"

	"chat-relay-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader is the request header carrying the client credential.
const APIKeyHeader = "X-API-Key"

// APIKeyValidator checks a plaintext credential and returns the matching
// credential ID when it is known and active.
type APIKeyValidator interface {
	Validate(ctx context.Context, key string) (uint, bool)
}

// OptionalAPIKey validates the X-API-Key header when present but never
// rejects the request. An unknown or revoked key is treated exactly like no
// key at all: the request proceeds without an attached credential.
func OptionalAPIKey(validator APIKeyValidator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		keyID, ok := validator.Validate(c.Request.Context(), key)
		if !ok {
			log.Debug("Ignoring invalid or revoked API key",
				"path", c.Request.URL.Path,
			)
			c.Next()
			return
		}

		ctx := context.WithValue(c.Request.Context(), APIKeyIDKey, keyID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("apiKeyID", keyID)

		c.Next()
	}
}

// GetAPIKeyID extracts the validated credential ID from a context. The second
// return is false when the request carried no usable credential.
func GetAPIKeyID(ctx context.Context) (uint, bool) {
	if ctx == nil {
		return 0, false
	}
	keyID, ok := ctx.Value(APIKeyIDKey).(uint)
	return keyID, ok
}
