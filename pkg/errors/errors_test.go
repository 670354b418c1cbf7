package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	appErr := NewValidationError(CodeInvalidSender, "bad sender")
	assert.Same(t, appErr, FromError(appErr))

	wrapped := FromError(stderrors.New("database on fire"))
	assert.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
	assert.Equal(t, CodeServerError, wrapped.Code)
	// The original message never reaches the client.
	assert.NotContains(t, wrapped.Message, "database")
}

func TestEnvelope(t *testing.T) {
	plain := Envelope(NewNotFoundError(CodeNotFound, "gone"))
	assert.Equal(t, "error", plain["status"])
	body := plain["error"].(gin.H)
	assert.Equal(t, CodeNotFound, body["code"])
	assert.NotContains(t, body, "details")

	detailed := Envelope(NewValidationError(CodeMissingFields, "missing").
		WithDetails(map[string]any{"missingFields": []string{"sender"}}))
	body = detailed["error"].(gin.H)
	assert.Contains(t, body, "details")
}

func TestErrorHandlerFormatsFirstError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/boom", func(c *gin.Context) {
		c.Error(NewValidationError(CodeEmptyContent, "content is empty"))
		c.Error(stderrors.New("secondary failure"))
		c.Abort()
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errObj := body["error"].(map[string]any)
	assert.Equal(t, CodeEmptyContent, errObj["code"])
}

func TestRecoveryWithLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RecoveryWithLogger())
	engine.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errObj := body["error"].(map[string]any)
	assert.Equal(t, CodeServerError, errObj["code"])
	// Panic values never leak into the response.
	assert.NotContains(t, w.Body.String(), "kaboom")
}
