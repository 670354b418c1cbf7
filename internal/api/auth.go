package api

import (
	"net/http"
	"strconv"
	"strings"

	"chat-relay-demo/backend/internal/service"
	"chat-relay-demo/backend/pkg/errors"
	"chat-relay-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// APIKeyController handles credential management endpoints.
type APIKeyController struct {
	apiKeyService *service.APIKeyService
	log           *logger.Logger
}

// NewAPIKeyController creates a new credential controller.
func NewAPIKeyController(apiKeyService *service.APIKeyService, log *logger.Logger) *APIKeyController {
	return &APIKeyController{
		apiKeyService: apiKeyService,
		log:           log,
	}
}

// Create handles POST /auth/keys. The plaintext secret appears in this
// response and nowhere else.
func (ctrl *APIKeyController) Create(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errors.NewBadRequestError(errors.CodeMissingFields,
			"Field \"name\" is required"))
		c.Abort()
		return
	}

	rawName, present := body["name"]
	if !present {
		c.Error(errors.NewBadRequestError(errors.CodeMissingFields,
			"Field \"name\" is required"))
		c.Abort()
		return
	}

	name, isString := rawName.(string)
	if !isString || strings.TrimSpace(name) == "" {
		c.Error(errors.NewBadRequestError(errors.CodeInvalidName,
			"Name must be a non-empty string"))
		c.Abort()
		return
	}

	plaintext, keyInfo, err := ctrl.apiKeyService.Create(c.Request.Context(), name)
	if err != nil {
		ctrl.log.LogError(err, "Failed to create API key")
		c.Error(errors.NewInternalServerError(errors.CodeServerError, "Failed to create API key"))
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data": gin.H{
			"apiKey":  plaintext,
			"keyInfo": keyInfo,
		},
		"message": "Store this API key securely. It will not be shown again.",
	})
}

// List handles GET /auth/keys: metadata only, never secrets.
func (ctrl *APIKeyController) List(c *gin.Context) {
	keys, err := ctrl.apiKeyService.List(c.Request.Context())
	if err != nil {
		ctrl.log.LogError(err, "Failed to list API keys")
		c.Error(errors.NewInternalServerError(errors.CodeServerError, "Failed to list API keys"))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   keys,
	})
}

// Revoke handles DELETE /auth/keys/:id. Revocation is a soft delete; unknown
// IDs return 404.
func (ctrl *APIKeyController) Revoke(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Error(errors.NewNotFoundError(errors.CodeNotFound, "API key not found"))
		c.Abort()
		return
	}

	if err := ctrl.apiKeyService.Revoke(c.Request.Context(), uint(id)); err != nil {
		c.Error(service.NotFoundError(err))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "API key revoked",
	})
}
