package api

import (
	"net/http"
	"strconv"

	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/internal/repository"
	"chat-relay-demo/backend/internal/service"
	"chat-relay-demo/backend/pkg/errors"
	"chat-relay-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// MessageController handles message ingestion and history endpoints.
type MessageController struct {
	messageService *service.MessageService
	log            *logger.Logger
}

// NewMessageController creates a new message controller.
func NewMessageController(messageService *service.MessageService, log *logger.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		log:            log,
	}
}

// Create handles POST /messages: the full ingestion pipeline.
func (ctrl *MessageController) Create(c *gin.Context) {
	var raw any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.Error(errors.NewValidationError(errors.CodeInvalidFormat,
			"Request body must be a JSON object"))
		c.Abort()
		return
	}

	message, appErr := ctrl.messageService.Ingest(c.Request.Context(), raw)
	if appErr != nil {
		c.Error(appErr)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   message,
	})
}

// List handles GET /messages/:sessionId: paginated session history in
// insertion order.
func (ctrl *MessageController) List(c *gin.Context) {
	sessionID := c.Param("sessionId")
	limit, offset := parsePagination(c)

	sender, appErr := parseSender(c)
	if appErr != nil {
		c.Error(appErr)
		c.Abort()
		return
	}

	messages, total, appErr := ctrl.messageService.ListBySession(c.Request.Context(), sessionID, limit, offset, sender)
	if appErr != nil {
		c.Error(appErr)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(messages, limit, offset, total))
}

// Search handles GET /messages/:sessionId/search: substring and range
// filtered history, same envelope as List.
func (ctrl *MessageController) Search(c *gin.Context) {
	sessionID := c.Param("sessionId")
	limit, offset := parsePagination(c)

	sender, appErr := parseSender(c)
	if appErr != nil {
		c.Error(appErr)
		c.Abort()
		return
	}

	filters := repository.SearchFilters{
		Query:     c.Query("q"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Sender:    sender,
	}

	messages, total, appErr := ctrl.messageService.Search(c.Request.Context(), sessionID, filters, limit, offset)
	if appErr != nil {
		c.Error(appErr)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(messages, limit, offset, total))
}

// parsePagination reads limit and offset, silently falling back to defaults
// on unparsable or out-of-range values rather than rejecting the request.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	offset = 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}

	return limit, offset
}

// parseSender validates the optional sender filter. Unlike pagination, an
// invalid value is a client error, not a silent fallback.
func parseSender(c *gin.Context) (string, *errors.AppError) {
	sender := c.Query("sender")
	if sender == "" {
		return "", nil
	}
	if !models.IsValidSender(sender) {
		return "", errors.NewValidationError(errors.CodeInvalidSender,
			"Query parameter \"sender\" must be \"user\" or \"system\"").
			WithDetails(map[string]any{"field": "sender", "validValues": models.ValidSenders})
	}
	return sender, nil
}

func paginatedResponse(messages []*models.MessageResponse, limit, offset int, total int64) gin.H {
	if messages == nil {
		messages = []*models.MessageResponse{}
	}
	return gin.H{
		"status": "success",
		"data":   messages,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"total":  total,
		},
	}
}
