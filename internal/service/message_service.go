package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"chat-relay-demo/backend/internal/metrics"
	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/internal/repository"
	"chat-relay-demo/backend/pkg/errors"
	"chat-relay-demo/backend/pkg/logger"
)

// Broadcaster fans a persisted message out to the realtime subscribers of its
// session. Delivery is fire-and-forget: implementations log failures and
// never report them back.
type Broadcaster interface {
	Publish(sessionID string, message *models.MessageResponse)
}

// MessageService runs the ingestion pipeline (validate, filter, enrich,
// persist, broadcast) and serves the read paths that bypass it.
type MessageService struct {
	repo        repository.MessageRepository
	metadata    *MetadataGenerator
	broadcaster Broadcaster
	log         *logger.Logger
}

// NewMessageService creates the pipeline. broadcaster may be nil when no
// realtime channel is running (e.g. in tests).
func NewMessageService(repo repository.MessageRepository, broadcaster Broadcaster, log *logger.Logger) *MessageService {
	return &MessageService{
		repo:        repo,
		metadata:    NewMetadataGenerator(),
		broadcaster: broadcaster,
		log:         log.WithComponent("message_service"),
	}
}

// Ingest validates, filters and enriches a raw submission, persists it, and
// hands the stored representation to the broadcaster. Broadcast problems
// never fail the call: once the insert commits, the caller gets a success.
func (s *MessageService) Ingest(ctx context.Context, raw any) (*models.MessageResponse, *errors.AppError) {
	if appErr := ValidateMessage(raw); appErr != nil {
		metrics.ValidationFailures.WithLabelValues(appErr.Code).Inc()
		return nil, appErr
	}

	// Safe after validation: ValidateMessage guarantees an object with
	// string-typed required fields.
	data := raw.(map[string]any)
	content := FilterContent(data["content"].(string))
	meta := s.metadata.Generate(content)

	message := &models.Message{
		MessageID:      data["messageId"].(string),
		SessionID:      data["sessionId"].(string),
		Content:        content,
		Timestamp:      data["timestamp"].(string),
		Sender:         data["sender"].(string),
		WordCount:      meta.WordCount,
		CharacterCount: meta.CharacterCount,
		ProcessedAt:    meta.ProcessedAt,
	}

	if err := s.repo.Save(ctx, message); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateMessageID) {
			metrics.DuplicateMessages.Inc()
			return nil, errors.NewBadRequestError(errors.CodeDuplicateMessageID,
				fmt.Sprintf("A message with ID %q already exists", message.MessageID)).
				WithDetails(map[string]any{"field": "messageId"})
		}
		s.log.LogError(err, "Failed to persist message",
			"message_id", message.MessageID,
			"session_id", message.SessionID,
		)
		return nil, errors.NewInternalServerError(errors.CodeServerError, "Failed to save message")
	}

	metrics.MessagesIngested.WithLabelValues(message.Sender).Inc()

	response := message.ToResponse()
	if s.broadcaster != nil {
		s.broadcaster.Publish(message.SessionID, response)
	}

	return response, nil
}

// ListBySession returns one page of session history in insertion order, plus
// the total count for the pagination envelope. Parameter clamping is the
// HTTP layer's responsibility.
func (s *MessageService) ListBySession(ctx context.Context, sessionID string, limit, offset int, sender string) ([]*models.MessageResponse, int64, *errors.AppError) {
	messages, err := s.repo.ListBySession(ctx, sessionID, limit, offset, sender)
	if err != nil {
		s.log.LogError(err, "Failed to list messages", "session_id", sessionID)
		return nil, 0, errors.NewInternalServerError(errors.CodeServerError, "Failed to retrieve messages")
	}

	total, err := s.repo.CountBySession(ctx, sessionID, sender)
	if err != nil {
		s.log.LogError(err, "Failed to count messages", "session_id", sessionID)
		return nil, 0, errors.NewInternalServerError(errors.CodeServerError, "Failed to retrieve messages")
	}

	return toResponses(messages), total, nil
}

// Search returns one page of messages matching the filters, plus the total
// match count.
func (s *MessageService) Search(ctx context.Context, sessionID string, filters repository.SearchFilters, limit, offset int) ([]*models.MessageResponse, int64, *errors.AppError) {
	metrics.SearchQueries.Inc()

	messages, err := s.repo.Search(ctx, sessionID, filters, limit, offset)
	if err != nil {
		s.log.LogError(err, "Failed to search messages", "session_id", sessionID)
		return nil, 0, errors.NewInternalServerError(errors.CodeServerError, "Failed to search messages")
	}

	total, err := s.repo.CountSearch(ctx, sessionID, filters)
	if err != nil {
		s.log.LogError(err, "Failed to count search results", "session_id", sessionID)
		return nil, 0, errors.NewInternalServerError(errors.CodeServerError, "Failed to search messages")
	}

	return toResponses(messages), total, nil
}

func toResponses(messages []models.Message) []*models.MessageResponse {
	responses := make([]*models.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = messages[i].ToResponse()
	}
	return responses
}
