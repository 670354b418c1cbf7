package service

import (
	"fmt"
	"strings"
	"time"

	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/pkg/errors"
)

// requiredFields lists the message fields every submission must carry, in the
// order they are reported when missing.
var requiredFields = []string{"messageId", "sessionId", "content", "timestamp", "sender"}

// timestampLayouts are the accepted ISO 8601 shapes, from full date-time with
// offset down to bare date. Both timezone-aware and naive timestamps pass
// validation; the raw string is stored as supplied. Fractional seconds are
// accepted against any layout with a seconds field, so shapes like
// 2023-06-15T14:30:00.5+02:00 need no layout of their own.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ValidateMessage checks an inbound submission for shape, type and semantic
// correctness. Checks run in a fixed order and the first failure wins. The
// function is pure: no side effects, same input always yields the same
// verdict. A nil return means the submission is valid.
func ValidateMessage(raw any) *errors.AppError {
	data, ok := raw.(map[string]any)
	if !ok {
		return errors.NewValidationError(errors.CodeInvalidFormat,
			"Request body must be a JSON object")
	}

	var missing []string
	for _, field := range requiredFields {
		if _, present := data[field]; !present {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return errors.NewValidationError(errors.CodeMissingFields,
			fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", "))).
			WithDetails(map[string]any{"missingFields": missing})
	}

	for _, field := range requiredFields {
		if _, isString := data[field].(string); !isString {
			return errors.NewValidationError(errors.CodeInvalidType,
				fmt.Sprintf("Field %q must be a string", field)).
				WithDetails(map[string]any{"field": field, "expectedType": "string"})
		}
	}

	if !isISOTimestamp(data["timestamp"].(string)) {
		return errors.NewValidationError(errors.CodeInvalidTimestamp,
			"Field \"timestamp\" must be an ISO 8601 datetime (e.g. 2023-06-15T14:30:00Z)").
			WithDetails(map[string]any{"field": "timestamp", "expectedFormat": "ISO 8601"})
	}

	if sender := data["sender"].(string); !models.IsValidSender(sender) {
		return errors.NewValidationError(errors.CodeInvalidSender,
			"Field \"sender\" must be \"user\" or \"system\"").
			WithDetails(map[string]any{"field": "sender", "validValues": models.ValidSenders})
	}

	if strings.TrimSpace(data["content"].(string)) == "" {
		return errors.NewValidationError(errors.CodeEmptyContent,
			"Field \"content\" must not be empty").
			WithDetails(map[string]any{"field": "content"})
	}

	return nil
}

func isISOTimestamp(value string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
