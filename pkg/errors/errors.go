package errors

import (
	"fmt"
	"net/http"
)

// Error codes surfaced to clients. Validation codes mirror the order the
// ingestion validator applies its checks in.
const (
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidType        = "INVALID_TYPE"
	CodeInvalidTimestamp   = "INVALID_TIMESTAMP"
	CodeInvalidSender      = "INVALID_SENDER"
	CodeEmptyContent       = "EMPTY_CONTENT"
	CodeDuplicateMessageID = "DUPLICATE_MESSAGE_ID"
	CodeInvalidName        = "INVALID_NAME"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeServerError        = "INTERNAL_SERVER_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError creates a 400 Bad Request error for message validation
// failures
func NewValidationError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(code string, message string) *AppError {
	return NewError(http.StatusUnauthorized, code, message)
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewTooManyRequestsError creates a 429 Too Many Requests error
func NewTooManyRequestsError(code string, message string) *AppError {
	return NewError(http.StatusTooManyRequests, code, message)
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// FromError converts any error to an AppError. Unknown errors become generic
// 500s so internals never leak to clients.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalServerError(CodeServerError, "Internal server error")
}

// Is checks whether err is an AppError carrying the same code as target
func Is(err error, target *AppError) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == target.Code
}
