package api

import (
	"errors"
	"fmt"

	"github.com/porchlight-social/porchlight/internal/models"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// classify maps handler errors to JSON-RPC error codes. Validation
// failures are the caller's fault; everything unrecognized is a server
// error.
func classify(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}
	switch {
	case errors.Is(err, models.ErrEmptyBody),
		errors.Is(err, models.ErrBodyTooLong),
		errors.Is(err, models.ErrHandleTaken):
		return ErrInvalidParams, "Invalid params"
	case errors.Is(err, models.ErrNotFound):
		return ErrNotFoundError, "Not found"
	case errors.Is(err, models.ErrNotifyForbidden):
		return ErrForbiddenError, "Forbidden"
	default:
		return ErrServerError, "Server error"
	}
}
