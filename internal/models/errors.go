package models

import (
	"errors"
	"strings"
)

// Domain errors shared across the engine. Validation errors reject an
// action before any write; the caller surfaces them synchronously.
var (
	ErrEmptyBody       = errors.New("body must not be empty")
	ErrBodyTooLong     = errors.New("body exceeds maximum length")
	ErrHandleTaken     = errors.New("handle is already in use")
	ErrNotFound        = errors.New("record not found")
	ErrToggleInFlight  = errors.New("another toggle for this post is still in flight")
	ErrNotifyForbidden = errors.New("notification does not belong to this account")
)

// ValidateBody checks a post or reply body against the shared limits.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if len([]rune(body)) > MaxBodyLen {
		return ErrBodyTooLong
	}
	return nil
}
