package common

import (
	"errors"
	"fmt"
	"strings"
)

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Content errors
	ErrStoryNotFound = errors.New("story not found")
	ErrMediaNotFound = errors.New("media not found")

	// Brand test errors
	ErrVariantNotFound   = errors.New("test variant not found")
	ErrInvalidTransition = errors.New("invalid variant state transition")

	// Search errors
	ErrSavedSearchNotFound = errors.New("saved search not found")

	// Backup errors
	ErrBackupNotFound    = errors.New("backup not found")
	ErrBackupIncomplete  = errors.New("backup is not in completed state")
	ErrChecksumMismatch  = errors.New("backup checksum mismatch")
	ErrBackupInProgress  = errors.New("backup still in progress")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field-level validation failures.
// It is caught before any side effect and surfaced as a list.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error and returns the updated list
func (v ValidationErrors) Add(field, message string) ValidationErrors {
	return append(v, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no errors were collected
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
