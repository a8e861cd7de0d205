package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound signals that no record carries the requested identity value.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidQuery signals a search request that failed boundary validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidRequest signals a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized signals a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited signals too many login attempts.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnsupportedFile signals an upload with a disallowed extension or unreadable content.
	ErrUnsupportedFile = errors.New("unsupported file")
	// ErrFileTooLarge signals an upload above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyDataset signals an upload that produced no records.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrUnsupportedFormat signals an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrPersist signals a failure writing the internal dataset back to disk.
	ErrPersist = errors.New("failed to persist dataset")
)

// FieldError describes which field of a request failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidRequest.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidRequest }

// NewFieldError creates a validation error bound to a request field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
