package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Base error types (sentinel errors).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrUnavailable  = errors.New("service unavailable")
	ErrInternal     = errors.New("internal error")
)

// Specific errors.
var (
	ErrMalformedBounds  = fmt.Errorf("bounds: %w", ErrInvalidInput)
	ErrDuplicateRecord  = fmt.Errorf("record: %w", ErrConflict)
	ErrStoreUnavailable = fmt.Errorf("store: %w", ErrUnavailable)
	ErrBlobUnavailable  = fmt.Errorf("blob storage: %w", ErrUnavailable)
)

// ValidationError represents a detailed validation error for a single field.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// FieldErrors aggregates validation errors across multiple payload fields.
type FieldErrors []*ValidationError

// Error implements the error interface.
func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	fields := make([]string, len(e))
	for i, fe := range e {
		fields[i] = fe.Field
	}
	return fmt.Sprintf("validation failed for fields: %s", strings.Join(fields, ", "))
}

// Unwrap returns the underlying error type.
func (e FieldErrors) Unwrap() error {
	return ErrInvalidInput
}

// Fields returns the names of all failing fields.
func (e FieldErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, fe := range e {
		fields[i] = fe.Field
	}
	return fields
}

// StoreError represents an error during record store operations.
type StoreError struct {
	Operation string // Operation that failed (insert, scan, ping)
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// BlobError represents an error during photo blob operations.
type BlobError struct {
	Operation string // Operation that failed (put, url, head)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *BlobError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("blob error during %s for %s: %v", e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("blob error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *BlobError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
