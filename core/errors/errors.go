// Package errors provides standardized error types for the Granada core.
//
// The taxonomy distinguishes caller mistakes (ValidationError), benign
// nothing-to-do outcomes (DuplicateError), per-file decode failures
// (EncodingError), recoverable parse problems (ParseError, which callers
// degrade from rather than fail on), and storage failures (PersistenceError).
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// DuplicateError reports that a book with the same identity already exists
// and is downloaded. It is a distinct outcome rather than a failure: the
// caller can redirect to the existing record.
type DuplicateError struct {
	BookID string // Identity of the existing book
	Title  string // Title of the existing book
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("book already exists: %s (%s)", e.BookID, e.Title)
}

func (e *DuplicateError) Unwrap() error {
	return ErrAlreadyExists
}

// EncodingError reports a file that decodes under neither UTF-8 nor the
// legacy Arabic codepage. Fatal for that file only; batch ingestion
// continues past it.
type EncodingError struct {
	Path string // File that failed to decode
	Err  error  // Underlying error, if any
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot decode %s as UTF-8 or Windows-1256", e.Path)
}

func (e *EncodingError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// ParseError represents a parsing or extraction error
type ParseError struct {
	Format  string // Format being parsed (e.g., "header", "page markers")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// PersistenceError reports a storage write failure. The persistence unit it
// occurred in has been rolled back in full.
type PersistenceError struct {
	Operation string // Operation being performed (e.g., "save book")
	Err       error  // Underlying error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// Helper functions for creating common errors

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewDuplicate creates a DuplicateError
func NewDuplicate(bookID, title string) *DuplicateError {
	return &DuplicateError{
		BookID: bookID,
		Title:  title,
	}
}

// NewEncoding creates an EncodingError
func NewEncoding(path string, err error) *EncodingError {
	return &EncodingError{
		Path: path,
		Err:  err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewPersistence creates a PersistenceError
func NewPersistence(operation string, err error) *PersistenceError {
	return &PersistenceError{
		Operation: operation,
		Err:       err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
