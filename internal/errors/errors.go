package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Error types for the flatq system
type ErrorType string

const (
	// Codec errors
	ErrorTypeSeparator ErrorType = "separator"
	ErrorTypePath      ErrorType = "path"
	ErrorTypeCoercion  ErrorType = "coercion"

	// Search errors
	ErrorTypeSearch ErrorType = "search"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeDecode       ErrorType = "decode"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// ReservedSeparators lists the characters that may not be used as a path separator.
var ReservedSeparators = []string{":", `"`, "'", ",", "\n"}

// ErrInvalidSeparator is the sentinel matched by errors.Is for every SeparatorError
var ErrInvalidSeparator = errors.New("invalid separator")

// SeparatorError reports a separator that cannot be used to join path segments
type SeparatorError struct {
	Type      ErrorType
	Separator string
	Reason    string
	Timestamp time.Time
}

// NewSeparatorError creates a new separator validation error
func NewSeparatorError(sep, reason string) *SeparatorError {
	return &SeparatorError{
		Type:      ErrorTypeSeparator,
		Separator: sep,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *SeparatorError) Error() string {
	return fmt.Sprintf("bad separator %q: %s (reserved: %s)", e.Separator, e.Reason, reservedList())
}

// Unwrap returns ErrInvalidSeparator for errors.Is
func (e *SeparatorError) Unwrap() error {
	return ErrInvalidSeparator
}

func reservedList() string {
	quoted := make([]string, len(ReservedSeparators))
	for i, s := range ReservedSeparators {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}

// PathError represents a flat key that cannot be applied to a tree
type PathError struct {
	Type       ErrorType
	Path       string
	Segment    int
	Underlying error
	Timestamp  time.Time
}

// NewPathError creates a new path error. segment is the 0-based offending segment, or -1.
func NewPathError(path string, segment int, err error) *PathError {
	return &PathError{
		Type:       ErrorTypePath,
		Path:       path,
		Segment:    segment,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *PathError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("path %q (segment %d): %v", e.Path, e.Segment, e.Underlying)
	}
	return fmt.Sprintf("path %q: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Underlying
}

// CoercionError reports object fields lost while converting an Object into an Array
type CoercionError struct {
	Type      ErrorType
	Path      string
	Dropped   []string
	Timestamp time.Time
}

// NewCoercionError creates a new coercion error
func NewCoercionError(path string, dropped []string) *CoercionError {
	return &CoercionError{
		Type:      ErrorTypeCoercion,
		Path:      path,
		Dropped:   dropped,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *CoercionError) Error() string {
	return fmt.Sprintf("coercion to array at %q drops fields %v", e.Path, e.Dropped)
}

// SearchError represents a search operation error
type SearchError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(pattern string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Pattern:    pattern,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for pattern %q: %v", e.Pattern, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewDecodeError creates a file error for content that could not be parsed
func NewDecodeError(path string, err error) *FileError {
	return &FileError{
		Type:       ErrorTypeDecode,
		Path:       path,
		Operation:  "decode",
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	msg := err.Error()
	return strings.HasSuffix(msg, "permission denied") || strings.HasSuffix(msg, "access denied")
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrOrNil returns nil when no errors were collected
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
