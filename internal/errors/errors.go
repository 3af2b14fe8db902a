package errors

import (
	"errors"
	"fmt"
)

// KBError is the structured error type for kbsearch.
type KBError struct {
	// Code is the unique error code (e.g., "ERR_201_SOURCE_READ").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *KBError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *KBError) Unwrap() error {
	return e.Cause
}

// Is matches another KBError by code, so errors.Is works against sentinels
// built with New.
func (e *KBError) Is(target error) bool {
	if t, ok := target.(*KBError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *KBError) WithDetail(key, value string) *KBError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *KBError) WithSuggestion(suggestion string) *KBError {
	e.Suggestion = suggestion
	return e
}

// New creates a new KBError. Category and severity are derived from the code.
func New(code string, message string, cause error) *KBError {
	return &KBError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a KBError from an existing error.
func Wrap(code string, err error) *KBError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *KBError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *KBError {
	return New(ErrCodeInvalidInput, message, cause)
}

// SourceReadError records a document or pack that could not be read.
func SourceReadError(source string, cause error) *KBError {
	return New(ErrCodeSourceRead, "cannot read source "+source, cause).
		WithDetail("source", source)
}

// RecordCorruptError records a pack line that could not be parsed.
func RecordCorruptError(source string, line int, cause error) *KBError {
	return New(ErrCodeRecordCorrupt, fmt.Sprintf("cannot parse record %s:%d", source, line), cause).
		WithDetail("source", source).
		WithDetail("line", fmt.Sprint(line))
}

// UnsupportedLanguageError records a hint outside the supported set.
func UnsupportedLanguageError(hint string) *KBError {
	return New(ErrCodeUnsupportedLanguage, fmt.Sprintf("unsupported language %q", hint), nil).
		WithSuggestion("Use one of: en, zh, ja, fr, pt, es, id")
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *KBError {
	return New(ErrCodeInternal, message, cause)
}

// IsSourceError reports whether err is a recoverable source read/parse error.
func IsSourceError(err error) bool {
	var ke *KBError
	if !errors.As(err, &ke) {
		return false
	}
	return ke.Category == CategoryIO
}

// GetCode extracts the error code, or "" if err is not a KBError.
func GetCode(err error) string {
	var ke *KBError
	if errors.As(err, &ke) {
		return ke.Code
	}
	return ""
}

// GetCategory extracts the category, or "" if err is not a KBError.
func GetCategory(err error) Category {
	var ke *KBError
	if errors.As(err, &ke) {
		return ke.Category
	}
	return ""
}
