// Package errors provides structured error handling for kbsearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Source I/O errors (documents, record packs)
//   - 4XX: Validation errors (queries, language hints)
//   - 5XX: Internal errors
//
// Most of these never reach a caller of the search core: source and language
// errors are logged and recovered from during a load.
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates document and pack read errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Source errors (200-299)
	ErrCodeSourceRead       = "ERR_201_SOURCE_READ"
	ErrCodeSourcePermission = "ERR_202_SOURCE_PERMISSION"
	ErrCodeRecordCorrupt    = "ERR_206_RECORD_CORRUPT"

	// Validation errors (400-499)
	ErrCodeInvalidInput        = "ERR_401_INVALID_INPUT"
	ErrCodeUnsupportedLanguage = "ERR_403_UNSUPPORTED_LANGUAGE"
	ErrCodeQueryEmpty          = "ERR_404_QUERY_EMPTY"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeIndexFailed = "ERR_505_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "201" from "ERR_201_SOURCE_READ"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Source and language problems degrade a load but never stop it.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeSourceRead, ErrCodeSourcePermission, ErrCodeRecordCorrupt, ErrCodeUnsupportedLanguage:
		return SeverityWarning
	case ErrCodeIndexFailed:
		return SeverityFatal
	default:
		return SeverityError
	}
}
