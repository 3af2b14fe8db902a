package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKBError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("permission denied")

	// When: wrapping with KBError
	kbErr := New(ErrCodeSourceRead, "cannot read kb/a.md", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, kbErr)
	assert.Equal(t, originalErr, errors.Unwrap(kbErr))
	assert.True(t, errors.Is(kbErr, originalErr))
}

func TestKBError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "source error",
			code:     ErrCodeSourceRead,
			message:  "cannot read a.md",
			expected: "[ERR_201_SOURCE_READ] cannot read a.md",
		},
		{
			name:     "validation error",
			code:     ErrCodeQueryEmpty,
			message:  "query is empty",
			expected: "[ERR_404_QUERY_EMPTY] query is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestKBError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeRecordCorrupt, "line 3", nil)
	err2 := New(ErrCodeRecordCorrupt, "line 9", nil)
	assert.True(t, errors.Is(err1, err2))

	err3 := New(ErrCodeConfigInvalid, "bad yaml", nil)
	assert.False(t, errors.Is(err1, err3))
}

func TestKBError_Is_ThroughFmtWrap(t *testing.T) {
	inner := SourceReadError("kb/a.md", errors.New("eof"))
	outer := fmt.Errorf("loading: %w", inner)

	assert.True(t, errors.Is(outer, New(ErrCodeSourceRead, "", nil)))
	assert.Equal(t, ErrCodeSourceRead, GetCode(outer))
	assert.Equal(t, CategoryIO, GetCategory(outer))
}

func TestKBError_WithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad k", nil).
		WithDetail("k", "0").
		WithSuggestion("Use a value between 1 and 10")

	assert.Equal(t, "0", err.Details["k"])
	assert.Equal(t, "Use a value between 1 and 10", err.Suggestion)
}

func TestKBError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		expected Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeSourceRead, CategoryIO},
		{ErrCodeRecordCorrupt, CategoryIO},
		{ErrCodeUnsupportedLanguage, CategoryValidation},
		{ErrCodeQueryEmpty, CategoryValidation},
		{ErrCodeIndexFailed, CategoryInternal},
		{"bad", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, categoryFromCode(tt.code))
		})
	}
}

func TestKBError_SeverityFromCode(t *testing.T) {
	assert.Equal(t, SeverityWarning, severityFromCode(ErrCodeSourceRead))
	assert.Equal(t, SeverityWarning, severityFromCode(ErrCodeRecordCorrupt))
	assert.Equal(t, SeverityWarning, severityFromCode(ErrCodeUnsupportedLanguage))
	assert.Equal(t, SeverityFatal, severityFromCode(ErrCodeIndexFailed))
	assert.Equal(t, SeverityError, severityFromCode(ErrCodeConfigInvalid))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	orig := errors.New("boom")
	err := Wrap(ErrCodeInternal, orig)
	require.NotNil(t, err)
	assert.Equal(t, "boom", err.Message)
	assert.Equal(t, orig, err.Cause)
}

func TestConstructors(t *testing.T) {
	src := SourceReadError("packs/faq.jsonl", errors.New("denied"))
	assert.Equal(t, ErrCodeSourceRead, src.Code)
	assert.Equal(t, "packs/faq.jsonl", src.Details["source"])
	assert.True(t, IsSourceError(src))

	rec := RecordCorruptError("faq.jsonl", 7, errors.New("invalid json"))
	assert.Equal(t, "7", rec.Details["line"])
	assert.True(t, IsSourceError(rec))

	ul := UnsupportedLanguageError("de")
	assert.Equal(t, CategoryValidation, ul.Category)
	assert.NotEmpty(t, ul.Suggestion)
	assert.False(t, IsSourceError(ul))

	assert.Equal(t, CategoryConfig, ConfigError("x", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("x", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("x", nil).Category)
	assert.False(t, IsSourceError(errors.New("plain")))
	assert.Empty(t, GetCode(errors.New("plain")))
}
