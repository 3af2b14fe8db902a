// Package mcp exposes the knowledge base search engine as a Model Context
// Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
)

// JSON-RPC error codes returned to MCP clients.
const (
	// ErrCodeIndexNotReady indicates the knowledge base could not be loaded.
	ErrCodeIndexNotReady = -32001

	// ErrCodeTimeout indicates the request timed out or was cancelled.
	ErrCodeTimeout = -32003

	// ErrCodeChunkNotFound indicates an unknown chunk ID.
	ErrCodeChunkNotFound = -32004

	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// Sentinel errors for internal use.
var (
	ErrChunkNotFound = errors.New("chunk not found")
	ErrInvalidParams = errors.New("invalid parameters")
)

// MCPError is an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var kbErr *kberrors.KBError
	if errors.As(err, &kbErr) {
		return mapKBError(kbErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrChunkNotFound):
		return &MCPError{Code: ErrCodeChunkNotFound, Message: "Chunk not found."}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewChunkNotFoundError creates an error for an unknown chunk ID.
func NewChunkNotFoundError(id string) *MCPError {
	return &MCPError{Code: ErrCodeChunkNotFound, Message: fmt.Sprintf("Chunk '%s' not found.", id)}
}

func mapKBError(ke *kberrors.KBError) *MCPError {
	message := ke.Message
	if ke.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ke.Message, ke.Suggestion)
	}

	switch {
	case ke.Category == kberrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case ke.Code == kberrors.ErrCodeIndexFailed:
		return &MCPError{Code: ErrCodeIndexNotReady, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
