// Package ai provides a pluggable abstraction over streaming completion APIs.
// Supported backends speak the OpenAI chat-completions wire format: Groq,
// OpenAI and DeepSeek.
package ai

import (
	"context"
	"strings"
	"time"
)

// BackendType represents the type of completion backend
type BackendType string

const (
	// BackendGroq uses Groq's OpenAI-compatible endpoint
	BackendGroq BackendType = "groq"
	// BackendOpenAI uses the OpenAI API
	BackendOpenAI BackendType = "openai"
	// BackendDeepSeek uses DeepSeek's OpenAI-compatible endpoint
	BackendDeepSeek BackendType = "deepseek"
)

// Provider is the abstraction interface for streaming completion backends
type Provider interface {
	// Name returns a display name used in user-facing error messages
	Name() string

	// Stream issues one completion request and returns the open token stream.
	// Errors returned here happened before any token arrived.
	Stream(ctx context.Context, req CompletionRequest) (TokenStream, error)
}

// TokenStream is an open incremental response.
type TokenStream interface {
	// Recv returns the next text fragment. It returns io.EOF once the provider
	// signals end of stream. A fragment may be empty (keep-alive or usage frame).
	Recv() (string, error)

	// Close releases the underlying connection
	Close() error
}

// CompletionRequest contains everything sent upstream for one analysis
type CompletionRequest struct {
	// Model is the provider model identifier
	Model string

	// System is the fixed system instruction
	System string

	// User is the combined user content (source text and task)
	User string

	// Temperature is the sampling temperature
	Temperature float32

	// MaxTokens caps the output length
	MaxTokens int
}

// Options contains construction options for a backend
type Options struct {
	// APIKey is the credential sent as a bearer token
	APIKey string

	// BaseURL overrides the backend default endpoint
	BaseURL string

	// Timeout bounds each HTTP request, including the streamed body
	Timeout time.Duration
}

// String returns the string representation of a BackendType
func (b BackendType) String() string {
	return string(b)
}

// IsValid checks if the backend type is valid
func (b BackendType) IsValid() bool {
	switch b {
	case BackendGroq, BackendOpenAI, BackendDeepSeek:
		return true
	}
	return false
}

// DisplayName returns the human name used in error messages
func (b BackendType) DisplayName() string {
	switch b {
	case BackendGroq:
		return "Groq"
	case BackendOpenAI:
		return "OpenAI"
	case BackendDeepSeek:
		return "DeepSeek"
	default:
		return strings.ToUpper(string(b))
	}
}

// DefaultBaseURL returns the backend's public endpoint
func (b BackendType) DefaultBaseURL() string {
	switch b {
	case BackendGroq:
		return "https://api.groq.com/openai/v1"
	case BackendDeepSeek:
		return "https://api.deepseek.com/v1"
	default:
		return "https://api.openai.com/v1"
	}
}
