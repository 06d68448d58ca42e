package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	cserrors "github.com/codesail/codesail/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend streams chat completions from any OpenAI-compatible endpoint.
// The client is read-only after construction and safe for concurrent use.
type OpenAIBackend struct {
	backend BackendType
	client  *openai.Client
}

// NewOpenAIBackend creates a backend for the given type.
// A missing API key is a configuration error.
func NewOpenAIBackend(backend BackendType, opts Options) (*OpenAIBackend, error) {
	if !backend.IsValid() {
		return nil, cserrors.ConfigError(fmt.Sprintf("invalid backend type: %s", backend), nil)
	}
	if opts.APIKey == "" {
		return nil, cserrors.ConfigError(fmt.Sprintf("missing API key for %s", backend.DisplayName()), nil)
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = backend.DefaultBaseURL()
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &OpenAIBackend{
		backend: backend,
		client:  openai.NewClientWithConfig(cfg),
	}, nil
}

// Name returns the provider display name
func (b *OpenAIBackend) Name() string {
	return b.backend.DisplayName()
}

// Type returns the backend type
func (b *OpenAIBackend) Type() BackendType {
	return b.backend
}

// Stream opens a streaming chat completion
func (b *OpenAIBackend) Stream(ctx context.Context, req CompletionRequest) (TokenStream, error) {
	stream, err := b.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Stream:      true,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openAIStream) Close() error {
	s.stream.Close()
	return nil
}

// classifyError maps go-openai errors onto codesail categories.
// An APIError means the provider answered with a non-success status.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return cserrors.UpstreamError(fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message), nil).
			WithContext("status", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return cserrors.UpstreamError(fmt.Sprintf("unexpected status %d", reqErr.HTTPStatusCode), nil).
			WithContext("status", reqErr.HTTPStatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return cserrors.TimeoutError("request timed out", err)
	}
	return cserrors.TransportError("request failed", err)
}
