package adapter

import (
	"context"
	"errors"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ModelInfo describes a model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
	Supports    []string
}

// AIServiceAdapter is the port for LLM chat.
type AIServiceAdapter interface {
	ListModels(ctx context.Context) ([]string, error)
	GetModelInfo(model string) (ModelInfo, error)

	// CountTokens must return prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message) (string, error)
}

// ProviderError classifies a failed generation call. Transient failures
// (overload, rate limit, temporary unavailability) may be retried; anything
// else is final for the job.
type ProviderError struct {
	Err       error
	Transient bool
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// NewTransientError marks err as retryable.
func NewTransientError(err error) *ProviderError {
	return &ProviderError{Err: err, Transient: true}
}

// NewPermanentError marks err as non-retryable.
func NewPermanentError(err error) *ProviderError {
	return &ProviderError{Err: err}
}

// IsTransient reports whether err carries a retryable classification.
// Unclassified errors are treated as permanent.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}
