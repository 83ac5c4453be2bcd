// Package completion wraps the external text-completion services the
// generation loop drafts with. Retry and backoff policy lives here, not in
// the loop: the loop sees one Complete call per attempt.
package completion

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Client is the single collaborator capability the engine requires
type Client interface {
	// Complete sends one prompt and returns the completion text. The call
	// honors ctx cancellation and deadlines.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider represents a completion backend
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// TransportError represents a failed call to a completion provider
type TransportError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s completion failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable reports whether err is a transport error worth retrying.
// Errors that are not TransportError values are treated as retryable.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return true
}

// NewFromEnv selects and builds a completion client from environment
// variables. COMPLETION_PROVIDER chooses the backend; gemini is the default.
func NewFromEnv(logger *zap.Logger) (Client, error) {
	provider := os.Getenv("COMPLETION_PROVIDER")
	if provider == "" {
		provider = string(ProviderGemini)
	}

	switch Provider(provider) {
	case ProviderGemini:
		return NewGeminiFromEnv(logger)
	case ProviderOpenAI:
		return NewOpenAIFromEnv(logger)
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", provider)
	}
}
