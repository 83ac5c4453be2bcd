package completion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultOpenAIModel = "gpt-4o-mini"

const openaiSystemPrompt = "You are a careful legal analyst. Follow the constraints in the prompt exactly."

// OpenAIClient generates completions through the OpenAI chat API
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	baseURL     string
	logger      *zap.Logger
}

// OpenAIOption is a functional option for OpenAIClient
type OpenAIOption func(*OpenAIClient)

// OpenAIWithModel sets the model name
func OpenAIWithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// OpenAIWithTemperature sets the sampling temperature
func OpenAIWithTemperature(temperature float32) OpenAIOption {
	return func(c *OpenAIClient) {
		c.temperature = temperature
	}
}

// OpenAIWithBaseURL overrides the API base URL, used in tests
func OpenAIWithBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// OpenAIWithLogger sets the logger
func OpenAIWithLogger(logger *zap.Logger) OpenAIOption {
	return func(c *OpenAIClient) {
		c.logger = logger
	}
}

// NewOpenAIClient creates an OpenAI completion client
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	c := &OpenAIClient{
		model:       defaultOpenAIModel,
		temperature: 0.2,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	config := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	c.client = openai.NewClientWithConfig(config)
	return c, nil
}

// NewOpenAIFromEnv creates an OpenAI client from OPENAI_API_KEY and OPENAI_MODEL
func NewOpenAIFromEnv(logger *zap.Logger) (*OpenAIClient, error) {
	opts := []OpenAIOption{OpenAIWithLogger(logger)}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		opts = append(opts, OpenAIWithModel(model))
	}
	return NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), opts...)
}

// Complete sends the prompt as a chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &TransportError{
				Provider:   ProviderOpenAI,
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
				Retryable:  apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429,
			}
		}
		return "", &TransportError{
			Provider:  ProviderOpenAI,
			Message:   err.Error(),
			Retryable: true,
		}
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
