package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel = "gemini-3-pro-preview"

	maxRetries     = 3
	initialBackoff = time.Second

	// Rough context-limit guard; longer prompts are truncated with a notice.
	maxPromptChars = 30000
)

// GeminiClient calls the Gemini generateContent API directly over HTTP
type GeminiClient struct {
	apiKey      string
	model       string
	temperature float64
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
}

// GeminiOption is a functional option for GeminiClient
type GeminiOption func(*GeminiClient)

// GeminiWithModel sets the model name
func GeminiWithModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// GeminiWithTemperature sets the sampling temperature
func GeminiWithTemperature(temperature float64) GeminiOption {
	return func(c *GeminiClient) {
		c.temperature = temperature
	}
}

// GeminiWithBaseURL overrides the API endpoint
func GeminiWithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// GeminiWithHTTPClient sets the underlying HTTP client
func GeminiWithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		c.httpClient = client
	}
}

// GeminiWithLogger sets the logger
func GeminiWithLogger(logger *zap.Logger) GeminiOption {
	return func(c *GeminiClient) {
		c.logger = logger
	}
}

// NewGeminiClient creates a Gemini completion client
func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not set")
	}
	c := &GeminiClient{
		apiKey:      apiKey,
		model:       defaultGeminiModel,
		temperature: 0.2,
		baseURL:     geminiBaseURL,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewGeminiFromEnv creates a Gemini client from GEMINI_API_KEY and GEMINI_MODEL
func NewGeminiFromEnv(logger *zap.Logger) (*GeminiClient, error) {
	opts := []GeminiOption{GeminiWithLogger(logger)}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		opts = append(opts, GeminiWithModel(model))
	}
	return NewGeminiClient(os.Getenv("GEMINI_API_KEY"), opts...)
}

// Complete sends the prompt to Gemini, retrying transient failures with
// doubling backoff
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if len(prompt) > maxPromptChars {
		c.logger.Warn("prompt too long, truncating",
			zap.Int("length", len(prompt)),
			zap.Int("limit", maxPromptChars))
		prompt = prompt[:maxPromptChars] + "\n\n[Content truncated due to length...]"
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		text, err := c.call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
		c.logger.Warn("gemini call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return "", fmt.Errorf("gemini completion failed after %d attempts: %w", maxRetries, lastErr)
}

// call performs one generateContent request
func (c *GeminiClient) call(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": c.temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{
			Provider:  ProviderGemini,
			Message:   err.Error(),
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{
			Provider:   ProviderGemini,
			StatusCode: resp.StatusCode,
			Message:    string(bodyBytes),
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", &TransportError{
			Provider:   ProviderGemini,
			StatusCode: apiResp.Error.Code,
			Message:    apiResp.Error.Message,
			Retryable:  apiResp.Error.Code >= 500,
		}
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return "", &TransportError{
			Provider:   ProviderGemini,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("prompt blocked: %s", apiResp.PromptFeedback.BlockReason),
			Retryable:  false,
		}
	}
	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			c.logger.Warn("candidate finished abnormally",
				zap.Int("candidate", i),
				zap.String("finishReason", candidate.FinishReason))
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return responseText.String(), nil
}
