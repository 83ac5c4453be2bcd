package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openaiOKBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"choices": [
		{"index": 0, "message": {"role": "assistant", "content": "The rule is stated."}, "finish_reason": "stop"}
	]
}`

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc, opts ...OpenAIOption) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]OpenAIOption{OpenAIWithBaseURL(server.URL)}, opts...)
	client, err := NewOpenAIClient("test-key", opts...)
	require.NoError(t, err)
	return client
}

func TestOpenAICompleteSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openaiOKBody))
	}, OpenAIWithModel("test-model"))

	out, err := client.Complete(context.Background(), "State the rule.")
	require.NoError(t, err)

	assert.Equal(t, "The rule is stated.", out)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "State the rule.", gotBody.Messages[1].Content)
}

func TestOpenAICompleteServerErrorRetryable(t *testing.T) {
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	})

	_, err := client.Complete(context.Background(), "State the rule.")
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ProviderOpenAI, terr.Provider)
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	assert.True(t, terr.Retryable)
}

func TestOpenAICompleteClientErrorNotRetryable(t *testing.T) {
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid model", "type": "invalid_request_error"}}`))
	})

	_, err := client.Complete(context.Background(), "State the rule.")
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.False(t, terr.Retryable)
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`))
	})

	_, err := client.Complete(context.Background(), "State the rule.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	require.Error(t, err)
}
