package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noRetry keeps failure tests fast.
var noRetry = RetryConfig{MaxRetries: 0}

func newTestGeminiClient(baseURL string) *GeminiClient {
	c := NewGeminiClient("test-key")
	c.baseURL = baseURL
	c.RetryConfig = noRetry
	return c
}

func geminiBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}]}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGeminiClient_Generate(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiBody("Expenses look steady.")))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	text, err := client.Generate(context.Background(), "summarize my spending", 500)
	require.NoError(t, err)
	assert.Equal(t, "Expenses look steady.", text)

	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	genCfg, ok := gotBody["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(500), genCfg["maxOutputTokens"])
}

func TestGeminiClient_StripsCodeFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiBody("```json\nspending rises in winter\n```")))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	text, err := client.Generate(context.Background(), "prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, "spending rises in winter", text)
}

func TestGeminiClient_MissingAPIKey(t *testing.T) {
	client := NewGeminiClient("")
	_, err := client.Generate(context.Background(), "prompt", 100)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.False(t, provErr.Retryable)
}

func TestGeminiClient_ClientErrorNotRetryable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	client.RetryConfig = RetryConfig{MaxRetries: 2, InitialDelay: 1, BackoffFactor: 1}

	_, err := client.Generate(context.Background(), "prompt", 100)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.False(t, provErr.Retryable)
	assert.Equal(t, 1, calls, "4xx responses must not be retried")
}

func TestGeminiClient_RetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(geminiBody("recovered")))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	client.RetryConfig = RetryConfig{MaxRetries: 2, InitialDelay: 1, BackoffFactor: 1}

	text, err := client.Generate(context.Background(), "prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 3, calls)
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.Generate(context.Background(), "prompt", 100)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Message, "empty response")
}
