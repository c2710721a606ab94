package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spendcast/backend/internal/cache"
)

// LocalModelClient is the secondary tier: an HTTP client for a self-hosted
// text-generation service. Responses are memoized per (model, prompt) so
// identical prompts within the cache lifetime skip the model entirely.
type LocalModelClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	responses  *cache.Cache[string]
}

// NewLocalModelClient creates a local model client. responses may be nil to
// disable memoization.
func NewLocalModelClient(baseURL, model string, responses *cache.Cache[string]) *LocalModelClient {
	return &LocalModelClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // generation on CPU can be slow
		},
		responses: responses,
	}
}

// Name identifies this tier in logs.
func (c *LocalModelClient) Name() string { return "local:" + c.model }

// generateRequest is the request body for the local generation service.
type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxLength int    `json:"max_length"`
	Model     string `json:"model"`
}

// generateResponse is the response body from the local generation service.
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error,omitempty"`
}

// Generate asks the local service for text, consulting the response cache
// first.
func (c *LocalModelClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.baseURL == "" {
		return "", &ProviderError{Provider: c.Name(), Message: "service URL not configured"}
	}

	cacheKey := c.model + ":" + prompt
	if c.responses != nil {
		if text, ok := c.responses.Get(cacheKey); ok {
			return text, nil
		}
	}

	reqBody, err := json.Marshal(generateRequest{Prompt: prompt, MaxLength: maxTokens, Model: c.model})
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "service call failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: c.Name(),
			Message:  fmt.Sprintf("service error %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "parse response", Cause: err}
	}
	if genResp.Error != "" {
		return "", &ProviderError{Provider: c.Name(), Message: genResp.Error}
	}

	// Some models echo the prompt back; strip it.
	text := strings.TrimSpace(strings.TrimPrefix(genResp.GeneratedText, prompt))
	if text == "" {
		return "", &ProviderError{Provider: c.Name(), Message: "empty generation"}
	}

	if c.responses != nil {
		c.responses.Set(cacheKey, text)
	}
	return text, nil
}
