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
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiClient is the primary hosted text-generation tier, backed by the
// Gemini generateContent REST API.
type GeminiClient struct {
	apiKey      string
	model       string
	httpClient  *http.Client
	baseURL     string
	RetryConfig RetryConfig
}

// NewGeminiClient creates a Gemini-backed provider.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  defaultGeminiModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     defaultGeminiBaseURL,
		RetryConfig: DefaultGeminiRetryConfig,
	}
}

// Name identifies this tier in logs.
func (c *GeminiClient) Name() string { return "gemini" }

// Generate calls the Gemini API with retry on transient failures.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", &ProviderError{Provider: c.Name(), Message: "API key not configured"}
	}
	return WithRetry(ctx, c.RetryConfig, func(ctx context.Context) (string, error) {
		return c.generateContent(ctx, prompt, maxTokens)
	})
}

func (c *GeminiClient) generateContent(ctx context.Context, prompt string, maxTokens int) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "API call failed", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "read response", Retryable: true, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider:  c.Name(),
			Message:   fmt.Sprintf("API error %d: %s", resp.StatusCode, string(respBody)),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", &ProviderError{Provider: c.Name(), Message: "parse response", Cause: err}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: c.Name(), Message: "empty response"}
	}

	text := geminiResp.Candidates[0].Content.Parts[0].Text
	// Strip markdown code fences if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text), nil
}
