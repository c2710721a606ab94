package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTranslator talks to a LibreTranslate-compatible translation service.
// Translation failures are absorbed by the Generator, so this client only
// reports errors, it never retries.
type HTTPTranslator struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPTranslator creates a translator client.
func NewHTTPTranslator(baseURL string) *HTTPTranslator {
	return &HTTPTranslator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Translate converts text into targetLanguage.
func (t *HTTPTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if t.baseURL == "" {
		return "", fmt.Errorf("translator URL not configured")
	}

	reqBody, err := json.Marshal(map[string]string{
		"q":      text,
		"source": "auto",
		"target": targetLanguage,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/translate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service error %d: %s", resp.StatusCode, string(respBody))
	}

	var translateResp struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(respBody, &translateResp); err != nil {
		return "", fmt.Errorf("parse translation response: %w", err)
	}
	return translateResp.TranslatedText, nil
}
