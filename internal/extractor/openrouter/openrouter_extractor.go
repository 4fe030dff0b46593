// Package openrouter implements page extraction against the OpenRouter
// aggregator, which speaks the same chat-completions protocol as OpenAI but
// fronts multiple upstream model vendors.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docsight/internal/config"
	"docsight/internal/extractor"
	"docsight/internal/jsonval"
)

const (
	// ProviderName is the identifier callers use to select this provider.
	ProviderName = "OpenRouter"

	apiURL = "https://openrouter.ai/api/v1/chat/completions"
)

// models lists the vision-capable models exposed for this provider, in
// catalog order.
var models = []string{
	"openai/chatgpt-4o-latest",
	"openai/gpt-4o-mini-2024-07-18",
	"mistralai/pixtral-12b:free",
	"meta-llama/llama-3.1-405b",
	"google/gemini-pro-vision",
}

// Extractor implements port.PageExtractor using the OpenRouter API.
type Extractor struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewExtractor creates an OpenRouter-based page extractor from a provider config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API
// endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ProviderConfig, endpoint string) *Extractor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Models returns the provider's model catalog.
func (e *Extractor) Models() []string {
	return append([]string(nil), models...)
}

// Extract sends one page image to the OpenRouter API and returns the parsed
// JSON value from the model response.
func (e *Extractor) Extract(ctx context.Context, image []byte, model string) (jsonval.Value, error) {
	bodyBytes, err := json.Marshal(extractor.NewChatRequest(model, image))
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("calling openrouter API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openrouter API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return jsonval.Value{}, extractor.NewRateLimitError("openrouter", baseErr, retryAfter)
		}
		return jsonval.Value{}, baseErr
	}

	return extractor.DecodeChatResponse(respBody)
}
