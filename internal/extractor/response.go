package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"docsight/internal/jsonval"
)

// chatResponse models the chat-completions API response shared by all
// providers.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// DecodeChatResponse extracts the model's textual content from a
// chat-completions response body, strips an optional markdown code fence,
// and parses the remainder as a JSON value.
func DecodeChatResponse(body []byte) (jsonval.Value, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return jsonval.Value{}, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return jsonval.Value{}, fmt.Errorf("empty response from API: no choices")
	}

	content := StripFence(resp.Choices[0].Message.Content)

	v, err := jsonval.Parse([]byte(content))
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("parsing model JSON output: %w (raw: %s)", err, truncate(content, 500))
	}
	return v, nil
}

// StripFence removes a wrapping markdown code fence, if present: the opening
// fence line (optionally tagged with a language such as "json") and the
// closing fence line. Content without a fence is returned unchanged.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	lines := strings.Split(trimmed, "\n")
	lines = lines[1:] // opening fence line
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
