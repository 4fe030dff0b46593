// Package extractor holds the provider-agnostic pieces of page extraction:
// the chat-completions request/response plumbing shared by every provider
// and the provider registry.
package extractor

import "encoding/base64"

// Prompt is the fixed instruction sent with every page image.
const Prompt = "Return JSON document with data extracted from this image. Only return JSON, not other text."

// maxTokens caps the model output per page.
const maxTokens = 500

// NewChatRequest builds the chat-completions request body used by all
// providers: a single user message with the instruction text and the page
// image embedded as a base64 JPEG data URL.
func NewChatRequest(model string, image []byte) map[string]interface{} {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	return map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": Prompt},
					{
						"type":      "image_url",
						"image_url": map[string]interface{}{"url": imageURL},
					},
				},
			},
		},
	}
}
