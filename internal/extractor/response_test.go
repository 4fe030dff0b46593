package extractor_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsight/internal/extractor"
)

func chatBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestDecodeChatResponse_PlainJSON(t *testing.T) {
	v, err := extractor.DecodeChatResponse(chatBody(t, `{"name":"Jane"}`))
	require.NoError(t, err)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Jane"}`, string(out))
}

func TestDecodeChatResponse_FencedJSON(t *testing.T) {
	v, err := extractor.DecodeChatResponse(chatBody(t, "```json\n{\"total\":\"10\"}\n```"))
	require.NoError(t, err)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"total":"10"}`, string(out))
}

func TestDecodeChatResponse_NoChoices(t *testing.T) {
	_, err := extractor.DecodeChatResponse([]byte(`{"choices":[]}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestDecodeChatResponse_NotJSONContent(t *testing.T) {
	_, err := extractor.DecodeChatResponse(chatBody(t, "Sorry, I cannot read this image."))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing model JSON output")
}

func TestDecodeChatResponse_MalformedBody(t *testing.T) {
	_, err := extractor.DecodeChatResponse([]byte(`not json at all`))
	assert.Error(t, err)
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"missing closing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"multiline content", "```json\n{\"a\":\n1}\n```", "{\"a\":\n1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.StripFence(tt.input))
		})
	}
}
