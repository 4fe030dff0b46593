// Package output serializes the response envelope for download.
package output

import (
	"bytes"
	"encoding/json"

	"docsight/internal/domain"
)

// Format serializes the envelope to compact JSON and inserts a newline after
// every closing brace except the document's final one, so nested object
// boundaries are visually separated. Braces inside string literals are left
// alone; the output parses back to the same value.
func Format(env *domain.Envelope) ([]byte, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(raw) + len(raw)/16)

	inString := false
	escaped := false
	last := len(raw) - 1
	for i, b := range raw {
		buf.WriteByte(b)
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case b == '}' && !inString && i != last:
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
