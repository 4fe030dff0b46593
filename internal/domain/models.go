package domain

import "docsight/internal/jsonval"

// FileRecord is the consolidated extraction result for one uploaded file.
// Content is always a single JSON value: multi-page documents are reduced
// to one value before the record is built.
type FileRecord struct {
	Filename string        `json:"filename"`
	Content  jsonval.Value `json:"content"`
}

// Envelope is the top-level response wrapping all per-file results, in
// upload order.
type Envelope struct {
	Files []FileRecord `json:"files"`
}
