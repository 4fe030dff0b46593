package domain

import "errors"

var (
	ErrInvalidProvider     = errors.New("invalid provider")
	ErrNoFiles             = errors.New("no files provided")
	ErrRasterizationFailed = errors.New("failed to rasterize document")
	ErrExtractionFailed    = errors.New("failed to extract page content")
)
