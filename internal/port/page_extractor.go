package port

import (
	"context"

	"docsight/internal/jsonval"
)

// PageExtractor abstracts a vision-capable model provider that turns one
// page image into structured data. Implementations are provider-specific
// but all return the same opaque JSON value shape.
type PageExtractor interface {
	// Extract sends a single page image to the provider and returns the
	// parsed JSON value from the model response.
	Extract(ctx context.Context, image []byte, model string) (jsonval.Value, error)

	// Models lists the provider's supported model identifiers, in catalog
	// order.
	Models() []string
}
