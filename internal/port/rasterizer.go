package port

import "context"

// Rasterizer renders a multi-page document into one image per page, in
// document order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([][]byte, error)
}
