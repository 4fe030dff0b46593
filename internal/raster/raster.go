// Package raster renders PDF documents into per-page JPEG images.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"

	"docsight/internal/domain"
)

const defaultQuality = 85

// Converter implements port.Rasterizer using go-fitz (MuPDF).
type Converter struct {
	quality int
}

// NewConverter creates a Converter encoding pages as JPEG at the given
// quality (1-100). Non-positive quality selects the default.
func NewConverter(quality int) *Converter {
	if quality <= 0 {
		quality = defaultQuality
	}
	return &Converter{quality: quality}
}

// Rasterize renders each page of the PDF to a JPEG byte buffer, in document
// order. Malformed input yields domain.ErrRasterizationFailed.
func (c *Converter) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: opening document: %v", domain.ErrRasterizationFailed, err)
	}
	defer func() { _ = doc.Close() }()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrRasterizationFailed)
	}

	pages := make([][]byte, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, fmt.Errorf("%w: rendering page %d: %v", domain.ErrRasterizationFailed, pageNum+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
			return nil, fmt.Errorf("%w: encoding page %d as JPEG: %v", domain.ErrRasterizationFailed, pageNum+1, err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}
