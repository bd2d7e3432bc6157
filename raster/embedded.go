package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/tsawler/pdfoutline/reader"
)

// ImageSource lists the encoded images embedded in a page.
type ImageSource interface {
	PageImages(page int) ([]reader.Image, error)
}

// Embedded uses the largest decodable image embedded in the page. Scanners
// usually store each page as one full-page image, so the image is assumed
// to cover the page's media box.
type Embedded struct {
	Source ImageSource

	// MinArea skips images smaller than this many pixels (logos, bullets).
	MinArea int
}

// Rasterize implements Rasterizer.
func (e Embedded) Rasterize(ctx context.Context, req Request) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	images, err := e.Source.PageImages(req.Page)
	if err != nil {
		return nil, fmt.Errorf("embedded images page %d: %w", req.Page, err)
	}

	for _, im := range images {
		if im.Area() < e.MinArea {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(im.Data))
		if err != nil {
			continue
		}
		return newPage(img, req.Box, req.DPI, "embedded", nil), nil
	}
	return nil, fmt.Errorf("embedded images page %d: %w", req.Page, ErrNoImage)
}
