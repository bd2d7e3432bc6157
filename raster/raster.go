package raster

import (
	"context"
	"errors"
	"image"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/reader"
)

// ErrNoImage is returned when a page has no usable raster source.
var ErrNoImage = errors.New("no page image")

// Page is a rasterized page. ScaleX and ScaleY are pixels per PDF point and
// convert recognized pixel boxes back to page coordinates.
type Page struct {
	Image  image.Image
	ScaleX float64
	ScaleY float64

	// Source names the rasterizer that produced the page.
	Source string

	release func()
}

// Close releases the page image and any temporary files. It is safe to call
// more than once.
func (p *Page) Close() error {
	if p == nil {
		return nil
	}
	p.Image = nil
	if p.release != nil {
		p.release()
		p.release = nil
	}
	return nil
}

// ToPoints converts a pixel rectangle of the page image to a top-left
// origin box in PDF points.
func (p *Page) ToPoints(r image.Rectangle) model.BBox {
	if p.ScaleX <= 0 || p.ScaleY <= 0 {
		return model.BBox{}
	}
	return model.NewBBox(
		float64(r.Min.X)/p.ScaleX, float64(r.Min.Y)/p.ScaleY,
		float64(r.Max.X)/p.ScaleX, float64(r.Max.Y)/p.ScaleY,
	)
}

// newPage wraps a decoded image covering the whole page box.
func newPage(img image.Image, box reader.PageBox, dpi float64, source string, release func()) *Page {
	b := img.Bounds()
	p := &Page{Image: img, Source: source, release: release}
	if box.Width() > 0 && box.Height() > 0 {
		p.ScaleX = float64(b.Dx()) / box.Width()
		p.ScaleY = float64(b.Dy()) / box.Height()
	} else {
		p.ScaleX = dpi / 72
		p.ScaleY = dpi / 72
	}
	return p
}

// Request identifies the page to render.
type Request struct {
	Path string
	Page int // 1-based
	Box  reader.PageBox
	DPI  float64
}

// Rasterizer renders one page of a PDF to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, req Request) (*Page, error)
}

// Chain tries each rasterizer in order and returns the first page produced.
type Chain []Rasterizer

// Rasterize implements Rasterizer.
func (c Chain) Rasterize(ctx context.Context, req Request) (*Page, error) {
	var errs []error
	for _, r := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := r.Rasterize(ctx, req)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoImage
	}
	return nil, errors.Join(errs...)
}
