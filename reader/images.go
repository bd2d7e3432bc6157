package reader

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Image is an image XObject embedded in a page, still in its encoded form.
type Image struct {
	Name   string
	Format string // file type reported by pdfcpu: "png", "jpg", "tif", ...
	Width  int
	Height int
	Data   []byte
}

// Area returns the pixel area of the image.
func (img Image) Area() int {
	return img.Width * img.Height
}

// PageImages extracts the images embedded in a page (1-based), largest
// first. Images that fail to decode are skipped.
func (r *Reader) PageImages(page int) (images []Image, err error) {
	if page < 1 || page > r.pages {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, page)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, err := r.structure()
	if err != nil {
		return nil, fmt.Errorf("failed to load document structure: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			images, err = nil, fmt.Errorf("page %d images: %v", page, rec)
		}
	}()

	extracted, err := pdfcpu.ExtractPageImages(ctx, page, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	for _, img := range extracted {
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil || len(data) == 0 {
			continue
		}
		images = append(images, Image{
			Name:   img.Name,
			Format: img.FileType,
			Width:  img.Width,
			Height: img.Height,
			Data:   data,
		})
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].Area() != images[j].Area() {
			return images[i].Area() > images[j].Area()
		}
		return images[i].Name < images[j].Name
	})
	return images, nil
}
