package raster

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/png"

	"github.com/tsawler/pdfoutline/internal/command"
)

// Pdftoppm renders pages with the poppler pdftoppm utility.
type Pdftoppm struct {
	// Bin is the binary name or path; "pdftoppm" when empty.
	Bin string

	// Runner executes the binary; command.Exec when nil.
	Runner command.Runner
}

// Rasterize implements Rasterizer. The rendered file lives in a temporary
// directory that is removed when the page is closed.
func (p Pdftoppm) Rasterize(ctx context.Context, req Request) (*Page, error) {
	bin := p.Bin
	if bin == "" {
		bin = "pdftoppm"
	}
	runner := p.Runner
	if runner == nil {
		runner = command.Exec{}
	}

	dir, err := os.MkdirTemp("", "pdfoutline-raster-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	prefix := filepath.Join(dir, "page")
	page := strconv.Itoa(req.Page)
	dpi := strconv.Itoa(int(math.Round(req.DPI)))
	// pdftoppm -r <dpi> -f <n> -l <n> -singlefile -png <in.pdf> <dir/page>
	_, stderr, err := runner.Run(ctx, bin, "-r", dpi, "-f", page, "-l", page, "-singlefile", "-png", req.Path, prefix)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", req.Page, err,
			command.Truncate(strings.TrimSpace(string(stderr)), 512))
	}

	img, err := decodeFile(prefix + ".png")
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("pdftoppm page %d: %w", req.Page, err)
	}
	return newPage(img, req.Box, req.DPI, "pdftoppm", cleanup), nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
