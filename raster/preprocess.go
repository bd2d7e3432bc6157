package raster

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/tsawler/pdfoutline/lang"
)

// Options controls OCR preprocessing.
type Options struct {
	// DPI is the target resolution; coarser images are upscaled toward it.
	DPI float64

	Binarize lang.Binarization

	// MaxUpscale bounds the upscale factor and MaxDimension the larger
	// side of the result, in pixels.
	MaxUpscale   float64
	MaxDimension int

	// AdaptiveWindow is the side of the neighbourhood used for adaptive
	// thresholding; a pixel turns black when it is darker than the
	// neighbourhood mean minus AdaptiveOffset.
	AdaptiveWindow int
	AdaptiveOffset int
}

// DefaultOptions returns sensible default configuration
func DefaultOptions() Options {
	return Options{
		DPI:            216,
		Binarize:       lang.BinarizeAdaptive,
		MaxUpscale:     4,
		MaxDimension:   8000,
		AdaptiveWindow: 31,
		AdaptiveOffset: 10,
	}
}

// Preprocess converts the page image to grayscale, upscales it toward the
// target resolution and binarizes it, updating the page scales in place.
func Preprocess(p *Page, o Options) {
	if p == nil || p.Image == nil {
		return
	}
	g := Grayscale(p.Image)

	if f := upscaleFactor(g.Bounds(), p.ScaleX, p.ScaleY, o); f > 1.01 {
		before := g.Bounds()
		g = Upscale(g, f)
		after := g.Bounds()
		p.ScaleX *= float64(after.Dx()) / float64(before.Dx())
		p.ScaleY *= float64(after.Dy()) / float64(before.Dy())
	}

	switch o.Binarize {
	case lang.BinarizeOtsu:
		Threshold(g, Otsu(g))
	case lang.BinarizeAdaptive:
		g = AdaptiveThreshold(g, o.AdaptiveWindow, o.AdaptiveOffset)
	}
	p.Image = g
}

func upscaleFactor(b image.Rectangle, sx, sy float64, o Options) float64 {
	if o.DPI <= 0 || sx <= 0 || sy <= 0 {
		return 1
	}
	f := (o.DPI / 72) / math.Min(sx, sy)
	if o.MaxUpscale > 0 && f > o.MaxUpscale {
		f = o.MaxUpscale
	}
	if longest := math.Max(float64(b.Dx()), float64(b.Dy())); o.MaxDimension > 0 && longest*f > float64(o.MaxDimension) {
		f = float64(o.MaxDimension) / longest
	}
	return f
}

// Grayscale returns a copy of img as 8-bit gray with its origin at (0,0).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// Upscale resizes g by factor with Catmull-Rom interpolation.
func Upscale(g *image.Gray, factor float64) *image.Gray {
	b := g.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 || h < 1 {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// Otsu returns the threshold that maximizes the between-class variance of
// the gray histogram.
func Otsu(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB, best float64
		wB         int
		threshold  uint8
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Threshold sets pixels at or below t to black and the rest to white.
func Threshold(g *image.Gray, t uint8) {
	for i, v := range g.Pix {
		if v <= t {
			g.Pix[i] = 0
		} else {
			g.Pix[i] = 255
		}
	}
}

// AdaptiveThreshold binarizes against the mean of a window around each
// pixel, which tolerates uneven scan lighting.
func AdaptiveThreshold(g *image.Gray, window, offset int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if window < 3 {
		window = 3
	}
	half := window / 2

	// integral[y+1][x+1] holds the sum of pixels above and left of (x,y)
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + row
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h, y+half+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w, x+half+1)
			sum := integral[y1*(w+1)+x1] - integral[y0*(w+1)+x1] - integral[y1*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / int64((x1-x0)*(y1-y0))
			if int64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) < mean-int64(offset) {
				out.Pix[y*out.Stride+x] = 0
			} else {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// EncodePNG encodes img for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
