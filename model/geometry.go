package model

import "math"

// BBox represents an axis-aligned rectangle in page space, measured in PDF
// points. The origin is the top-left corner of the page and Y grows
// downward, so Y0 is the top edge and Y1 the bottom edge. Direct and OCR
// lines are both expressed in this system so they can be ordered together.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewBBox creates a bounding box from two corners given in any order.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// CenterX returns the horizontal center
func (b BBox) CenterX() float64 {
	return (b.X0 + b.X1) / 2
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Union returns the smallest box containing both boxes. An empty box is
// treated as the identity so that unions can be accumulated from zero.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// Scale multiplies every coordinate by f. It converts raster pixel boxes
// into page points when f is points-per-pixel.
func (b BBox) Scale(f float64) BBox {
	return BBox{X0: b.X0 * f, Y0: b.Y0 * f, X1: b.X1 * f, Y1: b.Y1 * f}
}

// GapBelow returns the vertical distance from the bottom of b to the top of
// next. The result is negative when the boxes overlap vertically.
func (b BBox) GapBelow(next BBox) float64 {
	return next.Y0 - b.Y1
}
