package model

import (
	"fmt"
	"sort"
	"strings"
)

// Source identifies where the text of a line came from.
type Source int

const (
	// SourceDirect marks text read from the PDF content stream.
	SourceDirect Source = iota
	// SourceOCR marks text recognized from a rasterized page image.
	SourceOCR
)

// String returns "direct" or "ocr".
func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceOCR:
		return "ocr"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(strings.ToUpper(s.String())), nil
}

// LineRecord is a single physical line of text on a page, regardless of
// whether it was extracted directly or recognized by OCR. Records are values
// and are never modified once a page has produced them.
type LineRecord struct {
	// Text is the line content with whitespace collapsed.
	Text string

	// Page is the 1-based page number.
	Page int

	// Index is the position of the line within its page in top-to-bottom
	// reading order.
	Index int

	// FontSize is the largest font size on the line, or 0 when unknown
	// (always 0 for OCR lines).
	FontSize float64

	// BBox is the line's bounding box in page points, top-left origin.
	BBox BBox

	// Source tells whether the line was extracted directly or by OCR.
	Source Source

	// Confidence is the OCR confidence in [0,1]; 1.0 for direct lines.
	Confidence float64

	// Bold is set when the dominant font name carries a bold weight.
	Bold bool

	// RTL is set when the line's dominant direction is right-to-left.
	RTL bool

	// PageWidth is the width in points of the page the line sits on, or 0
	// when unknown.
	PageWidth float64

	// SpaceAbove and SpaceBelow are the vertical gaps to the previous and
	// next line on the same page. A line at the top or bottom of the page
	// measures against the page edge.
	SpaceAbove float64
	SpaceBelow float64
}

// HasFontSize reports whether the line carries usable font metadata.
func (l LineRecord) HasFontSize() bool {
	return l.FontSize > 0
}

// Height returns the height of the line's bounding box.
func (l LineRecord) Height() float64 {
	return l.BBox.Height()
}

// SortLines orders records by page and then by their index within the page.
// The sort is stable so records with equal keys keep their relative order.
func SortLines(lines []LineRecord) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Page != lines[j].Page {
			return lines[i].Page < lines[j].Page
		}
		return lines[i].Index < lines[j].Index
	})
}
