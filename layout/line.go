package layout

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// LineConfig holds configuration for line building
type LineConfig struct {
	// LineHeightTolerance is the baseline distance, as a fraction of the
	// median font size, within which fragments share a line (default: 0.5)
	LineHeightTolerance float64

	// WordGapRatio is the horizontal gap, as a fraction of font size, above
	// which a space is inserted between fragments (default: 0.2)
	WordGapRatio float64

	// CJKGapRatio replaces WordGapRatio between two CJK characters, which
	// are normally set without spaces (default: 0.8)
	CJKGapRatio float64

	// Ascent and Descent approximate the glyph extent above and below the
	// baseline as fractions of the font size (defaults: 0.8, 0.2)
	Ascent  float64
	Descent float64

	// Columns configures the detection of multi-column pages, whose lines
	// are read one column at a time
	Columns ColumnConfig
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		LineHeightTolerance: 0.5,
		WordGapRatio:        0.2,
		CJKGapRatio:         0.8,
		Ascent:              0.8,
		Descent:             0.2,
		Columns:             DefaultColumnConfig(),
	}
}

// LineBuilder groups positioned text fragments into line records
type LineBuilder struct {
	config  LineConfig
	columns *ColumnDetector
}

// NewLineBuilder creates a line builder with default configuration
func NewLineBuilder() *LineBuilder {
	return NewLineBuilderWithConfig(DefaultLineConfig())
}

// NewLineBuilderWithConfig creates a line builder with custom configuration
func NewLineBuilderWithConfig(config LineConfig) *LineBuilder {
	return &LineBuilder{
		config:  config,
		columns: NewColumnDetectorWithConfig(config.Columns),
	}
}

// Build turns the fragments of one page into direct-source line records in
// reading order: top to bottom, one column at a time on multi-column pages.
// Page dimensions are in points.
func (b *LineBuilder) Build(page int, fragments []text.Fragment, pageWidth, pageHeight float64) []model.LineRecord {
	frags := make([]text.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f.Text != "" {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return nil
	}

	groups := b.groupIntoLines(frags)
	if gaps := b.columns.Gaps(frags); len(gaps) > 0 {
		groups = b.columns.Order(groups, gaps)
	}

	lines := make([]model.LineRecord, 0, len(groups))
	for _, g := range groups {
		rec, ok := b.buildLine(page, g, pageWidth, pageHeight)
		if !ok {
			continue
		}
		rec.Index = len(lines)
		lines = append(lines, rec)
	}

	AssignSpacing(lines, pageHeight)
	return lines
}

// groupIntoLines groups fragments into lines by baseline, top line first
func (b *LineBuilder) groupIntoLines(frags []text.Fragment) [][]text.Fragment {
	tolerance := medianFontSize(frags) * b.config.LineHeightTolerance
	if tolerance <= 0 {
		tolerance = 2.0
	}

	// Higher Y first (top of page); same-line fragments keep stream order
	sorted := make([]text.Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		dy := sorted[i].Y - sorted[j].Y
		if math.Abs(dy) > tolerance {
			return dy > 0
		}
		return false
	})

	var lines [][]text.Fragment
	var current []text.Fragment
	sum := 0.0

	for _, f := range sorted {
		if len(current) > 0 && math.Abs(f.Y-sum/float64(len(current))) > tolerance {
			lines = append(lines, current)
			current, sum = nil, 0
		}
		current = append(current, f)
		sum += f.Y
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// buildLine assembles one group of fragments into a record
func (b *LineBuilder) buildLine(page int, frags []text.Fragment, pageWidth, pageHeight float64) (model.LineRecord, bool) {
	var raw strings.Builder
	for _, f := range frags {
		raw.WriteString(f.Text)
	}
	rtl := text.DetectDirection(raw.String()) == text.RTL

	// RTL lines read from the right edge
	sort.SliceStable(frags, func(i, j int) bool {
		if rtl {
			return frags[i].X > frags[j].X
		}
		return frags[i].X < frags[j].X
	})

	s := text.Tidy(b.assembleText(frags, rtl))
	if s == "" {
		return model.LineRecord{}, false
	}

	var (
		fontSize           float64
		boldRunes, allRune int
		x0, x1             = math.Inf(1), math.Inf(-1)
		top, bottom        = math.Inf(-1), math.Inf(1)
	)
	for _, f := range frags {
		fontSize = math.Max(fontSize, f.FontSize)
		n := utf8.RuneCountInString(strings.TrimSpace(f.Text))
		allRune += n
		if text.IsBoldFont(f.FontName) {
			boldRunes += n
		}
		x0 = math.Min(x0, f.X)
		x1 = math.Max(x1, f.Right())
		top = math.Max(top, f.Y+f.FontSize*b.config.Ascent)
		bottom = math.Min(bottom, f.Y-f.FontSize*b.config.Descent)
	}

	return model.LineRecord{
		Text:       s,
		Page:       page,
		FontSize:   fontSize,
		BBox:       model.NewBBox(x0, pageHeight-top, x1, pageHeight-bottom),
		Source:     model.SourceDirect,
		Confidence: 1.0,
		Bold:       allRune > 0 && boldRunes*2 > allRune,
		RTL:        rtl,
		PageWidth:  pageWidth,
	}, true
}

// assembleText joins fragments, inserting a space where the horizontal gap
// between neighbours is wide enough to be a word break
func (b *LineBuilder) assembleText(frags []text.Fragment, rtl bool) string {
	var sb strings.Builder
	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			gap := f.X - prev.Right()
			if rtl {
				gap = prev.X - f.Right()
			}
			if b.needsSpace(prev, f, gap) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(f.Text)
	}
	return sb.String()
}

func (b *LineBuilder) needsSpace(prev, cur text.Fragment, gap float64) bool {
	if strings.HasSuffix(prev.Text, " ") || strings.HasPrefix(cur.Text, " ") {
		return false
	}
	size := math.Max(prev.FontSize, cur.FontSize)
	if size <= 0 {
		size = 10
	}

	last, _ := utf8.DecodeLastRuneInString(prev.Text)
	first, _ := utf8.DecodeRuneInString(cur.Text)
	ratio := b.config.WordGapRatio
	if text.IsCJK(last) && text.IsCJK(first) {
		ratio = b.config.CJKGapRatio
	}
	return gap > size*ratio
}

// AssignSpacing fills SpaceAbove and SpaceBelow for lines already in
// reading order. The first and last lines measure against the page edges;
// the first line of a new column gets a negative SpaceAbove.
func AssignSpacing(lines []model.LineRecord, pageHeight float64) {
	for i := range lines {
		if i == 0 {
			lines[i].SpaceAbove = lines[i].BBox.Y0
		} else {
			lines[i].SpaceAbove = lines[i-1].BBox.GapBelow(lines[i].BBox)
		}
		if i == len(lines)-1 {
			lines[i].SpaceBelow = pageHeight - lines[i].BBox.Y1
		} else {
			lines[i].SpaceBelow = lines[i].BBox.GapBelow(lines[i+1].BBox)
		}
	}
}

// medianFontSize returns the median font size of the fragments
func medianFontSize(frags []text.Fragment) float64 {
	sizes := make([]float64, 0, len(frags))
	for _, f := range frags {
		if f.FontSize > 0 {
			sizes = append(sizes, f.FontSize)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}
