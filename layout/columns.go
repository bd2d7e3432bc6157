package layout

import (
	"math"
	"sort"

	"github.com/tsawler/pdfoutline/text"
)

// ColumnConfig holds configuration for column detection
type ColumnConfig struct {
	// MinGapWidth is the minimum whitespace gap to consider as column separator
	// Default: 18 points
	MinGapWidth float64

	// MinGapHeightRatio is the share of the text height over which a gap
	// must stay clear. Titles spanning the columns may block the rest.
	// Default: 0.6
	MinGapHeightRatio float64

	// MinColumnWidth is the minimum width for a region to be considered a column
	// Default: 72 points
	MinColumnWidth float64

	// MaxColumns is the maximum number of columns to detect
	// Default: 4
	MaxColumns int
}

// DefaultColumnConfig returns sensible default configuration
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		MinGapWidth:       18,
		MinGapHeightRatio: 0.6,
		MinColumnWidth:    72,
		MaxColumns:        4,
	}
}

// Gap is a vertical band of whitespace separating two columns.
type Gap struct {
	Left  float64
	Right float64
}

// Center returns the X center of the gap
func (g Gap) Center() float64 {
	return (g.Left + g.Right) / 2
}

// Width returns the width of the gap
func (g Gap) Width() float64 {
	return g.Right - g.Left
}

// ColumnDetector finds the whitespace gaps between text columns
type ColumnDetector struct {
	config ColumnConfig
}

// NewColumnDetector creates a new column detector with default configuration
func NewColumnDetector() *ColumnDetector {
	return &ColumnDetector{config: DefaultColumnConfig()}
}

// NewColumnDetectorWithConfig creates a column detector with custom configuration
func NewColumnDetectorWithConfig(config ColumnConfig) *ColumnDetector {
	return &ColumnDetector{config: config}
}

// binWidth is the horizontal resolution, in points, of the coverage profile
const binWidth = 2.0

// Gaps returns the column gaps of a page, left to right, or nil for a
// single column page. Fragments without width metrics give no reliable
// horizontal extent, so pages dominated by them are never split.
func (d *ColumnDetector) Gaps(frags []text.Fragment) []Gap {
	var (
		minX, maxX   = math.Inf(1), math.Inf(-1)
		top, bottom  = math.Inf(-1), math.Inf(1)
		sized, total int
	)
	for _, f := range frags {
		if text.Tidy(f.Text) == "" {
			continue
		}
		total++
		if f.Width > 0 {
			sized++
		}
		minX = math.Min(minX, f.X)
		maxX = math.Max(maxX, f.Right())
		top = math.Max(top, f.Y+f.FontSize)
		bottom = math.Min(bottom, f.Y)
	}
	if total == 0 || sized*2 < total || maxX-minX < 2*d.config.MinColumnWidth {
		return nil
	}
	textHeight := top - bottom
	if textHeight <= 0 {
		return nil
	}

	// covered[i] is the text height crossing bin i
	n := int(math.Ceil((maxX-minX)/binWidth)) + 1
	covered := make([]float64, n)
	for _, f := range frags {
		if f.Width <= 0 || text.Tidy(f.Text) == "" {
			continue
		}
		h := f.FontSize
		if h <= 0 {
			h = 10
		}
		first := int((f.X - minX) / binWidth)
		last := int((f.Right() - minX) / binWidth)
		for i := max(first, 0); i <= last && i < n; i++ {
			covered[i] += h
		}
	}

	limit := textHeight * (1 - d.config.MinGapHeightRatio)
	var gaps []Gap
	start := -1
	for i := 0; i <= n; i++ {
		open := i < n && covered[i] <= limit
		if open && start < 0 {
			start = i
		}
		if !open && start >= 0 {
			g := Gap{Left: minX + float64(start)*binWidth, Right: minX + float64(i)*binWidth}
			// Runs touching the text edges are margins
			if start > 0 && i < n && g.Width() >= d.config.MinGapWidth {
				gaps = append(gaps, g)
			}
			start = -1
		}
	}

	return d.validate(gaps, minX, maxX)
}

// validate drops gaps that would leave a column narrower than the minimum
// width, keeping the widest gaps when there are too many.
func (d *ColumnDetector) validate(gaps []Gap, minX, maxX float64) []Gap {
	if d.config.MaxColumns > 0 && len(gaps) > d.config.MaxColumns-1 {
		sort.Slice(gaps, func(i, j int) bool { return gaps[i].Width() > gaps[j].Width() })
		gaps = gaps[:d.config.MaxColumns-1]
		sort.Slice(gaps, func(i, j int) bool { return gaps[i].Left < gaps[j].Left })
	}

	var out []Gap
	left := minX
	for i, g := range gaps {
		right := maxX
		if i+1 < len(gaps) {
			right = gaps[i+1].Left
		}
		if g.Left-left < d.config.MinColumnWidth || right-g.Right < d.config.MinColumnWidth {
			continue
		}
		out = append(out, g)
		left = g.Right
	}
	return out
}

// columnOf returns the index of the column containing x.
func columnOf(x float64, gaps []Gap) int {
	col := 0
	for _, g := range gaps {
		if x >= g.Center() {
			col++
		}
	}
	return col
}

// split divides one baseline group, sorted by X, into per-column pieces.
// Text that runs across a gap without a column-sized break spans the
// columns; the group is then returned whole with column -1.
func (d *ColumnDetector) split(line []text.Fragment, gaps []Gap) ([][]text.Fragment, []int) {
	var (
		pieces    [][]text.Fragment
		cols      []int
		prevRight float64
	)
	for _, f := range line {
		if text.Tidy(f.Text) == "" {
			if len(pieces) > 0 {
				pieces[len(pieces)-1] = append(pieces[len(pieces)-1], f)
			}
			continue
		}
		col := columnOf(f.X, gaps)
		if len(pieces) > 0 && col != cols[len(cols)-1] && f.X-prevRight < d.config.MinGapWidth/2 {
			return [][]text.Fragment{line}, []int{-1}
		}
		if len(pieces) == 0 || col != cols[len(cols)-1] {
			pieces = append(pieces, nil)
			cols = append(cols, col)
		}
		pieces[len(pieces)-1] = append(pieces[len(pieces)-1], f)
		prevRight = f.Right()
	}
	return pieces, cols
}

// Order arranges the baseline groups of a page, given top to bottom, in
// reading order. Within each band between spanning lines the first column
// is read top to bottom, then the next. Without gaps the groups are
// returned unchanged.
func (d *ColumnDetector) Order(groups [][]text.Fragment, gaps []Gap) [][]text.Fragment {
	if len(gaps) == 0 {
		return groups
	}
	var (
		out  [][]text.Fragment
		band = make([][][]text.Fragment, len(gaps)+1)
	)
	flush := func() {
		for i, col := range band {
			out = append(out, col...)
			band[i] = nil
		}
	}

	for _, g := range groups {
		sorted := make([]text.Fragment, len(g))
		copy(sorted, g)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

		pieces, cols := d.split(sorted, gaps)
		for i, p := range pieces {
			if cols[i] < 0 {
				flush()
				out = append(out, p)
				continue
			}
			band[cols[i]] = append(band[cols[i]], p)
		}
	}
	flush()
	return out
}
