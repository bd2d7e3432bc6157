package layout

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
)

// fontBucket is the granularity, in points, at which font sizes are
// considered equal when ranking heading levels.
const fontBucket = 0.5

// FontStats summarizes the font sizes of one document's direct-source
// lines. It is computed once per document because absolute sizes vary
// between authoring tools; only ratios and ranks are compared.
type FontStats struct {
	// Median is the character-weighted median font size, which tracks the
	// body text size.
	Median float64

	// Sizes are the distinct bucketed font sizes, largest first.
	Sizes []float64
}

// ComputeFontStats builds the statistics for a document's lines. OCR lines
// and lines without font metadata are ignored.
func ComputeFontStats(lines []model.LineRecord) FontStats {
	type weighted struct {
		size  float64
		runes int
	}

	var (
		samples []weighted
		total   int
		seen    = make(map[float64]bool)
		st      FontStats
	)
	for _, l := range lines {
		if l.Source != model.SourceDirect || !l.HasFontSize() {
			continue
		}
		n := utf8.RuneCountInString(l.Text)
		samples = append(samples, weighted{l.FontSize, n})
		total += n

		b := bucket(l.FontSize)
		if !seen[b] {
			seen[b] = true
			st.Sizes = append(st.Sizes, b)
		}
	}
	if total == 0 {
		return FontStats{}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].size < samples[j].size })
	half := (total + 1) / 2
	acc := 0
	for _, s := range samples {
		acc += s.runes
		if acc >= half {
			st.Median = s.size
			break
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(st.Sizes)))
	return st
}

// Ratio returns size relative to the median, or 0 when no median exists.
func (s FontStats) Ratio(size float64) float64 {
	if s.Median <= 0 {
		return 0
	}
	return size / s.Median
}

// Rank returns the 1-based rank of size among the document's sizes that
// reach minRatio: the largest heading size ranks 1.
func (s FontStats) Rank(size, minRatio float64) int {
	b := bucket(size)
	rank := 1
	for _, other := range s.Sizes {
		if other > b && s.Ratio(other) >= minRatio {
			rank++
		}
	}
	return rank
}

func bucket(size float64) float64 {
	return math.Round(size/fontBucket) * fontBucket
}
