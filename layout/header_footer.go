package layout

import (
	"strings"
	"unicode"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// RegionType indicates whether a region is a header or footer
type RegionType int

const (
	Header RegionType = iota
	Footer
)

func (r RegionType) String() string {
	if r == Header {
		return "header"
	}
	return "footer"
}

// HeaderFooterConfig holds configuration for running header/footer detection
type HeaderFooterConfig struct {
	// RegionHeight is the distance from the top or bottom page edge within
	// which a line counts as a header or footer
	// Default: 72 points (1 inch)
	RegionHeight float64

	// MinOccurrenceRatio is the minimum fraction of pages a text must appear on
	// to be considered a header/footer (0.0 to 1.0)
	// Default: 0.5 (50% of pages)
	MinOccurrenceRatio float64

	// MinPages is the minimum number of pages required for detection
	// Default: 3
	MinPages int
}

// DefaultHeaderFooterConfig returns sensible default configuration
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		RegionHeight:       72.0,
		MinOccurrenceRatio: 0.5,
		MinPages:           3,
	}
}

// PageLines are the line records of a single page
type PageLines struct {
	Page   int
	Height float64
	Lines  []model.LineRecord
}

// HeaderFooterDetector finds text repeated at the top or bottom of many
// pages, such as running titles and page numbers
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

// NewHeaderFooterDetector creates a new detector with default configuration
func NewHeaderFooterDetector() *HeaderFooterDetector {
	return &HeaderFooterDetector{config: DefaultHeaderFooterConfig()}
}

// NewHeaderFooterDetectorWithConfig creates a detector with custom configuration
func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) *HeaderFooterDetector {
	return &HeaderFooterDetector{config: config}
}

type regionKey struct {
	region RegionType
	text   string
}

// Detect returns the comparison keys of running texts, per region.
func (d *HeaderFooterDetector) Detect(pages []PageLines) map[RegionType]map[string]bool {
	result := map[RegionType]map[string]bool{Header: {}, Footer: {}}
	if len(pages) < d.config.MinPages {
		return result
	}

	pagesByKey := make(map[regionKey]map[int]bool)
	for _, pg := range pages {
		for _, l := range pg.Lines {
			region, ok := d.regionOf(l, pg.Height)
			if !ok {
				continue
			}
			k := regionKey{region, RunningKey(l.Text)}
			if k.text == "" {
				continue
			}
			if pagesByKey[k] == nil {
				pagesByKey[k] = make(map[int]bool)
			}
			pagesByKey[k][pg.Page] = true
		}
	}

	minOccurrences := int(float64(len(pages)) * d.config.MinOccurrenceRatio)
	if minOccurrences < 2 {
		minOccurrences = 2
	}
	for k, set := range pagesByKey {
		if len(set) >= minOccurrences {
			result[k.region][k.text] = true
		}
	}
	return result
}

// Filter removes running header and footer lines from every page except
// their first occurrence, which may be a genuine heading. It returns the
// filtered pages and the number of lines removed.
func (d *HeaderFooterDetector) Filter(pages []PageLines) ([]PageLines, int) {
	running := d.Detect(pages)
	if len(running[Header]) == 0 && len(running[Footer]) == 0 {
		return pages, 0
	}

	seen := make(map[regionKey]bool)
	removed := 0
	out := make([]PageLines, len(pages))
	for i, pg := range pages {
		out[i] = PageLines{Page: pg.Page, Height: pg.Height}
		for _, l := range pg.Lines {
			if region, ok := d.regionOf(l, pg.Height); ok {
				k := regionKey{region, RunningKey(l.Text)}
				if running[region][k.text] {
					if seen[k] {
						removed++
						continue
					}
					seen[k] = true
				}
			}
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	return out, removed
}

func (d *HeaderFooterDetector) regionOf(l model.LineRecord, pageHeight float64) (RegionType, bool) {
	if l.BBox.Y0 < d.config.RegionHeight {
		return Header, true
	}
	if pageHeight > 0 && pageHeight-l.BBox.Y1 < d.config.RegionHeight {
		return Footer, true
	}
	return Header, false
}

// RunningKey normalizes text for comparison across pages: digits become
// '#' so "Page 3" and "Page 4" compare equal, and case is ignored.
func RunningKey(s string) string {
	s = strings.ToLower(text.Fold(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return '#'
		}
		return r
	}, s)
}
