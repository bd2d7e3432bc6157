package model

import "math"

// OutlineEntry is one heading in a document outline.
type OutlineEntry struct {
	Level HeadingLevel `json:"level"`
	Text  string       `json:"text"`
	Page  int          `json:"page"`
}

// Metadata describes how an outline was produced.
type Metadata struct {
	SourceFile          string  `json:"source_file"`
	ProcessingTime      float64 `json:"processing_time"`
	Language            string  `json:"language"`
	DetectedLanguage    string  `json:"detected_language"`
	TotalLinesProcessed int     `json:"total_lines_processed"`
	HeadingsFound       int     `json:"headings_found"`
	FileSizeMB          float64 `json:"file_size_mb"`
}

// DocumentOutline is the final result for one PDF. Entries are ordered by
// page and then by position within the page.
type DocumentOutline struct {
	Title    string         `json:"title"`
	Entries  []OutlineEntry `json:"outline"`
	Metadata Metadata       `json:"metadata"`
}

// Levels returns the distinct levels used by the outline in ascending order.
func (o *DocumentOutline) Levels() []HeadingLevel {
	var seen [MaxHeadingLevel + 1]bool
	for _, e := range o.Entries {
		if e.Level.Valid() {
			seen[e.Level] = true
		}
	}
	var levels []HeadingLevel
	for l := H1; l <= MaxHeadingLevel; l++ {
		if seen[l] {
			levels = append(levels, l)
		}
	}
	return levels
}

// SameEntries reports whether two outlines list identical entries. Titles and
// metadata are ignored because timing fields vary between runs.
func SameEntries(a, b *DocumentOutline) bool {
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		if a.Entries[i] != b.Entries[i] {
			return false
		}
	}
	return true
}

// SizeMB converts a byte count to megabytes rounded to two decimals.
func SizeMB(bytes int64) float64 {
	return Round(float64(bytes)/(1024*1024), 2)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
