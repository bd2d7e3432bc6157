// integration.go connects resolved pages to the layout stage: running
// header removal, ordering and the language sample
package pdfoutline

import (
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/resolver"
)

// toPageLines converts resolver results to header detection input.
func toPageLines(results []resolver.PageResult) []layout.PageLines {
	pages := make([]layout.PageLines, len(results))
	for i, r := range results {
		pages[i] = layout.PageLines{Page: r.Page, Height: r.Height, Lines: r.Lines}
	}
	return pages
}

// flatten joins the lines of all pages ordered by page and index.
func flatten(pages []layout.PageLines) []model.LineRecord {
	n := 0
	for _, p := range pages {
		n += len(p.Lines)
	}
	lines := make([]model.LineRecord, 0, n)
	for _, p := range pages {
		lines = append(lines, p.Lines...)
	}
	model.SortLines(lines)
	return lines
}

// sampleText collects line text from pages that do not need OCR, up to
// limit runes, for language detection.
func sampleText(results []resolver.PageResult, limit int) string {
	var b strings.Builder
	n := 0
	for _, r := range results {
		if r.NeedsOCR {
			continue
		}
		for _, l := range r.Lines {
			if limit > 0 && n >= limit {
				return b.String()
			}
			b.WriteString(l.Text)
			b.WriteByte('\n')
			n += utf8.RuneCountInString(l.Text) + 1
		}
	}
	return b.String()
}

// lineText joins the text of lines, one per row.
func lineText(lines []model.LineRecord) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
