// Package layout turns positioned text into line records and decides which
// lines are headings.
//
// # Lines
//
// The [LineBuilder] groups the text fragments of a page into lines by
// baseline, orders right-to-left lines from the right edge and inserts
// spaces at word gaps (CJK text is joined without spaces):
//
//	lines := layout.NewLineBuilder().Build(page, fragments, pageWidth, pageHeight)
//
// On pages set in columns, the [ColumnDetector] finds the whitespace gaps
// that run down the page and the lines are read one column at a time;
// lines spanning the columns, such as titles, stay whole.
//
// [AssignSpacing] measures the whitespace around each line; OCR lines use it
// as well.
//
// # Font Statistics
//
// [ComputeFontStats] derives the body font size (a character-weighted
// median) and the ranking of larger sizes for one document.
//
// # Headings
//
// The [Classifier] applies, in order, the language profile's numbering
// rules, the font-size ratio and the OCR positional cues:
//
//	stats := layout.ComputeFontStats(lines)
//	cands := layout.NewClassifier().ClassifyAll(lines, profile, stats)
//
// # Running Headers
//
// The [HeaderFooterDetector] removes text repeated at the top or bottom of
// most pages before classification.
package layout
