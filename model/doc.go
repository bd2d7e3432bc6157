// Package model defines the data shared by every stage of outline
// extraction.
//
// # Lines
//
// A [LineRecord] is one physical line of text on a page. Lines read from the
// PDF content stream and lines recognized by OCR share the same type; the
// [Source] field tells them apart and OCR lines leave FontSize at zero.
//
//	model.SortLines(lines) // page, then position within the page
//
// # Headings
//
// The classifier turns lines into [HeadingCandidate] values with a
// [HeadingLevel]. Levels serialize as "H1".."H6".
//
// # Outlines
//
// A [DocumentOutline] is the per-file result: a title, the ordered
// [OutlineEntry] list and [Metadata]. Its JSON encoding is the output file
// format:
//
//	{"title": "...", "outline": [{"level": "H1", "text": "...", "page": 1}],
//	 "metadata": {"source_file": "...", ...}}
//
// # Geometry
//
// [BBox] uses a top-left origin with Y growing downward, so sorting by Y0
// yields top-to-bottom order for both text sources.
package model
