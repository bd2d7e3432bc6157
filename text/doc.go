// Package text provides the character-level helpers shared by direct
// extraction, OCR post-processing and heading classification.
//
// # Fragments
//
// A [Fragment] is a positioned run of glyphs as read from a PDF page, in PDF
// user space (origin bottom-left). The layout package groups fragments into
// lines.
//
// # Normalization
//
// [Clean] removes control and zero-width characters and [CollapseSpace]
// folds whitespace runs. [Fold] additionally applies Unicode NFKC so that
// full-width digits and punctuation ("１．") match ASCII numbering patterns:
//
//	text.Fold("第１章　概要") // "第1章 概要"
//
// # Text Direction
//
// The package supports bidirectional text with the [Direction] type:
//
//   - LTR - left-to-right (Latin, CJK, etc.)
//   - RTL - right-to-left (Arabic, Hebrew)
//   - Neutral - digits, punctuation and whitespace
//
// [DetectDirection] returns the dominant direction of a string.
package text
