package ocr

import (
	"image"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/text"
)

// Line is a group of words sharing one text line. Box is in image pixels;
// Confidence is the mean word confidence scaled to [0,1].
type Line struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// GroupOptions controls how words are assembled into lines.
type GroupOptions struct {
	// MinWordConfidence drops words scoring below it (0-100).
	MinWordConfidence float64

	// Tolerance is the fraction of the median word height within which
	// two word centers count as the same line.
	Tolerance float64

	// NoSpaces joins words without a separator.
	NoSpaces bool
}

// GroupLines assembles recognized words into lines, top to bottom. Words
// of a right-to-left line are ordered from the right edge.
func GroupLines(words []Word, o GroupOptions) []Line {
	var kept []Word
	for _, w := range words {
		w.Text = text.Tidy(w.Text)
		if w.Text == "" || w.Box.Empty() || w.Confidence < o.MinWordConfidence {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return nil
	}

	heights := make([]int, len(kept))
	for i, w := range kept {
		heights[i] = w.Box.Dy()
	}
	sort.Ints(heights)
	tol := o.Tolerance * float64(heights[len(heights)/2])
	if tol < 1 {
		tol = 1
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ci, cj := centerY(kept[i].Box), centerY(kept[j].Box)
		if ci != cj {
			return ci < cj
		}
		return kept[i].Box.Min.X < kept[j].Box.Min.X
	})

	var (
		groups [][]Word
		lineCY float64
	)
	for _, w := range kept {
		cy := centerY(w.Box)
		if n := len(groups); n > 0 && cy-lineCY <= tol {
			groups[n-1] = append(groups[n-1], w)
			lineCY += (cy - lineCY) / float64(len(groups[n-1]))
			continue
		}
		groups = append(groups, []Word{w})
		lineCY = cy
	}

	lines := make([]Line, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, buildLine(g, o.NoSpaces))
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Box.Min.Y < lines[j].Box.Min.Y
	})
	return lines
}

func buildLine(words []Word, noSpaces bool) Line {
	sort.SliceStable(words, func(i, j int) bool { return words[i].Box.Min.X < words[j].Box.Min.X })

	var all strings.Builder
	for _, w := range words {
		all.WriteString(w.Text)
	}
	if text.DetectDirection(all.String()) == text.RTL {
		for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
			words[i], words[j] = words[j], words[i]
		}
	}

	var (
		sb   strings.Builder
		box  image.Rectangle
		conf float64
	)
	for i, w := range words {
		if i > 0 && !noSpaces && !joinsWithoutSpace(words[i-1].Text, w.Text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.Text)
		box = box.Union(w.Box)
		conf += w.Confidence
	}
	return Line{
		Text:       sb.String(),
		Box:        box,
		Confidence: conf / float64(len(words)) / 100,
	}
}

// joinsWithoutSpace reports whether two adjacent CJK words meet without a
// separator.
func joinsWithoutSpace(prev, next string) bool {
	last, _ := utf8.DecodeLastRuneInString(prev)
	first, _ := utf8.DecodeRuneInString(next)
	return text.IsCJK(last) && text.IsCJK(first)
}

func centerY(r image.Rectangle) float64 {
	return float64(r.Min.Y+r.Max.Y) / 2
}

// TextLines splits plain recognized text into lines laid out in equal
// bands down bounds. It serves engines that return text without word boxes.
func TextLines(s string, bounds image.Rectangle, confidence float64) []Line {
	var parts []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = text.Tidy(ln); ln != "" {
			parts = append(parts, ln)
		}
	}
	if len(parts) == 0 || bounds.Empty() {
		return nil
	}

	band := bounds.Dy() / len(parts)
	if band < 1 {
		band = 1
	}
	lines := make([]Line, len(parts))
	for i, p := range parts {
		y := bounds.Min.Y + i*band
		lines[i] = Line{
			Text:       p,
			Box:        image.Rect(bounds.Min.X, y, bounds.Max.X, y+band),
			Confidence: confidence,
		}
	}
	return lines
}
