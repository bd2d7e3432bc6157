package outline

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// Config holds the merge and pruning parameters of the assembler
type Config struct {
	// AcceptThreshold is the minimum score kept when the document has at
	// least AbundantCount candidates.
	// Default: 0.6
	AcceptThreshold float64

	// RelaxedThreshold replaces AcceptThreshold when fewer than
	// MinSurvivors candidates would survive it.
	// Default: 0.35
	RelaxedThreshold float64

	// AbundantCount is the candidate count from which pruning applies.
	// Default: 12
	AbundantCount int

	// MinSurvivors is the count below which pruning is relaxed.
	// Default: 3
	MinSurvivors int

	// MinScore is a floor applied to every document.
	// Default: 0.2
	MinScore float64

	// MergeGapRatio is the largest vertical gap, as a multiple of the line
	// height, between two lines of one wrapped heading.
	// Default: 0.6
	MergeGapRatio float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:  0.6,
		RelaxedThreshold: 0.35,
		AbundantCount:    12,
		MinSurvivors:     3,
		MinScore:         0.2,
		MergeGapRatio:    0.6,
	}
}

// Source describes the document an outline is assembled for.
type Source struct {
	// FileName is the PDF path; its stem is the last-resort title.
	FileName string

	// MetadataTitle is the document information title, if any.
	MetadataTitle string

	Language         string
	DetectedLanguage string

	// Lines is the number of line records classified.
	Lines int

	// FileSize is the PDF size in bytes.
	FileSize int64
}

// Assembler turns heading candidates into a document outline. It holds no
// mutable state and is safe for concurrent use.
type Assembler struct {
	config Config
}

// New creates an assembler with default configuration
func New() *Assembler {
	return &Assembler{config: DefaultConfig()}
}

// NewWithConfig creates an assembler with custom configuration
func NewWithConfig(config Config) *Assembler {
	return &Assembler{config: config}
}

// Config returns the assembler configuration.
func (a *Assembler) Config() Config {
	return a.config
}

// heading is a candidate under assembly. last is the final physical line
// absorbed into it.
type heading struct {
	cand model.HeadingCandidate
	text string
	last model.LineRecord
}

// Assemble orders the candidates, merges wrapped headings, prunes weak
// candidates, chooses a title and returns the outline. ProcessingTime is
// left for the caller.
func (a *Assembler) Assemble(candidates []model.HeadingCandidate, src Source) *model.DocumentOutline {
	sorted := make([]model.HeadingCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := sorted[i].Line, sorted[j].Line
		if li.Page != lj.Page {
			return li.Page < lj.Page
		}
		return li.Index < lj.Index
	})

	headings := a.prune(a.merge(sorted))

	out := &model.DocumentOutline{
		Title:   a.title(headings, src),
		Entries: []model.OutlineEntry{},
	}
	for _, h := range headings {
		e := model.OutlineEntry{Level: h.cand.Level, Text: h.text, Page: h.cand.Line.Page}
		if n := len(out.Entries); n > 0 && out.Entries[n-1] == e {
			continue
		}
		out.Entries = append(out.Entries, e)
	}

	out.Metadata = model.Metadata{
		SourceFile:          filepath.Base(src.FileName),
		Language:            src.Language,
		DetectedLanguage:    src.DetectedLanguage,
		TotalLinesProcessed: src.Lines,
		HeadingsFound:       len(out.Entries),
		FileSizeMB:          model.SizeMB(src.FileSize),
	}
	return out
}

// merge joins wrapped heading lines and absorbs the name line that follows
// a bare chapter label.
func (a *Assembler) merge(cands []model.HeadingCandidate) []heading {
	var out []heading
	for _, c := range cands {
		t := text.Tidy(c.Line.Text)
		if t == "" {
			continue
		}
		if n := len(out); n > 0 && a.continues(&out[n-1], c) {
			prev := &out[n-1]
			if !prev.cand.LabelOnly {
				prev.text = join(prev.text, t)
			}
			prev.cand.LabelOnly = false
			if c.Score > prev.cand.Score {
				prev.cand.Score = c.Score
			}
			prev.last = c.Line
			continue
		}
		out = append(out, heading{cand: c, text: t, last: c.Line})
	}
	return out
}

// continues reports whether c is the next physical line of prev.
func (a *Assembler) continues(prev *heading, c model.HeadingCandidate) bool {
	if c.Numbered || c.Line.Page != prev.last.Page || c.Line.Index != prev.last.Index+1 {
		return false
	}
	if !prev.cand.LabelOnly && c.Level != prev.cand.Level {
		return false
	}
	h := prev.last.Height()
	if ch := c.Line.Height(); ch > h {
		h = ch
	}
	gap := c.Line.BBox.Y0 - prev.last.BBox.Y1
	return gap <= a.config.MergeGapRatio*h
}

// prune drops weak candidates when the document has plenty of them and
// relaxes the threshold when too few would remain.
func (a *Assembler) prune(hs []heading) []heading {
	threshold := a.config.MinScore
	if len(hs) >= a.config.AbundantCount && a.config.AbundantCount > 0 {
		threshold = maxf(threshold, a.config.AcceptThreshold)
		if count(hs, threshold) < a.config.MinSurvivors {
			threshold = maxf(a.config.MinScore, a.config.RelaxedThreshold)
		}
	}

	out := hs[:0]
	for _, h := range hs {
		if h.cand.Score >= threshold {
			out = append(out, h)
		}
	}
	return out
}

// title picks the highest scoring H1 of the first page, then the metadata
// title, then the file name stem.
func (a *Assembler) title(hs []heading, src Source) string {
	best := -1
	for i, h := range hs {
		if h.cand.Line.Page != 1 || h.cand.Level != model.H1 {
			continue
		}
		if best < 0 || h.cand.Score > hs[best].cand.Score {
			best = i
		}
	}
	if best >= 0 {
		return hs[best].text
	}
	if t := text.Tidy(src.MetadataTitle); t != "" {
		return t
	}
	base := filepath.Base(src.FileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func count(hs []heading, threshold float64) int {
	n := 0
	for _, h := range hs {
		if h.cand.Score >= threshold {
			n++
		}
	}
	return n
}

// join appends a wrapped line, without a space between CJK characters.
func join(a, b string) string {
	last, _ := utf8.DecodeLastRuneInString(a)
	first, _ := utf8.DecodeRuneInString(b)
	if text.IsCJK(last) && text.IsCJK(first) {
		return a + b
	}
	return a + " " + b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
