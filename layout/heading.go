package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/text"
)

// MatchedRule values of candidates accepted without a profile rule.
const (
	RuleFontRatio = "font-ratio"
	RuleBold      = "bold"
	RuleCentered  = "centered"
)

// ClassifierConfig holds the scoring parameters of the heading classifier
type ClassifierConfig struct {
	// BoldBoost is added to pattern and font-ratio scores for bold lines
	BoldBoost float64

	// FontBoost is added to a pattern score when the line is also set in
	// a heading-sized font
	FontBoost float64

	// MaxPatternScore caps pattern scores
	MaxPatternScore float64

	// FontRatioBase is the score of a line that just reaches the profile's
	// minimum font ratio; larger ratios score higher up to FontRatioMax
	FontRatioBase float64
	FontRatioMax  float64

	// ShortLineWords is the word count at or below which a font-ratio
	// heading earns ShortLineBoost
	ShortLineWords int
	ShortLineBoost float64

	// IsolationRatio is the whitespace, as a multiple of the line height,
	// required above and below an OCR line for the positional signal
	IsolationRatio float64

	// MaxOCRHeadingLength is the rune length above which OCR lines are
	// never positional headings
	MaxOCRHeadingLength int

	// CenterTolerance is how far, as a fraction of the page width, the
	// middle of a centered line may sit from the middle of the page.
	// Lines wider than CenterMaxWidth of the page are never centered.
	CenterTolerance float64
	CenterMaxWidth  float64

	// CenterBoost is added to pattern and font-ratio scores of centered lines
	CenterBoost float64

	// BoldScore and CenteredScore are the scores of short body-size lines
	// accepted only for being bold, or centered on the first page with more
	// than MinCenteredRunes runes
	BoldScore        float64
	CenteredScore    float64
	MinCenteredRunes int
}

// DefaultClassifierConfig returns sensible default configuration
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		BoldBoost:           0.05,
		FontBoost:           0.05,
		MaxPatternScore:     0.98,
		FontRatioBase:       0.45,
		FontRatioMax:        0.95,
		ShortLineWords:      8,
		ShortLineBoost:      0.05,
		IsolationRatio:      0.8,
		MaxOCRHeadingLength: 60,
		CenterTolerance:     0.05,
		CenterMaxWidth:      0.8,
		CenterBoost:         0.05,
		BoldScore:           0.25,
		CenteredScore:       0.3,
		MinCenteredRunes:    8,
	}
}

// Classifier decides whether a line is a heading and at which level. It
// holds no mutable state, so one instance can classify lines from many
// goroutines at once.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with default configuration
func NewClassifier() *Classifier {
	return &Classifier{config: DefaultClassifierConfig()}
}

// NewClassifierWithConfig creates a classifier with custom configuration
func NewClassifierWithConfig(config ClassifierConfig) *Classifier {
	return &Classifier{config: config}
}

// Classify returns a heading candidate for line, or nil if the line is not
// a heading. Signals are tried in order and the first that fires decides:
//
//  1. the profile's numbering rules, earliest rule first
//  2. font size relative to the document median (lines with font data)
//  3. whitespace isolation plus a script cue (lines without font data)
//  4. bold or centered short lines at body size (lines with font data)
//
// The returned level always belongs to the profile's level set.
func (c *Classifier) Classify(line model.LineRecord, p *lang.Profile, stats FontStats) *model.HeadingCandidate {
	s := text.Tidy(line.Text)
	if s == "" || text.IsNumericOnly(s) {
		return nil
	}
	n := utf8.RuneCountInString(s)
	if n < p.MinLineLength || n > p.MaxHeadingLength {
		return nil
	}

	if cand := c.matchRules(line, s, p, stats); cand != nil {
		return cand
	}
	if line.HasFontSize() {
		if cand := c.matchFontRatio(line, s, p, stats); cand != nil {
			return cand
		}
		return c.matchLayout(line, s, n, p, stats)
	}
	return c.matchCue(line, s, n, p)
}

// ClassifyAll classifies every line and returns the candidates in input
// order.
func (c *Classifier) ClassifyAll(lines []model.LineRecord, p *lang.Profile, stats FontStats) []model.HeadingCandidate {
	var out []model.HeadingCandidate
	for _, l := range lines {
		if cand := c.Classify(l, p, stats); cand != nil {
			out = append(out, *cand)
		}
	}
	return out
}

func (c *Classifier) matchRules(line model.LineRecord, s string, p *lang.Profile, stats FontStats) *model.HeadingCandidate {
	folded := text.Fold(s)
	for i := range p.Rules {
		r := &p.Rules[i]
		if !r.Match(folded) {
			continue
		}

		score := r.Confidence
		if line.Bold {
			score += c.config.BoldBoost
		}
		if line.HasFontSize() && stats.Ratio(line.FontSize) >= p.MinHeadingFontRatio {
			score += c.config.FontBoost
		}
		if c.centered(line) {
			score += c.config.CenterBoost
		}
		if line.Source == model.SourceOCR {
			score *= 0.6 + 0.4*line.Confidence
		}

		return &model.HeadingCandidate{
			Line:        line,
			Level:       p.ClampLevel(r.Level),
			Score:       math.Min(score, c.config.MaxPatternScore),
			MatchedRule: r.ID,
			Numbered:    !r.Keyword,
			LabelOnly:   r.Label,
		}
	}
	return nil
}

func (c *Classifier) matchFontRatio(line model.LineRecord, s string, p *lang.Profile, stats FontStats) *model.HeadingCandidate {
	ratio := stats.Ratio(line.FontSize)
	if ratio == 0 || ratio < p.MinHeadingFontRatio {
		return nil
	}

	score := c.config.FontRatioBase + math.Min(0.3, (ratio-p.MinHeadingFontRatio)*0.5)
	if line.Bold {
		score += c.config.BoldBoost
	}
	if len(strings.Fields(s)) <= c.config.ShortLineWords {
		score += c.config.ShortLineBoost
	}
	if c.centered(line) {
		score += c.config.CenterBoost
	}

	level := model.HeadingLevel(stats.Rank(line.FontSize, p.MinHeadingFontRatio))
	return &model.HeadingCandidate{
		Line:        line,
		Level:       p.ClampLevel(level),
		Score:       math.Min(score, c.config.FontRatioMax),
		MatchedRule: RuleFontRatio,
	}
}

func (c *Classifier) matchCue(line model.LineRecord, s string, runes int, p *lang.Profile) *model.HeadingCandidate {
	if runes > c.config.MaxOCRHeadingLength || !c.isolated(line) {
		return nil
	}

	for i := range p.Cues {
		cue := &p.Cues[i]
		if !cue.Match(s) {
			continue
		}
		return &model.HeadingCandidate{
			Line:        line,
			Level:       p.ClampLevel(cueLevel(cue.Strength)),
			Score:       cue.Strength * (0.5 + 0.5*line.Confidence),
			MatchedRule: cue.ID,
		}
	}
	return nil
}

// matchLayout accepts short lines set at least at body size that stand out
// by weight or position alone. A centered line only counts on the first
// page, where it is a title candidate.
func (c *Classifier) matchLayout(line model.LineRecord, s string, runes int, p *lang.Profile, stats FontStats) *model.HeadingCandidate {
	if len(strings.Fields(s)) > c.config.ShortLineWords || stats.Ratio(line.FontSize) < 1 {
		return nil
	}

	switch {
	case line.Page == 1 && runes > c.config.MinCenteredRunes && c.centered(line):
		return &model.HeadingCandidate{
			Line:        line,
			Level:       p.ClampLevel(model.H1),
			Score:       c.config.CenteredScore,
			MatchedRule: RuleCentered,
		}
	case line.Bold:
		return &model.HeadingCandidate{
			Line:        line,
			Level:       p.ClampLevel(model.H3),
			Score:       c.config.BoldScore,
			MatchedRule: RuleBold,
		}
	}
	return nil
}

// centered reports whether the line sits in the middle of its page
func (c *Classifier) centered(line model.LineRecord) bool {
	w := line.BBox.Width()
	if line.PageWidth <= 0 || w <= 0 || w > line.PageWidth*c.config.CenterMaxWidth {
		return false
	}
	return math.Abs(line.BBox.CenterX()-line.PageWidth/2) <= line.PageWidth*c.config.CenterTolerance
}

// isolated reports whether the line has whitespace above and below it
func (c *Classifier) isolated(line model.LineRecord) bool {
	h := line.Height()
	if h <= 0 {
		return false
	}
	need := h * c.config.IsolationRatio
	return line.SpaceAbove >= need && line.SpaceBelow >= need
}

// cueLevel maps cue strength to a heading level
func cueLevel(strength float64) model.HeadingLevel {
	switch {
	case strength >= 0.8:
		return model.H1
	case strength >= 0.6:
		return model.H2
	default:
		return model.H3
	}
}
