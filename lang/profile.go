package lang

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/tsawler/pdfoutline/model"
)

// Rule is one ordered numbering or keyword pattern of a profile.
type Rule struct {
	// ID is qualified with the profile id after loading, e.g. "english.section".
	ID         string
	Pattern    string
	Level      model.HeadingLevel
	Confidence float64

	// Label marks rules matching a bare chapter label such as "Chapter 1".
	Label bool

	// Keyword marks rules matching a fixed heading word ("Introduction")
	// rather than a numbering scheme.
	Keyword bool

	re *regexp.Regexp
}

// Match reports whether the rule matches the folded line text.
func (r *Rule) Match(folded string) bool {
	return r.re.MatchString(folded)
}

// Cue is a script-specific heading marker used for OCR lines, which carry
// no font metadata. Strength in [0,1] determines the heading level.
type Cue struct {
	ID       string
	Pattern  string
	Strength float64

	re *regexp.Regexp
}

// Match reports whether the cue matches the tidied (unfolded) line text.
func (c *Cue) Match(s string) bool {
	return c.re.MatchString(s)
}

// Binarization selects how OCR page images are thresholded.
type Binarization string

const (
	BinarizeNone     Binarization = "none"
	BinarizeOtsu     Binarization = "otsu"
	BinarizeAdaptive Binarization = "adaptive"
)

// OCRSettings tunes rasterization and recognition for a profile.
type OCRSettings struct {
	// DPI is the raster resolution requested for OCR.
	DPI float64 `yaml:"dpi"`

	Binarize Binarization `yaml:"binarize"`

	// MinWordConfidence drops recognized words below this Tesseract
	// confidence (0-100).
	MinWordConfidence float64 `yaml:"min_word_confidence"`

	// LineTolerance is the fraction of the median word height within
	// which two words are considered to share a line.
	LineTolerance float64 `yaml:"line_tolerance"`

	// NoSpaces joins words without a separator (CJK).
	NoSpaces bool `yaml:"no_spaces"`

	// Whitelist restricts the characters Tesseract may emit.
	Whitelist string `yaml:"whitelist"`
}

// Profile describes how to detect and classify headings for one language.
// Profiles are immutable once a Registry has been built from them.
type Profile struct {
	ID                  string
	Name                string
	Tag                 string
	OCRCode             string
	Aliases             []string
	Scripts             []string
	Levels              []model.HeadingLevel
	MinHeadingFontRatio float64
	MinLineLength       int
	MaxHeadingLength    int
	Rules               []Rule
	Cues                []Cue
	OCR                 OCRSettings

	tag      language.Tag
	tables   []*unicode.RangeTable
	compiled bool
}

// LanguageTag returns the profile's parsed BCP 47 tag.
func (p *Profile) LanguageTag() language.Tag {
	return p.tag
}

// HasLevel reports whether l is in the profile's level set.
func (p *Profile) HasLevel(l model.HeadingLevel) bool {
	for _, pl := range p.Levels {
		if pl == l {
			return true
		}
	}
	return false
}

// DeepestLevel returns the largest level the profile declares.
func (p *Profile) DeepestLevel() model.HeadingLevel {
	deepest := model.H1
	for _, l := range p.Levels {
		if l > deepest {
			deepest = l
		}
	}
	return deepest
}

// ClampLevel maps l onto the profile's level set: levels deeper than the
// deepest declared level collapse onto it.
func (p *Profile) ClampLevel(l model.HeadingLevel) model.HeadingLevel {
	if l < model.H1 {
		l = model.H1
	}
	if d := p.DeepestLevel(); l > d {
		return d
	}
	for !p.HasLevel(l) && l > model.H1 {
		l--
	}
	return l
}

// InScript reports whether r belongs to one of the profile's scripts.
func (p *Profile) InScript(r rune) bool {
	for _, t := range p.tables {
		if unicode.Is(t, r) {
			return true
		}
	}
	return false
}

// compile validates the profile and prepares its regexes and script tables.
func (p *Profile) compile() error {
	if p.compiled {
		return nil
	}
	if p.ID == "" {
		return fmt.Errorf("profile without id")
	}
	if p.OCRCode == "" {
		return fmt.Errorf("profile %s: ocr_code is required", p.ID)
	}
	if len(p.Levels) == 0 {
		p.Levels = []model.HeadingLevel{model.H1, model.H2, model.H3}
	}
	sort.Slice(p.Levels, func(i, j int) bool { return p.Levels[i] < p.Levels[j] })
	if p.MinHeadingFontRatio <= 1 {
		return fmt.Errorf("profile %s: min_heading_font_ratio must be greater than 1", p.ID)
	}
	if p.MinLineLength < 1 {
		p.MinLineLength = 1
	}
	if p.MaxHeadingLength <= 0 {
		p.MaxHeadingLength = 150
	}

	tag, err := language.Parse(p.Tag)
	if err != nil {
		return fmt.Errorf("profile %s: tag %q: %w", p.ID, p.Tag, err)
	}
	p.tag = tag

	if len(p.Scripts) == 0 {
		return fmt.Errorf("profile %s: at least one script is required", p.ID)
	}
	p.tables = p.tables[:0]
	for _, s := range p.Scripts {
		t, err := scriptTable(s)
		if err != nil {
			return fmt.Errorf("profile %s: %w", p.ID, err)
		}
		p.tables = append(p.tables, t)
	}

	for i := range p.Rules {
		r := &p.Rules[i]
		if !p.HasLevel(r.Level) {
			return fmt.Errorf("profile %s: rule %s level %s not in level set", p.ID, r.ID, r.Level)
		}
		if r.re, err = regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("profile %s: rule %s: %w", p.ID, r.ID, err)
		}
	}
	for i := range p.Cues {
		c := &p.Cues[i]
		if c.re, err = regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("profile %s: cue %s: %w", p.ID, c.ID, err)
		}
	}

	if p.OCR.DPI <= 0 {
		p.OCR.DPI = 216
	}
	if p.OCR.Binarize == "" {
		p.OCR.Binarize = BinarizeAdaptive
	}
	if p.OCR.LineTolerance <= 0 {
		p.OCR.LineTolerance = 0.6
	}
	p.compiled = true
	return nil
}

// scriptTable resolves a Unicode script name ("Hiragana") or a hex code
// point range ("3040-309F") to a range table.
func scriptTable(name string) (*unicode.RangeTable, error) {
	if t, ok := unicode.Scripts[name]; ok {
		return t, nil
	}

	lo, hi, ok := strings.Cut(name, "-")
	if !ok {
		return nil, fmt.Errorf("unknown script %q", name)
	}
	l, err1 := strconv.ParseUint(strings.TrimSpace(lo), 16, 32)
	h, err2 := strconv.ParseUint(strings.TrimSpace(hi), 16, 32)
	if err1 != nil || err2 != nil || l > h {
		return nil, fmt.Errorf("invalid script range %q", name)
	}
	return &unicode.RangeTable{
		R32: []unicode.Range32{{Lo: uint32(l), Hi: uint32(h), Stride: 1}},
	}, nil
}
