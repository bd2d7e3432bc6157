package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/model"
)

func english(t *testing.T) *lang.Profile {
	t.Helper()
	p, err := lang.Default().Get("english")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func bodyStats() FontStats {
	return ComputeFontStats([]model.LineRecord{
		direct(strings.Repeat("body text ", 20), 12),
		direct("Chapter 1", 24),
		direct("Methods", 18),
		direct("1.1 Background", 16),
	})
}

func TestClassifyEnglish(t *testing.T) {
	p := english(t)
	stats := bodyStats()
	c := NewClassifier()

	tests := []struct {
		name      string
		line      model.LineRecord
		wantNil   bool
		wantLevel model.HeadingLevel
		wantRule  string
		wantLabel bool
	}{
		{"chapter label", direct("Chapter 1", 24), false, model.H1, "english.chapter-label", true},
		{"chapter with title", direct("Chapter 2: Results", 24), false, model.H1, "english.chapter", false},
		{"keyword", direct("Introduction", 24), false, model.H1, "english.keyword", false},
		{"section", direct("1.1 Background", 16), false, model.H2, "english.section", false},
		{"subsection", direct("1.1.1 Scope", 14), false, model.H3, "english.subsubsection", false},
		{"font ratio only", direct("Methods", 18), false, model.H2, RuleFontRatio, false},
		{"body text", direct("The results are shown below.", 12), true, 0, "", false},
		{"numeric only", direct("42", 24), true, 0, "", false},
		{"too short", direct("Hi", 24), true, 0, "", false},
		{"too long", direct(strings.Repeat("word ", 40), 24), true, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line, p, stats)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Classify(%q) = %+v, want nil", tt.line.Text, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Classify(%q) = nil", tt.line.Text)
			}
			if got.Level != tt.wantLevel || got.MatchedRule != tt.wantRule || got.LabelOnly != tt.wantLabel {
				t.Errorf("Classify(%q) = level %v rule %q label %v, want %v %q %v",
					tt.line.Text, got.Level, got.MatchedRule, got.LabelOnly, tt.wantLevel, tt.wantRule, tt.wantLabel)
			}
			if !p.HasLevel(got.Level) {
				t.Errorf("level %v not in profile", got.Level)
			}
			if numbered := strings.HasPrefix(tt.wantRule, "english.") && tt.wantRule != "english.keyword"; got.Numbered != numbered {
				t.Errorf("Numbered = %v, want %v", got.Numbered, numbered)
			}
			if got.Score <= 0 || got.Score > 1 {
				t.Errorf("score %v out of range", got.Score)
			}
		})
	}
}

func TestClassifyScores(t *testing.T) {
	p := english(t)
	stats := bodyStats()
	c := NewClassifier()

	label := c.Classify(direct("Chapter 1", 24), p, stats)
	// rule confidence plus heading-sized font
	if math.Abs(label.Score-0.95) > 1e-9 {
		t.Errorf("label score = %v, want 0.95", label.Score)
	}

	bold := direct("Chapter 1", 24)
	bold.Bold = true
	if got := c.Classify(bold, p, stats); got.Score != 0.98 {
		t.Errorf("bold label score = %v, want cap 0.98", got.Score)
	}

	// 18/12 = 1.5: 0.45 + 0.15 + short line 0.05
	fr := c.Classify(direct("Methods", 18), p, stats)
	if math.Abs(fr.Score-0.65) > 1e-9 {
		t.Errorf("font ratio score = %v, want 0.65", fr.Score)
	}

	ocr := model.LineRecord{Text: "2.1 Methods", Source: model.SourceOCR, Confidence: 0.5}
	got := c.Classify(ocr, p, stats)
	if got == nil || got.Level != model.H2 {
		t.Fatalf("OCR section = %+v", got)
	}
	if math.Abs(got.Score-0.64) > 1e-9 {
		t.Errorf("OCR section score = %v, want 0.64", got.Score)
	}
}

const testProfiles = `
default: test
profiles:
  - id: test
    name: Test
    tag: en
    ocr_code: eng
    scripts: [Latin]
    levels: [H1, H2]
    min_heading_font_ratio: 1.2
    rules:
      - id: dotted
        pattern: '^\d+\.\d+\s'
        level: H2
        confidence: 0.8
      - id: number
        pattern: '^\d+\S*\s'
        level: H1
        confidence: 0.7
    cues:
      - id: caps
        pattern: '^[A-Z ]+$'
        strength: 0.9
`

func testProfile(t *testing.T) *lang.Profile {
	t.Helper()
	reg, err := lang.LoadRegistry(strings.NewReader(testProfiles))
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	p, err := reg.Get("test")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClassifyRuleOrder(t *testing.T) {
	p := testProfile(t)
	c := NewClassifier()

	// "1.2 Scope" matches both rules; the earlier one wins.
	got := c.Classify(direct("1.2 Scope", 12), p, FontStats{Median: 12})
	if got == nil || got.MatchedRule != "test.dotted" || got.Level != model.H2 {
		t.Errorf("Classify(1.2 Scope) = %+v, want test.dotted H2", got)
	}
	got = c.Classify(direct("1 Scope", 12), p, FontStats{Median: 12})
	if got == nil || got.MatchedRule != "test.number" || got.Level != model.H1 {
		t.Errorf("Classify(1 Scope) = %+v, want test.number H1", got)
	}
}

func TestClassifyFontRankClamped(t *testing.T) {
	p := testProfile(t)
	stats := FontStats{Median: 12, Sizes: []float64{30, 24, 18, 12}}

	got := NewClassifier().Classify(direct("Deep heading", 18), p, stats)
	if got == nil {
		t.Fatal("Classify() = nil")
	}
	// rank 3 collapses onto the profile's deepest level
	if got.Level != model.H2 {
		t.Errorf("Level = %v, want H2", got.Level)
	}
}

func TestClassifyOCRCues(t *testing.T) {
	p := english(t)
	c := NewClassifier()

	isolated := model.LineRecord{
		Text:       "RESULTS AND DISCUSSION",
		Source:     model.SourceOCR,
		Confidence: 0.9,
		BBox:       model.NewBBox(72, 100, 300, 120),
		SpaceAbove: 40,
		SpaceBelow: 40,
	}

	got := c.Classify(isolated, p, FontStats{})
	if got == nil {
		t.Fatal("isolated caps line should be a heading")
	}
	if got.MatchedRule != "english.cue.caps" || got.Level != model.H2 {
		t.Errorf("got rule %q level %v, want english.cue.caps H2", got.MatchedRule, got.Level)
	}
	if math.Abs(got.Score-0.665) > 1e-9 {
		t.Errorf("Score = %v, want 0.665", got.Score)
	}

	crowded := isolated
	crowded.SpaceAbove = 5
	if got := c.Classify(crowded, p, FontStats{}); got != nil {
		t.Errorf("crowded line classified as %+v", got)
	}

	plain := isolated
	plain.Text = "results and discussion"
	if got := c.Classify(plain, p, FontStats{}); got != nil {
		t.Errorf("line without a cue classified as %+v", got)
	}
}

func TestClassifyAllKeepsOrder(t *testing.T) {
	p := english(t)
	lines := []model.LineRecord{
		direct("Chapter 1", 24),
		direct("Introduction", 24),
		direct(strings.Repeat("body text ", 8), 12),
		direct("1.1 Background", 16),
	}

	cands := NewClassifier().ClassifyAll(lines, p, bodyStats())
	if len(cands) != 3 {
		t.Fatalf("ClassifyAll() returned %d candidates, want 3", len(cands))
	}
	want := []string{"Chapter 1", "Introduction", "1.1 Background"}
	for i, c := range cands {
		if c.Line.Text != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, c.Line.Text, want[i])
		}
	}
}

// placed returns a direct line on page 1 of an A4 page spanning x0..x1.
func placed(s string, size, x0, x1 float64, bold bool) model.LineRecord {
	l := direct(s, size)
	l.Page = 1
	l.PageWidth = 595
	l.BBox = model.NewBBox(x0, 100, x1, 100+size)
	l.Bold = bold
	return l
}

func TestClassifyLayoutSignals(t *testing.T) {
	p := english(t)
	stats := bodyStats()
	c := NewClassifier()

	tests := []struct {
		name      string
		line      model.LineRecord
		wantNil   bool
		wantLevel model.HeadingLevel
		wantRule  string
		wantScore float64
	}{
		{"bold body-size line", placed("Summary of findings", 12, 72, 200, true), false, model.H3, RuleBold, 0.25},
		{"centered title on first page", placed("Annual Survey Report", 12, 237.5, 357.5, false), false, model.H1, RuleCentered, 0.3},
		{"centered and bold prefers title", placed("Annual Survey Report", 12, 237.5, 357.5, true), false, model.H1, RuleCentered, 0.3},
		{"plain left-aligned line", placed("Summary of findings", 12, 72, 200, false), true, 0, "", 0},
		{"centered but short", placed("Notes", 12, 280, 315, false), true, 0, "", 0},
		{"bold but long", placed("this bold sentence has far too many words to be a heading", 12, 72, 500, true), true, 0, "", 0},
		{"bold but small", placed("Figure caption", 9, 72, 150, true), true, 0, "", 0},
		{"full width line", placed("Summary of the findings", 12, 20, 575, false), true, 0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line, p, stats)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Classify(%q) = %+v, want nil", tt.line.Text, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Classify(%q) = nil", tt.line.Text)
			}
			if got.Level != tt.wantLevel || got.MatchedRule != tt.wantRule || math.Abs(got.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Classify(%q) = %v %q %v, want %v %q %v",
					tt.line.Text, got.Level, got.MatchedRule, got.Score, tt.wantLevel, tt.wantRule, tt.wantScore)
			}
			if got.Numbered {
				t.Error("layout candidates are never numbered")
			}
		})
	}

	// Centered lines count as title candidates on the first page only
	later := placed("Annual Survey Report", 12, 237.5, 357.5, false)
	later.Page = 2
	if got := c.Classify(later, p, stats); got != nil {
		t.Errorf("centered line on page 2 = %+v, want nil", got)
	}
}

func TestClassifyCenterBoost(t *testing.T) {
	p := english(t)
	stats := bodyStats()
	c := NewClassifier()

	left := c.Classify(placed("Methods", 18, 72, 140, false), p, stats)
	mid := c.Classify(placed("Methods", 18, 263.5, 331.5, false), p, stats)
	if left == nil || mid == nil {
		t.Fatalf("Classify() = %v, %v", left, mid)
	}
	if math.Abs(mid.Score-left.Score-0.05) > 1e-9 {
		t.Errorf("centered score %v, left score %v, want a 0.05 boost", mid.Score, left.Score)
	}

	label := c.Classify(placed("Chapter 1", 24, 72, 180, false), p, stats)
	centered := c.Classify(placed("Chapter 1", 24, 243.5, 351.5, false), p, stats)
	if math.Abs(centered.Score-math.Min(label.Score+0.05, 0.98)) > 1e-9 {
		t.Errorf("centered label score %v, plain %v", centered.Score, label.Score)
	}
}
