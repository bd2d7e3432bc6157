package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/pdfoutline/model"
)

func direct(text string, size float64) model.LineRecord {
	return model.LineRecord{Text: text, FontSize: size, Source: model.SourceDirect, Confidence: 1}
}

func TestComputeFontStats(t *testing.T) {
	lines := []model.LineRecord{
		direct("Chapter 1", 24),
		direct(strings.Repeat("body text ", 10), 12),
		direct("1.1 Background", 16),
		direct("more body ", 12.1),
		direct("Methods", 18),
		// Ignored: no font data, or recognized text
		direct("unknown size", 0),
		{Text: "RECOGNIZED TEXT", Source: model.SourceOCR, Confidence: 0.9},
	}

	st := ComputeFontStats(lines)
	if st.Median != 12 {
		t.Errorf("Median = %v, want 12", st.Median)
	}
	if want := []float64{24, 18, 16, 12}; !reflect.DeepEqual(st.Sizes, want) {
		t.Errorf("Sizes = %v, want %v", st.Sizes, want)
	}
}

func TestFontStatsRank(t *testing.T) {
	st := FontStats{Median: 12, Sizes: []float64{24, 18, 16, 13, 12}}

	tests := []struct {
		size float64
		want int
	}{
		{24, 1},
		{24.2, 1},
		{18, 2},
		{16, 3},
		// 13 is below the 1.2 ratio, so it does not push 12 down
		{12, 4},
	}
	for _, tt := range tests {
		if got := st.Rank(tt.size, 1.2); got != tt.want {
			t.Errorf("Rank(%v) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestFontStatsEmpty(t *testing.T) {
	st := ComputeFontStats([]model.LineRecord{{Text: "ocr", Source: model.SourceOCR}})
	if st.Median != 0 || len(st.Sizes) != 0 {
		t.Errorf("stats = %+v, want zero", st)
	}
	if r := st.Ratio(24); r != 0 {
		t.Errorf("Ratio() = %v, want 0 without a median", r)
	}
}
