package outline

import (
	"testing"

	"github.com/tsawler/pdfoutline/model"
)

// cand builds a candidate for a line of the given height whose top edge
// sits at top.
func cand(page, index int, txt string, level model.HeadingLevel, score, top, height float64) model.HeadingCandidate {
	return model.HeadingCandidate{
		Line: model.LineRecord{
			Text:  txt,
			Page:  page,
			Index: index,
			BBox:  model.NewBBox(72, top, 300, top+height),
		},
		Level: level,
		Score: score,
	}
}

func numbered(c model.HeadingCandidate) model.HeadingCandidate {
	c.Numbered = true
	return c
}

func label(c model.HeadingCandidate) model.HeadingCandidate {
	c.Numbered = true
	c.LabelOnly = true
	return c
}

func texts(o *model.DocumentOutline) []string {
	var out []string
	for _, e := range o.Entries {
		out = append(out, e.Text)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAssembleChapterScenario(t *testing.T) {
	cands := []model.HeadingCandidate{
		label(cand(1, 0, "Chapter 1", model.H1, 0.95, 92, 24)),
		cand(1, 1, "Introduction", model.H1, 0.8, 120, 24),
		numbered(cand(1, 2, "1.1 Background", model.H2, 0.9, 170, 16)),
	}

	out := New().Assemble(cands, Source{FileName: "/in/sample.pdf", Lines: 12, FileSize: 2 * 1024 * 1024})

	want := []model.OutlineEntry{
		{Level: model.H1, Text: "Chapter 1", Page: 1},
		{Level: model.H2, Text: "1.1 Background", Page: 1},
	}
	if len(out.Entries) != len(want) {
		t.Fatalf("entries = %+v, want %+v", out.Entries, want)
	}
	for i := range want {
		if out.Entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, out.Entries[i], want[i])
		}
	}
	if out.Title != "Chapter 1" {
		t.Errorf("Title = %q, want Chapter 1", out.Title)
	}
	m := out.Metadata
	if m.SourceFile != "sample.pdf" || m.HeadingsFound != 2 || m.TotalLinesProcessed != 12 || m.FileSizeMB != 2 {
		t.Errorf("Metadata = %+v", m)
	}
}

func TestAssembleMergesWrappedHeading(t *testing.T) {
	tests := []struct {
		name  string
		cands []model.HeadingCandidate
		want  []string
	}{
		{
			name: "contiguous same level",
			cands: []model.HeadingCandidate{
				cand(2, 4, "A Study of Extraction", model.H1, 0.7, 100, 20),
				cand(2, 5, "Across Languages", model.H1, 0.8, 124, 20),
			},
			want: []string{"A Study of Extraction Across Languages"},
		},
		{
			name: "gap too large",
			cands: []model.HeadingCandidate{
				cand(2, 4, "Results", model.H1, 0.7, 100, 20),
				cand(2, 5, "Discussion", model.H1, 0.7, 200, 20),
			},
			want: []string{"Results", "Discussion"},
		},
		{
			name: "different levels",
			cands: []model.HeadingCandidate{
				cand(2, 4, "Results", model.H1, 0.7, 100, 20),
				cand(2, 5, "Overview", model.H2, 0.7, 122, 20),
			},
			want: []string{"Results", "Overview"},
		},
		{
			name: "numbered starts a new entry",
			cands: []model.HeadingCandidate{
				numbered(cand(2, 4, "2.1 Setup", model.H2, 0.9, 100, 16)),
				numbered(cand(2, 5, "2.2 Runs", model.H2, 0.9, 118, 16)),
			},
			want: []string{"2.1 Setup", "2.2 Runs"},
		},
		{
			name: "lines not adjacent",
			cands: []model.HeadingCandidate{
				cand(2, 4, "Results", model.H1, 0.7, 100, 20),
				cand(2, 6, "Discussion", model.H1, 0.7, 122, 20),
			},
			want: []string{"Results", "Discussion"},
		},
		{
			name: "cjk joined without space",
			cands: []model.HeadingCandidate{
				cand(3, 0, "機械学習の", model.H1, 0.7, 100, 20),
				cand(3, 1, "基礎", model.H1, 0.7, 122, 20),
			},
			want: []string{"機械学習の基礎"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New().Assemble(tt.cands, Source{FileName: "doc.pdf"})
			if got := texts(out); !equal(got, tt.want) {
				t.Errorf("entries = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssembleOrdersByPageAndIndex(t *testing.T) {
	cands := []model.HeadingCandidate{
		numbered(cand(3, 1, "3 Methods", model.H1, 0.9, 100, 20)),
		numbered(cand(1, 5, "1 Scope", model.H1, 0.9, 300, 20)),
		numbered(cand(1, 2, "Preface", model.H1, 0.9, 100, 20)),
	}
	out := New().Assemble(cands, Source{FileName: "doc.pdf"})
	if got, want := texts(out), []string{"Preface", "1 Scope", "3 Methods"}; !equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}
}

func TestAssemblePruning(t *testing.T) {
	var abundant []model.HeadingCandidate
	for i := 0; i < 12; i++ {
		score := 0.3
		if i%3 == 0 {
			score = 0.9
		}
		abundant = append(abundant, numbered(cand(i+1, 0, "Heading", model.H2, score, 100, 12)))
	}

	var weak []model.HeadingCandidate
	for i := 0; i < 12; i++ {
		score := 0.4
		if i == 0 {
			score = 0.9
		}
		weak = append(weak, numbered(cand(i+1, 0, "Heading", model.H2, score, 100, 12)))
	}

	few := []model.HeadingCandidate{
		numbered(cand(1, 0, "Weak", model.H2, 0.3, 100, 12)),
		numbered(cand(1, 1, "Noise", model.H2, 0.1, 200, 12)),
	}

	tests := []struct {
		name  string
		cands []model.HeadingCandidate
		want  int
	}{
		{"abundant keeps accepted", abundant, 4},
		{"relaxed when too few survive", weak, 12},
		{"sparse documents keep all above floor", few, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New().Assemble(tt.cands, Source{FileName: "doc.pdf"})
			if len(out.Entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(out.Entries), tt.want)
			}
		})
	}
}

func TestAssembleTitle(t *testing.T) {
	tests := []struct {
		name  string
		cands []model.HeadingCandidate
		src   Source
		want  string
	}{
		{
			name: "highest scoring first page H1",
			cands: []model.HeadingCandidate{
				cand(1, 0, "Annual Report", model.H1, 0.7, 100, 30),
				numbered(cand(1, 3, "Foreword", model.H1, 0.9, 300, 20)),
			},
			src:  Source{FileName: "r.pdf", MetadataTitle: "Meta"},
			want: "Foreword",
		},
		{
			name: "ties go to the earliest",
			cands: []model.HeadingCandidate{
				numbered(cand(1, 0, "First", model.H1, 0.9, 100, 20)),
				numbered(cand(1, 3, "Second", model.H1, 0.9, 300, 20)),
			},
			src:  Source{FileName: "r.pdf"},
			want: "First",
		},
		{
			name:  "metadata title",
			cands: []model.HeadingCandidate{numbered(cand(2, 0, "1 Scope", model.H1, 0.9, 100, 20))},
			src:   Source{FileName: "r.pdf", MetadataTitle: "  Quarterly   Review "},
			want:  "Quarterly Review",
		},
		{
			name: "file name stem",
			src:  Source{FileName: "/data/in/scan_0042.pdf"},
			want: "scan_0042",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Assemble(tt.cands, tt.src).Title; got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssembleDropsConsecutiveDuplicates(t *testing.T) {
	cands := []model.HeadingCandidate{
		numbered(cand(4, 0, "Summary", model.H2, 0.9, 100, 12)),
		numbered(cand(4, 3, "Summary", model.H2, 0.9, 400, 12)),
		numbered(cand(5, 0, "Summary", model.H2, 0.9, 100, 12)),
	}
	out := New().Assemble(cands, Source{FileName: "doc.pdf"})
	if len(out.Entries) != 2 {
		t.Errorf("entries = %+v, want one per page", out.Entries)
	}
}

func TestAssembleEmpty(t *testing.T) {
	out := New().Assemble(nil, Source{FileName: "scan.pdf"})
	if out.Entries == nil || len(out.Entries) != 0 {
		t.Errorf("Entries = %#v, want empty non-nil slice", out.Entries)
	}
	if out.Metadata.HeadingsFound != 0 || out.Title != "scan" {
		t.Errorf("outline = %+v", out)
	}
}

func TestAssembleDoesNotModifyInput(t *testing.T) {
	cands := []model.HeadingCandidate{
		numbered(cand(2, 0, "B", model.H1, 0.9, 100, 20)),
		numbered(cand(1, 0, "A", model.H1, 0.9, 100, 20)),
	}
	New().Assemble(cands, Source{FileName: "doc.pdf"})
	if cands[0].Line.Text != "B" {
		t.Error("Assemble reordered its input")
	}
}
