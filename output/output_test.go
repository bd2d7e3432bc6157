package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pdfoutline/model"
)

func sample() *model.DocumentOutline {
	return &model.DocumentOutline{
		Title: "第1章：機械学習の基礎",
		Entries: []model.OutlineEntry{
			{Level: model.H1, Text: "第1章：機械学習の基礎", Page: 1},
			{Level: model.H2, Text: "1.1 <Background> & Scope", Page: 2},
		},
		Metadata: model.Metadata{
			SourceFile:          "ml.pdf",
			ProcessingTime:      0.42,
			Language:            "japanese",
			DetectedLanguage:    "japanese",
			TotalLinesProcessed: 120,
			HeadingsFound:       2,
			FileSizeMB:          1.25,
		},
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(sample())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"title": "第1章：機械学習の基礎"`,
		`"level": "H2"`,
		`"text": "1.1 <Background> & Scope"`,
		`"outline": [`,
		"\n  \"metadata\": {",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if err := Validate(data); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestEncodeEmptyOutline(t *testing.T) {
	data, err := Encode(&model.DocumentOutline{Title: "scan"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if outline, ok := v["outline"].([]any); !ok || len(outline) != 0 {
		t.Errorf("outline = %#v, want []", v["outline"])
	}
	if err := Validate(data); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing metadata", `{"title": "x", "outline": []}`},
		{"bad level", `{"title": "x", "outline": [{"level": "H9", "text": "a", "page": 1}], "metadata": {"source_file": "a", "processing_time": 0, "language": "english", "detected_language": "english", "total_lines_processed": 0, "headings_found": 0, "file_size_mb": 0}}`},
		{"page zero", `{"title": "x", "outline": [{"level": "H1", "text": "a", "page": 0}], "metadata": {"source_file": "a", "processing_time": 0, "language": "english", "detected_language": "english", "total_lines_processed": 0, "headings_found": 0, "file_size_mb": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate([]byte(tt.data)); err == nil {
				t.Error("Validate() succeeded")
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"/in/report.pdf":   "report.json",
		"scan.v2.PDF":      "scan.v2.json",
		"dir/no_extension": "no_extension.json",
	}
	for in, want := range tests {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	path, err := w.Write("/in/ml.pdf", sample())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, "ml.json") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got model.DocumentOutline
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("written file is not JSON: %v", err)
	}
	if !model.SameEntries(&got, sample()) || got.Title != sample().Title {
		t.Errorf("round trip = %+v", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("output dir holds %d files, want 1", len(entries))
	}
}

func TestWriterRejectsInvalid(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	bad := sample()
	bad.Entries[0].Page = 0
	if _, err := w.Write("bad.pdf", bad); err == nil {
		t.Error("Write() accepted an entry on page 0")
	}
	if _, err := os.Stat(filepath.Join(w.Dir(), "bad.json")); !os.IsNotExist(err) {
		t.Error("invalid outline was written")
	}
}
