package batch

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/pdfoutline/model"
)

func sampleResults() map[string]Result {
	ok := fakeOutline("/in/a.pdf")
	ok.Metadata.DetectedLanguage = "english"
	ja := fakeOutline("/in/c.pdf")
	ja.Metadata.Language = "japanese"
	ja.Entries = append(ja.Entries, model.OutlineEntry{Level: model.H2, Text: "概要", Page: 2})

	return map[string]Result{
		"/in/a.pdf": {Path: "/in/a.pdf", Outline: ok, Size: 1 << 20, Elapsed: 1500 * time.Millisecond},
		"/in/b.pdf": {Path: "/in/b.pdf", Size: 2048, Err: &ExtractionError{Path: "/in/b.pdf", Kind: KindCorrupt, Err: errors.New("bad xref")}},
		"/in/c.pdf": {Path: "/in/c.pdf", Outline: ja, Size: 4096, Cached: true},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("run-1", time.Now().Add(-time.Second), sampleResults())

	if s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 || s.Cached != 1 {
		t.Errorf("counts = %d/%d/%d/%d", s.Total, s.Succeeded, s.Failed, s.Cached)
	}
	if s.TotalHeadings != 3 {
		t.Errorf("TotalHeadings = %d, want 3", s.TotalHeadings)
	}
	if s.Languages["english"] != 1 || s.Languages["japanese"] != 1 {
		t.Errorf("Languages = %v", s.Languages)
	}
	if s.Failures[KindCorrupt] != 1 {
		t.Errorf("Failures = %v", s.Failures)
	}
	if s.InputSize != "1.1 MB" {
		t.Errorf("InputSize = %q", s.InputSize)
	}
	if s.Seconds < 1 {
		t.Errorf("Seconds = %v", s.Seconds)
	}

	if len(s.Files) != 3 {
		t.Fatalf("Files = %d", len(s.Files))
	}
	a, b := s.Files[0], s.Files[1]
	if a.File != "a.pdf" || a.Status != "ok" || a.SizeMB != 1 || a.Seconds != 1.5 || a.DetectedLanguage != "english" {
		t.Errorf("a.pdf row = %+v", a)
	}
	if b.File != "b.pdf" || b.Status != "failed" || b.ErrorKind != KindCorrupt || b.Error != "bad xref" {
		t.Errorf("b.pdf row = %+v", b)
	}
}

func TestSummaryWriteJSON(t *testing.T) {
	s := Summarize("run-1", time.Now(), sampleResults())
	path := filepath.Join(t.TempDir(), "summary.json")
	if err := s.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if got["run_id"] != "run-1" || got["failed"] != float64(1) {
		t.Errorf("summary = %v", got)
	}
	if files, ok := got["files"].([]any); !ok || len(files) != 3 {
		t.Errorf("files = %v", got["files"])
	}
}

func TestSummaryWriteXLSX(t *testing.T) {
	s := Summarize("run-1", time.Now(), sampleResults())
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	if err := s.WriteXLSX(path); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Files")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("Files sheet has %d rows, want 4", len(rows))
	}
	if rows[0][0] != "File" || rows[2][0] != "b.pdf" || rows[2][1] != "failed" {
		t.Errorf("rows = %v", rows)
	}

	runID, err := f.GetCellValue("Summary", "B1")
	if err != nil || runID != "run-1" {
		t.Errorf("Summary!B1 = %q, %v", runID, err)
	}
}
