package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pdfoutline/internal/pdftest"
	"github.com/tsawler/pdfoutline/output"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	if code != exitOK || !strings.HasPrefix(out, "pdfoutline ") {
		t.Errorf("-version = %d, %q", code, out)
	}
}

func TestListLanguages(t *testing.T) {
	code, out, errOut := runCLI(t, "-list-languages")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	for _, want := range []string{"english (default)", "japanese", "arabic", "jpn"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidConfiguration(t *testing.T) {
	code, _, errOut := runCLI(t, "-input", t.TempDir(), "-output", t.TempDir(), "-workers", "0")
	if code != exitFatal || !strings.Contains(errOut, "worker_count") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestUnknownLanguageIsFatal(t *testing.T) {
	code, _, errOut := runCLI(t, "-input", t.TempDir(), "-output", t.TempDir(), "-language", "klingon", "-ocr", "off", "-quiet")
	if code != exitFatal || !strings.Contains(errOut, "klingon") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestBatchWithCorruptFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	page := pdftest.Page(
		pdftest.Line(24, 72, 700, "Chapter 1"),
		pdftest.Line(16, 72, 650, "1.1 Background"),
		pdftest.Line(12, 72, 620, "The results of the survey are summarized in the following sections"),
	)
	pdftest.Write(t, in, "a.pdf", pdftest.Build("", page))
	pdftest.Write(t, in, "b.pdf", pdftest.Corrupt)
	pdftest.Write(t, in, "c.pdf", pdftest.Build("", page))
	report := filepath.Join(t.TempDir(), "summary.json")

	code, stdout, stderr := runCLI(t,
		"-input", in, "-output", out, "-ocr", "off", "-workers", "2", "-report", report, "-log-format", "json")
	if code != exitPartial {
		t.Fatalf("exit = %d, want %d\nstdout: %s\nstderr: %s", code, exitPartial, stdout, stderr)
	}

	for _, name := range []string{"a.json", "c.json"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if err := output.Validate(data); err != nil {
			t.Errorf("%s does not match the schema: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "b.json")); !os.IsNotExist(err) {
		t.Errorf("b.json should not exist, stat err = %v", err)
	}
	if !strings.Contains(stdout, "FAIL") || !strings.Contains(stdout, "3 files, 2 ok, 1 failed") {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var summary struct {
		Failed   int            `json:"failed"`
		Failures map[string]int `json:"failures"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 || summary.Failures["corrupt"] != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSingleFile(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()
	path := pdftest.Write(t, dir, "one.pdf", pdftest.Build("Annual Report",
		pdftest.Page(pdftest.Line(12, 72, 700, "Nothing but body text on this page of the report"))))

	code, _, stderr := runCLI(t, "-file", path, "-output", out, "-ocr", "off", "-quiet")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}

	data, err := os.ReadFile(filepath.Join(out, "one.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Title   string            `json:"title"`
		Outline []json.RawMessage `json:"outline"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "Annual Report" || got.Outline == nil || len(got.Outline) != 0 {
		t.Errorf("outline = %s", data)
	}
}
