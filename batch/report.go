package batch

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/output"
)

// FileSummary is one row of the batch report.
type FileSummary struct {
	File             string  `json:"file"`
	Status           string  `json:"status"`
	Title            string  `json:"title,omitempty"`
	Language         string  `json:"language,omitempty"`
	DetectedLanguage string  `json:"detected_language,omitempty"`
	Headings         int     `json:"headings"`
	Warnings         int     `json:"warnings"`
	SizeMB           float64 `json:"file_size_mb"`
	Seconds          float64 `json:"processing_time"`
	Cached           bool    `json:"cached,omitempty"`
	ErrorKind        Kind    `json:"error_kind,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// Summary describes a whole batch run.
type Summary struct {
	RunID         string         `json:"run_id"`
	StartedAt     time.Time      `json:"started_at"`
	Seconds       float64        `json:"duration_seconds"`
	Total         int            `json:"total_files"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	Cached        int            `json:"cached"`
	TotalHeadings int            `json:"total_headings"`
	InputSize     string         `json:"input_size"`
	Languages     map[string]int `json:"languages"`
	Failures      map[Kind]int   `json:"failures"`
	Files         []FileSummary  `json:"files"`
}

// SortedPaths returns the result paths in lexical order.
func SortedPaths(results map[string]Result) []string {
	paths := make([]string, 0, len(results))
	for p := range results {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Summarize builds the report of a run that started at started.
func Summarize(runID string, started time.Time, results map[string]Result) *Summary {
	s := &Summary{
		RunID:     runID,
		StartedAt: started.UTC(),
		Seconds:   model.Round(time.Since(started).Seconds(), 3),
		Total:     len(results),
		Languages: make(map[string]int),
		Failures:  make(map[Kind]int),
		Files:     make([]FileSummary, 0, len(results)),
	}

	var bytes int64
	for _, p := range SortedPaths(results) {
		r := results[p]
		bytes += r.Size
		fs := FileSummary{
			File:     filepath.Base(p),
			Status:   "ok",
			Warnings: len(r.Warnings),
			SizeMB:   model.SizeMB(r.Size),
			Seconds:  model.Round(r.Elapsed.Seconds(), 3),
			Cached:   r.Cached,
		}
		if r.OK() {
			s.Succeeded++
			o := r.Outline
			fs.Title = o.Title
			fs.Language = o.Metadata.Language
			fs.DetectedLanguage = o.Metadata.DetectedLanguage
			fs.Headings = len(o.Entries)
			s.TotalHeadings += fs.Headings
			s.Languages[o.Metadata.Language]++
			if r.Cached {
				s.Cached++
			}
		} else {
			s.Failed++
			s.Failures[r.Err.Kind]++
			fs.Status = "failed"
			fs.ErrorKind = r.Err.Kind
			fs.Error = r.Err.Err.Error()
		}
		s.Files = append(s.Files, fs)
	}
	s.InputSize = humanize.Bytes(uint64(bytes))
	return s
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return output.WriteFileAtomic(path, append(data, '\n'))
}

// WriteXLSX writes the summary as a workbook with a Files sheet and a
// Summary sheet.
func (s *Summary) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const files = "Files"
	if err := f.SetSheetName("Sheet1", files); err != nil {
		return err
	}

	headers := []string{
		"File", "Status", "Title", "Language", "Detected",
		"Headings", "Warnings", "Size (MB)", "Seconds", "Cached", "Error Kind", "Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(files, cell, h)
	}

	for i, fs := range s.Files {
		row := []any{
			fs.File, fs.Status, fs.Title, fs.Language, fs.DetectedLanguage,
			fs.Headings, fs.Warnings, fs.SizeMB, fs.Seconds, fs.Cached, string(fs.ErrorKind), fs.Error,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(files, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(files, "A", "A", 32)
	_ = f.SetColWidth(files, "C", "C", 40)
	_ = f.SetColWidth(files, "L", "L", 60)

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	pairs := [][]any{
		{"Run ID", s.RunID},
		{"Started", s.StartedAt.Format(time.RFC3339)},
		{"Duration (s)", s.Seconds},
		{"Files", s.Total},
		{"Succeeded", s.Succeeded},
		{"Failed", s.Failed},
		{"Cached", s.Cached},
		{"Headings", s.TotalHeadings},
		{"Input size", s.InputSize},
	}
	for _, lang := range sortedKeys(s.Languages) {
		pairs = append(pairs, []any{"Language " + lang, s.Languages[lang]})
	}
	for i, row := range pairs {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("xlsx summary row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(summary, "A", "A", 20)
	_ = f.SetColWidth(summary, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return output.WriteFileAtomic(path, buf.Bytes())
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
