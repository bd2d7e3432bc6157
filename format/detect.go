// Package format finds PDF inputs by file extension and magic bytes.
package format

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format represents a detected file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
)

// headerWindow is how far into a file the %PDF header may start; readers
// tolerate leading junk up to this offset.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// String returns the string representation of the format.
func (f Format) String() string {
	if f == PDF {
		return "PDF"
	}
	return "Unknown"
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	if f == PDF {
		return ".pdf"
	}
	return ""
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return PDF
	}
	return Unknown
}

// DetectFromMagic checks for a %PDF- header within the first 1024 bytes.
func DetectFromMagic(data []byte) Format {
	if len(data) > headerWindow {
		data = data[:headerWindow]
	}
	if bytes.Contains(data, pdfMagic) {
		return PDF
	}
	return Unknown
}

// DetectFromReader reads the start of r and checks its magic bytes.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	magic := make([]byte, headerWindow)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}

// DetectFile checks the magic bytes of the file at path.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()
	return DetectFromReader(f)
}

// Discover lists the PDFs directly inside dir, sorted by name. Files named
// *.pdf (any case) are always listed so unreadable ones can be reported;
// files without that extension are listed when they start with a PDF
// header. Subdirectories and hidden files are skipped.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, name)
		if Detect(name) == PDF {
			files = append(files, path)
			continue
		}
		if filepath.Ext(name) != "" {
			continue
		}
		if f, err := DetectFile(path); err == nil && f == PDF {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ErrNotPDF is returned by Inputs for a single file that is not a PDF.
var ErrNotPDF = errors.New("not a PDF file")

// Inputs resolves a path that is either a directory of PDFs or a single
// PDF file.
func Inputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return Discover(path)
	}
	if Detect(path) == PDF {
		return []string{path}, nil
	}
	if f, err := DetectFile(path); err != nil {
		return nil, err
	} else if f != PDF {
		return nil, ErrNotPDF
	}
	return []string{path}, nil
}
