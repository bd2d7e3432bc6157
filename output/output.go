package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tsawler/pdfoutline/model"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Schema returns the compiled outline JSON Schema.
func Schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("outline.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("outline.schema.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// SchemaJSON returns the raw JSON Schema document.
func SchemaJSON() []byte {
	return bytes.Clone(schemaJSON)
}

// Encode renders an outline as indented JSON. Non-ASCII text is written
// as is.
func Encode(o *model.DocumentOutline) ([]byte, error) {
	out := *o
	if out.Entries == nil {
		out.Entries = []model.OutlineEntry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks data against the outline schema.
func Validate(data []byte) error {
	s, err := Schema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal outline: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("outline does not match schema: %w", err)
	}
	return nil
}

// FileName returns the output name for a source PDF: its stem plus ".json".
func FileName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// Writer writes one validated JSON file per outline into a directory.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed and returns a writer for it.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	if _, err := Schema(); err != nil {
		return nil, err
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write encodes, validates and atomically writes the outline of source.
// It returns the written path.
func (w *Writer) Write(source string, o *model.DocumentOutline) (string, error) {
	data, err := Encode(o)
	if err != nil {
		return "", err
	}
	if err := Validate(data); err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, FileName(source))
	if err := WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
