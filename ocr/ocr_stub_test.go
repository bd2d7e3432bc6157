//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestNewLibraryEngineDisabled(t *testing.T) {
	e, err := NewLibraryEngine()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("NewLibraryEngine() error = %v, want ErrOCRNotEnabled", err)
	}
	if e != nil {
		t.Error("expected nil engine when OCR is disabled")
	}
	if _, err := NewFactory(ModeLibrary, CLIEngine{}); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("NewFactory(library) error = %v, want ErrOCRNotEnabled", err)
	}
}
