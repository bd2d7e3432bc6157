//go:build !ocr

package ocr

// LibraryEnabled reports whether the Tesseract library binding is compiled in.
//
// To enable it, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
const LibraryEnabled = false

// NewLibraryEngine returns ErrOCRNotEnabled.
func NewLibraryEngine() (Engine, error) {
	return nil, ErrOCRNotEnabled
}
