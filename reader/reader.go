package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/pdfoutline/text"
)

// PageBox is a page's media box in PDF user space (lower-left origin).
type PageBox struct {
	LLX, LLY, URX, URY float64
}

// Width returns the box width in points.
func (b PageBox) Width() float64 { return b.URX - b.LLX }

// Height returns the box height in points.
func (b PageBox) Height() float64 { return b.URY - b.LLY }

// LetterBox is used when a page declares no usable media box.
var LetterBox = PageBox{0, 0, 612, 792}

// maxParentDepth bounds the walk up the page tree for inherited attributes.
const maxParentDepth = 32

// Reader gives access to the pages of one PDF file. Its methods are safe for
// concurrent use; calls into the underlying parsers are serialized.
type Reader struct {
	path string
	file *os.File
	size int64

	mu     sync.Mutex
	doc    *pdf.Reader // nil when only the structural parser accepted the file
	ctx    *model.Context
	ctxErr error
	loaded bool
	pages  int
}

// Open opens a PDF file. A file the text parser rejects is still accepted
// when its page structure can be read, so scanned pages can be rasterized;
// such a reader has no text layer. A file neither parser can read yields a
// *CorruptDocumentError.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	r := &Reader{path: path, file: f, size: info.Size()}
	if err := r.load(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) load() error {
	doc, pages, textErr := openText(r.file, r.size)
	if textErr == nil {
		r.doc = doc
		r.pages = pages
		return nil
	}

	ctx, err := r.structure()
	if err != nil {
		return &CorruptDocumentError{Path: r.path, Err: textErr}
	}
	r.pages = ctx.PageCount
	return nil
}

// openText parses the file with the text parser, which panics on some
// malformed inputs.
func openText(f io.ReaderAt, size int64) (doc *pdf.Reader, pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, pages, err = nil, 0, fmt.Errorf("parser panic: %v", rec)
		}
	}()
	doc, err = pdf.NewReader(f, size)
	if err != nil {
		return nil, 0, err
	}
	return doc, doc.NumPage(), nil
}

var disableConfigDir sync.Once

// structure loads the pdfcpu context on first use. Callers other than load
// must hold r.mu.
func (r *Reader) structure() (ctx *model.Context, err error) {
	if r.loaded {
		return r.ctx, r.ctxErr
	}
	r.loaded = true
	disableConfigDir.Do(api.DisableConfigDir)

	defer func() {
		if rec := recover(); rec != nil {
			ctx, err = nil, fmt.Errorf("structural parser panic: %v", rec)
		}
		r.ctx, r.ctxErr = ctx, err
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.ReadValidateAndOptimize(io.NewSectionReader(r.file, 0, r.size), conf)
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Path returns the file path the reader was opened with.
func (r *Reader) Path() string { return r.path }

// Size returns the file size in bytes.
func (r *Reader) Size() int64 { return r.size }

// NumPages returns the number of pages.
func (r *Reader) NumPages() int { return r.pages }

// HasTextLayer reports whether direct text extraction is possible.
func (r *Reader) HasTextLayer() bool { return r.doc != nil }

// Title returns the document information title, or "" when absent.
func (r *Reader) Title() (title string) {
	if r.doc == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()
	return strings.TrimSpace(r.doc.Trailer().Key("Info").Key("Title").Text())
}

// PageBox returns the media box of a page (1-based).
func (r *Reader) PageBox(page int) (PageBox, error) {
	if page < 1 || page > r.pages {
		return PageBox{}, fmt.Errorf("%w: %d", ErrPageOutOfRange, page)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc != nil {
		return r.textPageBox(page), nil
	}
	ctx, err := r.structure()
	if err != nil {
		return LetterBox, nil
	}
	dims, err := ctx.PageDims()
	if err != nil || page > len(dims) || dims[page-1].Width <= 0 || dims[page-1].Height <= 0 {
		return LetterBox, nil
	}
	return PageBox{0, 0, dims[page-1].Width, dims[page-1].Height}, nil
}

func (r *Reader) textPageBox(page int) (box PageBox) {
	defer func() {
		if recover() != nil {
			box = LetterBox
		}
	}()
	return mediaBox(r.doc.Page(page).V)
}

// mediaBox reads the MediaBox of a page object, walking up the page tree
// because the attribute is inheritable.
func mediaBox(v pdf.Value) PageBox {
	for depth := 0; !v.IsNull() && depth < maxParentDepth; depth++ {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			b := PageBox{mb.Index(0).Float64(), mb.Index(1).Float64(), mb.Index(2).Float64(), mb.Index(3).Float64()}
			if b.LLX > b.URX {
				b.LLX, b.URX = b.URX, b.LLX
			}
			if b.LLY > b.URY {
				b.LLY, b.URY = b.URY, b.LLY
			}
			if b.Width() > 0 && b.Height() > 0 {
				return b
			}
		}
		v = v.Key("Parent")
	}
	return LetterBox
}

// Fragments returns the positioned text of a page (1-based) in content
// stream order. Coordinates are relative to the lower-left corner of the
// page's media box. A reader without a text layer returns no fragments.
func (r *Reader) Fragments(page int) (frags []text.Fragment, err error) {
	if page < 1 || page > r.pages {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, page)
	}
	if r.doc == nil {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			frags, err = nil, fmt.Errorf("page %d content: %v", page, rec)
		}
	}()

	p := r.doc.Page(page)
	if p.V.IsNull() {
		return nil, errors.New("page object missing")
	}
	box := mediaBox(p.V)
	for _, t := range p.Content().Text {
		if t.S == "" {
			continue
		}
		frags = append(frags, text.Fragment{
			Text:     t.S,
			X:        t.X - box.LLX,
			Y:        t.Y - box.LLY,
			Width:    t.W,
			FontSize: t.FontSize,
			FontName: t.Font,
		})
	}
	return frags, nil
}
