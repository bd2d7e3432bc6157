// Package reader opens PDF files and exposes their pages as positioned text
// fragments, media boxes and embedded images.
//
// Text comes from the content stream parser of github.com/ledongthuc/pdf.
// Document structure and embedded images come from pdfcpu, which is also
// used to accept files the text parser rejects: such files have no text
// layer and every page is left to OCR.
//
//	r, err := reader.Open("report.pdf")
//	if err != nil {
//	    var corrupt *reader.CorruptDocumentError
//	    if errors.As(err, &corrupt) {
//	        // skip this file
//	    }
//	    return err
//	}
//	defer r.Close()
//
//	for page := 1; page <= r.NumPages(); page++ {
//	    box, _ := r.PageBox(page)
//	    frags, err := r.Fragments(page)
//	    ...
//	}
//
// Page numbers are 1-based throughout. Panics raised by either parser on
// malformed input are recovered and returned as errors.
package reader
