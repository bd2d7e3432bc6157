// Package ocr recognizes text in page images with Tesseract.
//
// Two [Engine] implementations exist. The library engine binds the
// Tesseract C API through gosseract and is compiled in with the "ocr" build
// tag:
//
//	go build -tags ocr
//
// The [CLIEngine] runs the tesseract program and parses its TSV output; it
// needs no cgo. [NewFactory] picks one according to a [Mode].
//
// Engines are not safe for concurrent use. A [Pool] hands each engine to
// one goroutine at a time and bounds how many exist:
//
//	pool := ocr.NewPool(factory, 4)
//	defer pool.Close()
//	res, err := pool.Recognize(ctx, ocr.Request{Image: png, Languages: "jpn"})
//
// When ctx ends first the call is abandoned and the engine is closed after
// it returns, so a stuck recognition never blocks the pool.
//
// [GroupLines] turns recognized words into text lines; [TextLines] lays out
// plain text when an engine returned no word boxes.
package ocr
