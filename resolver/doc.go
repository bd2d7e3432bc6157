// Package resolver turns PDF pages into line records, choosing per page
// between the text layer and OCR.
//
// A page is extracted directly first. It is sent to OCR when its text is
// too sparse (fewer non-space characters per square inch than
// Config.MinCharDensity) or too garbled (more replacement characters than
// Config.MaxGarbledRatio):
//
//	r := resolver.New(
//	    resolver.WithOCR(raster.Chain{raster.Pdftoppm{}, raster.Embedded{Source: doc}}, pool),
//	    resolver.WithLogger(logger),
//	)
//	pages, err := r.Resolve(ctx, doc, profile)
//
// Direct extraction runs page by page; OCR pages run in parallel up to
// Config.PageWorkers. A failed or timed-out recognition never fails the
// document: the page keeps whatever direct text it had and carries a
// *PageExtractionError or *OCRTimeoutError as its warning. Only
// cancellation of the caller's context is returned as an error.
package resolver
