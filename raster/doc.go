// Package raster renders PDF pages to images for OCR and prepares those
// images for recognition.
//
// Two [Rasterizer] implementations exist: [Pdftoppm] renders a page with the
// poppler utility, and [Embedded] decodes the largest image stored in the
// page, which covers most scanner output. A [Chain] tries them in order.
//
//	r := raster.Chain{raster.Pdftoppm{}, raster.Embedded{Source: doc}}
//	page, err := r.Rasterize(ctx, raster.Request{Path: path, Page: 3, Box: box, DPI: 216})
//	if err != nil {
//	    return err
//	}
//	defer page.Close()
//	raster.Preprocess(page, raster.DefaultOptions())
//
// [Preprocess] converts to grayscale, upscales coarse images with
// Catmull-Rom interpolation and binarizes with Otsu's method or an adaptive
// mean threshold.
package raster
