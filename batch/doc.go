// Package batch runs outline extraction over many PDF files.
//
// An [Orchestrator] processes files on a bounded worker pool. Every file
// yields exactly one [Result]: an outline, or an [ExtractionError] whose
// [Kind] tells why the file failed. A corrupt or panicking file never stops
// the rest of the batch, and files still pending when the batch deadline
// passes report a timeout.
//
//	p, err := pdfoutline.NewPipeline(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	o, err := batch.New(batch.Options{
//	    Extract:  p.Extract,
//	    Workers:  cfg.Workers,
//	    OnResult: func(r batch.Result) { /* write r.Outline */ },
//	})
//	results := o.Process(ctx, files)
//
// [Summarize] turns the results into a report that can be written as JSON
// or as an XLSX workbook.
package batch
