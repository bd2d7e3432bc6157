// Package outline assembles classified heading candidates into the final
// document outline.
//
// Assembly orders candidates by page and line, merges headings that wrap
// over several contiguous lines, absorbs the name line that follows a bare
// chapter label ("Chapter 1" then "Introduction"), prunes weak candidates
// and chooses the title:
//
//	out := outline.New().Assemble(candidates, outline.Source{
//	    FileName:      "report.pdf",
//	    MetadataTitle: doc.Title(),
//	})
//
// Pruning is precision biased when a document yields many candidates
// (Config.AcceptThreshold) and falls back to Config.RelaxedThreshold when
// too few would survive, so noisy OCR cannot flood the outline and sparse
// documents do not end up empty.
package outline
