// Package output serializes document outlines to JSON files.
//
// Every file is checked against the embedded JSON Schema before it is
// written, and written atomically:
//
//	w, err := output.NewWriter("out")
//	path, err := w.Write("in/report.pdf", outline) // out/report.json
package output
