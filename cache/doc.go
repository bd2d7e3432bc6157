// Package cache keeps finished outlines in a SQLite database so unchanged
// PDFs are not processed again.
//
// Entries are keyed by the SHA-256 of the PDF and a fingerprint of the
// settings that shape the outline (language, thresholds, OCR options).
// Changing either misses the cache.
package cache
