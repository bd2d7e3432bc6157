// Package lang holds the language profiles that drive heading detection and
// the detector that picks a profile for a document.
//
// Profiles are data: ordered numbering rules, OCR cues, script signatures and
// OCR tuning, loaded from YAML. The built-in table covers 13 languages:
//
//	reg := lang.Default()
//	p, err := reg.Get("japanese") // also "ja" or "jpn"
//
// A custom table with the same layout can be loaded with [LoadRegistry].
// Registries are immutable after construction.
//
// [Detector.Detect] inspects a text sample: a Unicode script histogram
// first, numbering-pattern frequency second, the default language last.
package lang
