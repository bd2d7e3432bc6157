package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean removes control characters and zero-width marks and maps every
// Unicode space (including NBSP and the ideographic space) to ' '.
func Clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
			return -1
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// CollapseSpace trims s and folds runs of whitespace into a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tidy is Clean followed by CollapseSpace. It is the form used for outline
// entry text.
func Tidy(s string) string {
	return CollapseSpace(Clean(s))
}

// Fold returns the NFKC compatibility form of the tidied text. Matching
// happens on folded text so "１．２" and "1.2" are treated alike.
func Fold(s string) string {
	return CollapseSpace(norm.NFKC.String(Clean(s)))
}

// IsNumericOnly reports whether s contains no letters, as with page
// numbers ("12", "- 3 -", "iv" is not numeric-only).
func IsNumericOnly(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			return false
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasDigit
}

// LetterCount returns the number of letters in s.
func LetterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// GarbledRatio returns the share of non-space runes that are U+FFFD
// replacement characters, a sign of fonts without a usable encoding.
func GarbledRatio(s string) float64 {
	total, bad := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r == unicode.ReplacementChar {
			bad++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bad) / float64(total)
}
