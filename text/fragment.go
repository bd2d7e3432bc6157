package text

import "strings"

// Fragment is a positioned run of text on a page, in PDF user space where
// the origin is the bottom-left corner and Y is the baseline.
type Fragment struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
	FontName string
}

// Right returns the X coordinate of the fragment's right edge.
func (f Fragment) Right() float64 {
	return f.X + f.Width
}

// boldMarkers are substrings of font names that indicate a heavy weight.
var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demibold", "demi"}

// IsBoldFont checks if a font name carries a bold weight, as in
// "Helvetica-Bold" or "ABCDEE+NotoSansJP-Black".
func IsBoldFont(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range boldMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
