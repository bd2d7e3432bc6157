package model

import (
	"fmt"
	"strconv"
	"strings"
)

// HeadingLevel represents the nesting depth of a heading (H1-H6).
type HeadingLevel int

const (
	LevelUnknown HeadingLevel = iota
	H1
	H2
	H3
	H4
	H5
	H6
)

// MaxHeadingLevel is the deepest level a profile may declare.
const MaxHeadingLevel = H6

// String returns "H1".."H6", or "unknown" for out-of-range values.
func (l HeadingLevel) String() string {
	if l < H1 || l > MaxHeadingLevel {
		return "unknown"
	}
	return "H" + strconv.Itoa(int(l))
}

// Valid reports whether l is one of H1..H6.
func (l HeadingLevel) Valid() bool {
	return l >= H1 && l <= MaxHeadingLevel
}

// ParseHeadingLevel accepts "H2", "h2" or "2".
func ParseHeadingLevel(s string) (HeadingLevel, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToUpper(s), "H")
	n, err := strconv.Atoi(s)
	if err != nil || n < int(H1) || n > int(MaxHeadingLevel) {
		return LevelUnknown, fmt.Errorf("invalid heading level %q", s)
	}
	return HeadingLevel(n), nil
}

// MarshalText implements encoding.TextMarshaler so levels serialize as "H1".
func (l HeadingLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid heading level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *HeadingLevel) UnmarshalText(b []byte) error {
	v, err := ParseHeadingLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// HeadingCandidate is a line the classifier accepted as a heading.
type HeadingCandidate struct {
	Line  LineRecord
	Level HeadingLevel

	// Score is the classifier's confidence in [0,1].
	Score float64

	// MatchedRule names the rule or signal that produced the candidate,
	// for example "en.section" or "font-ratio".
	MatchedRule string

	// Numbered is set when a numbering pattern matched. A numbered
	// candidate always starts a new outline entry.
	Numbered bool

	// LabelOnly is set when a label rule ("Chapter 1") matched the whole
	// line, so the next contiguous line is the chapter's name.
	LabelOnly bool
}
