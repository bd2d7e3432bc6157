package lang

import (
	"fmt"
	"strings"
)

// UnknownLanguageError is returned when a requested language id is not
// registered. It is fatal for the invocation that asked for it.
type UnknownLanguageError struct {
	ID    string
	Known []string
}

func (e *UnknownLanguageError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown language %q", e.ID)
	}
	return fmt.Sprintf("unknown language %q (supported: %s)", e.ID, strings.Join(e.Known, ", "))
}
