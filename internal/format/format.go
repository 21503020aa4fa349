// Package format derives display strings from issue fields.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// CreatedDateLayout renders dates as MM/DD/YYYY.
const CreatedDateLayout = "01/02/2006"

// Truncate shortens text to at most maxLength characters, cutting back to
// the last whole word and appending an ellipsis. Text that fits is
// returned unchanged. The result can be shorter than maxLength by up to a
// word's length.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if maxLength < 0 || len(runes) <= maxLength {
		return text
	}
	tokens := strings.Split(string(runes[:maxLength]), " ")
	return strings.Join(tokens[:len(tokens)-1], " ") + Ellipsis
}

// TruncatePtr is Truncate for optional text; nil yields "".
func TruncatePtr(text *string, maxLength int) string {
	if text == nil {
		return ""
	}
	return Truncate(*text, maxLength)
}

// CreatedDate formats t as MM/DD/YYYY.
func CreatedDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CreatedDateLayout)
}

// RelativeTime formats t relative to now, e.g. "3 days ago".
func RelativeTime(t time.Time) string {
	return RelativeTo(t, time.Now())
}

// RelativeTo formats t relative to now.
func RelativeTo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
