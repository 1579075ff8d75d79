package jsvalue

import (
	"fmt"
	"time"
)

// NewDate wraps a millisecond timestamp (since epoch, UTC) as a
// ClassDate Object. The evaluator is responsible for sourcing "now" from
// the harness's virtual clock rather than time.Now(), which is what
// makes Date.now() deterministic.
func NewDate(ms float64) *Object {
	return &Object{Class: ClassDate, index: map[string]int{}, DateMs: ms}
}

func formatDateISO(ms float64) string {
	if isNaN(ms) {
		return "Invalid Date"
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%03dZ",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6)
}

// DateToTime converts a Date object's stored ms into a time.Time, for
// callers (Intl formatters) that want Go's calendar arithmetic.
func DateToTime(o *Object) time.Time {
	return time.UnixMilli(int64(o.DateMs)).UTC()
}
