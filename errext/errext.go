// Package errext provides small error-wrapping helpers used across the
// harness to attach human-readable hints to errors without losing the
// underlying error chain.
package errext

import (
	"errors"
	"fmt"
)

// HasHint is implemented by errors that carry a short remediation hint.
type HasHint interface {
	error
	Hint() string
}

type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() }
func (e *hintedError) Unwrap() error { return e.err }
func (e *hintedError) Hint() string  { return e.hint }

// WithHint wraps err with a hint. If err already carries a hint, the new
// hint is prefixed and the old one is retained in parentheses, so repeated
// wrapping reads as a growing trail of context, most specific first.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	var existing HasHint
	if errors.As(err, &existing) {
		hint = fmt.Sprintf("%s (%s)", hint, existing.Hint())
	}
	return &hintedError{err: err, hint: hint}
}

// Format splits err into a display string and a set of structured fields
// (currently just "hint", if present) suitable for structured logging.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}
	fields := map[string]interface{}{}
	type stackTracer interface {
		StackTrace() string
	}
	text := err.Error()
	var st stackTracer
	if errors.As(err, &st) {
		text = st.StackTrace()
	}
	var h HasHint
	if errors.As(err, &h) {
		fields["hint"] = h.Hint()
	}
	return text, fields
}
