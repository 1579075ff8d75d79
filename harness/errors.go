package harness

import (
	"fmt"

	"github.com/domharness/domharness/errext"
)

// HtmlParseError reports markup the parser could not recover from: an
// unterminated attribute string or start tag at end of input.
type HtmlParseError struct {
	Message string
	cause   error
}

func (e *HtmlParseError) Error() string { return "html parse error: " + e.Message }
func (e *HtmlParseError) Unwrap() error { return e.cause }

// ScriptParseError reports a script block the JS-subset parser rejected.
type ScriptParseError struct {
	Message string
	cause   error
}

func (e *ScriptParseError) Error() string { return "script parse error: " + e.Message }
func (e *ScriptParseError) Unwrap() error { return e.cause }

// ScriptRuntimeError reports an uncaught throw, or an evaluator-detected
// failure such as reading an undeclared identifier, surfaced at the
// harness boundary.
type ScriptRuntimeError struct {
	Message string
	cause   error
}

func (e *ScriptRuntimeError) Error() string { return "script runtime error: " + e.Message }
func (e *ScriptRuntimeError) Unwrap() error { return e.cause }
func (e *ScriptRuntimeError) Hint() string {
	return "state mutated before the error was raised is retained; only remaining listeners for this dispatch were skipped"
}

// SelectorParseError reports a selector string outside the supported
// grammar.
type SelectorParseError struct {
	Selector string
	cause    error
}

func (e *SelectorParseError) Error() string {
	return fmt.Sprintf("selector parse error: %q: %s", e.Selector, e.cause)
}
func (e *SelectorParseError) Unwrap() error { return e.cause }

// NoMatchError reports that a selector matched no element.
type NoMatchError struct {
	Selector string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no element matches selector %q", e.Selector)
}

// AssertionError reports an assert_text mismatch. It is returned, not
// panicked: a failed assertion never short-circuits the scheduler.
type AssertionError struct {
	Selector string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed for %q: expected %q, got %q", e.Selector, e.Expected, e.Actual)
}

func wrapHtmlParse(err error) error {
	if err == nil {
		return nil
	}
	return &HtmlParseError{Message: err.Error(), cause: errext.WithHint(err, "check for an unterminated tag or attribute string")}
}

func wrapScriptParse(err error) error {
	if err == nil {
		return nil
	}
	return &ScriptParseError{Message: err.Error(), cause: errext.WithHint(err, "the script uses a construct outside the supported JS subset")}
}

func wrapScriptRuntime(err error) error {
	if err == nil {
		return nil
	}
	return &ScriptRuntimeError{Message: err.Error(), cause: err}
}

func wrapSelectorParse(selector string, err error) error {
	if err == nil {
		return nil
	}
	return &SelectorParseError{Selector: selector, cause: err}
}
