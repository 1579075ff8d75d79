package jseval

import "github.com/domharness/domharness/internal/jsvalue"

// genState is the coroutine state a generator or async function body
// runs against; it is exactly the channel pair jsvalue.GeneratorData
// already defines; jseval doesn't need its own copy of that plumbing.
type genState = jsvalue.GeneratorData

// ctlKind tags what a statement's evaluation is asking its caller to do
// next, in the standard return/break/continue/throw/normal vocabulary.
type ctlKind int

const (
	ctlNormal ctlKind = iota
	ctlReturn
	ctlBreak
	ctlContinue
	ctlThrow
)

// control carries a ctlKind plus whatever payload it needs: the returned/
// thrown value, or the label a break/continue targets.
type control struct {
	kind  ctlKind
	value jsvalue.Value
	label string
}

var normalControl = control{kind: ctlNormal}

func returnControl(v jsvalue.Value) control  { return control{kind: ctlReturn, value: v} }
func breakControl(label string) control      { return control{kind: ctlBreak, label: label} }
func continueControl(label string) control   { return control{kind: ctlContinue, label: label} }
func throwControl(v jsvalue.Value) control   { return control{kind: ctlThrow, value: v} }

// RuntimeError is the Go error type every uncaught JS throw and every
// evaluator-detected failure (unknown identifier, calling a
// non-function, …) surfaces as at the harness boundary.
type RuntimeError struct {
	Message string
	Thrown  jsvalue.Value // the original thrown value, for callers that want it
}

func (e *RuntimeError) Error() string { return e.Message }

// throwError builds a freshly constructed Error object of the given
// constructor name and returns the throwControl that propagates it as a
// JS-level throw (so a `try/catch` in the script can still intercept it —
// only an *uncaught* throw becomes the Go error, via asRuntimeError, seen
// at the harness boundary).
func throwError(name, message string) control {
	return throwControl(jsvalue.NewErrorObject(name, message))
}

// asRuntimeError converts an uncaught throwControl's payload into the
// *RuntimeError the harness façade returns.
func asRuntimeError(c control) error {
	return &RuntimeError{Message: jsvalue.ErrorMessage(c.value), Thrown: c.value}
}

// jsError builds a plain Go error carrying a specific JS error
// constructor name, for built-in method implementations that return
// (Value, bool, error) rather than a control and so can't call
// throwError/throwControl directly.
func jsError(name, message string) error {
	v := jsvalue.NewErrorObject(name, message)
	return &RuntimeError{Message: jsvalue.ErrorMessage(v), Thrown: v}
}
