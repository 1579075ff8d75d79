package jsvalue

// NewErrorObject builds a ClassError object with the given constructor
// name ("Error", "TypeError", "RangeError", …) and message, in the shape
// a thrown value's `.message` read expects.
func NewErrorObject(name, message string) *Object {
	o := &Object{Class: ClassError, index: map[string]int{}}
	o.Set("name", String(name))
	o.Set("message", String(message))
	o.Set("stack", String(name+": "+message))
	return o
}

// ErrorMessage extracts `.message` from a thrown value the way the
// evaluator's uncaught-throw path does, falling back to ToString for
// non-Error throws (`throw "plain string"`).
func ErrorMessage(v Value) string {
	if o, ok := v.(*Object); ok && o.Class == ClassError {
		return ToString(o.Get("message"))
	}
	return ToString(v)
}
