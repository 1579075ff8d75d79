package jsvalue

import "github.com/domharness/domharness/internal/jsast"

// FuncData is the payload of a ClassFunction Object. Exactly one of Native
// or Closure is set.
type FuncData struct {
	Name         string
	Native       NativeFunc
	Closure      *jsast.FuncExpr
	ClosureEnv   interface{} // *jseval.Environment; typed as interface{} to avoid an import cycle
	BoundThis    Value
	HasBoundThis bool
}

// NativeFunc is a built-in implemented in Go. this and args follow call
// semantics (this is Undefined for a bare call).
type NativeFunc func(this Value, args []Value) (Value, error)

// NewNativeFunc wraps fn as a callable Object.
func NewNativeFunc(name string, fn NativeFunc) *Object {
	return &Object{Class: ClassFunction, index: map[string]int{}, Fn: &FuncData{Name: name, Native: fn}}
}

// NewClosure wraps a parsed function literal plus its captured
// environment as a callable Object. env is stored untyped to keep
// jsvalue free of a dependency on the evaluator package that owns
// Environment; jseval type-asserts it back on call.
func NewClosure(name string, fe *jsast.FuncExpr, env interface{}) *Object {
	return &Object{Class: ClassFunction, index: map[string]int{}, Fn: &FuncData{Name: name, Closure: fe, ClosureEnv: env}}
}

// IsCallable reports whether v is a function object.
func IsCallable(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.Class == ClassFunction
}
