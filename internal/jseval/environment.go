// Package jseval is the tree-walking evaluator: it takes the AST jsparse
// produces and an Environment, and drives effects on the DOM, the
// scheduler, and the jsvalue runtime model. It is the largest package in
// the module, since most of the system's observable behavior lives in
// how a script's statements and expressions get evaluated.
package jseval

import "github.com/domharness/domharness/internal/jsvalue"

// binding is one variable slot. Const is checked on assignment, not on
// declaration, mirroring where a real engine's TDZ/const violation would
// actually surface.
type binding struct {
	value jsvalue.Value
	isConst bool
}

// Environment is a scope: a mapping chained to a parent scope. Closures
// capture one by pointer, so two closures sharing an Environment observe
// each other's writes to it — the same shared-handle contract the value
// model gives objects.
type Environment struct {
	vars   map[string]*binding
	parent *Environment

	// thisVal/hasThis mark a call-boundary environment (a non-arrow
	// function's own frame): arrow functions never set these, so a
	// "this" lookup walks up past every arrow frame to the nearest real
	// call frame, which is exactly JS's lexical-this rule.
	thisVal jsvalue.Value
	hasThis bool

	// gen marks the frame of a generator or async function body, so a
	// yield/await expression deep inside nested blocks can find its way
	// back to the coroutine driving it without threading an extra
	// parameter through every statement/expression evaluator method.
	gen *genState
}

// NewEnvironment returns a fresh scope chained to parent (nil for the
// global scope).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]*binding), parent: parent}
}

// Define introduces name in this scope, shadowing any same-named binding
// in an enclosing scope.
func (e *Environment) Define(name string, v jsvalue.Value, isConst bool) {
	e.vars[name] = &binding{value: v, isConst: isConst}
}

// Get resolves name through the scope chain. A miss is the "unknown
// variable" error that scripts can observe via try/catch.
func (e *Environment) Get(name string) (jsvalue.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.vars[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Set assigns to the nearest existing binding of name, returning an error
// if it is const. An assignment to a name with no existing binding
// anywhere in the chain creates an implicit global, matching sloppy-mode
// JS assignment (the grammar this subset accepts has no "use strict").
func (e *Environment) Set(name string, v jsvalue.Value) error {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.vars[name]; ok {
			if b.isConst {
				return &RuntimeError{Message: "Assignment to constant variable."}
			}
			b.value = v
			return nil
		}
		if env.parent == nil {
			env.vars[name] = &binding{value: v}
			return nil
		}
	}
	return nil
}

// Has reports whether name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// This resolves the lexical `this` by walking up to the nearest frame
// that actually set one (a non-arrow function call, or the global frame).
func (e *Environment) This() jsvalue.Value {
	for env := e; env != nil; env = env.parent {
		if env.hasThis {
			return env.thisVal
		}
	}
	return jsvalue.UndefinedValue
}

// SetThis marks e as a call-boundary frame carrying an explicit `this`.
func (e *Environment) SetThis(v jsvalue.Value) { e.thisVal = v; e.hasThis = true }

// FindGen walks up to the nearest generator/async-function frame, or nil
// if evaluation isn't currently inside one (a bare `yield` outside a
// generator, which the parser would already have to have allowed through
// as a regular identifier use — jseval just reports it unresolved).
func (e *Environment) FindGen() *genState {
	for env := e; env != nil; env = env.parent {
		if env.gen != nil {
			return env.gen
		}
	}
	return nil
}
