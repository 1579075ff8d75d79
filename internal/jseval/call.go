package jseval

import (
	"fmt"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsvalue"
)

// makeClosure wraps a parsed function literal with the environment it
// closes over: closures capture the enclosing environment by shared
// reference, not by copy.
func (it *Interp) makeClosure(fe *jsast.FuncExpr, env *Environment) *jsvalue.Object {
	return jsvalue.NewClosure(fe.Name, fe, env)
}

// Call invokes fn with the given receiver and arguments, following the
// usual this-binding rules: a native Go function, a
// regular closure (fresh call frame, `this` set to the receiver, an
// `arguments` array-like bound), an arrow closure (no new `this` frame —
// it inherits the defining scope's), or a generator/async function
// (delegated to the coroutine machinery in generator.go/async.go).
func (it *Interp) Call(fn jsvalue.Value, this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	v, c := it.call(fn, this, args)
	if c.kind == ctlThrow {
		return nil, asRuntimeError(c)
	}
	return v, nil
}

// call is the internal counterpart of Call that keeps throws as a
// control value instead of a Go error, for callers already inside
// evaluation (so a throw from a callback can propagate through the
// caller's own control-flow handling instead of being boxed and
// reboxed).
func (it *Interp) call(fn jsvalue.Value, this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, control) {
	fo, ok := fn.(*jsvalue.Object)
	if !ok || fo.Class != jsvalue.ClassFunction || fo.Fn == nil {
		return nil, throwError("TypeError", fmt.Sprintf("%s is not a function", jsvalue.ToString(fn)))
	}
	if fo.Fn.HasBoundThis {
		this = fo.Fn.BoundThis
	}
	if fo.Fn.Native != nil {
		v, err := fo.Fn.Native(this, args)
		if err != nil {
			if re, ok := err.(*RuntimeError); ok && re.Thrown != nil {
				return nil, throwControl(re.Thrown)
			}
			return nil, throwError("Error", err.Error())
		}
		return v, normalControl
	}
	fe := fo.Fn.Closure
	parentEnv, _ := fo.Fn.ClosureEnv.(*Environment)

	if fe.Generator {
		return it.startGenerator(fe, parentEnv, this, args), normalControl
	}
	if fe.Async {
		return it.startAsync(fe, parentEnv, this, args), normalControl
	}

	callEnv := NewEnvironment(parentEnv)
	if !fe.Arrow {
		callEnv.SetThis(this)
		callEnv.Define("arguments", jsvalue.NewArray(append([]jsvalue.Value(nil), args...)), false)
	}
	if err := it.bindParams(callEnv, fe.Params, args); err.kind != ctlNormal {
		return nil, err
	}
	if fe.ExprBody {
		v, c := it.eval(fe.Body, callEnv)
		if c.kind != ctlNormal {
			return nil, c
		}
		return v, normalControl
	}
	c := it.exec(fe.Body, callEnv)
	switch c.kind {
	case ctlReturn:
		return c.value, normalControl
	case ctlThrow:
		return nil, c
	default:
		return jsvalue.UndefinedValue, normalControl
	}
}

// bindParams binds a call's arguments against a parameter list, handling
// defaults, destructuring patterns, and a trailing rest element.
func (it *Interp) bindParams(env *Environment, params []jsast.Node, args []jsvalue.Value) control {
	for i, p := range params {
		if spread, ok := p.(jsast.SpreadElement); ok {
			var rest []jsvalue.Value
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			return it.bindPattern(env, spread.Arg, jsvalue.NewArray(rest), true, false)
		}
		var v jsvalue.Value = jsvalue.UndefinedValue
		if i < len(args) {
			v = args[i]
		}
		target := p
		if ae, ok := p.(jsast.AssignExpr); ok {
			target = ae.Target
			if jsvalue.IsNullish(v) {
				if _, isUndef := v.(jsvalue.Undefined); isUndef || v == nil {
					dv, c := it.eval(ae.Value, env)
					if c.kind != ctlNormal {
						return c
					}
					v = dv
				}
			}
		}
		if c := it.bindPattern(env, target, v, true, false); c.kind != ctlNormal {
			return c
		}
	}
	return normalControl
}

// bindPattern binds v against target, which may be a bare Identifier, an
// ArrayPattern, or an ObjectPattern (recursively). declare chooses
// Environment.Define (a fresh binding: var/let/const decls, parameters,
// catch bindings) over Set (assignment to an existing binding, for
// destructuring assignment expressions like `[a, b] = [1, 2]`).
func (it *Interp) bindPattern(env *Environment, target jsast.Node, v jsvalue.Value, declare, isConst bool) control {
	switch t := target.(type) {
	case jsast.Identifier:
		if declare {
			env.Define(t.Name, v, isConst)
		} else if err := env.Set(t.Name, v); err != nil {
			return throwError("TypeError", err.Error())
		}
		return normalControl
	case jsast.ArrayPattern:
		items, err := it.iterate(v)
		if err != nil {
			return throwError("TypeError", err.Error())
		}
		for i, el := range t.Elements {
			if el == nil {
				continue
			}
			var ev jsvalue.Value = jsvalue.UndefinedValue
			if i < len(items) {
				ev = items[i]
			}
			elTarget := el
			if ae, ok := el.(jsast.AssignExpr); ok {
				elTarget = ae.Target
				if _, isUndef := ev.(jsvalue.Undefined); isUndef {
					dv, c := it.eval(ae.Value, env)
					if c.kind != ctlNormal {
						return c
					}
					ev = dv
				}
			}
			if c := it.bindPattern(env, elTarget, ev, declare, isConst); c.kind != ctlNormal {
				return c
			}
		}
		if t.Rest != nil {
			n := len(t.Elements)
			var rest []jsvalue.Value
			if n < len(items) {
				rest = append(rest, items[n:]...)
			}
			if c := it.bindPattern(env, t.Rest, jsvalue.NewArray(rest), declare, isConst); c.kind != ctlNormal {
				return c
			}
		}
		return normalControl
	case jsast.ObjectPattern:
		obj, _ := v.(*jsvalue.Object)
		used := map[string]bool{}
		for _, p := range t.Props {
			key, c := it.patternKey(p, env)
			if c.kind != ctlNormal {
				return c
			}
			used[key] = true
			var pv jsvalue.Value = jsvalue.UndefinedValue
			if obj != nil {
				pv = obj.Get(key)
			}
			propTarget := p.Value
			if p.Default != nil {
				if _, isUndef := pv.(jsvalue.Undefined); isUndef {
					dv, c := it.eval(p.Default, env)
					if c.kind != ctlNormal {
						return c
					}
					pv = dv
				}
			}
			if c := it.bindPattern(env, propTarget, pv, declare, isConst); c.kind != ctlNormal {
				return c
			}
		}
		if t.Rest != nil {
			restObj := jsvalue.NewObject()
			if obj != nil {
				for _, k := range obj.OwnKeys() {
					if !used[k] {
						restObj.Set(k, obj.Get(k))
					}
				}
			}
			if c := it.bindPattern(env, t.Rest, restObj, declare, isConst); c.kind != ctlNormal {
				return c
			}
		}
		return normalControl
	default:
		// Plain assignment target (MemberExpr, …): only reachable from
		// assignment expressions, never from a declaration.
		return it.assignTo(env, target, v)
	}
}

func (it *Interp) patternKey(p jsast.ObjectPatternProp, env *Environment) (string, control) {
	if p.Computed {
		v, c := it.eval(p.Key, env)
		if c.kind != ctlNormal {
			return "", c
		}
		return jsvalue.ToString(v), normalControl
	}
	switch k := p.Key.(type) {
	case jsast.Identifier:
		return k.Name, normalControl
	case jsast.StringLit:
		return k.Value, normalControl
	}
	return "", normalControl
}
