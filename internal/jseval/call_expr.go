package jseval

import (
	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsvalue"
)

// evalCall evaluates a call expression. A MemberExpr callee (obj.method(...))
// is resolved through dispatchMethod first, the built-in fast path that
// covers every Array/String/Map/Set/Date/RegExp/Promise/DOM method the
// grammar can reach without ever materializing a detached bound-function
// object; anything dispatchMethod doesn't recognize falls back to a plain
// property read plus a regular call; a bare callee is just evaluated and
// called with an undefined receiver.
func (it *Interp) evalCall(n jsast.CallExpr, env *Environment) (jsvalue.Value, control) {
	if m, ok := n.Callee.(jsast.MemberExpr); ok {
		recv, c := it.eval(m.Object, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		if (m.Optional || n.Optional) && jsvalue.IsNullish(recv) {
			return jsvalue.UndefinedValue, normalControl
		}
		key, c := it.memberKey(m, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		args, c := it.evalArgs(n.Args, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		if v, handled, err := it.dispatchMethod(recv, key, args); handled {
			if err != nil {
				return nil, throwControl(errThrownValue(err))
			}
			return v, normalControl
		}
		fn, err := it.getProp(recv, key)
		if err != nil {
			return nil, throwControl(errThrownValue(err))
		}
		if n.Optional && jsvalue.IsNullish(fn) {
			return jsvalue.UndefinedValue, normalControl
		}
		return it.call(fn, recv, args)
	}

	callee, c := it.eval(n.Callee, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	if n.Optional && jsvalue.IsNullish(callee) {
		return jsvalue.UndefinedValue, normalControl
	}
	args, c := it.evalArgs(n.Args, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	return it.call(callee, jsvalue.UndefinedValue, args)
}

func (it *Interp) evalArgs(nodes []jsast.Node, env *Environment) ([]jsvalue.Value, control) {
	var out []jsvalue.Value
	for _, a := range nodes {
		if sp, ok := a.(jsast.SpreadElement); ok {
			v, c := it.eval(sp.Arg, env)
			if c.kind != ctlNormal {
				return nil, c
			}
			items, err := it.iterate(v)
			if err != nil {
				return nil, throwError("TypeError", err.Error())
			}
			out = append(out, items...)
			continue
		}
		v, c := it.eval(a, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		out = append(out, v)
	}
	return out, normalControl
}

// evalNew evaluates `new Callee(args)`. There is no real
// prototype/[[Construct]] mechanism: the callee must be a function
// object, and it is simply called with an undefined receiver, its return
// value becoming the result.
func (it *Interp) evalNew(n jsast.NewExpr, env *Environment) (jsvalue.Value, control) {
	calleeVal, c := it.eval(n.Callee, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	args, c := it.evalArgs(n.Args, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	ctor, ok := calleeVal.(*jsvalue.Object)
	if !ok || ctor.Class != jsvalue.ClassFunction {
		return nil, throwError("TypeError", "not a constructor")
	}
	v, err := it.Call(ctor, jsvalue.UndefinedValue, args)
	if err != nil {
		return nil, throwControl(errThrownValue(err))
	}
	return v, normalControl
}

// dispatchMethod resolves obj.method(args) against the built-in method
// tables, returning handled=false when obj/method isn't one of them so
// the caller can fall back to a generic property-based call (for plain
// objects holding a closure in a property, the common "methods as object
// properties" pattern).
func (it *Interp) dispatchMethod(recv jsvalue.Value, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch t := recv.(type) {
	case jsvalue.String:
		return it.stringMethod(string(t), method, args)
	case *jsvalue.Object:
		switch t.Class {
		case jsvalue.ClassArray:
			return it.arrayMethod(t, method, args)
		case jsvalue.ClassMap:
			return it.mapMethod(t, method, args)
		case jsvalue.ClassSet:
			return it.setMethod(t, method, args)
		case jsvalue.ClassDate:
			return it.dateMethod(t, method, args)
		case jsvalue.ClassRegExp:
			return it.regexMethod(t, method, args)
		case jsvalue.ClassURL:
			return it.urlMethod(t, method, args)
		case jsvalue.ClassURLParams:
			return it.urlParamsMethod(t, method, args)
		case jsvalue.ClassPromise:
			return it.promiseInstanceMethod(t, method, args)
		case jsvalue.ClassGenerator:
			return it.generatorMethod(t, method, args)
		case jsvalue.ClassError:
			return it.errorMethod(t, method, args)
		case jsvalue.ClassFunction:
			return it.functionMethod(t, method, args)
		case ClassDocument:
			return it.documentMethod(t, method, args)
		case ClassWindow:
			return it.windowMethod(t, method, args)
		case ClassElement, ClassTextNode:
			return it.elementMethod(t, method, args)
		case jsvalue.ClassObject:
			return it.objectInstanceMethod(t, method, args)
		case jsvalue.ClassTypedArr:
			return it.typedArrayMethod(t, method, args)
		case jsvalue.ClassArrayBuf:
			return it.arrayBufferMethod(t, method, args)
		case jsvalue.ClassDataView:
			return it.dataViewMethod(t, method, args)
		}
	}
	return nil, false, nil
}

func (it *Interp) generatorMethod(g *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	var v jsvalue.Value
	var done bool
	var err error
	switch method {
	case "next":
		v, done, err = it.generatorNext(g, arg0(args))
	case "return":
		v, done, err = it.generatorReturn(g, arg0(args))
	case "throw":
		v, done, err = it.generatorThrow(g, arg0(args))
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	res := jsvalue.NewObject()
	res.Set("value", v)
	res.Set("done", jsvalue.BoolValue(done))
	return res, true, nil
}

func (it *Interp) errorMethod(e *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	if method == "toString" {
		return jsvalue.String(jsvalue.ToString(e)), true, nil
	}
	return nil, false, nil
}

func (it *Interp) functionMethod(fn *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "call":
		this := arg0(args)
		var rest []jsvalue.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		v, err := it.Call(fn, this, rest)
		return v, true, err
	case "apply":
		this := arg0(args)
		var rest []jsvalue.Value
		if len(args) > 1 {
			rest, _ = it.iterate(args[1])
		}
		v, err := it.Call(fn, this, rest)
		return v, true, err
	case "bind":
		this := arg0(args)
		var bound []jsvalue.Value
		if len(args) > 1 {
			bound = append([]jsvalue.Value(nil), args[1:]...)
		}
		wrapped := jsvalue.NewNativeFunc(fn.Fn.Name, func(_ jsvalue.Value, callArgs []jsvalue.Value) (jsvalue.Value, error) {
			return it.Call(fn, this, append(append([]jsvalue.Value(nil), bound...), callArgs...))
		})
		return wrapped, true, nil
	case "toString":
		return jsvalue.String(jsvalue.ToString(fn)), true, nil
	}
	return nil, false, nil
}
