package jseval

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsintl"
	"github.com/domharness/domharness/internal/jsparse"
	"github.com/domharness/domharness/internal/jsvalue"
)

// setupGlobals binds every host object and built-in constructor a script
// can see at the top level: document/window, console, the Math/JSON/Intl
// namespaces, every constructor function, and the timer/microtask
// functions wired to this Interp's own scheduler.
func (it *Interp) setupGlobals() {
	g := it.Global

	it.documentObj = &jsvalue.Object{Class: ClassDocument}
	it.windowObj = &jsvalue.Object{Class: ClassWindow}
	if it.consoleOut == nil {
		it.consoleOut = io.Discard
	}

	g.Define("document", it.documentObj, false)
	g.Define("window", it.windowObj, false)
	g.Define("globalThis", it.windowObj, false)
	g.Define("console", it.consoleObject(), false)
	g.Define("Math", it.mathObject(), false)

	g.Define("NaN", jsvalue.Number(math.NaN()), true)
	g.Define("Infinity", jsvalue.Number(math.Inf(1)), true)
	g.Define("undefined", jsvalue.UndefinedValue, true)

	g.Define("Object", it.objectCtor(), false)
	g.Define("Array", it.arrayCtor(), false)
	g.Define("String", it.stringCtor(), false)
	g.Define("Number", it.numberCtor(), false)
	g.Define("Boolean", it.booleanCtor(), false)
	g.Define("Symbol", it.symbolCtor(), false)
	g.Define("Function", it.functionCtor(false), false)
	g.Define("GeneratorFunction", it.functionCtor(true), false)
	g.Define("Date", it.dateCtor(), false)
	g.Define("RegExp", it.regexCtor(), false)
	g.Define("Map", it.mapCtor(), false)
	g.Define("Set", it.setCtor(), false)
	g.Define("Promise", it.newPromiseCtor(), false)
	g.Define("URL", it.urlCtor(), false)
	g.Define("URLSearchParams", it.urlParamsCtor(), false)
	g.Define("ArrayBuffer", it.arrayBufferCtor(), false)
	g.Define("DataView", it.dataViewCtor(), false)
	for _, kind := range []jsvalue.TypedArrayKind{
		jsvalue.Int8Array, jsvalue.Uint8Array, jsvalue.Uint8Clamped,
		jsvalue.Int16Array, jsvalue.Uint16Array,
		jsvalue.Int32Array, jsvalue.Uint32Array,
		jsvalue.Float32Array, jsvalue.Float64Array,
	} {
		g.Define(string(kind), it.typedArrayCtor(kind), false)
	}

	for _, name := range []string{"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError", "AggregateError"} {
		g.Define(name, it.errorCtor(name), false)
	}

	g.Define("JSON", it.jsonObject(), false)
	g.Define("Intl", it.intlObject(), false)

	g.Define("setTimeout", jsvalue.NewNativeFunc("setTimeout", it.setTimeoutFn), false)
	g.Define("clearTimeout", jsvalue.NewNativeFunc("clearTimeout", it.clearTimeoutFn), false)
	g.Define("setInterval", jsvalue.NewNativeFunc("setInterval", it.setIntervalFn), false)
	g.Define("clearInterval", jsvalue.NewNativeFunc("clearInterval", it.clearTimeoutFn), false)
	g.Define("requestAnimationFrame", jsvalue.NewNativeFunc("requestAnimationFrame", it.requestAnimationFrameFn), false)
	g.Define("cancelAnimationFrame", jsvalue.NewNativeFunc("cancelAnimationFrame", it.clearTimeoutFn), false)
	g.Define("queueMicrotask", jsvalue.NewNativeFunc("queueMicrotask", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		cb := arg0(args)
		it.Sched.QueueMicrotask(func() { it.Call(cb, jsvalue.UndefinedValue, nil) })
		return jsvalue.UndefinedValue, nil
	}), false)

	g.Define("structuredClone", jsvalue.NewNativeFunc("structuredClone", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return structuredClone(arg0(args), map[*jsvalue.Object]*jsvalue.Object{}), nil
	}), false)
	g.Define("matchMedia", jsvalue.NewNativeFunc("matchMedia", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		mq := jsvalue.NewObject()
		mq.Set("media", jsvalue.String(jsvalue.ToString(arg0(args))))
		mq.Set("matches", jsvalue.False)
		mq.Set("addEventListener", jsvalue.NewNativeFunc("addEventListener", func(_ jsvalue.Value, _ []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.UndefinedValue, nil
		}))
		mq.Set("addListener", mq.Get("addEventListener"))
		return mq, nil
	}), false)

	alertLike := func(name string) *jsvalue.Object {
		return jsvalue.NewNativeFunc(name, func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
			if name == "confirm" {
				return jsvalue.False, nil
			}
			if name == "prompt" {
				return jsvalue.NullValue, nil
			}
			return jsvalue.UndefinedValue, nil
		})
	}
	g.Define("alert", alertLike("alert"), false)
	g.Define("confirm", alertLike("confirm"), false)
	g.Define("prompt", alertLike("prompt"), false)

	g.Define("fetch", jsvalue.NewNativeFunc("fetch", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		p := jsvalue.NewPromise()
		it.rejectNow(p, jsvalue.NewErrorObject("TypeError", "fetch is not supported in this environment"))
		return p, nil
	}), false)

	g.Define("isNaN", jsvalue.NewNativeFunc("isNaN", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		n := jsvalue.ToNumber(arg0(args))
		return jsvalue.BoolValue(n != n), nil
	}), false)
	g.Define("isFinite", jsvalue.NewNativeFunc("isFinite", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		n := jsvalue.ToNumber(arg0(args))
		return jsvalue.BoolValue(!math.IsInf(n, 0) && n == n), nil
	}), false)
	g.Define("parseInt", jsvalue.NewNativeFunc("parseInt", parseIntFn), false)
	g.Define("parseFloat", jsvalue.NewNativeFunc("parseFloat", parseFloatFn), false)
	g.Define("encodeURIComponent", jsvalue.NewNativeFunc("encodeURIComponent", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.String(encodeURIComponent(jsvalue.ToString(arg0(args)))), nil
	}), false)
	g.Define("decodeURIComponent", jsvalue.NewNativeFunc("decodeURIComponent", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		s, err := decodeURIComponent(jsvalue.ToString(arg0(args)))
		if err != nil {
			return nil, jsError("URIError", "URI malformed")
		}
		return jsvalue.String(s), nil
	}), false)
}

// consoleObject builds the console namespace: every level writes a
// space-joined, ToString-coerced line to the interpreter's configured
// sink (io.Discard unless the harness wired a collector).
func (it *Interp) consoleObject() *jsvalue.Object {
	c := jsvalue.NewObject()
	logFn := func(level string) *jsvalue.Object {
		return jsvalue.NewNativeFunc(level, func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = jsvalue.ToString(a)
			}
			fmt.Fprintln(it.consoleOut, strings.Join(parts, " "))
			return jsvalue.UndefinedValue, nil
		})
	}
	for _, level := range []string{"log", "info", "warn", "error", "debug", "trace"} {
		c.Set(level, logFn(level))
	}
	return c
}

func (it *Interp) mathObject() *jsvalue.Object {
	m := jsvalue.NewObject()
	m.Set("PI", jsvalue.Number(math.Pi))
	m.Set("E", jsvalue.Number(math.E))
	m.Set("LN2", jsvalue.Number(math.Ln2))
	m.Set("LN10", jsvalue.Number(math.Log(10)))
	m.Set("SQRT2", jsvalue.Number(math.Sqrt2))
	unary := func(name string, fn func(float64) float64) {
		m.Set(name, jsvalue.NewNativeFunc(name, func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.Number(fn(jsvalue.ToNumber(arg0(args)))), nil
		}))
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("round", func(f float64) float64 { return math.Floor(f + 0.5) })
	m.Set("pow", jsvalue.NewNativeFunc("pow", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.Number(math.Pow(jsvalue.ToNumber(arg0(args)), jsvalue.ToNumber(arg1(args)))), nil
	}))
	m.Set("max", jsvalue.NewNativeFunc("max", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		r := math.Inf(-1)
		for _, a := range args {
			r = math.Max(r, jsvalue.ToNumber(a))
		}
		return jsvalue.Number(r), nil
	}))
	m.Set("min", jsvalue.NewNativeFunc("min", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		r := math.Inf(1)
		for _, a := range args {
			r = math.Min(r, jsvalue.ToNumber(a))
		}
		return jsvalue.Number(r), nil
	}))
	m.Set("random", jsvalue.NewNativeFunc("random", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.Number(it.rng.Float64()), nil
	}))
	m.Set("hypot", jsvalue.NewNativeFunc("hypot", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		sum := 0.0
		for _, a := range args {
			n := jsvalue.ToNumber(a)
			sum += n * n
		}
		return jsvalue.Number(math.Sqrt(sum)), nil
	}))
	return m
}

func (it *Interp) objectCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("Object", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if o, ok := arg0(args).(*jsvalue.Object); ok {
			return o, nil
		}
		return jsvalue.NewObject(), nil
	})
	ctor.Set("keys", jsvalue.NewNativeFunc("keys", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		o, ok := arg0(args).(*jsvalue.Object)
		if !ok {
			return jsvalue.NewArray(nil), nil
		}
		keys := o.OwnKeys()
		out := make([]jsvalue.Value, len(keys))
		for i, k := range keys {
			out[i] = jsvalue.String(k)
		}
		return jsvalue.NewArray(out), nil
	}))
	ctor.Set("values", jsvalue.NewNativeFunc("values", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		o, ok := arg0(args).(*jsvalue.Object)
		if !ok {
			return jsvalue.NewArray(nil), nil
		}
		keys := o.OwnKeys()
		out := make([]jsvalue.Value, len(keys))
		for i, k := range keys {
			out[i] = o.Get(k)
		}
		return jsvalue.NewArray(out), nil
	}))
	ctor.Set("entries", jsvalue.NewNativeFunc("entries", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		o, ok := arg0(args).(*jsvalue.Object)
		if !ok {
			return jsvalue.NewArray(nil), nil
		}
		keys := o.OwnKeys()
		out := make([]jsvalue.Value, len(keys))
		for i, k := range keys {
			out[i] = jsvalue.NewArray([]jsvalue.Value{jsvalue.String(k), o.Get(k)})
		}
		return jsvalue.NewArray(out), nil
	}))
	ctor.Set("assign", jsvalue.NewNativeFunc("assign", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if len(args) == 0 {
			return jsvalue.NewObject(), nil
		}
		target, ok := args[0].(*jsvalue.Object)
		if !ok {
			return args[0], nil
		}
		for _, src := range args[1:] {
			so, ok := src.(*jsvalue.Object)
			if !ok {
				continue
			}
			for _, k := range so.OwnKeys() {
				target.Set(k, so.Get(k))
			}
		}
		return target, nil
	}))
	ctor.Set("freeze", jsvalue.NewNativeFunc("freeze", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return arg0(args), nil
	}))
	ctor.Set("isFrozen", jsvalue.NewNativeFunc("isFrozen", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.False, nil
	}))
	ctor.Set("fromEntries", jsvalue.NewNativeFunc("fromEntries", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		items, err := it.iterate(arg0(args))
		if err != nil {
			return nil, err
		}
		out := jsvalue.NewObject()
		for _, item := range items {
			pair, ok := item.(*jsvalue.Object)
			if !ok || pair.Class != jsvalue.ClassArray || len(pair.Array) < 2 {
				continue
			}
			out.Set(jsvalue.ToString(pair.Array[0]), pair.Array[1])
		}
		return out, nil
	}))
	ctor.Set("getPrototypeOf", jsvalue.NewNativeFunc("getPrototypeOf", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if o, ok := arg0(args).(*jsvalue.Object); ok && o.Proto != nil {
			return o.Proto, nil
		}
		return jsvalue.NullValue, nil
	}))
	ctor.Set("setPrototypeOf", jsvalue.NewNativeFunc("setPrototypeOf", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		o, ok := arg0(args).(*jsvalue.Object)
		if !ok {
			return arg0(args), nil
		}
		if p, ok := arg1(args).(*jsvalue.Object); ok {
			o.Proto = p
		}
		return o, nil
	}))
	return ctor
}

func (it *Interp) arrayCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("Array", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if len(args) == 1 {
			if n, ok := args[0].(jsvalue.Number); ok {
				return jsvalue.NewArray(make([]jsvalue.Value, int(n))), nil
			}
		}
		return jsvalue.NewArray(append([]jsvalue.Value(nil), args...)), nil
	})
	ctor.Set("isArray", jsvalue.NewNativeFunc("isArray", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		o, ok := arg0(args).(*jsvalue.Object)
		return jsvalue.BoolValue(ok && o.Class == jsvalue.ClassArray), nil
	}))
	ctor.Set("from", jsvalue.NewNativeFunc("from", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		items, err := it.iterate(arg0(args))
		if err != nil {
			if o, ok := arg0(args).(*jsvalue.Object); ok {
				items = arrayLikeToSlice(o)
			} else {
				return nil, err
			}
		}
		if mapFn := arg1(args); jsvalue.IsCallable(mapFn) {
			out := make([]jsvalue.Value, len(items))
			for i, v := range items {
				r, err := it.Call(mapFn, jsvalue.UndefinedValue, []jsvalue.Value{v, jsvalue.Number(i)})
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return jsvalue.NewArray(out), nil
		}
		return jsvalue.NewArray(items), nil
	}))
	ctor.Set("of", jsvalue.NewNativeFunc("of", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.NewArray(append([]jsvalue.Value(nil), args...)), nil
	}))
	return ctor
}

func (it *Interp) stringCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("String", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if len(args) == 0 {
			return jsvalue.String(""), nil
		}
		return jsvalue.String(jsvalue.ToString(args[0])), nil
	})
	ctor.Set("fromCharCode", jsvalue.NewNativeFunc("fromCharCode", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteRune(rune(int(jsvalue.ToNumber(a))))
		}
		return jsvalue.String(b.String()), nil
	}))
	return ctor
}

func (it *Interp) numberCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("Number", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if len(args) == 0 {
			return jsvalue.Number(0), nil
		}
		return jsvalue.Number(jsvalue.ToNumber(args[0])), nil
	})
	ctor.Set("isInteger", jsvalue.NewNativeFunc("isInteger", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		n, ok := arg0(args).(jsvalue.Number)
		return jsvalue.BoolValue(ok && float64(n) == math.Trunc(float64(n)) && !math.IsInf(float64(n), 0)), nil
	}))
	ctor.Set("isFinite", jsvalue.NewNativeFunc("isFinite", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		n, ok := arg0(args).(jsvalue.Number)
		return jsvalue.BoolValue(ok && !math.IsInf(float64(n), 0) && float64(n) == float64(n)), nil
	}))
	ctor.Set("isNaN", jsvalue.NewNativeFunc("isNaN", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		n, ok := arg0(args).(jsvalue.Number)
		return jsvalue.BoolValue(ok && float64(n) != float64(n)), nil
	}))
	ctor.Set("parseFloat", jsvalue.NewNativeFunc("parseFloat", parseFloatFn))
	ctor.Set("parseInt", jsvalue.NewNativeFunc("parseInt", parseIntFn))
	ctor.Set("MAX_SAFE_INTEGER", jsvalue.Number(9007199254740991))
	ctor.Set("MIN_SAFE_INTEGER", jsvalue.Number(-9007199254740991))
	ctor.Set("EPSILON", jsvalue.Number(2.220446049250313e-16))
	ctor.Set("POSITIVE_INFINITY", jsvalue.Number(math.Inf(1)))
	ctor.Set("NEGATIVE_INFINITY", jsvalue.Number(math.Inf(-1)))
	ctor.Set("NaN", jsvalue.Number(math.NaN()))
	return ctor
}

func (it *Interp) booleanCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("Boolean", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.BoolValue(jsvalue.ToBoolean(arg0(args))), nil
	})
}

func (it *Interp) symbolCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("Symbol", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.NewSymbol(jsvalue.ToString(arg0(args))), nil
	})
	ctor.Set("iterator", jsvalue.SymbolIterator)
	ctor.Set("asyncIterator", jsvalue.SymbolAsyncIterator)
	registry := map[string]jsvalue.Symbol{}
	ctor.Set("for", jsvalue.NewNativeFunc("for", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		key := jsvalue.ToString(arg0(args))
		if s, ok := registry[key]; ok {
			return s, nil
		}
		s := jsvalue.NewSymbol(key)
		registry[key] = s
		return s, nil
	}))
	return ctor
}

// functionCtor implements the Function/GeneratorFunction dynamic
// constructors: the last argument is the body source, every earlier
// argument a parameter name, joined into a function literal and parsed
// the same way a <script> block is.
func (it *Interp) functionCtor(generator bool) *jsvalue.Object {
	name := "Function"
	if generator {
		name = "GeneratorFunction"
	}
	return jsvalue.NewNativeFunc(name, func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		var body string
		var params []string
		if len(args) > 0 {
			body = jsvalue.ToString(args[len(args)-1])
			for _, p := range args[:len(args)-1] {
				params = append(params, jsvalue.ToString(p))
			}
		}
		star := ""
		if generator {
			star = "*"
		}
		src := fmt.Sprintf("(function%s(%s){%s})", star, strings.Join(params, ","), body)
		prog, err := jsparse.Parse(src)
		if err != nil {
			return nil, jsError("SyntaxError", err.Error())
		}
		exprStmt, ok := prog.Body[0].(jsast.ExprStmt)
		if !ok {
			return nil, jsError("SyntaxError", "invalid function body")
		}
		fe, ok := exprStmt.Expr.(*jsast.FuncExpr)
		if !ok {
			return nil, jsError("SyntaxError", "invalid function body")
		}
		return it.makeClosure(fe, it.Global), nil
	})
}

func (it *Interp) dateCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("Date", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		switch len(args) {
		case 0:
			return jsvalue.NewDate(float64(it.Sched.NowMs())), nil
		case 1:
			if s, ok := args[0].(jsvalue.String); ok {
				ms, err := parseDate(string(s))
				if err != nil {
					return jsvalue.NewDate(math.NaN()), nil
				}
				return jsvalue.NewDate(ms), nil
			}
			return jsvalue.NewDate(jsvalue.ToNumber(args[0])), nil
		default:
			return jsvalue.NewDate(dateFromParts(args)), nil
		}
	})
	ctor.Set("now", jsvalue.NewNativeFunc("now", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.Number(float64(it.Sched.NowMs())), nil
	}))
	ctor.Set("parse", jsvalue.NewNativeFunc("parse", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		ms, err := parseDate(jsvalue.ToString(arg0(args)))
		if err != nil {
			return jsvalue.Number(math.NaN()), nil
		}
		return jsvalue.Number(ms), nil
	}))
	ctor.Set("UTC", jsvalue.NewNativeFunc("UTC", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if len(args) == 0 {
			return jsvalue.Number(math.NaN()), nil
		}
		return jsvalue.Number(dateFromParts(args)), nil
	}))
	return ctor
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// dateFromParts builds a millisecond timestamp from the (year, month,
// day, hours, minutes, seconds, ms) argument list the Date constructor
// and Date.UTC share; missing trailing fields default the way the real
// constructor does (day=1, the rest 0).
func dateFromParts(args []jsvalue.Value) float64 {
	parts := []int{0, 0, 1, 0, 0, 0, 0}
	for i := 0; i < len(parts) && i < len(args); i++ {
		parts[i] = int(jsvalue.ToNumber(args[i]))
	}
	t := time.Date(parts[0], time.Month(parts[1]+1), parts[2], parts[3], parts[4], parts[5], parts[6]*1e6, time.UTC)
	return float64(t.UnixMilli())
}

func (it *Interp) regexCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("RegExp", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		if o, ok := arg0(args).(*jsvalue.Object); ok && o.Class == jsvalue.ClassRegExp && len(args) < 2 {
			return jsvalue.CompileRegex(o.Regex.Source, o.Regex.Flags)
		}
		pattern := jsvalue.ToString(arg0(args))
		flags := ""
		if len(args) > 1 {
			flags = jsvalue.ToString(args[1])
		}
		re, err := jsvalue.CompileRegex(pattern, flags)
		if err != nil {
			return nil, jsError("SyntaxError", err.Error())
		}
		return re, nil
	})
}

func (it *Interp) mapCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("Map", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		m := jsvalue.NewMap()
		if len(args) > 0 && !jsvalue.IsNullish(args[0]) {
			items, err := it.iterate(args[0])
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				pair, ok := item.(*jsvalue.Object)
				if !ok || pair.Class != jsvalue.ClassArray || len(pair.Array) < 2 {
					continue
				}
				m.MapData.Set(pair.Array[0], pair.Array[1])
			}
		}
		return m, nil
	})
}

func (it *Interp) setCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("Set", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		s := jsvalue.NewSet()
		if len(args) > 0 && !jsvalue.IsNullish(args[0]) {
			items, err := it.iterate(args[0])
			if err != nil {
				return nil, err
			}
			for _, v := range items {
				s.SetData.Set(v, jsvalue.UndefinedValue)
			}
		}
		return s, nil
	})
}

func (it *Interp) urlCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("URL", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		raw := jsvalue.ToString(arg0(args))
		base := ""
		if len(args) > 1 {
			base = jsvalue.ToString(args[1])
		}
		resolved := raw
		if base != "" && !strings.Contains(raw, "://") {
			resolved = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(raw, "/")
		}
		d, err := jsvalue.ParseURL(resolved)
		if err != nil {
			return nil, jsError("TypeError", "Invalid URL: "+raw)
		}
		return jsvalue.NewURLObject(d), nil
	})
}

func (it *Interp) urlParamsCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("URLSearchParams", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		init := "?"
		switch v := arg0(args).(type) {
		case jsvalue.String:
			init = "?" + strings.TrimPrefix(string(v), "?")
		}
		d, _ := jsvalue.ParseURL("about:blank" + init)
		return jsvalue.NewURLParamsObject(d, nil), nil
	})
}

func (it *Interp) errorCtor(name string) *jsvalue.Object {
	return jsvalue.NewNativeFunc(name, func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		msg := ""
		if len(args) > 0 {
			msg = jsvalue.ToString(args[0])
		}
		e := jsvalue.NewErrorObject(name, msg)
		if len(args) > 1 {
			if opts, ok := args[1].(*jsvalue.Object); ok && opts.Has("cause") {
				e.Set("cause", opts.Get("cause"))
			}
		}
		return e, nil
	})
}

func (it *Interp) arrayBufferCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("ArrayBuffer", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.NewArrayBuffer(int(jsvalue.ToNumber(arg0(args)))), nil
	})
}

func (it *Interp) dataViewCtor() *jsvalue.Object {
	return jsvalue.NewNativeFunc("DataView", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		buf, ok := arg0(args).(*jsvalue.Object)
		if !ok || buf.Class != jsvalue.ClassArrayBuf {
			return nil, jsError("TypeError", "First argument to DataView constructor must be an ArrayBuffer")
		}
		offset := 0
		if len(args) > 1 {
			offset = int(jsvalue.ToNumber(args[1]))
		}
		length := len(buf.Buffer) - offset
		if len(args) > 2 {
			length = int(jsvalue.ToNumber(args[2]))
		}
		return &jsvalue.Object{Class: jsvalue.ClassDataView, View: &jsvalue.DataViewData{Buffer: buf, Offset: offset, Length: length}}, nil
	})
}

func (it *Interp) typedArrayCtor(kind jsvalue.TypedArrayKind) *jsvalue.Object {
	return jsvalue.NewNativeFunc(string(kind), func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		size := jsvalue.ElementSize(kind)
		switch a := arg0(args).(type) {
		case nil, jsvalue.Undefined:
			return jsvalue.NewTypedArray(kind, jsvalue.NewArrayBuffer(0), 0, 0), nil
		case jsvalue.Number:
			n := int(a)
			return jsvalue.NewTypedArray(kind, jsvalue.NewArrayBuffer(n*size), 0, n), nil
		case *jsvalue.Object:
			if a.Class == jsvalue.ClassArrayBuf {
				offset := 0
				if len(args) > 1 {
					offset = int(jsvalue.ToNumber(args[1]))
				}
				length := (len(a.Buffer) - offset) / size
				if len(args) > 2 {
					length = int(jsvalue.ToNumber(args[2]))
				}
				return jsvalue.NewTypedArray(kind, a, offset, length), nil
			}
			values := typedArraySource(a)
			if values == nil && a.Has("length") {
				values = arrayLikeToSlice(a)
			}
			out := jsvalue.NewTypedArray(kind, jsvalue.NewArrayBuffer(len(values)*size), 0, len(values))
			for i, v := range values {
				out.Typed.SetAt(i, jsvalue.Number(jsvalue.ToNumber(v)))
			}
			return out, nil
		}
		return jsvalue.NewTypedArray(kind, jsvalue.NewArrayBuffer(0), 0, 0), nil
	})
}

func (it *Interp) setTimeoutFn(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	cb := arg0(args)
	delay := int64(0)
	if len(args) > 1 {
		delay = int64(jsvalue.ToNumber(args[1]))
	}
	extra := append([]jsvalue.Value(nil), args[minInt(2, len(args)):]...)
	id := it.Sched.SetTimeout(func() { it.Call(cb, jsvalue.UndefinedValue, extra) }, delay)
	return jsvalue.Number(id), nil
}

func (it *Interp) setIntervalFn(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	cb := arg0(args)
	delay := int64(0)
	if len(args) > 1 {
		delay = int64(jsvalue.ToNumber(args[1]))
	}
	extra := append([]jsvalue.Value(nil), args[minInt(2, len(args)):]...)
	id := it.Sched.SetInterval(func() { it.Call(cb, jsvalue.UndefinedValue, extra) }, delay)
	return jsvalue.Number(id), nil
}

func (it *Interp) requestAnimationFrameFn(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	cb := arg0(args)
	id := it.Sched.RequestAnimationFrame(func() { it.Call(cb, jsvalue.UndefinedValue, []jsvalue.Value{jsvalue.Number(it.Sched.NowMs())}) })
	return jsvalue.Number(id), nil
}

func (it *Interp) clearTimeoutFn(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	id := int64(jsvalue.ToNumber(arg0(args)))
	it.Sched.ClearTimeout(id)
	return jsvalue.UndefinedValue, nil
}

// structuredClone deep-copies v, preserving reference identity for any
// object reachable more than once (the seen map), and dropping functions
// the way the real structured clone algorithm refuses to clone them.
func structuredClone(v jsvalue.Value, seen map[*jsvalue.Object]*jsvalue.Object) jsvalue.Value {
	o, ok := v.(*jsvalue.Object)
	if !ok {
		return v
	}
	if clone, ok := seen[o]; ok {
		return clone
	}
	switch o.Class {
	case jsvalue.ClassArray:
		clone := jsvalue.NewArray(make([]jsvalue.Value, len(o.Array)))
		seen[o] = clone
		for i, el := range o.Array {
			clone.Array[i] = structuredClone(el, seen)
		}
		return clone
	case jsvalue.ClassDate:
		return jsvalue.NewDate(o.DateMs)
	case jsvalue.ClassMap:
		clone := jsvalue.NewMap()
		seen[o] = clone
		for _, kv := range o.MapData.Entries() {
			clone.MapData.Set(structuredClone(kv[0], seen), structuredClone(kv[1], seen))
		}
		return clone
	case jsvalue.ClassSet:
		clone := jsvalue.NewSet()
		seen[o] = clone
		for _, k := range o.SetData.Keys() {
			clone.SetData.Set(structuredClone(k, seen), jsvalue.UndefinedValue)
		}
		return clone
	case jsvalue.ClassFunction:
		return jsvalue.UndefinedValue
	default:
		clone := jsvalue.NewObject()
		seen[o] = clone
		for _, k := range o.OwnKeys() {
			clone.Set(k, structuredClone(o.Get(k), seen))
		}
		return clone
	}
}

func parseIntFn(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	s := strings.TrimSpace(jsvalue.ToString(arg0(args)))
	radix := 10
	if len(args) > 1 {
		if r := int(jsvalue.ToNumber(args[1])); r != 0 {
			radix = r
		}
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if radix == 16 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	} else if radix == 10 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		radix = 16
		s = s[2:]
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return jsvalue.Number(math.NaN()), nil
	}
	n := 0.0
	for i := 0; i < end; i++ {
		n = n*float64(radix) + float64(digitValue(s[i]))
	}
	if neg {
		n = -n
	}
	return jsvalue.Number(n), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 99
	}
}

func parseFloatFn(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	s := strings.TrimSpace(jsvalue.ToString(arg0(args)))
	end := len(s)
	seenDot, seenDigit, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == '+' || c == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			end = i
			i = len(s)
		}
	}
	s = s[:end]
	if !seenDigit {
		return jsvalue.Number(math.NaN()), nil
	}
	return jsvalue.Number(jsvalue.ToNumber(jsvalue.String(s))), nil
}

func (it *Interp) intlObject() *jsvalue.Object {
	in := jsvalue.NewObject()
	in.Set("DateTimeFormat", jsvalue.NewNativeFunc("DateTimeFormat", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		f := jsintl.NewDateTimeFormat(localeArg(args))
		o := jsvalue.NewObject()
		o.Set("format", jsvalue.NewNativeFunc("format", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			t := dateArgToTime(fargs, it)
			return jsvalue.String(f.Format(t)), nil
		}))
		return o, nil
	}))
	in.Set("NumberFormat", jsvalue.NewNativeFunc("NumberFormat", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		style, currencyCode := "decimal", ""
		if opts, ok := arg1(args).(*jsvalue.Object); ok {
			if opts.Has("style") {
				style = jsvalue.ToString(opts.Get("style"))
			}
			if opts.Has("currency") {
				currencyCode = jsvalue.ToString(opts.Get("currency"))
			}
		}
		f := jsintl.NewNumberFormat(localeArg(args), style, currencyCode)
		o := jsvalue.NewObject()
		o.Set("format", jsvalue.NewNativeFunc("format", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.String(f.Format(jsvalue.ToNumber(arg0(fargs)))), nil
		}))
		return o, nil
	}))
	in.Set("Collator", jsvalue.NewNativeFunc("Collator", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		c := jsintl.NewCollator(localeArg(args))
		o := jsvalue.NewObject()
		o.Set("compare", jsvalue.NewNativeFunc("compare", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.Number(c.Compare(jsvalue.ToString(arg0(fargs)), jsvalue.ToString(arg1(fargs)))), nil
		}))
		return o, nil
	}))
	in.Set("ListFormat", jsvalue.NewNativeFunc("ListFormat", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		typ := "conjunction"
		if opts, ok := arg1(args).(*jsvalue.Object); ok && opts.Has("type") {
			typ = jsvalue.ToString(opts.Get("type"))
		}
		f := jsintl.NewListFormat(localeArg(args), typ)
		o := jsvalue.NewObject()
		o.Set("format", jsvalue.NewNativeFunc("format", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			items, err := it.iterate(arg0(fargs))
			if err != nil {
				return jsvalue.String(""), nil
			}
			strs := make([]string, len(items))
			for i, v := range items {
				strs[i] = jsvalue.ToString(v)
			}
			return jsvalue.String(f.Format(strs)), nil
		}))
		return o, nil
	}))
	in.Set("PluralRules", jsvalue.NewNativeFunc("PluralRules", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		p := jsintl.NewPluralRules(localeArg(args))
		o := jsvalue.NewObject()
		o.Set("select", jsvalue.NewNativeFunc("select", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.String(p.Select(jsvalue.ToNumber(arg0(fargs)))), nil
		}))
		return o, nil
	}))
	in.Set("RelativeTimeFormat", jsvalue.NewNativeFunc("RelativeTimeFormat", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		f := jsintl.NewRelativeTimeFormat(localeArg(args))
		o := jsvalue.NewObject()
		o.Set("format", jsvalue.NewNativeFunc("format", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.String(f.Format(jsvalue.ToNumber(arg0(fargs)), jsvalue.ToString(arg1(fargs)))), nil
		}))
		return o, nil
	}))
	in.Set("Segmenter", jsvalue.NewNativeFunc("Segmenter", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		granularity := "grapheme"
		if opts, ok := arg1(args).(*jsvalue.Object); ok && opts.Has("granularity") {
			granularity = jsvalue.ToString(opts.Get("granularity"))
		}
		s := jsintl.NewSegmenter(granularity)
		o := jsvalue.NewObject()
		o.Set("segment", jsvalue.NewNativeFunc("segment", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			segs := s.Segment(jsvalue.ToString(arg0(fargs)))
			out := make([]jsvalue.Value, len(segs))
			for i, seg := range segs {
				rec := jsvalue.NewObject()
				rec.Set("segment", jsvalue.String(seg))
				out[i] = rec
			}
			return jsvalue.NewArray(out), nil
		}))
		return o, nil
	}))
	in.Set("DisplayNames", jsvalue.NewNativeFunc("DisplayNames", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		typ := "language"
		if opts, ok := arg1(args).(*jsvalue.Object); ok && opts.Has("type") {
			typ = jsvalue.ToString(opts.Get("type"))
		}
		d := jsintl.NewDisplayNames(localeArg(args), typ)
		o := jsvalue.NewObject()
		o.Set("of", jsvalue.NewNativeFunc("of", func(_ jsvalue.Value, fargs []jsvalue.Value) (jsvalue.Value, error) {
			return jsvalue.String(d.Of(jsvalue.ToString(arg0(fargs)))), nil
		}))
		return o, nil
	}))
	return in
}

func localeArg(args []jsvalue.Value) string {
	if len(args) == 0 {
		return ""
	}
	if o, ok := args[0].(*jsvalue.Object); ok && o.Class == jsvalue.ClassArray && len(o.Array) > 0 {
		return jsvalue.ToString(o.Array[0])
	}
	return jsvalue.ToString(args[0])
}

// dateArgToTime resolves the value Intl formatters are called with: a
// Date instance, a raw millisecond timestamp, or (absent) the current
// virtual time.
func dateArgToTime(args []jsvalue.Value, it *Interp) time.Time {
	if len(args) == 0 {
		return time.UnixMilli(it.Sched.NowMs()).UTC()
	}
	switch v := args[0].(type) {
	case *jsvalue.Object:
		if v.Class == jsvalue.ClassDate {
			return time.UnixMilli(int64(v.DateMs)).UTC()
		}
	}
	return time.UnixMilli(int64(jsvalue.ToNumber(args[0]))).UTC()
}

// encodeURIComponent percent-encodes every character outside the
// unreserved set URI components keep literal, matching the built-in's
// wider escaping than net/url's query escaping.
func encodeURIComponent(s string) string {
	const safe = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(safe, c) >= 0 {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func decodeURIComponent(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return "", fmt.Errorf("URI malformed")
			}
			var x int
			if _, err := fmt.Sscanf(s[i+1:i+3], "%02X", &x); err != nil {
				return "", fmt.Errorf("URI malformed")
			}
			b.WriteByte(byte(x))
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
