package jseval

import (
	"fmt"
	"math"
	"math/big"

	"github.com/domharness/domharness/internal/jsvalue"
)

// applyBinaryOp implements every binary operator reachable from the
// grammar: arithmetic follows double semantics except
// BigInt operands, which stay arbitrary precision; `+` concatenates when
// either side is a string, matching JS's famously asymmetric addition.
func applyBinaryOp(op string, l, r jsvalue.Value) (jsvalue.Value, error) {
	switch op {
	case "+":
		return addValues(l, r), nil
	case "-", "*", "/", "%", "**":
		if lb, ok := l.(jsvalue.BigInt); ok {
			if rb, ok := r.(jsvalue.BigInt); ok {
				return bigIntArith(op, lb, rb)
			}
		}
		ln, rn := jsvalue.ToNumber(l), jsvalue.ToNumber(r)
		return jsvalue.Number(numericArith(op, ln, rn)), nil
	case "&", "|", "^", "<<", ">>":
		return jsvalue.Number(float64(bitwise(op, jsvalue.ToNumber(l), jsvalue.ToNumber(r)))), nil
	case ">>>":
		li := uint32(toInt32(jsvalue.ToNumber(l)))
		ri := uint32(toInt32(jsvalue.ToNumber(r))) & 31
		return jsvalue.Number(float64(li >> ri)), nil
	case "==":
		return jsvalue.BoolValue(jsvalue.LooseEquals(l, r)), nil
	case "!=":
		return jsvalue.BoolValue(!jsvalue.LooseEquals(l, r)), nil
	case "===":
		return jsvalue.BoolValue(jsvalue.StrictEquals(l, r)), nil
	case "!==":
		return jsvalue.BoolValue(!jsvalue.StrictEquals(l, r)), nil
	case "<", "<=", ">", ">=":
		return compareValues(op, l, r), nil
	}
	return nil, fmt.Errorf("unsupported operator %q", op)
}

func addValues(l, r jsvalue.Value) jsvalue.Value {
	_, lStr := l.(jsvalue.String)
	_, rStr := r.(jsvalue.String)
	if lb, ok := l.(jsvalue.BigInt); ok {
		if rb, ok := r.(jsvalue.BigInt); ok {
			return jsvalue.BigInt{V: new(big.Int).Add(lb.V, rb.V)}
		}
	}
	if lStr || rStr {
		return jsvalue.String(jsvalue.ToString(l) + jsvalue.ToString(r))
	}
	lo, lIsObj := l.(*jsvalue.Object)
	ro, rIsObj := r.(*jsvalue.Object)
	if lIsObj || rIsObj {
		_ = lo
		_ = ro
		return jsvalue.String(jsvalue.ToString(l) + jsvalue.ToString(r))
	}
	return jsvalue.Number(jsvalue.ToNumber(l) + jsvalue.ToNumber(r))
}

func numericArith(op string, l, r float64) float64 {
	switch op {
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "%":
		return math.Mod(l, r)
	case "**":
		return math.Pow(l, r)
	}
	return math.NaN()
}

func bigIntArith(op string, l, r jsvalue.BigInt) (jsvalue.Value, error) {
	out := new(big.Int)
	switch op {
	case "-":
		out.Sub(l.V, r.V)
	case "*":
		out.Mul(l.V, r.V)
	case "/":
		if r.V.Sign() == 0 {
			return nil, fmt.Errorf("Division by zero")
		}
		out.Quo(l.V, r.V)
	case "%":
		if r.V.Sign() == 0 {
			return nil, fmt.Errorf("Division by zero")
		}
		out.Rem(l.V, r.V)
	case "**":
		out.Exp(l.V, r.V, nil)
	}
	return jsvalue.BigInt{V: out}, nil
}

func bitwise(op string, l, r float64) int32 {
	li, ri := toInt32(l), toInt32(r)
	switch op {
	case "&":
		return li & ri
	case "|":
		return li | ri
	case "^":
		return li ^ ri
	case "<<":
		return li << (uint32(ri) & 31)
	case ">>":
		return li >> (uint32(ri) & 31)
	}
	return 0
}

func compareValues(op string, l, r jsvalue.Value) jsvalue.Value {
	ls, lIsStr := l.(jsvalue.String)
	rs, rIsStr := r.(jsvalue.String)
	var less, greater bool
	if lIsStr && rIsStr {
		less = ls < rs
		greater = ls > rs
	} else {
		ln, rn := jsvalue.ToNumber(l), jsvalue.ToNumber(r)
		if math.IsNaN(ln) || math.IsNaN(rn) {
			return jsvalue.False
		}
		less = ln < rn
		greater = ln > rn
	}
	switch op {
	case "<":
		return jsvalue.BoolValue(less)
	case "<=":
		return jsvalue.BoolValue(!greater)
	case ">":
		return jsvalue.BoolValue(greater)
	case ">=":
		return jsvalue.BoolValue(!less)
	}
	return jsvalue.False
}

// instanceOfName/ctorName give `instanceof` something to compare for the
// built-in classes; user-defined `class` syntax isn't in this grammar
// subset has no `class` production, so this only needs
// to resolve the built-in constructor names scripts actually test against
// (Array, Error, Promise, Map, Set, RegExp, Date, …).
func instanceOfName(o *jsvalue.Object) string {
	switch o.Class {
	case jsvalue.ClassArray:
		return "Array"
	case jsvalue.ClassFunction:
		return "Function"
	case jsvalue.ClassPromise:
		return "Promise"
	case jsvalue.ClassMap:
		return "Map"
	case jsvalue.ClassSet:
		return "Set"
	case jsvalue.ClassDate:
		return "Date"
	case jsvalue.ClassRegExp:
		return "RegExp"
	case jsvalue.ClassURL:
		return "URL"
	case jsvalue.ClassURLParams:
		return "URLSearchParams"
	case jsvalue.ClassError:
		name := jsvalue.ToString(o.Get("name"))
		if name == "" {
			return "Error"
		}
		return name
	case jsvalue.ClassGenerator:
		return "Generator"
	case jsvalue.ClassArrayBuf:
		return "ArrayBuffer"
	case jsvalue.ClassDataView:
		return "DataView"
	case jsvalue.ClassTypedArr:
		return string(o.Typed.Kind)
	default:
		return "Object"
	}
}

func ctorName(ctor *jsvalue.Object) string {
	if ctor.Fn != nil && ctor.Fn.Name != "" {
		return ctor.Fn.Name
	}
	return jsvalue.ToString(ctor.Get("name"))
}
