package jsvalue

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ToBoolean implements JS truthiness.
func ToBoolean(v Value) bool {
	switch t := v.(type) {
	case Undefined, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		return float64(t) != 0 && !isNaN(float64(t))
	case String:
		return t != ""
	case BigInt:
		return t.V.Sign() != 0
	default:
		return true // objects, functions, symbols are always truthy
	}
}

// ToNumber implements JS numeric coercion for the primitive types the
// evaluator actually produces; objects fall back to NaN (no valueOf/
// toString protocol beyond what's special-cased, matching the scope of
// the operators the evaluator implements).
func ToNumber(v Value) float64 {
	switch t := v.(type) {
	case Undefined:
		return math.NaN()
	case Null:
		return 0
	case Bool:
		if t {
			return 1
		}
		return 0
	case Number:
		return float64(t)
	case String:
		return stringToNumber(string(t))
	case BigInt:
		f, _ := new(big.Float).SetInt(t.V).Float64()
		return f
	default:
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		n, err := strconv.ParseInt(trimmed[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString implements JS string coercion for display and concatenation.
func ToString(v Value) string {
	switch t := v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		if t {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(float64(t))
	case String:
		return string(t)
	case BigInt:
		return t.V.String()
	case Symbol:
		return fmt.Sprintf("Symbol(%s)", t.Desc)
	case *Object:
		return objectToString(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func objectToString(o *Object) string {
	switch o.Class {
	case ClassArray:
		parts := make([]string, len(o.Array))
		for i, el := range o.Array {
			if IsNullish(el) {
				parts[i] = ""
			} else {
				parts[i] = ToString(el)
			}
		}
		return strings.Join(parts, ",")
	case ClassFunction:
		name := ""
		if o.Fn != nil {
			name = o.Fn.Name
		}
		return "function " + name + "() { [native code] }"
	case ClassError:
		name := ToString(o.Get("name"))
		msg := ToString(o.Get("message"))
		if msg == "" {
			return name
		}
		return name + ": " + msg
	case ClassDate:
		return formatDateISO(o.DateMs)
	case ClassURL:
		return o.URL.String()
	case ClassURLParams:
		return o.URL.SearchString()
	case ClassRegExp:
		return "/" + o.Regex.Source + "/" + o.Regex.Flags
	default:
		return "[object " + string(o.Class) + "]"
	}
}

func formatNumber(f float64) string {
	if isNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "0"
		}
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	switch at := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bt, ok := b.(Bool)
		return ok && at == bt
	case Number:
		bt, ok := b.(Number)
		return ok && at == bt
	case String:
		bt, ok := b.(String)
		return ok && at == bt
	case BigInt:
		bt, ok := b.(BigInt)
		return ok && at.V.Cmp(bt.V) == 0
	case Symbol:
		bt, ok := b.(Symbol)
		return ok && at.ID == bt.ID
	case *Object:
		bt, ok := b.(*Object)
		return ok && at == bt
	}
	return false
}

// LooseEquals implements ==, following the coercion table for the
// operand kinds actually reachable from the grammar (no document.all
// exotic-object edge case, etc.).
func LooseEquals(a, b Value) bool {
	if sameType(a, b) {
		return StrictEquals(a, b)
	}
	if IsNullish(a) && IsNullish(b) {
		return true
	}
	if IsNullish(a) || IsNullish(b) {
		return false
	}
	_, aNum := a.(Number)
	_, bNum := b.(Number)
	_, aStr := a.(String)
	_, bStr := b.(String)
	_, aBool := a.(Bool)
	_, bBool := b.(Bool)
	_, aObj := a.(*Object)
	_, bObj := b.(*Object)

	if aBool {
		return LooseEquals(Number(ToNumber(a)), b)
	}
	if bBool {
		return LooseEquals(a, Number(ToNumber(b)))
	}
	if (aNum && bStr) || (aStr && bNum) {
		return ToNumber(a) == ToNumber(b)
	}
	if aObj && (bNum || bStr) {
		return LooseEquals(String(ToString(a)), b)
	}
	if bObj && (aNum || aStr) {
		return LooseEquals(a, String(ToString(b)))
	}
	return false
}

func sameType(a, b Value) bool {
	switch a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Number:
		_, ok := b.(Number)
		return ok
	case String:
		_, ok := b.(String)
		return ok
	case BigInt:
		_, ok := b.(BigInt)
		return ok
	case Symbol:
		_, ok := b.(Symbol)
		return ok
	case *Object:
		_, ok := b.(*Object)
		return ok
	}
	return false
}

// TypeOf implements the `typeof` operator.
func TypeOf(v Value) string {
	switch t := v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "object"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case BigInt:
		return "bigint"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case *Object:
		if t.Class == ClassFunction {
			return "function"
		}
		return "object"
	}
	return "undefined"
}
