package jseval

import (
	"fmt"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsvalue"
)

// getProp reads obj[key] across every value shape the grammar can
// produce: primitives expose only the handful of properties a literal
// can observe (string indexing/length), DOM host objects resolve through
// the accessor tables in dom.go, and everything else falls back to the
// object's own property bag. Built-in instance methods (array.push,
// string.slice, …) are deliberately not materialized here — they're
// resolved directly at the call site (call_expr.go) since this subset's
// grammar never detaches a built-in method from its receiver.
func (it *Interp) getProp(obj jsvalue.Value, key string) (jsvalue.Value, error) {
	switch t := obj.(type) {
	case jsvalue.Undefined, nil:
		return nil, fmt.Errorf("Cannot read properties of undefined (reading '%s')", key)
	case jsvalue.Null:
		return nil, fmt.Errorf("Cannot read properties of null (reading '%s')", key)
	case jsvalue.String:
		return stringGet(string(t), key), nil
	case jsvalue.Number, jsvalue.Bool, jsvalue.BigInt, jsvalue.Symbol:
		return jsvalue.UndefinedValue, nil
	case *jsvalue.Object:
		return it.objectGet(t, key)
	}
	return jsvalue.UndefinedValue, nil
}

func stringGet(s string, key string) jsvalue.Value {
	runes := []rune(s)
	if key == "length" {
		return jsvalue.Number(len(runes))
	}
	if idx, ok := arrayIndexKey(key); ok {
		if idx >= 0 && idx < len(runes) {
			return jsvalue.String(string(runes[idx]))
		}
		return jsvalue.UndefinedValue
	}
	return jsvalue.UndefinedValue
}

func arrayIndexKey(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (it *Interp) objectGet(o *jsvalue.Object, key string) (jsvalue.Value, error) {
	switch o.Class {
	case ClassDocument:
		if v, ok := it.documentGet(key); ok {
			return v, nil
		}
	case ClassWindow:
		if v, ok := it.windowGet(key); ok {
			return v, nil
		}
	case ClassElement, ClassTextNode:
		if id, ok := it.nodeID(o); ok {
			if v, ok := it.elementGet(id, key); ok {
				return v, nil
			}
		}
	case jsvalue.ClassFunction:
		switch key {
		case "name":
			if o.Fn != nil {
				return jsvalue.String(o.Fn.Name), nil
			}
		case "length":
			return jsvalue.Number(funcArity(o)), nil
		}
	case jsvalue.ClassMap:
		if key == "size" {
			return jsvalue.Number(o.MapData.Size()), nil
		}
	case jsvalue.ClassSet:
		if key == "size" {
			return jsvalue.Number(o.SetData.Size()), nil
		}
	case jsvalue.ClassRegExp:
		switch key {
		case "source":
			return jsvalue.String(o.Regex.Source), nil
		case "flags":
			return jsvalue.String(o.Regex.Flags), nil
		case "global":
			return jsvalue.BoolValue(o.Regex.Global), nil
		case "sticky":
			return jsvalue.BoolValue(o.Regex.Sticky), nil
		case "lastIndex":
			return jsvalue.Number(o.Regex.LastIndex), nil
		}
	case jsvalue.ClassURL:
		if v, ok := urlGet(o, key); ok {
			return v, nil
		}
	case jsvalue.ClassURLParams:
		if key == "size" {
			return jsvalue.Number(len(o.URL.Entries())), nil
		}
	case jsvalue.ClassError:
		// message/name/stack are plain own properties set at construction.
	case jsvalue.ClassTypedArr:
		if v, ok := typedArrayGet(o, key); ok {
			return v, nil
		}
	case jsvalue.ClassArrayBuf:
		if key == "byteLength" {
			return jsvalue.Number(len(o.Buffer)), nil
		}
	case jsvalue.ClassDataView:
		if key == "byteLength" {
			return jsvalue.Number(o.View.Length), nil
		}
		if key == "buffer" {
			return o.View.Buffer, nil
		}
	case jsvalue.ClassGenerator:
		// next/return/throw are resolved at the call site, like other
		// built-in instance methods.
	}
	return o.Get(key), nil
}

// typedArrayGet resolves length/byteLength/byteOffset and numeric-index
// reads against a typed array's backing buffer.
func typedArrayGet(o *jsvalue.Object, key string) (jsvalue.Value, bool) {
	t := o.Typed
	switch key {
	case "length":
		return jsvalue.Number(t.Length), true
	case "byteLength":
		return jsvalue.Number(t.Length * jsvalue.ElementSize(t.Kind)), true
	case "byteOffset":
		return jsvalue.Number(t.Offset), true
	case "buffer":
		return t.Buffer, true
	}
	if idx, ok := arrayIndexKey(key); ok {
		if idx < 0 || idx >= t.Length {
			return jsvalue.UndefinedValue, true
		}
		return t.At(idx), true
	}
	return nil, false
}

func funcArity(o *jsvalue.Object) float64 {
	if o.Fn == nil || o.Fn.Closure == nil {
		return 0
	}
	n := 0
	for _, p := range o.Fn.Closure.Params {
		switch p.(type) {
		case jsast.AssignExpr, jsast.SpreadElement:
			return float64(n)
		}
		n++
	}
	return float64(n)
}

// setProp writes obj[key] = v, routing through the same DOM accessor
// tables getProp uses before falling back to a plain property write.
func (it *Interp) setProp(obj jsvalue.Value, key string, v jsvalue.Value) error {
	o, ok := obj.(*jsvalue.Object)
	if !ok {
		return nil // assigning to a primitive's property is a silent no-op in sloppy mode
	}
	switch o.Class {
	case ClassElement, ClassTextNode:
		if id, ok := it.nodeID(o); ok {
			if handled, err := it.elementSet(id, key, v); handled {
				return err
			}
		}
	case jsvalue.ClassRegExp:
		if key == "lastIndex" {
			o.Regex.LastIndex = int(jsvalue.ToNumber(v))
			return nil
		}
	case jsvalue.ClassURL:
		if urlSet(o, key, v) {
			return nil
		}
	case jsvalue.ClassTypedArr:
		if idx, ok := arrayIndexKey(key); ok {
			t := o.Typed
			if idx >= 0 && idx < t.Length {
				t.SetAt(idx, jsvalue.Number(jsvalue.ToNumber(v)))
			}
			return nil
		}
	}
	o.Set(key, v)
	return nil
}
