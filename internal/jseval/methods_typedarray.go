package jseval

import (
	"sort"
	"strings"

	"github.com/domharness/domharness/internal/jsvalue"
)

// typedArrayMethod covers the subset of TypedArray.prototype methods this
// evaluator supports; it mirrors arrayMethod's shape but reads/writes
// through At/SetAt against the shared backing buffer instead of a Go
// slice.
func (it *Interp) typedArrayMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	t := o.Typed
	switch method {
	case "set":
		src, ok := arg0(args).(*jsvalue.Object)
		if !ok {
			return nil, true, jsError("TypeError", "source is not an array-like object")
		}
		offset := 0
		if len(args) > 1 {
			offset = int(jsvalue.ToNumber(args[1]))
		}
		values := typedArraySource(src)
		for i, v := range values {
			if offset+i >= t.Length {
				break
			}
			t.SetAt(offset+i, jsvalue.Number(jsvalue.ToNumber(v)))
		}
		return jsvalue.UndefinedValue, true, nil
	case "subarray", "slice":
		start, end := sliceRange(args, t.Length)
		size := jsvalue.ElementSize(t.Kind)
		return jsvalue.NewTypedArray(t.Kind, t.Buffer, t.Offset+start*size, end-start), true, nil
	case "fill":
		v := jsvalue.Number(jsvalue.ToNumber(arg0(args)))
		start, end := 0, t.Length
		if len(args) > 1 {
			start = clampIndex(int(jsvalue.ToNumber(args[1])), t.Length)
		}
		if len(args) > 2 {
			end = clampIndex(int(jsvalue.ToNumber(args[2])), t.Length)
		}
		for i := start; i < end; i++ {
			t.SetAt(i, v)
		}
		return o, true, nil
	case "join":
		sep := ","
		if len(args) > 0 {
			sep = jsvalue.ToString(args[0])
		}
		parts := make([]string, t.Length)
		for i := 0; i < t.Length; i++ {
			parts[i] = jsvalue.ToString(t.At(i))
		}
		return jsvalue.String(strings.Join(parts, sep)), true, nil
	case "indexOf":
		target := jsvalue.ToNumber(arg0(args))
		for i := 0; i < t.Length; i++ {
			if float64(t.At(i)) == target {
				return jsvalue.Number(i), true, nil
			}
		}
		return jsvalue.Number(-1), true, nil
	case "includes":
		target := jsvalue.ToNumber(arg0(args))
		for i := 0; i < t.Length; i++ {
			if float64(t.At(i)) == target {
				return jsvalue.True, true, nil
			}
		}
		return jsvalue.False, true, nil
	case "forEach":
		cb := arg0(args)
		for i := 0; i < t.Length; i++ {
			if _, err := it.Call(cb, arg1(args), []jsvalue.Value{t.At(i), jsvalue.Number(i), o}); err != nil {
				return nil, true, err
			}
		}
		return jsvalue.UndefinedValue, true, nil
	case "map":
		cb := arg0(args)
		out := make([]jsvalue.Value, t.Length)
		for i := 0; i < t.Length; i++ {
			v, err := it.Call(cb, arg1(args), []jsvalue.Value{t.At(i), jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			out[i] = v
		}
		return jsvalue.NewArray(out), true, nil
	case "reduce":
		cb := arg0(args)
		var acc jsvalue.Value
		start := 0
		if len(args) > 1 {
			acc = args[1]
		} else {
			acc = t.At(0)
			start = 1
		}
		for i := start; i < t.Length; i++ {
			v, err := it.Call(cb, jsvalue.UndefinedValue, []jsvalue.Value{acc, t.At(i), jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			acc = v
		}
		return acc, true, nil
	case "sort":
		vals := make([]float64, t.Length)
		for i := range vals {
			vals[i] = float64(t.At(i))
		}
		sort.Float64s(vals)
		for i, v := range vals {
			t.SetAt(i, jsvalue.Number(v))
		}
		return o, true, nil
	case "toString":
		parts := make([]string, t.Length)
		for i := 0; i < t.Length; i++ {
			parts[i] = jsvalue.ToString(t.At(i))
		}
		return jsvalue.String(strings.Join(parts, ",")), true, nil
	}
	return nil, false, nil
}

// typedArraySource reads a plain array or another typed array into a value
// slice for TypedArray.prototype.set's source argument.
func typedArraySource(o *jsvalue.Object) []jsvalue.Value {
	if o.Class == jsvalue.ClassArray {
		return o.Array
	}
	if o.Class == jsvalue.ClassTypedArr {
		out := make([]jsvalue.Value, o.Typed.Length)
		for i := range out {
			out[i] = o.Typed.At(i)
		}
		return out
	}
	return nil
}

func (it *Interp) arrayBufferMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "slice":
		start, end := sliceRange(args, len(o.Buffer))
		return jsvalue.NewArrayBuffer(end - start), true, nil
	}
	return nil, false, nil
}

// dataViewMethod implements the DataView getX/setX accessor family; X
// selects both the element width and signedness/float-ness, matching the
// spelling TypedArrayKind already uses.
func (it *Interp) dataViewMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	v := o.View
	kind, isSet := dataViewKind(method)
	if kind == "" {
		return nil, false, nil
	}
	offset := int(jsvalue.ToNumber(arg0(args)))
	size := jsvalue.ElementSize(kind)
	if offset < 0 || offset+size > v.Length {
		return nil, true, jsError("RangeError", "Offset is outside the bounds of the DataView")
	}
	view := &jsvalue.TypedArrayData{Kind: kind, Buffer: v.Buffer, Offset: v.Offset + offset, Length: 1}
	if isSet {
		view.SetAt(0, jsvalue.Number(jsvalue.ToNumber(arg1(args))))
		return jsvalue.UndefinedValue, true, nil
	}
	return view.At(0), true, nil
}

func dataViewKind(method string) (jsvalue.TypedArrayKind, bool) {
	isSet := strings.HasPrefix(method, "set")
	if !isSet && !strings.HasPrefix(method, "get") {
		return "", false
	}
	switch strings.TrimPrefix(strings.TrimPrefix(method, "get"), "set") {
	case "Int8":
		return jsvalue.Int8Array, isSet
	case "Uint8":
		return jsvalue.Uint8Array, isSet
	case "Int16":
		return jsvalue.Int16Array, isSet
	case "Uint16":
		return jsvalue.Uint16Array, isSet
	case "Int32":
		return jsvalue.Int32Array, isSet
	case "Uint32":
		return jsvalue.Uint32Array, isSet
	case "Float32":
		return jsvalue.Float32Array, isSet
	case "Float64":
		return jsvalue.Float64Array, isSet
	}
	return "", false
}
