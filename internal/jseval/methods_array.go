package jseval

import (
	"sort"
	"strings"

	"github.com/domharness/domharness/internal/jsvalue"
)

// arrayMethod dispatches Array.prototype methods against o.Array in
// place where the spec calls for a mutating method, and via a fresh
// slice otherwise.
func (it *Interp) arrayMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "push":
		o.Array = append(o.Array, args...)
		return jsvalue.Number(len(o.Array)), true, nil
	case "pop":
		if len(o.Array) == 0 {
			return jsvalue.UndefinedValue, true, nil
		}
		v := o.Array[len(o.Array)-1]
		o.Array = o.Array[:len(o.Array)-1]
		return v, true, nil
	case "shift":
		if len(o.Array) == 0 {
			return jsvalue.UndefinedValue, true, nil
		}
		v := o.Array[0]
		o.Array = append([]jsvalue.Value(nil), o.Array[1:]...)
		return v, true, nil
	case "unshift":
		o.Array = append(append([]jsvalue.Value(nil), args...), o.Array...)
		return jsvalue.Number(len(o.Array)), true, nil
	case "slice":
		start, end := sliceRange(args, len(o.Array))
		return jsvalue.NewArray(append([]jsvalue.Value(nil), o.Array[start:end]...)), true, nil
	case "splice":
		return arraySplice(o, args), true, nil
	case "concat":
		out := append([]jsvalue.Value(nil), o.Array...)
		for _, a := range args {
			if ao, ok := a.(*jsvalue.Object); ok && ao.Class == jsvalue.ClassArray {
				out = append(out, ao.Array...)
			} else {
				out = append(out, a)
			}
		}
		return jsvalue.NewArray(out), true, nil
	case "join":
		sep := ","
		if len(args) > 0 && !jsvalue.IsNullish(args[0]) {
			sep = jsvalue.ToString(args[0])
		}
		parts := make([]string, len(o.Array))
		for i, v := range o.Array {
			if jsvalue.IsNullish(v) {
				parts[i] = ""
			} else {
				parts[i] = jsvalue.ToString(v)
			}
		}
		return jsvalue.String(strings.Join(parts, sep)), true, nil
	case "reverse":
		for i, j := 0, len(o.Array)-1; i < j; i, j = i+1, j-1 {
			o.Array[i], o.Array[j] = o.Array[j], o.Array[i]
		}
		return o, true, nil
	case "indexOf":
		for i, v := range o.Array {
			if jsvalue.StrictEquals(v, arg0(args)) {
				return jsvalue.Number(i), true, nil
			}
		}
		return jsvalue.Number(-1), true, nil
	case "lastIndexOf":
		for i := len(o.Array) - 1; i >= 0; i-- {
			if jsvalue.StrictEquals(o.Array[i], arg0(args)) {
				return jsvalue.Number(i), true, nil
			}
		}
		return jsvalue.Number(-1), true, nil
	case "includes":
		for _, v := range o.Array {
			if jsvalue.SameValueZero(v, arg0(args)) {
				return jsvalue.True, true, nil
			}
		}
		return jsvalue.False, true, nil
	case "find", "findIndex", "findLast", "findLastIndex":
		return it.arrayFind(o, method, args)
	case "filter":
		cb := arg0(args)
		var out []jsvalue.Value
		for i, v := range o.Array {
			keep, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			if jsvalue.ToBoolean(keep) {
				out = append(out, v)
			}
		}
		return jsvalue.NewArray(out), true, nil
	case "map":
		cb := arg0(args)
		out := make([]jsvalue.Value, len(o.Array))
		for i, v := range o.Array {
			r, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			out[i] = r
		}
		return jsvalue.NewArray(out), true, nil
	case "forEach":
		cb := arg0(args)
		for i, v := range o.Array {
			if _, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o}); err != nil {
				return nil, true, err
			}
		}
		return jsvalue.UndefinedValue, true, nil
	case "some":
		cb := arg0(args)
		for i, v := range o.Array {
			r, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			if jsvalue.ToBoolean(r) {
				return jsvalue.True, true, nil
			}
		}
		return jsvalue.False, true, nil
	case "every":
		cb := arg0(args)
		for i, v := range o.Array {
			r, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			if !jsvalue.ToBoolean(r) {
				return jsvalue.False, true, nil
			}
		}
		return jsvalue.True, true, nil
	case "reduce":
		return it.arrayReduce(o, args, false)
	case "reduceRight":
		return it.arrayReduce(o, args, true)
	case "flat":
		depth := 1
		if len(args) > 0 {
			depth = int(jsvalue.ToNumber(args[0]))
		}
		return jsvalue.NewArray(flattenArray(o.Array, depth)), true, nil
	case "flatMap":
		cb := arg0(args)
		var out []jsvalue.Value
		for i, v := range o.Array {
			r, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o})
			if err != nil {
				return nil, true, err
			}
			out = append(out, flattenArray([]jsvalue.Value{r}, 1)...)
		}
		return jsvalue.NewArray(out), true, nil
	case "fill":
		return arrayFill(o, args), true, nil
	case "copyWithin":
		return arrayCopyWithin(o, args), true, nil
	case "at":
		i := int(jsvalue.ToNumber(arg0(args)))
		if i < 0 {
			i += len(o.Array)
		}
		if i < 0 || i >= len(o.Array) {
			return jsvalue.UndefinedValue, true, nil
		}
		return o.Array[i], true, nil
	case "sort":
		return it.arraySort(o, args)
	case "keys":
		out := make([]jsvalue.Value, len(o.Array))
		for i := range o.Array {
			out[i] = jsvalue.Number(i)
		}
		return jsvalue.NewArray(out), true, nil
	case "values":
		return jsvalue.NewArray(append([]jsvalue.Value(nil), o.Array...)), true, nil
	case "entries":
		out := make([]jsvalue.Value, len(o.Array))
		for i, v := range o.Array {
			out[i] = jsvalue.NewArray([]jsvalue.Value{jsvalue.Number(i), v})
		}
		return jsvalue.NewArray(out), true, nil
	case "toString":
		return jsvalue.String(jsvalue.ToString(o)), true, nil
	}
	return nil, false, nil
}

func (it *Interp) arrayFind(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	cb := arg0(args)
	reverse := strings.HasPrefix(method, "findLast")
	wantIndex := strings.HasSuffix(method, "Index")
	indices := make([]int, len(o.Array))
	for i := range indices {
		indices[i] = i
	}
	if reverse {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	for _, i := range indices {
		v := o.Array[i]
		r, err := it.Call(cb, arg1(args), []jsvalue.Value{v, jsvalue.Number(i), o})
		if err != nil {
			return nil, true, err
		}
		if jsvalue.ToBoolean(r) {
			if wantIndex {
				return jsvalue.Number(i), true, nil
			}
			return v, true, nil
		}
	}
	if wantIndex {
		return jsvalue.Number(-1), true, nil
	}
	return jsvalue.UndefinedValue, true, nil
}

func (it *Interp) arrayReduce(o *jsvalue.Object, args []jsvalue.Value, right bool) (jsvalue.Value, bool, error) {
	cb := arg0(args)
	indices := make([]int, len(o.Array))
	for i := range indices {
		if right {
			indices[i] = len(o.Array) - 1 - i
		} else {
			indices[i] = i
		}
	}
	var acc jsvalue.Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(indices) == 0 {
			return nil, true, jsError("TypeError", "Reduce of empty array with no initial value")
		}
		acc = o.Array[indices[0]]
		start = 1
	}
	for _, i := range indices[start:] {
		v, err := it.Call(cb, jsvalue.UndefinedValue, []jsvalue.Value{acc, o.Array[i], jsvalue.Number(i), o})
		if err != nil {
			return nil, true, err
		}
		acc = v
	}
	return acc, true, nil
}

func flattenArray(items []jsvalue.Value, depth int) []jsvalue.Value {
	var out []jsvalue.Value
	for _, v := range items {
		if ao, ok := v.(*jsvalue.Object); ok && ao.Class == jsvalue.ClassArray && depth > 0 {
			out = append(out, flattenArray(ao.Array, depth-1)...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func arraySplice(o *jsvalue.Object, args []jsvalue.Value) jsvalue.Value {
	n := len(o.Array)
	start := 0
	if len(args) > 0 {
		start = clampIndex(int(jsvalue.ToNumber(args[0])), n)
	}
	deleteCount := n - start
	if len(args) > 1 {
		deleteCount = int(jsvalue.ToNumber(args[1]))
		if deleteCount < 0 {
			deleteCount = 0
		}
		if start+deleteCount > n {
			deleteCount = n - start
		}
	}
	removed := append([]jsvalue.Value(nil), o.Array[start:start+deleteCount]...)
	var inserted []jsvalue.Value
	if len(args) > 2 {
		inserted = args[2:]
	}
	out := append([]jsvalue.Value(nil), o.Array[:start]...)
	out = append(out, inserted...)
	out = append(out, o.Array[start+deleteCount:]...)
	o.Array = out
	return jsvalue.NewArray(removed)
}

func arrayFill(o *jsvalue.Object, args []jsvalue.Value) jsvalue.Value {
	v := arg0(args)
	start, end := 0, len(o.Array)
	if len(args) > 1 {
		start = clampIndex(int(jsvalue.ToNumber(args[1])), len(o.Array))
	}
	if len(args) > 2 {
		end = clampIndex(int(jsvalue.ToNumber(args[2])), len(o.Array))
	}
	for i := start; i < end; i++ {
		o.Array[i] = v
	}
	return o
}

func arrayCopyWithin(o *jsvalue.Object, args []jsvalue.Value) jsvalue.Value {
	n := len(o.Array)
	target := clampIndex(int(jsvalue.ToNumber(arg0(args))), n)
	start := 0
	if len(args) > 1 {
		start = clampIndex(int(jsvalue.ToNumber(args[1])), n)
	}
	end := n
	if len(args) > 2 {
		end = clampIndex(int(jsvalue.ToNumber(args[2])), n)
	}
	chunk := append([]jsvalue.Value(nil), o.Array[start:end]...)
	for i, v := range chunk {
		if target+i >= n {
			break
		}
		o.Array[target+i] = v
	}
	return o
}

func (it *Interp) arraySort(o *jsvalue.Object, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	cmp := arg0(args)
	var sortErr error
	sort.SliceStable(o.Array, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := o.Array[i], o.Array[j]
		if jsvalue.IsCallable(cmp) {
			r, err := it.Call(cmp, jsvalue.UndefinedValue, []jsvalue.Value{a, b})
			if err != nil {
				sortErr = err
				return false
			}
			return jsvalue.ToNumber(r) < 0
		}
		return jsvalue.ToString(a) < jsvalue.ToString(b)
	})
	if sortErr != nil {
		return nil, true, sortErr
	}
	return o, true, nil
}
