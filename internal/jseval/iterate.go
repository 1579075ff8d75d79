package jseval

import (
	"fmt"

	"github.com/domharness/domharness/internal/jsvalue"
)

// iterate eagerly drains any of the iterable shapes the grammar's for-of,
// spread, and destructuring forms can see: arrays, strings (by code
// point), Map (as [key, value] pairs), Set, and generators/async
// generators (by running them to completion). Eager draining is a
// deliberate simplification — this evaluator is tree-walking and
// synchronous outside explicit await/yield suspension points, so nothing
// in this subset needs a lazy pull-based iterator protocol beyond what
// generators already give via next().
func (it *Interp) iterate(v jsvalue.Value) ([]jsvalue.Value, error) {
	switch t := v.(type) {
	case jsvalue.String:
		var out []jsvalue.Value
		for _, r := range string(t) {
			out = append(out, jsvalue.String(string(r)))
		}
		return out, nil
	case *jsvalue.Object:
		switch t.Class {
		case jsvalue.ClassArray:
			return append([]jsvalue.Value(nil), t.Array...), nil
		case jsvalue.ClassSet:
			return t.SetData.Keys(), nil
		case jsvalue.ClassMap:
			var out []jsvalue.Value
			for _, kv := range t.MapData.Entries() {
				out = append(out, jsvalue.NewArray([]jsvalue.Value{kv[0], kv[1]}))
			}
			return out, nil
		case jsvalue.ClassGenerator:
			return it.drainGenerator(t)
		case jsvalue.ClassTypedArr:
			out := make([]jsvalue.Value, t.Typed.Length)
			for i := range out {
				out[i] = t.Typed.At(i)
			}
			return out, nil
		default:
			if t.Has("length") {
				return arrayLikeToSlice(t), nil
			}
		}
	}
	return nil, fmt.Errorf("value is not iterable")
}

// arrayLikeToSlice reads a plain object exposing a numeric length and
// index properties as Array.from does for array-likes (arguments
// objects, NodeLists, …).
func arrayLikeToSlice(o *jsvalue.Object) []jsvalue.Value {
	n := int(jsvalue.ToNumber(o.Get("length")))
	out := make([]jsvalue.Value, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, o.Get(jsvalue.ToString(jsvalue.Number(i))))
	}
	return out
}

// drainGenerator runs a not-yet-exhausted generator to completion via its
// next() protocol, collecting every yielded value (not the final return
// value, matching for-of's treatment of a generator's return as the
// iteration's end rather than one of its results).
func (it *Interp) drainGenerator(g *jsvalue.Object) ([]jsvalue.Value, error) {
	var out []jsvalue.Value
	for {
		v, done, err := it.generatorNext(g, jsvalue.UndefinedValue)
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		out = append(out, v)
	}
}
