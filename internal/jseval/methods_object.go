package jseval

import "github.com/domharness/domharness/internal/jsvalue"

// objectInstanceMethod covers the handful of Object.prototype methods a
// plain object (or anything falling through to ClassObject) exposes on
// itself; the Object.* static namespace (keys/values/assign/freeze/…)
// lives as real properties on the global Object value instead, built in
// setupGlobals.
func (it *Interp) objectInstanceMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "hasOwnProperty":
		return jsvalue.BoolValue(o.Has(jsvalue.ToString(arg0(args)))), true, nil
	case "isPrototypeOf":
		target, ok := arg0(args).(*jsvalue.Object)
		if !ok {
			return jsvalue.False, true, nil
		}
		for p := target.Proto; p != nil; p = p.Proto {
			if p == o {
				return jsvalue.True, true, nil
			}
		}
		return jsvalue.False, true, nil
	case "propertyIsEnumerable":
		return jsvalue.BoolValue(o.Has(jsvalue.ToString(arg0(args)))), true, nil
	case "toString":
		return jsvalue.String("[object Object]"), true, nil
	case "toLocaleString":
		return jsvalue.String(jsvalue.ToString(o)), true, nil
	case "valueOf":
		return o, true, nil
	}
	return nil, false, nil
}
