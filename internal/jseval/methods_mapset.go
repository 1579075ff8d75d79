package jseval

import "github.com/domharness/domharness/internal/jsvalue"

func (it *Interp) mapMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	m := o.MapData
	switch method {
	case "get":
		v, _ := m.Get(arg0(args))
		return v, true, nil
	case "set":
		m.Set(arg0(args), arg1(args))
		return o, true, nil
	case "has":
		return jsvalue.BoolValue(m.Has(arg0(args))), true, nil
	case "delete":
		return jsvalue.BoolValue(m.Delete(arg0(args))), true, nil
	case "clear":
		m.Clear()
		return jsvalue.UndefinedValue, true, nil
	case "forEach":
		cb := arg0(args)
		for _, e := range m.Entries() {
			if _, err := it.Call(cb, arg1(args), []jsvalue.Value{e[1], e[0], o}); err != nil {
				return nil, true, err
			}
		}
		return jsvalue.UndefinedValue, true, nil
	case "keys":
		return jsvalue.NewArray(m.Keys()), true, nil
	case "values":
		entries := m.Entries()
		out := make([]jsvalue.Value, len(entries))
		for i, e := range entries {
			out[i] = e[1]
		}
		return jsvalue.NewArray(out), true, nil
	case "entries":
		entries := m.Entries()
		out := make([]jsvalue.Value, len(entries))
		for i, e := range entries {
			out[i] = jsvalue.NewArray([]jsvalue.Value{e[0], e[1]})
		}
		return jsvalue.NewArray(out), true, nil
	}
	return nil, false, nil
}

func (it *Interp) setMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	s := o.SetData
	switch method {
	case "add":
		s.Set(arg0(args), jsvalue.UndefinedValue)
		return o, true, nil
	case "has":
		return jsvalue.BoolValue(s.Has(arg0(args))), true, nil
	case "delete":
		return jsvalue.BoolValue(s.Delete(arg0(args))), true, nil
	case "clear":
		s.Clear()
		return jsvalue.UndefinedValue, true, nil
	case "forEach":
		cb := arg0(args)
		for _, v := range s.Keys() {
			if _, err := it.Call(cb, arg1(args), []jsvalue.Value{v, v, o}); err != nil {
				return nil, true, err
			}
		}
		return jsvalue.UndefinedValue, true, nil
	case "keys", "values":
		return jsvalue.NewArray(s.Keys()), true, nil
	case "entries":
		keys := s.Keys()
		out := make([]jsvalue.Value, len(keys))
		for i, v := range keys {
			out[i] = jsvalue.NewArray([]jsvalue.Value{v, v})
		}
		return jsvalue.NewArray(out), true, nil
	}
	return nil, false, nil
}
