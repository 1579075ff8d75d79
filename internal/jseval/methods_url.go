package jseval

import "github.com/domharness/domharness/internal/jsvalue"

// urlGet resolves the read side of the URL/URLSearchParams accessor
// surface (href/protocol/host/… and searchParams), leaving the writable
// subset of those same names to urlMethod/setProp.
func urlGet(o *jsvalue.Object, key string) (jsvalue.Value, bool) {
	d := o.URL
	switch key {
	case "href":
		return jsvalue.String(d.String()), true
	case "protocol":
		return jsvalue.String(d.Protocol), true
	case "username":
		return jsvalue.String(d.Username), true
	case "password":
		return jsvalue.String(d.Password), true
	case "host":
		return jsvalue.String(d.HostWithPort()), true
	case "hostname":
		return jsvalue.String(d.Host), true
	case "port":
		return jsvalue.String(d.Port), true
	case "pathname":
		return jsvalue.String(d.Pathname), true
	case "search":
		return jsvalue.String(d.SearchString()), true
	case "hash":
		return jsvalue.String(d.Hash), true
	case "origin":
		return jsvalue.String(d.Protocol + "//" + d.HostWithPort()), true
	case "searchParams":
		return jsvalue.NewURLParamsObject(d, o), true
	}
	return nil, false
}

// urlSet is the writable counterpart of urlGet, called from setProp.
func urlSet(o *jsvalue.Object, key string, v jsvalue.Value) bool {
	d := o.URL
	s := jsvalue.ToString(v)
	switch key {
	case "protocol":
		d.Protocol = s
	case "username":
		d.Username = s
	case "password":
		d.Password = s
	case "host":
		d.Host, d.Port = splitHostPort(s)
	case "hostname":
		d.Host = s
	case "port":
		d.Port = s
	case "pathname":
		d.Pathname = s
	case "hash":
		if s != "" && s[0] != '#' {
			s = "#" + s
		}
		d.Hash = s
	default:
		return false
	}
	return true
}

func splitHostPort(s string) (string, string) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func (it *Interp) urlMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "toString", "toJSON":
		return jsvalue.String(o.URL.String()), true, nil
	}
	return nil, false, nil
}

func (it *Interp) urlParamsMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	d := o.URL
	switch method {
	case "get":
		if v, ok := d.Get(jsvalue.ToString(arg0(args))); ok {
			return jsvalue.String(v), true, nil
		}
		return jsvalue.NullValue, true, nil
	case "getAll":
		vals := d.GetAll(jsvalue.ToString(arg0(args)))
		out := make([]jsvalue.Value, len(vals))
		for i, v := range vals {
			out[i] = jsvalue.String(v)
		}
		return jsvalue.NewArray(out), true, nil
	case "has":
		return jsvalue.BoolValue(d.HasParam(jsvalue.ToString(arg0(args)))), true, nil
	case "set":
		d.SetParam(jsvalue.ToString(arg0(args)), jsvalue.ToString(arg1(args)))
		return jsvalue.UndefinedValue, true, nil
	case "append":
		d.Append(jsvalue.ToString(arg0(args)), jsvalue.ToString(arg1(args)))
		return jsvalue.UndefinedValue, true, nil
	case "delete":
		d.DeleteParam(jsvalue.ToString(arg0(args)))
		return jsvalue.UndefinedValue, true, nil
	case "sort":
		d.SortParams()
		return jsvalue.UndefinedValue, true, nil
	case "toString":
		s := d.SearchString()
		if len(s) > 0 && s[0] == '?' {
			s = s[1:]
		}
		return jsvalue.String(s), true, nil
	case "forEach":
		cb := arg0(args)
		for _, e := range d.Entries() {
			if _, err := it.Call(cb, jsvalue.UndefinedValue, []jsvalue.Value{jsvalue.String(e[1]), jsvalue.String(e[0]), o}); err != nil {
				return nil, true, err
			}
		}
		return jsvalue.UndefinedValue, true, nil
	case "keys", "values", "entries":
		entries := d.Entries()
		items := make([]jsvalue.Value, len(entries))
		for i, e := range entries {
			switch method {
			case "keys":
				items[i] = jsvalue.String(e[0])
			case "values":
				items[i] = jsvalue.String(e[1])
			default:
				items[i] = jsvalue.NewArray([]jsvalue.Value{jsvalue.String(e[0]), jsvalue.String(e[1])})
			}
		}
		return jsvalue.NewArray(items), true, nil
	}
	return nil, false, nil
}

func arg1(args []jsvalue.Value) jsvalue.Value {
	if len(args) > 1 {
		return args[1]
	}
	return jsvalue.UndefinedValue
}
