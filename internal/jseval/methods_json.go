package jseval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/domharness/domharness/internal/jsvalue"
)

// jsonObject builds the JSON namespace. Parsing goes through gjson rather
// than encoding/json so a malformed document fails fast via gjson.Valid
// without paying for a full unmarshal into an interface{} tree first;
// stringify's indentation goes through tidwall/pretty for the same reason
// goja-style harnesses reach for it: it reformats already-serialized bytes
// instead of threading indent state through a recursive writer.
func (it *Interp) jsonObject() *jsvalue.Object {
	o := jsvalue.NewObject()
	o.Set("parse", jsvalue.NewNativeFunc("parse", jsonParse))
	o.Set("stringify", jsvalue.NewNativeFunc("stringify", jsonStringify))
	return o
}

func jsonParse(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	text := jsvalue.ToString(arg0(args))
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("Unexpected token in JSON")
	}
	return gjsonToValue(gjson.Parse(text)), nil
}

func gjsonToValue(r gjson.Result) jsvalue.Value {
	switch r.Type {
	case gjson.Null:
		return jsvalue.NullValue
	case gjson.False:
		return jsvalue.False
	case gjson.True:
		return jsvalue.True
	case gjson.Number:
		return jsvalue.Number(r.Num)
	case gjson.String:
		return jsvalue.String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var out []jsvalue.Value
			r.ForEach(func(_, v gjson.Result) bool {
				out = append(out, gjsonToValue(v))
				return true
			})
			return jsvalue.NewArray(out)
		}
		obj := jsvalue.NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.Str, gjsonToValue(v))
			return true
		})
		return obj
	}
	return jsvalue.UndefinedValue
}

func jsonStringify(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
	v := arg0(args)
	buf, ok, err := stringifyJSON(v, map[*jsvalue.Object]bool{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return jsvalue.UndefinedValue, nil
	}
	if indent := jsonIndent(arg2(args)); indent != "" {
		buf = pretty.PrettyOptions(buf, &pretty.Options{Indent: indent, SortKeys: false})
		buf = []byte(strings.TrimRight(string(buf), "\n"))
	}
	return jsvalue.String(string(buf)), nil
}

// arg2 reads the third positional argument a native function was called
// with, defaulting to undefined like arg0/arg1 in methods_url.go/async.go.
func arg2(args []jsvalue.Value) jsvalue.Value {
	if len(args) > 2 {
		return args[2]
	}
	return jsvalue.UndefinedValue
}

func jsonIndent(v jsvalue.Value) string {
	switch t := v.(type) {
	case jsvalue.Number:
		n := int(t)
		if n <= 0 {
			return ""
		}
		if n > 10 {
			n = 10
		}
		return strings.Repeat(" ", n)
	case jsvalue.String:
		s := string(t)
		if len(s) > 10 {
			s = s[:10]
		}
		return s
	}
	return ""
}

// stringifyJSON serializes v the way JSON.stringify does: undefined,
// functions and symbols are omitted (reported via the ok return), NaN and
// Infinity collapse to null, and a Date serializes through its ISO string
// rather than its own enumerable properties (it has none).
func stringifyJSON(v jsvalue.Value, seen map[*jsvalue.Object]bool) ([]byte, bool, error) {
	switch t := v.(type) {
	case nil, jsvalue.Undefined:
		return nil, false, nil
	case jsvalue.Null:
		return []byte("null"), true, nil
	case jsvalue.Bool:
		if t {
			return []byte("true"), true, nil
		}
		return []byte("false"), true, nil
	case jsvalue.Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return []byte("null"), true, nil
		}
		return []byte(strconv.FormatFloat(f, 'g', -1, 64)), true, nil
	case jsvalue.BigInt:
		return nil, false, fmt.Errorf("Do not know how to serialize a BigInt")
	case jsvalue.String:
		return []byte(quoteJSONString(string(t))), true, nil
	case jsvalue.Symbol:
		return nil, false, nil
	case *jsvalue.Object:
		return stringifyObject(t, seen)
	}
	return nil, false, nil
}

func stringifyObject(o *jsvalue.Object, seen map[*jsvalue.Object]bool) ([]byte, bool, error) {
	if o.Class == jsvalue.ClassFunction {
		return nil, false, nil
	}
	if seen[o] {
		return nil, false, fmt.Errorf("Converting circular structure to JSON")
	}
	seen[o] = true
	defer delete(seen, o)

	if o.Class == jsvalue.ClassDate {
		return []byte(quoteJSONString(dateToISOString(o.DateMs))), true, nil
	}

	if o.Class == jsvalue.ClassArray {
		var b strings.Builder
		b.WriteByte('[')
		for i, el := range o.Array {
			if i > 0 {
				b.WriteByte(',')
			}
			elBuf, ok, err := stringifyJSON(el, seen)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				b.WriteString("null")
				continue
			}
			b.Write(elBuf)
		}
		b.WriteByte(']')
		return []byte(b.String()), true, nil
	}

	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, key := range o.OwnKeys() {
		valBuf, ok, err := stringifyJSON(o.Get(key), seen)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(quoteJSONString(key))
		b.WriteByte(':')
		b.Write(valBuf)
	}
	b.WriteByte('}')
	return []byte(b.String()), true, nil
}

func quoteJSONString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func dateToISOString(ms float64) string {
	return time.UnixMilli(int64(ms)).UTC().Format("2006-01-02T15:04:05.000Z")
}
