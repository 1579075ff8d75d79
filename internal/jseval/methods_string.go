package jseval

import (
	"math"
	"strings"

	"github.com/domharness/domharness/internal/jsvalue"
)

// stringMethod dispatches String.prototype methods. Runes, not bytes,
// are the indexing unit throughout (charAt/slice/etc.), matching how the
// rest of the evaluator treats JS strings as sequences of code points
// rather than raw UTF-8 bytes.
func (it *Interp) stringMethod(s string, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	r := []rune(s)
	switch method {
	case "charAt":
		i := int(jsvalue.ToNumber(arg0(args)))
		if i < 0 || i >= len(r) {
			return jsvalue.String(""), true, nil
		}
		return jsvalue.String(string(r[i])), true, nil
	case "charCodeAt":
		i := int(jsvalue.ToNumber(arg0(args)))
		if i < 0 || i >= len(r) {
			return jsvalue.Number(math.NaN()), true, nil
		}
		return jsvalue.Number(float64(r[i])), true, nil
	case "codePointAt":
		i := int(jsvalue.ToNumber(arg0(args)))
		if i < 0 || i >= len(r) {
			return jsvalue.UndefinedValue, true, nil
		}
		return jsvalue.Number(float64(r[i])), true, nil
	case "at":
		i := int(jsvalue.ToNumber(arg0(args)))
		if i < 0 {
			i += len(r)
		}
		if i < 0 || i >= len(r) {
			return jsvalue.UndefinedValue, true, nil
		}
		return jsvalue.String(string(r[i])), true, nil
	case "indexOf":
		needle := jsvalue.ToString(arg0(args))
		from := 0
		if len(args) > 1 {
			from = clampIndex(int(jsvalue.ToNumber(args[1])), len(r))
		}
		idx := strings.Index(string(r[from:]), needle)
		if idx < 0 {
			return jsvalue.Number(-1), true, nil
		}
		return jsvalue.Number(from + len([]rune(string(r[from:])[:idx]))), true, nil
	case "lastIndexOf":
		needle := jsvalue.ToString(arg0(args))
		idx := strings.LastIndex(s, needle)
		if idx < 0 {
			return jsvalue.Number(-1), true, nil
		}
		return jsvalue.Number(len([]rune(s[:idx]))), true, nil
	case "includes":
		return jsvalue.BoolValue(strings.Contains(s, jsvalue.ToString(arg0(args)))), true, nil
	case "startsWith":
		from := 0
		if len(args) > 1 {
			from = clampIndex(int(jsvalue.ToNumber(args[1])), len(r))
		}
		return jsvalue.BoolValue(strings.HasPrefix(string(r[from:]), jsvalue.ToString(arg0(args)))), true, nil
	case "endsWith":
		end := len(r)
		if len(args) > 1 {
			end = clampIndex(int(jsvalue.ToNumber(args[1])), len(r))
		}
		return jsvalue.BoolValue(strings.HasSuffix(string(r[:end]), jsvalue.ToString(arg0(args)))), true, nil
	case "slice":
		start, end := sliceRange(args, len(r))
		return jsvalue.String(string(r[start:end])), true, nil
	case "substring":
		a := clampIndex(int(jsvalue.ToNumber(arg0(args))), len(r))
		b := len(r)
		if len(args) > 1 && !jsvalue.IsNullish(args[1]) {
			b = clampIndex(int(jsvalue.ToNumber(args[1])), len(r))
		}
		if a > b {
			a, b = b, a
		}
		return jsvalue.String(string(r[a:b])), true, nil
	case "substr":
		start := int(jsvalue.ToNumber(arg0(args)))
		if start < 0 {
			start = maxInt(len(r)+start, 0)
		}
		start = clampIndex(start, len(r))
		length := len(r) - start
		if len(args) > 1 {
			length = int(jsvalue.ToNumber(args[1]))
		}
		end := clampIndex(start+maxInt(length, 0), len(r))
		return jsvalue.String(string(r[start:end])), true, nil
	case "toUpperCase", "toLocaleUpperCase":
		return jsvalue.String(strings.ToUpper(s)), true, nil
	case "toLowerCase", "toLocaleLowerCase":
		return jsvalue.String(strings.ToLower(s)), true, nil
	case "trim":
		return jsvalue.String(strings.TrimSpace(s)), true, nil
	case "trimStart":
		return jsvalue.String(strings.TrimLeft(s, " \t\n\r\v\f")), true, nil
	case "trimEnd":
		return jsvalue.String(strings.TrimRight(s, " \t\n\r\v\f")), true, nil
	case "padStart":
		return jsvalue.String(padString(s, args, true)), true, nil
	case "padEnd":
		return jsvalue.String(padString(s, args, false)), true, nil
	case "repeat":
		n := int(jsvalue.ToNumber(arg0(args)))
		if n < 0 {
			return nil, true, jsError("RangeError", "Invalid count value")
		}
		return jsvalue.String(strings.Repeat(s, n)), true, nil
	case "concat":
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			b.WriteString(jsvalue.ToString(a))
		}
		return jsvalue.String(b.String()), true, nil
	case "split":
		return stringSplit(s, args), true, nil
	case "replace", "replaceAll":
		return it.stringReplace(s, args, method == "replaceAll")
	case "match":
		if re, ok := arg0(args).(*jsvalue.Object); ok && re.Class == jsvalue.ClassRegExp {
			v, err := stringMatch(re, s)
			return v, true, err
		}
		needle := jsvalue.ToString(arg0(args))
		idx := strings.Index(s, needle)
		if idx < 0 {
			return jsvalue.NullValue, true, nil
		}
		res := jsvalue.NewArray([]jsvalue.Value{jsvalue.String(needle)})
		res.Set("index", jsvalue.Number(len([]rune(s[:idx]))))
		res.Set("input", jsvalue.String(s))
		return res, true, nil
	case "matchAll":
		re, ok := arg0(args).(*jsvalue.Object)
		if !ok || re.Class != jsvalue.ClassRegExp || !re.Regex.Global {
			return nil, true, jsError("TypeError", "matchAll requires a global RegExp")
		}
		items, err := stringMatchAll(re, s)
		if err != nil {
			return nil, true, err
		}
		return jsvalue.NewArray(items), true, nil
	case "search":
		if re, ok := arg0(args).(*jsvalue.Object); ok && re.Class == jsvalue.ClassRegExp {
			m, err := re.Regex.Compiled.FindStringMatch(s)
			if err != nil {
				return nil, true, err
			}
			if m == nil {
				return jsvalue.Number(-1), true, nil
			}
			return jsvalue.Number(m.Index), true, nil
		}
		idx := strings.Index(s, jsvalue.ToString(arg0(args)))
		if idx < 0 {
			return jsvalue.Number(-1), true, nil
		}
		return jsvalue.Number(len([]rune(s[:idx]))), true, nil
	case "toString", "valueOf":
		return jsvalue.String(s), true, nil
	case "normalize":
		return jsvalue.String(s), true, nil
	case "localeCompare":
		other := jsvalue.ToString(arg0(args))
		switch {
		case s < other:
			return jsvalue.Number(-1), true, nil
		case s > other:
			return jsvalue.Number(1), true, nil
		default:
			return jsvalue.Number(0), true, nil
		}
	}
	return nil, false, nil
}

func (it *Interp) stringReplace(s string, args []jsvalue.Value, all bool) (jsvalue.Value, bool, error) {
	if re, ok := arg0(args).(*jsvalue.Object); ok && re.Class == jsvalue.ClassRegExp {
		out, err := it.stringReplaceRegex(re, s, arg1(args), all)
		return jsvalue.String(out), true, err
	}
	needle := jsvalue.ToString(arg0(args))
	repl := arg1(args)
	replace := func(match string) (string, error) {
		if jsvalue.IsCallable(repl) {
			idx := strings.Index(s, match)
			v, err := it.Call(repl, jsvalue.UndefinedValue, []jsvalue.Value{jsvalue.String(match), jsvalue.Number(len([]rune(s[:idx]))), jsvalue.String(s)})
			if err != nil {
				return "", err
			}
			return jsvalue.ToString(v), nil
		}
		return strings.ReplaceAll(jsvalue.ToString(repl), "$&", match), nil
	}
	if all {
		var b strings.Builder
		rest := s
		for {
			idx := strings.Index(rest, needle)
			if idx < 0 || needle == "" {
				b.WriteString(rest)
				break
			}
			b.WriteString(rest[:idx])
			piece, err := replace(needle)
			if err != nil {
				return nil, true, err
			}
			b.WriteString(piece)
			rest = rest[idx+len(needle):]
		}
		return jsvalue.String(b.String()), true, nil
	}
	idx := strings.Index(s, needle)
	if idx < 0 {
		return jsvalue.String(s), true, nil
	}
	piece, err := replace(needle)
	if err != nil {
		return nil, true, err
	}
	return jsvalue.String(s[:idx] + piece + s[idx+len(needle):]), true, nil
}

func stringSplit(s string, args []jsvalue.Value) jsvalue.Value {
	if len(args) == 0 || jsvalue.IsNullish(args[0]) {
		return jsvalue.NewArray([]jsvalue.Value{jsvalue.String(s)})
	}
	if re, ok := args[0].(*jsvalue.Object); ok && re.Class == jsvalue.ClassRegExp {
		items, err := stringSplitRegex(re, s)
		if err != nil {
			return jsvalue.NewArray(nil)
		}
		return jsvalue.NewArray(items)
	}
	sep := jsvalue.ToString(args[0])
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]jsvalue.Value, len(parts))
	for i, p := range parts {
		out[i] = jsvalue.String(p)
	}
	return jsvalue.NewArray(out)
}

func padString(s string, args []jsvalue.Value, start bool) string {
	target := int(jsvalue.ToNumber(arg0(args)))
	pad := " "
	if len(args) > 1 {
		pad = jsvalue.ToString(args[1])
	}
	r := []rune(s)
	if target <= len(r) || pad == "" {
		return s
	}
	need := target - len(r)
	padRunes := []rune(pad)
	fill := make([]rune, 0, need)
	for len(fill) < need {
		fill = append(fill, padRunes[len(fill)%len(padRunes)]...)
	}
	fill = fill[:need]
	if start {
		return string(fill) + s
	}
	return s + string(fill)
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func sliceRange(args []jsvalue.Value, n int) (int, int) {
	start := 0
	if len(args) > 0 {
		start = clampIndex(int(jsvalue.ToNumber(args[0])), n)
	}
	end := n
	if len(args) > 1 && !jsvalue.IsNullish(args[1]) {
		end = clampIndex(int(jsvalue.ToNumber(args[1])), n)
	}
	if end < start {
		end = start
	}
	return start, end
}
