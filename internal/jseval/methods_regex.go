package jseval

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/domharness/domharness/internal/jsvalue"
)

// regexMatch pairs a regexp2 match with the byte offset of the substring
// it was found in, since lastIndex-driven global/sticky matching re-runs
// the search against s[start:] rather than the whole string.
type regexMatch struct {
	m      *regexp2.Match
	offset int
}

func (it *Interp) regexMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "test":
		s := jsvalue.ToString(arg0(args))
		rm, err := execRegexAt(o, s)
		if err != nil {
			return nil, true, err
		}
		return jsvalue.BoolValue(rm != nil), true, nil
	case "exec":
		s := jsvalue.ToString(arg0(args))
		rm, err := execRegexAt(o, s)
		if err != nil {
			return nil, true, err
		}
		if rm == nil {
			return jsvalue.NullValue, true, nil
		}
		return matchToArray(rm, s), true, nil
	case "toString":
		return jsvalue.String("/" + o.Regex.Source + "/" + o.Regex.Flags), true, nil
	}
	return nil, false, nil
}

// execRegexAt runs the compiled pattern against s, honoring lastIndex for
// global/sticky regexes the way RegExp.prototype.exec/test do, and
// advancing lastIndex on success (or resetting it to 0 on failure).
func execRegexAt(o *jsvalue.Object, s string) (*regexMatch, error) {
	rd := o.Regex
	start := 0
	if rd.Global || rd.Sticky {
		start = rd.LastIndex
	}
	if start < 0 || start > len(s) {
		rd.LastIndex = 0
		return nil, nil
	}
	m, err := rd.Compiled.FindStringMatch(s[start:])
	if err != nil {
		return nil, err
	}
	if m == nil || (rd.Sticky && m.Index != 0) {
		if rd.Global || rd.Sticky {
			rd.LastIndex = 0
		}
		return nil, nil
	}
	if rd.Global || rd.Sticky {
		adv := m.Length
		if adv == 0 {
			adv = 1
		}
		rd.LastIndex = start + m.Index + adv
	}
	return &regexMatch{m: m, offset: start}, nil
}

func matchToArray(rm *regexMatch, s string) *jsvalue.Object {
	groups := rm.m.Groups()
	arr := make([]jsvalue.Value, len(groups))
	var named *jsvalue.Object
	for i, g := range groups {
		v := jsvalue.UndefinedValue
		if len(g.Captures) > 0 {
			v = jsvalue.String(g.String())
		}
		arr[i] = v
		if i > 0 && g.Name != "" && !isDigits(g.Name) {
			if named == nil {
				named = jsvalue.NewObject()
			}
			named.Set(g.Name, v)
		}
	}
	res := jsvalue.NewArray(arr)
	res.Set("index", jsvalue.Number(rm.offset+rm.m.Index))
	res.Set("input", jsvalue.String(s))
	if named != nil {
		res.Set("groups", named)
	} else {
		res.Set("groups", jsvalue.UndefinedValue)
	}
	return res
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// stringMatch implements String.prototype.match: a single exec for a
// non-global pattern, or every match collected into an array for a
// global one (with exec's richer per-match detail discarded, matching
// match's own contract).
func stringMatch(o *jsvalue.Object, s string) (jsvalue.Value, error) {
	if !o.Regex.Global {
		rm, err := execRegexAt(o, s)
		if err != nil {
			return nil, err
		}
		if rm == nil {
			return jsvalue.NullValue, nil
		}
		return matchToArray(rm, s), nil
	}
	o.Regex.LastIndex = 0
	var out []jsvalue.Value
	for {
		rm, err := execRegexAt(o, s)
		if err != nil {
			return nil, err
		}
		if rm == nil {
			break
		}
		out = append(out, jsvalue.String(rm.m.String()))
	}
	if out == nil {
		return jsvalue.NullValue, nil
	}
	return jsvalue.NewArray(out), nil
}

// stringMatchAll implements String.prototype.matchAll, always requiring
// a global pattern per the grammar's own precondition (a non-global
// regex throws before reaching here, enforced by the caller).
func stringMatchAll(o *jsvalue.Object, s string) ([]jsvalue.Value, error) {
	o.Regex.LastIndex = 0
	var out []jsvalue.Value
	for {
		rm, err := execRegexAt(o, s)
		if err != nil {
			return nil, err
		}
		if rm == nil {
			break
		}
		out = append(out, matchToArray(rm, s))
	}
	return out, nil
}

// stringReplaceRegex implements String.prototype.replace/replaceAll when
// the pattern argument is a RegExp: repl may be a plain string
// (supporting $1/$&/$`/$' substitutions) or a callback invoked per match.
func (it *Interp) stringReplaceRegex(o *jsvalue.Object, s string, repl jsvalue.Value, all bool) (string, error) {
	global := o.Regex.Global || all
	o.Regex.LastIndex = 0
	var b strings.Builder
	last := 0
	for {
		rm, err := execRegexAt(o, s)
		if err != nil {
			return "", err
		}
		if rm == nil {
			break
		}
		matchStart := rm.offset + rm.m.Index
		b.WriteString(s[last:matchStart])
		piece, err := it.replacementFor(rm, s, repl)
		if err != nil {
			return "", err
		}
		b.WriteString(piece)
		last = matchStart + rm.m.Length
		if !global {
			break
		}
		if rm.m.Length == 0 {
			o.Regex.LastIndex = last + 1
		}
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func (it *Interp) replacementFor(rm *regexMatch, s string, repl jsvalue.Value) (string, error) {
	if jsvalue.IsCallable(repl) {
		groups := rm.m.Groups()
		args := make([]jsvalue.Value, 0, len(groups)+2)
		for i, g := range groups {
			if i == 0 {
				args = append(args, jsvalue.String(rm.m.String()))
				continue
			}
			if len(g.Captures) > 0 {
				args = append(args, jsvalue.String(g.String()))
			} else {
				args = append(args, jsvalue.UndefinedValue)
			}
		}
		args = append(args, jsvalue.Number(rm.offset+rm.m.Index), jsvalue.String(s))
		v, err := it.Call(repl, jsvalue.UndefinedValue, args)
		if err != nil {
			return "", err
		}
		return jsvalue.ToString(v), nil
	}
	return expandReplacement(jsvalue.ToString(repl), rm, s), nil
}

// expandReplacement handles the $$, $&, $`, $' and $1-$99 escapes a
// string replacement pattern may contain; $<name> is not expanded.
func expandReplacement(pattern string, rm *regexMatch, s string) string {
	groups := rm.m.Groups()
	var b strings.Builder
	matchStart := rm.offset + rm.m.Index
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '$' || i == len(pattern)-1 {
			b.WriteByte(c)
			continue
		}
		next := pattern[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(rm.m.String())
			i++
		case next == '`':
			b.WriteString(s[:matchStart])
			i++
		case next == '\'':
			b.WriteString(s[matchStart+rm.m.Length:])
			i++
		case next >= '0' && next <= '9':
			n := int(next - '0')
			j := i + 2
			if j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
				n2 := n*10 + int(pattern[j]-'0')
				if n2 < len(groups) {
					n = n2
					j++
				}
			}
			if n >= 1 && n < len(groups) && len(groups[n].Captures) > 0 {
				b.WriteString(groups[n].String())
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// stringSplitRegex implements String.prototype.split(regexp).
func stringSplitRegex(o *jsvalue.Object, s string) ([]jsvalue.Value, error) {
	re := o.Regex.Compiled
	var out []jsvalue.Value
	last := 0
	m, err := re.FindStringMatch(s)
	for m != nil {
		if err != nil {
			return nil, err
		}
		if m.Length == 0 && m.Index == last {
			next, nerr := re.FindNextMatch(m)
			if nerr != nil {
				return nil, nerr
			}
			m = next
			continue
		}
		out = append(out, jsvalue.String(s[last:m.Index]))
		for _, g := range m.Groups()[1:] {
			if len(g.Captures) > 0 {
				out = append(out, jsvalue.String(g.String()))
			} else {
				out = append(out, jsvalue.UndefinedValue)
			}
		}
		last = m.Index + m.Length
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	out = append(out, jsvalue.String(s[last:]))
	return out, nil
}
