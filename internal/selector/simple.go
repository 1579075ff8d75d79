package selector

import (
	"strings"

	"github.com/domharness/domharness/internal/domtree"
)

type tagSimple struct{ tag string }

func (s tagSimple) match(d *domtree.Dom, id domtree.NodeId) bool {
	return s.tag == "*" || d.Node(id).TagName == s.tag
}

type idSimple struct{ id string }

func (s idSimple) match(d *domtree.Dom, id domtree.NodeId) bool {
	v, ok := d.GetAttr(id, "id")
	return ok && v == s.id
}

type classSimple struct{ class string }

func (s classSimple) match(d *domtree.Dom, id domtree.NodeId) bool {
	return d.HasClass(id, s.class)
}

type attrOp byte

const (
	attrPresent attrOp = iota
	attrEquals
	attrContainsWord // ~=
	attrPrefix       // ^=
	attrSuffix       // $=
	attrSubstring    // *=
)

type attrSimple struct {
	name string
	op   attrOp
	val  string
}

func (s attrSimple) match(d *domtree.Dom, id domtree.NodeId) bool {
	v, ok := d.GetAttr(id, s.name)
	if !ok {
		return false
	}
	if s.op == attrPresent {
		return true
	}
	cmpV, cmpWant := v, s.val
	if s.name == "type" && d.Node(id).TagName == "input" {
		cmpV = strings.ToLower(v)
		cmpWant = strings.ToLower(s.val)
	}
	switch s.op {
	case attrEquals:
		return cmpV == cmpWant
	case attrContainsWord:
		for _, w := range strings.Fields(cmpV) {
			if w == cmpWant {
				return true
			}
		}
		return false
	case attrPrefix:
		return strings.HasPrefix(cmpV, cmpWant)
	case attrSuffix:
		return strings.HasSuffix(cmpV, cmpWant)
	case attrSubstring:
		return strings.Contains(cmpV, cmpWant)
	}
	return false
}

type notSimple struct{ inner compound }

func (s notSimple) match(d *domtree.Dom, id domtree.NodeId) bool {
	return !s.inner.matches(d, id)
}

type pseudoSimple struct{ kind string }

func (s pseudoSimple) match(d *domtree.Dom, id domtree.NodeId) bool {
	switch s.kind {
	case "checked":
		return d.IsChecked(id)
	case "disabled":
		return d.HasAttr(id, "disabled")
	case "first-child":
		return isNthChild(d, id, true)
	case "last-child":
		return isNthChild(d, id, false)
	}
	return false
}

func isNthChild(d *domtree.Dom, id domtree.NodeId, first bool) bool {
	parent, ok := d.Parent(id)
	if !ok {
		return false
	}
	var elems []domtree.NodeId
	for _, c := range d.Children(parent) {
		if n := d.Node(c); n != nil && n.IsElement() {
			elems = append(elems, c)
		}
	}
	if len(elems) == 0 {
		return false
	}
	if first {
		return elems[0] == id
	}
	return elems[len(elems)-1] == id
}

// parseCompound parses one compound selector token like
// `div.foo#bar[type=text]:checked` into its simple-selector list.
func parseCompound(tok string) ([]simple, error) {
	var out []simple
	i := 0
	n := len(tok)

	readIdent := func() string {
		start := i
		for i < n && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' && tok[i] != ':' {
			i++
		}
		return tok[start:i]
	}

	if i < n && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' && tok[i] != ':' {
		tag := strings.ToLower(readIdent())
		if tag != "" {
			out = append(out, tagSimple{tag: tag})
		}
	}

	for i < n {
		switch tok[i] {
		case '.':
			i++
			start := i
			for i < n && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' && tok[i] != ':' {
				i++
			}
			out = append(out, classSimple{class: tok[start:i]})
		case '#':
			i++
			start := i
			for i < n && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' && tok[i] != ':' {
				i++
			}
			out = append(out, idSimple{id: tok[start:i]})
		case '[':
			end := strings.IndexByte(tok[i:], ']')
			if end < 0 {
				return nil, parseErr("unterminated attribute selector in %q", tok)
			}
			body := tok[i+1 : i+end]
			out = append(out, parseAttrSelector(body))
			i += end + 1
		case ':':
			i++
			start := i
			for i < n && tok[i] != '.' && tok[i] != '#' && tok[i] != '[' && tok[i] != ':' && tok[i] != '(' {
				i++
			}
			name := tok[start:i]
			if name == "not" && i < n && tok[i] == '(' {
				end := strings.LastIndexByte(tok, ')')
				if end < i {
					return nil, parseErr(":not(...) missing closing paren in %q", tok)
				}
				inner, err := parseChain(tok[i+1 : end])
				if err != nil {
					return nil, err
				}
				out = append(out, notSimple{inner: inner})
				i = end + 1
				continue
			}
			out = append(out, pseudoSimple{kind: name})
		default:
			i++
		}
	}
	return out, nil
}

func parseAttrSelector(body string) simple {
	for _, op := range []struct {
		tok string
		kind attrOp
	}{
		{"~=", attrContainsWord},
		{"^=", attrPrefix},
		{"$=", attrSuffix},
		{"*=", attrSubstring},
		{"=", attrEquals},
	} {
		if idx := strings.Index(body, op.tok); idx >= 0 {
			name := strings.ToLower(strings.TrimSpace(body[:idx]))
			val := strings.Trim(strings.TrimSpace(body[idx+len(op.tok):]), `"'`)
			return attrSimple{name: name, op: op.kind, val: val}
		}
	}
	return attrSimple{name: strings.ToLower(strings.TrimSpace(body)), op: attrPresent}
}
