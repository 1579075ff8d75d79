package selector

import (
	"strings"

	"github.com/domharness/domharness/internal/domtree"
)

// combinator links a compound selector to the one its match must relate to.
type combinator byte

const (
	combNone       combinator = 0 // no ancestor step; this is the leftmost compound
	combDescendant combinator = ' '
	combChild      combinator = '>'
	combAdjacent   combinator = '+'
)

// simple is one bracketed/dotted/hashed condition within a compound selector.
type simple interface {
	match(d *domtree.Dom, id domtree.NodeId) bool
}

// compound is a run of simple selectors with no combinator between them
// (e.g. "div.foo#bar[type=text]"), plus a link to the compound its match
// must relate to via comb.
type compound struct {
	simples []simple
	comb    combinator
	prev    *compound // nil if comb == combNone
}

func (c compound) matches(d *domtree.Dom, id domtree.NodeId) bool {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return false
	}
	for _, s := range c.simples {
		if !s.match(d, id) {
			return false
		}
	}
	if c.prev == nil {
		return true
	}
	switch c.comb {
	case combChild:
		parent, ok := d.Parent(id)
		return ok && c.prev.matches(d, parent)
	case combAdjacent:
		prevSib, ok := precedingSibling(d, id)
		return ok && c.prev.matches(d, prevSib)
	default: // descendant
		parent, ok := d.Parent(id)
		for ok {
			if c.prev.matches(d, parent) {
				return true
			}
			parent, ok = d.Parent(parent)
		}
		return false
	}
}

func precedingSibling(d *domtree.Dom, id domtree.NodeId) (domtree.NodeId, bool) {
	parent, ok := d.Parent(id)
	if !ok {
		return 0, false
	}
	siblings := d.Children(parent)
	for i, s := range siblings {
		if s == id && i > 0 {
			return siblings[i-1], true
		}
	}
	return 0, false
}

func parseChain(src string) (compound, error) {
	tokens, err := tokenizeChain(src)
	if err != nil {
		return compound{}, err
	}
	if len(tokens) == 0 {
		return compound{}, parseErr("empty selector")
	}

	var cur compound
	cur.simples, err = parseCompound(tokens[0])
	if err != nil {
		return compound{}, err
	}
	for i := 1; i < len(tokens); i += 2 {
		comb := combinator(tokens[i][0])
		simples, err := parseCompound(tokens[i+1])
		if err != nil {
			return compound{}, err
		}
		prev := cur
		cur = compound{simples: simples, comb: comb, prev: &prev}
	}
	return cur, nil
}

// tokenizeChain splits a selector chain into alternating compound/combinator
// tokens: ["div.a", ">", "span"] for "div.a > span", collapsing bare
// whitespace runs between compounds into the descendant combinator.
func tokenizeChain(src string) ([]string, error) {
	// Isolate '>' and '+' as their own whitespace-delimited tokens so
	// "div>span" and "div > span" tokenize identically.
	var spaced strings.Builder
	for _, r := range src {
		if r == '>' || r == '+' {
			spaced.WriteByte(' ')
			spaced.WriteRune(r)
			spaced.WriteByte(' ')
			continue
		}
		spaced.WriteRune(r)
	}
	fields := strings.Fields(spaced.String())

	var out []string
	expectCompound := true
	for _, f := range fields {
		isComb := f == ">" || f == "+"
		if isComb {
			if expectCompound {
				return nil, parseErr("combinator %q with no left operand", f)
			}
			out = append(out, f)
			expectCompound = true
			continue
		}
		if !expectCompound {
			out = append(out, " ")
		}
		out = append(out, f)
		expectCompound = false
	}
	if expectCompound {
		return nil, parseErr("combinator with no right operand")
	}
	return out, nil
}
