// Package selector implements the CSS-selector subset a DOM needs for
// querySelector/querySelectorAll: comma-separated lists, descendant/child/
// adjacent-sibling combinators, and a handful of simple-selector and
// pseudo-class forms.
package selector

import (
	"fmt"
	"strings"

	"github.com/domharness/domharness/internal/domtree"
)

// List is a parsed comma-separated selector list; a node matches the list
// if it matches any member.
type List struct {
	members []compound // last compound of each chain, linking back via combinator
}

// Parse compiles a selector string. It accepts the grammar documented for
// the DOM query methods; anything outside that grammar is a parse error.
func Parse(src string) (*List, error) {
	list := &List{}
	for _, part := range splitTopLevelComma(src) {
		chain, err := parseChain(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		list.members = append(list.members, chain)
	}
	return list, nil
}

// Matches reports whether id satisfies the selector list.
func (l *List) Matches(d *domtree.Dom, id domtree.NodeId) bool {
	for _, c := range l.members {
		if c.matches(d, id) {
			return true
		}
	}
	return false
}

// QuerySelector returns the first descendant of root matching sel in
// document order, or false if none match.
func QuerySelector(d *domtree.Dom, root domtree.NodeId, sel string) (domtree.NodeId, bool, error) {
	list, err := Parse(sel)
	if err != nil {
		return 0, false, err
	}
	for _, id := range d.Descendants(root) {
		n := d.Node(id)
		if n != nil && n.IsElement() && list.Matches(d, id) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// QuerySelectorAll returns every descendant of root matching sel, document
// order, each at most once.
func QuerySelectorAll(d *domtree.Dom, root domtree.NodeId, sel string) ([]domtree.NodeId, error) {
	list, err := Parse(sel)
	if err != nil {
		return nil, err
	}
	var out []domtree.NodeId
	for _, id := range d.Descendants(root) {
		n := d.Node(id)
		if n != nil && n.IsElement() && list.Matches(d, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func splitTopLevelComma(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func parseErr(format string, args ...interface{}) error {
	return fmt.Errorf("selector: "+format, args...)
}
