package jseval

import (
	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/htmlparse"
)

// parseFragmentInto parses an HTML fragment string into its own scratch
// Dom, for innerHTML/insertAdjacentHTML writes: reusing the full tag-soup
// parser for fragments keeps fragment parsing bug-for-bug consistent with
// whole-document parsing instead of a second, simpler implementation.
func parseFragmentInto(html string) (*domtree.Dom, []htmlparse.ScriptSource, error) {
	return htmlparse.Parse(html)
}

// moveSubtree recursively recreates the subtree rooted at srcID (from a
// scratch fragment Dom) as a new subtree under dstParent in dst, since
// NodeIds and node storage are never shared across two Dom instances.
// Embedded <script> text is copied as plain markup, not executed — a
// fragment written via innerHTML never runs its own scripts, matching
// real browser behaviour for the non-`document.write` insertion path.
func moveSubtree(src, dst *domtree.Dom, srcID domtree.NodeId, dstParent domtree.NodeId) {
	n := src.Node(srcID)
	if n == nil {
		return
	}
	if n.IsText() {
		id := dst.CreateText(n.Text)
		dst.Append(dstParent, id)
		return
	}
	if !n.IsElement() {
		return
	}
	id := dst.CreateElement(n.TagName)
	if n.Attrs != nil {
		for _, k := range n.Attrs.Keys() {
			v, _ := n.Attrs.Get(k)
			dst.SetAttr(id, k, v)
		}
	}
	dst.Append(dstParent, id)
	for _, c := range src.Children(srcID) {
		moveSubtree(src, dst, c, id)
	}
}
