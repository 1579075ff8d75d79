// Package domtree implements the in-memory DOM: a node arena addressed by
// dense NodeId values, element attributes, ARIA role resolution, and HTML
// serialization. It owns no JavaScript semantics; the evaluator package
// drives it.
package domtree

import (
	null "gopkg.in/guregu/null.v3"
)

// NodeId is a dense, append-only index into a Dom's node arena. Zero is a
// valid id (the document node); there is no reserved "no node" sentinel —
// callers track absence with null.Int or a bool ok return, the way
// GetByID does.
type NodeId int

// Kind distinguishes the three node shapes the spec requires.
type Kind int

const (
	KindDocument Kind = iota
	KindElement
	KindText
)

// Node is the tagged union described by the spec: every node carries a
// parent (absent only for the document root) and an ordered child list;
// the two are maintained as mirror images by the tree-edit methods in
// dom.go.
type Node struct {
	Kind     Kind
	Parent   null.Int // NodeId of the parent, invalid for the document root
	Children []NodeId

	// Element fields, valid when Kind == KindElement.
	TagName string
	Attrs   *AttrMap

	// FormState holds per-instance form-control state (current value,
	// checkedness, dirtiness) that lives alongside but independent of
	// Attrs; nil for elements that aren't form controls. Populated and
	// mutated through the formctl package.
	FormState *FormState

	// Text fields, valid when Kind == KindText.
	Text string

	// removed marks a node unlinked from its parent; its slot stays
	// allocated (invariant I1 in the spec) so stale NodeIds never alias a
	// different node later created.
	removed bool
}

func (n *Node) IsElement() bool  { return n.Kind == KindElement }
func (n *Node) IsText() bool     { return n.Kind == KindText }
func (n *Node) IsDocument() bool { return n.Kind == KindDocument }

// voidTags never have an end tag or children; self-closing syntax is
// accepted but not required.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidTag reports whether tag (already lowercased) never takes children.
func IsVoidTag(tag string) bool { return voidTags[tag] }

// rawTextTags hold a single verbatim text child instead of parsed markup.
var rawTextTags = map[string]bool{"script": true, "style": true}

// IsRawTextTag reports whether tag is a raw-text container.
func IsRawTextTag(tag string) bool { return rawTextTags[tag] }
