package domtree

import (
	"fmt"
	"strings"

	null "gopkg.in/guregu/null.v3"
)

// Dom owns every node for one document. NodeIds are stable for the Dom's
// lifetime (invariant I1): removed nodes are unlinked from their parent but
// their arena slot is never reused.
type Dom struct {
	nodes []*Node
	byID  map[string][]NodeId // id attribute value -> node ids that declare it, in insertion order
	root  NodeId
}

// NewDom creates an empty Dom with a single Document root node (NodeId 0).
func NewDom() *Dom {
	d := &Dom{byID: make(map[string][]NodeId)}
	d.root = d.allocate(&Node{Kind: KindDocument})
	return d
}

// Root returns the document node's id.
func (d *Dom) Root() NodeId { return d.root }

func (d *Dom) allocate(n *Node) NodeId {
	id := NodeId(len(d.nodes))
	d.nodes = append(d.nodes, n)
	return id
}

// Node returns the node for id, or nil if id is out of range.
func (d *Dom) Node(id NodeId) *Node {
	if int(id) < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return d.nodes[id]
}

// CreateElement allocates a new, unattached element node.
func (d *Dom) CreateElement(tag string) NodeId {
	tag = strings.ToLower(tag)
	return d.allocate(&Node{
		Kind:    KindElement,
		TagName: tag,
		Attrs:   NewAttrMap(),
		Parent:  null.IntFromPtr(nil),
	})
}

// CreateText allocates a new, unattached text node.
func (d *Dom) CreateText(text string) NodeId {
	return d.allocate(&Node{Kind: KindText, Text: text, Parent: null.IntFromPtr(nil)})
}

// Append attaches child as the last child of parent.
func (d *Dom) Append(parent, child NodeId) error {
	return d.InsertBefore(parent, child, NodeId(-1))
}

// InsertBefore inserts child into parent's children before refChild. If
// refChild is -1 (or not found among parent's children) the child is
// appended at the end.
func (d *Dom) InsertBefore(parent, child, refChild NodeId) error {
	p := d.Node(parent)
	if p == nil {
		return fmt.Errorf("domtree: no such parent node %d", parent)
	}
	c := d.Node(child)
	if c == nil {
		return fmt.Errorf("domtree: no such child node %d", child)
	}
	if c.Parent.Valid {
		_ = d.detach(child)
	}
	pos := len(p.Children)
	if refChild >= 0 {
		for i, ch := range p.Children {
			if ch == refChild {
				pos = i
				break
			}
		}
	}
	p.Children = append(p.Children, 0)
	copy(p.Children[pos+1:], p.Children[pos:])
	p.Children[pos] = child
	c.Parent = null.IntFrom(int64(parent))
	c.removed = false

	d.indexSubtree(child)
	return nil
}

// detach removes child from its current parent's children slice without
// touching the arena slot or descendants' index entries.
func (d *Dom) detach(child NodeId) error {
	c := d.Node(child)
	if c == nil || !c.Parent.Valid {
		return nil
	}
	parent := NodeId(c.Parent.Int64)
	p := d.Node(parent)
	if p == nil {
		return nil
	}
	for i, ch := range p.Children {
		if ch == child {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	return nil
}

// Remove unlinks child from its parent. Its NodeId remains valid (I1) but
// it is no longer reachable from Root().
func (d *Dom) Remove(child NodeId) error {
	c := d.Node(child)
	if c == nil {
		return fmt.Errorf("domtree: no such node %d", child)
	}
	d.unindexSubtree(child)
	if err := d.detach(child); err != nil {
		return err
	}
	c.Parent = null.IntFromPtr(nil)
	c.removed = true
	return nil
}

// ReplaceWith replaces old with newChildren (in order) at old's position in
// its parent, then detaches old.
func (d *Dom) ReplaceWith(old NodeId, newChildren ...NodeId) error {
	o := d.Node(old)
	if o == nil || !o.Parent.Valid {
		return fmt.Errorf("domtree: node %d has no parent", old)
	}
	parent := NodeId(o.Parent.Int64)
	for _, nc := range newChildren {
		if err := d.InsertBefore(parent, nc, old); err != nil {
			return err
		}
	}
	return d.Remove(old)
}

// Parent returns the parent id and whether one exists.
func (d *Dom) Parent(id NodeId) (NodeId, bool) {
	n := d.Node(id)
	if n == nil || !n.Parent.Valid {
		return 0, false
	}
	return NodeId(n.Parent.Int64), true
}

// Children returns the live child list of id.
func (d *Dom) Children(id NodeId) []NodeId {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	return n.Children
}

// Walk visits id and every descendant, document order, pre-order.
func (d *Dom) Walk(id NodeId, visit func(NodeId) bool) {
	if !visit(id) {
		return
	}
	for _, c := range d.Children(id) {
		d.Walk(c, visit)
	}
}

// Descendants returns every descendant of id (not including id itself), in
// document order. It is the one tree-walk primitive textContent,
// getElementsByTagName and the selector engine all build on.
func (d *Dom) Descendants(id NodeId) []NodeId {
	var out []NodeId
	for _, c := range d.Children(id) {
		out = append(out, c)
		out = append(out, d.Descendants(c)...)
	}
	return out
}

func (d *Dom) indexSubtree(id NodeId) {
	d.Walk(id, func(n NodeId) bool {
		node := d.Node(n)
		if node != nil && node.IsElement() {
			if idVal, ok := node.Attrs.Get("id"); ok && idVal != "" {
				d.addIDIndex(idVal, n)
			}
		}
		return true
	})
}

func (d *Dom) unindexSubtree(id NodeId) {
	d.Walk(id, func(n NodeId) bool {
		node := d.Node(n)
		if node != nil && node.IsElement() {
			if idVal, ok := node.Attrs.Get("id"); ok {
				d.removeIDIndex(idVal, n)
			}
		}
		return true
	})
}

func (d *Dom) addIDIndex(idVal string, n NodeId) {
	list := d.byID[idVal]
	for _, existing := range list {
		if existing == n {
			return
		}
	}
	d.byID[idVal] = append(list, n)
}

func (d *Dom) removeIDIndex(idVal string, n NodeId) {
	list := d.byID[idVal]
	for i, existing := range list {
		if existing == n {
			d.byID[idVal] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// NotifyIDAttrChanged must be called by attribute-mutation code whenever an
// element's id attribute is set, changed or removed, so GetByID's index
// stays correct without a full-tree rescan.
func (d *Dom) NotifyIDAttrChanged(n NodeId, oldID, newID string) {
	if oldID != "" {
		d.removeIDIndex(oldID, n)
	}
	if newID != "" {
		d.addIDIndex(newID, n)
	}
}

// GetByID returns the first element in document order whose id attribute
// equals idVal, or false if none do.
func (d *Dom) GetByID(idVal string) (NodeId, bool) {
	candidates := d.byID[idVal]
	if len(candidates) == 0 {
		return 0, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	best := NodeId(-1)
	bestOrder := -1
	order := 0
	found := false
	d.Walk(d.root, func(n NodeId) bool {
		order++
		for _, c := range candidates {
			if c == n {
				if !found {
					best = n
					bestOrder = order
					found = true
				} else if order < bestOrder {
					best = n
					bestOrder = order
				}
			}
		}
		return true
	})
	if !found {
		return 0, false
	}
	return best, true
}

// GetElementsByTagName returns every element under root whose tag name
// equals tag (case-insensitive), document order. tag == "*" matches any
// element.
func (d *Dom) GetElementsByTagName(root NodeId, tag string) []NodeId {
	tag = strings.ToLower(tag)
	var out []NodeId
	for _, id := range d.Descendants(root) {
		n := d.Node(id)
		if n != nil && n.IsElement() && (tag == "*" || n.TagName == tag) {
			out = append(out, id)
		}
	}
	return out
}

// TextContent concatenates descendant text nodes in document order, exactly
// with no whitespace normalisation applied.
func (d *Dom) TextContent(id NodeId) string {
	n := d.Node(id)
	if n == nil {
		return ""
	}
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range d.Children(id) {
		sb.WriteString(d.TextContent(c))
	}
	return sb.String()
}
