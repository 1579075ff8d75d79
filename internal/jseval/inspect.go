package jseval

import "github.com/domharness/domharness/internal/domtree"

// ElementRole exposes Dom.Role for callers outside the evaluator that need
// to inspect ARIA role resolution without going through a script.
func (it *Interp) ElementRole(id domtree.NodeId) string {
	return it.Dom.Role(id)
}

// DialogOpen reports whether id (a <dialog>) currently carries the open
// attribute.
func (it *Interp) DialogOpen(id domtree.NodeId) bool {
	return it.Dom.HasAttr(id, "open")
}

// DialogClosedBy reads id's resolved closedBy value the way the dialog's
// own IDL attribute does, defaulting to "auto".
func (it *Interp) DialogClosedBy(id domtree.NodeId) string {
	return closedByValue(it.Dom, id)
}
