package domtree

import "strings"

// GetAttr returns an element's attribute value (case-insensitive name), or
// ("", false) if absent or id is not an element.
func (d *Dom) GetAttr(id NodeId, name string) (string, bool) {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return "", false
	}
	return n.Attrs.Get(name)
}

// HasAttr reports whether an element carries the named attribute.
func (d *Dom) HasAttr(id NodeId, name string) bool {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return false
	}
	return n.Attrs.Has(name)
}

// SetAttr sets an element's attribute, preserving case on first insertion
// and keeping the id index in sync.
func (d *Dom) SetAttr(id NodeId, name, value string) {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return
	}
	if strings.EqualFold(name, "id") {
		oldID, _ := n.Attrs.Get("id")
		n.Attrs.Set(name, value)
		d.NotifyIDAttrChanged(id, oldID, value)
		return
	}
	n.Attrs.Set(name, value)
}

// RemoveAttr removes an element's attribute, returning whether it was
// present.
func (d *Dom) RemoveAttr(id NodeId, name string) bool {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return false
	}
	if strings.EqualFold(name, "id") {
		oldID, had := n.Attrs.Get("id")
		ok := n.Attrs.Remove(name)
		if had {
			d.NotifyIDAttrChanged(id, oldID, "")
		}
		return ok
	}
	return n.Attrs.Remove(name)
}

// ToggleAttribute implements Element.toggleAttribute(name, force?): with no
// force argument it flips presence; with one, it sets presence to force's
// value. Returns the attribute's presence after the call.
func (d *Dom) ToggleAttribute(id NodeId, name string, force *bool) bool {
	present := d.HasAttr(id, name)
	want := !present
	if force != nil {
		want = *force
	}
	if want == present {
		return present
	}
	if want {
		d.SetAttr(id, name, "")
	} else {
		d.RemoveAttr(id, name)
	}
	return want
}

// TagName returns the element's uppercased tag name (what Element.tagName
// reads back in JS), or "" if id is not an element.
func (d *Dom) TagName(id NodeId) string {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return ""
	}
	return strings.ToUpper(n.TagName)
}

// ClassList splits the class attribute on ASCII whitespace, dropping empty
// tokens, matching DOMTokenList semantics closely enough for the selector
// engine and className reflection.
func (d *Dom) ClassList(id NodeId) []string {
	classAttr, _ := d.GetAttr(id, "class")
	return strings.Fields(classAttr)
}

// HasClass reports whether id's class attribute contains cls.
func (d *Dom) HasClass(id NodeId, cls string) bool {
	for _, c := range d.ClassList(id) {
		if c == cls {
			return true
		}
	}
	return false
}
