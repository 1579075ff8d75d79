package formctl

import "github.com/domharness/domharness/internal/domtree"

// SetChecked sets id's checkedness. For a radio input it also clears the
// checked state of every other radio sharing the same name within the
// nearest owning form (or the document if the radio is unowned), enforcing
// the mutual-exclusion invariant of a radio group.
func SetChecked(d *domtree.Dom, id domtree.NodeId, checked bool) {
	Init(d, id)
	fs := d.EnsureFormState(id)
	fs.Checked = checked

	if checked && IsRadioInput(d, id) {
		clearSiblingRadios(d, id)
	}
}

func clearSiblingRadios(d *domtree.Dom, id domtree.NodeId) {
	name, _ := d.GetAttr(id, "name")
	if name == "" {
		return
	}
	owner := ownerForm(d, id)
	for _, other := range radiosInScope(d, owner) {
		if other == id {
			continue
		}
		otherName, _ := d.GetAttr(other, "name")
		if otherName == name {
			Init(d, other)
			d.EnsureFormState(other).Checked = false
		}
	}
}

// ownerForm returns the nearest ancestor <form>, or the document root if
// id isn't owned by one.
func ownerForm(d *domtree.Dom, id domtree.NodeId) domtree.NodeId {
	parent, ok := d.Parent(id)
	for ok {
		if n := d.Node(parent); n != nil && n.IsElement() && n.TagName == "form" {
			return parent
		}
		parent, ok = d.Parent(parent)
	}
	return d.Root()
}

// radiosInScope returns every radio input owned by scope. When scope is
// the document root (an "unowned" group), it excludes radios that belong
// to some other <form>, so two forms' same-named radio groups stay
// independent.
func radiosInScope(d *domtree.Dom, scope domtree.NodeId) []domtree.NodeId {
	unowned := scope == d.Root()
	var out []domtree.NodeId
	for _, id := range d.GetElementsByTagName(scope, "input") {
		if !IsRadioInput(d, id) {
			continue
		}
		if unowned && ownerForm(d, id) != d.Root() {
			continue
		}
		out = append(out, id)
	}
	return out
}
