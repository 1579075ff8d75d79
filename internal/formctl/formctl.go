// Package formctl classifies form-control elements and keeps their
// per-instance state (current value, checkedness, dirtiness, validity) in
// sync with attribute mutations and user-facing property writes, the way a
// browser's HTMLInputElement/HTMLSelectElement reflection layer does.
package formctl

import (
	"strings"

	"github.com/domharness/domharness/internal/domtree"
)

// controlTags are the elements formctl tracks state for.
var controlTags = map[string]bool{
	"input": true, "select": true, "textarea": true, "button": true,
}

// IsFormControl reports whether id is one of input/select/textarea/button.
func IsFormControl(d *domtree.Dom, id domtree.NodeId) bool {
	n := d.Node(id)
	return n != nil && n.IsElement() && controlTags[n.TagName]
}

func inputType(d *domtree.Dom, id domtree.NodeId) string {
	t, _ := d.GetAttr(id, "type")
	if t == "" {
		return "text"
	}
	return strings.ToLower(t)
}

// IsCheckboxInput reports whether id is <input type=checkbox>.
func IsCheckboxInput(d *domtree.Dom, id domtree.NodeId) bool {
	n := d.Node(id)
	return n != nil && n.TagName == "input" && inputType(d, id) == "checkbox"
}

// IsRadioInput reports whether id is <input type=radio>.
func IsRadioInput(d *domtree.Dom, id domtree.NodeId) bool {
	n := d.Node(id)
	return n != nil && n.TagName == "input" && inputType(d, id) == "radio"
}

// IsSubmitControl reports whether id, when inside a <form>, triggers
// submission by default: a typeless or type=submit <button>, or
// <input type=submit|image>.
func IsSubmitControl(d *domtree.Dom, id domtree.NodeId) bool {
	n := d.Node(id)
	if n == nil {
		return false
	}
	switch n.TagName {
	case "button":
		t, has := d.GetAttr(id, "type")
		return !has || strings.EqualFold(t, "submit")
	case "input":
		t := inputType(d, id)
		return t == "submit" || t == "image"
	}
	return false
}

// IsResetControl reports whether id resets its form by default:
// <input type=reset> or <button type=reset>.
func IsResetControl(d *domtree.Dom, id domtree.NodeId) bool {
	n := d.Node(id)
	if n == nil {
		return false
	}
	switch n.TagName {
	case "button":
		t, _ := d.GetAttr(id, "type")
		return strings.EqualFold(t, "reset")
	case "input":
		return inputType(d, id) == "reset"
	}
	return false
}

// Init establishes id's initial FormState from its attributes, as element
// creation / HTML parsing would. Safe to call more than once; it only acts
// the first time (FormState still nil).
func Init(d *domtree.Dom, id domtree.NodeId) {
	n := d.Node(id)
	if n == nil || !n.IsElement() || !controlTags[n.TagName] || n.FormState != nil {
		return
	}
	fs := d.EnsureFormState(id)
	if v, ok := d.GetAttr(id, "value"); ok {
		fs.Value = v
	}
	if IsCheckboxInput(d, id) || IsRadioInput(d, id) {
		fs.Checked = d.HasAttr(id, "checked")
	}
}

// SetValue implements the value property setter: it mutates only the
// current value and marks the control dirty, so a later
// setAttribute("value", …) no longer resets it.
func SetValue(d *domtree.Dom, id domtree.NodeId, v string) {
	Init(d, id)
	fs := d.EnsureFormState(id)
	fs.Value = v
	fs.Dirty = true
}

// OnValueAttrSet must be called whenever code sets the value attribute
// directly (setAttribute, or the HTML parser). It resets the current value
// unless the control has already been made dirty by a property write.
func OnValueAttrSet(d *domtree.Dom, id domtree.NodeId, v string) {
	Init(d, id)
	fs := d.EnsureFormState(id)
	if !fs.Dirty {
		fs.Value = v
	}
}

// OnValueAttrRemoved must be called whenever code removes the value
// attribute; it clears both the current value and the dirtiness flag.
func OnValueAttrRemoved(d *domtree.Dom, id domtree.NodeId) {
	Init(d, id)
	fs := d.EnsureFormState(id)
	fs.Value = ""
	fs.Dirty = false
}
