package formctl

import "github.com/domharness/domharness/internal/domtree"

// optionValue returns an <option>'s effective value: its value attribute if
// set, else its text content.
func optionValue(d *domtree.Dom, option domtree.NodeId) string {
	if v, ok := d.GetAttr(option, "value"); ok {
		return v
	}
	return d.TextContent(option)
}

func options(d *domtree.Dom, selectID domtree.NodeId) []domtree.NodeId {
	return d.GetElementsByTagName(selectID, "option")
}

// SetSelectValue implements select.value = v: it selects the first option
// (in document order) whose effective value equals v, deselecting every
// other option. If no option matches, every option is deselected and the
// select reads back "".
func SetSelectValue(d *domtree.Dom, selectID domtree.NodeId, v string) {
	matched := false
	for _, opt := range options(d, selectID) {
		want := !matched && optionValue(d, opt) == v
		if want {
			matched = true
		}
		d.EnsureFormState(opt).Checked = want
	}
}

// SelectValue implements the select.value getter.
func SelectValue(d *domtree.Dom, selectID domtree.NodeId) string {
	for _, opt := range options(d, selectID) {
		if d.IsChecked(opt) {
			return optionValue(d, opt)
		}
	}
	return ""
}

// SetOptionSelected implements option.selected = true/false. Selecting one
// option of a single-select deselects every sibling option; multi-selects
// are left to the caller to detect via the select's "multiple" attribute.
func SetOptionSelected(d *domtree.Dom, selectID, optionID domtree.NodeId, selected bool, multiple bool) {
	if !multiple && selected {
		for _, opt := range options(d, selectID) {
			d.EnsureFormState(opt).Checked = opt == optionID
		}
		return
	}
	d.EnsureFormState(optionID).Checked = selected
}
