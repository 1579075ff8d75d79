package domtree

// FormState is the per-instance state a form control carries in addition
// to its attributes: the current value (which a property
// set mutates independently of the value attribute once the control is
// dirty), checkedness for checkbox/radio inputs, and the dirtiness flag
// that decides whether a later setAttribute("value", …) still resets the
// current value.
type FormState struct {
	Value   string
	Checked bool
	Dirty   bool
}

// EnsureFormState returns id's FormState, allocating a zero-value one on
// first use.
func (d *Dom) EnsureFormState(id NodeId) *FormState {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	if n.FormState == nil {
		n.FormState = &FormState{}
	}
	return n.FormState
}

// IsChecked reports whether id is currently checked: the live FormState if
// one has been established, else the presence of the checked attribute as
// the initial value a freshly parsed control would report.
func (d *Dom) IsChecked(id NodeId) bool {
	n := d.Node(id)
	if n == nil {
		return false
	}
	if n.FormState != nil {
		return n.FormState.Checked
	}
	return d.HasAttr(id, "checked")
}

// CurrentValue returns id's live value (see FormState.Value), falling back
// to the value attribute for a control whose FormState hasn't been
// established yet.
func (d *Dom) CurrentValue(id NodeId) string {
	n := d.Node(id)
	if n == nil {
		return ""
	}
	if n.FormState != nil {
		return n.FormState.Value
	}
	v, _ := d.GetAttr(id, "value")
	return v
}
