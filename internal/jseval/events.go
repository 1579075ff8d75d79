package jseval

import (
	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/formctl"
	"github.com/domharness/domharness/internal/jsvalue"
)

// addEventListener registers callback for type on id. once marks a
// listener added via the {once: true} options form, removed after its
// first invocation.
func (it *Interp) addEventListener(id domtree.NodeId, typ string, callback jsvalue.Value, once bool) {
	byType := it.listeners[id]
	if byType == nil {
		byType = map[string][]*listener{}
		it.listeners[id] = byType
	}
	for _, l := range byType[typ] {
		if jsvalue.StrictEquals(l.callback, callback) {
			return
		}
	}
	byType[typ] = append(byType[typ], &listener{callback: callback, once: once})
}

func (it *Interp) removeEventListener(id domtree.NodeId, typ string, callback jsvalue.Value) {
	byType := it.listeners[id]
	if byType == nil {
		return
	}
	kept := byType[typ][:0]
	for _, l := range byType[typ] {
		if !jsvalue.StrictEquals(l.callback, callback) {
			kept = append(kept, l)
		}
	}
	byType[typ] = kept
}

// newEventObject builds the Event value a dispatch passes to its
// listeners: type/target/currentTarget plus the handful of methods a
// listener can call on it (preventDefault/stopPropagation/
// stopImmediatePropagation).
func (it *Interp) newEventObject(typ string, target *jsvalue.Object, bubbles, cancelable bool) (*jsvalue.Object, *eventFlags) {
	flags := &eventFlags{}
	e := &jsvalue.Object{Class: ClassEvent}
	e.Set("type", jsvalue.String(typ))
	e.Set("target", target)
	e.Set("currentTarget", target)
	e.Set("bubbles", jsvalue.BoolValue(bubbles))
	e.Set("cancelable", jsvalue.BoolValue(cancelable))
	e.Set("defaultPrevented", jsvalue.False)
	e.Set("preventDefault", jsvalue.NewNativeFunc("preventDefault", func(_ jsvalue.Value, _ []jsvalue.Value) (jsvalue.Value, error) {
		if cancelable {
			flags.defaultPrevented = true
			e.Set("defaultPrevented", jsvalue.True)
		}
		return jsvalue.UndefinedValue, nil
	}))
	e.Set("stopPropagation", jsvalue.NewNativeFunc("stopPropagation", func(_ jsvalue.Value, _ []jsvalue.Value) (jsvalue.Value, error) {
		flags.stopped = true
		return jsvalue.UndefinedValue, nil
	}))
	e.Set("stopImmediatePropagation", jsvalue.NewNativeFunc("stopImmediatePropagation", func(_ jsvalue.Value, _ []jsvalue.Value) (jsvalue.Value, error) {
		flags.stopped = true
		flags.stoppedImmediate = true
		return jsvalue.UndefinedValue, nil
	}))
	return e, flags
}

type eventFlags struct {
	defaultPrevented bool
	stopped          bool
	stoppedImmediate bool
}

// dispatchEvent fires a synthetic event at id and, when bubbles is set,
// bubbles it up through ancestors unless a listener calls
// stopPropagation. A listener's effects
// on the DOM before a throw stay committed — the same partial-commit
// contract statement execution gives a script — but an uncaught throw
// aborts the dispatch at that point: the remaining listeners on the
// current node are skipped, and so is any further bubbling to ancestors.
// The error is remembered and returned once dispatch stops so the caller
// can surface it.
func (it *Interp) dispatchEvent(id domtree.NodeId, typ string, bubbles, cancelable bool) (bool, error) {
	target := it.wrapNode(id)
	evt, flags := it.newEventObject(typ, target, bubbles, cancelable)
	var firstErr error
	cur := id
	first := true
loop:
	for {
		if !first && !bubbles {
			break
		}
		first = false
		evt.Set("currentTarget", it.wrapNode(cur))
		for _, l := range append([]*listener(nil), it.listeners[cur][typ]...) {
			if _, err := it.Call(l.callback, it.wrapNode(cur), []jsvalue.Value{evt}); err != nil {
				firstErr = err
				break loop
			}
			if l.once {
				it.removeEventListener(cur, typ, l.callback)
			}
			if flags.stoppedImmediate {
				break
			}
		}
		if flags.stopped {
			break
		}
		parent, ok := it.Dom.Parent(cur)
		if !ok {
			break
		}
		cur = parent
	}
	return flags.defaultPrevented, firstErr
}

// clickElement runs a click the way a real browser does: the
// checkbox/radio toggle happens first (matching a real click's
// "activation behavior runs before the event" ordering), then the
// "click" event dispatches and bubbles, and only if nothing calls
// preventDefault does a submit/reset control act on its owning form.
func (it *Interp) clickElement(id domtree.NodeId) error {
	d := it.Dom
	if d.HasAttr(id, "disabled") {
		return nil
	}
	if formctl.IsCheckboxInput(d, id) {
		formctl.SetChecked(d, id, !d.IsChecked(id))
	} else if formctl.IsRadioInput(d, id) && !d.IsChecked(id) {
		formctl.SetChecked(d, id, true)
	}
	prevented, err := it.dispatchEvent(id, "click", true, true)
	if err != nil {
		return err
	}
	if prevented {
		return nil
	}
	if formctl.IsSubmitControl(d, id) {
		return it.submitOwningForm(id)
	}
	if formctl.IsResetControl(d, id) {
		it.resetOwningForm(id)
	}
	return nil
}

// submitOwningForm fires the owning form's "submit" event; actually
// navigating is outside this harness's scope (no network layer), so a
// script observes submission only through its own submit listener.
func (it *Interp) submitOwningForm(id domtree.NodeId) error {
	formID, ok := it.Dom.Parent(id)
	for ok {
		if n := it.Dom.Node(formID); n != nil && n.IsElement() && n.TagName == "form" {
			_, err := it.dispatchEvent(formID, "submit", true, true)
			return err
		}
		formID, ok = it.Dom.Parent(formID)
	}
	return nil
}

func (it *Interp) resetOwningForm(id domtree.NodeId) {
	d := it.Dom
	formID, ok := d.Parent(id)
	for ok {
		n := d.Node(formID)
		if n != nil && n.IsElement() && n.TagName == "form" {
			for _, ctrl := range d.Descendants(formID) {
				if !formctl.IsFormControl(d, ctrl) {
					continue
				}
				if v, has := d.GetAttr(ctrl, "value"); has {
					formctl.OnValueAttrSet(d, ctrl, v)
				} else {
					formctl.OnValueAttrRemoved(d, ctrl)
				}
				if formctl.IsCheckboxInput(d, ctrl) || formctl.IsRadioInput(d, ctrl) {
					formctl.SetChecked(d, ctrl, d.HasAttr(ctrl, "checked"))
				}
			}
			return
		}
		formID, ok = d.Parent(formID)
	}
}
