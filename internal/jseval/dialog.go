package jseval

import (
	"strings"

	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/jsvalue"
)

// dialogData holds the one bit of <dialog> state that has nowhere to live
// as an attribute: returnValue is plain script-settable state, never
// reflected anywhere in markup.
type dialogData struct {
	returnValue string
}

func (it *Interp) dialogState(id domtree.NodeId) *dialogData {
	if ds, ok := it.dialogs[id]; ok {
		return ds
	}
	ds := &dialogData{}
	it.dialogs[id] = ds
	return ds
}

// dialogGet resolves the <dialog>-specific property surface (open/
// closedBy/returnValue) once elementGet's own switch has missed; anything
// not recognized here, or not a <dialog>, falls through to the generic
// property bag via the (false) result.
func (it *Interp) dialogGet(id domtree.NodeId, key string) (jsvalue.Value, bool) {
	d := it.Dom
	switch key {
	case "open":
		return jsvalue.BoolValue(d.HasAttr(id, "open")), true
	case "returnValue":
		return jsvalue.String(it.dialogState(id).returnValue), true
	case "closedBy":
		return jsvalue.String(closedByValue(d, id)), true
	}
	return nil, false
}

func (it *Interp) dialogSet(id domtree.NodeId, key string, v jsvalue.Value) (bool, error) {
	d := it.Dom
	switch key {
	case "open":
		d.ToggleAttribute(id, "open", boolPtr(jsvalue.ToBoolean(v)))
		return true, nil
	case "returnValue":
		it.dialogState(id).returnValue = jsvalue.ToString(v)
		return true, nil
	case "closedBy":
		val := strings.ToLower(jsvalue.ToString(v))
		switch val {
		case "any", "closerequest", "none":
			d.SetAttr(id, "closedby", val)
			return true, nil
		}
		return true, jsError("TypeError", "The provided value '"+jsvalue.ToString(v)+"' is not a valid enum value of type CloseWatcherResetReason")
	}
	return false, nil
}

// closedByValue reads the closedby attribute back, defaulting to "auto"
// when absent the way the dialog element's IDL attribute does.
func closedByValue(d *domtree.Dom, id domtree.NodeId) string {
	if v, ok := d.GetAttr(id, "closedby"); ok {
		v = strings.ToLower(v)
		switch v {
		case "any", "closerequest", "none":
			return v
		}
	}
	return "auto"
}

// dialogMethod implements showModal/show/close/requestClose. closedBy only
// gates platform-triggered dismissal (Esc, light-dismiss click) that this
// harness has no input model for; a script's own requestClose() call
// always runs its cancel-then-close sequence regardless of closedBy.
func (it *Interp) dialogMethod(id domtree.NodeId, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	d := it.Dom
	switch method {
	case "showModal", "show":
		d.SetAttr(id, "open", "")
		return jsvalue.UndefinedValue, true, nil
	case "close":
		if len(args) > 0 {
			it.dialogState(id).returnValue = jsvalue.ToString(args[0])
		}
		d.RemoveAttr(id, "open")
		_, err := it.dispatchEvent(id, "close", false, false)
		return jsvalue.UndefinedValue, true, err
	case "requestClose":
		if len(args) > 0 {
			it.dialogState(id).returnValue = jsvalue.ToString(args[0])
		}
		prevented, err := it.dispatchEvent(id, "cancel", false, true)
		if err != nil {
			return nil, true, err
		}
		if prevented {
			return jsvalue.UndefinedValue, true, nil
		}
		d.RemoveAttr(id, "open")
		_, err = it.dispatchEvent(id, "close", false, false)
		return jsvalue.UndefinedValue, true, err
	}
	return nil, false, nil
}
