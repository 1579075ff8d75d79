package jseval

import (
	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/jsvalue"
	"github.com/domharness/domharness/internal/selector"
)

func (it *Interp) documentMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "getElementById":
		if id, ok := it.Dom.GetByID(jsvalue.ToString(arg0(args))); ok {
			return it.wrapNode(id), true, nil
		}
		return jsvalue.NullValue, true, nil
	case "getElementsByTagName":
		return it.wrapNodeList(it.Dom.GetElementsByTagName(it.Dom.Root(), jsvalue.ToString(arg0(args)))), true, nil
	case "getElementsByClassName":
		ids, err := selector.QuerySelectorAll(it.Dom, it.Dom.Root(), "."+jsvalue.ToString(arg0(args)))
		if err != nil {
			return nil, true, err
		}
		return it.wrapNodeList(ids), true, nil
	case "querySelector":
		v, err := it.querySelectorOn(it.Dom.Root(), jsvalue.ToString(arg0(args)))
		return v, true, err
	case "querySelectorAll":
		v, err := it.querySelectorAllOn(it.Dom.Root(), jsvalue.ToString(arg0(args)))
		return v, true, err
	case "createElement":
		id := it.Dom.CreateElement(jsvalue.ToString(arg0(args)))
		return it.wrapNode(id), true, nil
	case "createTextNode":
		id := it.Dom.CreateText(jsvalue.ToString(arg0(args)))
		return it.wrapNode(id), true, nil
	case "createDocumentFragment":
		id := it.Dom.CreateElement("#document-fragment")
		return it.wrapNode(id), true, nil
	case "addEventListener":
		it.addEventListener(it.Dom.Root(), jsvalue.ToString(arg0(args)), arg1(args), listenerOnce(args))
		return jsvalue.UndefinedValue, true, nil
	case "removeEventListener":
		it.removeEventListener(it.Dom.Root(), jsvalue.ToString(arg0(args)), arg1(args))
		return jsvalue.UndefinedValue, true, nil
	}
	return nil, false, nil
}

func (it *Interp) windowMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "addEventListener":
		it.addEventListener(it.Dom.Root(), "window:"+jsvalue.ToString(arg0(args)), arg1(args), listenerOnce(args))
		return jsvalue.UndefinedValue, true, nil
	case "removeEventListener":
		it.removeEventListener(it.Dom.Root(), "window:"+jsvalue.ToString(arg0(args)), arg1(args))
		return jsvalue.UndefinedValue, true, nil
	case "getComputedStyle":
		return jsvalue.NewObject(), true, nil
	case "alert", "confirm", "prompt":
		return jsvalue.UndefinedValue, true, nil
	}
	return nil, false, nil
}

// listenerOnce reads the {once: true} option out of addEventListener's
// third argument, which may be a plain boolean (the legacy useCapture
// form, which this harness doesn't otherwise distinguish) or an options
// object.
func listenerOnce(args []jsvalue.Value) bool {
	if len(args) < 3 {
		return false
	}
	if o, ok := args[2].(*jsvalue.Object); ok {
		return jsvalue.ToBoolean(o.Get("once"))
	}
	return false
}

func (it *Interp) elementMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	id, ok := it.nodeID(o)
	if !ok {
		return nil, false, nil
	}
	d := it.Dom
	switch method {
	case "getAttribute":
		v, has := d.GetAttr(id, jsvalue.ToString(arg0(args)))
		if !has {
			return jsvalue.NullValue, true, nil
		}
		return jsvalue.String(v), true, nil
	case "hasAttribute":
		return jsvalue.BoolValue(d.HasAttr(id, jsvalue.ToString(arg0(args)))), true, nil
	case "setAttribute":
		name := jsvalue.ToString(arg0(args))
		val := jsvalue.ToString(arg1(args))
		old, _ := d.GetAttr(id, "id")
		d.SetAttr(id, name, val)
		if name == "id" {
			d.NotifyIDAttrChanged(id, old, val)
		}
		return jsvalue.UndefinedValue, true, nil
	case "removeAttribute":
		d.RemoveAttr(id, jsvalue.ToString(arg0(args)))
		return jsvalue.UndefinedValue, true, nil
	case "toggleAttribute":
		name := jsvalue.ToString(arg0(args))
		var force *bool
		if len(args) > 1 {
			b := jsvalue.ToBoolean(args[1])
			force = &b
		}
		return jsvalue.BoolValue(d.ToggleAttribute(id, name, force)), true, nil
	case "appendChild":
		child, ok := it.nodeID(arg0(args).(*jsvalue.Object))
		if !ok {
			return nil, true, jsError("TypeError", "appendChild argument is not a Node")
		}
		if err := d.Append(id, child); err != nil {
			return nil, true, err
		}
		return arg0(args), true, nil
	case "removeChild":
		child, ok := it.nodeID(arg0(args).(*jsvalue.Object))
		if !ok {
			return nil, true, jsError("TypeError", "removeChild argument is not a Node")
		}
		if err := d.Remove(child); err != nil {
			return nil, true, err
		}
		return arg0(args), true, nil
	case "insertBefore":
		child, ok1 := it.nodeID(arg0(args).(*jsvalue.Object))
		var ref domtree.NodeId
		ok2 := true
		if refObj, isObj := arg1(args).(*jsvalue.Object); isObj {
			ref, ok2 = it.nodeID(refObj)
		}
		if !ok1 || !ok2 {
			return nil, true, jsError("TypeError", "insertBefore argument is not a Node")
		}
		if err := d.InsertBefore(id, child, ref); err != nil {
			return nil, true, err
		}
		return arg0(args), true, nil
	case "replaceChild":
		newChild, ok1 := it.nodeID(arg0(args).(*jsvalue.Object))
		oldChild, ok2 := it.nodeID(arg1(args).(*jsvalue.Object))
		if !ok1 || !ok2 {
			return nil, true, jsError("TypeError", "replaceChild argument is not a Node")
		}
		if err := d.ReplaceWith(oldChild, newChild); err != nil {
			return nil, true, err
		}
		return arg1(args), true, nil
	case "remove":
		d.Remove(id)
		return jsvalue.UndefinedValue, true, nil
	case "cloneNode":
		deep := len(args) > 0 && jsvalue.ToBoolean(args[0])
		return it.wrapNode(it.cloneNode(id, deep)), true, nil
	case "closest":
		sel := jsvalue.ToString(arg0(args))
		cur := id
		for {
			if m, err := selector.MatchesSelector(d, cur, sel); err != nil {
				return nil, true, &RuntimeError{Message: err.Error(), Thrown: jsvalue.NewErrorObject("SyntaxError", err.Error())}
			} else if m {
				return it.wrapNode(cur), true, nil
			}
			parent, ok := d.Parent(cur)
			if !ok {
				return jsvalue.NullValue, true, nil
			}
			cur = parent
		}
	case "matches":
		m, err := selector.MatchesSelector(d, id, jsvalue.ToString(arg0(args)))
		if err != nil {
			return nil, true, &RuntimeError{Message: err.Error(), Thrown: jsvalue.NewErrorObject("SyntaxError", err.Error())}
		}
		return jsvalue.BoolValue(m), true, nil
	case "querySelector":
		v, err := it.querySelectorOn(id, jsvalue.ToString(arg0(args)))
		return v, true, err
	case "querySelectorAll":
		v, err := it.querySelectorAllOn(id, jsvalue.ToString(arg0(args)))
		return v, true, err
	case "getElementsByTagName":
		return it.wrapNodeList(d.GetElementsByTagName(id, jsvalue.ToString(arg0(args)))), true, nil
	case "addEventListener":
		it.addEventListener(id, jsvalue.ToString(arg0(args)), arg1(args), listenerOnce(args))
		return jsvalue.UndefinedValue, true, nil
	case "removeEventListener":
		it.removeEventListener(id, jsvalue.ToString(arg0(args)), arg1(args))
		return jsvalue.UndefinedValue, true, nil
	case "dispatchEvent":
		evtObj, _ := arg0(args).(*jsvalue.Object)
		typ := ""
		bubbles, cancelable := false, false
		if evtObj != nil {
			typ = jsvalue.ToString(evtObj.Get("type"))
			bubbles = jsvalue.ToBoolean(evtObj.Get("bubbles"))
			cancelable = jsvalue.ToBoolean(evtObj.Get("cancelable"))
		}
		prevented, err := it.dispatchEvent(id, typ, bubbles, cancelable)
		if err != nil {
			return nil, true, err
		}
		return jsvalue.BoolValue(!prevented), true, nil
	case "click":
		if err := it.clickElement(id); err != nil {
			return nil, true, err
		}
		return jsvalue.UndefinedValue, true, nil
	case "focus", "blur":
		return jsvalue.UndefinedValue, true, nil
	case "submit":
		if err := it.submitOwningForm(id); err != nil {
			return nil, true, err
		}
		return jsvalue.UndefinedValue, true, nil
	case "reset":
		it.resetOwningForm(id)
		return jsvalue.UndefinedValue, true, nil
	case "insertAdjacentHTML":
		return jsvalue.UndefinedValue, true, it.insertAdjacentHTML(id, jsvalue.ToString(arg0(args)), jsvalue.ToString(arg1(args)))
	case "toString":
		return jsvalue.String("[object " + string(o.Class) + "]"), true, nil
	case "showModal", "show", "close", "requestClose":
		return it.dialogMethod(id, method, args)
	}
	return nil, false, nil
}

// cloneNode duplicates id, recursively when deep, as a fresh subtree not
// yet attached to any parent (matching real cloneNode, which never
// mutates the document).
func (it *Interp) cloneNode(id domtree.NodeId, deep bool) domtree.NodeId {
	d := it.Dom
	n := d.Node(id)
	if n.IsText() {
		return d.CreateText(n.Text)
	}
	clone := d.CreateElement(n.TagName)
	if n.Attrs != nil {
		for _, k := range n.Attrs.Keys() {
			v, _ := n.Attrs.Get(k)
			d.SetAttr(clone, k, v)
		}
	}
	if deep {
		for _, c := range d.Children(id) {
			d.Append(clone, it.cloneNode(c, true))
		}
	}
	return clone
}

// insertAdjacentHTML parses html as a fragment and splices it in at one
// of the four standard positions relative to id.
func (it *Interp) insertAdjacentHTML(id domtree.NodeId, position, html string) error {
	frag, _, err := parseFragmentInto(html)
	if err != nil {
		return err
	}
	d := it.Dom
	switch position {
	case "beforeend":
		for _, c := range d.Children(frag.Root()) {
			moveSubtree(frag, d, c, id)
		}
	case "afterbegin":
		kids := d.Children(frag.Root())
		existing := d.Children(id)
		var before domtree.NodeId
		hasBefore := len(existing) > 0
		if hasBefore {
			before = existing[0]
		}
		for _, c := range kids {
			newID := moveSubtreeReturning(frag, d, c, id)
			if hasBefore {
				d.InsertBefore(id, newID, before)
			}
		}
	case "beforebegin", "afterend":
		parent, ok := d.Parent(id)
		if !ok {
			return nil
		}
		siblings := d.Children(parent)
		idx := -1
		for i, s := range siblings {
			if s == id {
				idx = i
				break
			}
		}
		var ref domtree.NodeId
		hasRef := false
		if position == "beforebegin" {
			ref, hasRef = id, true
		} else if idx >= 0 && idx+1 < len(siblings) {
			ref, hasRef = siblings[idx+1], true
		}
		for _, c := range d.Children(frag.Root()) {
			newID := moveSubtreeReturning(frag, d, c, parent)
			if hasRef {
				d.InsertBefore(parent, newID, ref)
			}
		}
	}
	return nil
}

// moveSubtreeReturning is moveSubtree plus returning the newly created
// root NodeId, which insertAdjacentHTML needs to reposition it precisely
// (moveSubtree alone always appends).
func moveSubtreeReturning(src, dst *domtree.Dom, srcID domtree.NodeId, dstParent domtree.NodeId) domtree.NodeId {
	before := dst.Children(dstParent)
	moveSubtree(src, dst, srcID, dstParent)
	after := dst.Children(dstParent)
	return after[len(after)-1-(len(after)-len(before)-1)]
}
