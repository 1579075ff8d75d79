package jseval

import (
	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/formctl"
	"github.com/domharness/domharness/internal/jsvalue"
	"github.com/domharness/domharness/internal/selector"
)

// The DOM-facing host objects (document, window, Element, Text) are
// represented as ordinary *jsvalue.Object values tagged with one of these
// locally-defined Class strings, since jsvalue.Class is an open string
// type; this keeps the already-built value-model package untouched while
// still letting DOM values flow through every generic Object-handling
// code path (property bags, equality, typeof).
const (
	ClassDocument jsvalue.Class = "Document"
	ClassWindow   jsvalue.Class = "Window"
	ClassElement  jsvalue.Class = "Element"
	ClassTextNode jsvalue.Class = "Text"
	ClassEvent    jsvalue.Class = "Event"
)

// wrapNode returns the live *jsvalue.Object handle for id, memoizing it so
// that two calls like `document.getElementById("x")` in the same script
// return identical Object pointers — the live-handle contract a DOM needs
// (two variables referring to "the same element" must alias, the way
// object identity does everywhere else in the value model).
func (it *Interp) wrapNode(id domtree.NodeId) *jsvalue.Object {
	if o, ok := it.elemCache[id]; ok {
		return o
	}
	n := it.Dom.Node(id)
	class := ClassElement
	if n != nil && n.IsText() {
		class = ClassTextNode
	}
	o := &jsvalue.Object{Class: class}
	it.elemCache[id] = o
	it.nodeOf[o] = id
	return o
}

func (it *Interp) nodeID(o *jsvalue.Object) (domtree.NodeId, bool) {
	id, ok := it.nodeOf[o]
	return id, ok
}

// wrapNodeList builds the (non-live; a snapshot, matching
// querySelectorAll's documented behaviour rather than a live
// getElementsByTagName collection, which this harness doesn't
// distinguish) array of element wrappers for a NodeId slice.
func (it *Interp) wrapNodeList(ids []domtree.NodeId) *jsvalue.Object {
	out := make([]jsvalue.Value, len(ids))
	for i, id := range ids {
		out[i] = it.wrapNode(id)
	}
	return jsvalue.NewArray(out)
}

// documentGet/windowGet/elementGet implement the host-object property
// surface scripts actually read; anything outside this list falls
// through to plain Object.Get (so ad hoc properties scripts attach to an
// element still round-trip).

func (it *Interp) documentGet(key string) (jsvalue.Value, bool) {
	switch key {
	case "body":
		if ids := it.Dom.GetElementsByTagName(it.Dom.Root(), "body"); len(ids) > 0 {
			return it.wrapNode(ids[0]), true
		}
		return jsvalue.NullValue, true
	case "documentElement":
		if ids := it.Dom.GetElementsByTagName(it.Dom.Root(), "html"); len(ids) > 0 {
			return it.wrapNode(ids[0]), true
		}
		return jsvalue.NullValue, true
	case "title":
		if ids := it.Dom.GetElementsByTagName(it.Dom.Root(), "title"); len(ids) > 0 {
			return jsvalue.String(it.Dom.TextContent(ids[0])), true
		}
		return jsvalue.String(""), true
	case "URL", "documentURI":
		return jsvalue.String(it.baseURL), true
	}
	return nil, false
}

func (it *Interp) windowGet(key string) (jsvalue.Value, bool) {
	switch key {
	case "document":
		return it.documentObj, true
	case "window", "self", "globalThis", "top", "parent", "frames":
		return it.windowObj, true
	case "location":
		return it.locationObject(), true
	case "navigator":
		return it.navigatorObject(), true
	}
	return nil, false
}

func (it *Interp) locationObject() *jsvalue.Object {
	loc := jsvalue.NewObject()
	loc.Set("href", jsvalue.String(it.baseURL))
	if d, err := jsvalue.ParseURL(it.baseURL); err == nil {
		loc.Set("protocol", jsvalue.String(d.Protocol))
		loc.Set("host", jsvalue.String(d.HostWithPort()))
		loc.Set("hostname", jsvalue.String(d.Host))
		loc.Set("pathname", jsvalue.String(d.Pathname))
		loc.Set("search", jsvalue.String(d.SearchString()))
		loc.Set("hash", jsvalue.String(d.Hash))
	}
	return loc
}

func (it *Interp) navigatorObject() *jsvalue.Object {
	nav := jsvalue.NewObject()
	nav.Set("userAgent", jsvalue.String("domharness"))
	nav.Set("language", jsvalue.String("en-US"))
	return nav
}

// elementGet reads a property whose meaning is attribute- or
// state-backed rather than a plain property-bag slot: id/className reflect
// their matching attribute, value/checked reflect form-control state, and
// so on, the way a real HTMLElement's accessor properties do.
func (it *Interp) elementGet(id domtree.NodeId, key string) (jsvalue.Value, bool) {
	d := it.Dom
	switch key {
	case "tagName":
		return jsvalue.String(upperASCII(d.TagName(id))), true
	case "nodeName":
		if d.Node(id).IsText() {
			return jsvalue.String("#text"), true
		}
		return jsvalue.String(upperASCII(d.TagName(id))), true
	case "nodeType":
		n := d.Node(id)
		if n.IsText() {
			return jsvalue.Number(3), true
		}
		return jsvalue.Number(1), true
	case "id":
		v, _ := d.GetAttr(id, "id")
		return jsvalue.String(v), true
	case "className":
		v, _ := d.GetAttr(id, "class")
		return jsvalue.String(v), true
	case "classList":
		return it.classListObject(id), true
	case "textContent", "innerText":
		return jsvalue.String(d.TextContent(id)), true
	case "innerHTML":
		return jsvalue.String(it.innerHTML(id)), true
	case "outerHTML":
		return jsvalue.String(d.DumpNode(id)), true
	case "nodeValue", "data":
		n := d.Node(id)
		if n.IsText() {
			return jsvalue.String(n.Text), true
		}
		return jsvalue.NullValue, true
	case "value":
		if formctl.IsFormControl(d, id) {
			if d.TagName(id) == "select" {
				return jsvalue.String(formctl.SelectValue(d, id)), true
			}
			return jsvalue.String(d.CurrentValue(id)), true
		}
		return nil, false
	case "checked":
		if formctl.IsCheckboxInput(d, id) || formctl.IsRadioInput(d, id) {
			return jsvalue.BoolValue(d.IsChecked(id)), true
		}
		return nil, false
	case "selected":
		return jsvalue.BoolValue(d.IsChecked(id)), true
	case "disabled":
		return jsvalue.BoolValue(d.HasAttr(id, "disabled")), true
	case "parentElement", "parentNode":
		if p, ok := d.Parent(id); ok {
			return it.wrapNode(p), true
		}
		return jsvalue.NullValue, true
	case "children":
		var elems []domtree.NodeId
		for _, c := range d.Children(id) {
			if d.Node(c).IsElement() {
				elems = append(elems, c)
			}
		}
		return it.wrapNodeList(elems), true
	case "childNodes":
		return it.wrapNodeList(d.Children(id)), true
	case "firstChild", "firstElementChild":
		kids := d.Children(id)
		if key == "firstElementChild" {
			for _, c := range kids {
				if d.Node(c).IsElement() {
					return it.wrapNode(c), true
				}
			}
			return jsvalue.NullValue, true
		}
		if len(kids) > 0 {
			return it.wrapNode(kids[0]), true
		}
		return jsvalue.NullValue, true
	case "lastChild", "lastElementChild":
		kids := d.Children(id)
		if key == "lastElementChild" {
			for i := len(kids) - 1; i >= 0; i-- {
				if d.Node(kids[i]).IsElement() {
					return it.wrapNode(kids[i]), true
				}
			}
			return jsvalue.NullValue, true
		}
		if len(kids) > 0 {
			return it.wrapNode(kids[len(kids)-1]), true
		}
		return jsvalue.NullValue, true
	case "nextElementSibling", "previousElementSibling", "nextSibling", "previousSibling":
		return it.siblingOf(id, key), true
	case "dataset":
		return it.datasetObject(id), true
	case "style":
		return jsvalue.NewObject(), true
	case "validity":
		return it.validityObject(formctl.CheckValidity(d, id)), true
	case "form":
		return it.ownerFormOf(id), true
	case "role":
		return jsvalue.String(d.Role(id)), true
	}
	return it.dialogGet(id, key)
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func (it *Interp) siblingOf(id domtree.NodeId, key string) jsvalue.Value {
	parent, ok := it.Dom.Parent(id)
	if !ok {
		return jsvalue.NullValue
	}
	kids := it.Dom.Children(parent)
	idx := -1
	for i, k := range kids {
		if k == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return jsvalue.NullValue
	}
	elementsOnly := key == "nextElementSibling" || key == "previousElementSibling"
	step := 1
	if key == "previousSibling" || key == "previousElementSibling" {
		step = -1
	}
	for i := idx + step; i >= 0 && i < len(kids); i += step {
		if !elementsOnly || it.Dom.Node(kids[i]).IsElement() {
			return it.wrapNode(kids[i])
		}
	}
	return jsvalue.NullValue
}

func (it *Interp) ownerFormOf(id domtree.NodeId) jsvalue.Value {
	parent, ok := it.Dom.Parent(id)
	for ok {
		if n := it.Dom.Node(parent); n != nil && n.IsElement() && n.TagName == "form" {
			return it.wrapNode(parent)
		}
		parent, ok = it.Dom.Parent(parent)
	}
	return jsvalue.NullValue
}

func (it *Interp) classListObject(id domtree.NodeId) *jsvalue.Object {
	list := jsvalue.NewArray(nil)
	for _, c := range it.Dom.ClassList(id) {
		list.Array = append(list.Array, jsvalue.String(c))
	}
	list.Set("contains", jsvalue.NewNativeFunc("contains", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return jsvalue.BoolValue(it.Dom.HasClass(id, jsvalue.ToString(arg0(args)))), nil
	}))
	list.Set("add", jsvalue.NewNativeFunc("add", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		for _, a := range args {
			if !it.Dom.HasClass(id, jsvalue.ToString(a)) {
				cur, _ := it.Dom.GetAttr(id, "class")
				if cur != "" {
					cur += " "
				}
				it.Dom.SetAttr(id, "class", cur+jsvalue.ToString(a))
			}
		}
		return jsvalue.UndefinedValue, nil
	}))
	list.Set("remove", jsvalue.NewNativeFunc("remove", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		remove := map[string]bool{}
		for _, a := range args {
			remove[jsvalue.ToString(a)] = true
		}
		var kept []string
		for _, c := range it.Dom.ClassList(id) {
			if !remove[c] {
				kept = append(kept, c)
			}
		}
		it.Dom.SetAttr(id, "class", joinSpace(kept))
		return jsvalue.UndefinedValue, nil
	}))
	list.Set("toggle", jsvalue.NewNativeFunc("toggle", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		cls := jsvalue.ToString(arg0(args))
		has := it.Dom.HasClass(id, cls)
		if len(args) > 1 {
			if jsvalue.ToBoolean(args[1]) == has {
				return jsvalue.BoolValue(has), nil
			}
		}
		if has {
			var kept []string
			for _, c := range it.Dom.ClassList(id) {
				if c != cls {
					kept = append(kept, c)
				}
			}
			it.Dom.SetAttr(id, "class", joinSpace(kept))
			return jsvalue.False, nil
		}
		cur, _ := it.Dom.GetAttr(id, "class")
		if cur != "" {
			cur += " "
		}
		it.Dom.SetAttr(id, "class", cur+cls)
		return jsvalue.True, nil
	}))
	return list
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func (it *Interp) datasetObject(id domtree.NodeId) *jsvalue.Object {
	ds := jsvalue.NewObject()
	for prop, val := range it.Dom.Dataset(id) {
		ds.Set(prop, jsvalue.String(val))
	}
	return ds
}

func (it *Interp) validityObject(v formctl.Validity) *jsvalue.Object {
	o := jsvalue.NewObject()
	o.Set("valueMissing", jsvalue.BoolValue(v.ValueMissing))
	o.Set("typeMismatch", jsvalue.BoolValue(v.TypeMismatch))
	o.Set("patternMismatch", jsvalue.BoolValue(v.PatternMismatch))
	o.Set("tooLong", jsvalue.BoolValue(v.TooLong))
	o.Set("tooShort", jsvalue.BoolValue(v.TooShort))
	o.Set("rangeUnderflow", jsvalue.BoolValue(v.RangeUnderflow))
	o.Set("rangeOverflow", jsvalue.BoolValue(v.RangeOverflow))
	o.Set("stepMismatch", jsvalue.BoolValue(v.StepMismatch))
	o.Set("badInput", jsvalue.BoolValue(v.BadInput))
	o.Set("customError", jsvalue.BoolValue(v.CustomError))
	o.Set("valid", jsvalue.BoolValue(v.Valid()))
	return o
}

// innerHTML serializes an element's children (not the element itself),
// matching innerHTML's documented scope versus outerHTML's DumpNode.
func (it *Interp) innerHTML(id domtree.NodeId) string {
	out := ""
	for _, c := range it.Dom.Children(id) {
		out += it.Dom.DumpNode(c)
	}
	return out
}

// elementSet implements the same accessor properties' setters.
func (it *Interp) elementSet(id domtree.NodeId, key string, v jsvalue.Value) (bool, error) {
	d := it.Dom
	switch key {
	case "id":
		old, _ := d.GetAttr(id, "id")
		d.SetAttr(id, "id", jsvalue.ToString(v))
		d.NotifyIDAttrChanged(id, old, jsvalue.ToString(v))
		return true, nil
	case "className":
		d.SetAttr(id, "class", jsvalue.ToString(v))
		return true, nil
	case "textContent", "innerText":
		it.setTextContent(id, jsvalue.ToString(v))
		return true, nil
	case "innerHTML":
		if err := it.setInnerHTML(id, jsvalue.ToString(v)); err != nil {
			return true, err
		}
		return true, nil
	case "value":
		if formctl.IsFormControl(d, id) {
			if d.TagName(id) == "select" {
				formctl.SetSelectValue(d, id, jsvalue.ToString(v))
			} else {
				formctl.SetValue(d, id, jsvalue.ToString(v))
			}
			return true, nil
		}
	case "checked":
		formctl.SetChecked(d, id, jsvalue.ToBoolean(v))
		return true, nil
	case "selected":
		selectID, ok := d.Parent(id)
		if ok {
			multiple := d.HasAttr(selectID, "multiple")
			formctl.SetOptionSelected(d, selectID, id, jsvalue.ToBoolean(v), multiple)
		}
		return true, nil
	case "disabled":
		d.ToggleAttribute(id, "disabled", boolPtr(jsvalue.ToBoolean(v)))
		return true, nil
	case "role":
		d.SetAttr(id, "role", jsvalue.ToString(v))
		return true, nil
	}
	return it.dialogSet(id, key, v)
}

func boolPtr(b bool) *bool { return &b }

// setTextContent replaces every child of id with a single text node
// carrying text, the way the textContent setter is specified to behave.
func (it *Interp) setTextContent(id domtree.NodeId, text string) {
	for _, c := range it.Dom.Children(id) {
		it.Dom.Remove(c)
	}
	tid := it.Dom.CreateText(text)
	it.Dom.Append(id, tid)
}

// setInnerHTML replaces id's children with freshly parsed fragment
// markup. Scripts embedded in the fragment are parsed but never
// executed — only from_html's top-level script extraction runs script
// content, matching this harness's non-goal of a full HTML parsing
// pipeline for dynamically injected markup.
func (it *Interp) setInnerHTML(id domtree.NodeId, html string) error {
	for _, c := range it.Dom.Children(id) {
		it.Dom.Remove(c)
	}
	frag, _, err := parseFragmentInto(html)
	if err != nil {
		return err
	}
	for _, c := range it.Dom.Children(frag.Root()) {
		moveSubtree(frag, it.Dom, c, id)
	}
	return nil
}

// querySelectorOn / querySelectorAllOn wrap the selector package for a
// given root, converting its parse errors into the SyntaxError a script's
// try/catch expects.
func (it *Interp) querySelectorOn(root domtree.NodeId, sel string) (jsvalue.Value, error) {
	id, ok, err := selector.QuerySelector(it.Dom, root, sel)
	if err != nil {
		return nil, &RuntimeError{Message: err.Error(), Thrown: jsvalue.NewErrorObject("SyntaxError", err.Error())}
	}
	if !ok {
		return jsvalue.NullValue, nil
	}
	return it.wrapNode(id), nil
}

func (it *Interp) querySelectorAllOn(root domtree.NodeId, sel string) (jsvalue.Value, error) {
	ids, err := selector.QuerySelectorAll(it.Dom, root, sel)
	if err != nil {
		return nil, &RuntimeError{Message: err.Error(), Thrown: jsvalue.NewErrorObject("SyntaxError", err.Error())}
	}
	return it.wrapNodeList(ids), nil
}
