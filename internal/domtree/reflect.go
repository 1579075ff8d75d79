package domtree

import (
	"strings"
	"unicode"

	"github.com/serenize/snaker"
)

// booleanAttrs reflect as JS booleans: attribute absent -> false, attribute
// present (with any value) -> true.
var booleanAttrs = map[string]bool{
	"checked": true, "disabled": true, "open": true, "selected": true,
	"multiple": true, "readonly": true, "required": true, "autofocus": true,
	"hidden": true, "defer": true, "async": true, "loop": true,
	"controls": true, "autoplay": true, "muted": true, "reversed": true,
	"ismap": true, "default": true, "novalidate": true, "formnovalidate": true,
}

// IsBooleanAttr reports whether name reflects as a boolean property.
func IsBooleanAttr(name string) bool { return booleanAttrs[strings.ToLower(name)] }

// AttrNameForProperty maps a JS camelCase DOM property name to its
// reflected attribute name. Most properties simply lowercase (tabIndex ->
// tabindex); a handful are irregular and get an explicit entry.
func AttrNameForProperty(prop string) string {
	if attr, ok := irregularPropertyToAttr[prop]; ok {
		return attr
	}
	return strings.ToLower(prop)
}

var irregularPropertyToAttr = map[string]string{
	"className":   "class",
	"htmlFor":     "for",
	"acceptCharset": "accept-charset",
	"httpEquiv":   "http-equiv",
}

// DatasetAttrToProperty converts a data-* attribute name (e.g.
// "data-foo-bar") to the property name exposed on element.dataset (e.g.
// "fooBar"), using snaker's snake<->camel conversion over the hyphenated
// remainder.
func DatasetAttrToProperty(attrName string) (string, bool) {
	const prefix = "data-"
	if !strings.HasPrefix(strings.ToLower(attrName), prefix) {
		return "", false
	}
	rest := attrName[len(prefix):]
	if rest == "" {
		return "", false
	}
	snake := strings.ReplaceAll(rest, "-", "_")
	camel := snaker.SnakeToCamel(snake)
	return lowerFirst(camel), true
}

// DatasetPropertyToAttr is the inverse of DatasetAttrToProperty.
func DatasetPropertyToAttr(prop string) string {
	snake := snaker.CamelToSnake(prop)
	return "data-" + strings.ReplaceAll(snake, "_", "-")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Dataset returns the element's data-* attributes as a property-name ->
// value map, insertion order not preserved (callers needing order should
// walk Attrs directly).
func (d *Dom) Dataset(id NodeId) map[string]string {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return nil
	}
	out := map[string]string{}
	for _, k := range n.Attrs.Keys() {
		if prop, ok := DatasetAttrToProperty(k); ok {
			v, _ := n.Attrs.Get(k)
			out[prop] = v
		}
	}
	return out
}
