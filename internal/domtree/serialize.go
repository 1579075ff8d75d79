package domtree

import (
	"sort"
	"strings"
)

// DumpNode serializes id as HTML: attributes in sorted key order, values
// double-quoted and HTML-escaped, void elements without a closing tag, and
// script/style children emitted verbatim.
func (d *Dom) DumpNode(id NodeId) string {
	n := d.Node(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindDocument:
		var sb strings.Builder
		for _, c := range n.Children {
			sb.WriteString(d.DumpNode(c))
		}
		return sb.String()
	case KindText:
		return escapeText(n.Text)
	case KindElement:
		return d.dumpElement(id, n)
	}
	return ""
}

func (d *Dom) dumpElement(id NodeId, n *Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	keys := append([]string(nil), n.Attrs.Keys()...)
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := n.Attrs.Get(k)
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(v))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')

	if IsVoidTag(n.TagName) {
		return sb.String()
	}

	rawText := IsRawTextTag(n.TagName)
	for _, c := range n.Children {
		child := d.Node(c)
		if rawText && child != nil && child.IsText() {
			sb.WriteString(child.Text)
		} else {
			sb.WriteString(d.DumpNode(c))
		}
	}

	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
	return sb.String()
}

// escapeAttr escapes an attribute value: & < > " all escaped.
func escapeAttr(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// escapeText escapes text-node content: & < > escaped, " left alone.
func escapeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
