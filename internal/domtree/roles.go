package domtree

import "strings"

// sectioningAncestorTags (and landmarkAncestorRoles, their role=...
// equivalents) are the ancestors whose presence turns <header>/<footer>
// from banner/contentinfo into generic, per the header-element
// regression fixtures.
var sectioningAncestorTags = map[string]bool{
	"article": true, "aside": true, "main": true, "nav": true, "section": true,
}

var landmarkAncestorRoles = map[string]bool{
	"region": true, "main": true, "article": true, "complementary": true,
	"navigation": true, "banner": true, "contentinfo": true, "form": true, "search": true,
}

// implicitRoles is the table of tag -> implicit ARIA role for elements
// whose role never depends on ancestor context. Entries mapping to "" have
// no implicit role at all (role reads back as the empty string), matching
// <var>, <abbr>, <cite>.
var implicitRoles = map[string]string{
	"article": "article",
	"aside":   "complementary",
	"b":       "generic",
	"bdi":     "generic",
	"bdo":     "generic",
	"code":    "code",
	"data":    "generic",
	"dialog":  "dialog",
	"div":     "generic",
	"em":      "emphasis",
	"hgroup":  "group",
	"hr":      "separator",
	"i":       "generic",
	"samp":    "generic",
	"small":   "generic",
	"span":    "generic",
	"strong":  "strong",
	"sub":     "subscript",
	"sup":     "superscript",
	"u":       "generic",

	// elements with explicitly no implicit role
	"abbr": "",
	"cite": "",
	"var":  "",
}

// Role resolves elem.role: the explicit role attribute if set and
// non-empty, else the implicit role for (tag, ancestor context). Unknown
// tags fall back to the empty string, matching an implementer's best
// guess absent further test fixtures.
func (d *Dom) Role(id NodeId) string {
	n := d.Node(id)
	if n == nil || !n.IsElement() {
		return ""
	}
	if explicit, ok := n.Attrs.Get("role"); ok && explicit != "" {
		return explicit
	}
	return d.implicitRole(id, n)
}

func (d *Dom) implicitRole(id NodeId, n *Node) string {
	switch n.TagName {
	case "header":
		if d.hasSectioningOrLandmarkAncestor(id) {
			return "generic"
		}
		return "banner"
	case "footer":
		if d.hasSectioningOrLandmarkAncestor(id) {
			return "generic"
		}
		return "contentinfo"
	}
	if role, ok := implicitRoles[n.TagName]; ok {
		return role
	}
	return ""
}

func (d *Dom) hasSectioningOrLandmarkAncestor(id NodeId) bool {
	parent, ok := d.Parent(id)
	for ok {
		n := d.Node(parent)
		if n != nil && n.IsElement() {
			if sectioningAncestorTags[n.TagName] {
				return true
			}
			if role, has := n.Attrs.Get("role"); has && landmarkAncestorRoles[strings.ToLower(role)] {
				return true
			}
		}
		parent, ok = d.Parent(parent)
	}
	return false
}
