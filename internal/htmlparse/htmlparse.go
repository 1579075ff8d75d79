// Package htmlparse turns an HTML source string into a domtree.Dom, the way
// a browser's tree construction stage does: tag soup in, an element tree
// out, tolerant of everything but a handful of structurally impossible
// inputs.
package htmlparse

import (
	"fmt"
	"strings"

	"github.com/domharness/domharness/internal/domtree"
)

// ScriptSource pairs a <script> element's NodeId with its literal text
// content, in document order, for callers that need to run page scripts
// without re-walking the tree.
type ScriptSource struct {
	NodeId domtree.NodeId
	Source string
}

// Parse builds a Dom from src. It never fails on malformed markup a
// mainstream browser would also tolerate; it returns an error only for
// inputs that are structurally impossible to recover from, such as an
// attribute value string left unterminated at end of input.
func Parse(src string) (*domtree.Dom, []ScriptSource, error) {
	p := &parser{src: src, dom: domtree.NewDom()}
	p.stack = []domtree.NodeId{p.dom.Root()}
	if err := p.run(); err != nil {
		return nil, nil, err
	}
	return p.dom, p.scripts, nil
}

type parser struct {
	src     string
	pos     int
	dom     *domtree.Dom
	stack   []domtree.NodeId // open-element stack, root always at index 0
	scripts []ScriptSource
}

func (p *parser) top() domtree.NodeId { return p.stack[len(p.stack)-1] }

func (p *parser) run() error {
	var textBuf strings.Builder
	flushText := func() {
		if textBuf.Len() == 0 {
			return
		}
		t := p.dom.CreateText(decodeEntities(textBuf.String()))
		_ = p.dom.Append(p.top(), t)
		textBuf.Reset()
	}

	for p.pos < len(p.src) {
		if p.src[p.pos] != '<' {
			start := p.pos
			for p.pos < len(p.src) && p.src[p.pos] != '<' {
				p.pos++
			}
			textBuf.WriteString(p.src[start:p.pos])
			continue
		}

		switch {
		case strings.HasPrefix(p.src[p.pos:], "<!--"):
			flushText()
			if err := p.skipComment(); err != nil {
				return err
			}
		case strings.HasPrefix(p.src[p.pos:], "<!"):
			flushText()
			p.skipDoctype()
		case p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			flushText()
			p.parseEndTag()
		default:
			flushText()
			if err := p.parseStartTag(); err != nil {
				return err
			}
		}
	}
	flushText()
	return nil
}

func (p *parser) skipComment() error {
	end := strings.Index(p.src[p.pos+4:], "-->")
	if end < 0 {
		return fmt.Errorf("htmlparse: unterminated comment at EOF")
	}
	p.pos += 4 + end + 3
	return nil
}

func (p *parser) skipDoctype() {
	end := strings.IndexByte(p.src[p.pos:], '>')
	if end < 0 {
		p.pos = len(p.src)
		return
	}
	p.pos += end + 1
}

func (p *parser) parseEndTag() {
	p.pos += 2 // "</"
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '>' {
		p.pos++
	}
	name := strings.ToLower(strings.TrimSpace(p.src[start:p.pos]))
	if p.pos < len(p.src) {
		p.pos++ // consume '>'
	}
	// Pop up to and including the nearest matching open element; an
	// unmatched end tag is ignored entirely.
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.dom.Node(p.stack[i]).TagName == name {
			p.stack = p.stack[:i]
			return
		}
	}
}

func (p *parser) parseStartTag() error {
	p.pos++ // consume '<'
	start := p.pos
	for p.pos < len(p.src) && !isTagNameBoundary(p.src[p.pos]) {
		p.pos++
	}
	tag := strings.ToLower(p.src[start:p.pos])
	if tag == "" {
		// Lone '<' not starting a valid tag name: treat as literal text.
		_ = p.dom.Append(p.top(), p.dom.CreateText("<"))
		return nil
	}

	id := p.dom.CreateElement(tag)
	selfClose := false
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return fmt.Errorf("htmlparse: unterminated start tag <%s> at EOF", tag)
		}
		if p.src[p.pos] == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '>' {
			selfClose = true
			p.pos += 2
			break
		}
		if p.src[p.pos] == '>' {
			p.pos++
			break
		}
		name, value, err := p.parseAttr()
		if err != nil {
			return err
		}
		if name != "" && !p.dom.HasAttr(id, name) {
			p.dom.SetAttr(id, name, value)
		}
	}

	_ = p.dom.Append(p.top(), id)

	if domtree.IsVoidTag(tag) || selfClose {
		return nil
	}
	if domtree.IsRawTextTag(tag) {
		return p.consumeRawText(id, tag)
	}
	p.stack = append(p.stack, id)
	return nil
}

func (p *parser) parseAttr() (name, value string, err error) {
	start := p.pos
	for p.pos < len(p.src) && !isAttrNameBoundary(p.src[p.pos]) {
		p.pos++
	}
	name = strings.ToLower(p.src[start:p.pos])
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return name, "", nil
	}
	p.pos++ // consume '='
	p.skipSpace()
	if p.pos >= len(p.src) {
		return "", "", fmt.Errorf("htmlparse: unterminated attribute value for %q at EOF", name)
	}
	switch p.src[p.pos] {
	case '"', '\'':
		quote := p.src[p.pos]
		p.pos++
		vstart := p.pos
		end := strings.IndexByte(p.src[p.pos:], quote)
		if end < 0 {
			return "", "", fmt.Errorf("htmlparse: unterminated attribute string for %q at EOF", name)
		}
		value = decodeEntities(p.src[vstart : vstart+end])
		p.pos = vstart + end + 1
	default:
		vstart := p.pos
		for p.pos < len(p.src) && !isSpace(p.src[p.pos]) && p.src[p.pos] != '>' {
			p.pos++
		}
		value = decodeEntities(p.src[vstart:p.pos])
	}
	return name, value, nil
}

func (p *parser) consumeRawText(id domtree.NodeId, tag string) error {
	closeTag := "</" + tag
	idx := indexFold(p.src[p.pos:], closeTag)
	var body string
	if idx < 0 {
		body = p.src[p.pos:]
		p.pos = len(p.src)
	} else {
		body = p.src[p.pos : p.pos+idx]
		p.pos += idx
		// consume the end tag itself
		for p.pos < len(p.src) && p.src[p.pos] != '>' {
			p.pos++
		}
		if p.pos < len(p.src) {
			p.pos++
		}
	}
	t := p.dom.CreateText(body)
	_ = p.dom.Append(id, t)
	if tag == "script" {
		p.scripts = append(p.scripts, ScriptSource{NodeId: id, Source: body})
	}
	return nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func isTagNameBoundary(b byte) bool { return isSpace(b) || b == '>' || b == '/' }
func isAttrNameBoundary(b byte) bool {
	return isSpace(b) || b == '>' || b == '=' || b == '/'
}

func indexFold(haystack, needle string) int {
	h := strings.ToLower(haystack)
	return strings.Index(h, strings.ToLower(needle))
}
