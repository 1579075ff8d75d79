package jsparse

import (
	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jslex"
)

// parseBindingTarget parses a variable-declaration / parameter binding
// target: a plain identifier or an array/object destructuring pattern.
func (p *parser) parseBindingTarget() (jsast.Node, error) {
	switch {
	case p.isPunct("["):
		return p.parseArrayPattern()
	case p.isPunct("{"):
		return p.parseObjectPattern()
	case p.tok.Kind == jslex.Ident:
		name := p.tok.Text
		return jsast.Identifier{Name: name}, p.advance()
	}
	return nil, p.errorf("expected binding identifier or pattern, got %q", p.tok.Text)
}

func (p *parser) parseArrayPattern() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	pat := jsast.ArrayPattern{}
	for !p.isPunct("]") {
		if p.isPunct(",") {
			pat.Elements = append(pat.Elements, nil)
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.isPunct("...") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			rest, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			pat.Rest = rest
			break
		}
		el, err := p.parseBindingTarget()
		if err != nil {
			return nil, err
		}
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			def, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			el = jsast.AssignExpr{Op: "=", Target: el, Value: def}
		}
		pat.Elements = append(pat.Elements, el)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return pat, p.expectPunct("]")
}

func (p *parser) parseObjectPattern() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	pat := jsast.ObjectPattern{}
	for !p.isPunct("}") {
		if p.isPunct("...") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			rest, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			pat.Rest = rest
			break
		}
		key, computed, err := p.parsePropertyKey()
		if err != nil {
			return nil, err
		}
		var value jsast.Node
		if p.isPunct(":") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			value, err = p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
		} else {
			value = key
		}
		var def jsast.Node
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			def, err = p.parseAssign()
			if err != nil {
				return nil, err
			}
		}
		pat.Props = append(pat.Props, jsast.ObjectPatternProp{Key: key, Computed: computed, Value: value, Default: def})
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return pat, p.expectPunct("}")
}
