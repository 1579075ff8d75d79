package jsparse

import (
	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jslex"
)

// parseFunction parses a `function` (declaration or expression) starting
// at the "function" keyword; async has already been consumed by the
// caller when present.
func (p *parser) parseFunction(async bool) (jsast.Node, error) {
	if err := p.advance(); err != nil { // consume "function"
		return nil, err
	}
	generator := false
	if p.isPunct("*") {
		generator = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	name := ""
	if p.tok.Kind == jslex.Ident {
		name = p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return p.parseFunctionTail(name, generator, async)
}

// parseFunctionTail parses "(params) { body }" given the name/generator/
// async flags already decided by the caller (covers function expressions,
// declarations, and object-literal methods alike).
func (p *parser) parseFunctionTail(name string, generator, async bool) (jsast.Node, error) {
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &jsast.FuncExpr{
		Name: name, Params: params, Body: body,
		Generator: generator, Async: async,
	}, nil
}

func (p *parser) parseParamList() ([]jsast.Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []jsast.Node
	for !p.isPunct(")") {
		if p.isPunct("...") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			params = append(params, jsast.SpreadElement{Arg: target})
		} else {
			target, err := p.parseBindingTarget()
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
				target = jsast.AssignExpr{Op: "=", Target: target, Value: def}
			}
			params = append(params, target)
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return params, p.expectPunct(")")
}

// tryParseArrow attempts to parse an arrow function starting at the
// current token. A single bare identifier followed by "=>" is detected
// with one token of lookahead. A parenthesized parameter list is
// ambiguous with a parenthesized expression until the matching ")" is
// found, so that case is tried on a cloned lexer (jslex.Lexer is a small
// value type, so cloning is just a struct copy): if the trial parse
// produces a valid parameter list immediately followed by "=>", the clone
// is adopted as the real parser state; otherwise it's discarded and the
// caller falls through to ordinary expression parsing, which reparses the
// same parenthesized expression with no lingering side effects.
func (p *parser) tryParseArrow() (jsast.Node, bool, error) {
	async := false
	if p.tok.Kind == jslex.Keyword && p.tok.Text == "async" {
		peek, err := p.peekToken()
		if err != nil {
			return nil, false, nil
		}
		if peek.Kind == jslex.Ident || (peek.Kind == jslex.Punct && peek.Text == "(") {
			async = true
		} else {
			return nil, false, nil
		}
	}

	if !async && p.tok.Kind != jslex.Ident && !(p.tok.Kind == jslex.Punct && p.tok.Text == "(") {
		return nil, false, nil
	}

	// Single bare identifier arrow: `x => …` or `async x => …`.
	identTok := p.tok
	if async {
		peek, err := p.peekToken()
		if err != nil {
			return nil, false, nil
		}
		identTok = peek
	}
	if identTok.Kind == jslex.Ident {
		trial := p.clone()
		if async {
			if err := trial.advance(); err != nil {
				return nil, false, nil
			}
		}
		afterIdent, err := trial.peekToken()
		if err == nil && afterIdent.Kind == jslex.Punct && afterIdent.Text == "=>" {
			if err := trial.advance(); err != nil { // consume identifier
				return nil, false, err
			}
			if err := trial.advance(); err != nil { // consume "=>"
				return nil, false, err
			}
			node, _, err := trial.finishArrow([]jsast.Node{jsast.Identifier{Name: identTok.Text}}, async)
			if err != nil {
				return nil, false, err
			}
			p.adopt(trial)
			return node, true, nil
		}
		if async {
			return nil, false, p.errorf("expected arrow parameters after 'async'")
		}
	}

	if !p.isPunct("(") && !(async && identTok.Kind == jslex.Punct && identTok.Text == "(") {
		if async {
			return nil, false, p.errorf("expected arrow parameters after 'async'")
		}
		return nil, false, nil
	}

	trial := p.clone()
	if async {
		if err := trial.advance(); err != nil { // consume "async"
			return nil, false, nil
		}
	}
	params, err := trial.parseParamList()
	if err != nil || !trial.isPunct("=>") {
		if async {
			if err != nil {
				return nil, false, err
			}
			return nil, false, p.errorf("expected '=>' after async arrow parameter list")
		}
		return nil, false, nil
	}
	if err := trial.advance(); err != nil { // consume "=>"
		return nil, false, err
	}
	node, _, err := trial.finishArrow(params, async)
	if err != nil {
		return nil, false, err
	}
	p.adopt(trial)
	return node, true, nil
}

// clone returns an independent parser positioned exactly where p is, for
// speculative parsing that can be thrown away.
func (p *parser) clone() *parser {
	lexCopy := *p.lex
	c := &parser{lex: &lexCopy, tok: p.tok, noIn: p.noIn}
	if p.peek != nil {
		peekCopy := *p.peek
		c.peek = &peekCopy
	}
	return c
}

// adopt replaces p's state with a successful trial parse's state.
func (p *parser) adopt(trial *parser) {
	*p = *trial
}

func (p *parser) finishArrow(params []jsast.Node, async bool) (jsast.Node, bool, error) {
	if p.isPunct("{") {
		body, err := p.parseBlock()
		if err != nil {
			return nil, false, err
		}
		return &jsast.FuncExpr{Params: params, Body: body, Arrow: true, Async: async}, true, nil
	}
	expr, err := p.parseAssign()
	if err != nil {
		return nil, false, err
	}
	return &jsast.FuncExpr{Params: params, Body: expr, Arrow: true, Async: async, ExprBody: true}, true, nil
}
