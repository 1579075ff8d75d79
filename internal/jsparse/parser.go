// Package jsparse turns jslex tokens into a jsast.Program via ordinary
// recursive-descent for statements and precedence climbing for
// expressions — no parser generator, matching the hand-written tokenizer
// and evaluator this surface pairs with.
package jsparse

import (
	"fmt"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jslex"
)

// Parse compiles src into a Program. Errors are returned as plain Go
// errors carrying a human-readable parse-failure reason; no
// source location is attached.
func Parse(src string) (*jsast.Program, error) {
	p := &parser{lex: jslex.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var body []jsast.Node
	for p.tok.Kind != jslex.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return &jsast.Program{Body: body}, nil
}

type parser struct {
	lex  *jslex.Lexer
	tok  jslex.Token
	peek *jslex.Token // one token of lookahead, filled lazily
	noIn int          // >0 while parsing a for-loop init clause (stops bare "in" there)
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) peekToken() (jslex.Token, error) {
	if p.peek == nil {
		tok, err := p.lex.Next()
		if err != nil {
			return jslex.Token{}, err
		}
		p.peek = &tok
	}
	return *p.peek, nil
}

func (p *parser) isPunct(s string) bool  { return p.tok.Kind == jslex.Punct && p.tok.Text == s }
func (p *parser) isKeyword(s string) bool {
	return p.tok.Kind == jslex.Keyword && p.tok.Text == s
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected %q, got %q", s, p.tok.Text)
	}
	return p.advance()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("jsparse: "+format, args...)
}

// consumeSemicolon implements the grammar's automatic-semicolon-insertion
// escape hatch: an explicit ";" is consumed; otherwise a line break, "}",
// or EOF before the next token ends the statement silently.
func (p *parser) consumeSemicolon() error {
	if p.isPunct(";") {
		return p.advance()
	}
	if p.tok.NewlineBefore || p.isPunct("}") || p.tok.Kind == jslex.EOF {
		return nil
	}
	return p.errorf("expected ';', got %q", p.tok.Text)
}

func (p *parser) identName() (string, error) {
	if p.tok.Kind != jslex.Ident && p.tok.Kind != jslex.Keyword {
		return "", p.errorf("expected identifier, got %q", p.tok.Text)
	}
	name := p.tok.Text
	return name, p.advance()
}
