package jsparse

import (
	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jslex"
)

func (p *parser) parseStatement() (jsast.Node, error) {
	switch {
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isPunct(";"):
		return jsast.EmptyStmt{}, p.advance()
	case p.isKeyword("var"), p.isKeyword("let"), p.isKeyword("const"):
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		return decl, p.consumeSemicolon()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("do"):
		return p.parseDoWhile()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("throw"):
		return p.parseThrow()
	case p.isKeyword("try"):
		return p.parseTry()
	case p.isKeyword("break"):
		return p.parseBreakContinue(true)
	case p.isKeyword("continue"):
		return p.parseBreakContinue(false)
	case p.isKeyword("switch"):
		return p.parseSwitch()
	case p.isKeyword("function"):
		fn, err := p.parseFunction(false)
		if err != nil {
			return nil, err
		}
		return fn, nil
	case p.isKeyword("async"):
		if peek, err := p.peekToken(); err == nil && peek.Kind == jslex.Keyword && peek.Text == "function" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			fn, err := p.parseFunction(true)
			if err != nil {
				return nil, err
			}
			return fn, nil
		}
	}

	if p.tok.Kind == jslex.Ident {
		if peek, err := p.peekToken(); err == nil && peek.Kind == jslex.Punct && peek.Text == ":" {
			label := p.tok.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			body, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			return jsast.LabeledStmt{Label: label, Body: body}, nil
		}
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return jsast.ExprStmt{Expr: expr}, nil
}

func (p *parser) parseBlock() (jsast.Node, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var body []jsast.Node
	for !p.isPunct("}") {
		if p.tok.Kind == jslex.EOF {
			return nil, p.errorf("unterminated block at EOF")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return jsast.BlockStmt{Body: body}, p.advance()
}

func (p *parser) parseVarDecl() (jsast.VarDecl, error) {
	kind := p.tok.Text
	if err := p.advance(); err != nil {
		return jsast.VarDecl{}, err
	}
	var decls []jsast.Declarator
	for {
		target, err := p.parseBindingTarget()
		if err != nil {
			return jsast.VarDecl{}, err
		}
		var init jsast.Node
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return jsast.VarDecl{}, err
			}
			init, err = p.parseAssign()
			if err != nil {
				return jsast.VarDecl{}, err
			}
		}
		decls = append(decls, jsast.Declarator{Target: target, Init: init})
		if !p.isPunct(",") {
			break
		}
		if err := p.advance(); err != nil {
			return jsast.VarDecl{}, err
		}
	}
	return jsast.VarDecl{Kind: kind, Decls: decls}, nil
}

func (p *parser) parseIf() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	thenStmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseStmt jsast.Node
	if p.isKeyword("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseStmt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return jsast.IfStmt{Test: test, Then: thenStmt, Else: elseStmt}, nil
}

func (p *parser) parseWhile() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return jsast.WhileStmt{Test: test, Body: body}, nil
}

func (p *parser) parseDoWhile() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("while") {
		return nil, p.errorf("expected 'while' after do-block body")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return jsast.DoWhileStmt{Body: body, Test: test}, p.consumeSemicolon()
}

// parseFor handles the three for-loop shapes: classic C-style, for-of, and
// for-in, disambiguated by scanning past the init clause for the "of"/"in"
// keyword.
func (p *parser) parseFor() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	await := false
	if p.isKeyword("await") {
		await = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var init jsast.Node
	var err error
	if p.isPunct(";") {
		init = nil
	} else if p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const") {
		init, err = p.parseVarDecl()
	} else {
		init, err = p.parseExprNoIn()
	}
	if err != nil {
		return nil, err
	}

	if p.isKeyword("of") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return jsast.ForOfStmt{Decl: init, Right: right, Body: body, Await: await}, nil
	}
	if p.isKeyword("in") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return jsast.ForInStmt{Decl: init, Right: right, Body: body}, nil
	}

	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var test jsast.Node
	if !p.isPunct(";") {
		test, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var update jsast.Node
	if !p.isPunct(")") {
		update, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return jsast.ForStmt{Init: init, Test: test, Update: update, Body: body}, nil
}

func (p *parser) parseReturn() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isPunct(";") || p.isPunct("}") || p.tok.NewlineBefore || p.tok.Kind == jslex.EOF {
		return jsast.ReturnStmt{}, p.consumeSemicolon()
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return jsast.ReturnStmt{Arg: arg}, p.consumeSemicolon()
}

func (p *parser) parseThrow() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return jsast.ThrowStmt{Arg: arg}, p.consumeSemicolon()
}

func (p *parser) parseTry() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := jsast.TryStmt{Block: block}
	if p.isKeyword("catch") {
		stmt.HasCatch = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			target, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			stmt.CatchParam = target
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		catchBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.CatchBody = catchBody
	}
	if p.isKeyword("finally") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		finallyBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.FinallyBody = finallyBody
	}
	if !stmt.HasCatch && stmt.FinallyBody == nil {
		return nil, p.errorf("try statement needs a catch or finally clause")
	}
	return stmt, nil
}

func (p *parser) parseBreakContinue(isBreak bool) (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	label := ""
	if p.tok.Kind == jslex.Ident && !p.tok.NewlineBefore {
		label = p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	if isBreak {
		return jsast.BreakStmt{Label: label}, nil
	}
	return jsast.ContinueStmt{Label: label}, nil
}

func (p *parser) parseSwitch() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	disc, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var cases []jsast.SwitchCase
	for !p.isPunct("}") {
		var c jsast.SwitchCase
		if p.isKeyword("case") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			c.Test, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		} else if p.isKeyword("default") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			return nil, p.errorf("expected 'case' or 'default', got %q", p.tok.Text)
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		for !p.isKeyword("case") && !p.isKeyword("default") && !p.isPunct("}") {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			c.Body = append(c.Body, stmt)
		}
		cases = append(cases, c)
	}
	return jsast.SwitchStmt{Disc: disc, Cases: cases}, p.advance()
}
