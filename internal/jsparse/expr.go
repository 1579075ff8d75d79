package jsparse

import (
	"strconv"
	"strings"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jslex"
)

// parseExpr parses a full expression, including the comma operator.
func (p *parser) parseExpr() (jsast.Node, error) {
	first, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(",") {
		return first, nil
	}
	exprs := []jsast.Node{first}
	for p.isPunct(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return jsast.SeqExpr{Exprs: exprs}, nil
}

// parseExprNoIn parses an expression where a bare "in" keyword at the top
// level ends the expression instead of being parsed as the in operator —
// needed to stop a classic for-loop's init clause at "in"/"of".
func (p *parser) parseExprNoIn() (jsast.Node, error) {
	p.noIn++
	defer func() { p.noIn-- }()
	return p.parseExpr()
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	">>>=": true, "&&=": true, "||=": true, "??=": true,
}

func (p *parser) parseAssign() (jsast.Node, error) {
	if arrow, ok, err := p.tryParseArrow(); err != nil {
		return nil, err
	} else if ok {
		return arrow, nil
	}
	if p.isKeyword("yield") {
		return p.parseYield()
	}

	left, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind == jslex.Punct && assignOps[p.tok.Text] {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return jsast.AssignExpr{Op: op, Target: left, Value: right}, nil
	}
	return left, nil
}

func (p *parser) parseYield() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	delegate := false
	if p.isPunct("*") {
		delegate = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.isPunct(")") || p.isPunct(";") || p.isPunct("}") || p.isPunct(",") || p.tok.NewlineBefore || p.tok.Kind == jslex.EOF {
		return jsast.YieldExpr{Delegate: delegate}, nil
	}
	arg, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return jsast.YieldExpr{Arg: arg, Delegate: delegate}, nil
}

func (p *parser) parseCond() (jsast.Node, error) {
	test, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return test, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return jsast.CondExpr{Test: test, Then: thenExpr, Else: elseExpr}, nil
}

func (p *parser) parseNullish() (jsast.Node, error) {
	return p.parseLogicalLevel([]string{"??"}, p.parseLogicalOr)
}
func (p *parser) parseLogicalOr() (jsast.Node, error) {
	return p.parseLogicalLevel([]string{"||"}, p.parseLogicalAnd)
}
func (p *parser) parseLogicalAnd() (jsast.Node, error) {
	return p.parseLogicalLevel([]string{"&&"}, p.parseBitOr)
}

func (p *parser) parseLogicalLevel(ops []string, next func() (jsast.Node, error)) (jsast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == jslex.Punct && containsStr(ops, p.tok.Text) {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = jsast.LogicalExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// binaryLevels lists precedence climbing levels from loosest to tightest,
// excluding the logical operators (handled separately so they short-circuit
// rather than always evaluating both sides).
var binaryLevels = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"==", "!=", "===", "!=="},
	{"<", ">", "<=", ">=", "instanceof", "in"},
	{"<<", ">>", ">>>"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) parseBitOr() (jsast.Node, error) { return p.parseBinaryLevel(0) }

func (p *parser) parseBinaryLevel(level int) (jsast.Node, error) {
	if level == len(binaryLevels) {
		return p.parseExponent()
	}
	left, err := p.parseBinaryLevel(level + 1)
	if err != nil {
		return nil, err
	}
	ops := binaryLevels[level]
	for p.matchesBinaryOp(ops) {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseBinaryLevel(level + 1)
		if err != nil {
			return nil, err
		}
		left = jsast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) matchesBinaryOp(ops []string) bool {
	if p.tok.Kind == jslex.Keyword {
		if (p.tok.Text == "in" && p.noIn > 0) {
			return false
		}
		return containsStr(ops, p.tok.Text)
	}
	if p.tok.Kind == jslex.Punct {
		return containsStr(ops, p.tok.Text)
	}
	return false
}

func (p *parser) parseExponent() (jsast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.isPunct("**") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExponent() // right-associative
		if err != nil {
			return nil, err
		}
		return jsast.BinaryExpr{Op: "**", Left: left, Right: right}, nil
	}
	return left, nil
}

var unaryOps = map[string]bool{"+": true, "-": true, "!": true, "~": true}
var unaryKeywords = map[string]bool{"typeof": true, "void": true, "delete": true}

func (p *parser) parseUnary() (jsast.Node, error) {
	if p.tok.Kind == jslex.Punct && unaryOps[p.tok.Text] {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return jsast.UnaryExpr{Op: op, Arg: arg, Prefix: true}, nil
	}
	if p.tok.Kind == jslex.Keyword && unaryKeywords[p.tok.Text] {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return jsast.UnaryExpr{Op: op, Arg: arg, Prefix: true}, nil
	}
	if p.isPunct("++") || p.isPunct("--") {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return jsast.UpdateExpr{Op: op, Arg: arg, Prefix: true}, nil
	}
	if p.isKeyword("await") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return jsast.AwaitExpr{Arg: arg}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (jsast.Node, error) {
	expr, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	if (p.isPunct("++") || p.isPunct("--")) && !p.tok.NewlineBefore {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return jsast.UpdateExpr{Op: op, Arg: expr, Prefix: false}, nil
	}
	return expr, nil
}

func (p *parser) parseCallMember() (jsast.Node, error) {
	var expr jsast.Node
	var err error
	if p.isKeyword("new") {
		expr, err = p.parseNew()
	} else {
		expr, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.identName()
			if err != nil {
				return nil, err
			}
			expr = jsast.MemberExpr{Object: expr, Property: jsast.Identifier{Name: name}}
		case p.isPunct("?."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isPunct("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = jsast.CallExpr{Callee: expr, Args: args, Optional: true}
				continue
			}
			if p.isPunct("[") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				prop, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if err := p.expectPunct("]"); err != nil {
					return nil, err
				}
				expr = jsast.MemberExpr{Object: expr, Property: prop, Computed: true, Optional: true}
				continue
			}
			name, err := p.identName()
			if err != nil {
				return nil, err
			}
			expr = jsast.MemberExpr{Object: expr, Property: jsast.Identifier{Name: name}, Optional: true}
		case p.isPunct("["):
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = jsast.MemberExpr{Object: expr, Property: prop, Computed: true}
		case p.isPunct("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = jsast.CallExpr{Callee: expr, Args: args}
		case p.tok.Kind == jslex.TemplateString:
			tmpl, err := p.parseTemplateLiteral()
			if err != nil {
				return nil, err
			}
			expr = jsast.TaggedTemplateExpr{Tag: expr, Template: tmpl.(*jsast.TemplateLit)}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseNew() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var callee jsast.Node
	var err error
	if p.isKeyword("new") {
		callee, err = p.parseNew()
	} else {
		callee, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	for p.isPunct(".") || p.isPunct("[") {
		if p.isPunct(".") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.identName()
			if err != nil {
				return nil, err
			}
			callee = jsast.MemberExpr{Object: callee, Property: jsast.Identifier{Name: name}}
		} else {
			if err := p.advance(); err != nil {
				return nil, err
			}
			prop, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			callee = jsast.MemberExpr{Object: callee, Property: prop, Computed: true}
		}
	}
	var args []jsast.Node
	if p.isPunct("(") {
		var err error
		args, err = p.parseArgs()
		if err != nil {
			return nil, err
		}
	}
	return jsast.NewExpr{Callee: callee, Args: args}, nil
}

func (p *parser) parseArgs() ([]jsast.Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []jsast.Node
	for !p.isPunct(")") {
		if p.isPunct("...") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			args = append(args, jsast.SpreadElement{Arg: arg})
		} else {
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, p.expectPunct(")")
}

func (p *parser) parsePrimary() (jsast.Node, error) {
	switch {
	case p.tok.Kind == jslex.Number:
		f, err := strconv.ParseFloat(p.tok.Text, 64)
		if err != nil {
			return nil, p.errorf("invalid number literal %q", p.tok.Text)
		}
		return jsast.NumberLit{Value: f}, p.advance()
	case p.tok.Kind == jslex.BigInt:
		text := p.tok.Text
		return jsast.BigIntLit{Text: text}, p.advance()
	case p.tok.Kind == jslex.String:
		s := p.tok.Str
		return jsast.StringLit{Value: s}, p.advance()
	case p.tok.Kind == jslex.TemplateString:
		return p.parseTemplateLiteral()
	case p.tok.Kind == jslex.Regex:
		pat, flags := p.tok.RegexPattern, p.tok.RegexFlags
		return jsast.RegexLit{Pattern: pat, Flags: flags}, p.advance()
	case p.isKeyword("true"):
		return jsast.BoolLit{Value: true}, p.advance()
	case p.isKeyword("false"):
		return jsast.BoolLit{Value: false}, p.advance()
	case p.isKeyword("null"):
		return jsast.NullLit{}, p.advance()
	case p.isKeyword("undefined"):
		return jsast.UndefinedLit{}, p.advance()
	case p.isKeyword("this"):
		return jsast.ThisExpr{}, p.advance()
	case p.isKeyword("function"):
		return p.parseFunction(false)
	case p.isKeyword("async"):
		if peek, err := p.peekToken(); err == nil && peek.Kind == jslex.Keyword && peek.Text == "function" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.parseFunction(true)
		}
		name := p.tok.Text
		return jsast.Identifier{Name: name}, p.advance()
	case p.isPunct("("):
		return p.parseParenOrSeq()
	case p.isPunct("["):
		return p.parseArrayLit()
	case p.isPunct("{"):
		return p.parseObjectLit()
	case p.tok.Kind == jslex.Ident || p.tok.Kind == jslex.Keyword:
		name := p.tok.Text
		return jsast.Identifier{Name: name}, p.advance()
	}
	return nil, p.errorf("unexpected token %q", p.tok.Text)
}

func (p *parser) parseParenOrSeq() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		return nil, p.errorf("unexpected empty parentheses")
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return expr, p.expectPunct(")")
}

func (p *parser) parseArrayLit() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var elems []jsast.Node
	for !p.isPunct("]") {
		if p.isPunct(",") {
			elems = append(elems, nil)
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.isPunct("...") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			elems = append(elems, jsast.SpreadElement{Arg: arg})
		} else {
			el, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return jsast.ArrayLit{Elements: elems}, p.expectPunct("]")
}

func (p *parser) parseObjectLit() (jsast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var props []jsast.ObjectProp
	for !p.isPunct("}") {
		if p.isPunct("...") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			props = append(props, jsast.ObjectProp{Spread: true, Value: arg})
		} else {
			prop, err := p.parseObjectProp()
			if err != nil {
				return nil, err
			}
			props = append(props, prop)
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return jsast.ObjectLit{Props: props}, p.expectPunct("}")
}

func (p *parser) parseObjectProp() (jsast.ObjectProp, error) {
	if (p.tok.Text == "get" || p.tok.Text == "set") && p.tok.Kind == jslex.Keyword {
		kind := p.tok.Text
		if peek, err := p.peekToken(); err == nil && !(peek.Kind == jslex.Punct && (peek.Text == ":" || peek.Text == "," || peek.Text == "}" || peek.Text == "(")) {
			if err := p.advance(); err != nil {
				return jsast.ObjectProp{}, err
			}
			key, computed, err := p.parsePropertyKey()
			if err != nil {
				return jsast.ObjectProp{}, err
			}
			fn, err := p.parseFunctionTail("", false, false)
			if err != nil {
				return jsast.ObjectProp{}, err
			}
			return jsast.ObjectProp{Key: key, Computed: computed, Value: fn, Kind: kind}, nil
		}
	}

	generator := false
	if p.isPunct("*") {
		generator = true
		if err := p.advance(); err != nil {
			return jsast.ObjectProp{}, err
		}
	}
	async := false
	if p.tok.Kind == jslex.Keyword && p.tok.Text == "async" {
		if peek, err := p.peekToken(); err == nil && !(peek.Kind == jslex.Punct && (peek.Text == ":" || peek.Text == "," || peek.Text == "}" || peek.Text == "(")) {
			async = true
			if err := p.advance(); err != nil {
				return jsast.ObjectProp{}, err
			}
			if p.isPunct("*") {
				generator = true
				if err := p.advance(); err != nil {
					return jsast.ObjectProp{}, err
				}
			}
		}
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return jsast.ObjectProp{}, err
	}

	if p.isPunct("(") {
		fn, err := p.parseFunctionTail("", generator, async)
		if err != nil {
			return jsast.ObjectProp{}, err
		}
		return jsast.ObjectProp{Key: key, Computed: computed, Value: fn, Kind: "init"}, nil
	}
	if p.isPunct(":") {
		if err := p.advance(); err != nil {
			return jsast.ObjectProp{}, err
		}
		val, err := p.parseAssign()
		if err != nil {
			return jsast.ObjectProp{}, err
		}
		return jsast.ObjectProp{Key: key, Computed: computed, Value: val, Kind: "init"}, nil
	}
	// Shorthand { x } or { x = default } (the latter only valid inside a
	// destructuring pattern, accepted permissively here).
	if id, ok := key.(jsast.Identifier); ok {
		var val jsast.Node = id
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return jsast.ObjectProp{}, err
			}
			def, err := p.parseAssign()
			if err != nil {
				return jsast.ObjectProp{}, err
			}
			val = jsast.AssignExpr{Op: "=", Target: id, Value: def}
		}
		return jsast.ObjectProp{Key: key, Value: val, Shorthand: true, Kind: "init"}, nil
	}
	return jsast.ObjectProp{}, p.errorf("invalid shorthand property")
}

func (p *parser) parsePropertyKey() (jsast.Node, bool, error) {
	if p.isPunct("[") {
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		expr, err := p.parseAssign()
		if err != nil {
			return nil, false, err
		}
		return expr, true, p.expectPunct("]")
	}
	if p.tok.Kind == jslex.String {
		s := p.tok.Str
		return jsast.StringLit{Value: s}, false, p.advance()
	}
	if p.tok.Kind == jslex.Number {
		f, _ := strconv.ParseFloat(p.tok.Text, 64)
		return jsast.NumberLit{Value: f}, false, p.advance()
	}
	name, err := p.identName()
	if err != nil {
		return nil, false, err
	}
	return jsast.Identifier{Name: name}, false, nil
}

// parseTemplateLiteral splits the raw template token (backtick to
// backtick) into literal quasis and ${…} expressions, re-lexing each
// interpolation with a fresh parser instance.
func (p *parser) parseTemplateLiteral() (jsast.Node, error) {
	raw := p.tok.Text
	inner := raw[1 : len(raw)-1]
	var quasis []string
	var exprs []jsast.Node

	i := 0
	var cur strings.Builder
	for i < len(inner) {
		if inner[i] == '\\' && i+1 < len(inner) {
			r, n := decodeTemplateEscape(inner[i+1:])
			cur.WriteString(r)
			i += 1 + n
			continue
		}
		if inner[i] == '$' && i+1 < len(inner) && inner[i+1] == '{' {
			depth := 1
			j := i + 2
			for j < len(inner) && depth > 0 {
				switch inner[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			quasis = append(quasis, cur.String())
			cur.Reset()
			sub := &parser{lex: jslex.New(inner[i+2 : j])}
			if err := sub.advance(); err != nil {
				return nil, err
			}
			expr, err := sub.parseExpr()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
			i = j + 1
			continue
		}
		cur.WriteByte(inner[i])
		i++
	}
	quasis = append(quasis, cur.String())
	return &jsast.TemplateLit{Quasis: quasis, Exprs: exprs}, p.advance()
}

func decodeTemplateEscape(s string) (string, int) {
	if s == "" {
		return "", 0
	}
	switch s[0] {
	case 'n':
		return "\n", 1
	case 't':
		return "\t", 1
	case '`':
		return "`", 1
	case '$':
		return "$", 1
	case '\\':
		return "\\", 1
	default:
		return string(s[0]), 1
	}
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
