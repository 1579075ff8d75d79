package jsparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsparse"
)

func TestParseVarDeclAndBinaryExpr(t *testing.T) {
	prog, err := jsparse.Parse("let x = 1 + 2 * 3;")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	decl, ok := prog.Body[0].(jsast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "let", decl.Kind)
	bin, ok := decl.Decls[0].Init.(jsast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	rightBin, ok := bin.Right.(jsast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", rightBin.Op, "multiplication should bind tighter than addition")
}

func TestParseArrowFunctions(t *testing.T) {
	for _, src := range []string{
		"const f = x => x + 1;",
		"const f = (x, y) => x + y;",
		"const f = () => ({ a: 1 });",
		"const f = async x => await x;",
	} {
		_, err := jsparse.Parse(src)
		assert.NoError(t, err, "src=%q", src)
	}
}

func TestParenthesizedExpressionIsNotMisreadAsArrow(t *testing.T) {
	prog, err := jsparse.Parse("(a + b) * c;")
	require.NoError(t, err)
	exprStmt := prog.Body[0].(jsast.ExprStmt)
	bin := exprStmt.Expr.(jsast.BinaryExpr)
	assert.Equal(t, "*", bin.Op)
}

func TestParseIfForWhileTryFinally(t *testing.T) {
	src := `
	if (a) { b(); } else { c(); }
	for (let i = 0; i < 10; i++) { d(i); }
	for (const v of arr) { e(v); }
	for (const k in obj) { f(k); }
	while (cond) { g(); }
	do { h(); } while (cond2);
	try { risky(); } catch (err) { handle(err); } finally { cleanup(); }
	`
	_, err := jsparse.Parse(src)
	assert.NoError(t, err)
}

func TestParseTemplateLiteralWithInterpolation(t *testing.T) {
	prog, err := jsparse.Parse("let s = `hello ${name + 1}!`;")
	require.NoError(t, err)
	decl := prog.Body[0].(jsast.VarDecl)
	tmpl := decl.Decls[0].Init.(*jsast.TemplateLit)
	require.Len(t, tmpl.Exprs, 1)
	assert.Equal(t, []string{"hello ", "!"}, tmpl.Quasis)
}

func TestParseDestructuring(t *testing.T) {
	_, err := jsparse.Parse("let { a, b: [c, ...rest] } = obj;")
	assert.NoError(t, err)
}

func TestParseGeneratorAndAsyncFunction(t *testing.T) {
	_, err := jsparse.Parse(`
	function* gen() { yield 1; yield* other(); }
	async function f() { await g(); }
	`)
	assert.NoError(t, err)
}

func TestParseSwitchAndLabeledBreak(t *testing.T) {
	src := `
	outer: for (;;) {
		switch (x) {
			case 1:
				break outer;
			default:
				continue;
		}
	}
	`
	_, err := jsparse.Parse(src)
	assert.NoError(t, err)
}

func TestRegexLiteralAfterReturn(t *testing.T) {
	prog, err := jsparse.Parse("function f() { return /ab+c/i; }")
	require.NoError(t, err)
	fn := prog.Body[0].(*jsast.FuncExpr)
	block := fn.Body.(jsast.BlockStmt)
	ret := block.Body[0].(jsast.ReturnStmt)
	regex := ret.Arg.(jsast.RegexLit)
	assert.Equal(t, "ab+c", regex.Pattern)
	assert.Equal(t, "i", regex.Flags)
}

func TestMemberAndOptionalChaining(t *testing.T) {
	_, err := jsparse.Parse("a?.b?.[0]?.();")
	assert.NoError(t, err)
}

func TestUnterminatedStringIsParseError(t *testing.T) {
	_, err := jsparse.Parse(`let x = "unterminated;`)
	assert.Error(t, err)
}
