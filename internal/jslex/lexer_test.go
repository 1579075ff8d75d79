package jslex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/jslex"
)

func allTokens(t *testing.T, src string) []jslex.Token {
	t.Helper()
	l := jslex.New(src)
	var out []jslex.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == jslex.EOF {
			return out
		}
		out = append(out, tok)
	}
}

func TestDivisionAfterIdentifier(t *testing.T) {
	toks := allTokens(t, "a / b")
	require.Len(t, toks, 3)
	assert.Equal(t, jslex.Punct, toks[1].Kind)
	assert.Equal(t, "/", toks[1].Text)
}

func TestRegexAfterReturnKeyword(t *testing.T) {
	toks := allTokens(t, "return /abc/g")
	require.Len(t, toks, 2)
	assert.Equal(t, jslex.Regex, toks[1].Kind)
	assert.Equal(t, "abc", toks[1].RegexPattern)
	assert.Equal(t, "g", toks[1].RegexFlags)
}

func TestRegexAfterOpenParen(t *testing.T) {
	toks := allTokens(t, "foo(/x/)")
	require.Len(t, toks, 4)
	assert.Equal(t, jslex.Regex, toks[2].Kind)
}

func TestDivisionAfterCloseParen(t *testing.T) {
	toks := allTokens(t, "(a) / b")
	kinds := make([]jslex.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	require.Len(t, toks, 5)
	assert.Equal(t, jslex.Punct, toks[3].Kind)
	assert.Equal(t, "/", toks[3].Text)
}

func TestBigIntLiteral(t *testing.T) {
	toks := allTokens(t, "123n")
	require.Len(t, toks, 1)
	assert.Equal(t, jslex.BigInt, toks[0].Kind)
	assert.Equal(t, "123", toks[0].Text)
}

func TestStringEscapes(t *testing.T) {
	toks := allTokens(t, `"a\nb\"c"`)
	require.Len(t, toks, 1)
	assert.Equal(t, "a\nb\"c", toks[0].Str)
}

func TestTemplateLiteralCapturesRawSource(t *testing.T) {
	toks := allTokens(t, "`hi ${1 + 1} there`")
	require.Len(t, toks, 1)
	assert.Equal(t, jslex.TemplateString, toks[0].Kind)
	assert.Equal(t, "`hi ${1 + 1} there`", toks[0].Text)
}

func TestLongestPunctMatch(t *testing.T) {
	toks := allTokens(t, "a >>>= b")
	require.Len(t, toks, 3)
	assert.Equal(t, ">>>=", toks[1].Text)
}
