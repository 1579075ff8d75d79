package htmlparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/htmlparse"
)

func TestParseBasicTreeAndRoundTrip(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<div id="x" class="a b"><p>hello &amp; world</p></div>`)
	require.NoError(t, err)
	assert.Equal(t, `<div class="a b" id="x"><p>hello &amp; world</p></div>`, dom.DumpNode(dom.Root()))
}

func TestVoidTagAutoCloses(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<div><br><span>x</span></div>`)
	require.NoError(t, err)
	div := dom.GetElementsByTagName(dom.Root(), "div")
	require.Len(t, div, 1)
	children := dom.Children(div[0])
	require.Len(t, children, 2)
	assert.Equal(t, "br", dom.Node(children[0]).TagName)
	assert.Equal(t, "span", dom.Node(children[1]).TagName)
}

func TestUnmatchedEndTagIsIgnored(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<div>hi</span></div>`)
	require.NoError(t, err)
	assert.Equal(t, "hi", dom.TextContent(dom.Root()))
}

func TestScriptIsRawTextAndCollected(t *testing.T) {
	dom, scripts, err := htmlparse.Parse(`<script>if (1 < 2) { x(); }</script>`)
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "if (1 < 2) { x(); }", scripts[0].Source)
	assert.Equal(t, `<script>if (1 < 2) { x(); }</script>`, dom.DumpNode(dom.Root()))
}

func TestDuplicateAttributeKeepsFirstOccurrence(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<div id="first" id="second"></div>`)
	require.NoError(t, err)
	div := dom.GetElementsByTagName(dom.Root(), "div")[0]
	v, ok := dom.GetAttr(div, "id")
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestUnterminatedAttributeStringIsAnError(t *testing.T) {
	_, _, err := htmlparse.Parse(`<div id="unterminated>`)
	require.Error(t, err)
}

func TestNumericCharacterReferencesDecode(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<p>&#65;&#x42;</p>`)
	require.NoError(t, err)
	p := dom.GetElementsByTagName(dom.Root(), "p")[0]
	assert.Equal(t, "AB", dom.TextContent(p))
}

func TestBooleanAndUnquotedAttributes(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<input disabled value=abc type=checkbox>`)
	require.NoError(t, err)
	input := dom.GetElementsByTagName(dom.Root(), "input")[0]
	assert.True(t, dom.HasAttr(input, "disabled"))
	v, _ := dom.GetAttr(input, "value")
	assert.Equal(t, "abc", v)
}
