package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/htmlparse"
	"github.com/domharness/domharness/internal/selector"
)

func TestDescendantChildAdjacentCombinators(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<div class="a"><section><span id="s1">x</span></section><p>y</p><span id="s2">z</span></div>`)
	require.NoError(t, err)

	got, err := selector.QuerySelectorAll(dom, dom.Root(), "div.a span")
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = selector.QuerySelectorAll(dom, dom.Root(), "div.a > span")
	require.NoError(t, err)
	require.Len(t, got, 1)
	v, _ := dom.GetAttr(got[0], "id")
	assert.Equal(t, "s2", v)

	got, err = selector.QuerySelectorAll(dom, dom.Root(), "p + span")
	require.NoError(t, err)
	require.Len(t, got, 1)
	v, _ = dom.GetAttr(got[0], "id")
	assert.Equal(t, "s2", v)
}

func TestAttributeOperators(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<a href="https://example.com/foo" class="btn primary" data-x="1"></a>`)
	require.NoError(t, err)
	a := dom.GetElementsByTagName(dom.Root(), "a")[0]

	list, err := selector.Parse(`a[href^="https://"]`)
	require.NoError(t, err)
	assert.True(t, list.Matches(dom, a))

	list, err = selector.Parse(`a[href$="foo"]`)
	require.NoError(t, err)
	assert.True(t, list.Matches(dom, a))

	list, err = selector.Parse(`a[class~="primary"]`)
	require.NoError(t, err)
	assert.True(t, list.Matches(dom, a))

	list, err = selector.Parse(`a[data-x]`)
	require.NoError(t, err)
	assert.True(t, list.Matches(dom, a))
}

func TestInputTypeAttributeIsCaseInsensitive(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<input type="CHECKBOX">`)
	require.NoError(t, err)
	input := dom.GetElementsByTagName(dom.Root(), "input")[0]
	list, err := selector.Parse(`input[type=checkbox]`)
	require.NoError(t, err)
	assert.True(t, list.Matches(dom, input))
}

func TestNotPseudoClass(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<ul><li class="skip">a</li><li>b</li></ul>`)
	require.NoError(t, err)
	got, err := selector.QuerySelectorAll(dom, dom.Root(), "li:not(.skip)")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", dom.TextContent(got[0]))
}

func TestFirstLastChildAndCommaList(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<ul><li>a</li><li>b</li><li>c</li></ul>`)
	require.NoError(t, err)
	got, err := selector.QuerySelectorAll(dom, dom.Root(), "li:first-child, li:last-child")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", dom.TextContent(got[0]))
	assert.Equal(t, "c", dom.TextContent(got[1]))
}

func TestQuerySelectorReturnsFirstMatchOnly(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<div><p id="p1"></p><p id="p2"></p></div>`)
	require.NoError(t, err)
	got, ok, err := selector.QuerySelector(dom, dom.Root(), "p")
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := dom.GetAttr(got, "id")
	assert.Equal(t, "p1", v)
}
