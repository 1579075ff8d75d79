package domtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/domtree"
)

func buildSimpleTree(t *testing.T) (*domtree.Dom, domtree.NodeId, domtree.NodeId) {
	t.Helper()
	d := domtree.NewDom()
	div := d.CreateElement("div")
	require.NoError(t, d.Append(d.Root(), div))
	d.SetAttr(div, "id", "outer")
	text := d.CreateText("hello")
	require.NoError(t, d.Append(div, text))
	return d, div, text
}

func TestAttributeCasePreservationAndOverwrite(t *testing.T) {
	d, div, _ := buildSimpleTree(t)
	d.SetAttr(div, "Data-Foo", "1")
	v, ok := d.GetAttr(div, "data-foo")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	d.SetAttr(div, "DATA-FOO", "2")
	assert.Equal(t, []string{"id", "Data-Foo"}, d.Node(div).Attrs.Keys())
	v, _ = d.GetAttr(div, "data-foo")
	assert.Equal(t, "2", v)
}

func TestGetByIDReturnsFirstInDocumentOrder(t *testing.T) {
	d := domtree.NewDom()
	a := d.CreateElement("div")
	b := d.CreateElement("div")
	require.NoError(t, d.Append(d.Root(), a))
	require.NoError(t, d.Append(d.Root(), b))
	d.SetAttr(a, "id", "x")
	d.SetAttr(b, "id", "x")

	got, ok := d.GetByID("x")
	require.True(t, ok)
	assert.Equal(t, a, got)

	require.NoError(t, d.Remove(a))
	got, ok = d.GetByID("x")
	require.True(t, ok)
	assert.Equal(t, b, got)

	d.RemoveAttr(b, "id")
	_, ok = d.GetByID("x")
	assert.False(t, ok)
}

func TestDumpNodeRoundTrip(t *testing.T) {
	d := domtree.NewDom()
	p := d.CreateElement("p")
	require.NoError(t, d.Append(d.Root(), p))
	d.SetAttr(p, "class", "a")
	d.SetAttr(p, "id", "x")
	text := d.CreateText(`<hi "there">`)
	require.NoError(t, d.Append(p, text))

	br := d.CreateElement("br")
	require.NoError(t, d.Append(p, br))

	got := d.DumpNode(d.Root())
	assert.Equal(t, `<p class="a" id="x">&lt;hi "there"&gt;<br></p>`, got)
}

func TestDumpNodeRawTextVerbatim(t *testing.T) {
	d := domtree.NewDom()
	script := d.CreateElement("script")
	require.NoError(t, d.Append(d.Root(), script))
	text := d.CreateText(`if (1 < 2) { console.log("&"); }`)
	require.NoError(t, d.Append(script, text))
	assert.Equal(t, `<script>if (1 < 2) { console.log("&"); }</script>`, d.DumpNode(d.Root()))
}

func TestHeaderRoleDependsOnAncestor(t *testing.T) {
	d := domtree.NewDom()
	header := d.CreateElement("header")
	require.NoError(t, d.Append(d.Root(), header))
	assert.Equal(t, "banner", d.Role(header))

	d.SetAttr(header, "role", "none")
	assert.Equal(t, "none", d.Role(header))
	d.RemoveAttr(header, "role")
	assert.Equal(t, "banner", d.Role(header))

	article := d.CreateElement("article")
	require.NoError(t, d.Append(d.Root(), article))
	headerInArticle := d.CreateElement("header")
	require.NoError(t, d.Append(article, headerInArticle))
	assert.Equal(t, "generic", d.Role(headerInArticle))
}

func TestVarAndAbbrHaveNoImplicitRole(t *testing.T) {
	d := domtree.NewDom()
	v := d.CreateElement("var")
	require.NoError(t, d.Append(d.Root(), v))
	assert.Equal(t, "", d.Role(v))

	abbr := d.CreateElement("abbr")
	require.NoError(t, d.Append(d.Root(), abbr))
	assert.Equal(t, "", d.Role(abbr))
}

func TestDatasetPropertyMapping(t *testing.T) {
	prop, ok := domtree.DatasetAttrToProperty("data-num-a")
	require.True(t, ok)
	assert.Equal(t, "numA", prop)
	assert.Equal(t, "data-num-a", domtree.DatasetPropertyToAttr("numA"))
}
