package formctl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/formctl"
	"github.com/domharness/domharness/internal/htmlparse"
)

func TestValueDirtinessFlag(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<input value="initial">`)
	require.NoError(t, err)
	input := dom.GetElementsByTagName(dom.Root(), "input")[0]

	assert.Equal(t, "initial", dom.CurrentValue(input))

	formctl.SetValue(dom, input, "user-typed")
	assert.Equal(t, "user-typed", dom.CurrentValue(input))

	formctl.OnValueAttrSet(dom, input, "from-attribute")
	assert.Equal(t, "user-typed", dom.CurrentValue(input), "dirty control ignores attribute resets")

	formctl.OnValueAttrRemoved(dom, input)
	assert.Equal(t, "", dom.CurrentValue(input))
	formctl.OnValueAttrSet(dom, input, "fresh")
	assert.Equal(t, "fresh", dom.CurrentValue(input), "dirtiness clears with the attribute")
}

func TestRadioGroupMutualExclusion(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<form>
		<input type="radio" name="color" id="r1">
		<input type="radio" name="color" id="r2">
	</form>`)
	require.NoError(t, err)
	r1 := findByID(t, dom, "r1")
	r2 := findByID(t, dom, "r2")

	formctl.SetChecked(dom, r1, true)
	assert.True(t, dom.IsChecked(r1))

	formctl.SetChecked(dom, r2, true)
	assert.False(t, dom.IsChecked(r1))
	assert.True(t, dom.IsChecked(r2))
}

func TestRadioGroupsAreScopedPerForm(t *testing.T) {
	dom, _, err := htmlparse.Parse(`
		<form><input type="radio" name="x" id="a1"></form>
		<form><input type="radio" name="x" id="a2"></form>`)
	require.NoError(t, err)
	a1 := findByID(t, dom, "a1")
	a2 := findByID(t, dom, "a2")

	formctl.SetChecked(dom, a1, true)
	formctl.SetChecked(dom, a2, true)
	assert.True(t, dom.IsChecked(a1), "separate forms keep independent radio groups")
	assert.True(t, dom.IsChecked(a2))
}

func TestSubmitAndResetClassification(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<button id="b1">go</button><button type="reset" id="b2"></button><input type="submit" id="b3"><input type="image" id="b4">`)
	require.NoError(t, err)
	assert.True(t, formctl.IsSubmitControl(dom, findByID(t, dom, "b1")))
	assert.True(t, formctl.IsResetControl(dom, findByID(t, dom, "b2")))
	assert.True(t, formctl.IsSubmitControl(dom, findByID(t, dom, "b3")))
	assert.True(t, formctl.IsSubmitControl(dom, findByID(t, dom, "b4")))
}

func TestSelectValueSync(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<select id="sel"><option value="a">A</option><option value="b">B</option></select>`)
	require.NoError(t, err)
	sel := findByID(t, dom, "sel")

	formctl.SetSelectValue(dom, sel, "b")
	assert.Equal(t, "b", formctl.SelectValue(dom, sel))

	formctl.SetSelectValue(dom, sel, "missing")
	assert.Equal(t, "", formctl.SelectValue(dom, sel))
}

func TestCheckValidityRequiredAndRange(t *testing.T) {
	dom, _, err := htmlparse.Parse(`<input id="n" type="number" required min="1" max="10">`)
	require.NoError(t, err)
	n := findByID(t, dom, "n")

	v := formctl.CheckValidity(dom, n)
	assert.True(t, v.ValueMissing)
	assert.False(t, v.Valid())

	formctl.SetValue(dom, n, "20")
	v = formctl.CheckValidity(dom, n)
	assert.True(t, v.RangeOverflow)
}

func findByID(t *testing.T, dom *domtree.Dom, id string) domtree.NodeId {
	t.Helper()
	got, ok := dom.GetByID(id)
	require.True(t, ok, "no element with id %q", id)
	return got
}
