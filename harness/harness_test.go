package harness_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	null "gopkg.in/guregu/null.v3"

	"github.com/domharness/domharness/harness"
	"github.com/domharness/domharness/lib/testutils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newHarness(t *testing.T, html string) *harness.Harness {
	t.Helper()
	h, err := harness.New(html)
	require.NoError(t, err)
	return h
}

// listener_error_keeps_state_changes_before_throw: a listener that mutates
// state and then hits an undeclared identifier surfaces as a runtime error,
// but the mutation it already made is retained, and a later click still
// works normally.
func TestListenerErrorKeepsStateChangesBeforeThrow(t *testing.T) {
	h := newHarness(t, `
<button id="boom"></button>
<button id="check"></button>
<p id="result"></p>
<script>
var x = 0;
document.getElementById('boom').addEventListener('click', function() {
  x = 1;
  unknown_fn();
  x = 2;
});
document.getElementById('check').addEventListener('click', function() {
  document.getElementById('result').textContent = String(x);
});
</script>
`)

	err := h.Click("#boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable: unknown_fn")

	require.NoError(t, h.Click("#check"))
	require.NoError(t, h.AssertText("#result", "1"))
}

// listener_error_skips_later_listeners_and_ancestor_bubbling: a throwing
// listener aborts the dispatch at the point of the throw. A second listener
// on the same node never runs, and the event never bubbles to fire the
// ancestor's listener either — only the mutation the throwing listener made
// before its throw is observed.
func TestListenerErrorSkipsLaterListenersAndAncestorBubbling(t *testing.T) {
	h := newHarness(t, `
<div id="ancestor">
  <button id="boom"></button>
</div>
<button id="check"></button>
<p id="result"></p>
<script>
var log = '';
document.getElementById('ancestor').addEventListener('click', function() {
  log += 'ancestor;';
});
document.getElementById('boom').addEventListener('click', function() {
  log += 'first;';
  unknown_fn();
});
document.getElementById('boom').addEventListener('click', function() {
  log += 'second;';
});
document.getElementById('check').addEventListener('click', function() {
  document.getElementById('result').textContent = log;
});
</script>
`)

	err := h.Click("#boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable: unknown_fn")

	require.NoError(t, h.Click("#check"))
	require.NoError(t, h.AssertText("#result", "first;"))
}

// scheduling_timers_at_i64_max_now_does_not_overflow: once the clock sits at
// i64::MAX, scheduling any new timer saturates its due_at to i64::MAX too,
// so both timers are immediately due and fire in the order they were
// scheduled.
func TestSchedulingTimersAtMaxNowDoesNotOverflow(t *testing.T) {
	h := newHarness(t, `
<button id="timeout"></button>
<button id="interval"></button>
<p id="result"></p>
<script>
document.getElementById('timeout').addEventListener('click', function() {
  setTimeout(function() {
    document.getElementById('result').textContent += 't';
  }, 1000);
});
document.getElementById('interval').addEventListener('click', function() {
  setInterval(function() {
    document.getElementById('result').textContent += 'i';
  }, 1000);
});
</script>
`)

	h.AdvanceTime(math.MaxInt64)
	require.NoError(t, h.Click("#timeout"))
	require.NoError(t, h.Click("#interval"))

	pending := h.PendingTimers()
	require.Len(t, pending, 2)
	for _, tm := range pending {
		assert.Equal(t, int64(math.MaxInt64), tm.DueAt)
	}

	assert.Equal(t, 2, h.RunDueTimers())
	require.NoError(t, h.AssertText("#result", "ti"))
}

// generator_function_constructor_from_literal_builds_generator_functions:
// GeneratorFunction, reached the same way the global scope exposes it,
// builds a function whose calls produce a generator object, drivable with
// a plain for...of the same as a literal `function*`.
func TestGeneratorFunctionConstructorBuildsGeneratorFunctions(t *testing.T) {
	h := newHarness(t, `
<button id="run"></button>
<p id="out"></p>
<script>
var genFn = new GeneratorFunction('a', 'b', 'c', 'yield a; yield b; yield c;');
var emptyGenFn = new GeneratorFunction('');

document.getElementById('run').addEventListener('click', function() {
  var letters = '';
  for (const v of genFn('a', 'b', 'c')) {
    letters += v;
  }
  var nums = [];
  for (const v of genFn(1, 2, 3)) {
    nums.push(v);
  }
  var emptyCount = 0;
  for (const v of emptyGenFn()) {
    emptyCount++;
  }
  document.getElementById('out').textContent =
    letters + '|' + nums.join(',') + '|' + emptyCount + '|' + GeneratorFunction.name;
});
</script>
`)

	require.NoError(t, h.Click("#run"))
	require.NoError(t, h.AssertText("#out", "abc|1,2,3|0|GeneratorFunction"))
}

// async_generator_function_constructor_builds_async_generator_functions: an
// `async function*` literal still drains through the same synchronous
// next()/for...of protocol a plain generator does, since this harness has
// no microtask-level scheduling inside the generator coroutine itself.
func TestAsyncGeneratorLiteralBuildsAsyncGeneratorFunctions(t *testing.T) {
	h := newHarness(t, `
<button id="run"></button>
<p id="out"></p>
<script>
async function* gen() {
  yield 'a';
  yield 'b';
  yield 'c';
}

document.getElementById('run').addEventListener('click', function() {
  var letters = '';
  for (const v of gen()) {
    letters += v;
  }
  document.getElementById('out').textContent = letters;
});
</script>
`)

	require.NoError(t, h.Click("#run"))
	require.NoError(t, h.AssertText("#out", "abc"))
}

// header_role_resolution_follows_ancestor_context: a <header> is banner at
// the body level, and resolves to generic both inside an ancestor carrying
// a landmark role and inside an <article> (a sectioning-content element).
func TestHeaderRoleResolution(t *testing.T) {
	h := newHarness(t, `
<header id="top"></header>
<div id="nav-ish" role="navigation"><header id="inner"></header></div>
<article><header id="in-article"></header></article>
`)

	topInitial, err := h.ResolveRoleForTest("#top")
	require.NoError(t, err)
	assert.Equal(t, "banner", topInitial)

	innerRole, err := h.ResolveRoleForTest("#inner")
	require.NoError(t, err)
	assert.Equal(t, "generic", innerRole)

	articleRole, err := h.ResolveRoleForTest("#in-article")
	require.NoError(t, err)
	assert.Equal(t, "generic", articleRole)
}

// dialog_state_machine_sequence walks a <dialog> through its default
// closedby state, showModal, and requestClose (cancel then close).
func TestDialogStateMachineSequence(t *testing.T) {
	h := newHarness(t, `
<dialog id="d"></dialog>
<button id="show"></button>
<button id="request-close"></button>
<p id="log"></p>
<script>
var d = document.getElementById('d');
document.getElementById('show').addEventListener('click', function() {
  d.showModal();
});
document.getElementById('request-close').addEventListener('click', function() {
  d.requestClose('done');
});
d.addEventListener('close', function() {
  document.getElementById('log').textContent += 'close:' + d.returnValue + ';';
});
</script>
`)

	initialClosedBy, err := h.DialogClosedByForTest("#d")
	require.NoError(t, err)
	assert.Equal(t, "auto", initialClosedBy)

	require.NoError(t, h.Click("#show"))
	open, err := h.DialogOpenForTest("#d")
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, h.Click("#request-close"))
	open, err = h.DialogOpenForTest("#d")
	require.NoError(t, err)
	assert.False(t, open)
	require.NoError(t, h.AssertText("#log", "close:done;"))
}

// Property: parsing an HTML document and reading it back through
// textContent round-trips exactly, with no whitespace normalization.
func TestPropertyDomTextContentRoundTrips(t *testing.T) {
	h := newHarness(t, `<p id="p">  hello   world  </p>`)
	require.NoError(t, h.AssertText("#p", "  hello   world  "))
}

// Property: when two elements share an id, getElementById-style resolution
// (the selector engine's #id form) always yields the first in document
// order.
func TestPropertyDuplicateIdResolvesToFirstInDocumentOrder(t *testing.T) {
	h := newHarness(t, `
<p id="dup">first</p>
<p id="dup">second</p>
`)
	require.NoError(t, h.AssertText("#dup", "first"))
}

// Property: clicking a radio input clears every other radio in the same
// named group, scoped to the owning form.
func TestPropertyRadioGroupExclusivity(t *testing.T) {
	h := newHarness(t, `
<form>
<input type="radio" name="color" id="red" checked>
<input type="radio" name="color" id="blue">
</form>
<p id="out"></p>
<script>
document.getElementById('blue').addEventListener('click', function() {
  document.getElementById('out').textContent =
    String(document.getElementById('red').checked) + ',' + String(document.getElementById('blue').checked);
});
</script>
`)
	require.NoError(t, h.Click("#blue"))
	require.NoError(t, h.AssertText("#out", "false,true"))
}

// Property: a failed assertion reports both the expected and actual values,
// and never poisons the harness for subsequent calls.
func TestPropertyAssertionMismatchReportsBothValues(t *testing.T) {
	h := newHarness(t, `<p id="p">actual-value</p>`)
	err := h.AssertText("#p", "expected-value")
	require.Error(t, err)
	var assertErr *harness.AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Equal(t, "expected-value", assertErr.Expected)
	assert.Equal(t, "actual-value", assertErr.Actual)

	require.NoError(t, h.AssertText("#p", "actual-value"))
}

// Property: a malformed selector surfaces as SelectorParseError, and a
// syntactically valid selector matching nothing surfaces as NoMatchError;
// neither corrupts harness state for a subsequent, valid call.
func TestPropertySelectorErrorsAreTyped(t *testing.T) {
	h := newHarness(t, `<p id="p">hi</p>`)

	_, err := h.ResolveRoleForTest("[[[")
	require.Error(t, err)
	var parseErr *harness.SelectorParseError
	require.ErrorAs(t, err, &parseErr)

	err = h.Click("#missing")
	require.Error(t, err)
	var noMatch *harness.NoMatchError
	require.ErrorAs(t, err, &noMatch)

	require.NoError(t, h.AssertText("#p", "hi"))
}

// Property: HTML the parser cannot recover from is fatal, and the Harness
// is never returned half-constructed.
func TestPropertyUnrecoverableHtmlIsFatal(t *testing.T) {
	_, err := harness.New(`<div id="unterminated`)
	require.Error(t, err)
	var parseErr *harness.HtmlParseError
	require.ErrorAs(t, err, &parseErr)
}

// WithLogger routes Harness-internal Debug lines (DOM mutations,
// scheduler drains, ...) through whatever logrus.Logger the caller
// supplies. testutils.NewLogger(t) builds one whose output lands in
// t.Logf instead of stderr, so a failing test shows its harness's debug
// trail inline.
func TestWithLoggerRoutesDebugOutputThroughTestLogger(t *testing.T) {
	cfg := harness.DefaultConfig()
	cfg.LogLevel = null.StringFrom("debug")

	h, err := harness.New(
		`<button id="b"></button><p id="p"></p>
<script>
document.getElementById('b').addEventListener('click', function() {
  document.getElementById('p').textContent = 'clicked';
});
</script>`,
		harness.WithLogger(testutils.NewLogger(t)),
		harness.WithConfig(cfg),
	)
	require.NoError(t, err)

	require.NoError(t, h.Click("#b"))
	require.NoError(t, h.AssertText("#p", "clicked"))
}
