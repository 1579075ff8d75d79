package harness

import (
	"github.com/domharness/domharness/internal/domtree"
	"github.com/domharness/domharness/internal/scheduler"
	"github.com/domharness/domharness/internal/selector"
)

// Click implements click(selector): resolves selector to the first
// matching element in document order, synthesises a "click" event,
// fires its listeners (registration order), and drains microtasks
// before returning. A listener that mutates state then throws leaves
// that mutation committed; the error returned here is the uncaught
// throw, not a rollback signal.
func (h *Harness) Click(sel string) error {
	id, err := h.resolve(sel)
	if err != nil {
		return err
	}
	h.log.WithField("selector", sel).Debug("click")
	if err := h.interp.ClickElement(id); err != nil {
		return wrapScriptRuntime(err)
	}
	return nil
}

// AssertText implements assert_text(selector, expected): reads the
// element's textContent (descendant text nodes concatenated in document
// order, no normalisation) and compares it against expected for exact
// equality. A mismatch is returned as an *AssertionError, never panicked
// or short-circuiting the scheduler.
func (h *Harness) AssertText(sel, expected string) error {
	id, err := h.resolve(sel)
	if err != nil {
		return err
	}
	actual := h.interp.Dom.TextContent(id)
	if actual != expected {
		return &AssertionError{Selector: sel, Expected: expected, Actual: actual}
	}
	return nil
}

// AdvanceTime implements advance_time(ms): moves the virtual clock
// forward by ms (saturating), without running any callbacks.
func (h *Harness) AdvanceTime(ms int64) {
	h.interp.Sched.AdvanceTime(ms)
}

// RunDueTimers implements run_due_timers(): fires every timer whose
// due_at is at or before the current virtual clock, in (due_at,
// insertion order), draining microtasks after each. Returns the count
// fired.
func (h *Harness) RunDueTimers() int {
	n := h.interp.Sched.RunDueTimers()
	h.log.WithField("count", n).Debug("ran due timers")
	return n
}

// PendingTimers implements pending_timers(): a cheap, non-mutating
// snapshot of every not-yet-fired, not-cancelled timer.
func (h *Harness) PendingTimers() []scheduler.TimerHandle {
	return h.interp.Sched.PendingTimers()
}

// ResolveRoleForTest reports the resolved ARIA role of the first element
// matching sel. It exists for assertions about role resolution that have
// no counterpart among the six host operations.
func (h *Harness) ResolveRoleForTest(sel string) (string, error) {
	id, err := h.resolve(sel)
	if err != nil {
		return "", err
	}
	return h.interp.ElementRole(id), nil
}

// DialogOpenForTest reports whether the <dialog> matching sel currently
// carries its open attribute.
func (h *Harness) DialogOpenForTest(sel string) (bool, error) {
	id, err := h.resolve(sel)
	if err != nil {
		return false, err
	}
	return h.interp.DialogOpen(id), nil
}

// DialogClosedByForTest reports the resolved closedBy value of the
// <dialog> matching sel.
func (h *Harness) DialogClosedByForTest(sel string) (string, error) {
	id, err := h.resolve(sel)
	if err != nil {
		return "", err
	}
	return h.interp.DialogClosedBy(id), nil
}

// resolve runs the selector engine against the document root, returning
// a *SelectorParseError for a malformed selector and a *NoMatchError
// when the grammar is valid but nothing matches.
func (h *Harness) resolve(sel string) (domtree.NodeId, error) {
	id, found, err := selector.QuerySelector(h.interp.Dom, h.interp.Dom.Root(), sel)
	if err != nil {
		return 0, wrapSelectorParse(sel, err)
	}
	if !found {
		return 0, &NoMatchError{Selector: sel}
	}
	return id, nil
}
