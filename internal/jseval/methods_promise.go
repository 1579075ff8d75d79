package jseval

import "github.com/domharness/domharness/internal/jsvalue"

// resolvePromise settles p the way the Promise resolution procedure does:
// adopting another promise's eventual state when v is itself a promise,
// otherwise fulfilling immediately (but with reactions still run as
// microtasks, never synchronously).
func (it *Interp) resolvePromise(p *jsvalue.Object, v jsvalue.Value) {
	if p.Promise.State != jsvalue.Pending {
		return
	}
	if vp, ok := v.(*jsvalue.Object); ok && vp.Class == jsvalue.ClassPromise {
		if vp == p {
			it.rejectNow(p, jsvalue.NewErrorObject("TypeError", "Chaining cycle detected for promise"))
			return
		}
		it.promiseThen(vp,
			jsvalue.NewNativeFunc("", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
				it.fulfill(p, arg0(args))
				return jsvalue.UndefinedValue, nil
			}),
			jsvalue.NewNativeFunc("", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
				it.rejectNow(p, arg0(args))
				return jsvalue.UndefinedValue, nil
			}),
		)
		return
	}
	it.fulfill(p, v)
}

// rejectNow settles p as rejected with v, with no thenable-adoption step
// (rejection reasons are never chased through another promise).
func (it *Interp) rejectNow(p *jsvalue.Object, v jsvalue.Value) {
	if p.Promise.State != jsvalue.Pending {
		return
	}
	p.Promise.State = jsvalue.Rejected
	p.Promise.Result = v
	reactions := p.Promise.Reactions
	p.Promise.Reactions = nil
	for _, r := range reactions {
		r := r
		it.Sched.QueueMicrotask(func() { it.runReaction(r, v, false) })
	}
}

func (it *Interp) fulfill(p *jsvalue.Object, v jsvalue.Value) {
	if p.Promise.State != jsvalue.Pending {
		return
	}
	p.Promise.State = jsvalue.Fulfilled
	p.Promise.Result = v
	reactions := p.Promise.Reactions
	p.Promise.Reactions = nil
	for _, r := range reactions {
		r := r
		it.Sched.QueueMicrotask(func() { it.runReaction(r, v, true) })
	}
}

// promiseThen implements the shared machinery behind .then/.catch/
// .finally and the internal chaining resolvePromise/awaitValue need: it
// returns a freshly allocated derived promise and arranges for onFulfilled
// or onRejected to run (as a microtask) once p settles, feeding whichever
// one ran's return value (or its own throw) into the derived promise.
func (it *Interp) promiseThen(p *jsvalue.Object, onFulfilled, onRejected *jsvalue.Object) *jsvalue.Object {
	derived := jsvalue.NewPromise()
	reaction := jsvalue.Reaction{OnFulfilled: onFulfilled, OnRejected: onRejected, Derived: derived}
	switch p.Promise.State {
	case jsvalue.Pending:
		p.Promise.Reactions = append(p.Promise.Reactions, reaction)
	case jsvalue.Fulfilled:
		result := p.Promise.Result
		it.Sched.QueueMicrotask(func() { it.runReaction(reaction, result, true) })
	case jsvalue.Rejected:
		result := p.Promise.Result
		it.Sched.QueueMicrotask(func() { it.runReaction(reaction, result, false) })
	}
	return derived
}

func (it *Interp) runReaction(r jsvalue.Reaction, value jsvalue.Value, fulfilled bool) {
	cb := r.OnFulfilled
	if !fulfilled {
		cb = r.OnRejected
	}
	if cb == nil {
		if fulfilled {
			it.resolvePromise(r.Derived, value)
		} else {
			it.rejectNow(r.Derived, value)
		}
		return
	}
	result, err := it.Call(cb, jsvalue.UndefinedValue, []jsvalue.Value{value})
	if err != nil {
		it.rejectNow(r.Derived, errThrownValue(err))
		return
	}
	it.resolvePromise(r.Derived, result)
}

// newPromiseCtor builds the Promise constructor object: callable with an
// executor function, plus the resolve/reject/all/allSettled/race/any
// static helpers.
func (it *Interp) newPromiseCtor() *jsvalue.Object {
	ctor := jsvalue.NewNativeFunc("Promise", func(this jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		p := jsvalue.NewPromise()
		if len(args) == 0 || !jsvalue.IsCallable(args[0]) {
			return nil, &RuntimeError{Message: "Promise resolver is not a function", Thrown: jsvalue.NewErrorObject("TypeError", "Promise resolver is not a function")}
		}
		executor := args[0].(*jsvalue.Object)
		resolveFn := jsvalue.NewNativeFunc("", func(_ jsvalue.Value, a []jsvalue.Value) (jsvalue.Value, error) {
			it.resolvePromise(p, arg0(a))
			return jsvalue.UndefinedValue, nil
		})
		rejectFn := jsvalue.NewNativeFunc("", func(_ jsvalue.Value, a []jsvalue.Value) (jsvalue.Value, error) {
			it.rejectNow(p, arg0(a))
			return jsvalue.UndefinedValue, nil
		})
		if _, err := it.Call(executor, jsvalue.UndefinedValue, []jsvalue.Value{resolveFn, rejectFn}); err != nil {
			it.rejectNow(p, errThrownValue(err))
		}
		return p, nil
	})
	ctor.Set("resolve", jsvalue.NewNativeFunc("resolve", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		v := arg0(args)
		if vp, ok := v.(*jsvalue.Object); ok && vp.Class == jsvalue.ClassPromise {
			return vp, nil
		}
		p := jsvalue.NewPromise()
		it.resolvePromise(p, v)
		return p, nil
	}))
	ctor.Set("reject", jsvalue.NewNativeFunc("reject", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		p := jsvalue.NewPromise()
		it.rejectNow(p, arg0(args))
		return p, nil
	}))
	ctor.Set("all", jsvalue.NewNativeFunc("all", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return it.promiseCombinator(arg0(args), combinatorAll)
	}))
	ctor.Set("allSettled", jsvalue.NewNativeFunc("allSettled", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return it.promiseCombinator(arg0(args), combinatorAllSettled)
	}))
	ctor.Set("race", jsvalue.NewNativeFunc("race", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return it.promiseCombinator(arg0(args), combinatorRace)
	}))
	ctor.Set("any", jsvalue.NewNativeFunc("any", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
		return it.promiseCombinator(arg0(args), combinatorAny)
	}))
	return ctor
}

type combinatorKind int

const (
	combinatorAll combinatorKind = iota
	combinatorAllSettled
	combinatorRace
	combinatorAny
)

// promiseCombinator implements Promise.all/allSettled/race/any, all of
// which share the same shape: wrap every item as a resolved promise,
// attach a reaction to each, and settle a single derived promise the
// first (or last, for all/allSettled) time enough of them have reported
// in.
func (it *Interp) promiseCombinator(iterable jsvalue.Value, kind combinatorKind) (jsvalue.Value, error) {
	items, err := it.iterate(iterable)
	if err != nil {
		return nil, &RuntimeError{Message: err.Error(), Thrown: jsvalue.NewErrorObject("TypeError", err.Error())}
	}
	result := jsvalue.NewPromise()
	n := len(items)
	if n == 0 {
		switch kind {
		case combinatorAll, combinatorAllSettled:
			it.resolvePromise(result, jsvalue.NewArray(nil))
		case combinatorAny:
			it.rejectNow(result, jsvalue.NewErrorObject("AggregateError", "All promises were rejected"))
		}
		return result, nil
	}
	values := make([]jsvalue.Value, n)
	errs := make([]jsvalue.Value, n)
	remaining := n
	for i, item := range items {
		i := i
		p := asPromise(item)
		it.promiseThen(p,
			jsvalue.NewNativeFunc("", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
				v := arg0(args)
				switch kind {
				case combinatorRace:
					it.resolvePromise(result, v)
				case combinatorAny:
					it.resolvePromise(result, v)
				case combinatorAllSettled:
					values[i] = settledRecord("fulfilled", v)
					remaining--
					if remaining == 0 {
						it.resolvePromise(result, jsvalue.NewArray(values))
					}
				default:
					values[i] = v
					remaining--
					if remaining == 0 {
						it.resolvePromise(result, jsvalue.NewArray(values))
					}
				}
				return jsvalue.UndefinedValue, nil
			}),
			jsvalue.NewNativeFunc("", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
				v := arg0(args)
				switch kind {
				case combinatorRace:
					it.rejectNow(result, v)
				case combinatorAllSettled:
					values[i] = settledRecord("rejected", v)
					remaining--
					if remaining == 0 {
						it.resolvePromise(result, jsvalue.NewArray(values))
					}
				case combinatorAny:
					errs[i] = v
					remaining--
					if remaining == 0 {
						it.rejectNow(result, jsvalue.NewErrorObject("AggregateError", "All promises were rejected"))
					}
				default:
					it.rejectNow(result, v)
				}
				return jsvalue.UndefinedValue, nil
			}),
		)
	}
	return result, nil
}

func asPromise(v jsvalue.Value) *jsvalue.Object {
	if p, ok := v.(*jsvalue.Object); ok && p.Class == jsvalue.ClassPromise {
		return p
	}
	p := jsvalue.NewPromise()
	p.Promise.State = jsvalue.Fulfilled
	p.Promise.Result = v
	return p
}

func settledRecord(status string, v jsvalue.Value) jsvalue.Value {
	rec := jsvalue.NewObject()
	rec.Set("status", jsvalue.String(status))
	if status == "fulfilled" {
		rec.Set("value", v)
	} else {
		rec.Set("reason", v)
	}
	return rec
}

// promiseInstanceMethod dispatches .then/.catch/.finally calls on a
// Promise instance; called from the MemberExpr call-site dispatch table
// (dispatchMethod in call_expr.go).
func (it *Interp) promiseInstanceMethod(p *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	switch method {
	case "then":
		var onF, onR *jsvalue.Object
		if len(args) > 0 {
			if f, ok := args[0].(*jsvalue.Object); ok && jsvalue.IsCallable(f) {
				onF = f
			}
		}
		if len(args) > 1 {
			if f, ok := args[1].(*jsvalue.Object); ok && jsvalue.IsCallable(f) {
				onR = f
			}
		}
		return it.promiseThen(p, onF, onR), true, nil
	case "catch":
		var onR *jsvalue.Object
		if len(args) > 0 {
			if f, ok := args[0].(*jsvalue.Object); ok && jsvalue.IsCallable(f) {
				onR = f
			}
		}
		return it.promiseThen(p, nil, onR), true, nil
	case "finally":
		var cb *jsvalue.Object
		if len(args) > 0 {
			if f, ok := args[0].(*jsvalue.Object); ok && jsvalue.IsCallable(f) {
				cb = f
			}
		}
		if cb == nil {
			return it.promiseThen(p, nil, nil), true, nil
		}
		wrap := func(pass bool) *jsvalue.Object {
			return jsvalue.NewNativeFunc("", func(_ jsvalue.Value, a []jsvalue.Value) (jsvalue.Value, error) {
				if _, err := it.Call(cb, jsvalue.UndefinedValue, nil); err != nil {
					return nil, err
				}
				v := arg0(a)
				if pass {
					return v, nil
				}
				return nil, &RuntimeError{Message: jsvalue.ErrorMessage(v), Thrown: v}
			})
		}
		return it.promiseThen(p, wrap(true), wrap(false)), true, nil
	}
	return nil, false, nil
}
