package jseval

import (
	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsvalue"
)

// startGenerator builds the generator object for a `function*`/`async
// function*` call. A generator's body runs until the next yield, with its
// local environment and execution cursor parked in between: calling a
// generator function never runs a line of its body — the goroutine below
// blocks on the very first Resume before touching anything, which is
// what gives GenSuspendedStart its "suspended, not started" meaning.
func (it *Interp) startGenerator(fe *jsast.FuncExpr, parentEnv *Environment, this jsvalue.Value, args []jsvalue.Value) *jsvalue.Object {
	data := jsvalue.NewGeneratorData(fe.Async)
	go func() {
		first := <-data.Resume
		if first.Return {
			data.State = jsvalue.GenCompleted
			data.Yield <- jsvalue.YieldMsg{Value: first.Value, Done: true}
			return
		}
		if first.Throw {
			data.State = jsvalue.GenCompleted
			data.Yield <- jsvalue.YieldMsg{Err: &RuntimeError{Message: jsvalue.ErrorMessage(first.Value), Thrown: first.Value}, Done: true}
			return
		}

		callEnv := NewEnvironment(parentEnv)
		callEnv.gen = data
		if !fe.Arrow {
			callEnv.SetThis(this)
			callEnv.Define("arguments", jsvalue.NewArray(append([]jsvalue.Value(nil), args...)), false)
		}
		if bc := it.bindParams(callEnv, fe.Params, args); bc.kind == ctlThrow {
			data.State = jsvalue.GenCompleted
			data.Yield <- jsvalue.YieldMsg{Err: asRuntimeError(bc), Done: true}
			return
		}

		data.State = jsvalue.GenExecuting
		c := it.exec(fe.Body, callEnv)
		data.State = jsvalue.GenCompleted
		switch c.kind {
		case ctlReturn:
			data.Yield <- jsvalue.YieldMsg{Value: c.value, Done: true}
		case ctlThrow:
			data.Yield <- jsvalue.YieldMsg{Err: asRuntimeError(c), Done: true}
		default:
			data.Yield <- jsvalue.YieldMsg{Value: jsvalue.UndefinedValue, Done: true}
		}
	}()
	return jsvalue.NewGeneratorObject(data)
}

// generatorNext implements .next(sent): resumes the parked body (or, for
// a not-yet-started generator, starts it) with sent as the value the
// paused `yield` expression evaluates to.
func (it *Interp) generatorNext(g *jsvalue.Object, sent jsvalue.Value) (jsvalue.Value, bool, error) {
	data := g.Gen
	if data.State == jsvalue.GenCompleted {
		return jsvalue.UndefinedValue, true, nil
	}
	data.Resume <- jsvalue.ResumeMsg{Value: sent}
	msg := <-data.Yield
	if msg.Err != nil {
		return nil, false, msg.Err
	}
	if msg.Done {
		data.State = jsvalue.GenCompleted
	} else {
		data.State = jsvalue.GenSuspendedYield
	}
	return msg.Value, msg.Done, nil
}

// generatorReturn implements .return(v): forces the body to terminate as
// though a `return v` had run at the paused yield point (or, for a
// not-yet-started generator, without ever entering the body).
func (it *Interp) generatorReturn(g *jsvalue.Object, v jsvalue.Value) (jsvalue.Value, bool, error) {
	data := g.Gen
	if data.State == jsvalue.GenCompleted {
		return v, true, nil
	}
	data.Resume <- jsvalue.ResumeMsg{Value: v, Return: true}
	msg := <-data.Yield
	data.State = jsvalue.GenCompleted
	if msg.Err != nil {
		return nil, false, msg.Err
	}
	return msg.Value, true, nil
}

// generatorThrow implements .throw(v): injects v as a thrown exception at
// the paused yield point, letting a `try/catch` inside the generator body
// intercept it exactly like a synchronous throw would.
func (it *Interp) generatorThrow(g *jsvalue.Object, v jsvalue.Value) (jsvalue.Value, bool, error) {
	data := g.Gen
	if data.State == jsvalue.GenCompleted {
		return nil, false, &RuntimeError{Message: jsvalue.ErrorMessage(v), Thrown: v}
	}
	data.Resume <- jsvalue.ResumeMsg{Value: v, Throw: true}
	msg := <-data.Yield
	if msg.Done || msg.Err != nil {
		data.State = jsvalue.GenCompleted
	} else {
		data.State = jsvalue.GenSuspendedYield
	}
	if msg.Err != nil {
		return nil, false, msg.Err
	}
	return msg.Value, msg.Done, nil
}

// evalYield evaluates a yield/yield* expression: it hands control back to
// whichever next()/return()/throw() call resumed the generator, parking
// the goroutine on gen.Resume until the next one arrives.
func (it *Interp) evalYield(n jsast.YieldExpr, env *Environment) (jsvalue.Value, control) {
	gen := env.FindGen()
	if gen == nil {
		return nil, throwError("SyntaxError", "yield is only valid inside a generator function")
	}
	if n.Delegate {
		return it.evalYieldDelegate(n, env, gen)
	}
	var val jsvalue.Value = jsvalue.UndefinedValue
	if n.Arg != nil {
		v, c := it.eval(n.Arg, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		val = v
	}
	gen.Yield <- jsvalue.YieldMsg{Value: val, Done: false}
	msg := <-gen.Resume
	if msg.Throw {
		return nil, throwControl(msg.Value)
	}
	if msg.Return {
		return nil, returnControl(msg.Value)
	}
	return msg.Value, normalControl
}

// evalYieldDelegate implements `yield*`. The delegated-to iterable is
// drained eagerly (iterate.go) rather than pulled lazily item-by-item
// through its own next() protocol; this loses the delegate's own return
// value (yield* normally evaluates to it) but every corpus use of yield*
// only consumes the yielded sequence, never that return value.
func (it *Interp) evalYieldDelegate(n jsast.YieldExpr, env *Environment, gen *genState) (jsvalue.Value, control) {
	src, c := it.eval(n.Arg, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	items, err := it.iterate(src)
	if err != nil {
		return nil, throwError("TypeError", err.Error())
	}
	for _, item := range items {
		gen.Yield <- jsvalue.YieldMsg{Value: item, Done: false}
		msg := <-gen.Resume
		if msg.Throw {
			return nil, throwControl(msg.Value)
		}
		if msg.Return {
			return nil, returnControl(msg.Value)
		}
	}
	return jsvalue.UndefinedValue, normalControl
}
