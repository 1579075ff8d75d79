package jseval

import (
	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsvalue"
)

// startAsync runs an `async function`'s body on its own goroutine behind
// the same Resume/Yield coroutine machinery a generator uses, with each
// `await` acting as a yield point whose "yielded" value is the awaited
// expression rather than something the caller ever sees directly: pump
// drives the body forward every time that value settles, and the
// function's own completion settles the promise returned here.
func (it *Interp) startAsync(fe *jsast.FuncExpr, parentEnv *Environment, this jsvalue.Value, args []jsvalue.Value) *jsvalue.Object {
	data := jsvalue.NewGeneratorData(true)
	go func() {
		<-data.Resume
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
		var c control
		if fe.ExprBody {
			v, ec := it.eval(fe.Body, callEnv)
			if ec.kind == ctlNormal {
				c = returnControl(v)
			} else {
				c = ec
			}
		} else {
			c = it.exec(fe.Body, callEnv)
		}
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
	promise := jsvalue.NewPromise()
	it.pumpAsync(data, promise, jsvalue.ResumeMsg{})
	return promise
}

// pumpAsync sends resumeMsg into the parked async body and reacts to
// whatever it does next: finish (settling promise), throw (rejecting
// it), or await a value (scheduling pumpAsync to run again once that
// value settles). Every leg after the first call runs from inside a
// microtask callback, since a settled promise's reactions are always
// microtask-scheduled.
func (it *Interp) pumpAsync(data *genState, promise *jsvalue.Object, resumeMsg jsvalue.ResumeMsg) {
	data.Resume <- resumeMsg
	msg := <-data.Yield
	if msg.Err != nil {
		it.rejectNow(promise, errThrownValue(msg.Err))
		return
	}
	if msg.Done {
		it.resolvePromise(promise, msg.Value)
		return
	}
	it.awaitValue(msg.Value,
		func(v jsvalue.Value) { it.pumpAsync(data, promise, jsvalue.ResumeMsg{Value: v}) },
		func(v jsvalue.Value) { it.pumpAsync(data, promise, jsvalue.ResumeMsg{Value: v, Throw: true}) },
	)
}

// awaitValue resolves v the way `await` does: a thenable is chained
// through its own then, anything else is treated as already-fulfilled
// but still only calls onOk from a microtask, never synchronously — a
// plain `await 1` still yields the event loop once.
func (it *Interp) awaitValue(v jsvalue.Value, onOk, onErr func(jsvalue.Value)) {
	if p, ok := v.(*jsvalue.Object); ok && p.Class == jsvalue.ClassPromise {
		it.promiseThen(p,
			jsvalue.NewNativeFunc("", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
				onOk(arg0(args))
				return jsvalue.UndefinedValue, nil
			}),
			jsvalue.NewNativeFunc("", func(_ jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, error) {
				onErr(arg0(args))
				return jsvalue.UndefinedValue, nil
			}),
		)
		return
	}
	it.Sched.QueueMicrotask(func() { onOk(v) })
}

// evalAwait suspends the enclosing async function's goroutine at an
// await expression, handing the awaited value out through the same
// Yield channel a generator uses for yield.
func (it *Interp) evalAwait(n jsast.AwaitExpr, env *Environment) (jsvalue.Value, control) {
	gen := env.FindGen()
	if gen == nil {
		return nil, throwError("SyntaxError", "await is only valid inside an async function")
	}
	v, c := it.eval(n.Arg, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	gen.Yield <- jsvalue.YieldMsg{Value: v, Done: false}
	msg := <-gen.Resume
	if msg.Throw {
		return nil, throwControl(msg.Value)
	}
	return msg.Value, normalControl
}

func arg0(args []jsvalue.Value) jsvalue.Value {
	if len(args) == 0 {
		return jsvalue.UndefinedValue
	}
	return args[0]
}

func errThrownValue(err error) jsvalue.Value {
	if re, ok := err.(*RuntimeError); ok && re.Thrown != nil {
		return re.Thrown
	}
	return jsvalue.NewErrorObject("Error", err.Error())
}
