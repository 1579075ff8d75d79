package jseval

import (
	"fmt"
	"math"
	"math/big"

	"github.com/domharness/domharness/internal/jsast"
	"github.com/domharness/domharness/internal/jsvalue"
)

// eval evaluates an expression node, returning its value or a non-normal
// control (a throw, or — for yield/await — a return/throw injected by a
// generator's caller via next()/return()/throw()).
func (it *Interp) eval(node jsast.Node, env *Environment) (jsvalue.Value, control) {
	switch n := node.(type) {
	case jsast.NumberLit:
		return jsvalue.Number(n.Value), normalControl
	case jsast.BigIntLit:
		bi := new(big.Int)
		bi.SetString(n.Text, 10)
		return jsvalue.BigInt{V: bi}, normalControl
	case jsast.StringLit:
		return jsvalue.String(n.Value), normalControl
	case jsast.TemplateLit:
		return it.evalTemplate(n, env)
	case jsast.RegexLit:
		re, err := jsvalue.CompileRegex(n.Pattern, n.Flags)
		if err != nil {
			return nil, throwError("SyntaxError", err.Error())
		}
		return re, normalControl
	case jsast.BoolLit:
		return jsvalue.BoolValue(n.Value), normalControl
	case jsast.NullLit:
		return jsvalue.NullValue, normalControl
	case jsast.UndefinedLit:
		return jsvalue.UndefinedValue, normalControl
	case jsast.ArrayLit:
		return it.evalArrayLit(n, env)
	case jsast.ObjectLit:
		return it.evalObjectLit(n, env)
	case jsast.Identifier:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, throwError("ReferenceError", "unknown variable: "+n.Name)
		}
		return v, normalControl
	case jsast.ThisExpr:
		return env.This(), normalControl
	case jsast.MemberExpr:
		return it.evalMember(n, env)
	case jsast.CallExpr:
		return it.evalCall(n, env)
	case jsast.NewExpr:
		return it.evalNew(n, env)
	case jsast.UnaryExpr:
		return it.evalUnary(n, env)
	case jsast.UpdateExpr:
		return it.evalUpdate(n, env)
	case jsast.BinaryExpr:
		return it.evalBinary(n, env)
	case jsast.LogicalExpr:
		return it.evalLogical(n, env)
	case jsast.AssignExpr:
		return it.evalAssign(n, env)
	case jsast.CondExpr:
		test, c := it.eval(n.Test, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		if jsvalue.ToBoolean(test) {
			return it.eval(n.Then, env)
		}
		return it.eval(n.Else, env)
	case jsast.SeqExpr:
		var v jsvalue.Value = jsvalue.UndefinedValue
		for _, e := range n.Exprs {
			var c control
			v, c = it.eval(e, env)
			if c.kind != ctlNormal {
				return nil, c
			}
		}
		return v, normalControl
	case *jsast.FuncExpr:
		return it.makeClosure(n, env), normalControl
	case jsast.YieldExpr:
		return it.evalYield(n, env)
	case jsast.AwaitExpr:
		return it.evalAwait(n, env)
	case jsast.TaggedTemplateExpr:
		return it.evalTaggedTemplate(n, env)
	case jsast.SpreadElement:
		return it.eval(n.Arg, env)
	}
	return nil, throwError("TypeError", fmt.Sprintf("unsupported expression %T", node))
}

func (it *Interp) evalTemplate(n jsast.TemplateLit, env *Environment) (jsvalue.Value, control) {
	var sb []byte
	sb = append(sb, n.Quasis[0]...)
	for i, e := range n.Exprs {
		v, c := it.eval(e, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		sb = append(sb, jsvalue.ToString(v)...)
		sb = append(sb, n.Quasis[i+1]...)
	}
	return jsvalue.String(sb), normalControl
}

func (it *Interp) evalTaggedTemplate(n jsast.TaggedTemplateExpr, env *Environment) (jsvalue.Value, control) {
	tag, c := it.eval(n.Tag, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	strings := make([]jsvalue.Value, len(n.Template.Quasis))
	for i, q := range n.Template.Quasis {
		strings[i] = jsvalue.String(q)
	}
	stringsArr := jsvalue.NewArray(strings)
	stringsArr.Set("raw", jsvalue.NewArray(append([]jsvalue.Value(nil), strings...)))
	args := []jsvalue.Value{stringsArr}
	for _, e := range n.Template.Exprs {
		v, c := it.eval(e, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		args = append(args, v)
	}
	v, c := it.call(tag, jsvalue.UndefinedValue, args)
	return v, c
}

func (it *Interp) evalArrayLit(n jsast.ArrayLit, env *Environment) (jsvalue.Value, control) {
	var out []jsvalue.Value
	for _, el := range n.Elements {
		if el == nil {
			out = append(out, jsvalue.UndefinedValue)
			continue
		}
		if sp, ok := el.(jsast.SpreadElement); ok {
			v, c := it.eval(sp.Arg, env)
			if c.kind != ctlNormal {
				return nil, c
			}
			items, err := it.iterate(v)
			if err != nil {
				return nil, throwError("TypeError", err.Error())
			}
			out = append(out, items...)
			continue
		}
		v, c := it.eval(el, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		out = append(out, v)
	}
	return jsvalue.NewArray(out), normalControl
}

func (it *Interp) evalObjectLit(n jsast.ObjectLit, env *Environment) (jsvalue.Value, control) {
	obj := jsvalue.NewObject()
	for _, p := range n.Props {
		if p.Spread {
			v, c := it.eval(p.Value, env)
			if c.kind != ctlNormal {
				return nil, c
			}
			if src, ok := v.(*jsvalue.Object); ok {
				for _, k := range src.OwnKeys() {
					obj.Set(k, src.Get(k))
				}
			}
			continue
		}
		var key string
		if p.Computed {
			kv, c := it.eval(p.Key, env)
			if c.kind != ctlNormal {
				return nil, c
			}
			key = propKeyString(kv)
		} else {
			switch k := p.Key.(type) {
			case jsast.Identifier:
				key = k.Name
			case jsast.StringLit:
				key = k.Value
			case jsast.NumberLit:
				key = jsvalue.ToString(jsvalue.Number(k.Value))
			}
		}
		v, c := it.eval(p.Value, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		if name, ok := p.Value.(*jsast.FuncExpr); ok && name.Name == "" {
			nameFunction(v, key)
		}
		obj.Set(key, v)
	}
	return obj, normalControl
}

// propKeyString reduces a computed member/bracket property value to the
// string key the Object store actually indexes by; the two well-known
// Symbols carry their own `@@...` id as the key so `obj[Symbol.iterator]`
// round-trips through the same string-keyed property table as everything
// else.
func propKeyString(v jsvalue.Value) string {
	if s, ok := v.(jsvalue.Symbol); ok {
		return s.ID
	}
	return jsvalue.ToString(v)
}

func (it *Interp) evalUnary(n jsast.UnaryExpr, env *Environment) (jsvalue.Value, control) {
	if n.Op == "typeof" {
		if id, ok := n.Arg.(jsast.Identifier); ok {
			if v, ok := env.Get(id.Name); ok {
				return jsvalue.String(jsvalue.TypeOf(v)), normalControl
			}
			return jsvalue.String("undefined"), normalControl
		}
	}
	if n.Op == "delete" {
		return it.evalDelete(n.Arg, env)
	}
	v, c := it.eval(n.Arg, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	switch n.Op {
	case "+":
		return jsvalue.Number(jsvalue.ToNumber(v)), normalControl
	case "-":
		if bi, ok := v.(jsvalue.BigInt); ok {
			return jsvalue.BigInt{V: new(big.Int).Neg(bi.V)}, normalControl
		}
		return jsvalue.Number(-jsvalue.ToNumber(v)), normalControl
	case "!":
		return jsvalue.BoolValue(!jsvalue.ToBoolean(v)), normalControl
	case "~":
		return jsvalue.Number(float64(^toInt32(jsvalue.ToNumber(v)))), normalControl
	case "void":
		return jsvalue.UndefinedValue, normalControl
	case "typeof":
		return jsvalue.String(jsvalue.TypeOf(v)), normalControl
	}
	return nil, throwError("TypeError", "unsupported unary operator "+n.Op)
}

func (it *Interp) evalDelete(arg jsast.Node, env *Environment) (jsvalue.Value, control) {
	m, ok := arg.(jsast.MemberExpr)
	if !ok {
		return jsvalue.True, normalControl
	}
	obj, c := it.eval(m.Object, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	key, c := it.memberKey(m, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	if o, ok := obj.(*jsvalue.Object); ok {
		o.Delete(key)
	}
	return jsvalue.True, normalControl
}

func (it *Interp) memberKey(n jsast.MemberExpr, env *Environment) (string, control) {
	if n.Computed {
		v, c := it.eval(n.Property, env)
		if c.kind != ctlNormal {
			return "", c
		}
		return propKeyString(v), normalControl
	}
	id, _ := n.Property.(jsast.Identifier)
	return id.Name, normalControl
}

func (it *Interp) evalMember(n jsast.MemberExpr, env *Environment) (jsvalue.Value, control) {
	obj, c := it.eval(n.Object, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	if n.Optional && jsvalue.IsNullish(obj) {
		return jsvalue.UndefinedValue, normalControl
	}
	key, c := it.memberKey(n, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	v, err := it.getProp(obj, key)
	if err != nil {
		return nil, throwError("TypeError", err.Error())
	}
	return v, normalControl
}

func (it *Interp) evalUpdate(n jsast.UpdateExpr, env *Environment) (jsvalue.Value, control) {
	old, c := it.eval(n.Arg, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	oldNum := jsvalue.ToNumber(old)
	var newNum float64
	if n.Op == "++" {
		newNum = oldNum + 1
	} else {
		newNum = oldNum - 1
	}
	if c := it.assignTo(env, n.Arg, jsvalue.Number(newNum)); c.kind != ctlNormal {
		return nil, c
	}
	if n.Prefix {
		return jsvalue.Number(newNum), normalControl
	}
	return jsvalue.Number(oldNum), normalControl
}

func (it *Interp) evalAssign(n jsast.AssignExpr, env *Environment) (jsvalue.Value, control) {
	if n.Op == "=" {
		v, c := it.eval(n.Value, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		if id, ok := n.Target.(jsast.Identifier); ok {
			nameFunction(v, id.Name)
		}
		if c := it.assignTo(env, n.Target, v); c.kind != ctlNormal {
			return nil, c
		}
		return v, normalControl
	}

	// Logical compound assignments short-circuit: the RHS is only
	// evaluated (and only assigned) when the operator's condition holds.
	switch n.Op {
	case "&&=", "||=", "??=":
		cur, c := it.eval(n.Target, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		should := false
		switch n.Op {
		case "&&=":
			should = jsvalue.ToBoolean(cur)
		case "||=":
			should = !jsvalue.ToBoolean(cur)
		case "??=":
			should = jsvalue.IsNullish(cur)
		}
		if !should {
			return cur, normalControl
		}
		v, c := it.eval(n.Value, env)
		if c.kind != ctlNormal {
			return nil, c
		}
		if c := it.assignTo(env, n.Target, v); c.kind != ctlNormal {
			return nil, c
		}
		return v, normalControl
	}

	cur, c := it.eval(n.Target, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	rhs, c := it.eval(n.Value, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	result, err := applyBinaryOp(compoundOp(n.Op), cur, rhs)
	if err != nil {
		return nil, throwError("TypeError", err.Error())
	}
	if c := it.assignTo(env, n.Target, result); c.kind != ctlNormal {
		return nil, c
	}
	return result, normalControl
}

func compoundOp(op string) string {
	return op[:len(op)-1] // "+=" -> "+"
}

// assignTo writes v to an assignment target expression: an Identifier
// (existing-binding assignment) or a MemberExpr (property/DOM/array
// write), the non-declaration half of bindPattern's target handling.
func (it *Interp) assignTo(env *Environment, target jsast.Node, v jsvalue.Value) control {
	switch t := target.(type) {
	case jsast.Identifier:
		if err := env.Set(t.Name, v); err != nil {
			return throwError("TypeError", err.Error())
		}
		return normalControl
	case jsast.MemberExpr:
		obj, c := it.eval(t.Object, env)
		if c.kind != ctlNormal {
			return c
		}
		key, c := it.memberKey(t, env)
		if c.kind != ctlNormal {
			return c
		}
		if err := it.setProp(obj, key, v); err != nil {
			return throwError("TypeError", err.Error())
		}
		return normalControl
	case jsast.ArrayPattern, jsast.ObjectPattern:
		return it.bindPattern(env, target, v, false, false)
	}
	return throwError("TypeError", "invalid assignment target")
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

func (it *Interp) evalLogical(n jsast.LogicalExpr, env *Environment) (jsvalue.Value, control) {
	l, c := it.eval(n.Left, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	switch n.Op {
	case "&&":
		if !jsvalue.ToBoolean(l) {
			return l, normalControl
		}
	case "||":
		if jsvalue.ToBoolean(l) {
			return l, normalControl
		}
	case "??":
		if !jsvalue.IsNullish(l) {
			return l, normalControl
		}
	}
	return it.eval(n.Right, env)
}

func (it *Interp) evalBinary(n jsast.BinaryExpr, env *Environment) (jsvalue.Value, control) {
	if n.Op == "in" {
		return it.evalIn(n, env)
	}
	if n.Op == "instanceof" {
		return it.evalInstanceof(n, env)
	}
	l, c := it.eval(n.Left, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	r, c := it.eval(n.Right, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	v, err := applyBinaryOp(n.Op, l, r)
	if err != nil {
		return nil, throwError("TypeError", err.Error())
	}
	return v, normalControl
}

func (it *Interp) evalIn(n jsast.BinaryExpr, env *Environment) (jsvalue.Value, control) {
	l, c := it.eval(n.Left, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	r, c := it.eval(n.Right, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	o, ok := r.(*jsvalue.Object)
	if !ok {
		return nil, throwError("TypeError", "cannot use 'in' on non-object")
	}
	return jsvalue.BoolValue(o.Has(jsvalue.ToString(l))), normalControl
}

func (it *Interp) evalInstanceof(n jsast.BinaryExpr, env *Environment) (jsvalue.Value, control) {
	l, c := it.eval(n.Left, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	r, c := it.eval(n.Right, env)
	if c.kind != ctlNormal {
		return nil, c
	}
	ctor, _ := r.(*jsvalue.Object)
	obj, ok := l.(*jsvalue.Object)
	if !ok || ctor == nil {
		return jsvalue.False, normalControl
	}
	return jsvalue.BoolValue(instanceOfName(obj) == ctorName(ctor)), normalControl
}
