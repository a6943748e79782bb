package eval

import (
	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// applyFunction calls a Function closure with already-evaluated
// arguments: it materializes upvalues by looking each free variable up
// in the closure's definition environment (capturing the same binding
// pair, giving reference semantics to captures), zips params against
// argv into a fresh locals list, and evaluates the body as a `do`
// inside the new frame. A return-tagged result is unwrapped at this
// boundary; any other result is returned as-is.
func (in *Interp) applyFunction(fn arena.Value, argv []arena.Value) (arena.Value, error) {
	a := in.A
	upvalues, err := buildUpvalues(a, a.FreeVars(fn), a.DefEnv(fn))
	if err != nil {
		return arena.Nil, err
	}
	locals, err := bindParams(a, a.Params(fn), argv)
	if err != nil {
		return arena.Nil, err
	}
	frame, err := newFrame(a, locals, upvalues)
	if err != nil {
		return arena.Nil, err
	}
	bodyList, err := a.List(a.Body(fn))
	if err != nil {
		return arena.Nil, err
	}
	result, _, err := in.evalDo(bodyList, frame)
	if err != nil {
		return arena.Nil, err
	}
	if isReturnTagged(a, result) {
		return a.Cdr(result), nil
	}
	return result, nil
}

// evalMacroCall expands a Macro call (args unevaluated), mutates the
// call expression in place to equal the expansion — avoiding
// re-expansion on a subsequent visit of the same cell — and then
// evaluates the expansion in the caller's own environment.
func (in *Interp) evalMacroCall(expr, macro, args, env arena.Value) (arena.Value, error) {
	a := in.A
	argv, tail := a.ToSlice(args)
	if !tail.IsNil() {
		return arena.Nil, errs.New(errs.ArityError, "dotted pair in macro argument list")
	}
	upvalues, err := buildUpvalues(a, a.FreeVars(macro), a.DefEnv(macro))
	if err != nil {
		return arena.Nil, err
	}
	locals, err := bindParams(a, a.Params(macro), argv)
	if err != nil {
		return arena.Nil, err
	}
	frame, err := newFrame(a, locals, upvalues)
	if err != nil {
		return arena.Nil, err
	}
	bodyList, err := a.List(a.Body(macro))
	if err != nil {
		return arena.Nil, err
	}
	expansion, _, err := in.evalDo(bodyList, frame)
	if err != nil {
		return arena.Nil, err
	}
	if isReturnTagged(a, expansion) {
		expansion = a.Cdr(expansion)
	}

	if expansion.IsPair() {
		a.SetCar(expr, a.Car(expansion))
		a.SetCdr(expr, a.Cdr(expansion))
		return in.Eval(expr, env)
	}
	return in.Eval(expansion, env)
}

func buildUpvalues(a *arena.Arena, freeVars, defEnv arena.Value) (arena.Value, error) {
	upvalues := arena.Nil
	cur := freeVars
	for cur.IsPair() {
		sym := a.Car(cur)
		if pair, ok := lookupBinding(a, defEnv, sym); ok {
			var err error
			upvalues, err = a.Cons(pair, upvalues)
			if err != nil {
				return arena.Nil, err
			}
		}
		cur = a.Cdr(cur)
	}
	return upvalues, nil
}

// bindParams zips params (possibly dotted) against the evaluated
// argument slice. Excess actuals beyond params are ignored; excess
// formals are bound to Nil; a dotted tail parameter captures the
// remaining actuals as a list.
func bindParams(a *arena.Arena, params arena.Value, argv []arena.Value) (arena.Value, error) {
	locals := arena.Nil
	i := 0
	cur := params
	for cur.IsPair() {
		pname := a.Car(cur)
		val := arena.Nil
		if i < len(argv) {
			val = argv[i]
		}
		pair, err := a.Cons(pname, val)
		if err != nil {
			return arena.Nil, err
		}
		locals, err = a.Cons(pair, locals)
		if err != nil {
			return arena.Nil, err
		}
		i++
		cur = a.Cdr(cur)
	}
	if cur.Kind() == arena.KSymbol {
		var rest []arena.Value
		if i < len(argv) {
			rest = argv[i:]
		}
		restList, err := a.List(rest...)
		if err != nil {
			return arena.Nil, err
		}
		pair, err := a.Cons(cur, restList)
		if err != nil {
			return arena.Nil, err
		}
		locals, err = a.Cons(pair, locals)
		if err != nil {
			return arena.Nil, err
		}
	}
	return locals, nil
}
