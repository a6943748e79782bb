package arena

// NewFunction constructs a Function closure: defEnv is the environment
// captured at definition time, freeVars is the list of Symbols the
// Free-Variable Analyzer determined the body references but does not
// bind, params is the (possibly dotted) parameter list, and body is
// the unevaluated body AST.
func (a *Arena) NewFunction(defEnv, freeVars, params, body Value) (Value, error) {
	return a.newClosure(KFunction, defEnv, freeVars, params, body)
}

// NewMacro constructs a Macro: identical shape to Function, but the
// evaluator passes its arguments unevaluated and splices the result
// back into the call site (see internal/eval).
func (a *Arena) NewMacro(defEnv, freeVars, params, body Value) (Value, error) {
	return a.newClosure(KMacro, defEnv, freeVars, params, body)
}

func (a *Arena) newClosure(kind Kind, defEnv, freeVars, params, body Value) (Value, error) {
	h, err := a.alloc(kind)
	if err != nil {
		return Nil, err
	}
	c := a.cell(h)
	c.defEnv, c.freeVars, c.params, c.body = defEnv, freeVars, params, body
	return a.wrap(kind, h), nil
}

func (a *Arena) DefEnv(v Value) Value   { return a.cell(v.h).defEnv }
func (a *Arena) FreeVars(v Value) Value { return a.cell(v.h).freeVars }
func (a *Arena) Params(v Value) Value   { return a.cell(v.h).params }
func (a *Arena) Body(v Value) Value     { return a.cell(v.h).body }

func (a *Arena) IsCallable(v Value) bool {
	switch v.kind {
	case KFunction, KMacro, KPrimitive, KCFunc:
		return true
	default:
		return false
	}
}
