package eval

import (
	"io"
	"os"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// Interp bundles the arena with the evaluator's one piece of truly
// ambient state: where `print` writes. Everything else a context
// needs (globals, root stack, call list, module stack, symbol table)
// already lives on the Arena itself, so multiple Interp values over
// distinct Arenas never share anything.
type Interp struct {
	A      *arena.Arena
	Stdout io.Writer

	gensymCounter uint64
}

func New(a *arena.Arena, stdout io.Writer) *Interp {
	if stdout == nil {
		stdout = os.Stdout
	}
	in := &Interp{A: a, Stdout: stdout}
	a.SetApplyHook(in.ApplyValue)
	return in
}

// ApplyValue calls a Function with already-evaluated arguments,
// exposed so CFuncs (which see only the Arena, not the Interp) can
// invoke a closure passed to them — the basis for higher-order
// extended-library primitives like map/filter/fold. Only Function
// values are callable this way; Macro expansion depends on the
// original call-site expression, which a CFunc does not have.
func (in *Interp) ApplyValue(fn arena.Value, argv []arena.Value) (arena.Value, error) {
	if fn.Kind() != arena.KFunction {
		return arena.Nil, errs.New(errs.CallError, "cannot apply value of kind %s from a native callback", fn.Kind())
	}
	return in.applyFunction(fn, argv)
}

// Eval is the evaluator's entry point: Symbols resolve through the
// environment chain to the global slot; non-Pair values are
// self-evaluating; a Pair evaluates its car to obtain a callable and
// dispatches on that callable's type.
func (in *Interp) Eval(expr, env arena.Value) (arena.Value, error) {
	a := in.A
	switch expr.Kind() {
	case arena.KNil:
		return arena.Nil, nil
	case arena.KSymbol:
		return resolve(a, env, expr)
	case arena.KPair:
		return in.evalPair(expr, env)
	default:
		return expr, nil
	}
}

func (in *Interp) evalPair(expr, env arena.Value) (arena.Value, error) {
	a := in.A
	op := a.Car(expr)
	args := a.Cdr(expr)

	callee, err := in.Eval(op, env)
	if err != nil {
		return arena.Nil, err
	}

	switch callee.Kind() {
	case arena.KPrimitive:
		return in.evalPrimitive(a.PrimitiveOp(callee), expr, args, env)
	case arena.KMacro:
		return in.evalMacroCall(expr, callee, args, env)
	case arena.KFunction:
		argv, err := in.evalArgs(args, env)
		if err != nil {
			return arena.Nil, err
		}
		a.PushCall(expr)
		defer a.PopCall()
		return in.applyFunction(callee, argv)
	case arena.KCFunc:
		argv, err := in.evalArgs(args, env)
		if err != nil {
			return arena.Nil, err
		}
		argList, err := a.List(argv...)
		if err != nil {
			return arena.Nil, err
		}
		a.PushCall(expr)
		defer a.PopCall()
		return a.CFuncVal(callee)(a, argList)
	default:
		return arena.Nil, errs.New(errs.CallError, "cannot call value of kind %s", callee.Kind())
	}
}

// evalArgs evaluates a proper argument list left-to-right. A dotted
// tail in argument position is an ArityError.
func (in *Interp) evalArgs(args, env arena.Value) ([]arena.Value, error) {
	a := in.A
	var out []arena.Value
	for args.IsPair() {
		v, err := in.Eval(a.Car(args), env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		args = a.Cdr(args)
	}
	if !args.IsNil() {
		return nil, errs.New(errs.ArityError, "dotted pair in argument list")
	}
	return out, nil
}

// evalPrimitive dispatches a special-form or built-in-operator call.
// expr is the whole call cell (needed verbatim by forms like `if`/`do`
// that re-walk their own argument structure) and args is its cdr.
func (in *Interp) evalPrimitive(op arena.Opcode, expr, args, env arena.Value) (arena.Value, error) {
	switch op {
	case arena.OpLet:
		v, _, err := in.evalLet(args, env)
		return v, err
	case arena.OpSet:
		return in.evalAssign(args, env)
	case arena.OpIf:
		return in.evalIf(args, env)
	case arena.OpWhile:
		return in.evalWhile(args, env)
	case arena.OpAnd:
		return in.evalAnd(args, env)
	case arena.OpOr:
		return in.evalOr(args, env)
	case arena.OpDo:
		v, _, err := in.evalDo(args, env)
		return v, err
	case arena.OpQuote:
		return in.A.Car(args), nil
	case arena.OpFn:
		return in.evalClosureLiteral(args, env, false)
	case arena.OpMac:
		return in.evalClosureLiteral(args, env, true)
	case arena.OpReturn:
		return in.evalReturn(args, env)
	case arena.OpModule:
		return in.evalModule(args, env)
	case arena.OpExport:
		return in.evalExport(args, env)
	case arena.OpImport:
		return arena.Nil, nil // reserved; module is already global once defined
	case arena.OpGet:
		return in.evalGet(args, env)
	default:
		return in.evalOperatorPrimitive(op, args, env)
	}
}

func (in *Interp) evalAssign(args, env arena.Value) (arena.Value, error) {
	a := in.A
	sym := a.Car(args)
	if sym.Kind() != arena.KSymbol {
		return arena.Nil, errs.New(errs.TypeError, "= requires a symbol target")
	}
	val, err := in.Eval(a.Car(a.Cdr(args)), env)
	if err != nil {
		return arena.Nil, err
	}
	if err := assign(a, env, sym, val); err != nil {
		return arena.Nil, err
	}
	return val, nil
}

// evalLet implements `let`: inside a do it binds with letrec semantics
// into the visible local scope; at top level (env is Nil) it installs
// a global. It returns the newly extended environment
// alongside the value so evalDo can thread it to subsequent
// statements; generic callers simply discard the second result.
func (in *Interp) evalLet(args, env arena.Value) (arena.Value, arena.Value, error) {
	a := in.A
	sym := a.Car(args)
	if sym.Kind() != arena.KSymbol {
		return arena.Nil, env, errs.New(errs.TypeError, "let requires a symbol name")
	}
	initRest := a.Cdr(args)
	var initExpr arena.Value = arena.Nil
	if initRest.IsPair() {
		initExpr = a.Car(initRest)
	}

	if env.IsNil() {
		a.GlobalSet(sym, arena.Nil) // letrec placeholder so self-reference resolves
		val, err := in.Eval(initExpr, env)
		if err != nil {
			return arena.Nil, env, err
		}
		a.GlobalSet(sym, val)
		return val, env, nil
	}

	newEnv, pair, err := extendLocal(a, env, sym, arena.Nil)
	if err != nil {
		return arena.Nil, env, err
	}
	val, err := in.Eval(initExpr, newEnv)
	if err != nil {
		return arena.Nil, newEnv, err
	}
	a.SetCdr(pair, val)
	return val, newEnv, nil
}

// evalIf implements the n-ary conditional: condition/body pairs in
// sequence, with a trailing unpaired expression acting as the else
// branch. No matching branch evaluates to Nil.
func (in *Interp) evalIf(args, env arena.Value) (arena.Value, error) {
	a := in.A
	cur := args
	for cur.IsPair() {
		cond := a.Car(cur)
		rest := a.Cdr(cur)
		if !rest.IsPair() {
			return in.Eval(cond, env) // trailing unpaired expr: the else-branch
		}
		body := a.Car(rest)
		cv, err := in.Eval(cond, env)
		if err != nil {
			return arena.Nil, err
		}
		if cv.Truthy() {
			return in.Eval(body, env)
		}
		cur = a.Cdr(rest)
	}
	return arena.Nil, nil
}

// evalWhile loops for as long as cond is truthy. Each iteration is
// framed between a SaveGC/RestoreGC pair: env was already rooted by
// whatever is running this loop before the loop began, so anything an
// iteration conses that does not get linked into that already-rooted
// structure (ordinary throwaway temporaries) becomes collectible the
// moment the iteration ends, instead of pinning the root stack for the
// lifetime of a long-running loop.
func (in *Interp) evalWhile(args, env arena.Value) (arena.Value, error) {
	a := in.A
	if !args.IsPair() {
		return arena.Nil, errs.New(errs.ArityError, "while requires a condition")
	}
	cond := a.Car(args)
	body := a.Cdr(args)
	for {
		mark := a.SaveGC()
		cv, err := in.Eval(cond, env)
		if err != nil {
			return arena.Nil, err
		}
		if !cv.Truthy() {
			a.RestoreGC(mark)
			return arena.Nil, nil
		}
		result, _, err := in.evalDo(body, env)
		if err != nil {
			return arena.Nil, err
		}
		returning := isReturnTagged(a, result)
		a.RestoreGC(mark)
		if returning {
			return result, nil
		}
	}
}

func (in *Interp) evalAnd(args, env arena.Value) (arena.Value, error) {
	a := in.A
	if args.IsNil() {
		return arena.Nil, nil
	}
	var last arena.Value
	for args.IsPair() {
		v, err := in.Eval(a.Car(args), env)
		if err != nil {
			return arena.Nil, err
		}
		if !v.Truthy() {
			return v, nil
		}
		last = v
		args = a.Cdr(args)
	}
	return last, nil
}

func (in *Interp) evalOr(args, env arena.Value) (arena.Value, error) {
	a := in.A
	if args.IsNil() {
		return arena.Nil, nil
	}
	var last arena.Value
	for args.IsPair() {
		v, err := in.Eval(a.Car(args), env)
		if err != nil {
			return arena.Nil, err
		}
		if v.Truthy() {
			return v, nil
		}
		last = v
		args = a.Cdr(args)
	}
	return last, nil
}

// evalDo sequences a list of statements, threading any environment
// extension a nested `let` introduces to the statements that follow
// it, and short-circuiting on a return-tagged result.
func (in *Interp) evalDo(stmts, env arena.Value) (arena.Value, arena.Value, error) {
	a := in.A
	cur := env
	result := arena.Nil
	for stmts.IsPair() {
		stmt := a.Car(stmts)
		stmts = a.Cdr(stmts)

		if stmt.IsPair() && a.IsSymbolNamed(a.Car(stmt), "let") {
			v, newEnv, err := in.evalLet(a.Cdr(stmt), cur)
			if err != nil {
				return arena.Nil, cur, err
			}
			result, cur = v, newEnv
			continue
		}

		v, err := in.Eval(stmt, cur)
		if err != nil {
			return arena.Nil, cur, err
		}
		result = v
		if isReturnTagged(a, result) {
			return result, cur, nil
		}
	}
	return result, cur, nil
}

func isReturnTagged(a *arena.Arena, v arena.Value) bool {
	if !v.IsPair() {
		return false
	}
	rs, err := returnSym(a)
	if err != nil {
		return false
	}
	return arena.Identical(a.Car(v), rs)
}

func (in *Interp) evalReturn(args, env arena.Value) (arena.Value, error) {
	a := in.A
	val := arena.Nil
	if args.IsPair() {
		v, err := in.Eval(a.Car(args), env)
		if err != nil {
			return arena.Nil, err
		}
		val = v
	}
	rs, err := returnSym(a)
	if err != nil {
		return arena.Nil, err
	}
	return a.Cons(rs, val)
}

// evalClosureLiteral builds a Function or Macro cell from
// (params body...), capturing env as def_env and running the
// Free-Variable Analyzer over the body with params as the initial
// bound set.
func (in *Interp) evalClosureLiteral(args, env arena.Value, isMacro bool) (arena.Value, error) {
	a := in.A
	if !args.IsPair() {
		return arena.Nil, errs.New(errs.ArityError, "fn/mac requires a parameter list")
	}
	params := a.Car(args)
	bodyForms := a.Cdr(args)
	body, err := bodySequence(a, bodyForms)
	if err != nil {
		return arena.Nil, err
	}
	paramNames := paramNameList(a, params)
	freeVars, err := ComputeFreeVars(a, body, paramNames)
	if err != nil {
		return arena.Nil, err
	}
	if isMacro {
		return a.NewMacro(env, freeVars, params, body)
	}
	return a.NewFunction(env, freeVars, params, body)
}

// bodySequence turns a list of one or more body forms into a single
// AST node: the lone form itself, or `(do form...)` if there is more
// than one.
func bodySequence(a *arena.Arena, forms arena.Value) (arena.Value, error) {
	slice, tail := a.ToSlice(forms)
	if !tail.IsNil() {
		return arena.Nil, errs.New(errs.ArityError, "dotted body form list")
	}
	if len(slice) == 0 {
		return arena.Nil, nil
	}
	if len(slice) == 1 {
		return slice[0], nil
	}
	doSym, err := a.Intern("do")
	if err != nil {
		return arena.Nil, err
	}
	return a.Cons(doSym, forms)
}

func (in *Interp) evalModule(args, env arena.Value) (arena.Value, error) {
	a := in.A
	if !args.IsPair() {
		return arena.Nil, errs.New(errs.ArityError, "module requires a name and a body")
	}
	nameExpr := a.Car(args)
	rest := a.Cdr(args)

	nameVal, err := in.Eval(nameExpr, env)
	if err != nil {
		return arena.Nil, err
	}

	a.PushModule(arena.Nil)
	var bodyVal arena.Value = arena.Nil
	for rest.IsPair() {
		v, evalErr := in.Eval(a.Car(rest), env)
		if evalErr != nil {
			a.PopModule()
			return arena.Nil, evalErr
		}
		bodyVal = v
		rest = a.Cdr(rest)
	}
	table := a.PopModule()
	_ = bodyVal

	modName := a.StringVal(nameVal)
	sym, err := a.Intern(modName)
	if err != nil {
		return arena.Nil, err
	}
	a.GlobalSet(sym, table)
	return table, nil
}

func (in *Interp) evalExport(args, env arena.Value) (arena.Value, error) {
	a := in.A
	if _, ok := a.CurrentModule(); !ok {
		return arena.Nil, errs.New(errs.TypeError, "export outside of a module")
	}
	if !args.IsPair() {
		return arena.Nil, errs.New(errs.ArityError, "export requires a declaration")
	}
	decl := a.Car(args)
	val, err := in.Eval(decl, env)
	if err != nil {
		return arena.Nil, err
	}
	name := declName(a, decl)
	table, _ := a.CurrentModule()
	pair, err := a.Cons(name, val)
	if err != nil {
		return arena.Nil, err
	}
	newTable, err := a.Cons(pair, table)
	if err != nil {
		return arena.Nil, err
	}
	a.SetCurrentModule(newTable)
	return val, nil
}

// declName extracts the bound name from a declaration a module export
// normally wraps: `(let name ...)` desugared from `let`/`fn name(...)`.
func declName(a *arena.Arena, decl arena.Value) arena.Value {
	if decl.IsPair() && a.IsSymbolNamed(a.Car(decl), "let") {
		rest := a.Cdr(decl)
		if rest.IsPair() {
			return a.Car(rest)
		}
	}
	return arena.Nil
}

func (in *Interp) evalGet(args, env arena.Value) (arena.Value, error) {
	a := in.A
	if !args.IsPair() {
		return arena.Nil, errs.New(errs.ArityError, "get requires an object and a field")
	}
	objExpr := a.Car(args)
	rest := a.Cdr(args)
	if !rest.IsPair() {
		return arena.Nil, errs.New(errs.ArityError, "get requires a field name")
	}
	nameSym := a.Car(rest)
	if nameSym.Kind() != arena.KSymbol {
		return arena.Nil, errs.New(errs.TypeError, "get field name must be a symbol")
	}
	obj, err := in.Eval(objExpr, env)
	if err != nil {
		return arena.Nil, err
	}
	if !a.IsProperList(obj) && !obj.IsNil() {
		return arena.Nil, errs.New(errs.TypeError, "get requires a table (association list)")
	}
	pair, ok := assocLookup(a, obj, a.SymbolName(nameSym))
	if !ok {
		return arena.Nil, errs.New(errs.TypeError, "no such field: %s", a.SymbolName(nameSym))
	}
	return a.Cdr(pair), nil
}
