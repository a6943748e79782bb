package eval

import "github.com/purple-lang/purple/internal/arena"

// boundSet is a simple copy-on-branch set of lexically bound names
// used while walking a function body. Go maps pass by reference, so
// branches of the traversal that must not see each other's local
// bindings (there are none in this analyzer except `do`'s own
// sequential thread, which mutates in place on purpose) take an
// explicit clone.
type boundSet map[string]bool

func (b boundSet) clone() boundSet {
	c := make(boundSet, len(b))
	for k := range b {
		c[k] = true
	}
	return c
}

// freeCollector gathers free names in first-use order, deduplicated,
// so ComputeFreeVars is deterministic.
type freeCollector struct {
	seen  map[string]bool
	names []string
}

func newFreeCollector() *freeCollector {
	return &freeCollector{seen: map[string]bool{}}
}

func (f *freeCollector) add(name string) {
	if f.seen[name] {
		return
	}
	f.seen[name] = true
	f.names = append(f.names, name)
}

// ComputeFreeVars implements the free-variable analyzer: given a
// function body and its parameter list, it returns the list of
// Symbols referenced in the body but not bound within it, in
// first-use order.
func ComputeFreeVars(a *arena.Arena, body arena.Value, params []string) (arena.Value, error) {
	bound := make(boundSet, len(params))
	for _, p := range params {
		bound[p] = true
	}
	free := newFreeCollector()
	analyzeNode(a, body, bound, free)

	vs := make([]arena.Value, 0, len(free.names))
	for _, name := range free.names {
		sym, err := a.Intern(name)
		if err != nil {
			return arena.Nil, err
		}
		vs = append(vs, sym)
	}
	return a.List(vs...)
}

func analyzeNode(a *arena.Arena, node arena.Value, bound boundSet, free *freeCollector) {
	switch node.Kind() {
	case arena.KSymbol:
		name := a.SymbolName(node)
		if !bound[name] {
			free.add(name)
		}
		return
	case arena.KPair:
		// fall through below
	default:
		return // atoms (number, string, bool, nil) contribute nothing
	}

	op := a.Car(node)
	args := a.Cdr(node)

	if a.IsSymbolNamed(op, "quote") {
		return
	}

	if a.IsSymbolNamed(op, "do") {
		analyzeDo(a, args, bound, free)
		return
	}

	if a.IsSymbolNamed(op, "fn") || a.IsSymbolNamed(op, "mac") {
		analyzeClosureLiteral(a, args, bound, free)
		return
	}

	analyzeNode(a, op, bound, free)
	rest := args
	for rest.IsPair() {
		analyzeNode(a, a.Car(rest), bound, free)
		rest = a.Cdr(rest)
	}
	if !rest.IsNil() {
		analyzeNode(a, rest, bound, free) // dotted tail
	}
}

// analyzeDo threads names introduced by an inner (let name expr) into
// the bound set for the statements that follow it, within this do
// only.
func analyzeDo(a *arena.Arena, stmts arena.Value, outerBound boundSet, free *freeCollector) {
	bound := outerBound.clone()
	for stmts.IsPair() {
		stmt := a.Car(stmts)
		stmts = a.Cdr(stmts)

		if stmt.IsPair() && a.IsSymbolNamed(a.Car(stmt), "let") {
			rest := a.Cdr(stmt)
			if rest.IsPair() {
				nameSym := a.Car(rest)
				name := a.SymbolName(nameSym)
				bound[name] = true // letrec: initializer may reference its own name
				initRest := a.Cdr(rest)
				if initRest.IsPair() {
					analyzeNode(a, a.Car(initRest), bound, free)
				}
				continue
			}
		}
		analyzeNode(a, stmt, bound, free)
	}
}

// analyzeClosureLiteral handles (fn params body) / (mac params body):
// the inner free variables are computed against the literal's own
// parameters, then folded into the outer analysis as ordinary symbol
// references — a name the outer function itself binds is satisfied
// locally; anything else propagates outward as free in the outer
// function too.
func analyzeClosureLiteral(a *arena.Arena, args arena.Value, outerBound boundSet, free *freeCollector) {
	if !args.IsPair() {
		return
	}
	params := a.Car(args)
	bodyRest := a.Cdr(args)
	if !bodyRest.IsPair() {
		return
	}
	body := a.Car(bodyRest)

	paramNames := paramNameList(a, params)
	innerBound := make(boundSet, len(paramNames))
	for _, p := range paramNames {
		innerBound[p] = true
	}
	innerFree := newFreeCollector()
	analyzeNode(a, body, innerBound, innerFree)

	for _, name := range innerFree.names {
		if !outerBound[name] {
			free.add(name)
		}
	}
}

// paramNameList flattens a (possibly dotted) parameter list into its
// constituent names, including a dotted tail parameter.
func paramNameList(a *arena.Arena, params arena.Value) []string {
	var names []string
	for params.IsPair() {
		names = append(names, a.SymbolName(a.Car(params)))
		params = a.Cdr(params)
	}
	if params.Kind() == arena.KSymbol {
		names = append(names, a.SymbolName(params))
	}
	return names
}
