package arena

// Intern returns the unique Symbol cell for name, allocating one the
// first time name is seen. Two Symbols with equal name are always the
// identical cell in a given Arena, and the symbol table itself is a GC
// root so an interned symbol survives for the life of the context
// regardless of who else references it.
func (a *Arena) Intern(name string) (Value, error) {
	if h, ok := a.symbols[name]; ok {
		return a.wrap(KSymbol, h), nil
	}
	h, err := a.alloc(KSymbol)
	if err != nil {
		return Nil, err
	}
	a.cell(h).name = name
	a.cell(h).global = Nil
	a.symbols[name] = h
	return a.wrap(KSymbol, h), nil
}

// SymbolName returns the interned name of a Symbol, or "" otherwise.
func (a *Arena) SymbolName(v Value) string {
	if v.kind != KSymbol {
		return ""
	}
	return a.cell(v.h).name
}

// IsSymbolNamed reports whether v is the Symbol interned under name,
// used pervasively by the evaluator to recognise special-form keywords
// without an extra allocation.
func (a *Arena) IsSymbolNamed(v Value, name string) bool {
	return v.kind == KSymbol && a.cell(v.h).name == name
}

// GlobalGet reads a Symbol's global value slot.
func (a *Arena) GlobalGet(sym Value) Value {
	if sym.kind != KSymbol {
		return Nil
	}
	return a.cell(sym.h).global
}

// GlobalSet mutates a Symbol's global value slot in place; every
// holder of the symbol (there is only ever one cell per name) observes
// the new value immediately, which is how top-level `let`/`=` behave.
func (a *Arena) GlobalSet(sym Value, val Value) {
	if sym.kind == KSymbol {
		c := a.cell(sym.h)
		c.global = val
		c.globalSet = true
	}
}

// GlobalBound reports whether sym's global slot has ever been
// assigned, distinguishing "bound to nil" from "never bound" so the
// evaluator can raise NameError on a genuinely unbound reference.
func (a *Arena) GlobalBound(sym Value) bool {
	return sym.kind == KSymbol && a.cell(sym.h).globalSet
}
