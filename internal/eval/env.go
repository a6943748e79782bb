// Package eval is the tree-walking interpreter: special-form dispatch,
// closure application with upvalue materialization, macro expansion,
// return propagation, and module/export/import/get.
//
// Dispatch is a big switch over the operator's evaluated Kind, built
// around the arena's Handle-based Values instead of native Go
// pointers, with frame and legacy association-list environment shapes
// living side by side.
package eval

import (
	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

const frameSymName = "%frame%"
const returnSymName = "%return%"

func frameSym(a *arena.Arena) (arena.Value, error) { return a.Intern(frameSymName) }
func returnSym(a *arena.Arena) (arena.Value, error) { return a.Intern(returnSymName) }

// isFrame reports whether env is a closure-frame pair
// (frame_sym, (locals, upvalues)) as opposed to a legacy association
// list or Nil.
func isFrame(a *arena.Arena, env arena.Value) bool {
	if !env.IsPair() {
		return false
	}
	fs, err := frameSym(a)
	if err != nil {
		return false
	}
	return arena.Identical(a.Car(env), fs)
}

func newFrame(a *arena.Arena, locals, upvalues arena.Value) (arena.Value, error) {
	fs, err := frameSym(a)
	if err != nil {
		return arena.Nil, err
	}
	inner, err := a.Cons(locals, upvalues)
	if err != nil {
		return arena.Nil, err
	}
	return a.Cons(fs, inner)
}

func frameLocals(a *arena.Arena, frame arena.Value) arena.Value {
	return a.Car(a.Cdr(frame))
}

func frameUpvalues(a *arena.Arena, frame arena.Value) arena.Value {
	return a.Cdr(a.Cdr(frame))
}

// setFrameLocals mutates the frame's locals slot in place, so every
// alias of this frame Value observes the new binding — this is how a
// nested `let` inside a function body (evaluated via `do`) extends the
// enclosing closure's environment.
func setFrameLocals(a *arena.Arena, frame, locals arena.Value) {
	a.SetCar(a.Cdr(frame), locals)
}

// assocLookup walks a legacy association list of (symbol . value)
// pairs and returns the binding pair itself (not just the value), so
// callers can mutate its cdr for `=` and `let`'s letrec patch-up.
func assocLookup(a *arena.Arena, list arena.Value, name string) (arena.Value, bool) {
	for list.IsPair() {
		pair := a.Car(list)
		if pair.IsPair() && a.SymbolName(a.Car(pair)) == name {
			return pair, true
		}
		list = a.Cdr(list)
	}
	return arena.Nil, false
}

// lookupBinding finds the nearest binding pair for sym within env,
// checking locals then upvalues for a frame, or the legacy list
// directly otherwise. It does not fall back to the global slot — that
// is the caller's job.
func lookupBinding(a *arena.Arena, env, sym arena.Value) (arena.Value, bool) {
	name := a.SymbolName(sym)
	if env.IsNil() {
		return arena.Nil, false
	}
	if isFrame(a, env) {
		if p, ok := assocLookup(a, frameLocals(a, env), name); ok {
			return p, true
		}
		return assocLookup(a, frameUpvalues(a, env), name)
	}
	return assocLookup(a, env, name)
}

// resolve returns the value bound to sym: the nearest lexical binding
// if one exists, else the symbol's global slot. err is a NameError if
// neither exists.
func resolve(a *arena.Arena, env, sym arena.Value) (arena.Value, error) {
	if p, ok := lookupBinding(a, env, sym); ok {
		return a.Cdr(p), nil
	}
	if a.GlobalBound(sym) {
		return a.GlobalGet(sym), nil
	}
	return arena.Nil, errs.New(errs.NameError, "unbound name: %s", a.SymbolName(sym))
}

// assign mutates the nearest existing binding for sym to val,
// including the global slot if no local/upvalue binding matches.
func assign(a *arena.Arena, env, sym, val arena.Value) error {
	if p, ok := lookupBinding(a, env, sym); ok {
		a.SetCdr(p, val)
		return nil
	}
	a.GlobalSet(sym, val)
	return nil
}

// extendLocal prepends a fresh (sym . val) binding onto env's visible
// local scope, returning the environment subsequent statements should
// see. For a frame this mutates the frame's locals slot in place and
// returns the same frame handle; for a legacy list (or Nil) it conses
// a new list and returns that, since legacy lists are not otherwise
// mutated in place.
func extendLocal(a *arena.Arena, env, sym, val arena.Value) (arena.Value, arena.Value, error) {
	pair, err := a.Cons(sym, val)
	if err != nil {
		return arena.Nil, arena.Nil, err
	}
	if isFrame(a, env) {
		locals := frameLocals(a, env)
		newLocals, err := a.Cons(pair, locals)
		if err != nil {
			return arena.Nil, arena.Nil, err
		}
		setFrameLocals(a, env, newLocals)
		return env, pair, nil
	}
	newEnv, err := a.Cons(pair, env)
	if err != nil {
		return arena.Nil, arena.Nil, err
	}
	return newEnv, pair, nil
}
