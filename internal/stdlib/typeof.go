package stdlib

import (
	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// registerTypeof installs `typeof`, returning the Kind name (as the
// spec's "type introspection" entry of the extended library) as a
// String: "nil", "bool", "fixnum", "number", "string", "symbol",
// "pair", "function", "macro", "primitive", "cfunc", "ptr".
func registerTypeof(a *arena.Arena) error {
	return bindCFunc(a, "typeof", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "typeof requires one argument")
		}
		return a.NewString(a.Car(args).Kind().String())
	})
}
