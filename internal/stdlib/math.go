// Package stdlib registers the extended built-in library: CFuncs for
// math, strings, list higher-order operations, file I/O, time, and a
// seedable PRNG. None of it changes Core semantics — everything here
// is an ordinary global bound to a CFunc, reachable the same way a
// host's own native functions are.
package stdlib

import (
	"math"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

func oneNumArg(a *arena.Arena, args arena.Value, name string) (float64, error) {
	if !args.IsPair() {
		return 0, errs.New(errs.ArityError, "%s requires one argument", name)
	}
	f, ok := a.NumberVal(a.Car(args))
	if !ok {
		return 0, errs.New(errs.TypeError, "%s requires a number", name)
	}
	return f, nil
}

func twoNumArgs(a *arena.Arena, args arena.Value, name string) (float64, float64, error) {
	if !args.IsPair() || !a.Cdr(args).IsPair() {
		return 0, 0, errs.New(errs.ArityError, "%s requires two arguments", name)
	}
	x, ok := a.NumberVal(a.Car(args))
	if !ok {
		return 0, 0, errs.New(errs.TypeError, "%s requires a number", name)
	}
	y, ok := a.NumberVal(a.Car(a.Cdr(args)))
	if !ok {
		return 0, 0, errs.New(errs.TypeError, "%s requires a number", name)
	}
	return x, y, nil
}

// registerMath installs math.* CFuncs wrapping the standard math
// package: sqrt, pow, abs, floor, ceil, log (DomainError on
// non-positive input, per the extended library's own taxonomy entry),
// sin, cos, min, max.
func registerMath(a *arena.Arena) error {
	unary := map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"sin":   math.Sin,
		"cos":   math.Cos,
	}
	for name, fn := range unary {
		name, fn := name, fn
		if err := bindCFunc(a, name, func(a *arena.Arena, args arena.Value) (arena.Value, error) {
			x, err := oneNumArg(a, args, name)
			if err != nil {
				return arena.Nil, err
			}
			return a.MakeNumber(fn(x))
		}); err != nil {
			return err
		}
	}

	if err := bindCFunc(a, "log", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		x, err := oneNumArg(a, args, "log")
		if err != nil {
			return arena.Nil, err
		}
		if x <= 0 {
			return arena.Nil, errs.New(errs.DomainError, "log of non-positive value %v", x)
		}
		return a.MakeNumber(math.Log(x))
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "pow", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		x, y, err := twoNumArgs(a, args, "pow")
		if err != nil {
			return arena.Nil, err
		}
		return a.MakeNumber(math.Pow(x, y))
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "min", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		x, y, err := twoNumArgs(a, args, "min")
		if err != nil {
			return arena.Nil, err
		}
		return a.MakeNumber(math.Min(x, y))
	}); err != nil {
		return err
	}

	return bindCFunc(a, "max", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		x, y, err := twoNumArgs(a, args, "max")
		if err != nil {
			return arena.Nil, err
		}
		return a.MakeNumber(math.Max(x, y))
	})
}
