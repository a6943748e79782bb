package stdlib

import (
	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// registerList installs map/filter/fold/reverse/append/nth over Core
// pairs: hand-written against the Pair primitives since these are
// language surface, not a third-party dependency target. map/filter/
// fold call back into the evaluator via Arena.Apply, so the argument
// in the function position must be a Function (not a CFunc or
// Primitive).
func registerList(a *arena.Arena) error {
	if err := bindCFunc(a, "map", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		fn, lst, err := fnAndList(a, args, "map")
		if err != nil {
			return arena.Nil, err
		}
		items, tail := a.ToSlice(lst)
		if !tail.IsNil() {
			return arena.Nil, errs.New(errs.TypeError, "map requires a proper list")
		}
		out := make([]arena.Value, 0, len(items))
		for _, it := range items {
			v, err := a.Apply(fn, []arena.Value{it})
			if err != nil {
				return arena.Nil, err
			}
			out = append(out, v)
		}
		return a.List(out...)
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "filter", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		fn, lst, err := fnAndList(a, args, "filter")
		if err != nil {
			return arena.Nil, err
		}
		items, tail := a.ToSlice(lst)
		if !tail.IsNil() {
			return arena.Nil, errs.New(errs.TypeError, "filter requires a proper list")
		}
		var out []arena.Value
		for _, it := range items {
			v, err := a.Apply(fn, []arena.Value{it})
			if err != nil {
				return arena.Nil, err
			}
			if v.Truthy() {
				out = append(out, it)
			}
		}
		return a.List(out...)
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "fold", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() || !a.Cdr(args).IsPair() || !a.Cdr(a.Cdr(args)).IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "fold requires a function, an initial value, and a list")
		}
		fn := a.Car(args)
		if fn.Kind() != arena.KFunction {
			return arena.Nil, errs.New(errs.TypeError, "fold requires a Function")
		}
		acc := a.Car(a.Cdr(args))
		lst := a.Car(a.Cdr(a.Cdr(args)))
		items, tail := a.ToSlice(lst)
		if !tail.IsNil() {
			return arena.Nil, errs.New(errs.TypeError, "fold requires a proper list")
		}
		for _, it := range items {
			v, err := a.Apply(fn, []arena.Value{acc, it})
			if err != nil {
				return arena.Nil, err
			}
			acc = v
		}
		return acc, nil
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "reverse", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "reverse requires one argument")
		}
		items, tail := a.ToSlice(a.Car(args))
		if !tail.IsNil() {
			return arena.Nil, errs.New(errs.TypeError, "reverse requires a proper list")
		}
		out := make([]arena.Value, len(items))
		for i, v := range items {
			out[len(items)-1-i] = v
		}
		return a.List(out...)
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "append", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		var all []arena.Value
		cur := args
		for cur.IsPair() {
			items, tail := a.ToSlice(a.Car(cur))
			if !tail.IsNil() {
				return arena.Nil, errs.New(errs.TypeError, "append requires proper lists")
			}
			all = append(all, items...)
			cur = a.Cdr(cur)
		}
		return a.List(all...)
	}); err != nil {
		return err
	}

	return bindCFunc(a, "nth", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() || !a.Cdr(args).IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "nth requires a list and an index")
		}
		items, _ := a.ToSlice(a.Car(args))
		idx, ok := a.NumberVal(a.Car(a.Cdr(args)))
		if !ok {
			return arena.Nil, errs.New(errs.TypeError, "nth requires a numeric index")
		}
		i := int(idx)
		if i < 0 || i >= len(items) {
			return arena.Nil, nil
		}
		return items[i], nil
	})
}

func fnAndList(a *arena.Arena, args arena.Value, name string) (fn, lst arena.Value, err error) {
	if !args.IsPair() || !a.Cdr(args).IsPair() {
		return arena.Nil, arena.Nil, errs.New(errs.ArityError, "%s requires a function and a list", name)
	}
	fn = a.Car(args)
	if fn.Kind() != arena.KFunction {
		return arena.Nil, arena.Nil, errs.New(errs.TypeError, "%s requires a Function", name)
	}
	lst = a.Car(a.Cdr(args))
	return fn, lst, nil
}
