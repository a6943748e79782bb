package stdlib

import (
	"strconv"
	"strings"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

func oneStrArg(a *arena.Arena, args arena.Value, name string) (string, error) {
	if !args.IsPair() {
		return "", errs.New(errs.ArityError, "%s requires one argument", name)
	}
	v := a.Car(args)
	if v.Kind() != arena.KString {
		return "", errs.New(errs.TypeError, "%s requires a string", name)
	}
	return a.StringVal(v), nil
}

// registerString installs string.* CFuncs wrapping strings/strconv:
// upper, lower, trim, split (returns a proper list of Strings),
// concat (variadic), len, to_number, to_string.
func registerString(a *arena.Arena) error {
	unary := map[string]func(string) string{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
	}
	for name, fn := range unary {
		name, fn := name, fn
		if err := bindCFunc(a, name, func(a *arena.Arena, args arena.Value) (arena.Value, error) {
			s, err := oneStrArg(a, args, name)
			if err != nil {
				return arena.Nil, err
			}
			return a.NewString(fn(s))
		}); err != nil {
			return err
		}
	}

	if err := bindCFunc(a, "split", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() || !a.Cdr(args).IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "split requires a string and a separator")
		}
		s, err := oneStrArg(a, args, "split")
		if err != nil {
			return arena.Nil, err
		}
		sep, err := oneStrArg(a, a.Cdr(args), "split")
		if err != nil {
			return arena.Nil, err
		}
		parts := strings.Split(s, sep)
		vs := make([]arena.Value, 0, len(parts))
		for _, p := range parts {
			v, err := a.NewString(p)
			if err != nil {
				return arena.Nil, err
			}
			vs = append(vs, v)
		}
		return a.List(vs...)
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "concat", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		var sb strings.Builder
		cur := args
		for cur.IsPair() {
			v := a.Car(cur)
			if v.Kind() != arena.KString {
				return arena.Nil, errs.New(errs.TypeError, "concat requires strings")
			}
			sb.WriteString(a.StringVal(v))
			cur = a.Cdr(cur)
		}
		return a.NewString(sb.String())
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "len", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "len requires one argument")
		}
		v := a.Car(args)
		switch v.Kind() {
		case arena.KString:
			return a.MakeNumber(float64(len(a.StringVal(v))))
		case arena.KPair, arena.KNil:
			return a.MakeNumber(float64(a.ListLen(v)))
		default:
			return arena.Nil, errs.New(errs.TypeError, "len requires a string or a list")
		}
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "to_number", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		s, err := oneStrArg(a, args, "to_number")
		if err != nil {
			return arena.Nil, err
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return arena.Nil, errs.New(errs.DomainError, "cannot parse %q as a number", s)
		}
		return a.MakeNumber(f)
	}); err != nil {
		return err
	}

	return bindCFunc(a, "to_string", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "to_string requires one argument")
		}
		return a.NewString(a.Display(a.Car(args)))
	})
}
