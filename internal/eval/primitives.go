package eval

import (
	"fmt"
	"strconv"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// evalOperatorPrimitive handles the arithmetic/comparison/list
// primitives: arguments are always evaluated left to right before the
// operation runs.
func (in *Interp) evalOperatorPrimitive(op arena.Opcode, args, env arena.Value) (arena.Value, error) {
	a := in.A
	switch op {
	case arena.OpAdd, arena.OpSub, arena.OpMul, arena.OpDiv:
		nums, err := in.evalNumericArgs(args, env)
		if err != nil {
			return arena.Nil, err
		}
		return in.arith(op, nums)
	case arena.OpLt, arena.OpLe:
		return in.compare(op, args, env)
	case arena.OpCons:
		x, err := in.Eval(a.Car(args), env)
		if err != nil {
			return arena.Nil, err
		}
		y, err := in.Eval(a.Car(a.Cdr(args)), env)
		if err != nil {
			return arena.Nil, err
		}
		return a.Cons(x, y)
	case arena.OpCar:
		v, err := in.evalOne(args, env)
		if err != nil {
			return arena.Nil, err
		}
		return a.Car(v), nil
	case arena.OpCdr:
		v, err := in.evalOne(args, env)
		if err != nil {
			return arena.Nil, err
		}
		return a.Cdr(v), nil
	case arena.OpSetCar:
		return in.evalSetCarCdr(args, env, true)
	case arena.OpSetCdr:
		return in.evalSetCarCdr(args, env, false)
	case arena.OpList:
		vals, err := in.evalArgs(args, env)
		if err != nil {
			return arena.Nil, err
		}
		return a.List(vals...)
	case arena.OpNot:
		v, err := in.evalOne(args, env)
		if err != nil {
			return arena.Nil, err
		}
		return arena.Bool(!v.Truthy()), nil
	case arena.OpIs:
		x, err := in.Eval(a.Car(args), env)
		if err != nil {
			return arena.Nil, err
		}
		y, err := in.Eval(a.Car(a.Cdr(args)), env)
		if err != nil {
			return arena.Nil, err
		}
		return arena.Bool(a.Is(x, y)), nil
	case arena.OpAtom:
		v, err := in.evalOne(args, env)
		if err != nil {
			return arena.Nil, err
		}
		return arena.Bool(!v.IsPair()), nil
	case arena.OpPrint:
		return in.evalPrint(args, env)
	case arena.OpGensym:
		return in.evalGensym()
	default:
		return arena.Nil, errs.New(errs.CallError, "unimplemented primitive opcode %d", op)
	}
}

func (in *Interp) evalOne(args, env arena.Value) (arena.Value, error) {
	return in.Eval(in.A.Car(args), env)
}

func (in *Interp) evalSetCarCdr(args, env arena.Value, isCar bool) (arena.Value, error) {
	a := in.A
	pair, err := in.Eval(a.Car(args), env)
	if err != nil {
		return arena.Nil, err
	}
	val, err := in.Eval(a.Car(a.Cdr(args)), env)
	if err != nil {
		return arena.Nil, err
	}
	if !pair.IsPair() {
		name := "setcar"
		if !isCar {
			name = "setcdr"
		}
		return arena.Nil, errs.New(errs.TypeError, "%s requires a Pair", name)
	}
	if isCar {
		a.SetCar(pair, val)
	} else {
		a.SetCdr(pair, val)
	}
	return val, nil
}

func (in *Interp) evalNumericArgs(args, env arena.Value) ([]float64, error) {
	a := in.A
	var out []float64
	for args.IsPair() {
		v, err := in.Eval(a.Car(args), env)
		if err != nil {
			return nil, err
		}
		f, ok := a.NumberVal(v)
		if !ok {
			return nil, errs.New(errs.TypeError, "expected a number, got %s", v.Kind())
		}
		out = append(out, f)
		args = a.Cdr(args)
	}
	return out, nil
}

// arith implements + - * /: `+`/`*` are variadic with the conventional
// identity for zero arguments, `-` is variadic with unary negation and
// left-fold subtraction, and `/` is variadic with reciprocal for a
// single argument.
func (in *Interp) arith(op arena.Opcode, nums []float64) (arena.Value, error) {
	var result float64
	switch op {
	case arena.OpAdd:
		for _, n := range nums {
			result += n
		}
	case arena.OpMul:
		result = 1
		for _, n := range nums {
			result *= n
		}
	case arena.OpSub:
		switch len(nums) {
		case 0:
			result = 0
		case 1:
			result = -nums[0]
		default:
			result = nums[0]
			for _, n := range nums[1:] {
				result -= n
			}
		}
	case arena.OpDiv:
		switch len(nums) {
		case 0:
			result = 1
		case 1:
			result = 1 / nums[0]
		default:
			result = nums[0]
			for _, n := range nums[1:] {
				result /= n
			}
		}
	}
	return in.A.MakeNumber(result)
}

func (in *Interp) compare(op arena.Opcode, args, env arena.Value) (arena.Value, error) {
	a := in.A
	x, err := in.Eval(a.Car(args), env)
	if err != nil {
		return arena.Nil, err
	}
	y, err := in.Eval(a.Car(a.Cdr(args)), env)
	if err != nil {
		return arena.Nil, err
	}
	fx, ok := a.NumberVal(x)
	if !ok {
		return arena.Nil, errs.New(errs.TypeError, "expected a number, got %s", x.Kind())
	}
	fy, ok := a.NumberVal(y)
	if !ok {
		return arena.Nil, errs.New(errs.TypeError, "expected a number, got %s", y.Kind())
	}
	if op == arena.OpLt {
		return arena.Bool(fx < fy), nil
	}
	return arena.Bool(fx <= fy), nil
}

// evalPrint writes its evaluated arguments separated by spaces,
// followed by a newline — `print()` alone produces a lone newline.
func (in *Interp) evalPrint(args, env arena.Value) (arena.Value, error) {
	a := in.A
	vals, err := in.evalArgs(args, env)
	if err != nil {
		return arena.Nil, err
	}
	for i, v := range vals {
		if i > 0 {
			fmt.Fprint(in.Stdout, " ")
		}
		fmt.Fprint(in.Stdout, a.Display(v))
	}
	fmt.Fprintln(in.Stdout)
	return arena.Nil, nil
}

// evalGensym produces a fresh, interned-but-unlikely-to-collide symbol
// for macro writers, since macro expansion here is unhygienic textual
// substitution and callers occasionally need to avoid capturing a name
// themselves. The counter lives on Interp, not a package global, so
// two independent contexts in the same process never observe each
// other's gensym sequence.
func (in *Interp) evalGensym() (arena.Value, error) {
	in.gensymCounter++
	return in.A.Intern("%g" + strconv.FormatUint(in.gensymCounter, 10))
}
