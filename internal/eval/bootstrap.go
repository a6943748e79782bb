package eval

import "github.com/purple-lang/purple/internal/arena"

// opcodeNames pairs each Opcode with the global Symbol name that
// triggers it. Special forms and built-in operators are both ordinary
// globals bound to Primitive cells — the same "evaluate the operator,
// dispatch on its kind" path in evalPair handles both, so there is no
// separate special-form table.
var opcodeNames = []struct {
	name string
	op   arena.Opcode
}{
	{"let", arena.OpLet},
	{"=", arena.OpSet},
	{"if", arena.OpIf},
	{"while", arena.OpWhile},
	{"and", arena.OpAnd},
	{"or", arena.OpOr},
	{"do", arena.OpDo},
	{"progn", arena.OpDo},
	{"begin", arena.OpDo},
	{"quote", arena.OpQuote},
	{"fn", arena.OpFn},
	{"mac", arena.OpMac},
	{"return", arena.OpReturn},
	{"module", arena.OpModule},
	{"export", arena.OpExport},
	{"import", arena.OpImport},
	{"get", arena.OpGet},
	{"+", arena.OpAdd},
	{"-", arena.OpSub},
	{"*", arena.OpMul},
	{"/", arena.OpDiv},
	{"<", arena.OpLt},
	{"<=", arena.OpLe},
	{"cons", arena.OpCons},
	{"car", arena.OpCar},
	{"cdr", arena.OpCdr},
	{"setcar", arena.OpSetCar},
	{"setcdr", arena.OpSetCdr},
	{"list", arena.OpList},
	{"not", arena.OpNot},
	{"is", arena.OpIs},
	{"atom", arena.OpAtom},
	{"print", arena.OpPrint},
	{"gensym", arena.OpGensym},
}

// InstallPrimitives binds every special form and built-in operator as
// a global Symbol pointing to a Primitive cell carrying its Opcode.
// Call this once on a freshly opened Arena before evaluating anything.
func InstallPrimitives(a *arena.Arena) error {
	for _, entry := range opcodeNames {
		sym, err := a.Intern(entry.name)
		if err != nil {
			return err
		}
		prim, err := a.NewPrimitive(entry.op)
		if err != nil {
			return err
		}
		a.GlobalSet(sym, prim)
	}
	return nil
}
