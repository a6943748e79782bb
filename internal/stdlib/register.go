package stdlib

import "github.com/purple-lang/purple/internal/arena"

func bindCFunc(a *arena.Arena, name string, fn arena.CFunc) error {
	sym, err := a.Intern(name)
	if err != nil {
		return err
	}
	cf, err := a.NewCFunc(fn)
	if err != nil {
		return err
	}
	a.GlobalSet(sym, cf)
	return nil
}

// Install registers every extended-library CFunc as a global. Call
// this once on a context's arena, after eval.InstallPrimitives, before
// running any user program that expects the extended library.
func Install(a *arena.Arena) error {
	for _, reg := range []func(*arena.Arena) error{
		registerMath,
		registerString,
		registerList,
		registerIO,
		registerTime,
		registerRandom,
		registerTypeof,
	} {
		if err := reg(a); err != nil {
			return err
		}
	}
	return nil
}
