package stdlib

import (
	"os"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// registerIO installs simple whole-file read/write/append CFuncs.
// There is no streaming file handle type in the Core's value set, so
// these operate a path at a time, matching the spec's "simple file
// I/O" scope.
func registerIO(a *arena.Arena) error {
	if err := bindCFunc(a, "read_file", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		path, err := oneStrArg(a, args, "read_file")
		if err != nil {
			return arena.Nil, err
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return arena.Nil, errs.New(errs.DomainError, "read_file: %v", rerr)
		}
		return a.NewString(string(data))
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "write_file", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() || !a.Cdr(args).IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "write_file requires a path and contents")
		}
		path, err := oneStrArg(a, args, "write_file")
		if err != nil {
			return arena.Nil, err
		}
		contents, err := oneStrArg(a, a.Cdr(args), "write_file")
		if err != nil {
			return arena.Nil, err
		}
		if werr := os.WriteFile(path, []byte(contents), 0o644); werr != nil {
			return arena.Nil, errs.New(errs.DomainError, "write_file: %v", werr)
		}
		return arena.True, nil
	}); err != nil {
		return err
	}

	return bindCFunc(a, "append_file", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		if !args.IsPair() || !a.Cdr(args).IsPair() {
			return arena.Nil, errs.New(errs.ArityError, "append_file requires a path and contents")
		}
		path, err := oneStrArg(a, args, "append_file")
		if err != nil {
			return arena.Nil, err
		}
		contents, err := oneStrArg(a, a.Cdr(args), "append_file")
		if err != nil {
			return arena.Nil, err
		}
		f, operr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if operr != nil {
			return arena.Nil, errs.New(errs.DomainError, "append_file: %v", operr)
		}
		defer f.Close()
		if _, werr := f.WriteString(contents); werr != nil {
			return arena.Nil, errs.New(errs.DomainError, "append_file: %v", werr)
		}
		return arena.True, nil
	})
}
