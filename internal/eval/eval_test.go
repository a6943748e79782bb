package eval

import (
	"bytes"
	"testing"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
	"github.com/purple-lang/purple/internal/reader"
)

func evalSrc(t *testing.T, a *arena.Arena, in *Interp, src string) arena.Value {
	t.Helper()
	r := reader.New(a, src)
	exprs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", src, err)
	}
	var result arena.Value
	for _, e := range exprs {
		v, err := in.Eval(e, arena.Nil)
		if err != nil {
			t.Fatalf("Eval(%q): %v", src, err)
		}
		result = v
	}
	return result
}

func newInterp(t *testing.T) (*arena.Arena, *Interp) {
	t.Helper()
	a := arena.Open(1 << 14)
	t.Cleanup(a.Close)
	if err := InstallPrimitives(a); err != nil {
		t.Fatalf("InstallPrimitives: %v", err)
	}
	return a, New(a, &bytes.Buffer{})
}

func TestEvalArithmetic(t *testing.T) {
	a, in := newInterp(t)
	v := evalSrc(t, a, in, `(+ 1 (* 2 3))`)
	if got, want := a.Write(v), "7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEvalClosureCapturesByReference(t *testing.T) {
	a, in := newInterp(t)
	evalSrc(t, a, in, `
		(let make_counter (fn () (do
			(let n 0)
			(fn () (do (= n (+ n 1)) n)))))
		(let c (make_counter))
	`)
	v1 := evalSrc(t, a, in, `(c)`)
	v2 := evalSrc(t, a, in, `(c)`)
	if a.Write(v1) != "1" || a.Write(v2) != "2" {
		t.Fatalf("got %s then %s, want 1 then 2", a.Write(v1), a.Write(v2))
	}
}

func TestEvalTwoClosuresFromSameFactoryAreIndependent(t *testing.T) {
	a, in := newInterp(t)
	evalSrc(t, a, in, `
		(let make_counter (fn () (do
			(let n 0)
			(fn () (do (= n (+ n 1)) n)))))
		(let c1 (make_counter))
		(let c2 (make_counter))
	`)
	evalSrc(t, a, in, `(c1)`)
	evalSrc(t, a, in, `(c1)`)
	v1 := evalSrc(t, a, in, `(c1)`)
	v2 := evalSrc(t, a, in, `(c2)`)
	if a.Write(v1) != "3" || a.Write(v2) != "1" {
		t.Fatalf("got c1=%s c2=%s, want 3 and 1", a.Write(v1), a.Write(v2))
	}
}

func TestEvalRecursionViaLet(t *testing.T) {
	a, in := newInterp(t)
	evalSrc(t, a, in, `
		(let fact (fn (n) (if (< n 2) 1 (* n (fact (- n 1))))))
	`)
	v := evalSrc(t, a, in, `(fact 6)`)
	if got, want := a.Write(v), "720"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEvalMacroExpandsOnceAndMemoizes(t *testing.T) {
	a, in := newInterp(t)
	evalSrc(t, a, in, `
		(let unless (mac (cond body) (list 'if cond nil body)))
	`)
	call, ok, err := reader.New(a, `(unless false 42)`).Read()
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	v, err := in.Eval(call, arena.Nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got, want := a.Write(v), "42"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := a.Write(call), "(if false nil 42)"; got != want {
		t.Fatalf("call cell after expansion = %q, want %q", got, want)
	}
	v2 := evalSrc(t, a, in, `(unless true 42)`)
	if !v2.IsNil() {
		t.Fatalf("got %q, want nil", a.Write(v2))
	}
}

func TestEvalWhileLoopAccumulates(t *testing.T) {
	a, in := newInterp(t)
	evalSrc(t, a, in, `
		(let i 0)
		(let total 0)
		(while (< i 5) (do (= total (+ total i)) (= i (+ i 1))))
	`)
	v := evalSrc(t, a, in, `total`)
	if got, want := a.Write(v), "10"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEvalUnboundSymbolIsNameError(t *testing.T) {
	a, in := newInterp(t)
	v, ok, err := reader.New(a, `(no_such_thing)`).Read()
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	_, err = in.Eval(v, arena.Nil)
	if err == nil {
		t.Fatal("expected an error calling an unbound name")
	}
	if !errs.Is(err, errs.NameError) {
		t.Fatalf("expected NameError, got %v", err)
	}
}
