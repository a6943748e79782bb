package frontend

import (
	"testing"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

func parse(t *testing.T, a *arena.Arena, src string) arena.Value {
	t.Helper()
	p, err := NewParser(a, src, false)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	v, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return v
}

func TestParseLetAndWrite(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `let x = 1 + 2;`)
	got := a.Write(v)
	want := "(let x (+ 1 2))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseFnDecl(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `fn add(a, b) { return a + b; }`)
	got := a.Write(v)
	want := "(let add (fn (a b) (return (+ a b))))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseIfElse(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `if (x < 1) { 1; } else { 2; }`)
	got := a.Write(v)
	want := "(if (< x 1) 1 2)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseWhile(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `while (x < 10) { x = x + 1; }`)
	got := a.Write(v)
	want := "(while (< x 10) (= x (+ x 1)))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseListLiteralAndCall(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `f([1, 2, 3]);`)
	got := a.Write(v)
	want := "(f (list 1 2 3))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseMemberAccess(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `a.b;`)
	got := a.Write(v)
	want := "(get a b)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseComparisonDesugaring(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `a > b;`)
	got := a.Write(v)
	want := "(< b a)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	v2 := parse(t, a, `a != b;`)
	got2 := a.Write(v2)
	want2 := "(not (is a b))"
	if got2 != want2 {
		t.Fatalf("got %q, want %q", got2, want2)
	}
}

func TestParseModuleExport(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `module("m") { export let x = 1; }`)
	got := a.Write(v)
	want := `(module "m" (export (let x 1)))`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseMultipleTopLevelWrapsInDo(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `let x = 1; let y = 2;`)
	got := a.Write(v)
	want := "(do (let x 1) (let y 2))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseHexLiteral(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	v := parse(t, a, `0xFF;`)
	if !v.IsFixnum() || v.FixnumVal() != 255 {
		t.Fatalf("got %v, want fixnum 255", v)
	}
}

func TestParseSpansRecorded(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	p, err := NewParser(a, `let x = 1;`, true)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	v, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	spans := p.Spans()
	if _, ok := spans[v.Handle()]; !ok {
		t.Fatalf("expected a span recorded for the top-level node")
	}
}

func TestUnexpectedTokenIsSyntaxError(t *testing.T) {
	a := arena.Open(4096)
	defer a.Close()
	p, err := NewParser(a, `let = 1;`, false)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if !errs.Is(err, errs.SyntaxError) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}
