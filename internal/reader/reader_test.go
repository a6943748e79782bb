package reader

import (
	"testing"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

func readOne(t *testing.T, a *arena.Arena, src string) arena.Value {
	t.Helper()
	v, ok, err := New(a, src).Read()
	if err != nil {
		t.Fatalf("Read(%q): %v", src, err)
	}
	if !ok {
		t.Fatalf("Read(%q): expected a value, got end-of-input", src)
	}
	return v
}

func TestReadAtoms(t *testing.T) {
	a := arena.Open(256)
	if v := readOne(t, a, "42"); v.Kind() != arena.KFixnum || v.FixnumVal() != 42 {
		t.Errorf("42 -> %v", a.Write(v))
	}
	if v := readOne(t, a, "3.5"); v.Kind() != arena.KNumber {
		t.Errorf("3.5 -> %v", a.Write(v))
	}
	if v := readOne(t, a, "nil"); !v.IsNil() {
		t.Errorf("nil -> %v", a.Write(v))
	}
	if v := readOne(t, a, "true"); !v.Truthy() {
		t.Errorf("true -> %v", a.Write(v))
	}
	if v := readOne(t, a, "false"); v.Truthy() {
		t.Errorf("false -> %v", a.Write(v))
	}
	if v := readOne(t, a, "foo"); a.SymbolName(v) != "foo" {
		t.Errorf("foo -> %v", a.Write(v))
	}
}

func TestReadString(t *testing.T) {
	a := arena.Open(256)
	v := readOne(t, a, `"a\nb\t\"c\""`)
	if got, want := a.StringVal(v), "a\nb\t\"c\""; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadList(t *testing.T) {
	a := arena.Open(256)
	v := readOne(t, a, "(1 2 3)")
	slice, tail := a.ToSlice(v)
	if !tail.IsNil() || len(slice) != 3 {
		t.Fatalf("(1 2 3) -> %v", a.Write(v))
	}
	for i, want := range []int64{1, 2, 3} {
		if slice[i].FixnumVal() != want {
			t.Errorf("element %d = %d, want %d", i, slice[i].FixnumVal(), want)
		}
	}
}

func TestReadDottedPair(t *testing.T) {
	a := arena.Open(256)
	v := readOne(t, a, "(1 . 2)")
	if a.Car(v).FixnumVal() != 1 || a.Cdr(v).FixnumVal() != 2 {
		t.Errorf("(1 . 2) -> %v", a.Write(v))
	}
}

func TestReadQuote(t *testing.T) {
	a := arena.Open(256)
	v := readOne(t, a, "'x")
	if !a.IsSymbolNamed(a.Car(v), "quote") {
		t.Fatalf("'x -> %v", a.Write(v))
	}
	if a.SymbolName(a.Car(a.Cdr(v))) != "x" {
		t.Errorf("'x -> %v", a.Write(v))
	}
}

func TestReadComment(t *testing.T) {
	a := arena.Open(256)
	v := readOne(t, a, "; a comment\n42")
	if v.FixnumVal() != 42 {
		t.Errorf("got %v", a.Write(v))
	}
}

func TestUnclosedListIsReaderError(t *testing.T) {
	a := arena.Open(256)
	_, _, err := New(a, "(1 2").Read()
	if !errs.Is(err, errs.ReaderError) {
		t.Fatalf("expected ReaderError, got %v", err)
	}
}

func TestUnclosedStringIsReaderError(t *testing.T) {
	a := arena.Open(256)
	_, _, err := New(a, `"abc`).Read()
	if !errs.Is(err, errs.ReaderError) {
		t.Fatalf("expected ReaderError, got %v", err)
	}
}

func TestStrayCloseParenIsReaderError(t *testing.T) {
	a := arena.Open(256)
	_, _, err := New(a, ")").Read()
	if !errs.Is(err, errs.ReaderError) {
		t.Fatalf("expected ReaderError, got %v", err)
	}
}

func TestReadAllAndEndOfInput(t *testing.T) {
	a := arena.Open(256)
	r := New(a, "1 2 3")
	vs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(vs) != 3 {
		t.Fatalf("expected 3 expressions, got %d", len(vs))
	}
	_, ok, err := New(a, "  ").Read()
	if err != nil || ok {
		t.Fatalf("empty input should report end-of-input, got ok=%v err=%v", ok, err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	a := arena.Open(256)
	cases := []string{"42", "3.5", `"hi\nthere"`, "foo", "nil", "true", "false", "(1 2 3)"}
	for _, src := range cases {
		v := readOne(t, a, src)
		rewritten := a.Write(v)
		v2 := readOne(t, a, rewritten)
		if a.Write(v2) != a.Write(v) {
			t.Errorf("round trip for %q: first=%q second=%q", src, a.Write(v), a.Write(v2))
		}
	}
}
