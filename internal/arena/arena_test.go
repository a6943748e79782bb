package arena

import (
	"testing"

	"github.com/purple-lang/purple/internal/errs"
)

func TestConsCarCdr(t *testing.T) {
	a := Open(64)
	pair, err := a.Cons(Fixnum(1), Fixnum(2))
	if err != nil {
		t.Fatalf("cons: %v", err)
	}
	if a.Car(pair).FixnumVal() != 1 {
		t.Errorf("car = %v, want 1", a.Car(pair))
	}
	if a.Cdr(pair).FixnumVal() != 2 {
		t.Errorf("cdr = %v, want 2", a.Cdr(pair))
	}
}

func TestCarCdrOfNilIsNil(t *testing.T) {
	a := Open(16)
	if !a.Car(Nil).IsNil() {
		t.Errorf("car(nil) should be nil")
	}
	if !a.Cdr(Nil).IsNil() {
		t.Errorf("cdr(nil) should be nil")
	}
}

func TestInternReturnsIdenticalCell(t *testing.T) {
	a := Open(64)
	s1, _ := a.Intern("foo")
	s2, _ := a.Intern("foo")
	if !Identical(s1, s2) {
		t.Errorf("re-interning 'foo' should yield the identical cell")
	}
	other, _ := a.Intern("bar")
	if Identical(s1, other) {
		t.Errorf("distinct names should not intern to the same cell")
	}
}

func TestFixnumBoundary(t *testing.T) {
	a := Open(16)
	n, _ := a.MakeNumber(42)
	if n.Kind() != KFixnum {
		t.Errorf("integral in-range value should be a Fixnum, got %v", n.Kind())
	}
	f, _ := a.MakeNumber(3.5)
	if f.Kind() != KNumber {
		t.Errorf("fractional value should be a boxed Number, got %v", f.Kind())
	}
	big, _ := a.MakeNumber(float64(MaxFixnum) + 1024)
	if big.Kind() != KNumber {
		t.Errorf("out-of-range integral value should fall back to Number, got %v", big.Kind())
	}
}

func TestTruthiness(t *testing.T) {
	a := Open(16)
	z := Fixnum(0)
	if !z.Truthy() {
		t.Errorf("zero must be truthy")
	}
	emptyStr, _ := a.NewString("")
	if !emptyStr.Truthy() {
		t.Errorf("empty string must be truthy")
	}
	if Nil.Truthy() {
		t.Errorf("nil must be falsy")
	}
	if False.Truthy() {
		t.Errorf("false must be falsy")
	}
}

func TestGCReclaimsUnreachableCells(t *testing.T) {
	a := Open(8) // room for exactly a handful of pairs
	mark := a.SaveGC()
	for i := 0; i < 3; i++ {
		if _, err := a.Cons(Fixnum(int64(i)), Nil); err != nil {
			t.Fatalf("cons %d: %v", i, err)
		}
	}
	a.RestoreGC(mark)
	a.Collect()
	if a.LiveCount() != 0 {
		t.Errorf("after restoring GC stack, unreachable pairs should be swept, live=%d", a.LiveCount())
	}
}

func TestGCKeepsRootedCellsAlive(t *testing.T) {
	a := Open(1024)
	survivors := Nil
	for i := 0; i < 50; i++ {
		mark := a.SaveGC()
		if err := a.PushGC(survivors); err != nil {
			t.Fatalf("push: %v", err)
		}
		// allocate some garbage the survivor list does not reference
		for j := 0; j < 5; j++ {
			if _, err := a.Cons(Fixnum(int64(j)), Nil); err != nil {
				t.Fatalf("garbage cons: %v", err)
			}
		}
		next, err := a.Cons(Fixnum(int64(i)), survivors)
		if err != nil {
			t.Fatalf("survivor cons: %v", err)
		}
		survivors = next
		a.RestoreGC(mark)
		if err := a.PushGC(survivors); err != nil {
			t.Fatalf("repush: %v", err)
		}
	}
	a.Collect()
	n := a.ListLen(survivors)
	if n != 50 {
		t.Fatalf("expected 50 survivors, got %d", n)
	}
	slice, _ := a.ToSlice(survivors)
	for i, v := range slice {
		want := int64(49 - i)
		if v.FixnumVal() != want {
			t.Errorf("survivor[%d] = %d, want %d", i, v.FixnumVal(), want)
		}
	}
}

func TestOutOfMemoryWhenArenaExhausted(t *testing.T) {
	a := Open(2)
	// consume the two cells with values nothing keeps reachable, but the
	// root stack itself is the reachability: pin both so GC can't help.
	mark := a.SaveGC()
	_ = mark
	var last error
	for i := 0; i < 10; i++ {
		v, err := a.Cons(Fixnum(1), Nil)
		if err != nil {
			last = err
			break
		}
		if err := a.PushGC(v); err != nil {
			last = err
			break
		}
	}
	if last == nil {
		t.Fatalf("expected OutOfMemory once the arena and root stack are both pinned full")
	}
	if !errs.Is(last, errs.OutOfMemory) {
		t.Errorf("expected OutOfMemory, got %v", last)
	}
}

func TestWriteRoundTripsAtoms(t *testing.T) {
	a := Open(64)
	s, _ := a.NewString("hi\nthere")
	if a.Write(s) != `"hi\nthere"` {
		t.Errorf("Write(string) = %q", a.Write(s))
	}
	n, _ := a.MakeNumber(3.5)
	if a.Write(n) != "3.5" {
		t.Errorf("Write(number) = %q", a.Write(n))
	}
	if a.Write(Fixnum(42)) != "42" {
		t.Errorf("Write(fixnum) = %q", a.Write(Fixnum(42)))
	}
}

func TestStressSurvivorsAtFiveThousand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	a := Open(1 << 16) // arena well above the 1 MiB-equivalent floor
	survivors := Nil
	const n = 5000
	mark := a.SaveGC()
	for i := 0; i < n; i++ {
		if err := a.PushGC(survivors); err != nil {
			t.Fatalf("iteration %d: push: %v", i, err)
		}
		for j := 0; j < 8; j++ {
			if _, err := a.Cons(Fixnum(int64(j)), Nil); err != nil {
				t.Fatalf("iteration %d: discardable cons: %v", i, err)
			}
		}
		next, err := a.Cons(Fixnum(int64(i)), survivors)
		if err != nil {
			t.Fatalf("iteration %d: survivor cons: %v", i, err)
		}
		survivors = next
		a.RestoreGC(mark)
		if err := a.PushGC(survivors); err != nil {
			t.Fatalf("iteration %d: repush: %v", i, err)
		}
	}
	if got := a.ListLen(survivors); got != n {
		t.Fatalf("expected %d survivors, got %d", n, got)
	}
	slice, _ := a.ToSlice(survivors)
	for i, v := range slice {
		want := int64(n - 1 - i)
		if v.FixnumVal() != want {
			t.Fatalf("survivor[%d] = %d, want %d", i, v.FixnumVal(), want)
		}
	}
}
