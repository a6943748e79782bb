package purple

import (
	"bytes"
	"testing"
)

func open(t *testing.T) *Context {
	t.Helper()
	ctx, err := Open(1<<14, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx
}

func run(t *testing.T, ctx *Context, src string) Value {
	t.Helper()
	v, err := ctx.Run(src)
	if err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return v
}

func TestRunArithmetic(t *testing.T) {
	ctx := open(t)
	v := run(t, ctx, `1 + 2 * 3;`)
	if got, want := ctx.Write(v), "7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunClosureCounter(t *testing.T) {
	ctx := open(t)
	run(t, ctx, `
		fn make_counter() {
			let n = 0;
			return fn() { n = n + 1; return n; };
		}
		let c = make_counter();
	`)
	v1 := run(t, ctx, `c();`)
	v2 := run(t, ctx, `c();`)
	if ctx.Write(v1) != "1" || ctx.Write(v2) != "2" {
		t.Fatalf("got %s then %s, want 1 then 2", ctx.Write(v1), ctx.Write(v2))
	}
}

func TestRunRecursion(t *testing.T) {
	ctx := open(t)
	run(t, ctx, `
		fn fact(n) {
			if (n < 2) { return 1; }
			return n * fact(n - 1);
		}
	`)
	v := run(t, ctx, `fact(10);`)
	if got, want := ctx.Write(v), "3628800"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunModuleExport(t *testing.T) {
	ctx := open(t)
	v := run(t, ctx, `
		module("m") {
			export let answer = 42;
		}
		m.answer;
	`)
	if got, want := ctx.Write(v), "42"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunSyntaxErrorReportsCompileKind(t *testing.T) {
	ctx := open(t)
	_, err := ctx.Run(`let = 1;`)
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if kind, ok := KindOf(err); !ok || kind != SyntaxError {
		t.Fatalf("got kind %v ok %v, want SyntaxError", kind, ok)
	}
}

func TestRunUnboundNameIsNameError(t *testing.T) {
	ctx := open(t)
	_, err := ctx.Run(`nonexistent_name;`)
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, ok := KindOf(err); !ok || kind != NameError {
		t.Fatalf("got kind %v ok %v, want NameError", kind, ok)
	}
}

func TestErrorHandlerReceivesCallTrace(t *testing.T) {
	ctx := open(t)
	var lastMessage string
	var lastTrace []Value
	ctx.OnError(func(c *Context, message string, trace []Value) {
		lastMessage = message
		lastTrace = trace
	})
	_, err := ctx.Run(`
		fn boom() { return undefined_var; }
		boom();
	`)
	if err == nil {
		t.Fatal("expected an error")
	}
	if lastMessage == "" {
		t.Fatal("expected the error handler to run with a message")
	}
	_ = lastTrace
}

func TestInstallStdlibMathAndString(t *testing.T) {
	ctx := open(t)
	if err := ctx.InstallStdlib(); err != nil {
		t.Fatalf("InstallStdlib: %v", err)
	}
	v := run(t, ctx, `sqrt(16);`)
	if got, want := ctx.Write(v), "4"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	v2 := run(t, ctx, `upper("hi");`)
	if got, want := ctx.Write(v2), `"HI"`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInstallStdlibListHigherOrder(t *testing.T) {
	ctx := open(t)
	if err := ctx.InstallStdlib(); err != nil {
		t.Fatalf("InstallStdlib: %v", err)
	}
	v := run(t, ctx, `
		fn double(x) { return x * 2; }
		fold(fn(acc, x) { return acc + x; }, 0, map(double, [1, 2, 3]));
	`)
	if got, want := ctx.Write(v), "12"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGCSurvivesRootedValueAcrossCollect(t *testing.T) {
	ctx := open(t)
	run(t, ctx, `let kept = [1, 2, 3];`)
	for i := 0; i < 2000; i++ {
		if _, err := ctx.Run(`[1, 2, 3, 4, 5];`); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
	v := run(t, ctx, `kept;`)
	if got, want := ctx.Write(v), "(1 2 3)"; got != want {
		t.Fatalf("kept list corrupted: got %q, want %q", got, want)
	}
}
