// Package purple is the embedding API: open a context over a
// fixed-size arena, feed it source text via the reader or the
// curly-brace front-end, evaluate it, and inspect or construct
// values — the single entry point a host program needs.
package purple

import (
	"fmt"
	"io"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
	"github.com/purple-lang/purple/internal/eval"
	"github.com/purple-lang/purple/internal/frontend"
	"github.com/purple-lang/purple/internal/reader"
	"github.com/purple-lang/purple/internal/stdlib"
)

// Value is re-exported so hosts never need to import internal/arena
// directly.
type Value = arena.Value

// ErrorHandler receives the context, a formatted message, and the
// call-expression back-trace (most recent call first) whenever
// evaluation fails. Installed with Context.OnError.
type ErrorHandler func(ctx *Context, message string, callTrace []Value)

// Context bundles one arena, its evaluator, and the host's installed
// callbacks. A host creates one Context per concurrent worker; nothing
// in a Context is safe to share across goroutines.
type Context struct {
	arena   *arena.Arena
	interp  *eval.Interp
	onError ErrorHandler
	spans   frontend.SpanTable
	recordSpans bool
}

// Open allocates a new context backed by an arena sized to hold
// exactly cellCount cells, installs the primitive/special-form
// globals, and directs `print` output to stdout.
func Open(cellCount int, stdout io.Writer) (*Context, error) {
	a := arena.Open(cellCount)
	if err := eval.InstallPrimitives(a); err != nil {
		a.Close()
		return nil, err
	}
	return &Context{arena: a, interp: eval.New(a, stdout)}, nil
}

// Close runs a final GC (firing Ptr finalizers for anything left
// live) and releases the arena.
func (c *Context) Close() {
	c.arena.Collect()
	c.arena.Close()
}

// InstallStdlib registers the extended built-in library (math,
// string, list, I/O, time, typeof, PRNG CFuncs documented in
// internal/stdlib) as globals on this context. It is optional: a host
// embedding only the Core need not call it.
func (c *Context) InstallStdlib() error {
	return stdlib.Install(c.arena)
}

// OnError installs the host's error-handling callback. It is invoked
// by Eval/Run wrappers on failure; the Core itself never panics across
// a package boundary.
func (c *Context) OnError(h ErrorHandler) {
	c.onError = h
}

// OnPtrHooks installs arena-wide mark/gc hooks for Ptr cells created
// without per-cell hooks of their own.
func (c *Context) OnPtrHooks(mark, gc func(interface{})) {
	c.arena.SetPtrHooks(mark, gc)
}

// EnableSpans turns on source-span recording for subsequent Compile
// calls.
func (c *Context) EnableSpans() { c.recordSpans = true }

// Spans returns the most recently populated span table, or nil if
// span recording was never enabled.
func (c *Context) Spans() frontend.SpanTable { return c.spans }

// SpanFor looks up the source span an AST cell was parsed from, for
// annotating error traces per spec.md §7. It only finds anything when
// EnableSpans was called before the Compile that produced v; the
// S-expression reader never populates the span table, and Values
// built by hand (quote, gensym, macro expansion) carry no span either.
func (c *Context) SpanFor(v Value) (frontend.Span, bool) {
	if c.spans == nil || v.IsImmediate() {
		return frontend.Span{}, false
	}
	sp, ok := c.spans[v.Handle()]
	return sp, ok
}

// Read pulls one S-expression from src, returning (value, false, nil)
// at end of input rather than an error.
func (c *Context) Read(src string) (Value, bool, error) {
	r := reader.New(c.arena, src)
	return r.Read()
}

// ReadAll reads every S-expression in src.
func (c *Context) ReadAll(src string) ([]Value, error) {
	r := reader.New(c.arena, src)
	return r.ReadAll()
}

// Compile turns curly-brace source into an AST in the same object
// space the reader produces.
func (c *Context) Compile(src string) (Value, error) {
	p, err := frontend.NewParser(c.arena, src, c.recordSpans)
	if err != nil {
		return arena.Nil, err
	}
	v, err := p.Parse()
	if c.recordSpans {
		c.spans = p.Spans()
	}
	return v, err
}

// Eval evaluates an AST in the global environment, routing any
// resulting error through the installed ErrorHandler (if any) before
// returning it to the caller.
func (c *Context) Eval(expr Value) (Value, error) {
	v, err := c.interp.Eval(expr, arena.Nil)
	if err != nil {
		c.reportError(err)
	}
	return v, err
}

// Run compiles src as curly-brace source and evaluates it in one step.
// The root stack is restored to its depth on entry before Run returns,
// so the AST and every temporary become collectible; the result is not
// left rooted, and a host that keeps it across later allocations roots
// it with PushGC.
func (c *Context) Run(src string) (Value, error) {
	defer c.arena.RestoreGC(c.arena.SaveGC())
	ast, err := c.Compile(src)
	if err != nil {
		c.reportError(err)
		return arena.Nil, err
	}
	return c.Eval(ast)
}

func (c *Context) reportError(err error) {
	if c.onError == nil {
		return
	}
	calls := c.arena.CallList()
	trace := make([]Value, len(calls))
	for i, v := range calls {
		trace[len(calls)-1-i] = v
	}
	message := err.Error()
	if len(trace) > 0 {
		if sp, ok := c.SpanFor(trace[0]); ok {
			message = fmt.Sprintf("%s at %d:%d", message, sp.StartLine, sp.StartCol)
		}
	}
	c.onError(c, message, trace)
}

// --- Root-stack discipline ---

// SaveGC returns a mark to pass to RestoreGC, protecting every Value
// pushed after it from collection until restored.
func (c *Context) SaveGC() int { return c.arena.SaveGC() }

// PushGC roots v until the next RestoreGC below its save point.
func (c *Context) PushGC(v Value) error { return c.arena.PushGC(v) }

// RestoreGC pops the root stack back to a mark from SaveGC, making
// everything pushed since eligible for collection again.
func (c *Context) RestoreGC(mark int) { c.arena.RestoreGC(mark) }

// Collect forces an immediate mark-sweep cycle.
func (c *Context) Collect() { c.arena.Collect() }

// LiveCount reports how many cells were live as of the last collection.
func (c *Context) LiveCount() int { return c.arena.LiveCount() }

// --- Value construction ---

func (c *Context) Nil() Value          { return arena.Nil }
func (c *Context) Bool(b bool) Value   { return arena.Bool(b) }
func (c *Context) Fixnum(i int64) Value { return arena.Fixnum(i) }

func (c *Context) Number(f float64) (Value, error) { return c.arena.MakeNumber(f) }
func (c *Context) String(s string) (Value, error)  { return c.arena.NewString(s) }
func (c *Context) Symbol(name string) (Value, error) { return c.arena.Intern(name) }
func (c *Context) Cons(car, cdr Value) (Value, error) { return c.arena.Cons(car, cdr) }
func (c *Context) List(vs ...Value) (Value, error)    { return c.arena.List(vs...) }
func (c *Context) Ptr(p interface{}) (Value, error)   { return c.arena.NewPtr(p) }
func (c *Context) PtrWithHooks(p interface{}, mark, gc func(interface{})) (Value, error) {
	return c.arena.NewPtrWithHooks(p, mark, gc)
}
func (c *Context) CFunc(fn arena.CFunc) (Value, error) { return c.arena.NewCFunc(fn) }

// --- Value inspection ---

func (c *Context) Kind(v Value) arena.Kind { return v.Kind() }
func (c *Context) Car(v Value) Value       { return c.arena.Car(v) }
func (c *Context) Cdr(v Value) Value       { return c.arena.Cdr(v) }
func (c *Context) ToNumber(v Value) (float64, bool) { return c.arena.NumberVal(v) }
func (c *Context) ToString(v Value) string          { return c.arena.StringVal(v) }
func (c *Context) ToPtr(v Value) interface{} { return c.arena.PtrVal(v) }
func (c *Context) SymbolName(v Value) string         { return c.arena.SymbolName(v) }
func (c *Context) Write(v Value) string              { return c.arena.Write(v) }
func (c *Context) Display(v Value) string            { return c.arena.Display(v) }

// --- Symbol bindings ---

func (c *Context) GlobalGet(sym Value) Value   { return c.arena.GlobalGet(sym) }
func (c *Context) GlobalSet(sym, val Value)    { c.arena.GlobalSet(sym, val) }
func (c *Context) GlobalBound(sym Value) bool  { return c.arena.GlobalBound(sym) }

// ErrKind re-exports the error taxonomy so hosts can switch on a
// failure's kind without importing internal/errs.
type ErrKind = errs.Kind

const (
	SyntaxError     = errs.SyntaxError
	ReaderError     = errs.ReaderError
	TypeError       = errs.TypeError
	ArityError      = errs.ArityError
	NameError       = errs.NameError
	DomainError     = errs.DomainError
	OutOfMemory     = errs.OutOfMemory
	GcStackOverflow = errs.GcStackOverflow
	CallError       = errs.CallError
)

// KindOf returns the error kind of err, or false if err did not
// originate in this runtime.
func KindOf(err error) (ErrKind, bool) {
	e, ok := err.(*errs.Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}
