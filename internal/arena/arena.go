package arena

import "github.com/purple-lang/purple/internal/errs"

const defaultRootCapacity = 1024

// Arena owns every cell a context can ever reference: the cell array,
// the free list threaded through it, the root stack the allocator and
// evaluator push into, the call list used for back-traces, the module
// stack for in-progress `module` bodies, and the interned symbol
// table. A host instantiates one Arena per concurrent worker; nothing
// here is safe to share across goroutines.
type Arena struct {
	cells    []Cell
	freeHead Handle

	rootStack []Handle
	rootCap   int

	callList    []Value
	moduleStack []Value

	symbols map[string]Handle

	liveCount     int
	allocsSinceGC int
	threshold     int

	onPtrMark func(interface{})
	onPtrGC   func(interface{})

	applyHook func(fn Value, argv []Value) (Value, error)
}

// Open formats a fresh arena sized to hold exactly cellCount cells,
// all linked into the free list. The region is a slice the Arena owns
// outright rather than a raw byte buffer a caller supplies, since Go
// offers no portable way to carve a typed slice out of arbitrary bytes
// without unsafe tricks.
func Open(cellCount int) *Arena {
	if cellCount < 1 {
		cellCount = 1
	}
	a := &Arena{
		cells:     make([]Cell, cellCount),
		rootStack: make([]Handle, 0, defaultRootCapacity),
		rootCap:   defaultRootCapacity,
		symbols:   make(map[string]Handle),
		threshold: 1024,
	}
	for i := range a.cells {
		a.cells[i].kind = KFree
		if i == len(a.cells)-1 {
			a.cells[i].next = noHandle
		} else {
			a.cells[i].next = Handle(i + 1)
		}
	}
	a.freeHead = 0
	return a
}

// Close runs a final collection with every root cleared, so every
// live Ptr finalizer fires before the context goes away.
func (a *Arena) Close() {
	a.rootStack = a.rootStack[:0]
	a.callList = nil
	a.moduleStack = nil
	a.symbols = nil
	a.collect()
}

// Len reports the cell capacity of the arena (for tests and stats).
func (a *Arena) Len() int { return len(a.cells) }

func (a *Arena) cell(h Handle) *Cell { return &a.cells[h] }

// alloc pops a cell off the free list, running a collection first if
// the adaptive threshold has been crossed or the free list is already
// empty. The returned cell is immediately pushed onto the root stack
// so constructors built on top of alloc never lose it to a GC that
// runs during their own follow-up allocations.
func (a *Arena) alloc(kind Kind) (Handle, error) {
	if a.allocsSinceGC >= a.threshold || a.freeHead == noHandle {
		a.collect()
	}
	if a.freeHead == noHandle {
		return noHandle, errs.New(errs.OutOfMemory, "arena exhausted (%d cells)", len(a.cells))
	}
	h := a.freeHead
	c := a.cell(h)
	a.freeHead = c.next
	*c = Cell{kind: kind}
	a.allocsSinceGC++
	if err := a.pushGCHandle(h); err != nil {
		return noHandle, err
	}
	return h, nil
}

func (a *Arena) wrap(kind Kind, h Handle) Value { return Value{kind: kind, h: h} }

// --- Root stack discipline -------------------------------------------------

// SaveGC returns the current top-of-stack index.
func (a *Arena) SaveGC() int { return len(a.rootStack) }

// PushGC protects a value from collection until the stack is restored
// below its position. Immediates are silently ignored since they carry
// no handle to protect.
func (a *Arena) PushGC(v Value) error {
	if v.IsImmediate() {
		return nil
	}
	return a.pushGCHandle(v.h)
}

func (a *Arena) pushGCHandle(h Handle) error {
	if len(a.rootStack) >= a.rootCap {
		return errs.New(errs.GcStackOverflow, "root stack capacity %d exceeded", a.rootCap)
	}
	a.rootStack = append(a.rootStack, h)
	return nil
}

// RestoreGC truncates the root stack to idx, making everything pushed
// at or after idx eligible for collection once nothing else reaches
// it.
func (a *Arena) RestoreGC(idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(a.rootStack) {
		idx = len(a.rootStack)
	}
	a.rootStack = a.rootStack[:idx]
}

// --- Call list / module stack (also GC roots) ------------------------------

// PushCall records expr as the currently-evaluating form, for back-traces.
func (a *Arena) PushCall(expr Value) { a.callList = append(a.callList, expr) }

// PopCall removes the most recently pushed call expression.
func (a *Arena) PopCall() {
	if len(a.callList) > 0 {
		a.callList = a.callList[:len(a.callList)-1]
	}
}

// CallList returns the current back-trace, innermost call last.
func (a *Arena) CallList() []Value { return a.callList }

// ResetCallList empties the call list; used when a host error handler
// longjmps back to a REPL top-level.
func (a *Arena) ResetCallList() { a.callList = a.callList[:0] }

// PushModule pushes a fresh export table (a legacy association list,
// starts empty) for an in-progress `module` body.
func (a *Arena) PushModule(table Value) { a.moduleStack = append(a.moduleStack, table) }

// PopModule pops and returns the current module's export table.
func (a *Arena) PopModule() Value {
	n := len(a.moduleStack)
	if n == 0 {
		return Nil
	}
	v := a.moduleStack[n-1]
	a.moduleStack = a.moduleStack[:n-1]
	return v
}

// CurrentModule returns the export table currently being built, or
// (Nil, false) if no `module` body is active.
func (a *Arena) CurrentModule() (Value, bool) {
	n := len(a.moduleStack)
	if n == 0 {
		return Nil, false
	}
	return a.moduleStack[n-1], true
}

// SetCurrentModule overwrites the export table at the top of the
// module stack (used by `export` to append a binding).
func (a *Arena) SetCurrentModule(table Value) {
	n := len(a.moduleStack)
	if n > 0 {
		a.moduleStack[n-1] = table
	}
}

// SetPtrHooks installs the host's mark and finalize callbacks used for
// every Ptr cell in this arena.
func (a *Arena) SetPtrHooks(mark, gc func(interface{})) {
	a.onPtrMark = mark
	a.onPtrGC = gc
}

// SetApplyHook installs the evaluator's function-application entry
// point, letting CFuncs (which only ever see the Arena, not the
// evaluator) call back into a Function or Macro value — the basis for
// higher-order extended-library primitives like map/filter/fold.
func (a *Arena) SetApplyHook(hook func(fn Value, argv []Value) (Value, error)) {
	a.applyHook = hook
}

// Apply invokes fn (a Function) with argv already evaluated, via the
// evaluator's ApplyHook. It is a CallError if no evaluator has
// installed a hook on this arena.
func (a *Arena) Apply(fn Value, argv []Value) (Value, error) {
	if a.applyHook == nil {
		return Nil, errs.New(errs.CallError, "no evaluator attached to this arena for callback application")
	}
	return a.applyHook(fn, argv)
}
