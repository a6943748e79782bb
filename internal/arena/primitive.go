package arena

// NewPrimitive wraps a built-in special form or operator opcode as a
// callable Value, installed into the relevant Symbol's global slot at
// context initialization.
func (a *Arena) NewPrimitive(op Opcode) (Value, error) {
	h, err := a.alloc(KPrimitive)
	if err != nil {
		return Nil, err
	}
	a.cell(h).op = op
	return a.wrap(KPrimitive, h), nil
}

// PrimitiveOp returns the opcode of a Primitive Value.
func (a *Arena) PrimitiveOp(v Value) Opcode { return a.cell(v.h).op }

// NewCFunc wraps a host-registered native function as a callable Value.
func (a *Arena) NewCFunc(fn CFunc) (Value, error) {
	h, err := a.alloc(KCFunc)
	if err != nil {
		return Nil, err
	}
	a.cell(h).cfunc = fn
	return a.wrap(KCFunc, h), nil
}

// CFuncVal returns the Go function backing a CFunc Value.
func (a *Arena) CFuncVal(v Value) CFunc { return a.cell(v.h).cfunc }

// NewPtr wraps an opaque host pointer using the arena-wide mark/gc
// hooks installed via SetPtrHooks, if any.
func (a *Arena) NewPtr(ptr interface{}) (Value, error) {
	return a.NewPtrWithHooks(ptr, nil, nil)
}

// NewPtrWithHooks wraps an opaque host pointer with a per-cell
// finalizer hook: markHook (if non-nil) is invoked during GC mark so
// the host can keep values the pointer references alive; gcHook (if
// non-nil) is invoked once, during finalization, when the cell is
// reclaimed. Finalizers must not allocate.
func (a *Arena) NewPtrWithHooks(ptr interface{}, markHook, gcHook func(interface{})) (Value, error) {
	h, err := a.alloc(KPtr)
	if err != nil {
		return Nil, err
	}
	c := a.cell(h)
	c.ptr, c.markHook, c.gcHook = ptr, markHook, gcHook
	return a.wrap(KPtr, h), nil
}

// PtrVal returns the opaque pointer held by a Ptr Value.
func (a *Arena) PtrVal(v Value) interface{} {
	if v.kind != KPtr {
		return nil
	}
	return a.cell(v.h).ptr
}
