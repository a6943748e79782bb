package arena

// Cons allocates a new Pair cell. The two operands are not pushed
// here: alloc may run a collection before the new cell holds them, so
// heap operands must already be reachable from the root set. The
// result itself is pushed by alloc.
func (a *Arena) Cons(car, cdr Value) (Value, error) {
	h, err := a.alloc(KPair)
	if err != nil {
		return Nil, err
	}
	c := a.cell(h)
	c.car, c.cdr = car, cdr
	return a.wrap(KPair, h), nil
}

// Car returns the nil-safe head of v: (car nil) = nil.
func (a *Arena) Car(v Value) Value {
	if v.kind != KPair {
		return Nil
	}
	return a.cell(v.h).car
}

// Cdr returns the nil-safe tail of v: (cdr nil) = nil.
func (a *Arena) Cdr(v Value) Value {
	if v.kind != KPair {
		return Nil
	}
	return a.cell(v.h).cdr
}

// SetCar mutates the car of a Pair in place; the argument must be a
// Pair, otherwise a TypeError is surfaced by the caller (see
// internal/eval).
func (a *Arena) SetCar(v, val Value) bool {
	if v.kind != KPair {
		return false
	}
	a.cell(v.h).car = val
	return true
}

// SetCdr mutates the cdr of a Pair in place.
func (a *Arena) SetCdr(v, val Value) bool {
	if v.kind != KPair {
		return false
	}
	a.cell(v.h).cdr = val
	return true
}

// List builds a proper list from the given values. Each Cons call
// protects its own result on the root stack the same way a direct
// caller's Cons would; List does not restore the stack afterward, so
// the returned head stays reachable for the caller exactly as if they
// had consed it by hand.
func (a *Arena) List(vs ...Value) (Value, error) {
	result := Nil
	for i := len(vs) - 1; i >= 0; i-- {
		var err error
		result, err = a.Cons(vs[i], result)
		if err != nil {
			return Nil, err
		}
	}
	return result, nil
}

// ListLen counts the pairs in a proper list; an improper tail simply
// stops the count at the dotted element, which callers that need to
// detect impropriety should check for explicitly via IsProperList.
func (a *Arena) ListLen(v Value) int {
	n := 0
	for v.kind == KPair {
		n++
		v = a.cell(v.h).cdr
	}
	return n
}

// IsProperList reports whether v is nil or a chain of pairs ending in nil.
func (a *Arena) IsProperList(v Value) bool {
	for v.kind == KPair {
		v = a.cell(v.h).cdr
	}
	return v.kind == KNil
}

// ToSlice collects a proper (or improper) list's elements, returning
// the trailing non-pair value (Nil for a proper list) as the second
// result.
func (a *Arena) ToSlice(v Value) ([]Value, Value) {
	var out []Value
	for v.kind == KPair {
		c := a.cell(v.h)
		out = append(out, c.car)
		v = c.cdr
	}
	return out, v
}
