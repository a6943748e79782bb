package arena

// NewString allocates an immutable String cell holding a copy of s's
// bytes; the byte buffer is exclusively owned by the cell and released
// on collection.
func (a *Arena) NewString(s string) (Value, error) {
	h, err := a.alloc(KString)
	if err != nil {
		return Nil, err
	}
	buf := make([]byte, len(s))
	copy(buf, s)
	a.cell(h).bytes = buf
	return a.wrap(KString, h), nil
}

// StringVal returns the Go string backing a String cell, or "" for
// any other Kind.
func (a *Arena) StringVal(v Value) string {
	if v.kind != KString {
		return ""
	}
	return string(a.cell(v.h).bytes)
}

// StringEqual implements String equality by length+bytes, as opposed
// to identity for every other heap type.
func (a *Arena) StringEqual(x, y Value) bool {
	if x.kind != KString || y.kind != KString {
		return false
	}
	cx, cy := a.cell(x.h), a.cell(y.h)
	if len(cx.bytes) != len(cy.bytes) {
		return false
	}
	for i := range cx.bytes {
		if cx.bytes[i] != cy.bytes[i] {
			return false
		}
	}
	return true
}
