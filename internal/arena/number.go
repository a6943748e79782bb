package arena

import "math"

// MakeNumber implements the Fixnum/Number split: an integral value in
// fixnum range is represented as an immediate Fixnum; anything else
// (fractional, or out of range) is boxed as a Number cell holding an
// IEEE-754 double.
func (a *Arena) MakeNumber(f float64) (Value, error) {
	if i := int64(f); float64(i) == f && i >= MinFixnum && i <= MaxFixnum {
		return Fixnum(i), nil
	}
	h, err := a.alloc(KNumber)
	if err != nil {
		return Nil, err
	}
	a.cell(h).num = f
	return a.wrap(KNumber, h), nil
}

// NumberVal returns the numeric value of a Fixnum or Number, or 0 and
// false for anything else.
func (a *Arena) NumberVal(v Value) (float64, bool) {
	switch v.kind {
	case KFixnum:
		return float64(v.i), true
	case KNumber:
		return a.cell(v.h).num, true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is a Fixnum or boxed Number.
func (a *Arena) IsNumber(v Value) bool { return v.kind == KFixnum || v.kind == KNumber }

// NumericEqual compares two numeric values by value, ignoring whether
// either happens to be boxed.
func (a *Arena) NumericEqual(x, y Value) bool {
	fx, okx := a.NumberVal(x)
	fy, oky := a.NumberVal(y)
	if !okx || !oky {
		return false
	}
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return false
	}
	return fx == fy
}
