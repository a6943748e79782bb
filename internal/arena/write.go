package arena

import (
	"strconv"
	"strings"
)

// Write renders v in the same surface the Reader accepts, satisfying
// the round-trip law read(write(v)) = v for Number, String, Symbol,
// Nil, Bool, and proper lists thereof. Strings are rendered quoted
// with the reader's escape set.
func (a *Arena) Write(v Value) string {
	var sb strings.Builder
	a.write(&sb, v, true)
	return sb.String()
}

// Display renders v the way `print` does: strings are emitted without
// surrounding quotes.
func (a *Arena) Display(v Value) string {
	var sb strings.Builder
	a.write(&sb, v, false)
	return sb.String()
}

func (a *Arena) write(sb *strings.Builder, v Value, quoteStrings bool) {
	switch v.kind {
	case KNil:
		sb.WriteString("nil")
	case KBool:
		if v.Bool() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KFixnum:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KNumber:
		sb.WriteString(formatFloat(a.cell(v.h).num))
	case KString:
		s := a.StringVal(v)
		if !quoteStrings {
			sb.WriteString(s)
			return
		}
		sb.WriteByte('"')
		for _, r := range s {
			switch r {
			case '\n':
				sb.WriteString(`\n`)
			case '\r':
				sb.WriteString(`\r`)
			case '\t':
				sb.WriteString(`\t`)
			case '"':
				sb.WriteString(`\"`)
			case '\\':
				sb.WriteString(`\\`)
			default:
				sb.WriteRune(r)
			}
		}
		sb.WriteByte('"')
	case KSymbol:
		sb.WriteString(a.SymbolName(v))
	case KPair:
		sb.WriteByte('(')
		first := true
		for v.kind == KPair {
			if !first {
				sb.WriteByte(' ')
			}
			first = false
			c := a.cell(v.h)
			a.write(sb, c.car, quoteStrings)
			v = c.cdr
		}
		if v.kind != KNil {
			sb.WriteString(" . ")
			a.write(sb, v, quoteStrings)
		}
		sb.WriteByte(')')
	case KFunction:
		sb.WriteString("#<function>")
	case KMacro:
		sb.WriteString("#<macro>")
	case KPrimitive:
		sb.WriteString("#<primitive>")
	case KCFunc:
		sb.WriteString("#<cfunc>")
	case KPtr:
		sb.WriteString("#<ptr>")
	default:
		sb.WriteString("#<free>")
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}
