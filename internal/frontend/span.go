package frontend

import "github.com/purple-lang/purple/internal/arena"

// Span records the source extent a front-end-emitted AST cell came
// from. It lives in a side-table instead of the tagged Value itself,
// so Core code paying no attention to source positions pays nothing
// for them.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// SpanTable maps the handle of an AST cell to the span it was parsed
// from. Populated only when a Parser is constructed with spans
// enabled.
type SpanTable map[arena.Handle]Span
