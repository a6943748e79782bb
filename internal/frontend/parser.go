package frontend

import (
	"strconv"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// Parser is a Pratt parser over the curly-brace surface syntax,
// emitting the same pair-tree AST shape the S-expression reader
// builds. It allocates every node directly through the arena, so a
// compiled program lives in the same object space as hand-written
// S-expressions.
type Parser struct {
	a    *arena.Arena
	lex  *Lexer
	cur  Token
	ahead Token
	haveAhead bool

	spans    SpanTable
	recording bool
}

// NewParser constructs a Parser over src. When recordSpans is true,
// the nodes built for statements, function literals, modules and
// assignments get an entry in the returned Spans table; operator,
// call, member-access and literal sub-expressions do not.
func NewParser(a *arena.Arena, src string, recordSpans bool) (*Parser, error) {
	p := &Parser{a: a, lex: NewLexer(src), recording: recordSpans}
	if recordSpans {
		p.spans = make(SpanTable)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Spans returns the span table populated during parsing (nil if span
// recording was not enabled).
func (p *Parser) Spans() SpanTable { return p.spans }

func (p *Parser) advance() error {
	if p.haveAhead {
		p.cur = p.ahead
		p.haveAhead = false
		return nil
	}
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) peekAhead() (Token, error) {
	if !p.haveAhead {
		t, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.ahead = t
		p.haveAhead = true
	}
	return p.ahead, nil
}

func (p *Parser) isKeyword(kw string) bool {
	return p.cur.Kind == TKeyword && p.cur.Text == kw
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.cur.Kind != k {
		return Token{}, errs.New(errs.SyntaxError, "expected %s at line %d col %d, got %q", what, p.cur.Line, p.cur.Col, p.cur.Text)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (p *Parser) record(v arena.Value, start Token, end Token) arena.Value {
	if p.recording && !v.IsImmediate() {
		p.spans[v.Handle()] = Span{start.Line, start.Col, end.EndLine, end.EndCol}
	}
	return v
}

// Parse consumes the entire input and returns one AST expression: the
// lone declaration if there is exactly one, else `(do decl…)`.
func (p *Parser) Parse() (arena.Value, error) {
	var decls []arena.Value
	var firstErr error
	for p.cur.Kind != TEOF {
		d, err := p.parseDeclOrStmt()
		if err != nil {
			if errs.Is(err, errs.SyntaxError) {
				if firstErr == nil {
					firstErr = err
				}
				p.synchronize()
				continue
			}
			return arena.Nil, err
		}
		decls = append(decls, d)
	}
	if firstErr != nil {
		return arena.Nil, firstErr
	}
	if len(decls) == 0 {
		return arena.Nil, nil
	}
	if len(decls) == 1 {
		return decls[0], nil
	}
	doSym, err := p.a.Intern("do")
	if err != nil {
		return arena.Nil, err
	}
	rest, err := p.a.List(decls...)
	if err != nil {
		return arena.Nil, err
	}
	return p.a.Cons(doSym, rest)
}

// synchronize discards tokens until the next ';' or top-level keyword,
// implementing panic-mode error recovery.
func (p *Parser) synchronize() {
	for p.cur.Kind != TEOF {
		if p.cur.Kind == TSemicolon {
			p.advance()
			return
		}
		if p.cur.Kind == TKeyword {
			switch p.cur.Text {
			case "fn", "let", "if", "while", "return":
				return
			}
		}
		if p.advance() != nil {
			return
		}
	}
}

func (p *Parser) parseDeclOrStmt() (arena.Value, error) {
	switch {
	case p.isKeyword("let"):
		return p.parseLet()
	case p.isKeyword("fn"):
		return p.parseFnDecl()
	case p.isKeyword("export"):
		return p.parseExport()
	case p.isKeyword("import"):
		return p.parseImport()
	case p.isKeyword("module"):
		return p.parseModule()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.cur.Kind == TLBrace:
		return p.parseBlock()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLet() (arena.Value, error) {
	start := p.cur
	if err := p.advance(); err != nil { // consume 'let'
		return arena.Nil, err
	}
	nameTok, err := p.expect(TIdent, "identifier")
	if err != nil {
		return arena.Nil, err
	}
	if _, err := p.expect(TAssign, "'='"); err != nil {
		return arena.Nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return arena.Nil, err
	}
	end := p.cur
	if _, err := p.expect(TSemicolon, "';'"); err != nil {
		return arena.Nil, err
	}
	letSym, err := p.a.Intern("let")
	if err != nil {
		return arena.Nil, err
	}
	nameSym, err := p.a.Intern(nameTok.Text)
	if err != nil {
		return arena.Nil, err
	}
	node, err := p.a.List(letSym, nameSym, value)
	if err != nil {
		return arena.Nil, err
	}
	return p.record(node, start, end), nil
}

// parseFnDecl parses `fn name(p,…) { body }` => (let name (fn (p …) body')).
func (p *Parser) parseFnDecl() (arena.Value, error) {
	start := p.cur
	if err := p.advance(); err != nil { // consume 'fn'
		return arena.Nil, err
	}
	nameTok, err := p.expect(TIdent, "function name")
	if err != nil {
		return arena.Nil, err
	}
	fnExpr, err := p.parseFnTail(start)
	if err != nil {
		return arena.Nil, err
	}
	letSym, err := p.a.Intern("let")
	if err != nil {
		return arena.Nil, err
	}
	nameSym, err := p.a.Intern(nameTok.Text)
	if err != nil {
		return arena.Nil, err
	}
	return p.a.List(letSym, nameSym, fnExpr)
}

// parseFnTail parses the `(params) { body }` portion shared by named
// and anonymous function forms, given the already-consumed `fn` token
// (start) for span purposes.
func (p *Parser) parseFnTail(start Token) (arena.Value, error) {
	if _, err := p.expect(TLParen, "'('"); err != nil {
		return arena.Nil, err
	}
	var params []arena.Value
	for p.cur.Kind != TRParen {
		pt, err := p.expect(TIdent, "parameter name")
		if err != nil {
			return arena.Nil, err
		}
		sym, err := p.a.Intern(pt.Text)
		if err != nil {
			return arena.Nil, err
		}
		params = append(params, sym)
		if p.cur.Kind == TComma {
			if err := p.advance(); err != nil {
				return arena.Nil, err
			}
		}
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return arena.Nil, err
	}
	paramList, err := p.a.List(params...)
	if err != nil {
		return arena.Nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return arena.Nil, err
	}
	end := p.cur
	fnSym, err := p.a.Intern("fn")
	if err != nil {
		return arena.Nil, err
	}
	node, err := p.a.List(fnSym, paramList, body)
	if err != nil {
		return arena.Nil, err
	}
	return p.record(node, start, end), nil
}

// parseBlock parses `{ s1; s2; }`: a single statement if there is
// exactly one, else `(do s1 s2 …)`.
func (p *Parser) parseBlock() (arena.Value, error) {
	return p.parseBlockBody()
}

func (p *Parser) parseBlockBody() (arena.Value, error) {
	if _, err := p.expect(TLBrace, "'{'"); err != nil {
		return arena.Nil, err
	}
	var stmts []arena.Value
	for p.cur.Kind != TRBrace && p.cur.Kind != TEOF {
		s, err := p.parseDeclOrStmt()
		if err != nil {
			return arena.Nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(TRBrace, "'}'"); err != nil {
		return arena.Nil, err
	}
	if len(stmts) == 0 {
		return arena.Nil, nil
	}
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	doSym, err := p.a.Intern("do")
	if err != nil {
		return arena.Nil, err
	}
	rest, err := p.a.List(stmts...)
	if err != nil {
		return arena.Nil, err
	}
	return p.a.Cons(doSym, rest)
}

func (p *Parser) parseExport() (arena.Value, error) {
	if err := p.advance(); err != nil { // consume 'export'
		return arena.Nil, err
	}
	decl, err := p.parseDeclOrStmt()
	if err != nil {
		return arena.Nil, err
	}
	exportSym, err := p.a.Intern("export")
	if err != nil {
		return arena.Nil, err
	}
	return p.a.List(exportSym, decl)
}

func (p *Parser) parseImport() (arena.Value, error) {
	if err := p.advance(); err != nil { // consume 'import'
		return arena.Nil, err
	}
	nameTok, err := p.expect(TIdent, "module name")
	if err != nil {
		return arena.Nil, err
	}
	if _, err := p.expect(TSemicolon, "';'"); err != nil {
		return arena.Nil, err
	}
	importSym, err := p.a.Intern("import")
	if err != nil {
		return arena.Nil, err
	}
	nameSym, err := p.a.Intern(nameTok.Text)
	if err != nil {
		return arena.Nil, err
	}
	return p.a.List(importSym, nameSym)
}

func (p *Parser) parseModule() (arena.Value, error) {
	start := p.cur
	if err := p.advance(); err != nil { // consume 'module'
		return arena.Nil, err
	}
	if _, err := p.expect(TLParen, "'('"); err != nil {
		return arena.Nil, err
	}
	nameTok, err := p.expect(TString, "module name string")
	if err != nil {
		return arena.Nil, err
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return arena.Nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return arena.Nil, err
	}
	end := p.cur
	moduleSym, err := p.a.Intern("module")
	if err != nil {
		return arena.Nil, err
	}
	nameVal, err := p.a.NewString(nameTok.Text)
	if err != nil {
		return arena.Nil, err
	}
	node, err := p.a.List(moduleSym, nameVal, body)
	if err != nil {
		return arena.Nil, err
	}
	return p.record(node, start, end), nil
}

func (p *Parser) parseIf() (arena.Value, error) {
	start := p.cur
	if err := p.advance(); err != nil { // consume 'if'
		return arena.Nil, err
	}
	if _, err := p.expect(TLParen, "'('"); err != nil {
		return arena.Nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return arena.Nil, err
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return arena.Nil, err
	}
	thenStmt, err := p.parseDeclOrStmt()
	if err != nil {
		return arena.Nil, err
	}
	var parts []arena.Value
	parts = append(parts, cond, thenStmt)
	if p.isKeyword("else") {
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		elseStmt, err := p.parseDeclOrStmt()
		if err != nil {
			return arena.Nil, err
		}
		parts = append(parts, elseStmt)
	}
	end := p.cur
	ifSym, err := p.a.Intern("if")
	if err != nil {
		return arena.Nil, err
	}
	rest, err := p.a.List(parts...)
	if err != nil {
		return arena.Nil, err
	}
	node, err := p.a.Cons(ifSym, rest)
	if err != nil {
		return arena.Nil, err
	}
	return p.record(node, start, end), nil
}

func (p *Parser) parseWhile() (arena.Value, error) {
	start := p.cur
	if err := p.advance(); err != nil { // consume 'while'
		return arena.Nil, err
	}
	if _, err := p.expect(TLParen, "'('"); err != nil {
		return arena.Nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return arena.Nil, err
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return arena.Nil, err
	}
	body, err := p.parseDeclOrStmt()
	if err != nil {
		return arena.Nil, err
	}
	end := p.cur
	whileSym, err := p.a.Intern("while")
	if err != nil {
		return arena.Nil, err
	}
	node, err := p.a.List(whileSym, cond, body)
	if err != nil {
		return arena.Nil, err
	}
	return p.record(node, start, end), nil
}

func (p *Parser) parseReturn() (arena.Value, error) {
	start := p.cur
	if err := p.advance(); err != nil { // consume 'return'
		return arena.Nil, err
	}
	returnSym, err := p.a.Intern("return")
	if err != nil {
		return arena.Nil, err
	}
	if p.cur.Kind == TSemicolon {
		end := p.cur
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		node, err := p.a.List(returnSym)
		if err != nil {
			return arena.Nil, err
		}
		return p.record(node, start, end), nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return arena.Nil, err
	}
	end := p.cur
	if _, err := p.expect(TSemicolon, "';'"); err != nil {
		return arena.Nil, err
	}
	node, err := p.a.List(returnSym, val)
	if err != nil {
		return arena.Nil, err
	}
	return p.record(node, start, end), nil
}

func (p *Parser) parseExprStatement() (arena.Value, error) {
	start := p.cur
	e, err := p.parseExpr()
	if err != nil {
		return arena.Nil, err
	}
	end := p.cur
	if _, err := p.expect(TSemicolon, "';'"); err != nil {
		return arena.Nil, err
	}
	return p.record(e, start, end), nil
}

// parseExpr is the Pratt parser's entry point, starting at the lowest
// precedence level (assignment).
func (p *Parser) parseExpr() (arena.Value, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (arena.Value, error) {
	start := p.cur
	lhs, err := p.parseOr()
	if err != nil {
		return arena.Nil, err
	}
	if p.cur.Kind == TAssign {
		if lhs.Kind() != arena.KSymbol {
			return arena.Nil, errs.New(errs.SyntaxError, "assignment target must be an identifier at line %d col %d", p.cur.Line, p.cur.Col)
		}
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		rhs, err := p.parseAssignment()
		if err != nil {
			return arena.Nil, err
		}
		end := p.cur
		setSym, err := p.a.Intern("=")
		if err != nil {
			return arena.Nil, err
		}
		node, err := p.a.List(setSym, lhs, rhs)
		if err != nil {
			return arena.Nil, err
		}
		return p.record(node, start, end), nil
	}
	return lhs, nil
}

func (p *Parser) parseOr() (arena.Value, error) {
	left, err := p.parseAnd()
	if err != nil {
		return arena.Nil, err
	}
	for p.isKeyword("or") {
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return arena.Nil, err
		}
		left, err = p.mkBinary("or", left, right)
		if err != nil {
			return arena.Nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseAnd() (arena.Value, error) {
	left, err := p.parseEquality()
	if err != nil {
		return arena.Nil, err
	}
	for p.isKeyword("and") {
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return arena.Nil, err
		}
		left, err = p.mkBinary("and", left, right)
		if err != nil {
			return arena.Nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseEquality() (arena.Value, error) {
	left, err := p.parseComparison()
	if err != nil {
		return arena.Nil, err
	}
	for p.cur.Kind == TEq || p.cur.Kind == TNeq {
		isEq := p.cur.Kind == TEq
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return arena.Nil, err
		}
		if isEq {
			left, err = p.mkBinary("is", left, right)
		} else {
			var isNode arena.Value
			isNode, err = p.mkBinary("is", left, right)
			if err == nil {
				left, err = p.mkUnary("not", isNode)
			}
		}
		if err != nil {
			return arena.Nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseComparison() (arena.Value, error) {
	left, err := p.parseTerm()
	if err != nil {
		return arena.Nil, err
	}
	for p.cur.Kind == TLt || p.cur.Kind == TLe || p.cur.Kind == TGt || p.cur.Kind == TGe {
		kind := p.cur.Kind
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return arena.Nil, err
		}
		switch kind {
		case TLt:
			left, err = p.mkBinary("<", left, right)
		case TLe:
			left, err = p.mkBinary("<=", left, right)
		case TGt:
			left, err = p.mkBinary("<", right, left)
		case TGe:
			left, err = p.mkBinary("<=", right, left)
		}
		if err != nil {
			return arena.Nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseTerm() (arena.Value, error) {
	left, err := p.parseFactor()
	if err != nil {
		return arena.Nil, err
	}
	for p.cur.Kind == TPlus || p.cur.Kind == TMinus {
		op := "+"
		if p.cur.Kind == TMinus {
			op = "-"
		}
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return arena.Nil, err
		}
		left, err = p.mkBinary(op, left, right)
		if err != nil {
			return arena.Nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseFactor() (arena.Value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return arena.Nil, err
	}
	for p.cur.Kind == TStar || p.cur.Kind == TSlash {
		op := "*"
		if p.cur.Kind == TSlash {
			op = "/"
		}
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return arena.Nil, err
		}
		left, err = p.mkBinary(op, left, right)
		if err != nil {
			return arena.Nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (arena.Value, error) {
	if p.cur.Kind == TMinus {
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return arena.Nil, err
		}
		return p.mkUnary("-", operand)
	}
	if p.cur.Kind == TBang {
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return arena.Nil, err
		}
		return p.mkUnary("not", operand)
	}
	return p.parseCall()
}

// parseCall parses a primary expression followed by any chain of
// call `(...)` or member `.name` postfix operators.
func (p *Parser) parseCall() (arena.Value, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return arena.Nil, err
	}
	for {
		switch p.cur.Kind {
		case TLParen:
			if err := p.advance(); err != nil {
				return arena.Nil, err
			}
			var args []arena.Value
			for p.cur.Kind != TRParen {
				a, err := p.parseExpr()
				if err != nil {
					return arena.Nil, err
				}
				args = append(args, a)
				if p.cur.Kind == TComma {
					if err := p.advance(); err != nil {
						return arena.Nil, err
					}
				}
			}
			if _, err := p.expect(TRParen, "')'"); err != nil {
				return arena.Nil, err
			}
			argList, err := p.a.List(args...)
			if err != nil {
				return arena.Nil, err
			}
			expr, err = p.a.Cons(expr, argList)
			if err != nil {
				return arena.Nil, err
			}
		case TDot:
			if err := p.advance(); err != nil {
				return arena.Nil, err
			}
			fieldTok, err := p.expect(TIdent, "field name")
			if err != nil {
				return arena.Nil, err
			}
			fieldSym, err := p.a.Intern(fieldTok.Text)
			if err != nil {
				return arena.Nil, err
			}
			expr, err = p.mkBinary("get", expr, fieldSym)
			if err != nil {
				return arena.Nil, err
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (arena.Value, error) {
	tok := p.cur
	switch {
	case tok.Kind == TNumber:
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return p.parseNumberLiteral(tok)
	case tok.Kind == TString:
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return p.a.NewString(tok.Text)
	case tok.Kind == TKeyword && tok.Text == "true":
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return arena.True, nil
	case tok.Kind == TKeyword && tok.Text == "false":
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return arena.False, nil
	case tok.Kind == TKeyword && tok.Text == "nil":
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return arena.Nil, nil
	case tok.Kind == TKeyword && tok.Text == "fn":
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return p.parseFnTail(tok)
	case tok.Kind == TIdent:
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		return p.a.Intern(tok.Text)
	case tok.Kind == TLParen:
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return arena.Nil, err
		}
		if _, err := p.expect(TRParen, "')'"); err != nil {
			return arena.Nil, err
		}
		return e, nil
	case tok.Kind == TLBracket:
		if err := p.advance(); err != nil {
			return arena.Nil, err
		}
		var elems []arena.Value
		for p.cur.Kind != TRBracket {
			e, err := p.parseExpr()
			if err != nil {
				return arena.Nil, err
			}
			elems = append(elems, e)
			if p.cur.Kind == TComma {
				if err := p.advance(); err != nil {
					return arena.Nil, err
				}
			}
		}
		if _, err := p.expect(TRBracket, "']'"); err != nil {
			return arena.Nil, err
		}
		listSym, err := p.a.Intern("list")
		if err != nil {
			return arena.Nil, err
		}
		rest, err := p.a.List(elems...)
		if err != nil {
			return arena.Nil, err
		}
		return p.a.Cons(listSym, rest)
	}
	return arena.Nil, errs.New(errs.SyntaxError, "unexpected token %q at line %d col %d", tok.Text, tok.Line, tok.Col)
}

func (p *Parser) parseNumberLiteral(tok Token) (arena.Value, error) {
	if len(tok.Text) > 2 && tok.Text[0] == '0' && (tok.Text[1] == 'x' || tok.Text[1] == 'X') {
		n, err := strconv.ParseInt(tok.Text[2:], 16, 64)
		if err != nil {
			return arena.Nil, errs.New(errs.SyntaxError, "invalid hex literal %q at line %d col %d", tok.Text, tok.Line, tok.Col)
		}
		return p.a.MakeNumber(float64(n))
	}
	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return arena.Nil, errs.New(errs.SyntaxError, "invalid number literal %q at line %d col %d", tok.Text, tok.Line, tok.Col)
	}
	return p.a.MakeNumber(f)
}

func (p *Parser) mkBinary(opName string, left, right arena.Value) (arena.Value, error) {
	opSym, err := p.a.Intern(opName)
	if err != nil {
		return arena.Nil, err
	}
	return p.a.List(opSym, left, right)
}

func (p *Parser) mkUnary(opName string, operand arena.Value) (arena.Value, error) {
	opSym, err := p.a.Intern(opName)
	if err != nil {
		return arena.Nil, err
	}
	return p.a.List(opSym, operand)
}
