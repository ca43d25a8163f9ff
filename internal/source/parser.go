package source

import (
	"fmt"
	"strings"
)

// Parse tokenizes and parses a document. Every statement, including
// method bodies, is checked against the grammar; nothing is evaluated.
// A malformed document yields a *SyntaxError.
func Parse(src string) (f *File, err error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, lines: newLineIndex(src)}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()
	stmts := p.parseStmts(EOF)
	return &File{Src: src, Doc: docstring(stmts), Stmts: stmts, lines: p.lines}, nil
}

type bailout struct{ err *SyntaxError }

type parser struct {
	src     string
	toks    []Token
	pos     int
	prevEnd int
	lines   lineIndex
}

func (p *parser) tok() Token { return p.toks[p.pos] }

func (p *parser) peek(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind == EOF {
		return t
	}
	p.pos++
	if t.Kind == Name || t.Kind == Number || t.Kind == String || t.Kind == Op {
		p.prevEnd = t.End
	}
	return t
}

func (p *parser) node(start int) node { return node{Span{Start: start, End: p.prevEnd}} }

func (p *parser) atOp(text string) bool { return p.tok().is(Op, text) }

func (p *parser) atKw(text string) bool { return p.tok().is(Name, text) }

func (p *parser) errorf(off int, format string, args ...any) {
	line, col := p.lines.position(off)
	panic(bailout{&SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}})
}

func (p *parser) syntaxError() {
	t := p.tok()
	switch t.Kind {
	case Indent:
		p.errorf(t.Start, "unexpected indent")
	case EOF:
		p.errorf(t.Start, "unexpected EOF while parsing")
	}
	p.errorf(t.Start, "invalid syntax")
}

func (p *parser) expectOp(text string) Token {
	if !p.atOp(text) {
		p.syntaxError()
	}
	return p.next()
}

func (p *parser) expectKw(text string) Token {
	if !p.atKw(text) {
		p.syntaxError()
	}
	return p.next()
}

func (p *parser) expectKind(kind TokenKind) Token {
	if p.tok().Kind != kind {
		p.syntaxError()
	}
	return p.next()
}

func (p *parser) expectName() Token {
	t := p.tok()
	if t.Kind != Name || IsKeyword(t.Text) {
		p.syntaxError()
	}
	return p.next()
}

// Statements

func (p *parser) parseStmts(end TokenKind) []Stmt {
	var out []Stmt
	for p.tok().Kind != end && p.tok().Kind != EOF {
		out = append(out, p.parseStmt()...)
	}
	p.expectKind(end)
	return out
}

func (p *parser) parseStmt() []Stmt {
	t := p.tok()
	switch {
	case t.Kind == Indent:
		p.errorf(t.Start, "unexpected indent")
	case p.atOp("@"):
		return []Stmt{p.parseDecorated()}
	case p.atKw("class"):
		return []Stmt{p.parseClass(nil)}
	case p.atKw("def"):
		return []Stmt{p.parseFunc(nil)}
	case p.atKw("async"):
		if p.peek(1).is(Name, "def") {
			return []Stmt{p.parseFunc(nil)}
		}
		return []Stmt{p.parseCompound()}
	case p.atKw("if"), p.atKw("while"), p.atKw("for"), p.atKw("with"), p.atKw("try"):
		return []Stmt{p.parseCompound()}
	case t.Kind == Name && (t.Text == "match" || t.Text == "case") && p.endsWithColon():
		return []Stmt{p.skipSoftCompound()}
	}
	return p.parseSimpleStmts()
}

// endsWithColon reports whether the current logical line ends in ':'.
func (p *parser) endsWithColon() bool {
	for i := p.pos; i < len(p.toks); i++ {
		if p.toks[i].Kind == Newline || p.toks[i].Kind == EOF {
			return i > p.pos && p.toks[i-1].is(Op, ":")
		}
	}
	return false
}

// skipSoftCompound consumes a match statement structurally.
func (p *parser) skipSoftCompound() Stmt {
	start := p.tok().Start
	kw := p.next().Text
	for p.tok().Kind != Newline {
		p.next()
	}
	p.skipBlock()
	return &OpaqueStmt{node: p.node(start), Keyword: kw}
}

func (p *parser) skipBlock() {
	p.expectKind(Newline)
	if p.tok().Kind != Indent {
		p.errorf(p.tok().Start, "expected an indented block")
	}
	p.next()
	for depth := 1; depth > 0; {
		switch p.next().Kind {
		case Indent:
			depth++
		case Dedent:
			depth--
		case EOF:
			p.syntaxError()
		}
	}
}

func (p *parser) parseSimpleStmts() []Stmt {
	var out []Stmt
	for {
		out = append(out, p.parseSmallStmt())
		if !p.atOp(";") {
			break
		}
		p.next()
		if p.tok().Kind == Newline {
			break
		}
	}
	p.expectKind(Newline)
	return out
}

// parseSuite parses the block following a ':' and returns its statements
// and span.
func (p *parser) parseSuite() ([]Stmt, Span) {
	start := p.tok().Start
	if p.tok().Kind != Newline {
		stmts := p.parseSimpleStmts()
		return stmts, Span{Start: start, End: p.prevEnd}
	}
	p.next()
	if p.tok().Kind != Indent {
		p.errorf(p.tok().Start, "expected an indented block")
	}
	start = p.next().End
	stmts := p.parseStmts(Dedent)
	return stmts, Span{Start: start, End: p.prevEnd}
}

func (p *parser) parseDecorated() Stmt {
	var decorators []Expr
	for p.atOp("@") {
		p.next()
		decorators = append(decorators, p.parseNamedExpr())
		p.expectKind(Newline)
	}
	switch {
	case p.atKw("class"):
		return p.parseClass(decorators)
	case p.atKw("def"), p.atKw("async") && p.peek(1).is(Name, "def"):
		return p.parseFunc(decorators)
	}
	p.syntaxError()
	return nil
}

func (p *parser) parseClass(decorators []Expr) *ClassDef {
	start := p.expectKw("class").Start
	c := &ClassDef{Name: p.expectName().Text, Decorators: decorators}
	if p.atOp("(") {
		p.next()
		c.Bases = p.parseArgs(")")
		p.expectOp(")")
	}
	p.expectOp(":")
	c.Body, _ = p.parseSuite()
	c.Doc = docstring(c.Body)
	c.node = p.node(start)
	return c
}

func (p *parser) parseFunc(decorators []Expr) *FuncDef {
	start := p.tok().Start
	fn := &FuncDef{Decorators: decorators}
	if p.atKw("async") {
		p.next()
		fn.Async = true
	}
	p.expectKw("def")
	fn.Name = p.expectName().Text
	p.expectOp("(")
	fn.Params = p.parseParams(")")
	p.expectOp(")")
	if p.atOp("->") {
		p.next()
		fn.Returns = p.parseTest()
	}
	p.expectOp(":")
	_, fn.Body = p.parseSuite()
	fn.node = p.node(start)
	return fn
}

// parseParams parses a parameter list up to, not including, closer.
// Annotations are only permitted in def signatures.
func (p *parser) parseParams(closer string) []*Param {
	var params []*Param
	annotated := closer == ")"
	for !p.atOp(closer) {
		start := p.tok().Start
		switch {
		case p.atOp("/"):
			p.next()
		case p.atOp("*") || p.atOp("**"):
			kind := ParamVarArgs
			if p.next().Text == "**" {
				kind = ParamKwArgs
			}
			if kind == ParamKwArgs || p.tok().Kind == Name {
				prm := &Param{Name: p.expectName().Text, Kind: kind}
				if annotated && p.atOp(":") {
					p.next()
					prm.Annotation = p.parseTest()
				}
				prm.node = p.node(start)
				params = append(params, prm)
			}
		default:
			prm := &Param{Name: p.expectName().Text}
			if annotated && p.atOp(":") {
				p.next()
				prm.Annotation = p.parseTest()
			}
			if p.atOp("=") {
				p.next()
				prm.Default = p.parseTest()
			}
			prm.node = p.node(start)
			params = append(params, prm)
		}
		if !p.atOp(",") {
			break
		}
		p.next()
	}
	return params
}

func (p *parser) parseCompound() Stmt {
	start := p.tok().Start
	kw := p.next().Text
	if kw == "async" {
		kw = p.next().Text
		if kw != "for" && kw != "with" {
			p.errorf(start, "invalid syntax")
		}
	}
	switch kw {
	case "if", "while":
		p.parseNamedExpr()
		p.expectOp(":")
		p.parseSuite()
		for kw == "if" && p.atKw("elif") {
			p.next()
			p.parseNamedExpr()
			p.expectOp(":")
			p.parseSuite()
		}
		p.parseElse()
	case "for":
		p.parseTargets()
		p.expectKw("in")
		p.parseStarExprs()
		p.expectOp(":")
		p.parseSuite()
		p.parseElse()
	case "with":
		p.parseWithItems()
		p.expectOp(":")
		p.parseSuite()
	case "try":
		p.expectOp(":")
		p.parseSuite()
		handlers := 0
		for p.atKw("except") {
			p.next()
			if p.atOp("*") {
				p.next()
			}
			if !p.atOp(":") {
				p.parseTest()
				if p.atKw("as") {
					p.next()
					p.expectName()
				}
			}
			p.expectOp(":")
			p.parseSuite()
			handlers++
		}
		if handlers > 0 {
			p.parseElse()
		}
		if p.atKw("finally") {
			p.next()
			p.expectOp(":")
			p.parseSuite()
		} else if handlers == 0 {
			p.syntaxError()
		}
	}
	return &OpaqueStmt{node: p.node(start), Keyword: kw}
}

func (p *parser) parseElse() {
	if p.atKw("else") {
		p.next()
		p.expectOp(":")
		p.parseSuite()
	}
}

// parseTargets parses a for-loop target list. Targets stop short of
// comparisons so that "in" is left for the loop header.
func (p *parser) parseTargets() {
	for {
		if p.atOp("*") {
			p.next()
		}
		p.parseBinary(1)
		if !p.atOp(",") || p.peek(1).is(Name, "in") {
			if p.atOp(",") {
				p.next()
			}
			return
		}
		p.next()
	}
}

func (p *parser) parseWithItems() {
	if p.atOp("(") && p.closesBeforeColon() {
		p.next()
		for !p.atOp(")") {
			p.parseWithItem()
			if !p.atOp(",") {
				break
			}
			p.next()
		}
		p.expectOp(")")
		return
	}
	for {
		p.parseWithItem()
		if !p.atOp(",") {
			return
		}
		p.next()
	}
}

func (p *parser) parseWithItem() {
	p.parseTest()
	if p.atKw("as") {
		p.next()
		p.parseBinary(1)
	}
}

// closesBeforeColon reports whether the bracket at the current token is
// closed immediately before the ':' ending a with-statement header.
func (p *parser) closesBeforeColon() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind != Op {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].is(Op, ":")
			}
		}
	}
	return false
}

func (p *parser) parseSmallStmt() Stmt {
	start := p.tok().Start
	t := p.tok()
	if t.Kind == Name {
		switch t.Text {
		case "pass":
			p.next()
			return &PassStmt{node: p.node(start)}
		case "import", "from":
			return p.parseImport()
		case "break", "continue":
			p.next()
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		case "return":
			p.next()
			if p.canStartExpr() {
				p.parseStarExprs()
			}
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		case "del":
			p.next()
			p.parseStarExprs()
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		case "global", "nonlocal":
			p.next()
			p.expectName()
			for p.atOp(",") {
				p.next()
				p.expectName()
			}
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		case "assert":
			p.next()
			p.parseTest()
			if p.atOp(",") {
				p.next()
				p.parseTest()
			}
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		case "raise":
			p.next()
			if p.canStartExpr() {
				p.parseTest()
				if p.atKw("from") {
					p.next()
					p.parseTest()
				}
			}
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		case "yield":
			p.parseYield()
			return &OpaqueStmt{node: p.node(start), Keyword: t.Text}
		}
	}

	x := p.parseStarExprs()
	switch tt := p.tok(); {
	case p.atOp(":"):
		if !annotatable(x) {
			p.errorf(x.Span().Start, "illegal target for annotation")
		}
		p.next()
		a := &AssignStmt{Targets: []Expr{x}, Annotation: p.parseTest()}
		if p.atOp("=") {
			p.next()
			a.Value = p.parseAssignValue()
		}
		a.node = p.node(start)
		return a
	case p.atOp("="):
		exprs := []Expr{x}
		for p.atOp("=") {
			p.next()
			exprs = append(exprs, p.parseAssignValue())
		}
		targets := exprs[:len(exprs)-1]
		for _, target := range targets {
			if !assignable(target) {
				p.errorf(target.Span().Start, "cannot assign to %s", describe(target))
			}
		}
		return &AssignStmt{node: p.node(start), Targets: targets, Value: exprs[len(exprs)-1]}
	case tt.Kind == Op && isAugmented(tt.Text):
		if !assignable(x) {
			p.errorf(x.Span().Start, "'%s' is an illegal expression for augmented assignment", describe(x))
		}
		p.next()
		p.parseAssignValue()
		return &OpaqueStmt{node: p.node(start)}
	}
	return &ExprStmt{node: p.node(start), X: x}
}

func (p *parser) parseAssignValue() Expr {
	if p.atKw("yield") {
		return p.parseYield()
	}
	return p.parseStarExprs()
}

func (p *parser) parseYield() Expr {
	start := p.expectKw("yield").Start
	var x Expr
	if p.atKw("from") {
		p.next()
		x = p.parseTest()
	} else if p.canStartExpr() {
		x = p.parseStarExprs()
	}
	return &UnaryExpr{node: p.node(start), Op: "yield", X: x}
}

func (p *parser) parseImport() Stmt {
	start := p.tok().Start
	s := &ImportStmt{}
	if p.next().Text == "import" {
		for {
			name := p.parseDotted()
			bound := strings.SplitN(name, ".", 2)[0]
			if p.atKw("as") {
				p.next()
				bound = p.expectName().Text
			}
			s.Module = name
			s.Names = append(s.Names, bound)
			if !p.atOp(",") {
				break
			}
			p.next()
		}
		s.node = p.node(start)
		return s
	}

	var mod strings.Builder
	for p.atOp(".") || p.atOp("...") {
		mod.WriteString(p.next().Text)
	}
	if mod.Len() == 0 || !p.atKw("import") {
		mod.WriteString(p.parseDotted())
	}
	s.Module = mod.String()
	p.expectKw("import")
	if p.atOp("*") {
		p.next()
		s.node = p.node(start)
		return s
	}
	paren := p.atOp("(")
	if paren {
		p.next()
	}
	for {
		if paren && p.atOp(")") {
			break
		}
		bound := p.expectName().Text
		if p.atKw("as") {
			p.next()
			bound = p.expectName().Text
		}
		s.Names = append(s.Names, bound)
		if !p.atOp(",") {
			break
		}
		p.next()
	}
	if paren {
		p.expectOp(")")
	}
	s.node = p.node(start)
	return s
}

func (p *parser) parseDotted() string {
	parts := []string{p.expectName().Text}
	for p.atOp(".") {
		p.next()
		parts = append(parts, p.expectName().Text)
	}
	return strings.Join(parts, ".")
}

// Expressions

var augmented = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true, "%=": true,
	"**=": true, ">>=": true, "<<=": true, "&=": true, "|=": true, "^=": true, "@=": true,
}

func isAugmented(op string) bool { return augmented[op] }

var binaryPrec = map[string]int{
	"|": 1, "^": 2, "&": 3, "<<": 4, ">>": 4,
	"+": 5, "-": 5, "*": 6, "/": 6, "//": 6, "%": 6, "@": 6,
}

var compareOps = map[string]bool{"<": true, ">": true, "==": true, ">=": true, "<=": true, "!=": true}

func (p *parser) canStartExpr() bool {
	t := p.tok()
	switch t.Kind {
	case Number, String:
		return true
	case Name:
		switch t.Text {
		case "True", "False", "None", "not", "lambda", "await":
			return true
		}
		return !IsKeyword(t.Text)
	case Op:
		switch t.Text {
		case "(", "[", "{", "-", "+", "~", "*", "...":
			return true
		}
	}
	return false
}

// parseStarExprs parses a comma-separated expression list; more than one
// element, or a trailing comma, makes a tuple.
func (p *parser) parseStarExprs() Expr {
	start := p.tok().Start
	first := p.parseStarOrNamed()
	if !p.atOp(",") {
		return first
	}
	elts := []Expr{first}
	for p.atOp(",") {
		p.next()
		if !p.canStartExpr() {
			break
		}
		elts = append(elts, p.parseStarOrNamed())
	}
	return &TupleExpr{node: p.node(start), Elts: elts}
}

func (p *parser) parseStarOrNamed() Expr {
	if p.atOp("*") {
		start := p.next().Start
		x := p.parseBinary(1)
		return &StarExpr{node: p.node(start), X: x}
	}
	return p.parseNamedExpr()
}

func (p *parser) parseNamedExpr() Expr {
	start := p.tok().Start
	x := p.parseTest()
	if p.atOp(":=") {
		if _, ok := x.(*Ident); !ok {
			p.errorf(start, "cannot use assignment expressions with %s", describe(x))
		}
		p.next()
		y := p.parseTest()
		return &BinaryExpr{node: p.node(start), Op: ":=", X: x, Y: y}
	}
	return x
}

func (p *parser) parseTest() Expr {
	if p.atKw("lambda") {
		return p.parseLambda()
	}
	start := p.tok().Start
	x := p.parseOr()
	if p.atKw("if") {
		p.next()
		test := p.parseOr()
		p.expectKw("else")
		els := p.parseTest()
		return &CondExpr{node: p.node(start), Body: x, Test: test, Else: els}
	}
	return x
}

func (p *parser) parseLambda() Expr {
	start := p.expectKw("lambda").Start
	p.parseParams(":")
	p.expectOp(":")
	body := p.parseTest()
	return &LambdaExpr{node: p.node(start), Body: body}
}

func (p *parser) parseOr() Expr {
	start := p.tok().Start
	x := p.parseAnd()
	for p.atKw("or") {
		p.next()
		y := p.parseAnd()
		x = &BinaryExpr{node: p.node(start), Op: "or", X: x, Y: y}
	}
	return x
}

func (p *parser) parseAnd() Expr {
	start := p.tok().Start
	x := p.parseNot()
	for p.atKw("and") {
		p.next()
		y := p.parseNot()
		x = &BinaryExpr{node: p.node(start), Op: "and", X: x, Y: y}
	}
	return x
}

func (p *parser) parseNot() Expr {
	if p.atKw("not") {
		start := p.next().Start
		x := p.parseNot()
		return &UnaryExpr{node: p.node(start), Op: "not", X: x}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() Expr {
	start := p.tok().Start
	x := p.parseBinary(1)
	var ops []string
	operands := []Expr{x}
	for {
		t := p.tok()
		var op string
		switch {
		case t.Kind == Op && compareOps[t.Text]:
			op = p.next().Text
		case p.atKw("in"):
			op = p.next().Text
		case p.atKw("not") && p.peek(1).is(Name, "in"):
			p.next()
			p.next()
			op = "not in"
		case p.atKw("is"):
			p.next()
			op = "is"
			if p.atKw("not") {
				p.next()
				op = "is not"
			}
		}
		if op == "" {
			break
		}
		ops = append(ops, op)
		operands = append(operands, p.parseBinary(1))
	}
	if len(ops) == 0 {
		return x
	}
	return &CompareExpr{node: p.node(start), Ops: ops, Operands: operands}
}

func (p *parser) parseBinary(minPrec int) Expr {
	start := p.tok().Start
	x := p.parseFactor()
	for {
		t := p.tok()
		prec, ok := binaryPrec[t.Text]
		if t.Kind != Op || !ok || prec < minPrec {
			return x
		}
		p.next()
		y := p.parseBinary(prec + 1)
		x = &BinaryExpr{node: p.node(start), Op: t.Text, X: x, Y: y}
	}
}

func (p *parser) parseFactor() Expr {
	if t := p.tok(); t.Kind == Op && (t.Text == "-" || t.Text == "+" || t.Text == "~") {
		p.next()
		x := p.parseFactor()
		return &UnaryExpr{node: p.node(t.Start), Op: t.Text, X: x}
	}
	return p.parsePower()
}

func (p *parser) parsePower() Expr {
	start := p.tok().Start
	var x Expr
	if p.atKw("await") {
		p.next()
		operand := p.parsePrimary()
		x = &UnaryExpr{node: p.node(start), Op: "await", X: operand}
	} else {
		x = p.parsePrimary()
	}
	if p.atOp("**") {
		p.next()
		y := p.parseFactor()
		return &BinaryExpr{node: p.node(start), Op: "**", X: x, Y: y}
	}
	return x
}

func (p *parser) parsePrimary() Expr {
	start := p.tok().Start
	x := p.parseAtom()
	for {
		switch {
		case p.atOp("."):
			p.next()
			name := p.expectName().Text
			x = &AttrExpr{node: p.node(start), X: x, Name: name}
		case p.atOp("("):
			p.next()
			args := p.parseArgs(")")
			p.expectOp(")")
			x = &CallExpr{node: p.node(start), Fun: x, Args: args}
		case p.atOp("["):
			p.skipBracketed()
			x = &SubscriptExpr{node: p.node(start), X: x}
		default:
			return x
		}
	}
}

func (p *parser) parseArgs(closer string) []*Arg {
	var args []*Arg
	for !p.atOp(closer) {
		start := p.tok().Start
		arg := &Arg{}
		switch t := p.tok(); {
		case p.atOp("*"), p.atOp("**"):
			arg.Star = p.next().Text
			arg.Value = p.parseTest()
		case t.Kind == Name && !IsKeyword(t.Text) && p.peek(1).is(Op, "="):
			arg.Name = p.next().Text
			p.next()
			arg.Value = p.parseTest()
		default:
			arg.Value = p.parseNamedExpr()
			if p.atComprehension() {
				p.skipUntil(closer)
				arg.Value = &CompExpr{node: p.node(start), Kind: GenExpr}
			}
		}
		arg.node = p.node(start)
		args = append(args, arg)
		if !p.atOp(",") {
			break
		}
		p.next()
	}
	return args
}

func (p *parser) atComprehension() bool {
	return p.atKw("for") || (p.atKw("async") && p.peek(1).is(Name, "for"))
}

// skipUntil consumes tokens up to, not including, the closer at the
// current bracket depth.
func (p *parser) skipUntil(closer string) {
	depth := 0
	for {
		t := p.tok()
		switch {
		case t.Kind == EOF:
			p.syntaxError()
		case t.Kind == Op && depth == 0 && t.Text == closer:
			return
		case t.Kind == Op && (t.Text == "(" || t.Text == "[" || t.Text == "{"):
			depth++
		case t.Kind == Op && (t.Text == ")" || t.Text == "]" || t.Text == "}"):
			depth--
		}
		p.next()
	}
}

// skipBracketed consumes an opening bracket and everything up to and
// including its closer.
func (p *parser) skipBracketed() {
	open := p.next().Text
	closer := map[string]string{"(": ")", "[": "]", "{": "}"}[open]
	if p.atOp(closer) && open == "[" {
		p.syntaxError()
	}
	p.skipUntil(closer)
	p.next()
}

func (p *parser) parseAtom() Expr {
	t := p.tok()
	switch t.Kind {
	case Name:
		if IsKeyword(t.Text) && t.Text != "True" && t.Text != "False" && t.Text != "None" {
			p.syntaxError()
		}
		p.next()
		return &Ident{node: p.node(t.Start), Name: t.Text}
	case Number:
		p.next()
		return &BasicLit{node: p.node(t.Start), Kind: numberKind(t.Text), Text: t.Text}
	case String:
		return p.parseStrings()
	case Op:
		switch t.Text {
		case "...":
			p.next()
			return &Ellipsis{node: p.node(t.Start)}
		case "(":
			return p.parseParen()
		case "[":
			return p.parseList()
		case "{":
			return p.parseBrace()
		}
	}
	p.syntaxError()
	return nil
}

func numberKind(text string) LitKind {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, "j"):
		return ImagLit
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "0o"), strings.HasPrefix(lower, "0b"):
		return IntLit
	case strings.ContainsAny(lower, ".e"):
		return FloatLit
	}
	return IntLit
}

func (p *parser) parseStrings() Expr {
	start := p.tok().Start
	lit := &StringLit{}
	for p.tok().Kind == String {
		t := p.next()
		if len(lit.Parts) > 0 && isBytes(lit.Parts[0]) != isBytes(t) {
			p.errorf(t.Start, "cannot mix bytes and nonbytes literals")
		}
		lit.Parts = append(lit.Parts, t)
	}
	lit.node = p.node(start)
	return lit
}

func (p *parser) parseParen() Expr {
	start := p.expectOp("(").Start
	if p.atOp(")") {
		p.next()
		return &TupleExpr{node: p.node(start)}
	}
	if p.atKw("yield") {
		x := p.parseYield()
		p.expectOp(")")
		return &ParenExpr{node: p.node(start), X: x}
	}
	first := p.parseStarOrNamed()
	if p.atComprehension() {
		p.skipUntil(")")
		p.next()
		return &CompExpr{node: p.node(start), Kind: GenExpr}
	}
	if p.atOp(")") {
		p.next()
		return &ParenExpr{node: p.node(start), X: first}
	}
	elts := []Expr{first}
	for p.atOp(",") {
		p.next()
		if p.atOp(")") {
			break
		}
		elts = append(elts, p.parseStarOrNamed())
	}
	p.expectOp(")")
	return &TupleExpr{node: p.node(start), Elts: elts}
}

func (p *parser) parseList() Expr {
	start := p.expectOp("[").Start
	var elts []Expr
	if !p.atOp("]") {
		elts = append(elts, p.parseStarOrNamed())
		if p.atComprehension() {
			p.skipUntil("]")
			p.next()
			return &CompExpr{node: p.node(start), Kind: ListComp}
		}
		for p.atOp(",") {
			p.next()
			if p.atOp("]") {
				break
			}
			elts = append(elts, p.parseStarOrNamed())
		}
	}
	p.expectOp("]")
	return &ListExpr{node: p.node(start), Elts: elts}
}

func (p *parser) parseBrace() Expr {
	start := p.expectOp("{").Start
	if p.atOp("}") {
		p.next()
		return &DictExpr{node: p.node(start)}
	}

	var first *DictItem
	if p.atOp("**") {
		p.next()
		first = &DictItem{Value: p.parseBinary(1)}
	} else {
		x := p.parseStarOrNamed()
		if !p.atOp(":") {
			return p.parseSetRest(start, x)
		}
		p.next()
		first = &DictItem{Key: x, Value: p.parseTest()}
		if p.atComprehension() {
			p.skipUntil("}")
			p.next()
			return &CompExpr{node: p.node(start), Kind: DictComp}
		}
	}

	entries := []*DictItem{first}
	for p.atOp(",") {
		p.next()
		if p.atOp("}") {
			break
		}
		if p.atOp("**") {
			p.next()
			entries = append(entries, &DictItem{Value: p.parseBinary(1)})
			continue
		}
		k := p.parseTest()
		p.expectOp(":")
		entries = append(entries, &DictItem{Key: k, Value: p.parseTest()})
	}
	p.expectOp("}")
	return &DictExpr{node: p.node(start), Entries: entries}
}

func (p *parser) parseSetRest(start int, first Expr) Expr {
	if p.atComprehension() {
		p.skipUntil("}")
		p.next()
		return &CompExpr{node: p.node(start), Kind: SetComp}
	}
	elts := []Expr{first}
	for p.atOp(",") {
		p.next()
		if p.atOp("}") {
			break
		}
		elts = append(elts, p.parseStarOrNamed())
	}
	p.expectOp("}")
	return &SetExpr{node: p.node(start), Elts: elts}
}

// Helpers

func docstring(stmts []Stmt) *StringLit {
	if len(stmts) == 0 {
		return nil
	}
	es, ok := stmts[0].(*ExprStmt)
	if !ok {
		return nil
	}
	lit, ok := es.X.(*StringLit)
	if !ok || isBytes(lit.Parts[0]) || lit.IsFormatted() {
		return nil
	}
	return lit
}

func annotatable(x Expr) bool {
	switch e := x.(type) {
	case *Ident, *AttrExpr, *SubscriptExpr:
		return true
	case *ParenExpr:
		return annotatable(e.X)
	}
	return false
}

func assignable(x Expr) bool {
	switch e := x.(type) {
	case *Ident:
		return e.Name != "True" && e.Name != "False" && e.Name != "None"
	case *AttrExpr, *SubscriptExpr:
		return true
	case *StarExpr:
		return assignable(e.X)
	case *ParenExpr:
		return assignable(e.X)
	case *TupleExpr:
		for _, elt := range e.Elts {
			if !assignable(elt) {
				return false
			}
		}
		return true
	case *ListExpr:
		for _, elt := range e.Elts {
			if !assignable(elt) {
				return false
			}
		}
		return true
	}
	return false
}

func describe(x Expr) string {
	switch e := x.(type) {
	case *Ident:
		if e.Name == "None" || e.Name == "True" || e.Name == "False" {
			return e.Name
		}
		return "name"
	case *BasicLit, *StringLit, *Ellipsis:
		return "literal"
	case *CallExpr:
		return "function call"
	case *CompareExpr:
		return "comparison"
	case *BinaryExpr, *UnaryExpr:
		return "expression"
	case *DictExpr:
		return "dict literal"
	case *SetExpr:
		return "set display"
	case *CompExpr:
		return "comprehension"
	case *LambdaExpr:
		return "lambda"
	case *CondExpr:
		return "conditional expression"
	case *TupleExpr:
		return "tuple"
	case *ListExpr:
		return "list"
	}
	return "expression"
}
