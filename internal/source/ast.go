package source

// Span is a half-open byte range [Start, End) of the source.
type Span struct {
	Start int
	End   int
}

// Node is implemented by every syntax tree node.
type Node interface {
	Span() Span
}

type node struct{ span Span }

func (n node) Span() Span { return n.span }

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

type (
	// ImportStmt is an import or from-import. Names lists the bound names;
	// a star import binds nothing.
	ImportStmt struct {
		node
		Module string
		Names  []string
	}

	// AssignStmt is a plain or annotated assignment. Value is nil for a
	// bare annotation. Chained assignments list every target.
	AssignStmt struct {
		node
		Targets    []Expr
		Annotation Expr
		Value      Expr
	}

	// FuncDef is a function or method definition. The body is checked for
	// structure but not parsed.
	FuncDef struct {
		node
		Name       string
		Async      bool
		Decorators []Expr
		Params     []*Param
		Returns    Expr
		Body       Span
	}

	// ClassDef is a class definition.
	ClassDef struct {
		node
		Name       string
		Decorators []Expr
		Bases      []*Arg
		Doc        *StringLit
		Body       []Stmt
	}

	// ExprStmt is an expression evaluated for effect.
	ExprStmt struct {
		node
		X Expr
	}

	// PassStmt is the pass statement.
	PassStmt struct {
		node
	}

	// OpaqueStmt is any other statement. Keyword is its leading keyword,
	// or "" for augmented and non-name assignments.
	OpaqueStmt struct {
		node
		Keyword string
	}
)

func (*ImportStmt) stmtNode() {}
func (*AssignStmt) stmtNode() {}
func (*FuncDef) stmtNode()    {}
func (*ClassDef) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}
func (*PassStmt) stmtNode()   {}
func (*OpaqueStmt) stmtNode() {}

// ParamKind distinguishes the parameter forms of a function signature.
type ParamKind int

// Parameter kinds.
const (
	ParamPlain   ParamKind = iota
	ParamVarArgs           // *args
	ParamKwArgs            // **kwargs
)

// Param is one named parameter. Bare "*" and "/" separators are not
// recorded.
type Param struct {
	node
	Name       string
	Kind       ParamKind
	Annotation Expr
	Default    Expr
}

// Arg is one argument of a call or class base list. Star is "", "*" or
// "**"; Name is set for keyword arguments.
type Arg struct {
	node
	Name  string
	Star  string
	Value Expr
}

// LitKind is the kind of a numeric literal.
type LitKind int

// Numeric literal kinds.
const (
	IntLit LitKind = iota
	FloatLit
	ImagLit
)

// CompKind is the bracket form of a comprehension.
type CompKind int

// Comprehension kinds.
const (
	ListComp CompKind = iota
	SetComp
	DictComp
	GenExpr
)

type (
	// Ident is a name, including True, False and None.
	Ident struct {
		node
		Name string
	}

	// BasicLit is a numeric literal.
	BasicLit struct {
		node
		Kind LitKind
		Text string
	}

	// StringLit is one or more adjacent string tokens, concatenated.
	StringLit struct {
		node
		Parts []Token
	}

	// Ellipsis is the "..." literal.
	Ellipsis struct {
		node
	}

	// TupleExpr is a tuple display, parenthesized or not.
	TupleExpr struct {
		node
		Elts []Expr
	}

	// ListExpr is a list display.
	ListExpr struct {
		node
		Elts []Expr
	}

	// SetExpr is a set display.
	SetExpr struct {
		node
		Elts []Expr
	}

	// DictExpr is a dict display. Entries with a nil Key are "**" unpacking.
	DictExpr struct {
		node
		Entries []*DictItem
	}

	// CompExpr is a comprehension or generator expression. Its clauses
	// are not parsed.
	CompExpr struct {
		node
		Kind CompKind
	}

	// ParenExpr is a parenthesized expression.
	ParenExpr struct {
		node
		X Expr
	}

	// StarExpr is "*x" in a display or assignment target.
	StarExpr struct {
		node
		X Expr
	}

	// UnaryExpr is a prefix operation: "-", "+", "~", "not" or "await".
	UnaryExpr struct {
		node
		Op string
		X  Expr
	}

	// BinaryExpr is an infix operation, including "and", "or" and ":=".
	BinaryExpr struct {
		node
		Op string
		X  Expr
		Y  Expr
	}

	// CompareExpr is a comparison chain.
	CompareExpr struct {
		node
		Ops      []string
		Operands []Expr
	}

	// CondExpr is "Body if Test else Else".
	CondExpr struct {
		node
		Body Expr
		Test Expr
		Else Expr
	}

	// LambdaExpr is a lambda expression.
	LambdaExpr struct {
		node
		Body Expr
	}

	// AttrExpr is "X.Name".
	AttrExpr struct {
		node
		X    Expr
		Name string
	}

	// CallExpr is a call.
	CallExpr struct {
		node
		Fun  Expr
		Args []*Arg
	}

	// SubscriptExpr is "X[...]"; the index is not parsed.
	SubscriptExpr struct {
		node
		X Expr
	}
)

// DictItem is one entry of a dict display.
type DictItem struct {
	Key   Expr
	Value Expr
}

func (*Ident) exprNode()         {}
func (*BasicLit) exprNode()      {}
func (*StringLit) exprNode()     {}
func (*Ellipsis) exprNode()      {}
func (*TupleExpr) exprNode()     {}
func (*ListExpr) exprNode()      {}
func (*SetExpr) exprNode()       {}
func (*DictExpr) exprNode()      {}
func (*CompExpr) exprNode()      {}
func (*ParenExpr) exprNode()     {}
func (*StarExpr) exprNode()      {}
func (*UnaryExpr) exprNode()     {}
func (*BinaryExpr) exprNode()    {}
func (*CompareExpr) exprNode()   {}
func (*CondExpr) exprNode()      {}
func (*LambdaExpr) exprNode()    {}
func (*AttrExpr) exprNode()      {}
func (*CallExpr) exprNode()      {}
func (*SubscriptExpr) exprNode() {}

// File is a parsed document.
type File struct {
	Src   string
	Doc   *StringLit
	Stmts []Stmt
	lines lineIndex
}

// Position returns the 1-based line and column of a byte offset.
func (f *File) Position(off int) (line, col int) {
	return f.lines.position(off)
}

// Line returns the 1-based line on which n starts.
func (f *File) Line(n Node) int {
	line, _ := f.lines.position(n.Span().Start)
	return line
}

// Segment returns the source text covered by n.
func (f *File) Segment(n Node) string {
	sp := n.Span()
	return f.Src[sp.Start:sp.End]
}

// Classes returns the top-level class definitions in source order.
func (f *File) Classes() []*ClassDef {
	var out []*ClassDef
	for _, s := range f.Stmts {
		if c, ok := s.(*ClassDef); ok {
			out = append(out, c)
		}
	}
	return out
}
