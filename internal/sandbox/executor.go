package sandbox

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/thruflo/stato/internal/source"
)

// DefaultMaxSteps is the execution budget used when none is configured.
const DefaultMaxSteps uint64 = 100_000

const (
	programName = "<module>"
	valuesName  = "__stato_values__"
	bodyName    = "__stato_body__"
	nsName      = "__stato_namespace__"
)

var fileOptions = &syntax.FileOptions{
	Set:            true,
	While:          true,
	GlobalReassign: true,
	Recursion:      true,
}

// ExecError describes why a declaration could not be constructed. Line is
// the document line of the failing expression, or zero when unknown.
type ExecError struct {
	Type string
	Msg  string
	Line int
}

func (e *ExecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Type, e.Msg, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Msg)
}

// Result is the runtime namespace of an evaluated class body.
type Result struct {
	// Names lists bound names in binding order.
	Names  []string
	Fields map[string]any

	values map[string]starlark.Value
}

// Lookup returns the runtime value bound to name.
func (r *Result) Lookup(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// IsCallable reports whether name is bound to something invocable.
func (r *Result) IsCallable(name string) bool {
	v, ok := r.values[name]
	if !ok {
		return false
	}
	_, callable := v.(starlark.Callable)
	return callable
}

// Executor evaluates declarations. The zero value is ready to use.
type Executor struct {
	MaxSteps uint64
}

// Execute evaluates class, which must belong to f. A failure to construct
// the declaration is reported as an *ExecError.
func (e *Executor) Execute(f *source.File, class *source.ClassDef) (*Result, error) {
	prog, err := generate(f, class)
	if err != nil {
		return nil, &ExecError{Type: "ValueError", Msg: err.Error()}
	}

	steps := e.MaxSteps
	if steps == 0 {
		steps = DefaultMaxSteps
	}
	thread := &starlark.Thread{
		Name:  "stato-sandbox",
		Print: func(*starlark.Thread, string) {},
	}
	thread.SetMaxExecutionSteps(steps)

	predeclared := starlark.StringDict{valuesName: starlark.Tuple(prog.values)}
	globals, err := starlark.ExecFileOptions(fileOptions, thread, programName, prog.text(), predeclared)
	if err != nil {
		return nil, prog.translate(err)
	}

	ns, ok := globals[nsName].(*starlark.Dict)
	if !ok {
		return nil, &ExecError{Type: "RuntimeError", Msg: "class namespace was not produced"}
	}
	res := &Result{Fields: map[string]any{}, values: map[string]starlark.Value{}}
	for _, kv := range ns.Items() {
		name := string(kv[0].(starlark.String))
		res.Names = append(res.Names, name)
		res.values[name] = kv[1]
		res.Fields[name] = fromStarlark(kv[1], 0)
	}
	return res, nil
}

// program is the Starlark translation of a document.
type program struct {
	b      strings.Builder
	lines  []int
	values []starlark.Value
}

func (p *program) text() string { return p.b.String() }

// emit appends text as one or more program lines attributed to srcLine.
func (p *program) emit(srcLine int, text string) {
	n := strings.Count(text, "\n") + 1
	for i := 0; i < n; i++ {
		if srcLine > 0 {
			p.lines = append(p.lines, srcLine+i)
		} else {
			p.lines = append(p.lines, 0)
		}
	}
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

// value registers v and returns the expression that reads it back.
func (p *program) value(v starlark.Value) string {
	p.values = append(p.values, v)
	return fmt.Sprintf("%s[%d]", valuesName, len(p.values)-1)
}

func (p *program) sourceLine(progLine int32) int {
	if progLine < 1 || int(progLine) > len(p.lines) {
		return 0
	}
	return p.lines[progLine-1]
}

func generate(f *source.File, class *source.ClassDef) (*program, error) {
	p := &program{}
	for _, stmt := range f.Stmts {
		if stmt == source.Stmt(class) {
			break
		}
		if err := p.binding(f, stmt, ""); err != nil {
			return nil, err
		}
	}

	p.emit(0, "def "+bodyName+"():")
	var names []string
	seen := map[string]bool{}
	for _, stmt := range class.Body {
		bound, err := p.bindingNames(f, stmt, "    ")
		if err != nil {
			return nil, err
		}
		for _, n := range bound {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	entries := make([]string, len(names))
	for i, n := range names {
		entries[i] = fmt.Sprintf("%q: %s", n, n)
	}
	p.emit(0, "    return {"+strings.Join(entries, ", ")+"}")
	p.emit(0, nsName+" = "+bodyName+"()")
	return p, nil
}

func (p *program) binding(f *source.File, stmt source.Stmt, indent string) error {
	_, err := p.bindingNames(f, stmt, indent)
	return err
}

// bindingNames emits the Starlark statements for one document statement
// and returns the names it binds. Statements that bind nothing at this
// level are dropped.
func (p *program) bindingNames(f *source.File, stmt source.Stmt, indent string) ([]string, error) {
	line := f.Line(stmt)
	switch s := stmt.(type) {
	case *source.ImportStmt:
		var names []string
		for _, n := range s.Names {
			if bindable(n) {
				p.emit(line, indent+n+" = "+p.value(&stub{name: n}))
				names = append(names, n)
			}
		}
		return names, nil
	case *source.FuncDef:
		if !bindable(s.Name) {
			return nil, nil
		}
		v := method(s.Name)
		if hasDecorator(s, "property") {
			v = property(s.Name)
		}
		p.emit(line, indent+s.Name+" = "+p.value(v))
		return []string{s.Name}, nil
	case *source.ClassDef:
		if !bindable(s.Name) {
			return nil, nil
		}
		p.emit(line, indent+s.Name+" = "+p.value(&stub{name: s.Name}))
		return []string{s.Name}, nil
	case *source.AssignStmt:
		if s.Value == nil {
			return nil, nil
		}
		var names []string
		for _, t := range s.Targets {
			if id, ok := t.(*source.Ident); ok && bindable(id.Name) {
				names = append(names, id.Name)
			}
		}
		if len(names) == 0 {
			return nil, nil
		}
		expr, err := p.expression(f, s.Value)
		if err != nil {
			return nil, err
		}
		p.emit(f.Line(s.Value), indent+names[0]+" = "+expr)
		for _, n := range names[1:] {
			p.emit(line, indent+n+" = "+names[0])
		}
		return names, nil
	}
	return nil, nil
}

// expression returns the Starlark form of x: a reference to an injected
// value when x is a literal, its source text in parentheses when Starlark
// can parse it, and an unknown value otherwise. Python forms with no
// Starlark counterpart (f-strings, set displays, "is", "**" power) are
// therefore bound but never evaluated.
func (p *program) expression(f *source.File, x source.Expr) (string, error) {
	if v, ok := source.LiteralValue(x); ok {
		sv, err := toStarlark(v)
		if err != nil {
			return "", err
		}
		return p.value(sv), nil
	}
	text := "(" + f.Segment(x) + ")"
	if _, err := fileOptions.ParseExpr(programName, text, 0); err != nil {
		return p.value(&stub{name: "expression"}), nil
	}
	return text, nil
}

// bindable reports whether name can be bound in Starlark. "load" is a
// Starlark keyword but an ordinary document identifier.
func bindable(name string) bool { return name != "load" }

func hasDecorator(fn *source.FuncDef, name string) bool {
	for _, d := range fn.Decorators {
		if id, ok := d.(*source.Ident); ok && id.Name == name {
			return true
		}
	}
	return false
}

// translate maps an interpreter error back onto document lines.
func (p *program) translate(err error) *ExecError {
	var evalErr *starlark.EvalError
	var synErr syntax.Error
	var resErrs resolve.ErrorList
	switch {
	case errors.As(err, &evalErr):
		line := 0
		for i := len(evalErr.CallStack) - 1; i >= 0; i-- {
			pos := evalErr.CallStack[i].Pos
			if pos.Filename() == programName {
				line = p.sourceLine(pos.Line)
				break
			}
		}
		return &ExecError{Type: "EvalError", Msg: evalErr.Msg, Line: line}
	case errors.As(err, &synErr):
		return &ExecError{Type: "SyntaxError", Msg: synErr.Msg, Line: p.sourceLine(synErr.Pos.Line)}
	case errors.As(err, &resErrs) && len(resErrs) > 0:
		return &ExecError{Type: "NameError", Msg: resErrs[0].Msg, Line: p.sourceLine(resErrs[0].Pos.Line)}
	}
	return &ExecError{Type: "RuntimeError", Msg: err.Error()}
}
