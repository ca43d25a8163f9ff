package compiler

import (
	"strings"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/source"
)

// Field is one name binding in the class body.
type Field struct {
	Name  string
	Stmt  *source.AssignStmt
	Value source.Expr // nil for a bare annotation
}

// Declaration is the primary class of a document.
type Declaration struct {
	Class   *source.ClassDef
	Name    string
	HasDoc  bool
	Fields  []Field
	Methods map[string]*source.FuncDef
}

// Shape summarises the declaration for classification.
func (d *Declaration) Shape() module.Shape {
	s := module.Shape{ClassName: d.Name, Fields: map[string]bool{}, Methods: map[string]bool{}}
	for _, f := range d.Fields {
		s.Fields[f.Name] = true
	}
	for name := range d.Methods {
		s.Methods[name] = true
	}
	return s
}

// HasField reports whether name is bound as a field.
func (d *Declaration) HasField(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// extractDeclaration selects the first top-level class of f. It returns
// nil when the document declares no class.
func extractDeclaration(f *source.File) (*Declaration, []module.Diagnostic) {
	classes := f.Classes()
	if len(classes) == 0 {
		return nil, []module.Diagnostic{
			module.NewDiagnostic(module.CodeNoDeclarationFound, 0, "No class definition found"),
		}
	}

	var diags []module.Diagnostic
	c := classes[0]
	if len(classes) > 1 {
		diags = append(diags, module.NewDiagnostic(module.CodeMultipleDeclarations, f.Line(c),
			"Multiple classes found, using first: %s", c.Name))
	}

	d := newDeclaration(c)
	if !d.HasDoc {
		diags = append(diags, module.NewDiagnostic(module.CodeMissingDocstring, f.Line(c), "No docstring on class"))
	}
	return d, diags
}

func newDeclaration(c *source.ClassDef) *Declaration {
	d := &Declaration{Class: c, Name: c.Name, Methods: map[string]*source.FuncDef{}}
	if c.Doc != nil {
		if doc, err := c.Doc.Value(); err == nil && strings.TrimSpace(doc) != "" {
			d.HasDoc = true
		}
	}
	for _, stmt := range c.Body {
		switch s := stmt.(type) {
		case *source.AssignStmt:
			for _, t := range s.Targets {
				if id, ok := t.(*source.Ident); ok {
					d.Fields = append(d.Fields, Field{Name: id.Name, Stmt: s, Value: s.Value})
				}
			}
		case *source.FuncDef:
			d.Methods[s.Name] = s
		}
	}
	return d
}
