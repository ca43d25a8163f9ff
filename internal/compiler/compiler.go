package compiler

import (
	"errors"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/sandbox"
	"github.com/thruflo/stato/internal/source"
)

// Validator runs the validation pipeline. A Validator holds no per-call
// state and is safe for concurrent use.
type Validator struct {
	executor sandbox.Executor
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxSteps bounds the number of interpreter steps spent evaluating a
// declaration.
func WithMaxSteps(n uint64) Option {
	return func(v *Validator) { v.executor.MaxSteps = n }
}

// New returns a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the pipeline with the default configuration.
func Validate(src string, hint module.Kind) *module.ValidationResult {
	return New().Validate(src, hint)
}

// Validate runs every pass over src. hint only decides the kind of a
// declaration that matches no classification rule.
func (v *Validator) Validate(src string, hint module.Kind) *module.ValidationResult {
	r := &run{src: src, corrected: src}
	r.execute(&v.executor, hint)
	return module.NewResult(r.kind, r.className, r.corrected, r.fields, r.diags)
}

// run is the state of one pipeline invocation.
type run struct {
	src       string
	corrected string
	kind      module.Kind
	className string
	fields    map[string]any
	diags     []module.Diagnostic
}

func (r *run) add(diags ...module.Diagnostic) { r.diags = append(r.diags, diags...) }

func (r *run) failed() bool {
	for _, d := range r.diags {
		if d.Severity == module.SeverityError {
			return true
		}
	}
	return false
}

func (r *run) execute(ex *sandbox.Executor, hint module.Kind) {
	f, err := source.Parse(r.src)
	if err != nil {
		r.add(syntaxDiagnostic(err, "Syntax error"))
		return
	}

	decl, diags := extractDeclaration(f)
	r.add(diags...)
	if decl == nil {
		return
	}
	r.className = decl.Name

	cls := module.Classify(decl.Shape(), hint)
	r.kind = cls.Kind
	if !cls.Confident {
		r.add(module.NewDiagnostic(module.CodeAmbiguousKind, 0,
			"Cannot confidently infer module type, defaulting to '%s'", cls.Kind))
	}
	schema, _ := module.SchemaFor(cls.Kind)

	for _, name := range schema.RequiredFields() {
		if !decl.HasField(name) {
			r.add(module.NewDiagnostic(module.CodeMissingRequiredField, f.Line(decl.Class), "Missing required field: '%s'", name))
		}
	}
	for _, name := range schema.Methods {
		if _, ok := decl.Methods[name]; !ok {
			r.add(module.NewDiagnostic(module.CodeMissingRequiredMethod, f.Line(decl.Class), "Missing required method: '%s()'", name))
		}
	}
	if r.failed() {
		return
	}

	fixes, errs := correctFields(f, decl, schema)
	r.add(errs...)
	if r.failed() {
		return
	}
	if len(fixes) > 0 {
		edits := make([]source.Edit, len(fixes))
		for i, fx := range fixes {
			edits[i] = fx.edit
			r.add(fx.diag)
		}
		corrected, err := source.ApplyEdits(r.src, edits)
		if err != nil {
			r.add(module.NewDiagnostic(module.CodeRuntimeExecutionError, 0, "Auto-correction failed: %v", err))
			return
		}
		r.corrected = corrected
		if f, err = source.Parse(corrected); err != nil {
			r.add(syntaxDiagnostic(err, "Syntax error in corrected source"))
			return
		}
		decl = newDeclaration(f.Classes()[0])
	}

	res, err := ex.Execute(f, decl.Class)
	if err != nil {
		var execErr *sandbox.ExecError
		if errors.As(err, &execErr) {
			r.add(module.NewDiagnostic(module.CodeRuntimeExecutionError, execErr.Line,
				"Runtime execution error: %s: %s", execErr.Type, execErr.Msg))
		} else {
			r.add(module.NewDiagnostic(module.CodeRuntimeExecutionError, 0, "Runtime execution error: %v", err))
		}
		return
	}
	r.fields = res.Fields
	for _, name := range schema.Methods {
		if !res.IsCallable(name) {
			r.add(module.NewDiagnostic(module.CodeMethodNotCallable, 0, "Required method '%s()' is not callable", name))
		}
	}
	if r.failed() {
		return
	}

	r.add(semanticChecks(f, decl, schema, res)...)
}

func syntaxDiagnostic(err error, prefix string) module.Diagnostic {
	var se *source.SyntaxError
	if errors.As(err, &se) {
		return module.NewDiagnostic(module.CodeSyntaxError, se.Line, "%s: %s", prefix, se.Msg)
	}
	return module.NewDiagnostic(module.CodeSyntaxError, 0, "%s: %v", prefix, err)
}
