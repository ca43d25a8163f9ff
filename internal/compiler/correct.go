package compiler

import (
	"strings"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/source"
)

// correction is a pending source edit and the warning that records it.
type correction struct {
	edit source.Edit
	diag module.Diagnostic
}

// correctFields type-checks every literal field against the schema. It
// returns the edits for auto-correctable mismatches and the diagnostics
// for the rest. Non-literal values are left to the runtime check.
func correctFields(f *source.File, d *Declaration, schema module.Schema) ([]correction, []module.Diagnostic) {
	var fixes []correction
	var errs []module.Diagnostic
	for _, fld := range d.Fields {
		spec, ok := schema.Field(fld.Name)
		if !ok || fld.Value == nil {
			continue
		}
		val, ok := source.LiteralValue(fld.Value)
		if !ok {
			continue
		}
		line := f.Line(fld.Stmt)

		if spec.AutoCorrect != nil {
			if c, ok := spec.AutoCorrect(val, f.Segment(fld.Value)); ok {
				sp := fld.Value.Span()
				fixes = append(fixes, correction{
					edit: source.Edit{Start: sp.Start, End: sp.End, Text: c.Replacement},
					diag: module.NewDiagnostic(c.Code, line, "%s", c.Message),
				})
				continue
			}
		}
		if !spec.Type.Matches(val) {
			errs = append(errs, module.NewDiagnostic(module.CodeFieldTypeMismatch, line,
				"Field '%s' expects %s, got %s", fld.Name, spec.Type, module.TypeName(val)))
		}
	}

	if schema.Kind == module.KindPlan {
		for _, fld := range d.Fields {
			if fld.Name != "steps" {
				continue
			}
			if list, ok := fld.Value.(*source.ListExpr); ok {
				fixes = append(fixes, correctSteps(f, list)...)
			}
		}
	}
	return fixes, errs
}

// correctSteps wraps scalar step dependencies in a list and sets a pending
// status on steps whose status is absent or None. Steps built with "**"
// unpacking are left alone since their keys are not known statically.
func correctSteps(f *source.File, list *source.ListExpr) []correction {
	var fixes []correction
	for _, elt := range list.Elts {
		d, ok := elt.(*source.DictExpr)
		if !ok {
			continue
		}
		var (
			status    *source.DictItem
			unpacked  bool
			deps      *source.DictItem
			label     = "?"
		)
		for _, e := range d.Entries {
			if e.Key == nil {
				unpacked = true
				continue
			}
			k, _ := source.LiteralValue(e.Key)
			switch k {
			case "status":
				status = e
			case "depends_on":
				deps = e
			case "id":
				if v, ok := source.LiteralValue(e.Value); ok {
					label = module.Repr(v)
				} else {
					label = f.Segment(e.Value)
				}
			}
		}

		if deps != nil {
			if v, ok := source.LiteralValue(deps.Value); ok {
				if _, isInt := v.(int64); isInt {
					sp := deps.Value.Span()
					fixes = append(fixes, correction{
						edit: source.Edit{Start: sp.Start, End: sp.End, Text: "[" + f.Segment(deps.Value) + "]"},
						diag: module.NewDiagnostic(module.CodeDependsOnIntWrapped, f.Line(deps.Value),
							"Step %s: depends_on is int, auto-wrapping in list", label),
					})
				}
			}
		}

		if status != nil {
			if v, ok := source.LiteralValue(status.Value); ok && v == nil {
				sp := status.Value.Span()
				q := keyQuote(d)
				fixes = append(fixes, correction{
					edit: source.Edit{Start: sp.Start, End: sp.End, Text: q + string(module.StatusPending) + q},
					diag: module.NewDiagnostic(module.CodeStepStatusDefaulted, f.Line(d),
						"Step %s: missing status, auto-set to 'pending'", label),
				})
			}
		} else if !unpacked {
			q := keyQuote(d)
			entry := q + "status" + q + ": " + q + string(module.StatusPending) + q
			edit := source.Edit{Start: d.Span().Start + 1, End: d.Span().Start + 1, Text: entry}
			if n := len(d.Entries); n > 0 {
				end := d.Entries[n-1].Value.Span().End
				edit = source.Edit{Start: end, End: end, Text: ", " + entry}
			}
			fixes = append(fixes, correction{
				edit: edit,
				diag: module.NewDiagnostic(module.CodeStepStatusDefaulted, f.Line(d),
					"Step %s: missing status, auto-set to 'pending'", label),
			})
		}
	}
	return fixes
}

// keyQuote returns the quote character used by the first string key of d.
func keyQuote(d *source.DictExpr) string {
	for _, e := range d.Entries {
		if lit, ok := e.Key.(*source.StringLit); ok {
			text := lit.Parts[0].Text
			if i := strings.IndexAny(text, `'"`); i >= 0 {
				return text[i : i+1]
			}
		}
	}
	return `"`
}
