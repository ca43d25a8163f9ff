package compiler

import (
	"strings"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/sandbox"
	"github.com/thruflo/stato/internal/source"
)

// semanticChecks runs the kind-specific rules over the runtime namespace.
// It never halts: every finding is collected.
func semanticChecks(f *source.File, d *Declaration, schema module.Schema, res *sandbox.Result) []module.Diagnostic {
	var diags []module.Diagnostic
	diags = append(diags, runtimeTypes(schema, res)...)

	switch schema.Kind {
	case module.KindPlan:
		diags = append(diags, planChecks(res)...)
		if !module.Truthy(res.Fields["decision_log"]) {
			diags = append(diags, module.NewDiagnostic(module.CodeMissingDecisionLog, 0, "No decision_log on plan"))
		}
	case module.KindSkill:
		if !module.Truthy(res.Fields["lessons_learned"]) {
			diags = append(diags, module.NewDiagnostic(module.CodeMissingLessonsLearned, 0, "No lessons_learned on skill"))
		}
		if run, ok := d.Methods["run"]; ok && res.IsCallable("run") && !annotated(run) {
			diags = append(diags, module.NewDiagnostic(module.CodeRunMissingTypeHints, f.Line(run), "run() has no type hints"))
		}
	case module.KindProtocol:
		if hs, ok := res.Fields["handoff_schema"].(*module.Dict); ok && hs.Len() == 0 {
			diags = append(diags, module.NewDiagnostic(module.CodeEmptyHandoffSchema, 0, "handoff_schema is empty"))
		}
	}

	if _, ok := schema.Field("version"); ok {
		if v, ok := res.Fields["version"].(string); ok {
			if err := module.CheckVersion(v); err != nil {
				diags = append(diags, module.NewDiagnostic(module.CodeNonSemverVersion, 0,
					"version '%s' is not a semantic version (MAJOR.MINOR.PATCH)", v))
			}
		}
	}

	if suffix := schema.Kind.NameSuffix(); suffix != "" && !strings.HasSuffix(strings.ToLower(d.Name), strings.ToLower(suffix)) {
		diags = append(diags, module.NewDiagnostic(module.CodeNamingConvention, f.Line(d.Class),
			"%s module class '%s' should end with '%s'", titleKind(schema.Kind), d.Name, suffix))
	}
	return diags
}

// runtimeTypes checks schema fields whose values were only known after
// execution. Values derived from imports cannot be checked.
func runtimeTypes(schema module.Schema, res *sandbox.Result) []module.Diagnostic {
	var diags []module.Diagnostic
	for _, spec := range schema.Fields {
		v, ok := res.Lookup(spec.Name)
		if !ok || sandbox.IsUnknown(v) || spec.Type.Matches(v) {
			continue
		}
		diags = append(diags, module.NewDiagnostic(module.CodeFieldTypeMismatch, 0,
			"Field '%s' expects %s, got %s", spec.Name, spec.Type, module.TypeName(v)))
	}
	return diags
}

// planChecks validates step ids, references, statuses and acyclicity.
// The cycle check only runs once every id is unique and every reference
// resolves.
func planChecks(res *sandbox.Result) []module.Diagnostic {
	steps, ok := res.Fields["steps"].(module.List)
	if !ok {
		return nil
	}

	var diags []module.Diagnostic
	referential := true
	type parsed struct {
		d  *module.Dict
		id int64
	}
	var valid []parsed
	ids := map[int64]bool{}
	for i, item := range steps {
		d, ok := item.(*module.Dict)
		if !ok {
			diags = append(diags, module.NewDiagnostic(module.CodeFieldTypeMismatch, 0,
				"Step at position %d: expected dict, got %s", i+1, module.TypeName(item)))
			referential = false
			continue
		}
		raw, _ := d.Get("id")
		id, ok := module.AsInt(raw)
		if !ok {
			diags = append(diags, module.NewDiagnostic(module.CodeFieldTypeMismatch, 0,
				"Step at position %d: 'id' must be int, got %s", i+1, module.TypeName(raw)))
			referential = false
			continue
		}
		if ids[id] {
			diags = append(diags, module.NewDiagnostic(module.CodeInvalidStepReference, 0, "Duplicate step ID: %d", id))
			referential = false
		}
		ids[id] = true
		valid = append(valid, parsed{d: d, id: id})
	}

	nodes := make([]stepNode, 0, len(valid))
	for _, s := range valid {
		node := stepNode{id: s.id}
		if deps, ok := s.d.Get("depends_on"); ok && deps != nil {
			items, isList := deps.(module.List)
			if !isList {
				items = module.List{deps}
			}
			for _, dep := range items {
				depID, ok := module.AsInt(dep)
				if !ok || !ids[depID] {
					diags = append(diags, module.NewDiagnostic(module.CodeInvalidStepReference, 0,
						"Step %d: depends_on references nonexistent step %s", s.id, module.Repr(dep)))
					referential = false
					continue
				}
				node.deps = append(node.deps, depID)
			}
		}
		nodes = append(nodes, node)

		if st, ok := s.d.Get("status"); ok && st != nil {
			str, isStr := st.(string)
			if !isStr || !module.StepStatus(str).Valid() {
				diags = append(diags, module.NewDiagnostic(module.CodeInvalidStepStatus, 0,
					"Step %d: invalid status %s. Allowed: %s", s.id, module.Repr(st), allowedStatuses()))
			}
		}
		if action, ok := s.d.Get("action"); ok {
			if _, isStr := action.(string); !isStr {
				diags = append(diags, module.NewDiagnostic(module.CodeFieldTypeMismatch, 0,
					"Step %d: 'action' expects str, got %s", s.id, module.TypeName(action)))
			}
		}
	}

	if referential {
		if cycle := findCycle(nodes); cycle != nil {
			diags = append(diags, module.NewDiagnostic(module.CodeCyclicStepDependency, 0,
				"Circular dependency in plan step DAG: %s", formatCycle(cycle)))
		}
	}
	return diags
}

func allowedStatuses() string {
	names := make([]string, len(module.StepStatuses))
	for i, s := range module.StepStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// annotated reports whether fn carries any parameter or return annotation.
func annotated(fn *source.FuncDef) bool {
	if fn.Returns != nil {
		return true
	}
	for _, p := range fn.Params {
		if p.Annotation != nil {
			return true
		}
	}
	return false
}

func titleKind(k module.Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
