// Package bundle extracts modules from a bundle document and imports them
// through the state manager. A bundle is read by syntax only; nothing in it
// is evaluated.
//
//	SKILLS = {"qc": """class QC: ..."""}
//	PLAN = """class AnalysisPlan: ..."""
//	MEMORY = """..."""
//	CONTEXT = """..."""
package bundle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thruflo/stato/internal/compiler"
	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/source"
	"github.com/thruflo/stato/internal/state"
)

// Entry is one module found in a bundle.
type Entry struct {
	Path   string
	Kind   module.Kind
	Source string
}

// Bundle is the parsed content of a bundle document.
type Bundle struct {
	Skills  []Entry
	Plan    *Entry
	Memory  *Entry
	Context *Entry
}

// Entries returns every module in import order: skills, then plan, memory
// and context.
func (b *Bundle) Entries() []Entry {
	out := append([]Entry(nil), b.Skills...)
	for _, e := range []*Entry{b.Plan, b.Memory, b.Context} {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// Parse reads a bundle. Variables other than SKILLS, PLAN, MEMORY and
// CONTEXT are ignored, as are entries whose key or value is not a plain
// string literal. When a variable is assigned twice the last one wins.
func Parse(src string) (*Bundle, error) {
	f, err := source.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("bundle syntax error: %w", err)
	}

	b := &Bundle{}
	for _, stmt := range f.Stmts {
		assign, ok := stmt.(*source.AssignStmt)
		if !ok || assign.Value == nil {
			continue
		}
		for _, target := range assign.Targets {
			id, ok := target.(*source.Ident)
			if !ok {
				continue
			}
			switch id.Name {
			case "SKILLS":
				if dict, ok := assign.Value.(*source.DictExpr); ok {
					b.Skills = skills(dict)
				}
			case "PLAN":
				b.Plan = single(assign.Value, state.PlanFile, module.KindPlan)
			case "MEMORY":
				b.Memory = single(assign.Value, state.MemoryFile, module.KindMemory)
			case "CONTEXT":
				b.Context = single(assign.Value, state.ContextFile, module.KindContext)
			}
		}
	}
	return b, nil
}

func skills(dict *source.DictExpr) []Entry {
	var out []Entry
	for _, item := range dict.Entries {
		if item.Key == nil {
			continue
		}
		name, ok := stringValue(item.Key)
		if !ok {
			continue
		}
		body, ok := stringValue(item.Value)
		if !ok {
			continue
		}
		out = append(out, Entry{
			Path:   state.SkillsDir + "/" + name + ".py",
			Kind:   module.KindSkill,
			Source: normalise(body),
		})
	}
	return out
}

func single(x source.Expr, path string, kind module.Kind) *Entry {
	body, ok := stringValue(x)
	if !ok {
		return nil
	}
	return &Entry{Path: path, Kind: kind, Source: normalise(body)}
}

func stringValue(x source.Expr) (string, bool) {
	v, ok := source.LiteralValue(x)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func normalise(s string) string {
	return strings.TrimSpace(s) + "\n"
}

// Outcome is the result of importing one entry.
type Outcome struct {
	Entry  Entry
	Result *module.ValidationResult
	// Err is set when the entry could not be written at all, for example
	// when a skill name is not a valid module path.
	Err error
}

// Imported reports whether the entry validated (and, unless dry-run, was
// written).
func (o Outcome) Imported() bool {
	return o.Err == nil && o.Result != nil && o.Result.Success
}

// Importer writes bundle entries through a state manager.
type Importer struct {
	Manager   *state.Manager
	Validator *compiler.Validator
	// DryRun validates every entry without writing.
	DryRun bool
}

// Import processes every entry of b. It stops at the first host failure;
// validation failures and rejected paths are reported per entry.
func (im *Importer) Import(ctx context.Context, b *Bundle) ([]Outcome, error) {
	v := im.Validator
	if v == nil {
		v = compiler.New()
	}

	var out []Outcome
	for _, e := range b.Entries() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if im.DryRun {
			out = append(out, Outcome{Entry: e, Result: v.Validate(e.Source, e.Kind)})
			continue
		}
		res, err := im.Manager.WriteAs(ctx, e.Path, e.Source, e.Kind)
		if err != nil {
			if errors.Is(err, state.ErrPathOutsideStore) {
				out = append(out, Outcome{Entry: e, Err: err})
				continue
			}
			return out, fmt.Errorf("failed to import %s: %w", e.Path, err)
		}
		out = append(out, Outcome{Entry: e, Result: res})
	}
	return out, nil
}
