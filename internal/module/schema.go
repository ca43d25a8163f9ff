package module

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ValueType is the expected type of a schema field.
type ValueType string

// Value types a schema can demand.
const (
	TypeStr  ValueType = "str"
	TypeList ValueType = "list"
	TypeDict ValueType = "dict"
	TypeInt  ValueType = "int"
	TypeBool ValueType = "bool"
)

// Matches reports whether v has type t. Booleans are not ints.
func (t ValueType) Matches(v any) bool {
	return TypeName(v) == string(t)
}

// Correction is the outcome of a successful auto-correction: the source
// text that replaces the field's value expression and the warning to emit.
type Correction struct {
	Replacement string
	Code        Code
	Message     string
}

// AutoCorrectFunc inspects a field's literal value and the exact source
// text of its value expression. It reports ok=false when it has nothing
// to correct.
type AutoCorrectFunc func(value any, segment string) (c Correction, ok bool)

// FieldSpec describes one field of a kind's schema.
type FieldSpec struct {
	Name        string
	Type        ValueType
	Required    bool
	AutoCorrect AutoCorrectFunc
}

// Schema is the field and entry-point contract of a module kind.
type Schema struct {
	Kind    Kind
	Fields  []FieldSpec
	Methods []string
}

// Field returns the FieldSpec named name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RequiredFields returns the names of required fields in declaration order.
func (s Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// WrapDependsOn wraps a scalar depends_on value in a list.
func WrapDependsOn(value any, segment string) (Correction, bool) {
	switch value.(type) {
	case string:
		return Correction{
			Replacement: "[" + segment + "]",
			Code:        CodeDependsOnStringWrapped,
			Message:     "depends_on is string, auto-wrapping in list",
		}, true
	case int64:
		return Correction{
			Replacement: "[" + segment + "]",
			Code:        CodeDependsOnIntWrapped,
			Message:     "depends_on is int, auto-wrapping in list",
		}, true
	}
	return Correction{}, false
}

// CompleteVersion appends a patch component to a MAJOR.MINOR version,
// optionally followed by a pre-release or build suffix.
func CompleteVersion(value any, segment string) (Correction, bool) {
	s, ok := value.(string)
	if !ok || s == "" || !strings.Contains(segment, s) {
		return Correction{}, false
	}
	if _, err := semver.StrictNewVersion(s); err == nil {
		return Correction{}, false
	}
	core, _, _ := strings.Cut(s, "-")
	core, _, _ = strings.Cut(core, "+")
	if strings.Count(core, ".") != 1 || !isDigit(core[0]) {
		return Correction{}, false
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return Correction{}, false
	}
	full := v.String()
	return Correction{
		Replacement: strings.Replace(segment, s, full, 1),
		Code:        CodeVersionPatchAppended,
		Message:     fmt.Sprintf("Version missing patch number, auto-fixing: '%s' -> '%s'", s, full),
	}, true
}

// CheckVersion reports whether v is a strict MAJOR.MINOR.PATCH version.
func CheckVersion(v string) error {
	_, err := semver.StrictNewVersion(v)
	return err
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func str(name string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: TypeStr, Required: required}
}

func list(name string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: TypeList, Required: required}
}

func dict(name string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: TypeDict, Required: required}
}

var schemas = map[Kind]Schema{
	KindSkill: {
		Kind: KindSkill,
		Fields: []FieldSpec{
			str("name", true),
			str("description", false),
			{Name: "version", Type: TypeStr, AutoCorrect: CompleteVersion},
			{Name: "depends_on", Type: TypeList, AutoCorrect: WrapDependsOn},
			dict("input_schema", false),
			dict("output_schema", false),
			dict("default_params", false),
			str("lessons_learned", false),
			list("tags", false),
			list("context_requires", false),
		},
		Methods: []string{"run"},
	},
	KindPlan: {
		Kind: KindPlan,
		Fields: []FieldSpec{
			str("name", true),
			str("objective", true),
			list("steps", true),
			{Name: "version", Type: TypeStr, AutoCorrect: CompleteVersion},
			str("decision_log", false),
			list("constraints", false),
			str("created_by", false),
		},
	},
	KindMemory: {
		Kind: KindMemory,
		Fields: []FieldSpec{
			str("phase", true),
			list("tasks", false),
			dict("known_issues", false),
			str("reflection", false),
			list("error_history", false),
			list("decisions", false),
			str("last_updated", false),
			dict("metadata", false),
		},
	},
	KindContext: {
		Kind: KindContext,
		Fields: []FieldSpec{
			str("project", true),
			str("description", true),
			list("datasets", false),
			dict("environment", false),
			list("conventions", false),
			list("tools", false),
			list("pending_tasks", false),
			list("completed_tasks", false),
			str("notes", false),
			list("team", false),
		},
	},
	KindProtocol: {
		Kind: KindProtocol,
		Fields: []FieldSpec{
			str("name", true),
			dict("handoff_schema", true),
			str("description", false),
			list("validation_rules", false),
			str("error_handling", false),
		},
	},
}

// SchemaFor returns the schema of kind k.
func SchemaFor(k Kind) (Schema, bool) {
	s, ok := schemas[k]
	return s, ok
}
