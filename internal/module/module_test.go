package module

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"skill", KindSkill, false},
		{"PLAN", KindPlan, false},
		{" memory ", KindMemory, false},
		{"", "", false},
		{"workflow", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodeSeverity(t *testing.T) {
	assert.Equal(t, SeverityError, CodeCyclicStepDependency.Severity())
	assert.Equal(t, SeverityWarning, CodeStepStatusDefaulted.Severity())
	assert.Equal(t, SeverityAdvice, CodeMissingDocstring.Severity())
	assert.Equal(t, "CyclicStepDependency", CodeCyclicStepDependency.Name())
	assert.Equal(t, "DependsOnWrappedInList", CodeDependsOnStringWrapped.Name())
}

func TestNewResultPartitions(t *testing.T) {
	diags := []Diagnostic{
		NewDiagnostic(CodeDependsOnStringWrapped, 3, "wrapped"),
		NewDiagnostic(CodeMissingDocstring, 1, "no docstring"),
		NewDiagnostic(CodeFieldTypeMismatch, 4, "bad type"),
	}

	r := NewResult(KindSkill, "QC", "src", nil, diags)
	assert.False(t, r.Success)
	assert.Len(t, r.HardErrors, 1)
	assert.Len(t, r.AutoCorrections, 1)
	assert.Len(t, r.Advice, 1)
	assert.True(t, r.HasCode(CodeFieldTypeMismatch))
	assert.False(t, r.HasCode(CodeSyntaxError))
	assert.Equal(t, CodeFieldTypeMismatch, r.Diagnostics()[0].Code)

	ok := NewResult(KindSkill, "QC", "src", nil, diags[:2])
	assert.True(t, ok.Success)
	assert.True(t, ok.Corrected())
	assert.NotNil(t, ok.HardErrors)
}

func TestRepr(t *testing.T) {
	d := NewDict()
	d.Set("min_genes", int64(200))
	d.Set("mode", "it's")
	tests := []struct {
		in   any
		want string
	}{
		{nil, "None"},
		{true, "True"},
		{"scanpy", "'scanpy'"},
		{int64(-3), "-3"},
		{2.0, "2.0"},
		{List{"a", int64(1)}, "['a', 1]"},
		{Tuple{int64(1)}, "(1,)"},
		{Set{}, "set()"},
		{d, `{'min_genes': 200, 'mode': "it's"}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Repr(tt.in))
	}
}

func TestDictSetReplaces(t *testing.T) {
	d := NewDict()
	d.Set("a", int64(1))
	d.Set("b", int64(2))
	d.Set("a", int64(3))

	assert.Equal(t, 2, d.Len())
	v, ok := d.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
	assert.Equal(t, []string{"a", "b"}, d.StringKeys())
}

func TestTypeMatches(t *testing.T) {
	assert.True(t, TypeStr.Matches("x"))
	assert.False(t, TypeList.Matches(Tuple{}))
	assert.True(t, TypeDict.Matches(NewDict()))
	assert.False(t, TypeInt.Matches(true))
}

func TestWrapDependsOn(t *testing.T) {
	c, ok := WrapDependsOn("scanpy", `"scanpy"`)
	require.True(t, ok)
	assert.Equal(t, `["scanpy"]`, c.Replacement)
	assert.Equal(t, CodeDependsOnStringWrapped, c.Code)

	c, ok = WrapDependsOn(int64(42), "42")
	require.True(t, ok)
	assert.Equal(t, "[42]", c.Replacement)
	assert.Equal(t, CodeDependsOnIntWrapped, c.Code)

	_, ok = WrapDependsOn(List{"x"}, `["x"]`)
	assert.False(t, ok)
}

func TestCompleteVersion(t *testing.T) {
	c, ok := CompleteVersion("1.0", `"1.0"`)
	require.True(t, ok)
	assert.Equal(t, `"1.0.0"`, c.Replacement)
	assert.Equal(t, CodeVersionPatchAppended, c.Code)

	c, ok = CompleteVersion("2.13", `'2.13'`)
	require.True(t, ok)
	assert.Equal(t, `'2.13.0'`, c.Replacement)

	c, ok = CompleteVersion("1.2-rc.1", `"1.2-rc.1"`)
	require.True(t, ok)
	assert.Equal(t, `"1.2.0-rc.1"`, c.Replacement)

	for _, v := range []any{"1.0.0", "1", "v1.0", "latest", "", int64(1)} {
		_, ok := CompleteVersion(v, fmt.Sprintf("%q", v))
		assert.False(t, ok, "%v", v)
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"1.0.0", "0.3.12", "2.0.0-beta.1", "1.0.0+build.7"} {
		assert.NoError(t, CheckVersion(v), v)
	}
	for _, v := range []string{"1", "1.0", "v1.0.0", "latest", "1.0.0.0", ""} {
		assert.Error(t, CheckVersion(v), v)
	}
}

func TestSchemas(t *testing.T) {
	for _, k := range Kinds {
		s, ok := SchemaFor(k)
		require.True(t, ok, k)
		assert.Equal(t, k, s.Kind)
		assert.NotEmpty(t, s.RequiredFields(), k)
	}

	skill, _ := SchemaFor(KindSkill)
	assert.Equal(t, []string{"run"}, skill.Methods)
	f, ok := skill.Field("depends_on")
	require.True(t, ok)
	assert.NotNil(t, f.AutoCorrect)

	plan, _ := SchemaFor(KindPlan)
	assert.Equal(t, []string{"name", "objective", "steps"}, plan.RequiredFields())
	assert.Empty(t, plan.Methods)
}

func TestClassify(t *testing.T) {
	fields := func(names ...string) map[string]bool {
		m := map[string]bool{}
		for _, n := range names {
			m[n] = true
		}
		return m
	}
	run := map[string]bool{"run": true}

	tests := []struct {
		name      string
		shape     Shape
		hint      Kind
		want      Kind
		confident bool
	}{
		{"context suffix", Shape{ClassName: "ProjectContext"}, "", KindContext, true},
		{"state suffix", Shape{ClassName: "AnalysisState"}, "", KindMemory, true},
		{"protocol suffix", Shape{ClassName: "HandoffProtocol"}, "", KindProtocol, true},
		{"suffix beats fields", Shape{ClassName: "RunState", Fields: fields("steps", "objective")}, "", KindMemory, true},
		{"plan fields", Shape{ClassName: "Pipeline", Fields: fields("name", "steps", "objective")}, "", KindPlan, true},
		{"handoff schema", Shape{ClassName: "Handoff", Fields: fields("handoff_schema")}, "", KindProtocol, true},
		{"phase without run", Shape{ClassName: "Notes", Fields: fields("phase")}, "", KindMemory, true},
		{"phase with run", Shape{ClassName: "Notes", Fields: fields("phase"), Methods: run}, "", KindSkill, true},
		{"project and description", Shape{ClassName: "Info", Fields: fields("project", "description")}, "", KindContext, true},
		{"run method", Shape{ClassName: "QC", Fields: fields("name"), Methods: run}, "", KindSkill, true},
		{"ambiguous", Shape{ClassName: "Thing", Fields: fields("name")}, "", KindSkill, false},
		{"ambiguous with hint", Shape{ClassName: "Thing", Fields: fields("name")}, KindPlan, KindPlan, true},
		{"hint ignored when confident", Shape{ClassName: "QC", Methods: run}, KindPlan, KindSkill, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.shape, tt.hint)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.confident, got.Confident)
		})
	}
}

func step(id int64, status string, deps ...any) *Dict {
	d := NewDict()
	d.Set("id", id)
	d.Set("action", "do")
	if status != "" {
		d.Set("status", status)
	}
	if len(deps) > 0 {
		d.Set("depends_on", List(deps))
	}
	return d
}

func TestPlanHelpers(t *testing.T) {
	steps := DecodeSteps(List{
		step(1, "complete"),
		step(2, "running", int64(1)),
		step(3, "", int64(1)),
		step(4, "pending", int64(2)),
		"not a step",
	})
	require.Len(t, steps, 4)
	assert.Equal(t, StatusPending, steps[2].Status)

	cur, ok := CurrentStep(steps)
	require.True(t, ok)
	assert.Equal(t, int64(2), cur.ID)

	next, ok := NextStep(steps)
	require.True(t, ok)
	assert.Equal(t, int64(3), next.ID)

	done, total := Progress(steps)
	assert.Equal(t, 1, done)
	assert.Equal(t, 4, total)
	assert.False(t, IsComplete(steps))
	assert.True(t, IsComplete(nil))
}

func TestDependencyIDs(t *testing.T) {
	assert.Equal(t, []int64{3}, DependencyIDs(int64(3)))
	assert.Equal(t, []int64{1, 2}, DependencyIDs(List{int64(1), "x", int64(2)}))
	assert.Nil(t, DependencyIDs(nil))
}

func TestStepStatusValid(t *testing.T) {
	assert.True(t, StatusBlocked.Valid())
	assert.False(t, StepStatus("done").Valid())
}
