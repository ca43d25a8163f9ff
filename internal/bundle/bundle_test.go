package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/stato/internal/logging"
	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/state"
	"github.com/thruflo/stato/internal/testutil"
)

func TestParse(t *testing.T) {
	t.Parallel()

	b, err := Parse(testutil.SampleBundle)
	require.NoError(t, err)

	require.Len(t, b.Skills, 2)
	assert.Equal(t, "skills/qc.py", b.Skills[0].Path)
	assert.Equal(t, "skills/normalize.py", b.Skills[1].Path)
	assert.Equal(t, module.KindSkill, b.Skills[0].Kind)
	assert.Contains(t, b.Skills[0].Source, "class QC:")
	assert.Equal(t, byte('c'), b.Skills[0].Source[0], "sources are trimmed")

	require.NotNil(t, b.Plan)
	require.NotNil(t, b.Memory)
	require.NotNil(t, b.Context)
	assert.Equal(t, state.PlanFile, b.Plan.Path)
	assert.Equal(t, module.KindContext, b.Context.Kind)

	paths := []string{}
	for _, e := range b.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"skills/qc.py", "skills/normalize.py", "plan.py", "memory.py", "context.py"}, paths)
}

func TestParseIgnoresNonLiterals(t *testing.T) {
	t.Parallel()

	src := `import os

NAME = "x"
SKILLS = {"a": os.environ["A"], 1: "class One: pass", "b": "class B: pass", **EXTRA}
PLAN = "class " + NAME
MEMORY = None
`
	b, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, b.Skills, 1)
	assert.Equal(t, "skills/b.py", b.Skills[0].Path)
	assert.Nil(t, b.Plan)
	assert.Nil(t, b.Memory)
	assert.Nil(t, b.Context)
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Parse("SKILLS = {\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle syntax error")
}

func newManager(t *testing.T) (*state.Manager, string) {
	t.Helper()
	dir := testutil.SetupProject(t)
	return state.NewManager(dir, state.WithLogger(logging.Discard())), dir
}

func TestImport(t *testing.T) {
	t.Parallel()

	b, err := Parse(testutil.SampleBundle)
	require.NoError(t, err)
	m, dir := newManager(t)

	outcomes, err := (&Importer{Manager: m}).Import(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for _, o := range outcomes {
		assert.True(t, o.Imported(), "%s: %v", o.Entry.Path, o.Result.HardErrors)
		assert.FileExists(t, filepath.Join(dir, ".stato", o.Entry.Path))
	}

	normalize := outcomes[1]
	testutil.AssertHasCode(t, normalize.Result, module.CodeVersionPatchAppended)
	testutil.AssertHasCode(t, normalize.Result, module.CodeDependsOnStringWrapped)
	written := testutil.ReadTestFile(t, dir, ".stato/skills/normalize.py")
	assert.Contains(t, written, `version = "1.0.0"`)
	assert.Contains(t, written, `depends_on = ["qc"]`)

	plan := outcomes[2]
	testutil.AssertHasCode(t, plan.Result, module.CodeStepStatusDefaulted)
}

func TestImportDryRun(t *testing.T) {
	t.Parallel()

	b, err := Parse(testutil.SampleBundle)
	require.NoError(t, err)
	m, dir := newManager(t)

	outcomes, err := (&Importer{Manager: m, DryRun: true}).Import(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for _, o := range outcomes {
		assert.True(t, o.Imported(), o.Entry.Path)
		_, statErr := os.Stat(filepath.Join(dir, ".stato", o.Entry.Path))
		assert.True(t, os.IsNotExist(statErr), "%s should not be written", o.Entry.Path)
	}
}

func TestImportReportsFailuresPerEntry(t *testing.T) {
	t.Parallel()

	src := `SKILLS = {
    "../../escape": "class Escape:\n    name = 'e'\n    def run(self):\n        pass\n",
    "broken": "class Broken:\n    name = 'b'\n",
    "ok": "class Ok:\n    name = 'ok'\n    def run(self):\n        pass\n",
}
`
	b, err := Parse(src)
	require.NoError(t, err)
	m, dir := newManager(t)

	outcomes, err := (&Importer{Manager: m}).Import(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.ErrorIs(t, outcomes[0].Err, state.ErrPathOutsideStore)
	assert.False(t, outcomes[0].Imported())

	require.NotNil(t, outcomes[1].Result)
	assert.False(t, outcomes[1].Imported())
	testutil.AssertHasCode(t, outcomes[1].Result, module.CodeMissingRequiredMethod)
	assert.NoFileExists(t, filepath.Join(dir, ".stato", "skills", "broken.py"))

	assert.True(t, outcomes[2].Imported())
}
