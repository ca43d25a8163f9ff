package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/stato/internal/module"
)

func TestSetupProject(t *testing.T) {
	t.Parallel()

	dir := SetupProject(t)
	for _, sub := range []string{".stato", ".stato/skills", ".stato/.history"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir(), "%s should be a directory", sub)
	}
	assert.Contains(t, ReadTestFile(t, dir, ".stato/config.yaml"), "backend: file")
}

func TestWriteTestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	WriteTestFile(t, dir, "a/b/c.py", []byte("x = 1\n"))
	assert.Equal(t, "x = 1\n", ReadTestFile(t, dir, "a/b/c.py"))
}

func TestAssertCodes(t *testing.T) {
	t.Parallel()

	res := module.NewResult(module.KindSkill, "QC", "", nil, []module.Diagnostic{
		module.NewDiagnostic(module.CodeMissingDocstring, 1, "No docstring on class"),
		module.NewDiagnostic(module.CodeVersionPatchAppended, 2, "fixed"),
	})
	AssertValid(t, res)
	AssertHasCode(t, res, module.CodeMissingDocstring)
	AssertNoCode(t, res, module.CodeSyntaxError)
	AssertCodes(t, res, module.CodeVersionPatchAppended, module.CodeMissingDocstring)
}

func TestFixturesAreDistinct(t *testing.T) {
	t.Parallel()

	fixtures := []string{
		ValidQCSkill, ValidNormalizeSkill, ValidClusterSkill, ValidPlan,
		ValidMemory, ValidContext, ValidProtocol, FixableSkill,
	}
	seen := map[string]bool{}
	for _, f := range fixtures {
		assert.False(t, seen[f])
		seen[f] = true
		assert.Contains(t, f, "class ")
	}
}
