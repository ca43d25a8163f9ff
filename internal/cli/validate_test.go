package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/stato/internal/compiler"
	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/testutil"
)

func moduleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTestFile(t, dir, "skills/qc.py", []byte(testutil.ValidQCSkill))
	testutil.WriteTestFile(t, dir, "skills/broken.py", []byte(testutil.CorruptedSkillMissingFields))
	testutil.WriteTestFile(t, dir, "plan.py", []byte(testutil.ValidPlan))
	testutil.WriteTestFile(t, dir, "notes.txt", []byte("not a module"))
	testutil.WriteTestFile(t, dir, ".history/qc.py", []byte("class"))
	return dir
}

func TestCollectModules(t *testing.T) {
	t.Parallel()

	dir := moduleTree(t)
	files, err := collectModules([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "plan.py"),
		filepath.Join(dir, "skills", "broken.py"),
		filepath.Join(dir, "skills", "qc.py"),
	}, files)

	explicit := filepath.Join(dir, "notes.txt")
	files, err = collectModules([]string{explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit}, files)

	_, err = collectModules([]string{filepath.Join(dir, "missing.py")})
	assert.Error(t, err)
}

func TestValidateTargets(t *testing.T) {
	t.Parallel()

	dir := moduleTree(t)
	var out bytes.Buffer
	failed, err := validateTargets(&out, compiler.New(), []string{dir}, "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	text := out.String()
	assert.Contains(t, text, "OK "+filepath.ToSlash(filepath.Join(dir, "skills", "qc.py"))+" (skill QualityControl)")
	assert.Contains(t, text, "FAILED "+filepath.ToSlash(filepath.Join(dir, "skills", "broken.py")))
	assert.Contains(t, text, string(module.CodeMissingRequiredField))
	assert.Contains(t, text, "(plan AnalysisPlan)")
}

func TestValidateTargetsJSON(t *testing.T) {
	t.Parallel()

	dir := moduleTree(t)
	var out bytes.Buffer
	failed, err := validateTargets(&out, compiler.New(), []string{filepath.Join(dir, "plan.py")}, module.KindPlan, true)
	require.NoError(t, err)
	assert.Zero(t, failed)

	var reports []struct {
		Path   string `json:"path"`
		Result struct {
			Success bool   `json:"success"`
			Kind    string `json:"module_kind"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Result.Success)
	assert.Equal(t, "plan", reports[0].Result.Kind)
}

func TestValidateTargetsEmptyDir(t *testing.T) {
	t.Parallel()

	_, err := validateTargets(&bytes.Buffer{}, compiler.New(), []string{t.TempDir()}, "", false)
	assert.EqualError(t, err, "no .py files found")
}
