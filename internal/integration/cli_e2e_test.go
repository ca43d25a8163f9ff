//go:build e2e

// cli_e2e_test.go runs complete stato workflows against the built binary.
package integration

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/stato/internal/testutil"
)

func TestCLI_Init(t *testing.T) {
	h := NewCLIHarness(t)

	result := h.Run("init")
	h.RequireSuccess(result, "init command failed")
	assert.Contains(t, result.Stdout, "Initialized")
	assert.DirExists(t, filepath.Join(h.WorkDir, ".stato", "skills"))
	assert.Contains(t, h.ReadFile(".stato/config.yaml"), "backend: file")

	h.RequireSuccess(h.Run("init"), "second init should succeed")
}

func TestCLI_CommandsRequireInit(t *testing.T) {
	h := NewCLIHarness(t)

	result := h.Run("status")
	h.RequireFailure(result, "status outside a project should fail")
	assert.Contains(t, result.Stderr, "error: no .stato directory")
}

func TestCLI_WriteRollbackLifecycle(t *testing.T) {
	h := NewCLIHarness(t)
	h.RequireSuccess(h.Run("init"), "init failed")

	v1 := h.WriteFile("qc_v1.py", testutil.FixableSkill)
	result := h.Run("write", "skills/qc.py", v1)
	h.RequireSuccess(result, "write v1 failed")
	assert.Contains(t, result.Stdout, "W003")
	first := h.ReadFile(".stato/skills/qc.py")
	assert.Contains(t, first, `version = "1.0.0"`)

	v2 := strings.Replace(testutil.FixableSkill, `"1.0"`, `"2.0.0"`, 1)
	result = h.RunWithStdin(context.Background(), v2, "write", "skills/qc.py", "-")
	h.RequireSuccess(result, "write v2 from stdin failed")

	result = h.Run("diff", "skills/qc.py")
	h.RequireSuccess(result, "diff failed")
	assert.Contains(t, result.Stdout, `+    version = "2.0.0"`)

	result = h.Run("history", "skills/qc.py", "--json")
	h.RequireSuccess(result, "history failed")
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Stdout), &entries))
	assert.Len(t, entries, 1)

	result = h.Run("rollback", "skills/qc.py")
	h.RequireSuccess(result, "rollback failed")
	assert.Equal(t, first, h.ReadFile(".stato/skills/qc.py"))
}

func TestCLI_RejectedWriteLeavesStoreUntouched(t *testing.T) {
	h := NewCLIHarness(t)
	h.RequireSuccess(h.Run("init"), "init failed")

	good := h.WriteFile("plan.py", testutil.ValidPlan)
	h.RequireSuccess(h.Run("write", "plan.py", good), "write failed")

	cyclic := strings.Replace(testutil.ValidPlan, `"depends_on": [4]}`, `"depends_on": [7]}`, 1)
	bad := h.WriteFile("cyclic.py", cyclic)
	result := h.Run("write", "plan.py", bad)
	h.RequireFailure(result, "cyclic plan should be rejected")
	assert.Contains(t, result.Stdout, "E009")
	assert.Equal(t, testutil.ValidPlan, h.ReadFile(".stato/plan.py"))

	result = h.Run("rollback", "plan.py")
	h.RequireFailure(result, "nothing was backed up")
	assert.Contains(t, result.Stderr, "no backup available")
}

func TestCLI_ValidateExitCode(t *testing.T) {
	h := NewCLIHarness(t)

	h.WriteFile("mods/qc.py", testutil.ValidQCSkill)
	h.RequireSuccess(h.Run("validate", "mods"), "valid directory should pass")

	h.WriteFile("mods/broken.py", testutil.CorruptedSkillBadTypes)
	result := h.Run("validate", "mods")
	h.RequireFailure(result, "broken module should fail")
	assert.Contains(t, result.Stdout, "E007")
	assert.Contains(t, result.Stderr, "1 module(s) failed validation")
}

func TestCLI_ImportAndStatus(t *testing.T) {
	h := NewCLIHarness(t)
	h.RequireSuccess(h.Run("init"), "init failed")

	bundlePath := h.WriteFile("bundle.py", testutil.SampleBundle)
	h.RequireSuccess(h.Run("import", bundlePath, "--dry-run"), "dry run failed")
	assert.NoFileExists(t, filepath.Join(h.WorkDir, ".stato", "plan.py"))

	h.RequireSuccess(h.Run("import", bundlePath), "import failed")

	result := h.Run("status", "--json")
	h.RequireSuccess(result, "status failed")
	var report struct {
		Modules []struct {
			Path string `json:"path"`
		} `json:"modules"`
		Plan struct {
			Complete int `json:"complete"`
			Total    int `json:"total"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Stdout), &report))
	assert.Len(t, report.Modules, 5)
	assert.Equal(t, 1, report.Plan.Complete)
	assert.Equal(t, 2, report.Plan.Total)
}

func TestCLI_SQLiteBackend(t *testing.T) {
	h := NewCLIHarness(t)
	h.RequireSuccess(h.Run("init"), "init failed")
	h.WriteFile(".stato/config.yaml", "backup:\n  backend: sqlite\n")

	src := h.WriteFile("memory.py", testutil.ValidMemory)
	h.RequireSuccess(h.Run("write", "memory.py", src), "first write failed")
	h.RequireSuccess(h.Run("write", "memory.py", src), "second write failed")
	assert.FileExists(t, filepath.Join(h.WorkDir, ".stato", ".history", "backups.db"))

	result := h.Run("rollback", "memory.py")
	h.RequireSuccess(result, "rollback failed")
	assert.Contains(t, result.Stdout, "backup #1")
}

func TestCLI_Decompile(t *testing.T) {
	h := NewCLIHarness(t)

	src := h.WriteFile("qc.py", testutil.ValidQCSkill)
	result := h.Run("decompile", src)
	h.RequireSuccess(result, "decompile failed")
	assert.Contains(t, result.Stdout, "# QualityControl")

	md := h.WriteFile("qc.md", result.Stdout)
	result = h.Run("decompile", "--from-markdown", md)
	h.RequireSuccess(result, "recompile failed")
	assert.Contains(t, result.Stdout, "class QualityControl:")
}
