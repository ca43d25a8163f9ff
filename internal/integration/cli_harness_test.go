//go:build e2e

// cli_harness_test.go builds the stato binary and runs it against an
// isolated project directory.
package integration

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// CLIHarness manages a stato binary and a scratch project for E2E tests.
type CLIHarness struct {
	// BinaryPath is the path to the built stato binary.
	BinaryPath string

	// WorkDir is the project directory commands run in.
	WorkDir string

	// EnvVars are added to the environment of every command.
	EnvVars map[string]string

	t *testing.T
}

// CLIResult contains the output from a CLI command execution.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Success returns true if the command completed with exit code 0.
func (r *CLIResult) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// NewCLIHarness builds the stato binary into a temp directory and creates
// an empty workspace next to it.
func NewCLIHarness(t *testing.T) *CLIHarness {
	t.Helper()

	projectRoot := findModuleRoot(t)

	tmpDir := t.TempDir()
	binaryPath := filepath.Join(tmpDir, "stato")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/stato")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build stato binary: %s", output)

	workDir := filepath.Join(tmpDir, "workspace")
	require.NoError(t, os.MkdirAll(workDir, 0755))

	return &CLIHarness{
		BinaryPath: binaryPath,
		WorkDir:    workDir,
		EnvVars:    make(map[string]string),
		t:          t,
	}
}

// SetEnv sets an environment variable for subsequent command executions.
func (h *CLIHarness) SetEnv(key, value string) {
	h.EnvVars[key] = value
}

// Run executes a stato command with a 30 second timeout.
func (h *CLIHarness) Run(args ...string) *CLIResult {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return h.RunWithStdin(ctx, "", args...)
}

// RunWithStdin executes a stato command feeding stdin to it.
func (h *CLIHarness) RunWithStdin(ctx context.Context, stdin string, args ...string) *CLIResult {
	h.t.Helper()

	cmd := exec.CommandContext(ctx, h.BinaryPath, args...)
	cmd.Dir = h.WorkDir
	cmd.Env = h.buildEnv()
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CLIResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		result.Err = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	return result
}

// WriteFile writes a file relative to the workspace.
func (h *CLIHarness) WriteFile(rel, content string) string {
	h.t.Helper()
	path := filepath.Join(h.WorkDir, rel)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadFile reads a file relative to the workspace.
func (h *CLIHarness) ReadFile(rel string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.WorkDir, rel))
	require.NoError(h.t, err)
	return string(data)
}

// RequireSuccess fails the test if the command did not succeed.
func (h *CLIHarness) RequireSuccess(r *CLIResult, msg string) {
	h.t.Helper()
	require.True(h.t, r.Success(), "%s\nstdout: %s\nstderr: %s", msg, r.Stdout, r.Stderr)
}

// RequireFailure fails the test if the command succeeded.
func (h *CLIHarness) RequireFailure(r *CLIResult, msg string) {
	h.t.Helper()
	require.False(h.t, r.Success(), "%s\nstdout: %s", msg, r.Stdout)
}

func (h *CLIHarness) buildEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "STATO_") {
			env = append(env, e)
		}
	}
	for k, v := range h.EnvVars {
		env = append(env, k+"="+v)
	}
	return env
}

// findModuleRoot walks up from the working directory to the go.mod.
func findModuleRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found")
		dir = parent
	}
}
