package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupProject creates a temporary project directory with the .stato
// structure and a config.yaml holding test defaults. Returns the project
// directory. The directory is removed when the test completes.
func SetupProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	statoDir := filepath.Join(tmpDir, ".stato")
	for _, dir := range []string{
		statoDir,
		filepath.Join(statoDir, "skills"),
		filepath.Join(statoDir, ".history"),
	} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	configContent := `backup:
  backend: file
  dir: .history
sandbox:
  max_steps: 100000
log:
  level: warn
`
	require.NoError(t, os.WriteFile(filepath.Join(statoDir, "config.yaml"), []byte(configContent), 0644))
	return tmpDir
}

// WriteTestFile writes content to a file in the test directory.
// Creates parent directories as needed.
func WriteTestFile(t *testing.T, basePath, relativePath string, content []byte) {
	t.Helper()
	fullPath := filepath.Join(basePath, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, content, 0644))
}

// ReadTestFile reads a file in the test directory, failing the test on error.
func ReadTestFile(t *testing.T, basePath, relativePath string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(basePath, relativePath))
	require.NoError(t, err)
	return string(data)
}

// MustMarshalJSON marshals a value to JSON, failing the test on error.
// Uses indented format for readability.
func MustMarshalJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return data
}
