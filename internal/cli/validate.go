package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/compiler"
	"github.com/thruflo/stato/internal/config"
	"github.com/thruflo/stato/internal/module"
)

var validateType string

var validateCmd = &cobra.Command{
	Use:   "validate <file|dir>...",
	Short: "Validate module documents without writing them",
	Long: `Runs the validation pipeline over each file, or every .py file below each
directory, and reports hard errors, auto-corrections and advice.

Exits non-zero when any module has a hard error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateType, "type", "t", "", "expected module kind (skill, plan, memory, context, protocol)")
	rootCmd.AddCommand(validateCmd)
}

// validationReport is the JSON form of one validated file.
type validationReport struct {
	Path   string                   `json:"path"`
	Result *module.ValidationResult `json:"result"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	hint, err := module.ParseKind(validateType)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(projectDir())
	if err != nil {
		return err
	}
	v := compiler.New(compiler.WithMaxSteps(cfg.Sandbox.MaxSteps))

	failed, err := validateTargets(cmd.OutOrStdout(), v, args, hint, jsonOutput())
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d module(s) failed validation", failed)
	}
	return nil
}

// validateTargets validates every file named by targets and returns how
// many failed.
func validateTargets(w io.Writer, v *compiler.Validator, targets []string, hint module.Kind, asJSON bool) (int, error) {
	files, err := collectModules(targets)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, errors.New("no .py files found")
	}

	reports := make([]validationReport, 0, len(files))
	failed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		res := v.Validate(string(data), hint)
		if !res.Success {
			failed++
		}
		reports = append(reports, validationReport{Path: filepath.ToSlash(path), Result: res})
	}

	if asJSON {
		return failed, printJSON(w, reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, summary(r.Path, r.Result))
		printDiagnostics(w, r.Result)
	}
	return failed, nil
}

// collectModules expands directories into the .py files below them,
// skipping hidden directories. Explicit files are kept as given.
func collectModules(targets []string) ([]string, error) {
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", target, err)
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}
		var found []string
		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != target && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == ".py" {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", target, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
