package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/state"
)

var writeType string

var writeCmd = &cobra.Command{
	Use:   "write <module-path> <file>",
	Short: "Validate a document and store it in .stato/",
	Long: `Validates the document in <file> and, if it passes, stores its corrected
form at <module-path> inside .stato/ (for example skills/qc.py or plan.py).
The previous version is backed up first. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVarP(&writeType, "type", "t", "", "expected module kind")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	hint, err := module.ParseKind(writeType)
	if err != nil {
		return err
	}
	src, err := readInput(cmd.InOrStdin(), args[1])
	if err != nil {
		return err
	}
	m, err := openProject(cmd.Context(), projectDir())
	if err != nil {
		return err
	}
	defer m.Close()
	return writeModule(cmd.Context(), cmd.OutOrStdout(), m, args[0], src, hint, jsonOutput())
}

func writeModule(ctx context.Context, w io.Writer, m *state.Manager, rel, src string, hint module.Kind, asJSON bool) error {
	res, err := m.WriteAs(ctx, rel, src, hint)
	if err != nil {
		return err
	}
	if asJSON {
		if err := printJSON(w, validationReport{Path: rel, Result: res}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, summary(rel, res))
		printDiagnostics(w, res)
	}
	if !res.Success {
		return fmt.Errorf("%s not written: validation failed", rel)
	}
	return nil
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
