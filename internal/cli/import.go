package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/bundle"
	"github.com/thruflo/stato/internal/state"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <bundle>",
	Short: "Import the modules of a bundle file",
	Long: `Reads a bundle file that assigns module sources to SKILLS, PLAN, MEMORY and
CONTEXT and writes each one through the validation gate:

  SKILLS = {"qc": """class QC: ..."""}
  PLAN = """class AnalysisPlan: ..."""

The bundle is parsed, never executed. With --dry-run every module is
validated and nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate without writing")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}
	b, err := bundle.Parse(string(data))
	if err != nil {
		return err
	}
	m, err := openProject(cmd.Context(), projectDir())
	if err != nil {
		return err
	}
	defer m.Close()
	return importBundle(cmd.Context(), cmd.OutOrStdout(), m, b, importDryRun)
}

func importBundle(ctx context.Context, w io.Writer, m *state.Manager, b *bundle.Bundle, dryRun bool) error {
	if len(b.Entries()) == 0 {
		return fmt.Errorf("bundle contains no modules")
	}
	im := &bundle.Importer{Manager: m, DryRun: dryRun}
	outcomes, err := im.Import(ctx, b)
	if err != nil {
		return err
	}

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Module", "Kind", "Result", "Detail"})
	failed := 0
	for _, o := range outcomes {
		result, detail := "imported", ""
		if dryRun {
			result = "valid"
		}
		switch {
		case o.Err != nil:
			result, detail = "rejected", o.Err.Error()
		case !o.Result.Success:
			result, detail = "invalid", o.Result.HardErrors[0].String()
		case len(o.Result.AutoCorrections) > 0:
			detail = fmt.Sprintf("%d correction(s)", len(o.Result.AutoCorrections))
		}
		if !o.Imported() {
			failed++
		}
		tw.AppendRow(table.Row{o.Entry.Path, o.Entry.Kind, result, detail})
	}
	tw.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d module(s) not imported", failed, len(outcomes))
	}
	return nil
}
