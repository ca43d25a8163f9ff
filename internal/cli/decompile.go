package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/compiler"
	"github.com/thruflo/stato/internal/config"
)

var decompileFromMarkdown bool

var decompileCmd = &cobra.Command{
	Use:   "decompile <file>",
	Short: "Render a module as markdown",
	Long: `Prints a markdown view of a module: heading, docstring, field table,
methods, narrative fields and the full source.

With --from-markdown the input is a document produced by decompile; the
embedded source is recovered, validated and printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		if !decompileFromMarkdown {
			_, err := io.WriteString(cmd.OutOrStdout(), compiler.Decompile(string(data)))
			return err
		}
		cfg, err := config.LoadConfig(projectDir())
		if err != nil {
			return err
		}
		v := compiler.New(compiler.WithMaxSteps(cfg.Sandbox.MaxSteps))
		return recompile(cmd.OutOrStdout(), cmd.ErrOrStderr(), v, string(data))
	},
}

func init() {
	decompileCmd.Flags().BoolVar(&decompileFromMarkdown, "from-markdown", false, "recover and validate source from a decompiled document")
	rootCmd.AddCommand(decompileCmd)
}

// recompile writes the recovered source to w and any diagnostics to errw.
func recompile(w, errw io.Writer, v *compiler.Validator, md string) error {
	_, res := v.FromMarkdown(md)
	printDiagnostics(errw, res)
	if !res.Success {
		return fmt.Errorf("recovered source failed validation")
	}
	_, err := io.WriteString(w, res.CorrectedSource)
	return err
}
