package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/state"
)

var diffCmd = &cobra.Command{
	Use:   "diff <module-path>",
	Short: "Show changes since the latest backup of a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject(cmd.Context(), projectDir())
		if err != nil {
			return err
		}
		defer m.Close()
		return showDiff(cmd.Context(), cmd.OutOrStdout(), m, args[0])
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func showDiff(ctx context.Context, w io.Writer, m *state.Manager, rel string) error {
	diff, err := m.Diff(ctx, rel)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintf(w, "No changes to %s since its last backup.\n", rel)
		return nil
	}
	_, err = io.WriteString(w, diff)
	return err
}
