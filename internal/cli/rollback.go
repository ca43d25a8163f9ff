package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/state"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <module-path>",
	Short: "Restore the most recent backup of a module",
	Long: `Restores the most recent backup of <module-path>. The current version is
backed up before it is replaced, so running rollback twice returns to where
you started.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject(cmd.Context(), projectDir())
		if err != nil {
			return err
		}
		defer m.Close()
		return rollbackModule(cmd.Context(), cmd.OutOrStdout(), m, args[0])
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

func rollbackModule(ctx context.Context, w io.Writer, m *state.Manager, rel string) error {
	b, err := m.Rollback(ctx, rel)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Restored %s from backup #%d (%s)\n", rel, b.Seq, formatTime(b.CreatedAt))
	return nil
}
