package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/config"
	"github.com/thruflo/stato/internal/state"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .stato/ directory structure",
	Long: `Creates the .stato/ directory in the project with:
  - config.yaml with the backup backend, sandbox and log settings
  - skills/ for skill modules
  - .history/ for backups

An existing config.yaml is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initProject(cmd.OutOrStdout(), projectDir())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initProject(w io.Writer, dir string) error {
	if err := state.InitProject(dir); err != nil {
		return err
	}
	fmt.Fprintf(w, "Initialized %s\n", filepath.Join(dir, config.StatoDir))
	return nil
}
