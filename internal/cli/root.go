package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thruflo/stato/internal/config"
	"github.com/thruflo/stato/internal/logging"
	"github.com/thruflo/stato/internal/state"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "stato",
	Short: "Validate and version agent state modules",
	Long: `Stato validates skill, plan, memory, context and protocol modules before
they reach .stato/. Every write runs the full validation pipeline, applies
safe corrections and backs up the previous version, so any change can be
rolled back.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("stato version {{.Version}}\n")

	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringP("path", "p", ".", "project directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("path", rootCmd.PersistentFlags().Lookup("path"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetEnvPrefix("STATO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func projectDir() string {
	if p := viper.GetString("path"); p != "" {
		return p
	}
	return "."
}

func jsonOutput() bool {
	return viper.GetBool("json")
}

func configureLogging(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		logging.SetLevel(logging.LevelDebug)
		return nil
	}
	cfg, err := config.LoadConfig(projectDir())
	if err != nil {
		// Commands that need the project report a broken config themselves.
		return nil
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil
	}
	logging.SetLevel(level)
	return nil
}

// openProject opens the state manager of an initialised project.
func openProject(ctx context.Context, dir string) (*state.Manager, error) {
	if _, err := os.Stat(filepath.Join(dir, config.StatoDir)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no %s directory in %s (run 'stato init')", config.StatoDir, dir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", config.StatoDir, err)
	}
	m, _, err := state.Open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	return m, nil
}
