package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thruflo/stato/internal/compiler"
	"github.com/thruflo/stato/internal/config"
)

// Module locations inside .stato.
const (
	SkillsDir   = "skills"
	PlanFile    = "plan.py"
	MemoryFile  = "memory.py"
	ContextFile = "context.py"
)

// SQLiteFile is the database name used by the sqlite backend.
const SQLiteFile = "backups.db"

// InitProject creates the .stato directory structure under projectDir and
// writes a default config.yaml unless one exists. It is safe to run twice.
func InitProject(projectDir string) error {
	root := filepath.Join(projectDir, config.StatoDir)
	for _, dir := range []string{root, filepath.Join(root, SkillsDir), filepath.Join(root, config.DefaultDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(root, config.ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := config.DefaultConfigYAML()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(configPath, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// OpenBackupStore opens the backup store configured for projectDir.
func OpenBackupStore(ctx context.Context, projectDir string, cfg config.Backup) (BackupStore, error) {
	dir := filepath.Join(projectDir, config.StatoDir, cfg.Dir)
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(dir), nil
	case config.BackendSQLite:
		return OpenSQLiteStore(ctx, filepath.Join(dir, SQLiteFile))
	}
	return nil, config.ValidationError{Field: "backup.backend", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
}

// Open loads the project config and returns a Manager wired to the
// configured backup store and sandbox budget.
func Open(ctx context.Context, projectDir string, opts ...Option) (*Manager, *config.Config, error) {
	cfg, err := config.LoadConfig(projectDir)
	if err != nil {
		return nil, nil, err
	}
	store, err := OpenBackupStore(ctx, projectDir, cfg.Backup)
	if err != nil {
		return nil, nil, err
	}
	base := []Option{
		WithBackupStore(store),
		WithValidator(compilerFor(cfg)),
	}
	return NewManager(projectDir, append(base, opts...)...), cfg, nil
}

func compilerFor(cfg *config.Config) *compiler.Validator {
	return compiler.New(compiler.WithMaxSteps(cfg.Sandbox.MaxSteps))
}
