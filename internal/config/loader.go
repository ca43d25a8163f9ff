package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thruflo/stato/internal/logging"
)

// Directory and file names inside a project.
const (
	StatoDir   = ".stato"
	ConfigFile = "config.yaml"
)

// Default values for Config.
const (
	DefaultBackend  = BackendFile
	DefaultDir      = ".history"
	DefaultMaxSteps = 100_000
	DefaultLogLevel = "warn"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Backup:  Backup{Backend: DefaultBackend, Dir: DefaultDir},
		Sandbox: Sandbox{MaxSteps: DefaultMaxSteps},
		Log:     Log{Level: DefaultLogLevel},
	}
}

// DefaultConfigYAML renders the default config as written by stato init.
func DefaultConfigYAML() ([]byte, error) {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// LoadConfig reads and parses .stato/config.yaml under projectDir.
// If the file doesn't exist, returns default config.
// Applies defaults for any missing fields.
func LoadConfig(projectDir string) (*Config, error) {
	configPath := filepath.Join(projectDir, StatoDir, ConfigFile)

	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Backup.Backend == "" {
		cfg.Backup.Backend = DefaultBackend
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = DefaultDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	switch cfg.Backup.Backend {
	case BackendFile, BackendSQLite:
	default:
		return ValidationError{Field: "backup.backend", Message: fmt.Sprintf("must be %q or %q", BackendFile, BackendSQLite)}
	}
	if filepath.IsAbs(cfg.Backup.Dir) || !filepath.IsLocal(cfg.Backup.Dir) {
		return ValidationError{Field: "backup.dir", Message: "must be a relative path inside .stato"}
	}
	if cfg.Sandbox.MaxSteps == 0 {
		return ValidationError{Field: "sandbox.max_steps", Message: "must be positive"}
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return ValidationError{Field: "log.level", Message: err.Error()}
	}
	return nil
}
