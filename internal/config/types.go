package config

// Backup backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Backup configures where prior versions of modules are kept.
type Backup struct {
	Backend string `yaml:"backend"`
	// Dir is relative to .stato/. For the sqlite backend it holds the
	// database file.
	Dir string `yaml:"dir"`
}

// Sandbox bounds evaluation of declarations.
type Sandbox struct {
	MaxSteps uint64 `yaml:"max_steps"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `yaml:"level"`
}

// Config represents the .stato/config.yaml file.
type Config struct {
	Backup  Backup  `yaml:"backup"`
	Sandbox Sandbox `yaml:"sandbox"`
	Log     Log     `yaml:"log"`
}
