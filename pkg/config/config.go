// Package config provides configuration management for esdash.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Survey: years, apply_overrides, legacy_remaps, min_group_size
//   - Fetch: use_cache, timeout
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Export: format
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Fetch.Refresh (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use ESDASH_ prefix with underscores for nesting:
//
//	ESDASH_SURVEY_YEARS=2023,2024,2025
//	ESDASH_DATABASE_HOST=localhost
//	ESDASH_LOG_LEVEL=info
//	ESDASH_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete esdash configuration.
type Config struct {
	// Survey contains settings of the finalization pipeline.
	Survey SurveyConfig `mapstructure:"survey" yaml:"survey"`

	// Fetch contains settings of raw data loading.
	Fetch FetchConfig `mapstructure:"fetch" yaml:"fetch"`

	// Database contains PostgreSQL connection settings for exports.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Export contains settings of file exports.
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of datasets fetched concurrently.
	// Default value is set accoring to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// SurveyConfig contains settings of the finalization pipeline.
type SurveyConfig struct {
	// Years are survey years to finalize.
	Years []int `mapstructure:"years" yaml:"years"`

	// ApplyOverrides enables per-employee unit and subunit corrections
	// from lookups.yaml. The early single-year feed needed them.
	ApplyOverrides bool `mapstructure:"apply_overrides" yaml:"apply_overrides"`

	// LegacyRemaps enables marital and education renames from
	// lookups.yaml.
	LegacyRemaps bool `mapstructure:"legacy_remaps" yaml:"legacy_remaps"`

	// MinGroupSize is the smallest group shown in reports. Values below 2
	// are not accepted.
	MinGroupSize int `mapstructure:"min_group_size" yaml:"min_group_size"`
}

// FetchConfig contains settings of raw data loading.
type FetchConfig struct {
	// UseCache keeps fetched datasets in ~/.cache/esdash and reuses them
	// while the source does not change.
	UseCache bool `mapstructure:"use_cache" yaml:"use_cache"`

	// Timeout is the HTTP timeout in seconds for remote datasets.
	Timeout int `mapstructure:"timeout" yaml:"timeout"`

	// Refresh ignores cached datasets and fetches them again.
	// Runtime-only.
	Refresh bool `mapstructure:"-" yaml:"-"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of respondent rows sent per COPY batch.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ExportConfig contains settings of file exports.
type ExportConfig struct {
	// Format of exported tables: "csv", "tsv", "compact" (JSON) or
	// "pretty" (indented JSON).
	Format string `mapstructure:"format" yaml:"format"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Survey: SurveyConfig{
			Years:        []int{2023, 2024, 2025},
			MinGroupSize: 2,
		},
		Fetch: FetchConfig{
			UseCache: true,
			Timeout:  60,
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "esdash",
			SSLMode:   "disable",
			BatchSize: 10_000,
		},
		Export: ExportConfig{
			Format: "csv",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
