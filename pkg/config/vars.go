package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "esdash"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/esdash by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/esdash by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// DatasetCacheDir returns the directory for cached fetched datasets.
func DatasetCacheDir(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "datasets")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/esdash/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/esdash/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// SourcesFilePath returns the full path to the sources.yaml file.
func SourcesFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "sources.yaml")
}

// LookupsFilePath returns the full path to the lookups.yaml file.
func LookupsFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "lookups.yaml")
}
