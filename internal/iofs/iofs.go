// Package iofs prepares directories and configuration files of esdash.
package iofs

import (
	"os"

	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/templates"
)

// EnsureDirs creates config, cache and log directories when they are
// missing.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.DatasetCacheDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the default config.yaml unless it exists.
func EnsureConfigFile(homeDir string) error {
	return ensureFile(config.ConfigFilePath(homeDir), templates.ConfigYAML)
}

// EnsureSourcesFile writes the default sources.yaml unless it exists.
func EnsureSourcesFile(homeDir string) error {
	return ensureFile(config.SourcesFilePath(homeDir), templates.SourcesYAML)
}

// EnsureLookupsFile writes the default lookups.yaml unless it exists.
func EnsureLookupsFile(homeDir string) error {
	return ensureFile(config.LookupsFilePath(homeDir), templates.LookupsYAML)
}

// EnsureFiles writes every missing configuration file.
func EnsureFiles(homeDir string) error {
	for _, fn := range []func(string) error{
		EnsureConfigFile,
		EnsureSourcesFile,
		EnsureLookupsFile,
	} {
		if err := fn(homeDir); err != nil {
			return err
		}
	}
	return nil
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return CopyFileError(path, err)
	}

	return nil
}
