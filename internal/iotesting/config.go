// Package iotesting provides shared utilities for integration tests.
package iotesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/growthcenter/esdash/internal/ioconfig"
	"github.com/growthcenter/esdash/internal/iofs"
	"github.com/growthcenter/esdash/pkg/config"
)

// TestDatabaseName is the database used by all integration tests, so
// tests never touch a production database.
const TestDatabaseName = "esdash_test"

// GetTestConfig loads config.yaml of the user (or defaults when there is
// none) and forces the database name to TestDatabaseName.
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()
	if home, err := os.UserHomeDir(); err == nil {
		if loaded, err := ioconfig.Load(home); err == nil {
			opts := loaded.ToOptions()
			opts = append(opts, config.OptHomeDir(home))
			cfg.Update(opts)
		}
	}

	cfg.Database.Database = TestDatabaseName
	return cfg
}

// GetTestDatabaseConfig returns only the database part of GetTestConfig.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}

// SetupTempHome creates a temporary home directory with esdash config,
// cache and log directories in it. Cleanup is automatic.
func SetupTempHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	if err := iofs.EnsureDirs(home); err != nil {
		t.Fatalf("Failed to create esdash dirs: %v", err)
	}
	return home
}

// WriteTempSourcesYAML writes sources.yaml into the config directory of
// a home created by SetupTempHome.
//
//	home := iotesting.SetupTempHome(t)
//	iotesting.WriteTempSourcesYAML(t, home, `
//	datasets:
//	  - kind: roster
//	    location: roster.csv
//	`)
func WriteTempSourcesYAML(t *testing.T, home, content string) {
	t.Helper()

	path := config.SourcesFilePath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp sources.yaml: %v", err)
	}
}
