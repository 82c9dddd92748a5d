// Package iolookup reads lookups.yaml from the configuration directory.
package iolookup

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/errcode"
	"github.com/growthcenter/esdash/pkg/lookup"
)

// Load reads lookups.yaml from the config directory of homeDir.
// When the file does not exist the embedded tables are used.
func Load(homeDir string) (*lookup.Tables, error) {
	path := config.LookupsFilePath(homeDir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Warn("lookups file not found, using defaults", "path", path)
		return lookup.Default(), nil
	}
	if err != nil {
		return nil, LookupsConfigError(path, err)
	}

	res, err := lookup.Parse(data)
	if err != nil {
		return nil, LookupsConfigError(path, err)
	}
	slog.Info("lookups loaded",
		"path", path,
		"layers", len(res.Layers),
		"dimensions", len(res.Dimensions),
		"overrides", len(res.Overrides),
	)
	return res, nil
}

// LookupsConfigError creates an error for when lookups.yaml
// cannot be loaded.
func LookupsConfigError(path string, err error) error {
	msg := `Cannot load lookup tables

<em>Lookups file:</em> %s

<em>How to fix:</em>
  1. Validate YAML syntax
  2. Check that tenure edges ascend and match the labels
  3. Delete the file to restore the defaults on the next run`

	return &gn.Error{
		Code: errcode.LookupsConfigError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("failed to load lookups: %w", err),
	}
}
