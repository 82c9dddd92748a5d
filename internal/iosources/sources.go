// Package iosources reads sources.yaml from the configuration directory.
package iosources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/sources"
	"gopkg.in/yaml.v3"
)

type iosources struct {
	cfg *config.Config
}

// New creates a loader of sources.yaml located in the config directory.
func New(cfg *config.Config) sources.Sources {
	res := iosources{cfg: cfg}
	return &res
}

// Load reads, validates and resolves sources.yaml. Warnings are shown to
// the user and kept in the result.
func (s *iosources) Load() (*sources.SourcesConfig, error) {
	sourcesPath := config.SourcesFilePath(s.cfg.HomeDir)
	res, err := loadSourcesConfig(sourcesPath, s.cfg.HomeDir)
	if err != nil {
		return nil, SourcesConfigError(sourcesPath, err)
	}
	for _, w := range res.Warnings {
		gn.Warn("<em>%s</em> %s: %s. %s", w.Dataset, w.Field, w.Message, w.Suggestion)
	}
	return res, nil
}

func loadSourcesConfig(path, homeDir string) (*sources.SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config file: %w", err)
	}

	var res sources.SourcesConfig
	if err = yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}

	if err = res.Validate(); err != nil {
		return nil, err
	}

	for i := range res.Datasets {
		d := &res.Datasets[i]
		if d.IsRemote() {
			continue
		}
		d.Location = expandHome(d.Location, homeDir)
		if !filepath.IsAbs(d.Location) {
			d.Location = filepath.Join(filepath.Dir(path), d.Location)
		}
	}
	return &res, nil
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(homeDir, rest)
	}
	return path
}
