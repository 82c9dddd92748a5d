// Package templates provides embedded YAML configuration templates.
package templates

import _ "embed"

// SourcesYAML contains the default sources.yaml template with survey, roster
// and credentials datasets.
//
//go:embed sources.yaml
var SourcesYAML string

// ConfigYAML contains the default config.yaml template for application configuration.
//
//go:embed config.yaml
var ConfigYAML string

// LookupsYAML contains placeholder tokens, remaps, layer codes, tenure
// buckets, survey dimensions and per-employee overrides.
//
//go:embed lookups.yaml
var LookupsYAML string
