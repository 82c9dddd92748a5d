package sources

import (
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
)

// Validate checks the configuration for errors and applies defaults.
func (c *SourcesConfig) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets specified in configuration")
	}

	seen := make(map[string]int)
	for i := range c.Datasets {
		d := &c.Datasets[i]
		warnings, err := d.Validate()
		if err != nil {
			return fmt.Errorf("dataset %d: %w", i+1, err)
		}
		c.Warnings = append(c.Warnings, warnings...)

		label := d.Label()
		if j, ok := seen[label]; ok {
			return fmt.Errorf(
				"dataset %d: %s is already defined by dataset %d", i+1, label, j,
			)
		}
		seen[label] = i + 1
	}

	for _, k := range []Kind{KindRoster, KindCredentials} {
		if _, ok := seen[string(k)]; !ok {
			c.Warnings = append(c.Warnings, ValidationWarning{
				Dataset:    string(k),
				Field:      "kind",
				Message:    fmt.Sprintf("no %s dataset is configured", k),
				Suggestion: fmt.Sprintf("Add a dataset with 'kind: %s'", k),
			})
		}
	}
	return nil
}

// Validate checks a single dataset and fills in its format.
// File system checks are deferred to the I/O layer.
// Returns a slice of warnings (non-fatal issues) and an error (fatal issues).
func (d *Dataset) Validate() ([]ValidationWarning, error) {
	var warnings []ValidationWarning

	d.Kind = Kind(strings.ToLower(strings.TrimSpace(string(d.Kind))))
	if !slices.Contains([]Kind{KindSurvey, KindRoster, KindCredentials}, d.Kind) {
		return nil, fmt.Errorf(
			"invalid kind '%s': must be 'survey', 'roster' or 'credentials'", d.Kind,
		)
	}

	if d.Kind == KindSurvey && d.Year == 0 {
		return nil, fmt.Errorf("year is required for survey datasets")
	}
	if d.Kind != KindSurvey && d.Year != 0 {
		warnings = append(warnings, ValidationWarning{
			Dataset:    d.Label(),
			Field:      "year",
			Message:    fmt.Sprintf("year is ignored for %s datasets", d.Kind),
			Suggestion: "Remove 'year' from this dataset",
		})
		d.Year = 0
	}

	d.Location = strings.TrimSpace(d.Location)
	if d.Location == "" {
		return nil, fmt.Errorf("location is required")
	}

	if d.Format == "" {
		d.Format = DetectFormat(d.Location)
	}
	d.Format = Format(strings.ToLower(string(d.Format)))
	if !slices.Contains([]Format{FormatCSV, FormatTSV, FormatSQLite}, d.Format) {
		return nil, fmt.Errorf(
			"invalid format '%s': must be 'csv', 'tsv' or 'sqlite'", d.Format,
		)
	}

	if d.Format == FormatSQLite {
		if d.Table == "" {
			return nil, fmt.Errorf("table is required for sqlite datasets")
		}
		if IsValidURL(d.Location) {
			return nil, fmt.Errorf("sqlite datasets must be local files")
		}
	} else if d.Table != "" {
		warnings = append(warnings, ValidationWarning{
			Dataset:    d.Label(),
			Field:      "table",
			Message:    fmt.Sprintf("table is ignored for %s datasets", d.Format),
			Suggestion: "Remove 'table' or set 'format: sqlite'",
		})
	}

	return warnings, nil
}

// Label identifies a dataset in messages, e.g. "survey 2024" or "roster".
func (d Dataset) Label() string {
	if d.Kind == KindSurvey {
		return fmt.Sprintf("%s %d", d.Kind, d.Year)
	}
	return string(d.Kind)
}

// IsRemote is true for datasets fetched over HTTP.
func (d Dataset) IsRemote() bool {
	return IsValidURL(d.Location)
}

// Survey returns the survey dataset of a year.
func (c *SourcesConfig) Survey(year int) (Dataset, bool) {
	return c.find(KindSurvey, year)
}

// Roster returns the roster dataset.
func (c *SourcesConfig) Roster() (Dataset, bool) {
	return c.find(KindRoster, 0)
}

// Credentials returns the credentials dataset.
func (c *SourcesConfig) Credentials() (Dataset, bool) {
	return c.find(KindCredentials, 0)
}

// Years returns survey years in ascending order.
func (c *SourcesConfig) Years() []int {
	var res []int
	for _, d := range c.Datasets {
		if d.Kind == KindSurvey {
			res = append(res, d.Year)
		}
	}
	slices.Sort(res)
	return slices.Compact(res)
}

func (c *SourcesConfig) find(k Kind, year int) (Dataset, bool) {
	for _, d := range c.Datasets {
		if d.Kind == k && d.Year == year {
			return d, true
		}
	}
	return Dataset{}, false
}

// DetectFormat guesses the format from the location extension.
// Query strings of URLs are ignored. Unknown extensions mean csv.
func DetectFormat(location string) Format {
	path := location
	if u, err := url.Parse(location); err == nil && IsValidURL(location) {
		path = u.Path
		if f := u.Query().Get("format"); f != "" {
			path = "x." + f
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// IsValidURL checks if a string is a valid URL.
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
