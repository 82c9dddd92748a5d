// Package sources provides configuration and validation of raw datasets.
//
// sources.yaml lists where survey responses, the employee roster and the
// analyst credentials come from. A dataset is a local file or an http(s)
// URL (for example a spreadsheet exported as CSV), or a table inside a
// SQLite database.
package sources

// Sources loads sources.yaml.
type Sources interface {
	Load() (*SourcesConfig, error)
}

// Kind of a dataset.
type Kind string

const (
	KindSurvey      Kind = "survey"
	KindRoster      Kind = "roster"
	KindCredentials Kind = "credentials"
)

// Format of a dataset.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatSQLite Format = "sqlite"
)

// SourcesConfig represents the complete sources.yaml configuration file.
type SourcesConfig struct {
	// Datasets is the list of raw datasets.
	Datasets []Dataset `yaml:"datasets"`

	// Warnings holds non-fatal validation warnings (not serialized)
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Dataset    string // Dataset label, e.g. "survey 2024"
	Field      string // Field name that has the issue
	Message    string // Description of the issue
	Suggestion string // How to fix it
}

// Dataset describes one raw table.
type Dataset struct {
	// Kind is survey, roster or credentials.
	Kind Kind `yaml:"kind"`

	// Year of a survey. Ignored for other kinds.
	Year int `yaml:"year,omitempty"`

	// Location is a file path or an http(s) URL.
	// Paths starting with ~/ are relative to the home directory.
	Location string `yaml:"location"`

	// Format is csv, tsv or sqlite. When empty it is detected from the
	// location extension and falls back to csv.
	Format Format `yaml:"format,omitempty"`

	// Table is the table name inside a SQLite database.
	Table string `yaml:"table,omitempty"`
}
