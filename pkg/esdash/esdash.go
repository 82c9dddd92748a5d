// Package esdash defines contracts between the survey finalization core and
// the outside world.
//
// The core never fetches anything itself. It receives raw tables from a
// Fetcher, so any source (files, HTTP spreadsheet exports, SQLite) can be
// plugged in without touching normalization or metrics.
package esdash

import (
	"context"

	"github.com/growthcenter/esdash/pkg/table"
)

// Fetcher provides raw, untyped tables. Cells are numbers when they look
// like numbers and strings otherwise.
type Fetcher interface {
	// Survey returns responses of one survey year. A year without a
	// dataset is an error.
	Survey(ctx context.Context, year int) (*table.Table, error)

	// Roster returns the HR roster of all eligible employees.
	Roster(ctx context.Context) (*table.Table, error)

	// Credentials returns analyst accounts with their authorized units.
	Credentials(ctx context.Context) (*table.Table, error)
}

// SchemaManager creates and migrates the export database. Config is
// provided during construction.
type SchemaManager interface {
	// Create creates tables with GORM AutoMigrate, applies "C" collation
	// to grouping columns and creates the summary view.
	Create(ctx context.Context) error

	// Migrate updates tables to the current models. Views are dropped
	// first and recreated when recreateViews is true.
	Migrate(ctx context.Context, recreateViews bool) error
}

// Run describes one finalized merged table to export.
type Run struct {
	// Fingerprint identifies the content of Merged.
	Fingerprint string
	// Years are the finalized years.
	Years []int
	// Merged is the longitudinal survey table.
	Merged *table.Table
}

// Exporter saves finalized data to the export database. Exporting the
// same run twice replaces its rows.
type Exporter interface {
	Export(ctx context.Context, run Run) (int, error)
}
