// Package schema provides database models of esdash exports.
package schema

import (
	"time"
)

// SummaryView is the materialized view with respondent counts per group.
const SummaryView = "respondent_summary"

// ExportRun records one export of a finalized merged table. Its ID is the
// fingerprint of the table, so exporting the same data again updates the
// same run.
type ExportRun struct {
	// ID is the fingerprint of the merged table.
	ID string `gorm:"type:uuid;primaryKey"`

	// Years are finalized years joined by comma, e.g. "2023,2024".
	Years string `gorm:"type:varchar(255);not null"`

	// Respondents is the number of exported rows.
	Respondents int `gorm:"not null;default:0"`

	// Columns is the number of columns of the merged table.
	Columns int `gorm:"not null;default:0"`

	// Version of esdash that made the export.
	Version string `gorm:"type:varchar(50)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Respondent is one row of the merged survey table.
type Respondent struct {
	// ID is UUID v5 of the run ID and the row position.
	ID string `gorm:"type:uuid;primaryKey"`

	// RunID points to ExportRun.
	RunID string `gorm:"type:uuid;not null;index:idx_respondents_run_year"`

	// Year is the survey year.
	Year int `gorm:"not null;index:idx_respondents_run_year"`

	// NIK is the employee number as text, empty when missing.
	NIK string `gorm:"column:nik;type:varchar(50);index"`

	// Unit is the normalized business unit.
	Unit string `gorm:"type:varchar(255);index"`

	// Subunit is the normalized subunit.
	Subunit string `gorm:"type:varchar(255)"`

	// Record keeps every column of the row as a JSON object.
	Record []byte `gorm:"type:jsonb;not null"`
}

// RespondentColumns are the columns filled by bulk COPY.
var RespondentColumns = []string{
	"id", "run_id", "year", "nik", "unit", "subunit", "record",
}
