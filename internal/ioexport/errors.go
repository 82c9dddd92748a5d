package ioexport

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// RunError is returned when the export run cannot be registered or its
// old rows cannot be replaced.
func RunError(runID string, err error) error {
	return &gn.Error{
		Code: errcode.ExportRunError,
		Msg:  "Cannot save export run <em>%s</em>",
		Vars: []any{runID},
		Err:  fmt.Errorf("export run %s: %w", runID, err),
	}
}

// CopyError is returned when bulk COPY of respondents fails.
func CopyError(runID string, offset int, err error) error {
	msg := `Cannot copy respondents of run <em>%s</em> at row %d

Nothing was saved, the export can be repeated safely`

	return &gn.Error{
		Code: errcode.ExportCopyError,
		Msg:  msg,
		Vars: []any{runID, offset},
		Err:  fmt.Errorf("copy respondents at %d: %w", offset, err),
	}
}

// FormatError is returned for an unknown file export format.
func FormatError(format string) error {
	msg := `Unknown export format <em>%s</em>

Use one of: csv, tsv, compact, pretty`

	return &gn.Error{
		Code: errcode.ExportFormatError,
		Msg:  msg,
		Vars: []any{format},
		Err:  fmt.Errorf("unknown export format %q", format),
	}
}

// AnalyzeError is returned when statistics of export tables cannot be
// updated. The exported data is already committed.
func AnalyzeError(err error) error {
	return &gn.Error{
		Code: errcode.ExportAnalyzeError,
		Msg:  "Data is saved, but <em>VACUUM ANALYZE</em> failed",
		Err:  fmt.Errorf("vacuum analyze: %w", err),
	}
}
