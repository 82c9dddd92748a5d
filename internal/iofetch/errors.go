package iofetch

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// DatasetNotFoundError is returned when sources.yaml has no dataset of the
// requested kind or year, or when a local file does not exist.
func DatasetNotFoundError(label, location string) error {
	msg := `Cannot find dataset <em>%s</em>

<em>Location:</em> %s

<em>How to fix:</em>
  1. Add the dataset to sources.yaml
  2. Check the path or URL of its location`

	return &gn.Error{
		Code: errcode.FetchDatasetNotFoundError,
		Msg:  msg,
		Vars: []any{label, location},
		Err:  fmt.Errorf("dataset %s not found at '%s'", label, location),
	}
}

// ReadError is returned when a dataset cannot be read or parsed.
func ReadError(label string, err error) error {
	msg := "Cannot read dataset <em>%s</em>"
	return &gn.Error{
		Code: errcode.FetchReadError,
		Msg:  msg,
		Vars: []any{label},
		Err:  fmt.Errorf("cannot read %s: %w", label, err),
	}
}

// HTTPError is returned when a remote dataset cannot be downloaded.
func HTTPError(label, url string, err error) error {
	msg := `Cannot download dataset <em>%s</em>

<em>URL:</em> %s

<em>Possible causes:</em>
  - No network connection
  - The spreadsheet is not shared or published
  - The request timed out (see <em>fetch.timeout</em> in config.yaml)`

	return &gn.Error{
		Code: errcode.FetchHTTPError,
		Msg:  msg,
		Vars: []any{label, url},
		Err:  fmt.Errorf("cannot download %s: %w", label, err),
	}
}

// SQLiteError is returned when a table cannot be read from SQLite.
func SQLiteError(label, table string, err error) error {
	msg := "Cannot read table <em>%s</em> of dataset <em>%s</em>"
	return &gn.Error{
		Code: errcode.FetchSQLiteError,
		Msg:  msg,
		Vars: []any{table, label},
		Err:  fmt.Errorf("cannot read sqlite table %s of %s: %w", table, label, err),
	}
}

// CancelledError is returned when fetching is interrupted.
func CancelledError(err error) error {
	msg := "Fetching of datasets was cancelled"
	return &gn.Error{
		Code: errcode.FetchCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("fetch cancelled: %w", err),
	}
}
