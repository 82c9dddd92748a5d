package pipeline

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// MissingYearError is returned when a configured survey year has no data.
func MissingYearError(year int) error {
	msg := `No survey data for year <em>%d</em>

<em>How to fix:</em>
  1. Add a survey dataset for %d to sources.yaml
  2. Or remove %d from <em>survey.years</em> in config.yaml`

	return &gn.Error{
		Code: errcode.PipelineMissingYearError,
		Msg:  msg,
		Vars: []any{year, year, year},
		Err:  fmt.Errorf("survey data for year %d is missing", year),
	}
}

// NoYearsError is returned when there is no survey year to finalize.
func NoYearsError() error {
	msg := `No survey years to finalize

Add survey datasets to sources.yaml or set <em>survey.years</em> in config.yaml`

	return &gn.Error{
		Code: errcode.PipelineNoYearsError,
		Msg:  msg,
		Err:  fmt.Errorf("no survey years"),
	}
}

// MissingRosterError is returned when the roster table is absent.
func MissingRosterError() error {
	msg := `No roster data

The roster is required to compute participation.
Add a dataset with <em>kind: roster</em> to sources.yaml`

	return &gn.Error{
		Code: errcode.PipelineMissingRosterError,
		Msg:  msg,
		Err:  fmt.Errorf("roster data is missing"),
	}
}

// MissingCredentialsError is returned when the credentials table is absent.
func MissingCredentialsError() error {
	msg := `No credentials data

Add a dataset with <em>kind: credentials</em> to sources.yaml`

	return &gn.Error{
		Code: errcode.PipelineMissingCredentialsError,
		Msg:  msg,
		Err:  fmt.Errorf("credentials data is missing"),
	}
}

// FetchError wraps a failure of the fetcher.
func FetchError(what string, err error) error {
	msg := `Cannot fetch <em>%s</em>`
	return &gn.Error{
		Code: errcode.FetchReadError,
		Msg:  msg,
		Vars: []any{what},
		Err:  fmt.Errorf("fetch %s: %w", what, err),
	}
}
