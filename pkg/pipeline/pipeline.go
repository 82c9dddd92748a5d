// Package pipeline runs survey finalization: per-year normalization and
// metrics, the multi-year merge, roster normalization and the
// participation table.
//
// Run is a pure function of its inputs. Running it twice on the same raw
// tables gives identical results.
package pipeline

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/access"
	"github.com/growthcenter/esdash/pkg/esdash"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/merge"
	"github.com/growthcenter/esdash/pkg/metrics"
	"github.com/growthcenter/esdash/pkg/normalize"
	"github.com/growthcenter/esdash/pkg/table"
)

// Inputs are raw tables as they come from a fetcher.
type Inputs struct {
	Surveys     map[int]*table.Table
	Roster      *table.Table
	Credentials *table.Table
}

// Options control one run.
type Options struct {
	// Years to finalize. Empty means every year present in Inputs.
	Years []int
	// ApplyOverrides enables per-employee unit and subunit corrections.
	ApplyOverrides bool
	// LegacyRemaps enables marital and education renames.
	LegacyRemaps bool
	// ParticipationYear selects survey responses joined with the roster.
	// Zero means the latest year.
	ParticipationYear int
}

// Note is a data-quality observation. Notes never stop the pipeline.
type Note struct {
	Source  string
	Message string
}

func (n Note) String() string {
	return fmt.Sprintf("%s: %s", n.Source, n.Message)
}

// Result of finalization.
type Result struct {
	// Years are the finalized years in ascending order.
	Years []int
	// PerYear holds normalized survey tables with derived metrics.
	PerYear map[int]*table.Table
	// Merged is the longitudinal table of all years tagged with `year`.
	Merged *table.Table
	// Roster is the normalized roster.
	Roster *table.Table
	// Participation is the union of the participation year responses and
	// the roster.
	Participation *table.Table
	// Credentials is the credentials table as fetched.
	Credentials *table.Table
	// Accounts are analysts parsed from Credentials.
	Accounts map[string]access.Account
	// Notes are data-quality observations.
	Notes []Note
	// Fingerprint identifies the content of Merged.
	Fingerprint string
}

// Run finalizes already fetched tables.
func Run(in Inputs, lk *lookup.Tables, opts Options) (*Result, error) {
	years := opts.Years
	if len(years) == 0 {
		years = slices.Sorted(maps.Keys(in.Surveys))
	} else {
		years = slices.Sorted(slices.Values(years))
		years = slices.Compact(years)
	}
	if len(years) == 0 {
		return nil, NoYearsError()
	}
	for _, y := range years {
		if in.Surveys[y] == nil {
			return nil, MissingYearError(y)
		}
	}
	if in.Roster == nil {
		return nil, MissingRosterError()
	}
	if in.Credentials == nil {
		return nil, MissingCredentialsError()
	}

	norm := normalize.New(
		lk,
		normalize.OptApplyOverrides(opts.ApplyOverrides),
		normalize.OptLegacyRemaps(opts.LegacyRemaps),
	)
	eng := metrics.New(lk)

	res := &Result{
		Years:       years,
		PerYear:     make(map[int]*table.Table, len(years)),
		Credentials: in.Credentials.Clone(),
	}

	for _, y := range years {
		src := fmt.Sprintf("survey %d", y)
		t, rep := norm.Normalize(in.Surveys[y])
		res.addNotes(src, rep.Notes())
		res.addNotes(src, duplicates(t))
		res.PerYear[y] = eng.Derive(t)
	}

	roster, rep := norm.Normalize(in.Roster)
	res.addNotes("roster", rep.Notes())
	res.Roster = roster

	res.Merged = merge.Years(res.PerYear)
	res.Fingerprint = table.Fingerprint(res.Merged)

	py := opts.ParticipationYear
	if py == 0 && len(years) > 0 {
		py = years[len(years)-1]
	}
	res.Participation = merge.Concat(res.PerYear[py], res.Roster)

	res.Accounts = access.Parse(res.Credentials)
	return res, nil
}

// Finalize fetches raw tables and runs the pipeline on them.
func Finalize(
	ctx context.Context,
	f esdash.Fetcher,
	lk *lookup.Tables,
	opts Options,
) (*Result, error) {
	var err error
	in := Inputs{Surveys: make(map[int]*table.Table, len(opts.Years))}
	for _, y := range opts.Years {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if in.Surveys[y], err = f.Survey(ctx, y); err != nil {
			return nil, FetchError(fmt.Sprintf("survey %d", y), err)
		}
	}
	if in.Roster, err = f.Roster(ctx); err != nil {
		return nil, FetchError("roster", err)
	}
	if in.Credentials, err = f.Credentials(ctx); err != nil {
		return nil, FetchError("credentials", err)
	}

	res, err := Run(in, lk, opts)
	if err != nil {
		return nil, err
	}
	if len(res.Notes) > 0 {
		gn.Warn("Finalization produced <em>%d</em> data-quality note(s)", len(res.Notes))
	}
	return res, nil
}

func (r *Result) addNotes(src string, msgs []string) {
	for _, m := range msgs {
		r.Notes = append(r.Notes, Note{Source: src, Message: m})
	}
}

// duplicates reports employees that answered more than once. They are
// kept in the data.
func duplicates(t *table.Table) []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range t.Rows {
		v := r[normalize.ColNIK]
		if table.IsMissing(v) {
			continue
		}
		k := table.Text(v)
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	var res []string
	for _, k := range order {
		if counts[k] > 1 {
			res = append(res, fmt.Sprintf("nik %s appears %d times", k, counts[k]))
		}
	}
	return res
}
