// Package report builds summaries of finalized survey data that are safe
// to show to an analyst. Every report is scoped to the units of the
// analyst, filtered, aggregated and passed through the confidentiality
// guard, in that order.
package report

import (
	"fmt"
	"maps"
	"slices"

	"github.com/growthcenter/esdash/pkg/access"
	"github.com/growthcenter/esdash/pkg/aggregate"
	"github.com/growthcenter/esdash/pkg/filter"
	"github.com/growthcenter/esdash/pkg/guard"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/merge"
	"github.com/growthcenter/esdash/pkg/metrics"
	"github.com/growthcenter/esdash/pkg/normalize"
	"github.com/growthcenter/esdash/pkg/pipeline"
	"github.com/growthcenter/esdash/pkg/table"
)

// Kind selects the aggregation of a report.
type Kind string

const (
	Count         Kind = "count"
	Mean          Kind = "mean"
	Mood          Kind = "mood"
	NPS           Kind = "nps"
	Participation Kind = "participation"
	Engagement    Kind = "engagement"
	Cross         Kind = "cross"
	Compare       Kind = "compare"
)

// Kinds lists all report kinds.
var Kinds = []Kind{
	Count, Mean, Mood, NPS, Participation, Engagement, Cross, Compare,
}

// Request describes one report.
type Request struct {
	Kind Kind
	// By are grouping columns. Cross and CompareBy use only the first one.
	By []string
	// Value is the numeric column of mean and compare reports.
	Value string
	// Cross is the second column of a cross report.
	Cross string
	// Filter constrains rows before aggregation.
	Filter filter.Spec
	// User scopes data to the units of the account. Empty means no scoping.
	User string
	// Year selects one survey year. Zero means the merged table.
	Year int
	// MinGroupSize is the smallest group shown.
	MinGroupSize int
}

// Report is a guarded aggregated table.
type Report struct {
	Request Request
	Table   *table.Table
	// Applied are the filter constraints that took part.
	Applied []filter.Constraint
	// Disclaimers describe groups removed for confidentiality.
	Disclaimers []string
	// Available is false when nothing can be shown. Reason tells why.
	Available bool
	Reason    string
	// NPS is the net promoter score of nps reports, when the population is
	// large enough.
	NPS *metrics.NPSSummary
}

// Builder makes reports from one finalization result.
type Builder struct {
	res *pipeline.Result
	lk  *lookup.Tables
}

// New creates a Builder.
func New(res *pipeline.Result, lk *lookup.Tables) *Builder {
	return &Builder{res: res, lk: lk}
}

// Build makes a report. Errors are returned only for bad requests; lack
// of data gives a report that is not Available.
func (b *Builder) Build(req Request) (*Report, error) {
	if req.Kind == "" {
		req.Kind = Count
	}
	if err := b.validate(req); err != nil {
		return nil, err
	}

	scope, err := b.scope(req.User)
	if err != nil {
		return nil, err
	}

	if req.Kind == Compare {
		return b.compare(req, scope), nil
	}

	res := &Report{Request: req}
	fr := filter.Apply(scope(b.source(req)), req.Filter)
	res.Applied = fr.Applied
	if fr.Empty {
		res.Table = fr.Table
		res.Reason = fr.Reason
		return res, nil
	}

	working, verdict := guard.Table(fr.Table)
	if !verdict.Available {
		res.Table = working
		res.Reason = verdict.Reason
		return res, nil
	}

	agg, groupCols := b.aggregate(req, working)
	safe, removed := guard.Check(agg, groupCols, req.MinGroupSize)
	if len(groupCols) > 0 {
		if rank := b.rank(groupCols[0]); rank != nil {
			aggregate.SortBy(safe, groupCols[0], rank)
		}
	}

	if req.Kind == NPS {
		nps := metrics.NPS(working)
		if nps.Total >= max(req.MinGroupSize, guard.DefaultMinN) {
			res.NPS = &nps
		}
	}

	res.Table = safe
	res.addDisclaimer(removed, groupCols)
	if safe.IsEmpty() {
		res.Reason = guard.Unavailable
		return res, nil
	}
	res.Available = true
	return res, nil
}

// Options lists values of a column in the merged table to build filters.
// Only rows the user may see contribute; an empty user sees all rows.
// Layers and tenure buckets come in their natural order.
func (b *Builder) Options(dim, user string) ([]string, error) {
	scope, err := b.scope(user)
	if err != nil {
		return nil, err
	}
	return filter.Options(scope(b.orEmpty(b.res.Merged)), dim, b.rank(dim)), nil
}

func (b *Builder) validate(req Request) error {
	if !slices.Contains(Kinds, req.Kind) {
		return BadArgumentError(fmt.Sprintf("unknown report kind %q", req.Kind))
	}
	if req.Year != 0 && b.res.PerYear[req.Year] == nil {
		return BadArgumentError(fmt.Sprintf("year %d is not finalized", req.Year))
	}
	switch req.Kind {
	case Mean:
		if req.Value == "" {
			return BadArgumentError("mean report needs a value column")
		}
	case Cross:
		if len(req.By) == 0 || req.Cross == "" {
			return BadArgumentError("cross report needs a group column and a cross column")
		}
	case Compare:
		if len(req.By) > 0 && req.Value == "" {
			return BadArgumentError("comparison by a column needs a value column")
		}
	}
	return nil
}

func (b *Builder) scope(user string) (func(*table.Table) *table.Table, error) {
	if user == "" {
		return func(t *table.Table) *table.Table { return t }, nil
	}
	acc, ok := b.res.Accounts[user]
	if !ok {
		return nil, UnknownUserError(user)
	}
	return func(t *table.Table) *table.Table {
		return access.Scope(t, acc.Units)
	}, nil
}

func (b *Builder) source(req Request) *table.Table {
	if req.Kind == Participation {
		if req.Year == 0 || len(b.res.Years) == 0 ||
			req.Year == b.res.Years[len(b.res.Years)-1] {
			return b.orEmpty(b.res.Participation)
		}
		return merge.Concat(b.res.PerYear[req.Year], b.res.Roster)
	}
	if req.Year != 0 {
		return b.orEmpty(b.res.PerYear[req.Year])
	}
	return b.orEmpty(b.res.Merged)
}

// orEmpty replaces an absent table with an empty one.
func (b *Builder) orEmpty(t *table.Table) *table.Table {
	if t == nil {
		return table.New()
	}
	return t
}

func (b *Builder) aggregate(req Request, t *table.Table) (*table.Table, []string) {
	by := req.By
	switch req.Kind {
	case Mean:
		return aggregate.Mean(t, req.Value, by...), by
	case Mood:
		var levels []string
		for _, l := range b.lk.MoodLevels() {
			levels = append(levels, table.Text(float64(l)))
		}
		return aggregate.Distribution(t, metrics.ColEMO, levels, by...), by
	case NPS:
		return aggregate.Distribution(t, metrics.ColCategoryNPS, metrics.NPSLevels, by...), by
	case Engagement:
		return aggregate.Distribution(
			t, metrics.ColEngagement, metrics.EngagementLevels, by...,
		), by
	case Participation:
		return aggregate.Participation(t, by...), by
	case Cross:
		cols := []string{by[0], req.Cross}
		return aggregate.Cross(t, by[0], req.Cross), cols
	}
	return aggregate.Count(t, by...), by
}

// compare builds year-over-year tables. A year with fewer respondents
// than the minimal group size is blanked out as a whole.
func (b *Builder) compare(req Request, scope func(*table.Table) *table.Table) *Report {
	res := &Report{Request: req}
	minN := max(req.MinGroupSize, guard.DefaultMinN)

	perYear := make(map[int]*table.Table, len(b.res.PerYear))
	var hidden int
	for _, y := range slices.Sorted(maps.Keys(b.res.PerYear)) {
		fr := filter.Apply(scope(b.res.PerYear[y]), req.Filter)
		res.Applied = fr.Applied
		t := fr.Table
		if n := t.Len(); n > 0 && n < minN {
			t = t.Empty()
			hidden++
		}
		perYear[y] = t
	}

	// nothing left in any year
	if !slices.ContainsFunc(
		slices.Collect(maps.Values(perYear)),
		func(t *table.Table) bool { return t.Len() > 0 },
	) {
		res.Table = table.New()
		res.Reason = guard.Unavailable
		if hidden > 0 {
			res.Disclaimers = append(res.Disclaimers, guard.Disclaimer(hidden, "year"))
		}
		return res
	}

	if len(req.By) == 0 {
		cols := []string{req.Value}
		if req.Value == "" {
			cols = cols[:0]
			for _, d := range b.lk.Dimensions {
				cols = append(cols, d.AverageColumn())
			}
			cols = append(cols, metrics.ColGallupAvg)
		}
		res.Table = aggregate.Compare(perYear, cols)
		if hidden > 0 {
			res.Disclaimers = append(res.Disclaimers, guard.Disclaimer(hidden, "year"))
		}
	} else {
		by := req.By[0]
		years := slices.Sorted(maps.Keys(perYear))
		cmp := aggregate.CompareBy(perYear, req.Value, by)
		safe, removed := guard.Check(cmp, []string{by}, minN, aggregate.NColumns(years)...)
		if rank := b.rank(by); rank != nil {
			aggregate.SortBy(safe, by, rank)
		}
		res.Table = safe
		res.addDisclaimer(removed, []string{by})
	}

	if res.Table.IsEmpty() {
		res.Reason = guard.Unavailable
		return res
	}
	res.Available = true
	return res
}

func (b *Builder) rank(col string) func(string) int {
	switch col {
	case normalize.ColLayer:
		return func(s string) int { return normalize.LayerRank(b.lk, s) }
	case normalize.ColTenureCategory:
		return func(s string) int { return normalize.TenureRank(b.lk, s) }
	}
	return nil
}

func (r *Report) addDisclaimer(removed int, groupCols []string) {
	if removed == 0 {
		return
	}
	col := "total"
	if len(groupCols) > 0 {
		col = groupCols[0]
	}
	r.Disclaimers = append(r.Disclaimers, guard.Disclaimer(removed, col))
}
