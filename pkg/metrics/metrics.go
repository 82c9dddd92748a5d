// Package metrics derives per-respondent scores from Likert items: the KE0
// imputation, dimension averages and the categories used by reports.
package metrics

import (
	"math"

	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/table"
)

// Derived and source column names.
const (
	ColSAT         = "SAT"
	ColNPS         = "NPS"
	ColEMO         = "EMO"
	ColKE0         = "KE0"
	ColKE1         = "KE1"
	ColSubmitDate  = "submit_date"
	ColCategorySAT = "category_sat"
	ColCategoryKE1 = "category_ke1"
	ColCategoryNPS = "category_nps"
	ColGallupAvg   = "gallup_avg"
	ColEngagement  = "engagement"
)

// KE0 siblings used for imputation.
var keSiblings = []string{"KE1", "KE2", "KE3"}

// Satisfaction levels.
const (
	High   = "High"
	Medium = "Medium"
	Low    = "Low"
)

// NPS respondent categories.
const (
	Promoter  = "Promoter"
	Passive   = "Passive"
	Detractor = "Detractor"
)

// Engagement levels.
const (
	ActivelyDisengaged = "Actively Disengaged"
	NotEngaged         = "Not Engaged"
	ActivelyEngaged    = "Actively Engaged"
)

// SatisfactionLevels are satisfaction categories from the best down.
var SatisfactionLevels = []string{High, Medium, Low}

// NPSLevels are NPS categories from the best down.
var NPSLevels = []string{Promoter, Passive, Detractor}

// EngagementLevels are engagement categories from the worst up.
var EngagementLevels = []string{ActivelyDisengaged, NotEngaged, ActivelyEngaged}

// Engine computes derived columns.
type Engine struct {
	dims   []lookup.Dimension
	gallup []string
}

// New creates an Engine from dimension and Gallup item definitions.
func New(lk *lookup.Tables) *Engine {
	return &Engine{dims: lk.Dimensions, gallup: lk.GallupItems}
}

// Derive returns a copy of t with KE0 imputed, dimension averages and
// categories. Imputation always runs before averaging, so average_ke sees
// the imputed KE0.
func (e *Engine) Derive(t *table.Table) *table.Table {
	res := t.Clone()

	impute := hasAny(res, append([]string{ColKE0}, keSiblings...))
	if impute {
		res.AddColumn(ColKE0)
	}
	for _, d := range e.dims {
		res.AddColumn(d.AverageColumn())
	}
	for _, c := range []string{
		ColCategorySAT, ColCategoryKE1, ColCategoryNPS, ColGallupAvg, ColEngagement,
	} {
		res.AddColumn(c)
	}

	for _, row := range res.Rows {
		if impute {
			row[ColKE0] = ImputeKE0(row)
		}
		for _, d := range e.dims {
			row[d.AverageColumn()] = Average(row, d.Items)
		}
		row[ColCategorySAT] = Satisfaction(row[ColSAT])
		row[ColCategoryKE1] = Satisfaction(row[ColKE1])
		row[ColCategoryNPS] = NPSCategory(row[ColNPS])

		g, ok := mean(row, e.gallup)
		if ok {
			row[ColGallupAvg] = Round(g, 2)
			row[ColEngagement] = Engagement(g)
		} else {
			row[ColGallupAvg] = nil
			row[ColEngagement] = nil
		}
	}
	return res
}

// ImputeKE0 returns KE0 of the row, or, when it is missing or 0, the mean
// of KE1..KE3 rounded to a whole number. It returns nil when none of the
// siblings is available.
func ImputeKE0(row table.Row) table.Value {
	if f, ok := table.Float(row[ColKE0]); ok && f != 0 {
		return f
	}
	m, ok := mean(row, keSiblings)
	if !ok {
		return nil
	}
	return math.RoundToEven(m)
}

// Average is the mean of available items rounded to 2 decimals. Without
// any available item the result is nil, not zero.
func Average(row table.Row, items []string) table.Value {
	m, ok := mean(row, items)
	if !ok {
		return nil
	}
	return Round(m, 2)
}

// Round rounds half to even at the given number of decimals.
func Round(f float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(f*p) / p
}

// Satisfaction categorizes a 1-5 score: High from 4, Low up to 2.
func Satisfaction(v table.Value) table.Value {
	f, ok := table.Float(v)
	if !ok {
		return nil
	}
	switch {
	case f >= 4:
		return High
	case f <= 2:
		return Low
	}
	return Medium
}

// NPSCategory categorizes a 0-10 recommendation score.
func NPSCategory(v table.Value) table.Value {
	f, ok := table.Float(v)
	if !ok {
		return nil
	}
	switch {
	case f >= 9:
		return Promoter
	case f <= 6:
		return Detractor
	}
	return Passive
}

// Engagement categorizes a Gallup average.
func Engagement(avg float64) string {
	switch {
	case avg <= 2.75:
		return ActivelyDisengaged
	case avg <= 4.24:
		return NotEngaged
	}
	return ActivelyEngaged
}

// Participated is true when the row carries a submission date.
func Participated(row table.Row) bool {
	return !table.IsBlank(row[ColSubmitDate])
}

func mean(row table.Row, cols []string) (float64, bool) {
	var sum float64
	var n int
	for _, c := range cols {
		if f, ok := table.Float(row[c]); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func hasAny(t *table.Table, cols []string) bool {
	for _, c := range cols {
		if t.HasColumn(c) {
			return true
		}
	}
	return false
}
