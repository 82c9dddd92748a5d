package aggregate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/growthcenter/esdash/pkg/metrics"
	"github.com/growthcenter/esdash/pkg/table"
)

// ColItem names the first column of a year comparison.
const ColItem = "item"

// RowN labels the respondent count row of a year comparison.
const RowN = "N"

// Missing labels groups without a value in CompareBy.
const Missing = "Missing"

// AverageColumn is the year comparison column with means of a year.
func AverageColumn(year int) string { return fmt.Sprintf("Average %d", year) }

// ProgressColumn holds the change against the previous year.
func ProgressColumn(year int) string { return fmt.Sprintf("Progress %d", year) }

// MeanColumn is the per-demography mean of a year.
func MeanColumn(year int) string { return fmt.Sprintf("%d Mean", year) }

// NColumn is the per-demography count of a year.
func NColumn(year int) string { return fmt.Sprintf("%d N", year) }

// Compare builds a year-over-year table: one row per value column with its
// mean in every year and the progress against the previous year, followed
// by an "N" row with the number of SAT answers per year.
func Compare(perYear map[int]*table.Table, valueCols []string) *table.Table {
	years := slices.Sorted(maps.Keys(perYear))
	cols := []string{ColItem}
	for i, y := range years {
		cols = append(cols, AverageColumn(y))
		if i > 0 {
			cols = append(cols, ProgressColumn(y))
		}
	}
	res := table.New(cols...)

	line := func(item string, value func(*table.Table) table.Value) {
		r := table.Row{ColItem: item}
		var prev table.Value
		for i, y := range years {
			cur := value(perYear[y])
			r[AverageColumn(y)] = cur
			if i > 0 {
				r[ProgressColumn(y)] = progress(prev, cur)
			}
			prev = cur
		}
		res.Rows = append(res.Rows, r)
	}

	for _, c := range valueCols {
		line(c, func(t *table.Table) table.Value {
			return columnMean(t, c)
		})
	}
	line(RowN, func(t *table.Table) table.Value {
		return float64(numeric(t, metrics.ColSAT))
	})
	return res
}

// CompareBy breaks the means of one value column down by a demography
// column for every year. Missing demography values form the "Missing"
// group. Columns per year are "<year> N", "<year> Mean" and, after the
// first year, "Progress <year>".
//
// The result is meant for guard.Check with all "<year> N" columns as count
// columns.
func CompareBy(perYear map[int]*table.Table, valueCol, by string) *table.Table {
	years := slices.Sorted(maps.Keys(perYear))
	cols := []string{by}
	for i, y := range years {
		cols = append(cols, NColumn(y), MeanColumn(y))
		if i > 0 {
			cols = append(cols, ProgressColumn(y))
		}
	}
	res := table.New(cols...)

	type stat struct {
		mean table.Value
		n    int
	}
	stats := make(map[int]map[string]stat)
	var keys []table.Value
	seen := make(map[string]struct{})
	for _, y := range years {
		stats[y] = make(map[string]stat)
		t := perYear[y]
		if t == nil {
			continue
		}
		filled := t.Clone()
		for _, r := range filled.Rows {
			if table.IsMissing(r[by]) {
				r[by] = Missing
			}
		}
		m := Mean(filled, valueCol, by)
		for _, r := range m.Rows {
			k := table.Text(r[by])
			n, _ := table.Int(r[ColN])
			stats[y][k] = stat{mean: r[ColMean], n: n}
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, r[by])
			}
		}
	}
	slices.SortStableFunc(keys, table.Compare)

	for _, k := range keys {
		r := table.Row{by: k}
		var prev table.Value
		for i, y := range years {
			s, ok := stats[y][table.Text(k)]
			var cur table.Value
			if ok {
				cur = s.mean
			}
			r[NColumn(y)] = float64(s.n)
			r[MeanColumn(y)] = cur
			if i > 0 {
				r[ProgressColumn(y)] = progress(prev, cur)
			}
			prev = cur
		}
		res.Rows = append(res.Rows, r)
	}
	return res
}

// NColumns returns count columns of a CompareBy result for the given years.
func NColumns(years []int) []string {
	res := make([]string, len(years))
	for i, y := range slices.Sorted(slices.Values(years)) {
		res[i] = NColumn(y)
	}
	return res
}

func progress(prev, cur table.Value) table.Value {
	p, okP := table.Float(prev)
	c, okC := table.Float(cur)
	if !okP || !okC {
		return nil
	}
	return metrics.Round(c-p, 2)
}

func columnMean(t *table.Table, col string) table.Value {
	if t == nil {
		return nil
	}
	var sum float64
	var n int
	for _, r := range t.Rows {
		if f, ok := table.Float(r[col]); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return metrics.Round(sum/float64(n), 2)
}

func numeric(t *table.Table, col string) int {
	if t == nil {
		return 0
	}
	var res int
	for _, r := range t.Rows {
		if _, ok := table.Float(r[col]); ok {
			res++
		}
	}
	return res
}
