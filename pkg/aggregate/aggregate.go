// Package aggregate computes grouped summaries for reports. Every output
// table carries a count column, so it can be passed to guard.Check before
// anyone sees it.
//
// Rows with a missing value in any grouping column are left out of the
// groups. Groups are sorted by their values, numbers first.
package aggregate

import (
	"slices"
	"strings"

	"github.com/growthcenter/esdash/pkg/metrics"
	"github.com/growthcenter/esdash/pkg/table"
)

// Output column names.
const (
	ColN       = "n"
	ColCount   = "count"
	ColPct     = "pct"
	ColMean    = "mean"
	ColDone    = "done"
	ColNotDone = "not_done"
	ColPctDone = "pct_done"
	ColNIK     = "nik"
)

type group struct {
	vals []table.Value
	rows []table.Row
}

// groupBy splits rows by the values of the given columns. Without columns
// all rows form one group.
func groupBy(t *table.Table, by []string) []*group {
	idx := make(map[string]*group)
	var res []*group
	if t == nil {
		return res
	}
	for _, r := range t.Rows {
		vals := make([]table.Value, len(by))
		parts := make([]string, len(by))
		skip := false
		for i, c := range by {
			v := r[c]
			if table.IsMissing(v) {
				skip = true
				break
			}
			vals[i] = v
			parts[i] = table.Text(v)
		}
		if skip {
			continue
		}
		k := strings.Join(parts, "\x1f")
		g, ok := idx[k]
		if !ok {
			g = &group{vals: vals}
			idx[k] = g
			res = append(res, g)
		}
		g.rows = append(g.rows, r)
	}

	slices.SortStableFunc(res, func(a, b *group) int {
		for i := range a.vals {
			if d := table.Compare(a.vals[i], b.vals[i]); d != 0 {
				return d
			}
		}
		return 0
	})
	return res
}

func (g *group) row(by []string) table.Row {
	res := make(table.Row, len(by)+4)
	for i, c := range by {
		res[c] = g.vals[i]
	}
	return res
}

// Count counts rows per group.
func Count(t *table.Table, by ...string) *table.Table {
	res := table.New(append(slices.Clone(by), ColN)...)
	for _, g := range groupBy(t, by) {
		r := g.row(by)
		r[ColN] = float64(len(g.rows))
		res.Rows = append(res.Rows, r)
	}
	return res
}

// CountUnique counts distinct non-missing values of idCol per group.
func CountUnique(t *table.Table, idCol string, by ...string) *table.Table {
	res := table.New(append(slices.Clone(by), ColN)...)
	for _, g := range groupBy(t, by) {
		r := g.row(by)
		r[ColN] = float64(unique(g.rows, idCol, nil))
		res.Rows = append(res.Rows, r)
	}
	return res
}

// Mean averages valueCol per group. The mean is rounded to 2 decimals and n
// is the number of numeric values. Groups without any numeric value are
// left out.
func Mean(t *table.Table, valueCol string, by ...string) *table.Table {
	res := table.New(append(slices.Clone(by), ColMean, ColN)...)
	for _, g := range groupBy(t, by) {
		var sum float64
		var n int
		for _, row := range g.rows {
			if f, ok := table.Float(row[valueCol]); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			continue
		}
		r := g.row(by)
		r[ColMean] = metrics.Round(sum/float64(n), 2)
		r[ColN] = float64(n)
		res.Rows = append(res.Rows, r)
	}
	return res
}

// Distribution counts the levels of valueCol per group in long format: one
// row per group and level with the level count, its percentage and the
// group total n. Levels are matched on canonical text. Without levels the
// distinct values of the column are used. Values outside the levels are
// ignored.
func Distribution(
	t *table.Table,
	valueCol string,
	levels []string,
	by ...string,
) *table.Table {
	if len(levels) == 0 {
		for _, v := range distinct(t, valueCol) {
			levels = append(levels, table.Text(v))
		}
	}

	cols := append(slices.Clone(by), valueCol, ColCount, ColPct, ColN)
	res := table.New(cols...)
	for _, g := range groupBy(t, by) {
		counts := make(map[string]int, len(levels))
		var total int
		for _, row := range g.rows {
			s := table.Text(row[valueCol])
			if table.IsMissing(row[valueCol]) || !slices.Contains(levels, s) {
				continue
			}
			counts[s]++
			total++
		}
		if total == 0 {
			continue
		}
		for _, l := range levels {
			r := g.row(by)
			r[valueCol] = table.Infer(l)
			r[ColCount] = float64(counts[l])
			r[ColPct] = metrics.Round(float64(counts[l])/float64(total)*100, 2)
			r[ColN] = float64(total)
			res.Rows = append(res.Rows, r)
		}
	}
	return res
}

// Cross counts combinations of two columns. Percentages are of the grand
// total of rows where both values are present.
func Cross(t *table.Table, a, b string) *table.Table {
	res := table.New(a, b, ColN, ColPct)
	gg := groupBy(t, []string{a, b})
	var total int
	for _, g := range gg {
		total += len(g.rows)
	}
	for _, g := range gg {
		r := g.row([]string{a, b})
		r[ColN] = float64(len(g.rows))
		r[ColPct] = metrics.Round(float64(len(g.rows))/float64(total)*100, 2)
		res.Rows = append(res.Rows, r)
	}
	return res
}

// Participation counts distinct employees per group and how many of them
// submitted the survey. The input is the union of responses and roster.
// Employees are identified by nik, rows without nik are ignored.
func Participation(combined *table.Table, by ...string) *table.Table {
	cols := append(slices.Clone(by), ColDone, ColNotDone, ColN, ColPctDone)
	res := table.New(cols...)
	for _, g := range groupBy(combined, by) {
		total := unique(g.rows, ColNIK, nil)
		if total == 0 {
			continue
		}
		done := unique(g.rows, ColNIK, metrics.Participated)
		r := g.row(by)
		r[ColDone] = float64(done)
		r[ColNotDone] = float64(total - done)
		r[ColN] = float64(total)
		r[ColPctDone] = metrics.Round(float64(done)/float64(total)*100, 2)
		res.Rows = append(res.Rows, r)
	}
	return res
}

// SortBy reorders rows by a column with a rank function, for columns with
// a natural order such as layer or tenure bucket. The sort is stable, so
// the order within equal ranks is kept.
func SortBy(t *table.Table, col string, rank func(string) int) {
	slices.SortStableFunc(t.Rows, func(a, b table.Row) int {
		return rank(table.Text(a[col])) - rank(table.Text(b[col]))
	})
}

func unique(rows []table.Row, col string, keep func(table.Row) bool) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		v := r[col]
		if table.IsMissing(v) {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		seen[table.Text(v)] = struct{}{}
	}
	return len(seen)
}

func distinct(t *table.Table, col string) []table.Value {
	var res []table.Value
	seen := make(map[string]struct{})
	for _, v := range t.Column(col) {
		if table.IsMissing(v) {
			continue
		}
		s := table.Text(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, v)
	}
	slices.SortStableFunc(res, table.Compare)
	return res
}
