// Package merge unions per-year tables into one longitudinal table.
package merge

import (
	"maps"
	"slices"

	"github.com/growthcenter/esdash/pkg/table"
)

// ColYear is the column that tags every merged row with its survey year.
const ColYear = "year"

// Years tags each table with its year and unions them by column name.
// Columns keep first-seen order over ascending years and `year` goes last
// unless some table already had it. Cells of columns a year does not have
// are nil. Rows come ordered by year, then by their original position.
// Nothing is deduplicated or dropped.
func Years(perYear map[int]*table.Table) *table.Table {
	years := slices.Sorted(maps.Keys(perYear))
	tagged := make([]*table.Table, 0, len(years))
	for _, y := range years {
		t := perYear[y]
		if t == nil {
			continue
		}
		tagged = append(tagged, tag(t, y))
	}

	return union([]string{ColYear}, tagged)
}

func tag(t *table.Table, year int) *table.Table {
	res := t.Empty()
	// an incoming year column is replaced, keeping its position
	res.Rows = make([]table.Row, len(t.Rows))
	for i, r := range t.Rows {
		nr := r.Clone()
		nr[ColYear] = float64(year)
		res.Rows[i] = nr
	}
	return res
}

// Concat unions tables by column name without tagging. Every row of the
// result has an entry for every column.
func Concat(tables ...*table.Table) *table.Table {
	return union(nil, tables)
}

// union collects columns of all tables, then the trailing ones, and copies
// rows padding absent cells with nil.
func union(trailing []string, tables []*table.Table) *table.Table {
	res := table.New()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			res.AddColumn(c)
		}
	}
	for _, c := range trailing {
		res.AddColumn(c)
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			nr := make(table.Row, len(res.Columns))
			for _, c := range res.Columns {
				nr[c] = r[c]
			}
			res.Rows = append(res.Rows, nr)
		}
	}
	return res
}
