// Package guard keeps aggregated output from exposing individual
// respondents. A group backed by fewer than two people is never shown.
//
// The guard never fails. Unexpected input degrades to "nothing removed" or
// to an empty table with a reason.
package guard

import (
	"fmt"
	"strings"

	"github.com/growthcenter/esdash/pkg/table"
)

// DefaultMinN is the smallest group size that can be displayed.
const DefaultMinN = 2

// ColN is the default count column of aggregated tables.
const ColN = "n"

// Unavailable is the reason given for tables too small to display.
const Unavailable = "Data is unavailable to protect confidentiality."

// Verdict tells whether a table may be displayed.
type Verdict struct {
	Available bool
	Reason    string
}

// Check removes every group whose contributing count n satisfies
// 0 < n < minN. A minN below DefaultMinN is raised to it.
//
// Counts come from countCols, or from the "n" column when none is given.
// With several count columns a group is removed when any of them is in
// range. When none of the count columns exist, rows of the same group key
// are counted instead. The second value is the number of distinct group
// keys removed.
func Check(
	aggregated *table.Table,
	groupCols []string,
	minN int,
	countCols ...string,
) (*table.Table, int) {
	if aggregated == nil {
		return table.New(), 0
	}
	if minN < DefaultMinN {
		minN = DefaultMinN
	}
	if len(countCols) == 0 {
		countCols = []string{ColN}
	}

	var present []string
	for _, c := range countCols {
		if aggregated.HasColumn(c) {
			present = append(present, c)
		}
	}

	small := make(map[string]struct{})
	if len(present) > 0 {
		for _, r := range aggregated.Rows {
			for _, c := range present {
				n, ok := table.Float(r[c])
				if ok && n > 0 && n < float64(minN) {
					small[key(r, groupCols)] = struct{}{}
					break
				}
			}
		}
	} else {
		counts := make(map[string]int)
		for _, r := range aggregated.Rows {
			counts[key(r, groupCols)]++
		}
		for k, n := range counts {
			if n > 0 && n < minN {
				small[k] = struct{}{}
			}
		}
	}

	safe := aggregated.Where(func(r table.Row) bool {
		_, ok := small[key(r, groupCols)]
		return !ok
	})
	return safe.Clone(), len(small)
}

// Table refuses to hand out a working table with one row or less. The
// returned table then has the same columns and no rows.
func Table(t *table.Table) (*table.Table, Verdict) {
	if t.Len() <= 1 {
		return t.Empty(), Verdict{Available: false, Reason: Unavailable}
	}
	return t, Verdict{Available: true}
}

// Disclaimer describes removed groups for a reader. It is empty when
// nothing was removed.
func Disclaimer(removed int, column string) string {
	if removed <= 0 {
		return ""
	}
	return fmt.Sprintf(
		"Disclaimer: %d entry/entries in the '%s' column were removed "+
			"to protect confidentiality (N=1).",
		removed, capitalize(column),
	)
}

func key(r table.Row, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := r[c]
		if table.IsMissing(v) {
			parts[i] = "\x00"
			continue
		}
		parts[i] = table.Text(v)
	}
	return strings.Join(parts, "\x1f")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
