// Package filter applies conjunctive (dimension, allowed values) constraints
// to single-year or merged tables.
package filter

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/growthcenter/esdash/pkg/table"
)

// ColYear is the one filter dimension that does not come from survey content.
const ColYear = "year"

// Spec maps a dimension to its allowed values. A dimension that is absent or
// has no values is not constrained.
type Spec map[string][]string

// Constraint is one applied dimension constraint.
type Constraint struct {
	Dimension string
	Values    []string
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s: %s", c.Dimension, strings.Join(c.Values, ", "))
}

// Result of applying a Spec.
type Result struct {
	// Table holds the matching rows. It is a new table, the input is never
	// modified.
	Table *table.Table
	// Applied lists the constraints that took part, sorted by dimension.
	Applied []Constraint
	// Empty is true when no rows matched.
	Empty bool
	// Reason explains an empty result.
	Reason string
}

// Apply keeps rows that satisfy every constraint of the spec. A row whose
// value for a constrained dimension is missing never matches, which also
// holds when the table has no such column. Because of that one spec gives
// consistent results on per-year tables and on their merge.
func Apply(t *table.Table, spec Spec) Result {
	applied := spec.Constraints()
	sets := make(map[string]map[string]struct{}, len(applied))
	for _, c := range applied {
		set := make(map[string]struct{}, len(c.Values))
		for _, v := range c.Values {
			set[Canonical(c.Dimension, v)] = struct{}{}
		}
		sets[c.Dimension] = set
	}

	res := Result{Applied: applied}
	res.Table = t.Where(func(r table.Row) bool {
		for _, c := range applied {
			v := r[c.Dimension]
			if table.IsMissing(v) {
				return false
			}
			if _, ok := sets[c.Dimension][Canonical(c.Dimension, v)]; !ok {
				return false
			}
		}
		return true
	})
	res.Table = res.Table.Clone()

	if res.Table.IsEmpty() {
		res.Empty = true
		res.Reason = "no rows match the selected filters"
		if len(applied) > 0 {
			res.Reason = fmt.Sprintf(
				"no rows match the selected filters (%s)", describe(applied),
			)
		}
	}
	return res
}

// Constraints returns non-empty constraints of the spec sorted by
// dimension. Values are trimmed and deduplicated.
func (s Spec) Constraints() []Constraint {
	var res []Constraint
	for _, dim := range slices.Sorted(maps.Keys(s)) {
		var vals []string
		for _, v := range s[dim] {
			v = strings.TrimSpace(v)
			if v == "" || slices.Contains(vals, v) {
				continue
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			continue
		}
		res = append(res, Constraint{Dimension: dim, Values: vals})
	}
	return res
}

// Canonical returns the text used for membership tests. Year values are
// reduced to their integer form, so "2024", "2024.0" and 2024 are equal.
func Canonical(dim string, v table.Value) string {
	s := strings.TrimSpace(table.Text(v))
	if dim != ColYear {
		return s
	}
	if f, ok := table.Float(s); ok && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// Options lists distinct non-missing values of a column to build selectors.
// Layer and tenure buckets are ordered with the given rank function when it
// is not nil, other columns are sorted as text, numbers numerically.
func Options(t *table.Table, dim string, rank func(string) int) []string {
	seen := make(map[string]struct{})
	var res []string
	for _, v := range t.Column(dim) {
		if table.IsMissing(v) {
			continue
		}
		s := Canonical(dim, v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}

	slices.SortStableFunc(res, func(a, b string) int {
		if rank != nil {
			if d := rank(a) - rank(b); d != 0 {
				return d
			}
		}
		return table.Compare(a, b)
	})
	return res
}

// ParseSpec reads "dimension=value1,value2" arguments. The same dimension
// may be given several times, its values are merged.
func ParseSpec(args []string) (Spec, error) {
	res := make(Spec)
	for _, arg := range args {
		dim, vals, ok := strings.Cut(arg, "=")
		dim = strings.TrimSpace(dim)
		if !ok || dim == "" {
			return nil, fmt.Errorf("filter %q must look like dimension=value[,value]", arg)
		}
		for _, v := range strings.Split(vals, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				res[dim] = append(res[dim], v)
			}
		}
	}
	return res, nil
}

func describe(cc []Constraint) string {
	parts := make([]string, len(cc))
	for i, c := range cc {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}
