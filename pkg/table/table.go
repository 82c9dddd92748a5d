// Package table provides the rectangular, loosely typed data model every
// stage of the survey pipeline works on.
//
// A cell Value is one of three things: nil (missing), string, or float64.
// All numbers are float64, integers included. Keeping the set of dynamic
// types this small makes canonical text, hashing and serialization
// deterministic.
package table

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is a single cell: nil, string or float64.
type Value = any

// Row maps column names to cell values. A column missing from the map is
// the same as a nil cell.
type Row map[string]Value

// Table is an ordered set of columns and the rows that fill them.
type Table struct {
	// Columns keeps column order. It is the order used by exports and
	// fingerprints.
	Columns []string

	// Rows holds records in their original order.
	Rows []Row
}

// New creates an empty table with the given columns.
func New(cols ...string) *Table {
	res := &Table{Columns: make([]string, 0, len(cols))}
	for _, c := range cols {
		res.AddColumn(c)
	}
	return res
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty is true when the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// HasColumn reports whether the column is part of the table schema.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	return slices.Contains(t.Columns, col)
}

// AddColumn appends a column to the schema if it is not there yet.
// Existing rows are not touched, their value for the column is nil.
func (t *Table) AddColumn(col string) {
	if t.HasColumn(col) {
		return
	}
	t.Columns = append(t.Columns, col)
}

// Append adds a row. Keys that are not in the schema are added as new
// columns in sorted order, so the result does not depend on map iteration.
func (t *Table) Append(r Row) {
	var extra []string
	for k := range r {
		if !t.HasColumn(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		t.AddColumn(k)
	}
	t.Rows = append(t.Rows, r)
}

// Clone makes a deep copy of the table. Values are immutable, so copying
// the row maps is enough.
func (t *Table) Clone() *Table {
	if t == nil {
		return New()
	}
	res := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		res.Rows[i] = r.Clone()
	}
	return res
}

// Empty returns a table with the same columns and no rows.
func (t *Table) Empty() *Table {
	if t == nil {
		return New()
	}
	return &Table{Columns: slices.Clone(t.Columns), Rows: []Row{}}
}

// Where returns a new table with the rows that satisfy keep.
// Rows are shared with the receiver.
func (t *Table) Where(keep func(Row) bool) *Table {
	res := t.Empty()
	if t == nil {
		return res
	}
	for _, r := range t.Rows {
		if keep(r) {
			res.Rows = append(res.Rows, r)
		}
	}
	return res
}

// Column returns all values of a column in row order.
func (t *Table) Column(col string) []Value {
	res := make([]Value, t.Len())
	for i := range res {
		res[i] = t.Rows[i][col]
	}
	return res
}

// Select returns a new table with only the given columns, in the given
// order. Unknown columns are created with nil values.
func (t *Table) Select(cols ...string) *Table {
	res := New(cols...)
	for _, r := range t.Rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		res.Rows = append(res.Rows, nr)
	}
	return res
}

// Distinct returns the distinct canonical texts of non-missing values of a
// column, in order of first appearance.
func (t *Table) Distinct(col string) []string {
	seen := make(map[string]struct{})
	var res []string
	for _, v := range t.Column(col) {
		if IsMissing(v) {
			continue
		}
		s := Text(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	return res
}

// Clone copies a row.
func (r Row) Clone() Row {
	res := make(Row, len(r))
	for k, v := range r {
		res[k] = v
	}
	return res
}

// IsMissing is true for nil and for NaN.
func IsMissing(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// IsBlank is true for missing values and whitespace-only strings.
func IsBlank(v Value) bool {
	if IsMissing(v) {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Text returns the canonical text of a value. Missing values are "",
// numbers use the shortest decimal form ("2024", "3.25").
func Text(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Float converts a value to a number. Numeric strings are parsed, blank or
// malformed strings and NaN are not numbers. It never fails loudly.
func Float(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Number converts a value with Float and returns nil when it is not a
// number.
func Number(v Value) Value {
	if f, ok := Float(v); ok {
		return f
	}
	return nil
}

// Int returns the integer part of a numeric value.
func Int(v Value) (int, bool) {
	f, ok := Float(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Infer turns raw spreadsheet text into a Value the way spreadsheet record
// readers do: numeric-looking cells become numbers, everything else stays
// a string. Blank cells stay "" rather than nil.
func Infer(s string) Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return s
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil &&
		!math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// Compare orders two values: numbers before text, numbers numerically,
// text lexically, missing values last.
func Compare(a, b Value) int {
	ma, mb := IsMissing(a), IsMissing(b)
	switch {
	case ma && mb:
		return 0
	case ma:
		return 1
	case mb:
		return -1
	}
	fa, okA := Float(a)
	fb, okB := Float(b)
	switch {
	case okA && okB:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(Text(a), Text(b))
}
