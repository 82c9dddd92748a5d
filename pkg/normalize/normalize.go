// Package normalize maps one year of raw survey or roster records onto the
// canonical schema.
//
// The normalizer never fails on data. Placeholders become sentinels,
// malformed numbers and unknown layer codes become missing values, and
// everything worth a second look is collected in a Report.
package normalize

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gnames/gnlib"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Column names the normalizer knows about.
const (
	ColNIK            = "nik"
	ColUnit           = "unit"
	ColSubunit        = "subunit"
	ColLayer          = "layer"
	ColTenure         = "tenure"
	ColTenureCategory = "tenure_category"
)

// NumericColumns are coerced to numbers in addition to survey items.
var NumericColumns = []string{ColNIK, ColTenure, "SAT", "NPS", "EMO"}

// Normalizer holds lookup tables and switches for one pipeline run.
type Normalizer struct {
	lk *lookup.Tables

	// applyOverrides enables per-employee unit and subunit corrections.
	applyOverrides bool

	// legacyRemaps enables marital and education renames of the early
	// single-year feed.
	legacyRemaps bool

	numeric map[string]struct{}
	casers  map[string]func(string) string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// OptApplyOverrides turns per-employee overrides on or off.
func OptApplyOverrides(b bool) Option {
	return func(n *Normalizer) {
		n.applyOverrides = b
	}
}

// OptLegacyRemaps turns legacy categorical remaps on or off.
func OptLegacyRemaps(b bool) Option {
	return func(n *Normalizer) {
		n.legacyRemaps = b
	}
}

// New creates a Normalizer. Both overrides and legacy remaps are off by
// default.
func New(lk *lookup.Tables, opts ...Option) *Normalizer {
	res := &Normalizer{
		lk:      lk,
		numeric: make(map[string]struct{}),
		casers:  make(map[string]func(string) string),
	}
	for _, opt := range opts {
		opt(res)
	}

	for _, c := range NumericColumns {
		res.numeric[c] = struct{}{}
	}
	for _, c := range lk.Items() {
		res.numeric[c] = struct{}{}
	}
	for col, mode := range lk.Casing {
		res.casers[col] = caser(mode)
	}
	return res
}

// Report collects data-quality observations of one Normalize call.
type Report struct {
	// Rows is the number of processed rows.
	Rows int
	// Placeholders counts replaced placeholder cells per column.
	Placeholders map[string]int
	// Malformed counts non-blank cells of numeric columns that were not
	// numbers, per column.
	Malformed map[string]int
	// UnknownLayers counts layer codes missing from the layer dictionary.
	UnknownLayers map[string]int
	// Overridden is the number of rows that got a per-employee override.
	Overridden int
	// NoTenure is the number of rows without a tenure bucket.
	NoTenure int
}

func newReport() Report {
	return Report{
		Placeholders:  make(map[string]int),
		Malformed:     make(map[string]int),
		UnknownLayers: make(map[string]int),
	}
}

// Notes renders the report as sorted human-readable lines. Placeholder
// replacements are expected and are not part of the notes.
func (r Report) Notes() []string {
	var res []string
	for _, k := range slices.Sorted(maps.Keys(r.UnknownLayers)) {
		res = append(res, fmt.Sprintf(
			"unknown layer code %q in %d row(s), set to missing",
			k, r.UnknownLayers[k],
		))
	}
	for _, k := range slices.Sorted(maps.Keys(r.Malformed)) {
		res = append(res, fmt.Sprintf(
			"%d malformed value(s) in numeric column %q, set to missing",
			r.Malformed[k], k,
		))
	}
	return res
}

// Normalize returns a normalized copy of t together with a report. The
// input table is not modified.
func (n *Normalizer) Normalize(t *table.Table) (*table.Table, Report) {
	rep := newReport()
	res := t.Clone()
	rep.Rows = res.Len()

	if n.applyOverrides && res.HasColumn(ColNIK) {
		res.AddColumn(ColUnit)
		res.AddColumn(ColSubunit)
	}
	res.AddColumn(ColTenureCategory)

	for _, row := range res.Rows {
		n.coerce(res.Columns, row, &rep)
		n.hygiene(row)
		n.placeholders(res, row, &rep)
		n.casing(row)
		n.remap(row)
		n.override(row, &rep)
		n.layer(res, row, &rep)
		n.tenure(row, &rep)
	}
	return res, rep
}

func (n *Normalizer) coerce(cols []string, row table.Row, rep *Report) {
	for _, c := range cols {
		if _, ok := n.numeric[c]; !ok {
			continue
		}
		v := row[c]
		num := table.Number(v)
		if num == nil && !table.IsBlank(v) {
			rep.Malformed[c]++
		}
		row[c] = num
	}
}

func (n *Normalizer) hygiene(row table.Row) {
	for k, v := range row {
		s, ok := v.(string)
		if !ok {
			continue
		}
		row[k] = cleanText(s)
	}
}

func cleanText(s string) string {
	s = gnlib.FixUtf8(s)
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

func (n *Normalizer) placeholders(t *table.Table, row table.Row, rep *Report) {
	for _, p := range n.lk.Placeholders {
		if !t.HasColumn(p.Column) {
			continue
		}
		v := row[p.Column]
		if table.IsMissing(v) {
			continue
		}
		if slices.Contains(p.Tokens, table.Text(v)) {
			row[p.Column] = p.Replacement
			rep.Placeholders[p.Column]++
		}
	}
}

func (n *Normalizer) casing(row table.Row) {
	for col, fn := range n.casers {
		if s, ok := row[col].(string); ok {
			row[col] = fn(s)
		}
	}
}

func (n *Normalizer) remap(row table.Row) {
	apply := func(dicts map[string]map[string]string) {
		for col, dict := range dicts {
			if s, ok := row[col].(string); ok {
				row[col] = lookup.Open(dict, s)
			}
		}
	}
	apply(n.lk.Remaps)
	if n.legacyRemaps {
		apply(n.lk.LegacyRemaps)
	}
}

func (n *Normalizer) override(row table.Row, rep *Report) {
	if !n.applyOverrides {
		return
	}
	nik := row[ColNIK]
	if table.IsMissing(nik) {
		return
	}
	o, ok := n.lk.Override(table.Text(nik))
	if !ok {
		return
	}
	row[ColUnit] = o.Unit
	row[ColSubunit] = o.Subunit
	rep.Overridden++
}

// layer translates codes with the closed dictionary. Labels that are
// already canonical stay as they are, so normalizing twice changes
// nothing.
func (n *Normalizer) layer(t *table.Table, row table.Row, rep *Report) {
	if !t.HasColumn(ColLayer) {
		return
	}
	v := row[ColLayer]
	if table.IsMissing(v) {
		row[ColLayer] = nil
		return
	}
	code := table.Text(v)
	if label, ok := n.lk.Layer(code); ok {
		row[ColLayer] = label
		return
	}
	if n.lk.LayerRank(code) < len(n.lk.Layers) {
		row[ColLayer] = code
		return
	}
	row[ColLayer] = nil
	rep.UnknownLayers[code]++
}

func (n *Normalizer) tenure(row table.Row, rep *Report) {
	b := Bucket(n.lk.Tenure, row[ColTenure])
	row[ColTenureCategory] = b
	if b == nil {
		rep.NoTenure++
	}
}

// Bucket assigns a tenure value to its bucket. A bucket includes its lower
// edge and excludes the next edge, the last bucket is open-ended.
// Values that are not numbers, or lie below the first edge, have no
// bucket and return nil.
func Bucket(tn lookup.Tenure, v table.Value) table.Value {
	f, ok := table.Float(v)
	if !ok || len(tn.Edges) == 0 || f < tn.Edges[0] {
		return nil
	}
	idx := 0
	for i, e := range tn.Edges {
		if f >= e {
			idx = i
		}
	}
	return tn.Labels[idx]
}

// LayerRank gives the sort position of a layer label, unknown labels sort
// after all known ones.
func LayerRank(lk *lookup.Tables, label string) int {
	return lk.LayerRank(label)
}

// TenureRank gives the sort position of a tenure bucket label.
func TenureRank(lk *lookup.Tables, label string) int {
	return lk.TenureRank(label)
}

func caser(mode string) func(string) string {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	switch mode {
	case "upper":
		return upper.String
	case "lower":
		return lower.String
	case "title":
		return cases.Title(language.Und).String
	}
	// capitalize: first letter upper, the rest lower
	return func(s string) string {
		s = lower.String(s)
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return s
		}
		return upper.String(string(r)) + s[size:]
	}
}
