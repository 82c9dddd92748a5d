package table

import (
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"
)

// Kind tells how a Cell is to be read.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Cell is the serializable form of a Value.
type Cell struct {
	Kind Kind    `json:"k"`
	Str  string  `json:"s,omitempty"`
	Num  float64 `json:"n,omitempty"`
}

// Records is a snapshot of a table that survives GOB and JSON encoding
// without losing the distinction between missing, text and numeric cells.
type Records struct {
	Columns []string `json:"columns"`
	Cells   [][]Cell `json:"cells"`
}

// ToCell converts a Value to a Cell.
func ToCell(v Value) Cell {
	if IsMissing(v) {
		return Cell{Kind: KindNull}
	}
	switch x := v.(type) {
	case string:
		return Cell{Kind: KindString, Str: x}
	case float64:
		return Cell{Kind: KindNumber, Num: x}
	}
	if f, ok := Float(v); ok {
		return Cell{Kind: KindNumber, Num: f}
	}
	return Cell{Kind: KindString, Str: Text(v)}
}

// Value converts a Cell back to a Value.
func (c Cell) Value() Value {
	switch c.Kind {
	case KindString:
		return c.Str
	case KindNumber:
		return c.Num
	}
	return nil
}

// Records returns the serializable snapshot of the table.
func (t *Table) Records() Records {
	res := Records{Columns: append([]string{}, t.Columns...)}
	res.Cells = make([][]Cell, t.Len())
	for i, r := range t.Rows {
		cells := make([]Cell, len(t.Columns))
		for j, c := range t.Columns {
			cells[j] = ToCell(r[c])
		}
		res.Cells[i] = cells
	}
	return res
}

// FromRecords rebuilds a table from its snapshot. Null cells are kept as
// explicit nil entries.
func FromRecords(rec Records) *Table {
	res := New(rec.Columns...)
	res.Rows = make([]Row, 0, len(rec.Cells))
	for _, cells := range rec.Cells {
		r := make(Row, len(rec.Columns))
		for j, c := range rec.Columns {
			if j < len(cells) {
				r[c] = cells[j].Value()
			} else {
				r[c] = nil
			}
		}
		res.Rows = append(res.Rows, r)
	}
	return res
}

// Strings returns every row as canonical text aligned with Columns.
// Missing cells are "".
func (t *Table) Strings() [][]string {
	res := make([][]string, t.Len())
	for i, r := range t.Rows {
		line := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			line[j] = Text(r[c])
		}
		res[i] = line
	}
	return res
}

// Fingerprint returns a deterministic UUID v5 of the table content.
// Column order, row order, values and the missing/text/number distinction
// all take part, so two runs over the same inputs yield the same
// fingerprint.
func Fingerprint(t *Table) string {
	if t == nil {
		return gnuuid.New("").String()
	}
	var sb strings.Builder
	sb.WriteString(gnfmt.ToCSV(t.Columns, ','))
	sb.WriteByte('\n')
	rec := t.Records()
	for _, cells := range rec.Cells {
		fields := make([]string, len(cells))
		for j, c := range cells {
			switch c.Kind {
			case KindNull:
				fields[j] = "\x00"
			case KindString:
				fields[j] = "s:" + c.Str
			case KindNumber:
				fields[j] = "n:" + Text(c.Num)
			}
		}
		sb.WriteString(gnfmt.ToCSV(fields, ','))
		sb.WriteByte('\n')
	}
	return gnuuid.New(sb.String()).String()
}
