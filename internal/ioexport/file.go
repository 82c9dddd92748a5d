package ioexport

import (
	"bufio"
	"io"
	"os"
	"slices"

	"github.com/gnames/gnfmt"
	"github.com/growthcenter/esdash/internal/iofs"
	"github.com/growthcenter/esdash/pkg/table"
)

// Formats are supported file export formats.
var Formats = []string{"csv", "tsv", "compact", "pretty"}

// ToFile writes a table to path in the given format.
func ToFile(path, format string, t *table.Table) error {
	if !slices.Contains(Formats, format) {
		return FormatError(format)
	}
	f, err := os.Create(path)
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err = write(w, path, format, t); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return iofs.WriteFileError(path, err)
	}
	return nil
}

// Write writes a table to w. CSV and TSV keep column order and render
// missing values as empty fields. JSON formats render the table as an
// array of objects with null for missing values.
func Write(w io.Writer, format string, t *table.Table) error {
	return write(w, "output", format, t)
}

func write(w io.Writer, name, format string, t *table.Table) error {
	var err error
	switch format {
	case "csv":
		err = writeDelimited(w, t, ',')
	case "tsv":
		err = writeDelimited(w, t, '\t')
	case "compact":
		err = writeJSON(w, t, false)
	case "pretty":
		err = writeJSON(w, t, true)
	default:
		return FormatError(format)
	}
	if err != nil {
		return iofs.WriteFileError(name, err)
	}
	return nil
}

func writeDelimited(w io.Writer, t *table.Table, sep rune) error {
	if _, err := io.WriteString(w, gnfmt.ToCSV(t.Columns, sep)+"\n"); err != nil {
		return err
	}
	for _, line := range t.Strings() {
		if _, err := io.WriteString(w, gnfmt.ToCSV(line, sep)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, t *table.Table, pretty bool) error {
	rows := make([]map[string]any, t.Len())
	for i, r := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			v := r[c]
			if table.IsMissing(v) {
				v = nil
			}
			obj[c] = v
		}
		rows[i] = obj
	}

	enc := gnfmt.GNjson{Pretty: pretty}
	bs, err := enc.Encode(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(append(bs, '\n'))
	return err
}
