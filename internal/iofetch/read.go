package iofetch

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/growthcenter/esdash/pkg/sources"
	"github.com/growthcenter/esdash/pkg/table"
	_ "modernc.org/sqlite"
)

// readDelimited parses CSV or TSV with a header line. Numeric-looking
// cells become numbers, other cells stay text. Short rows are padded with
// blank text.
func readDelimited(r io.Reader, comma rune) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.New(), nil
	}
	if err != nil {
		return nil, err
	}
	cols := headerColumns(header)
	res := table.New(cols...)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(table.Row, len(cols))
		for i, c := range cols {
			var s string
			if i < len(rec) {
				s = rec[i]
			}
			row[c] = table.Infer(s)
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// headerColumns cleans header names. A byte order mark is dropped, empty
// names become "Unnamed: <i>", and repeated names get ".1", ".2" suffixes.
func headerColumns(header []string) []string {
	res := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; ; n++ {
			if _, ok := seen[name]; !ok {
				break
			}
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[name] = struct{}{}
		res[i] = name
	}
	return res
}

func comma(f sources.Format) rune {
	if f == sources.FormatTSV {
		return '\t'
	}
	return ','
}

func (f *fetcher) readFile(ds sources.Dataset) (*table.Table, error) {
	file, err := os.Open(ds.Location)
	if errors.Is(err, os.ErrNotExist) {
		return nil, DatasetNotFoundError(ds.Label(), ds.Location)
	}
	if err != nil {
		return nil, ReadError(ds.Label(), err)
	}
	defer file.Close()

	res, err := readDelimited(file, comma(ds.Format))
	if err != nil {
		return nil, ReadError(ds.Label(), err)
	}
	return res, nil
}

func (f *fetcher) readHTTP(ctx context.Context, ds sources.Dataset) (*table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ds.Location, nil)
	if err != nil {
		return nil, HTTPError(ds.Label(), ds.Location, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, HTTPError(ds.Label(), ds.Location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status %s", resp.Status)
		return nil, HTTPError(ds.Label(), ds.Location, err)
	}

	res, err := readDelimited(resp.Body, comma(ds.Format))
	if err != nil {
		return nil, ReadError(ds.Label(), err)
	}
	return res, nil
}

func (f *fetcher) readSQLite(ctx context.Context, ds sources.Dataset) (*table.Table, error) {
	if _, err := os.Stat(ds.Location); err != nil {
		return nil, DatasetNotFoundError(ds.Label(), ds.Location)
	}

	db, err := sql.Open("sqlite", ds.Location)
	if err != nil {
		return nil, SQLiteError(ds.Label(), ds.Table, err)
	}
	defer db.Close()

	q := fmt.Sprintf(`SELECT * FROM "%s"`, strings.ReplaceAll(ds.Table, `"`, `""`))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, SQLiteError(ds.Label(), ds.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, SQLiteError(ds.Label(), ds.Table, err)
	}
	cols = headerColumns(cols)
	res := table.New(cols...)

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return nil, SQLiteError(ds.Label(), ds.Table, err)
		}
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[c] = sqlValue(vals[i])
		}
		res.Rows = append(res.Rows, row)
	}
	if err = rows.Err(); err != nil {
		return nil, SQLiteError(ds.Label(), ds.Table, err)
	}
	return res, nil
}

// sqlValue converts a SQLite value to a table value. NULL is missing.
func sqlValue(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return 1.0
		}
		return 0.0
	case []byte:
		return table.Infer(string(x))
	case string:
		return table.Infer(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
