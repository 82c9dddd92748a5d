package merge_test

import (
	"testing"

	"github.com/growthcenter/esdash/pkg/merge"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearTables() map[int]*table.Table {
	a := table.New("nik", "unit", "KD0")
	a.Append(table.Row{"nik": 1.0, "unit": "A", "KD0": 4.0})
	a.Append(table.Row{"nik": 2.0, "unit": "B", "KD0": 3.0})

	b := table.New("nik", "unit", "TU3")
	b.Append(table.Row{"nik": 1.0, "unit": "A", "TU3": 5.0})

	c := table.New("nik", "region")
	c.Append(table.Row{"nik": 3.0, "region": "Jakarta"})

	// keys deliberately out of order
	return map[int]*table.Table{2025: c, 2023: a, 2024: b}
}

func TestYears(t *testing.T) {
	res := merge.Years(yearTables())

	assert.Equal(t,
		[]string{"nik", "unit", "KD0", "TU3", "region", "year"},
		res.Columns,
	)
	require.Equal(t, 4, res.Len())

	var years []table.Value
	for _, r := range res.Rows {
		years = append(years, r["year"])
	}
	assert.Equal(t, []table.Value{2023.0, 2023.0, 2024.0, 2025.0}, years)

	// original order within the year
	assert.Equal(t, 1.0, res.Rows[0]["nik"])
	assert.Equal(t, 2.0, res.Rows[1]["nik"])

	// columns a year lacks are missing, not zero
	for _, r := range res.Rows {
		assert.Len(t, r, len(res.Columns))
	}
	assert.Nil(t, res.Rows[0]["TU3"])
	assert.Nil(t, res.Rows[2]["KD0"])
	assert.Nil(t, res.Rows[3]["unit"])
	assert.Equal(t, "Jakarta", res.Rows[3]["region"])
}

func TestYearsIsIdempotent(t *testing.T) {
	in := yearTables()
	assert.Equal(t, merge.Years(in), merge.Years(in))
	assert.Equal(t, table.Fingerprint(merge.Years(in)), table.Fingerprint(merge.Years(in)))

	// inputs are untouched
	assert.False(t, in[2023].HasColumn("year"))
	_, ok := in[2023].Rows[0]["year"]
	assert.False(t, ok)
}

func TestYearsReplacesYearColumn(t *testing.T) {
	a := table.New("year", "nik")
	a.Append(table.Row{"year": "old", "nik": 1.0})

	res := merge.Years(map[int]*table.Table{2024: a})
	assert.Equal(t, []string{"year", "nik"}, res.Columns)
	assert.Equal(t, 2024.0, res.Rows[0]["year"])
}

func TestConcat(t *testing.T) {
	survey := table.New("nik", "submit_date")
	survey.Append(table.Row{"nik": 1.0, "submit_date": "2024-05-01"})
	roster := table.New("nik", "participation_23")
	roster.Append(table.Row{"nik": 2.0, "participation_23": "NO"})

	res := merge.Concat(survey, nil, roster)
	assert.Equal(t, []string{"nik", "submit_date", "participation_23"}, res.Columns)
	require.Equal(t, 2, res.Len())
	assert.Nil(t, res.Rows[0]["participation_23"])
	assert.Nil(t, res.Rows[1]["submit_date"])
	assert.False(t, res.HasColumn("year"))
}

func TestYearsEmpty(t *testing.T) {
	res := merge.Years(nil)
	assert.Equal(t, []string{"year"}, res.Columns)
	assert.Equal(t, 0, res.Len())
}
