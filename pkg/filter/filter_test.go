package filter_test

import (
	"testing"

	"github.com/growthcenter/esdash/pkg/filter"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/merge"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() *table.Table {
	t := table.New("nik", "unit", "gender", "year")
	t.Append(table.Row{"nik": 1.0, "unit": "X", "gender": "Female", "year": 2024.0})
	t.Append(table.Row{"nik": 2.0, "unit": "X", "gender": "Male", "year": 2024.0})
	t.Append(table.Row{"nik": 3.0, "unit": "Y", "gender": "Female", "year": 2025.0})
	t.Append(table.Row{"nik": 4.0, "unit": "X", "gender": "Female", "year": 2025.0})
	t.Append(table.Row{"nik": 5.0, "unit": nil, "gender": "Female", "year": 2025.0})
	return t
}

func niks(t *table.Table) []float64 {
	var res []float64
	for _, r := range t.Rows {
		f, _ := table.Float(r["nik"])
		res = append(res, f)
	}
	return res
}

func TestApply(t *testing.T) {
	tests := []struct {
		msg  string
		spec filter.Spec
		res  []float64
	}{
		{"no constraints", nil, []float64{1, 2, 3, 4, 5}},
		{"empty values", filter.Spec{"unit": {}}, []float64{1, 2, 3, 4, 5}},
		{"one dimension", filter.Spec{"unit": {"X"}}, []float64{1, 2, 4}},
		{
			"conjunction",
			filter.Spec{"unit": {"X"}, "gender": {"Female"}},
			[]float64{1, 4},
		},
		{"several values", filter.Spec{"unit": {"X", "Y"}}, []float64{1, 2, 3, 4}},
		{"year as text", filter.Spec{"year": {"2025"}}, []float64{3, 4, 5}},
		{"year with fraction", filter.Spec{"year": {"2024.0"}}, []float64{1, 2}},
		{"year not whole", filter.Spec{"year": {"2024.5"}}, nil},
		{"absent column", filter.Spec{"region": {"Jakarta"}}, nil},
	}

	for _, v := range tests {
		res := filter.Apply(people(), v.spec)
		assert.Equal(t, v.res, niks(res.Table), v.msg)
		assert.Equal(t, len(v.res) == 0, res.Empty, v.msg)
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	in := people()
	res := filter.Apply(in, filter.Spec{"unit": {"X"}})
	res.Table.Rows[0]["unit"] = "Z"
	assert.Equal(t, "X", in.Rows[0]["unit"])
	assert.Equal(t, 5, in.Len())
}

func TestApplyEmptyResult(t *testing.T) {
	res := filter.Apply(people(), filter.Spec{"unit": {"Y"}, "gender": {"Male"}})
	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.Table.Len())
	assert.Equal(t, people().Columns, res.Table.Columns)
	assert.Contains(t, res.Reason, "gender: Male; unit: Y")
	require.Len(t, res.Applied, 2)
	assert.Equal(t, "gender", res.Applied[0].Dimension)
}

func TestApplyConsistentAcrossTables(t *testing.T) {
	a := table.New("nik", "unit")
	a.Append(table.Row{"nik": 1.0, "unit": "X"})
	a.Append(table.Row{"nik": 2.0, "unit": "Y"})
	b := table.New("nik", "unit", "region")
	b.Append(table.Row{"nik": 3.0, "unit": "X", "region": "Bali"})
	b.Append(table.Row{"nik": 4.0, "unit": "X", "region": "Jawa"})

	perYear := map[int]*table.Table{2024: a, 2025: b}
	merged := merge.Years(perYear)

	specs := []filter.Spec{
		{"unit": {"X"}},
		{"region": {"Bali"}},
		{"unit": {"X"}, "region": {"Jawa", "Bali"}},
	}
	for _, spec := range specs {
		var fromYears []float64
		for _, y := range []int{2024, 2025} {
			fromYears = append(fromYears, niks(filter.Apply(perYear[y], spec).Table)...)
		}
		fromMerged := niks(filter.Apply(merged, spec).Table)
		assert.Equal(t, fromMerged, fromYears)
	}
}

func TestOptions(t *testing.T) {
	lk := lookup.Default()
	tbl := table.New("layer", "year", "unit")
	for _, r := range []table.Row{
		{"layer": "Officer", "year": 2025.0, "unit": "Y"},
		{"layer": "Director", "year": 2023.0, "unit": "X"},
		{"layer": "Brand New", "year": 2024.0, "unit": nil},
		{"layer": "-", "year": 2023.0, "unit": "X"},
	} {
		tbl.Append(r)
	}

	assert.Equal(t,
		[]string{"Director", "Officer", "-", "Brand New"},
		filter.Options(tbl, "layer", lk.LayerRank),
	)
	assert.Equal(t, []string{"2023", "2024", "2025"}, filter.Options(tbl, "year", nil))
	assert.Equal(t, []string{"X", "Y"}, filter.Options(tbl, "unit", nil))
}

func TestParseSpec(t *testing.T) {
	res, err := filter.ParseSpec([]string{"unit=A, B", "gender=Female", "unit=C"})
	require.NoError(t, err)
	assert.Equal(t, filter.Spec{
		"unit":   {"A", "B", "C"},
		"gender": {"Female"},
	}, res)

	_, err = filter.ParseSpec([]string{"unit"})
	assert.Error(t, err)
	_, err = filter.ParseSpec([]string{"=A"})
	assert.Error(t, err)
}
