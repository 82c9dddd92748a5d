package table_test

import (
	"math"
	"testing"

	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		msg string
		in  table.Value
		res float64
		ok  bool
	}{
		{"number", 3.5, 3.5, true},
		{"numeric string", " 12 ", 12, true},
		{"text", "ten years", 0, false},
		{"blank", "", 0, false},
		{"missing", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"placeholder", "#N/A", 0, false},
	}

	for _, v := range tests {
		res, ok := table.Float(v.in)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "2024", table.Text(2024.0))
	assert.Equal(t, "3.25", table.Text(3.25))
	assert.Equal(t, "", table.Text(nil))
	assert.Equal(t, "-", table.Text("-"))
}

func TestInfer(t *testing.T) {
	assert.Equal(t, 0.0, table.Infer("0"))
	assert.Equal(t, 4.5, table.Infer("4.5"))
	assert.Equal(t, "#N/A", table.Infer("#N/A"))
	assert.Equal(t, "", table.Infer(""))
	assert.Equal(t, "NaN", table.Infer("NaN"))
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := table.New("nik", "unit")
	tbl.Append(table.Row{"nik": 1.0, "unit": "A"})

	cp := tbl.Clone()
	cp.Rows[0]["unit"] = "B"
	cp.AddColumn("extra")

	assert.Equal(t, "A", tbl.Rows[0]["unit"])
	assert.False(t, tbl.HasColumn("extra"))
}

func TestAppendAddsColumnsDeterministically(t *testing.T) {
	tbl := table.New("nik")
	tbl.Append(table.Row{"nik": 1.0, "zeta": "z", "alpha": "a"})
	assert.Equal(t, []string{"nik", "alpha", "zeta"}, tbl.Columns)
}

func TestRecordsRoundTrip(t *testing.T) {
	tbl := table.New("nik", "unit", "KE0")
	tbl.Append(table.Row{"nik": 10.0, "unit": "A", "KE0": nil})
	tbl.Append(table.Row{"nik": 11.0, "unit": "", "KE0": 4.0})

	res := table.FromRecords(tbl.Records())
	require.Equal(t, tbl.Columns, res.Columns)
	require.Equal(t, 2, res.Len())
	assert.Nil(t, res.Rows[0]["KE0"])
	assert.Equal(t, "", res.Rows[1]["unit"])
	assert.Equal(t, 4.0, res.Rows[1]["KE0"])
}

func TestFingerprint(t *testing.T) {
	mk := func() *table.Table {
		tbl := table.New("nik", "unit")
		tbl.Append(table.Row{"nik": 1.0, "unit": "A"})
		tbl.Append(table.Row{"nik": 2.0, "unit": nil})
		return tbl
	}

	a, b := mk(), mk()
	assert.Equal(t, table.Fingerprint(a), table.Fingerprint(b))

	// missing and blank are different content
	b.Rows[1]["unit"] = ""
	assert.NotEqual(t, table.Fingerprint(a), table.Fingerprint(b))

	// so are text "1" and number 1
	c := mk()
	c.Rows[0]["nik"] = "1"
	assert.NotEqual(t, table.Fingerprint(a), table.Fingerprint(c))
}

func TestDistinct(t *testing.T) {
	tbl := table.New("unit")
	for _, u := range []table.Value{"B", "A", nil, "B", "-"} {
		tbl.Append(table.Row{"unit": u})
	}
	assert.Equal(t, []string{"B", "A", "-"}, tbl.Distinct("unit"))
}
