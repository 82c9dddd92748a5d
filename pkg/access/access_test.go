package access_test

import (
	"testing"

	"github.com/growthcenter/esdash/pkg/access"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits(t *testing.T) {
	tests := []struct {
		msg  string
		list string
		res  []string
	}{
		{"single", "GRID", []string{"GRID"}},
		{"comma space", "GRID, TRIBUN", []string{"GRID", "TRIBUN"}},
		{"messy", " GRID,,TRIBUN , GRID", []string{"GRID", "TRIBUN"}},
		{"empty", "", nil},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, access.Units(v.list), v.msg)
	}
}

func TestParse(t *testing.T) {
	creds := table.New("username", "password", "name", "email", "unit")
	creds.Append(table.Row{
		"username": "ana", "password": "$2b$12$abc", "name": "Ana",
		"email": "ana@example.com", "unit": "GRID, KONTAN",
	})
	creds.Append(table.Row{"username": "", "unit": "GRID"})
	creds.Append(table.Row{"username": 1001.0, "unit": "TRIBUN"})

	res := access.Parse(creds)
	require.Len(t, res, 2)

	ana := res["ana"]
	assert.Equal(t, "$2b$12$abc", ana.PasswordHash)
	assert.Equal(t, []string{"GRID", "KONTAN"}, ana.Units)
	assert.Equal(t, []string{"TRIBUN"}, res["1001"].Units)
}

func TestScope(t *testing.T) {
	tbl := table.New("nik", "subunit")
	tbl.Append(table.Row{"nik": 1.0, "subunit": "GRID"})
	tbl.Append(table.Row{"nik": 2.0, "subunit": "TRIBUN"})
	tbl.Append(table.Row{"nik": 3.0, "subunit": nil})

	res := access.Scope(tbl, []string{"GRID", "KONTAN"})
	require.Equal(t, 1, res.Len())
	assert.Equal(t, 1.0, res.Rows[0]["nik"])

	none := access.Scope(tbl, nil)
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, tbl.Columns, none.Columns)
}
