package ioexport

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/growthcenter/esdash/pkg/schema"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondentRows(t *testing.T) {
	runID := uuid.MustParse("5b9a1c4e-7c36-5a0e-9f56-6a4b1c0b9a11")
	tbl := table.New("nik", "unit", "subunit", "SAT", "year")
	tbl.Append(table.Row{
		"nik": 1536.0, "unit": "KG MEDIA", "subunit": "KONTAN",
		"SAT": 4.0, "year": 2024.0,
	})
	tbl.Append(table.Row{"unit": "GOMED", "year": 2023.0})

	rows, err := respondentRows(runID, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(schema.RespondentColumns))

	assert.Equal(t, runID, rows[0][1])
	assert.Equal(t, 2024, rows[0][2])
	assert.Equal(t, "1536", rows[0][3])
	assert.Equal(t, "KG MEDIA", rows[0][4])
	assert.Equal(t, "KONTAN", rows[0][5])

	// missing nik becomes empty text
	assert.Equal(t, "", rows[1][3])
	assert.Equal(t, 2023, rows[1][2])

	// ids are stable and distinct
	again, err := respondentRows(runID, tbl)
	require.NoError(t, err)
	assert.Equal(t, rows[0][0], again[0][0])
	assert.NotEqual(t, rows[0][0], rows[1][0])

	var rec map[string]any
	require.NoError(t, json.Unmarshal(rows[1][6].([]byte), &rec))
	assert.Nil(t, rec["SAT"])
	assert.Equal(t, "GOMED", rec["unit"])

	none, err := respondentRows(runID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
