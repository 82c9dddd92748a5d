package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/google/go-cmp/cmp"
	"github.com/growthcenter/esdash/pkg/errcode"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/pipeline"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputs() pipeline.Inputs {
	s23 := table.New("nik", "unit", "subunit", "directorate", "layer", "tenure",
		"KD0", "KD1", "KE0", "KE1", "KE2", "KE3", "SAT", "NPS", "submit_date")
	s23.Append(table.Row{
		"nik": 1536.0, "unit": "GOMED", "subunit": "GOMED", "directorate": "#N/A",
		"layer": "Group 2", "tenure": 3.0, "KD0": 4.0, "KD1": 5.0,
		"KE0": 0.0, "KE1": 3.0, "KE2": 4.0, "KE3": 5.0, "SAT": 4.0, "NPS": 9.0,
		"submit_date": "2023-06-01",
	})
	s23.Append(table.Row{
		"nik": 20.0, "unit": "TRIBUN", "subunit": "TRIBUN", "directorate": 0.0,
		"layer": "Group 7", "tenure": "n/a", "KD0": "", "KD1": "",
		"KE0": "", "KE1": "", "KE2": "", "KE3": "", "SAT": 2.0, "NPS": 4.0,
		"submit_date": "2023-06-02",
	})

	s24 := table.New("nik", "unit", "subunit", "layer", "tenure", "KD0", "TU3",
		"SAT", "NPS", "submit_date")
	s24.Append(table.Row{
		"nik": 1536.0, "unit": "KG MEDIA", "subunit": "KONTAN", "layer": "Group 1",
		"tenure": 4.0, "KD0": 3.0, "TU3": 5.0, "SAT": 5.0, "NPS": 10.0,
		"submit_date": "2024-06-01",
	})
	s24.Append(table.Row{
		"nik": 1536.0, "unit": "KG MEDIA", "subunit": "KONTAN", "layer": "Group 1",
		"tenure": 4.0, "KD0": 3.0, "TU3": 5.0, "SAT": 5.0, "NPS": 10.0,
		"submit_date": "2024-06-01",
	})

	roster := table.New("nik", "unit", "subunit", "status", "participation_23", "tenure")
	roster.Append(table.Row{
		"nik": 1536.0, "unit": "GOMED", "subunit": "GOMED", "status": "",
		"participation_23": "#N/A", "tenure": 4.0,
	})
	roster.Append(table.Row{
		"nik": 99.0, "unit": "TRIBUN", "subunit": "SIRKULASI", "status": "Tetap",
		"participation_23": "YES", "tenure": 0.5,
	})

	creds := table.New("username", "password", "name", "email", "unit")
	creds.Append(table.Row{
		"username": "ana", "password": "x", "name": "Ana",
		"email": "ana@example.com", "unit": "KONTAN, HARKOM",
	})

	return pipeline.Inputs{
		Surveys:     map[int]*table.Table{2023: s23, 2024: s24},
		Roster:      roster,
		Credentials: creds,
	}
}

func TestRun(t *testing.T) {
	res, err := pipeline.Run(inputs(), lookup.Default(), pipeline.Options{
		Years: []int{2024, 2023},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2023, 2024}, res.Years)
	require.Len(t, res.PerYear, 2)

	r := res.PerYear[2023].Rows[0]
	assert.Equal(t, "KG MEDIA", r["unit"])
	assert.Equal(t, "-", r["directorate"])
	assert.Equal(t, "Officer", r["layer"])
	assert.Equal(t, "3-6", r["tenure_category"])
	assert.Equal(t, 4.0, r["KE0"])
	assert.Equal(t, 4.0, r["average_ke"])
	assert.Equal(t, 4.5, r["average_kd"])

	blank := res.PerYear[2023].Rows[1]
	assert.Nil(t, blank["layer"])
	assert.Nil(t, blank["tenure_category"])
	assert.Nil(t, blank["KE0"])
	assert.Nil(t, blank["average_kd"])
	assert.Equal(t, "-", blank["directorate"])

	// merge
	m := res.Merged
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, "year", m.Columns[len(m.Columns)-1])
	assert.True(t, m.HasColumn("TU3"))
	assert.Nil(t, m.Rows[0]["TU3"])
	assert.Equal(t, 2024.0, m.Rows[3]["year"])

	// roster
	assert.Equal(t, "NO", res.Roster.Rows[0]["participation_23"])
	assert.Equal(t, "-", res.Roster.Rows[0]["status"])
	assert.Equal(t, "HARKOM", res.Roster.Rows[1]["subunit"])
	assert.Equal(t, "<1", res.Roster.Rows[1]["tenure_category"])

	// participation joins the latest year with the roster
	assert.Equal(t, 4, res.Participation.Len())

	require.Contains(t, res.Accounts, "ana")
	assert.Equal(t, []string{"KONTAN", "HARKOM"}, res.Accounts["ana"].Units)
	assert.NotEmpty(t, res.Fingerprint)
}

func TestRunNotes(t *testing.T) {
	res, err := pipeline.Run(inputs(), lookup.Default(), pipeline.Options{})
	require.NoError(t, err)

	var msgs []string
	for _, n := range res.Notes {
		msgs = append(msgs, n.String())
	}
	assert.Contains(t, msgs, `survey 2023: unknown layer code "Group 7" in 1 row(s), set to missing`)
	assert.Contains(t, msgs, `survey 2023: 1 malformed value(s) in numeric column "tenure", set to missing`)
	assert.Contains(t, msgs, "survey 2024: nik 1536 appears 2 times")

	// duplicates are reported, not removed
	assert.Equal(t, 2, res.PerYear[2024].Len())
}

func TestRunIsIdempotent(t *testing.T) {
	lk := lookup.Default()
	opts := pipeline.Options{ApplyOverrides: true, LegacyRemaps: true}

	a, err := pipeline.Run(inputs(), lk, opts)
	require.NoError(t, err)
	b, err := pipeline.Run(inputs(), lk, opts)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
}

func TestRunDoesNotMutateInputs(t *testing.T) {
	in := inputs()
	_, err := pipeline.Run(in, lookup.Default(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, inputs(), in)
}

func TestRunOverrides(t *testing.T) {
	res, err := pipeline.Run(inputs(), lookup.Default(), pipeline.Options{
		ApplyOverrides: true,
	})
	require.NoError(t, err)

	// 1536 is forced to KG MEDIA / KONTAN in every table
	for _, y := range res.Years {
		for _, r := range res.PerYear[y].Rows {
			if r["nik"] == 1536.0 {
				assert.Equal(t, "KG MEDIA", r["unit"])
				assert.Equal(t, "KONTAN", r["subunit"])
			}
		}
	}
	assert.Equal(t, "KONTAN", res.Roster.Rows[0]["subunit"])
}

func TestRunErrors(t *testing.T) {
	lk := lookup.Default()

	_, err := pipeline.Run(inputs(), lk, pipeline.Options{Years: []int{2025}})
	require.Error(t, err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.PipelineMissingYearError, gnErr.Code)

	in := inputs()
	in.Surveys = map[int]*table.Table{}
	_, err = pipeline.Run(in, lk, pipeline.Options{})
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.PipelineNoYearsError, gnErr.Code)

	in = inputs()
	in.Roster = nil
	_, err = pipeline.Run(in, lk, pipeline.Options{})
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.PipelineMissingRosterError, gnErr.Code)

	in = inputs()
	in.Credentials = nil
	_, err = pipeline.Run(in, lk, pipeline.Options{})
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.PipelineMissingCredentialsError, gnErr.Code)
}

type memFetcher struct {
	in   pipeline.Inputs
	fail bool
}

func (m memFetcher) Survey(_ context.Context, year int) (*table.Table, error) {
	if m.fail {
		return nil, errors.New("network is down")
	}
	return m.in.Surveys[year], nil
}

func (m memFetcher) Roster(context.Context) (*table.Table, error) {
	return m.in.Roster, nil
}

func (m memFetcher) Credentials(context.Context) (*table.Table, error) {
	return m.in.Credentials, nil
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()
	lk := lookup.Default()
	opts := pipeline.Options{Years: []int{2023, 2024}}

	res, err := pipeline.Finalize(ctx, memFetcher{in: inputs()}, lk, opts)
	require.NoError(t, err)

	direct, err := pipeline.Run(inputs(), lk, opts)
	require.NoError(t, err)
	assert.Equal(t, direct.Fingerprint, res.Fingerprint)

	_, err = pipeline.Finalize(ctx, memFetcher{in: inputs(), fail: true}, lk, opts)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.FetchReadError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "network is down")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = pipeline.Finalize(cancelled, memFetcher{in: inputs()}, lk, opts)
	assert.ErrorIs(t, err, context.Canceled)
}
