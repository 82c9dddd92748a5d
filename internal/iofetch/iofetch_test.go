package iofetch_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/internal/iocache"
	"github.com/growthcenter/esdash/internal/iofetch"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/errcode"
	"github.com/growthcenter/esdash/pkg/sources"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	survey23 = "nik,unit,SAT,NPS\n1,KONTAN,4,9\n2,TRIBUN,#N/A,3\n"
	survey24 = "nik\tunit\tSAT\tNPS\n1\tKONTAN\t5\t10\n"
	roster   = "nik,unit,subunit\n1,KG MEDIA,KONTAN\n3,TRIBUN,SIRKULASI\n"
	creds    = "username,password,name,email,unit\nana,x,Ana,a@x.id,KONTAN\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func mkdir(t *testing.T, dir, name string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.Mkdir(path, 0755))
	return path
}

func writeSQLite(t *testing.T, dir string) string {
	path := filepath.Join(dir, "survey.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE s2025 (nik INTEGER, unit TEXT, SAT REAL, note TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO s2025 VALUES (1, 'KONTAN', 4, NULL), (2, 'HARKOM', 3, '')`)
	require.NoError(t, err)
	return path
}

func setup(t *testing.T) (*config.Config, *sources.SourcesConfig) {
	dir := t.TempDir()
	src := &sources.SourcesConfig{Datasets: []sources.Dataset{
		{Kind: "survey", Year: 2023, Location: writeFile(t, dir, "s23.csv", survey23)},
		{Kind: "survey", Year: 2024, Location: writeFile(t, dir, "s24.tsv", survey24)},
		{Kind: "survey", Year: 2025, Location: writeSQLite(t, dir), Table: "s2025"},
		{Kind: "roster", Location: writeFile(t, dir, "roster.csv", roster)},
		{Kind: "credentials", Location: writeFile(t, dir, "creds.csv", creds)},
	}}
	require.NoError(t, src.Validate())

	cfg := config.New()
	cfg.Update([]config.Option{config.OptHomeDir(dir)})
	return cfg, src
}

func TestFetcher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	cfg, src := setup(t)
	f := iofetch.New(cfg, src, nil)

	s23, err := f.Survey(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, []string{"nik", "unit", "SAT", "NPS"}, s23.Columns)
	assert.Equal(t, "#N/A", s23.Rows[1]["SAT"])
	assert.Equal(t, 9.0, s23.Rows[0]["NPS"])

	s24, err := f.Survey(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s24.Rows[0]["NPS"])

	s25, err := f.Survey(ctx, 2025)
	require.NoError(t, err)
	require.Equal(t, 2, s25.Len())
	assert.Equal(t, table.Row{"nik": 1.0, "unit": "KONTAN", "SAT": 4.0, "note": nil},
		s25.Rows[0])
	assert.Equal(t, "", s25.Rows[1]["note"])

	r, err := f.Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	c, err := f.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", c.Rows[0]["username"])

	_, err = f.Survey(ctx, 2030)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.FetchDatasetNotFoundError, gnErr.Code)
}

func TestFetcherErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.New()

	tests := []struct {
		msg  string
		ds   sources.Dataset
		code gn.ErrorCode
	}{
		{
			msg:  "missing file",
			ds:   sources.Dataset{Kind: "roster", Location: filepath.Join(dir, "no.csv")},
			code: errcode.FetchDatasetNotFoundError,
		},
		{
			msg:  "missing sqlite",
			ds:   sources.Dataset{Kind: "roster", Location: filepath.Join(dir, "no.db"), Table: "r"},
			code: errcode.FetchDatasetNotFoundError,
		},
		{
			msg: "missing sqlite table",
			ds: sources.Dataset{
				Kind: "roster", Location: writeSQLite(t, dir), Table: "roster",
			},
			code: errcode.FetchSQLiteError,
		},
		{
			msg: "directory instead of file",
			ds: sources.Dataset{
				Kind: "roster", Location: mkdir(t, dir, "roster.csv"),
			},
			code: errcode.FetchReadError,
		},
	}

	for _, v := range tests {
		ds := v.ds
		_, err := ds.Validate()
		require.NoError(t, err, v.msg)
		src := &sources.SourcesConfig{Datasets: []sources.Dataset{ds}}

		_, err = iofetch.New(cfg, src, nil).Roster(ctx)
		require.Error(t, err, v.msg)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
	}
}

func TestFetcherHTTPAndCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		fmt.Fprint(w, roster)
	}))
	defer srv.Close()

	ctx := context.Background()
	cache, err := iocache.New(t.TempDir())
	require.NoError(t, err)

	src := &sources.SourcesConfig{Datasets: []sources.Dataset{
		{Kind: "roster", Location: srv.URL + "/export?format=csv"},
		{Kind: "credentials", Location: srv.URL + "/missing"},
	}}
	require.NoError(t, src.Validate())

	cfg := config.New()
	r, err := iofetch.New(cfg, src, cache).Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SIRKULASI", r.Rows[1]["subunit"])
	assert.Equal(t, int32(1), hits.Load())

	// served from cache
	r2, err := iofetch.New(cfg, src, cache).Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, r, r2)
	assert.Equal(t, int32(1), hits.Load())

	// refresh bypasses the cache
	cfg.Update([]config.Option{config.OptFetchRefresh(true)})
	_, err = iofetch.New(cfg, src, cache).Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	// cache switched off
	cfg = config.New()
	cfg.Update([]config.Option{config.OptFetchUseCache(false)})
	_, err = iofetch.New(cfg, src, cache).Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())

	_, err = iofetch.New(cfg, src, cache).Credentials(ctx)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.FetchHTTPError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "404")
}

func TestFetchAll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	cfg, src := setup(t)
	f := iofetch.New(cfg, src, nil)

	for _, jobs := range []int{0, 1, 4} {
		in, err := iofetch.FetchAll(ctx, f, []int{2023, 2024, 2025}, jobs)
		require.NoError(t, err)
		assert.Len(t, in.Surveys, 3)
		assert.Equal(t, 2, in.Surveys[2023].Len())
		assert.NotNil(t, in.Roster)
		assert.NotNil(t, in.Credentials)
	}

	_, err := iofetch.FetchAll(ctx, f, []int{2023, 2031}, 2)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.FetchDatasetNotFoundError, gnErr.Code)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = iofetch.FetchAll(cancelled, f, []int{2023}, 2)
	require.Error(t, err)
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.FetchCancelledError, gnErr.Code)
	assert.True(t, errors.Is(gnErr.Err, context.Canceled))
}
