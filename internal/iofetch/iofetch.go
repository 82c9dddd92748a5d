// Package iofetch loads raw survey, roster and credentials tables from the
// datasets listed in sources.yaml. Local CSV/TSV files, CSV/TSV over HTTP
// (for example published spreadsheets) and SQLite tables are supported.
package iofetch

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/growthcenter/esdash/internal/iocache"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/esdash"
	"github.com/growthcenter/esdash/pkg/pipeline"
	"github.com/growthcenter/esdash/pkg/sources"
	"github.com/growthcenter/esdash/pkg/table"
	"golang.org/x/sync/errgroup"
)

type fetcher struct {
	cfg    *config.Config
	src    *sources.SourcesConfig
	cache  *iocache.Cache
	client *http.Client
}

// New creates a Fetcher over datasets of src. When cache is not nil,
// fetched tables are stored in it and reused unless cfg.Fetch.Refresh is
// set.
func New(
	cfg *config.Config,
	src *sources.SourcesConfig,
	cache *iocache.Cache,
) esdash.Fetcher {
	res := fetcher{
		cfg:    cfg,
		src:    src,
		cache:  cache,
		client: &http.Client{Timeout: time.Duration(cfg.Fetch.Timeout) * time.Second},
	}
	return &res
}

// Survey returns the raw survey table of a year.
func (f *fetcher) Survey(ctx context.Context, year int) (*table.Table, error) {
	ds, ok := f.src.Survey(year)
	if !ok {
		label := sources.Dataset{Kind: sources.KindSurvey, Year: year}.Label()
		return nil, DatasetNotFoundError(label, "sources.yaml")
	}
	return f.Read(ctx, ds)
}

// Roster returns the raw roster table.
func (f *fetcher) Roster(ctx context.Context) (*table.Table, error) {
	ds, ok := f.src.Roster()
	if !ok {
		return nil, DatasetNotFoundError(string(sources.KindRoster), "sources.yaml")
	}
	return f.Read(ctx, ds)
}

// Credentials returns the raw credentials table.
func (f *fetcher) Credentials(ctx context.Context) (*table.Table, error) {
	ds, ok := f.src.Credentials()
	if !ok {
		return nil, DatasetNotFoundError(string(sources.KindCredentials), "sources.yaml")
	}
	return f.Read(ctx, ds)
}

// Read loads one dataset, from the cache when possible.
func (f *fetcher) Read(ctx context.Context, ds sources.Dataset) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, CancelledError(err)
	}

	var key string
	if f.cache != nil && f.cfg.Fetch.UseCache {
		var err error
		if key, err = f.cache.Key(ds); err != nil {
			return nil, DatasetNotFoundError(ds.Label(), ds.Location)
		}
		if !f.cfg.Fetch.Refresh {
			res, ok, err := f.cache.Get(key)
			if err != nil {
				return nil, err
			}
			if ok {
				slog.Info("Dataset loaded from cache",
					"dataset", ds.Label(), "rows", res.Len())
				return res, nil
			}
		}
	}

	start := time.Now()
	var res *table.Table
	var err error
	switch {
	case ds.Format == sources.FormatSQLite:
		res, err = f.readSQLite(ctx, ds)
	case ds.IsRemote():
		res, err = f.readHTTP(ctx, ds)
	default:
		res, err = f.readFile(ds)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, CancelledError(ctx.Err())
		}
		return nil, err
	}

	slog.Info("Dataset fetched",
		"dataset", ds.Label(),
		"location", ds.Location,
		"rows", res.Len(),
		"columns", len(res.Columns),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)

	if key != "" {
		if err = f.cache.Put(key, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// FetchAll loads survey years, the roster and the credentials
// concurrently. At most jobs datasets are fetched at the same time.
// The first failure cancels the remaining fetches.
func FetchAll(
	ctx context.Context,
	f esdash.Fetcher,
	years []int,
	jobs int,
) (pipeline.Inputs, error) {
	res := pipeline.Inputs{Surveys: make(map[int]*table.Table, len(years))}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for _, y := range years {
		g.Go(func() error {
			t, err := f.Survey(gCtx, y)
			if err != nil {
				return err
			}
			mu.Lock()
			res.Surveys[y] = t
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		t, err := f.Roster(gCtx)
		if err != nil {
			return err
		}
		mu.Lock()
		res.Roster = t
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		t, err := f.Credentials(gCtx)
		if err != nil {
			return err
		}
		mu.Lock()
		res.Credentials = t
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return pipeline.Inputs{}, err
	}

	rows := res.Roster.Len()
	for _, t := range res.Surveys {
		rows += t.Len()
	}
	gn.Info("Fetched <em>%d</em> survey year(s) and the roster, <em>%s</em> rows",
		len(years), humanize.Comma(int64(rows)))
	return res, nil
}
