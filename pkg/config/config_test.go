package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/growthcenter/esdash/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	home := "/home/analyst"

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{"config dir", config.ConfigDir, filepath.Join(home, ".config", "esdash")},
		{"cache dir", config.CacheDir, filepath.Join(home, ".cache", "esdash")},
		{"dataset cache", config.DatasetCacheDir,
			filepath.Join(home, ".cache", "esdash", "datasets")},
		{"log dir", config.LogDir,
			filepath.Join(home, ".local", "share", "esdash", "logs")},
		{"config file", config.ConfigFilePath,
			filepath.Join(home, ".config", "esdash", "config.yaml")},
		{"sources file", config.SourcesFilePath,
			filepath.Join(home, ".config", "esdash", "sources.yaml")},
		{"lookups file", config.LookupsFilePath,
			filepath.Join(home, ".config", "esdash", "lookups.yaml")},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, v.fn(home), v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	assert.Equal(t, []int{2023, 2024, 2025}, cfg.Survey.Years)
	assert.False(t, cfg.Survey.ApplyOverrides)
	assert.False(t, cfg.Survey.LegacyRemaps)
	assert.Equal(t, 2, cfg.Survey.MinGroupSize)

	assert.True(t, cfg.Fetch.UseCache)
	assert.Equal(t, 60, cfg.Fetch.Timeout)
	assert.False(t, cfg.Fetch.Refresh)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "esdash", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10_000, cfg.Database.BatchSize)

	assert.Equal(t, "csv", cfg.Export.Format)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)

	assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
}

func TestOptSurveyYears(t *testing.T) {
	tests := []struct {
		msg   string
		input []int
		res   []int
	}{
		{"sorted", []int{2024, 2023}, []int{2023, 2024}},
		{"deduplicated", []int{2025, 2025, 2024}, []int{2024, 2025}},
		{"empty ignored", nil, []int{2023, 2024, 2025}},
		{"bad year ignored", []int{2024, 24}, []int{2023, 2024, 2025}},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptSurveyYears(v.input)})
		assert.Equal(t, v.res, cfg.Survey.Years, v.msg)
	}
}

func TestOptSurveyYearsCopies(t *testing.T) {
	in := []int{2025, 2023}
	cfg := config.New()
	cfg.Update([]config.Option{config.OptSurveyYears(in)})
	assert.Equal(t, []int{2025, 2023}, in)
}

func TestOptSurveyMinGroupSize(t *testing.T) {
	tests := []struct {
		msg   string
		input int
		res   int
	}{
		{"larger groups", 5, 5},
		{"two is the floor", 2, 2},
		{"one exposes individuals", 1, 2},
		{"zero", 0, 2},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptSurveyMinGroupSize(v.input)})
		assert.Equal(t, v.res, cfg.Survey.MinGroupSize, v.msg)
	}
}

func TestStringOptions(t *testing.T) {
	tests := []struct {
		msg   string
		opt   func(string) config.Option
		get   func(*config.Config) string
		input string
		res   string
	}{
		{
			msg:   "host",
			opt:   config.OptDatabaseHost,
			get:   func(c *config.Config) string { return c.Database.Host },
			input: "  db.example.com  ",
			res:   "db.example.com",
		},
		{
			msg:   "blank host",
			opt:   config.OptDatabaseHost,
			get:   func(c *config.Config) string { return c.Database.Host },
			input: "   ",
			res:   "localhost",
		},
		{
			msg:   "ssl mode",
			opt:   config.OptDatabaseSSLMode,
			get:   func(c *config.Config) string { return c.Database.SSLMode },
			input: "REQUIRE",
			res:   "require",
		},
		{
			msg:   "bad ssl mode",
			opt:   config.OptDatabaseSSLMode,
			get:   func(c *config.Config) string { return c.Database.SSLMode },
			input: "sometimes",
			res:   "disable",
		},
		{
			msg:   "export format",
			opt:   config.OptExportFormat,
			get:   func(c *config.Config) string { return c.Export.Format },
			input: "Pretty",
			res:   "pretty",
		},
		{
			msg:   "bad export format",
			opt:   config.OptExportFormat,
			get:   func(c *config.Config) string { return c.Export.Format },
			input: "xlsx",
			res:   "csv",
		},
		{
			msg:   "log level",
			opt:   config.OptLogLevel,
			get:   func(c *config.Config) string { return c.Log.Level },
			input: "DEBUG",
			res:   "debug",
		},
		{
			msg:   "bad log level",
			opt:   config.OptLogLevel,
			get:   func(c *config.Config) string { return c.Log.Level },
			input: "trace",
			res:   "info",
		},
		{
			msg:   "log format",
			opt:   config.OptLogFormat,
			get:   func(c *config.Config) string { return c.Log.Format },
			input: "tint",
			res:   "tint",
		},
		{
			msg:   "log destination",
			opt:   config.OptLogDestination,
			get:   func(c *config.Config) string { return c.Log.Destination },
			input: "stderr",
			res:   "stderr",
		},
		{
			msg:   "bad log destination",
			opt:   config.OptLogDestination,
			get:   func(c *config.Config) string { return c.Log.Destination },
			input: "stdin",
			res:   "file",
		},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update([]config.Option{v.opt(v.input)})
		assert.Equal(t, v.res, v.get(cfg), v.msg)
	}
}

func TestIntOptions(t *testing.T) {
	tests := []struct {
		msg   string
		opt   func(int) config.Option
		get   func(*config.Config) int
		input int
		res   int
	}{
		{
			msg:   "port",
			opt:   config.OptDatabasePort,
			get:   func(c *config.Config) int { return c.Database.Port },
			input: 6543,
			res:   6543,
		},
		{
			msg:   "negative port",
			opt:   config.OptDatabasePort,
			get:   func(c *config.Config) int { return c.Database.Port },
			input: -1,
			res:   5432,
		},
		{
			msg:   "batch size",
			opt:   config.OptDatabaseBatchSize,
			get:   func(c *config.Config) int { return c.Database.BatchSize },
			input: 500,
			res:   500,
		},
		{
			msg:   "zero batch size",
			opt:   config.OptDatabaseBatchSize,
			get:   func(c *config.Config) int { return c.Database.BatchSize },
			input: 0,
			res:   10_000,
		},
		{
			msg:   "timeout",
			opt:   config.OptFetchTimeout,
			get:   func(c *config.Config) int { return c.Fetch.Timeout },
			input: 5,
			res:   5,
		},
		{
			msg:   "jobs",
			opt:   config.OptJobsNumber,
			get:   func(c *config.Config) int { return c.JobsNumber },
			input: 3,
			res:   3,
		},
		{
			msg:   "zero jobs",
			opt:   config.OptJobsNumber,
			get:   func(c *config.Config) int { return c.JobsNumber },
			input: 0,
			res:   runtime.NumCPU(),
		},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update([]config.Option{v.opt(v.input)})
		assert.Equal(t, v.res, v.get(cfg), v.msg)
	}
}

func TestMultipleOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseHost("first.host"),
		config.OptSurveyApplyOverrides(true),
		config.OptFetchUseCache(false),
		config.OptDatabaseHost("second.host"),
	})

	assert.Equal(t, "second.host", cfg.Database.Host)
	assert.True(t, cfg.Survey.ApplyOverrides)
	assert.False(t, cfg.Fetch.UseCache)
	assert.Equal(t, "postgres", cfg.Database.Password)
}

func TestToOptions(t *testing.T) {
	original := config.New()
	original.Update([]config.Option{
		config.OptSurveyYears([]int{2024}),
		config.OptSurveyApplyOverrides(true),
		config.OptSurveyLegacyRemaps(true),
		config.OptSurveyMinGroupSize(5),
		config.OptFetchUseCache(false),
		config.OptFetchTimeout(10),
		config.OptDatabaseHost("test.host"),
		config.OptDatabasePort(6543),
		config.OptDatabaseUser("analyst"),
		config.OptDatabasePassword("secret"),
		config.OptDatabaseDatabase("survey"),
		config.OptDatabaseSSLMode("require"),
		config.OptDatabaseBatchSize(100),
		config.OptExportFormat("tsv"),
		config.OptLogLevel("debug"),
		config.OptLogFormat("text"),
		config.OptLogDestination("stdout"),
		config.OptJobsNumber(2),
		config.OptFetchRefresh(true),
		config.OptHomeDir("/custom/home"),
	})

	cfg := config.New()
	cfg.Update(original.ToOptions())

	// runtime-only fields stay at their defaults
	assert.False(t, cfg.Fetch.Refresh)
	assert.Empty(t, cfg.HomeDir)

	cfg.Fetch.Refresh = true
	cfg.HomeDir = "/custom/home"
	assert.Equal(t, original, cfg)
}
