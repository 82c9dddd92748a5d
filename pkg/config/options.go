package config

import (
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptSurveyYears sets survey years to finalize. Years are sorted and
// deduplicated. Years before 2000 are rejected.
func OptSurveyYears(ii []int) Option {
	return func(c *Config) {
		if len(ii) == 0 {
			gn.Warn("<em>Survey Years</em> cannot be empty, ignoring")
			return
		}
		for _, y := range ii {
			if y < 2000 || y > 9999 {
				gn.Warn("<em>Survey Years</em> has invalid year %d, ignoring", y)
				return
			}
		}
		years := slices.Clone(ii)
		slices.Sort(years)
		c.Survey.Years = slices.Compact(years)
	}
}

// OptSurveyApplyOverrides enables or disables per-employee overrides.
func OptSurveyApplyOverrides(b bool) Option {
	return func(c *Config) {
		c.Survey.ApplyOverrides = b
	}
}

// OptSurveyLegacyRemaps enables or disables legacy categorical remaps.
func OptSurveyLegacyRemaps(b bool) Option {
	return func(c *Config) {
		c.Survey.LegacyRemaps = b
	}
}

// OptSurveyMinGroupSize sets the smallest group shown in reports.
// Values below 2 would expose single respondents and are rejected.
func OptSurveyMinGroupSize(i int) Option {
	return func(c *Config) {
		if i < 2 {
			gn.Warn(
				"<em>Min Group Size</em> cannot be smaller than 2, ignoring %d", i,
			)
			return
		}
		c.Survey.MinGroupSize = i
	}
}

// OptFetchUseCache enables or disables the dataset cache.
func OptFetchUseCache(b bool) Option {
	return func(c *Config) {
		c.Fetch.UseCache = b
	}
}

// OptFetchTimeout sets the HTTP timeout in seconds.
func OptFetchTimeout(i int) Option {
	return func(c *Config) {
		if isValidInt("Fetch Timeout", i) {
			c.Fetch.Timeout = i
		}
	}
}

// OptFetchRefresh makes the next run ignore cached datasets.
// Runtime-only field - not in ToOptions().
func OptFetchRefresh(b bool) Option {
	return func(c *Config) {
		c.Fetch.Refresh = b
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows sent per COPY batch.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptExportFormat sets the file export format.
// Valid values: "csv", "tsv", "compact", "pretty".
func OptExportFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Export.Format", s) {
			c.Export.Format = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of datasets fetched concurrently.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
