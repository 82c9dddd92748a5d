// Package ioconfig loads configuration from config.yaml and ESDASH_*
// environment variables.
package ioconfig

import (
	"strings"

	"github.com/growthcenter/esdash/internal/iofs"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables.
const EnvPrefix = "ESDASH"

// envKeys are the settings that can be given by environment variables.
// They match the fields included in config.ToOptions(), persistent
// configuration that can be stored in config.yaml.
var envKeys = []string{
	"survey.years",
	"survey.apply_overrides",
	"survey.legacy_remaps",
	"survey.min_group_size",

	"fetch.use_cache",
	"fetch.timeout",

	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.database",
	"database.ssl_mode",
	"database.batch_size",

	"export.format",

	"log.level",
	"log.format",
	"log.destination",

	"jobs_number",
}

// Load reads config.yaml of homeDir and applies environment variables on
// top of it. Settings absent from both keep values of config.New().
// The result is not validated, pass it through ToOptions and Update.
func Load(homeDir string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(homeDir)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	setDefaults(v, config.New())
	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func setDefaults(v *viper.Viper, cfg *config.Config) {
	v.SetDefault("survey.years", cfg.Survey.Years)
	v.SetDefault("survey.apply_overrides", cfg.Survey.ApplyOverrides)
	v.SetDefault("survey.legacy_remaps", cfg.Survey.LegacyRemaps)
	v.SetDefault("survey.min_group_size", cfg.Survey.MinGroupSize)

	v.SetDefault("fetch.use_cache", cfg.Fetch.UseCache)
	v.SetDefault("fetch.timeout", cfg.Fetch.Timeout)

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.database", cfg.Database.Database)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.batch_size", cfg.Database.BatchSize)

	v.SetDefault("export.format", cfg.Export.Format)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.destination", cfg.Log.Destination)

	v.SetDefault("jobs_number", cfg.JobsNumber)
}

func initEnvVars(v *viper.Viper) {
	// Environment variables are bound one by one so it is clear which
	// of them are allowed.
	v.SetEnvPrefix(EnvPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)

	for _, k := range envKeys {
		_ = v.BindEnv(k, EnvPrefix+"_"+strings.ToUpper(replacer.Replace(k)))
	}

	v.AutomaticEnv()
}
