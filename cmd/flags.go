package cmd

import (
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/spf13/cobra"
)

// funcFlag reads one flag and applies it to cfg when it was given.
type funcFlag func(cmd *cobra.Command)

// addFinalizeFlags registers flags of commands that run finalization.
func addFinalizeFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceP("years", "y", nil,
		"survey years to finalize, e.g. 2024,2025 (default from config)")
	cmd.Flags().Bool("overrides", false,
		"apply per-employee unit and subunit corrections")
	cmd.Flags().Bool("legacy-remaps", false,
		"apply legacy marital and education renames")
	cmd.Flags().BoolP("refresh", "r", false,
		"ignore cached datasets and fetch them again")
	cmd.Flags().IntP("jobs", "j", 0,
		"number of datasets fetched concurrently")
}

var finalizeFlags = []funcFlag{
	yearsFlag, overridesFlag, legacyRemapsFlag, refreshFlag, jobsFlag,
}

func applyFlags(cmd *cobra.Command, flags []funcFlag) {
	for _, f := range flags {
		f(cmd)
	}
}

func yearsFlag(cmd *cobra.Command) {
	if !cmd.Flags().Changed("years") {
		return
	}
	years, _ := cmd.Flags().GetIntSlice("years")
	cfg.Update([]config.Option{config.OptSurveyYears(years)})
}

func overridesFlag(cmd *cobra.Command) {
	if !cmd.Flags().Changed("overrides") {
		return
	}
	b, _ := cmd.Flags().GetBool("overrides")
	cfg.Update([]config.Option{config.OptSurveyApplyOverrides(b)})
}

func legacyRemapsFlag(cmd *cobra.Command) {
	if !cmd.Flags().Changed("legacy-remaps") {
		return
	}
	b, _ := cmd.Flags().GetBool("legacy-remaps")
	cfg.Update([]config.Option{config.OptSurveyLegacyRemaps(b)})
}

func refreshFlag(cmd *cobra.Command) {
	b, _ := cmd.Flags().GetBool("refresh")
	cfg.Update([]config.Option{config.OptFetchRefresh(b)})
}

func jobsFlag(cmd *cobra.Command) {
	if !cmd.Flags().Changed("jobs") {
		return
	}
	i, _ := cmd.Flags().GetInt("jobs")
	cfg.Update([]config.Option{config.OptJobsNumber(i)})
}

func formatFlag(cmd *cobra.Command) {
	if !cmd.Flags().Changed("format") {
		return
	}
	s, _ := cmd.Flags().GetString("format")
	cfg.Update([]config.Option{config.OptExportFormat(s)})
}
