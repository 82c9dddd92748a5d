/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/growthcenter/esdash/internal/iocache"
	"github.com/growthcenter/esdash/internal/ioexport"
	"github.com/growthcenter/esdash/internal/iofetch"
	"github.com/growthcenter/esdash/internal/iolookup"
	"github.com/growthcenter/esdash/internal/iosources"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/lookup"
	"github.com/growthcenter/esdash/pkg/pipeline"
	"github.com/spf13/cobra"
)

// maxNotes is the number of notes printed without --notes.
const maxNotes = 10

func getFinalizeCmd() *cobra.Command {
	finalizeCmd := &cobra.Command{
		Use:   "finalize",
		Short: "Fetch and finalize survey datasets",
		Long: `Finalize fetches survey years, the roster and the credentials listed
in sources.yaml, normalizes them, derives metrics and merges all years into
one longitudinal table.

Data-quality problems never stop finalization. They are reported as notes.
The fingerprint identifies the content of the merged table: the same raw
data always gives the same fingerprint.

Examples:
  esdash finalize
  esdash finalize --years 2024,2025 --refresh
  esdash finalize --out merged.csv
  esdash finalize --out merged.json --format pretty`,
		RunE: runFinalize,
	}

	addFinalizeFlags(finalizeCmd)
	finalizeCmd.Flags().StringP("out", "o", "",
		"write the merged table to a file")
	finalizeCmd.Flags().StringP("format", "f", "",
		"format of --out: csv, tsv, compact, pretty (default from config)")
	finalizeCmd.Flags().Bool("notes", false,
		"print all data-quality notes")

	return finalizeCmd
}

func runFinalize(cmd *cobra.Command, _ []string) error {
	applyFlags(cmd, append(finalizeFlags, formatFlag))
	out, _ := cmd.Flags().GetString("out")
	allNotes, _ := cmd.Flags().GetBool("notes")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, _, err := finalize(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	printSummary(cmd.OutOrStdout(), res, allNotes)

	if out != "" {
		if err = ioexport.ToFile(out, cfg.Export.Format, res.Merged); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		gn.Info("Merged table saved to <em>%s</em>", out)
	}
	return nil
}

// finalize fetches every configured dataset and runs the pipeline.
func finalize(ctx context.Context) (*pipeline.Result, *lookup.Tables, error) {
	start := time.Now()

	src, err := iosources.New(cfg).Load()
	if err != nil {
		return nil, nil, err
	}

	lk, err := iolookup.Load(cfg.HomeDir)
	if err != nil {
		return nil, nil, err
	}

	var cache *iocache.Cache
	if cfg.Fetch.UseCache {
		cache, err = iocache.New(config.DatasetCacheDir(cfg.HomeDir))
		if err != nil {
			return nil, nil, err
		}
	}

	f := iofetch.New(cfg, src, cache)
	in, err := iofetch.FetchAll(ctx, f, cfg.Survey.Years, cfg.JobsNumber)
	if err != nil {
		return nil, nil, err
	}

	res, err := pipeline.Run(in, lk, pipeline.Options{
		Years:          cfg.Survey.Years,
		ApplyOverrides: cfg.Survey.ApplyOverrides,
		LegacyRemaps:   cfg.Survey.LegacyRemaps,
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Finalization done",
		"years", res.Years,
		"fingerprint", res.Fingerprint,
		"notes", len(res.Notes),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return res, lk, nil
}

func printSummary(w io.Writer, res *pipeline.Result, allNotes bool) {
	fmt.Fprintln(w, "Survey responses:")
	for _, y := range res.Years {
		fmt.Fprintf(w, "  %d: %s\n", y, humanize.Comma(int64(res.PerYear[y].Len())))
	}
	fmt.Fprintf(w, "Merged table:  %s rows, %d columns\n",
		humanize.Comma(int64(res.Merged.Len())), len(res.Merged.Columns))
	fmt.Fprintf(w, "Roster:        %s employees\n",
		humanize.Comma(int64(res.Roster.Len())))
	fmt.Fprintf(w, "Participation: %s rows\n",
		humanize.Comma(int64(res.Participation.Len())))
	fmt.Fprintf(w, "Accounts:      %d\n", len(res.Accounts))
	fmt.Fprintf(w, "Fingerprint:   %s\n", res.Fingerprint)

	if len(res.Notes) == 0 {
		return
	}
	fmt.Fprintf(w, "\nData-quality notes (%d):\n", len(res.Notes))
	notes := res.Notes
	if !allNotes && len(notes) > maxNotes {
		notes = notes[:maxNotes]
	}
	for _, n := range notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
	if len(notes) < len(res.Notes) {
		fmt.Fprintf(w, "  ... %d more, use --notes to see all\n",
			len(res.Notes)-len(notes))
	}
}
