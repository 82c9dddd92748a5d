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
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/internal/ioexport"
	"github.com/growthcenter/esdash/pkg/filter"
	"github.com/growthcenter/esdash/pkg/report"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/spf13/cobra"
)

func getReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate finalized data for an analyst",
		Long: `Report finalizes the data and prints a grouped summary.

Rows are first limited to the subunits authorized for --user, then filtered,
aggregated and checked for confidentiality: groups with fewer respondents
than survey.min_group_size are removed and a disclaimer is printed.

Kinds:
  count          respondents per group
  mean           mean of --value per group
  mood           distribution of the mood meter (EMO)
  nps            NPS categories per group and the overall score
  engagement     distribution of engagement levels
  participation  done and not done employees per group (latest year)
  cross          counts of --by against --cross
  compare        year-over-year means, optionally by one column

Examples:
  esdash report --by subunit --user ana
  esdash report --kind mean --value SAT --by layer --year 2025
  esdash report --kind cross --by category_sat --cross category_nps
  esdash report --kind compare --value gallup_avg --by tenure_category
  esdash report --filter unit=KG\ MEDIA --filter layer=Officer
  esdash report --list subunit`,
		RunE: runReport,
	}

	addFinalizeFlags(reportCmd)
	f := reportCmd.Flags()
	f.StringP("kind", "k", string(report.Count), "kind of report")
	f.StringSliceP("by", "b", nil, "grouping columns")
	f.String("value", "", "value column of mean and compare reports")
	f.String("cross", "", "second column of a cross report")
	f.StringArray("filter", nil, "filter as dimension=value[,value], repeatable")
	f.StringP("user", "u", "", "analyst whose authorized units scope the data")
	f.Int("year", 0, "use one survey year instead of the merged table")
	f.String("list", "", "list values of a column to use in filters")
	f.StringP("format", "f", "", "csv, tsv, compact or pretty instead of a text table")

	return reportCmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	applyFlags(cmd, finalizeFlags)

	req, err := reportRequest(cmd)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, lk, err := finalize(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	b := report.New(res, lk)
	w := cmd.OutOrStdout()

	if dim, _ := cmd.Flags().GetString("list"); dim != "" {
		vals, err := b.Options(dim, req.User)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		for _, v := range vals {
			fmt.Fprintln(w, v)
		}
		return nil
	}

	rep, err := b.Build(req)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return printReport(w, rep, format)
}

func reportRequest(cmd *cobra.Command) (report.Request, error) {
	f := cmd.Flags()
	kind, _ := f.GetString("kind")
	by, _ := f.GetStringSlice("by")
	value, _ := f.GetString("value")
	cross, _ := f.GetString("cross")
	filters, _ := f.GetStringArray("filter")
	user, _ := f.GetString("user")
	year, _ := f.GetInt("year")

	spec, err := filter.ParseSpec(filters)
	if err != nil {
		return report.Request{}, report.BadArgumentError(err.Error())
	}

	return report.Request{
		Kind:         report.Kind(strings.ToLower(kind)),
		By:           by,
		Value:        value,
		Cross:        cross,
		Filter:       spec,
		User:         user,
		Year:         year,
		MinGroupSize: cfg.Survey.MinGroupSize,
	}, nil
}

func printReport(w io.Writer, rep *report.Report, format string) error {
	for _, c := range rep.Applied {
		fmt.Fprintf(w, "Filter %s\n", c)
	}
	if !rep.Available {
		fmt.Fprintln(w, rep.Reason)
		return nil
	}

	if format != "" {
		if err := ioexport.Write(w, format, rep.Table); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	} else {
		printTable(w, rep.Table)
	}

	if rep.NPS != nil {
		fmt.Fprintf(w, "\nNPS: %.1f (%s), %d respondents\n",
			rep.NPS.Score, rep.NPS.Category, rep.NPS.Total)
	}
	for _, d := range rep.Disclaimers {
		fmt.Fprintf(w, "\n%s\n", d)
	}
	return nil
}

// printTable prints a table with aligned columns. Missing values are
// shown as empty cells.
func printTable(w io.Writer, t *table.Table) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, line := range t.Strings() {
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	tw.Flush()
}
