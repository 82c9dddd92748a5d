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
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/internal/iodb"
	"github.com/growthcenter/esdash/internal/ioexport"
	"github.com/growthcenter/esdash/pkg/esdash"
	"github.com/spf13/cobra"
)

func getExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Save the finalized merged table to PostgreSQL",
		Long: `Export finalizes survey data and copies the merged table into the
respondents table of the export database. The run is identified by the
fingerprint of the merged table: exporting the same data again replaces
the rows of that run instead of adding new ones.

Run 'esdash create' once before the first export.

Examples:
  esdash export
  esdash export --years 2025 --refresh`,
		RunE: runExport,
	}

	addFinalizeFlags(exportCmd)
	exportCmd.Flags().Bool("no-progress", false, "do not show a progress bar")

	return exportCmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	applyFlags(cmd, finalizeFlags)
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, _, err := finalize(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	op := iodb.NewPgxOperator()
	if err = op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	exp := ioexport.New(op, cfg, !noProgress)
	n, err := exp.Export(ctx, esdash.Run{
		Fingerprint: res.Fingerprint,
		Years:       res.Years,
		Merged:      res.Merged,
	})
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Exported <em>%s</em> respondents of run <em>%s</em>",
		humanize.Comma(int64(n)), res.Fingerprint)
	return nil
}
