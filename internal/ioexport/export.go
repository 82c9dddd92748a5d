// Package ioexport saves finalized survey data to PostgreSQL and to files.
package ioexport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
	"github.com/growthcenter/esdash/internal/iodb"
	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/db"
	"github.com/growthcenter/esdash/pkg/esdash"
	"github.com/growthcenter/esdash/pkg/merge"
	"github.com/growthcenter/esdash/pkg/normalize"
	"github.com/growthcenter/esdash/pkg/schema"
	"github.com/growthcenter/esdash/pkg/table"
	"github.com/jackc/pgx/v5"
)

type exporter struct {
	op  db.Operator
	cfg *config.Config
	// progress shows a progress bar during COPY.
	progress bool
}

// New creates an Exporter that writes to the database of op. The operator
// must be connected.
func New(op db.Operator, cfg *config.Config, progress bool) esdash.Exporter {
	return &exporter{op: op, cfg: cfg, progress: progress}
}

// Export replaces rows of the run and refreshes the summary view. All
// writes happen in one transaction, a failed export leaves the previous
// state intact.
func (e *exporter) Export(ctx context.Context, run esdash.Run) (int, error) {
	pool := e.op.Pool()
	if pool == nil {
		return 0, iodb.NotConnectedError()
	}

	exists, err := e.op.TableExists(ctx, "respondents")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, iodb.NotReadyError(e.cfg.Database.Database)
	}

	runID, err := uuid.Parse(run.Fingerprint)
	if err != nil {
		return 0, RunError(run.Fingerprint, err)
	}

	rows, err := respondentRows(runID, run.Merged)
	if err != nil {
		return 0, RunError(run.Fingerprint, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, RunError(run.Fingerprint, err)
	}
	defer tx.Rollback(ctx)

	err = saveRun(ctx, tx, runID, run)
	if err != nil {
		return 0, RunError(run.Fingerprint, err)
	}

	_, err = tx.Exec(ctx, "DELETE FROM respondents WHERE run_id = $1", runID)
	if err != nil {
		return 0, RunError(run.Fingerprint, err)
	}

	count, err := e.copyRows(ctx, tx, run.Fingerprint, rows)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, RunError(run.Fingerprint, err)
	}

	if err = e.op.RefreshMaterializedViews(ctx); err != nil {
		return 0, err
	}

	if err = analyzeTables(ctx, pool); err != nil {
		return 0, err
	}

	slog.Info("Export finished",
		"run", run.Fingerprint,
		"respondents", count,
		"database", e.cfg.Database.Database,
	)
	return count, nil
}

func saveRun(
	ctx context.Context,
	tx pgx.Tx,
	runID uuid.UUID,
	run esdash.Run,
) error {
	years := make([]string, len(run.Years))
	for i, y := range run.Years {
		years[i] = strconv.Itoa(y)
	}
	var rowsNum, colsNum int
	if run.Merged != nil {
		rowsNum, colsNum = run.Merged.Len(), len(run.Merged.Columns)
	}

	q := `INSERT INTO export_runs
	(id, years, respondents, columns, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (id) DO UPDATE SET
	years = EXCLUDED.years,
	respondents = EXCLUDED.respondents,
	columns = EXCLUDED.columns,
	version = EXCLUDED.version,
	updated_at = now()`

	_, err := tx.Exec(ctx, q,
		runID, strings.Join(years, ","), rowsNum, colsNum, esdash.Version,
	)
	return err
}

func (e *exporter) copyRows(
	ctx context.Context,
	tx pgx.Tx,
	runID string,
	rows [][]any,
) (int, error) {
	batchSize := max(e.cfg.Database.BatchSize, 1)

	var bar *pb.ProgressBar
	if e.progress {
		bar = newProgressBar(len(rows), "Respondents: ")
		defer bar.Finish()
	}

	var res int
	for offset := 0; offset < len(rows); offset += batchSize {
		end := min(offset+batchSize, len(rows))
		n, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"respondents"},
			schema.RespondentColumns,
			pgx.CopyFromRows(rows[offset:end]),
		)
		if err != nil {
			return 0, CopyError(runID, offset, err)
		}
		res += int(n)
		if bar != nil {
			bar.Add64(n)
		}
	}
	return res, nil
}

// respondentRows converts the merged table into COPY rows. Row IDs are
// derived from the run ID and the row position.
func respondentRows(runID uuid.UUID, t *table.Table) ([][]any, error) {
	if t == nil {
		return nil, nil
	}

	enc := gnfmt.GNjson{}
	res := make([][]any, 0, t.Len())
	for i, r := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			v := r[c]
			if table.IsMissing(v) {
				v = nil
			}
			rec[c] = v
		}
		js, err := enc.Encode(rec)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}

		year, _ := table.Int(r[merge.ColYear])
		id := gnuuid.New(fmt.Sprintf("%s|%d", runID, i))
		res = append(res, []any{
			id,
			runID,
			year,
			table.Text(r[normalize.ColNIK]),
			table.Text(r[normalize.ColUnit]),
			table.Text(r[normalize.ColSubunit]),
			js,
		})
	}
	return res, nil
}

func newProgressBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}
