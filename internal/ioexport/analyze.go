package ioexport

import (
	"context"
	"log/slog"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/jackc/pgx/v5/pgxpool"
)

// analyzeTables updates planner statistics of export tables after a bulk
// COPY. VACUUM cannot run inside a transaction, so it uses the pool.
func analyzeTables(ctx context.Context, pool *pgxpool.Pool) error {
	start := time.Now()
	_, err := pool.Exec(ctx, "VACUUM ANALYZE respondents, export_runs")
	if err != nil {
		return AnalyzeError(err)
	}
	slog.Info("Export tables analyzed",
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return nil
}
