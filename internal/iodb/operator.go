// Package iodb implements db.Operator with pgxpool.
package iodb

import (
	"context"
	"fmt"

	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/db"
	"github.com/growthcenter/esdash/pkg/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxOperator implements db.Operator interface using
// pgxpool for connection pooling.
type pgxOperator struct {
	pool *pgxpool.Pool
}

// NewPgxOperator creates a new database operator
// (without connecting).
func NewPgxOperator() db.Operator {
	return &pgxOperator{}
}

// Connect establishes a connection pool to PostgreSQL and pings it.
func (p *pgxOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	// one COPY stream per export
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	p.pool = pool
	return nil
}

// Close releases all database connections.
func (p *pgxOperator) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// Pool returns the underlying pgxpool.Pool for advanced
// operations.
func (p *pgxOperator) Pool() *pgxpool.Pool {
	return p.pool
}

// TableExists checks if a table exists in the current
// database.
func (p *pgxOperator) TableExists(
	ctx context.Context,
	tableName string,
) (bool, error) {
	if p.pool == nil {
		return false, NotConnectedError()
	}

	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`

	var exists bool
	err := p.pool.QueryRow(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, TableExistsCheckError(tableName, err)
	}

	return exists, nil
}

// HasTables checks if the database has any tables in the
// public schema.
func (p *pgxOperator) HasTables(
	ctx context.Context,
) (bool, error) {
	if p.pool == nil {
		return false, NotConnectedError()
	}

	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
		)
	`

	var hasTables bool
	err := p.pool.QueryRow(ctx, query).Scan(&hasTables)
	if err != nil {
		return false, TableCheckError(err)
	}

	return hasTables, nil
}

// DropAllTables drops all tables in the public schema.
func (p *pgxOperator) DropAllTables(ctx context.Context) error {
	if p.pool == nil {
		return NotConnectedError()
	}

	tables, err := p.names(ctx,
		"SELECT tablename FROM pg_tables WHERE schemaname = 'public'")
	if err != nil {
		return QueryTablesError(err)
	}

	for _, table := range tables {
		q := "DROP TABLE IF EXISTS " + pgx.Identifier{table}.Sanitize() +
			" CASCADE"
		if _, err := p.pool.Exec(ctx, q); err != nil {
			return DropTableError(table, err)
		}
	}
	return nil
}

// DropMaterializedViews drops all materialized views in the
// public schema.
func (p *pgxOperator) DropMaterializedViews(
	ctx context.Context,
) error {
	if p.pool == nil {
		return NotConnectedError()
	}

	views, err := p.names(ctx,
		"SELECT matviewname FROM pg_matviews WHERE schemaname = 'public'")
	if err != nil {
		return QueryViewsError(err)
	}

	for _, view := range views {
		q := "DROP MATERIALIZED VIEW IF EXISTS " +
			pgx.Identifier{view}.Sanitize() + " CASCADE"
		if _, err := p.pool.Exec(ctx, q); err != nil {
			return DropViewError(view, err)
		}
	}
	return nil
}

// names collects a single text column.
func (p *pgxOperator) names(ctx context.Context, query string) ([]string, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CreateMaterializedViews creates the respondent summary view. The view
// counts respondents per run, year, unit and subunit. Groups smaller than
// two respondents are left out so the view never points at a single
// employee.
func (p *pgxOperator) CreateMaterializedViews(
	ctx context.Context,
) error {
	if p.pool == nil {
		return NotConnectedError()
	}

	viewSQL := fmt.Sprintf(`CREATE MATERIALIZED VIEW %s AS
SELECT run_id, year, unit, subunit, count(*) AS respondents
FROM respondents
GROUP BY run_id, year, unit, subunit
HAVING count(*) >= 2`, schema.SummaryView)

	if _, err := p.pool.Exec(ctx, viewSQL); err != nil {
		return CreateViewError(schema.SummaryView, err)
	}

	idx := fmt.Sprintf(
		"CREATE INDEX ON %s (run_id, year)", schema.SummaryView,
	)
	if _, err := p.pool.Exec(ctx, idx); err != nil {
		return CreateViewError(schema.SummaryView, err)
	}

	return nil
}

// RefreshMaterializedViews recomputes the summary view.
func (p *pgxOperator) RefreshMaterializedViews(
	ctx context.Context,
) error {
	if p.pool == nil {
		return NotConnectedError()
	}

	q := "REFRESH MATERIALIZED VIEW " + schema.SummaryView
	if _, err := p.pool.Exec(ctx, q); err != nil {
		return RefreshViewError(schema.SummaryView, err)
	}
	return nil
}
