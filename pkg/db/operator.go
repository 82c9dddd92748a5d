// Package db defines the contract of PostgreSQL management used by the
// export commands.
package db

import (
	"context"

	"github.com/growthcenter/esdash/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator manages a connection pool and the tables and views of the
// export database. Pool() lets exporters use CopyFrom and transactions
// directly.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the public schema.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the public schema has any tables.
	// Used to decide if `create` needs --force.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables in the public schema.
	DropAllTables(ctx context.Context) error

	// DropMaterializedViews drops all materialized views in the public
	// schema, so migrations can alter the tables under them.
	DropMaterializedViews(ctx context.Context) error

	// CreateMaterializedViews creates the respondent summary view.
	CreateMaterializedViews(ctx context.Context) error

	// RefreshMaterializedViews recomputes views after an export.
	RefreshMaterializedViews(ctx context.Context) error
}
