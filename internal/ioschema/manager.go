// Package ioschema implements esdash.SchemaManager with GORM AutoMigrate.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/growthcenter/esdash/pkg/config"
	"github.com/growthcenter/esdash/pkg/db"
	"github.com/growthcenter/esdash/pkg/esdash"
	"github.com/growthcenter/esdash/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type manager struct {
	operator db.Operator
	cfg      *config.Config
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator, cfg *config.Config) esdash.SchemaManager {
	return &manager{operator: op, cfg: cfg}
}

// Create creates tables, sets "C" collation on grouping columns and
// creates the summary view. Byte-wise collation makes database ordering
// of units agree with report ordering.
func (m *manager) Create(ctx context.Context) error {
	gormDB, err := m.gorm()
	if err != nil {
		return err
	}

	if err = schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return CreateSchemaError(err)
	}

	if err = m.setCollation(ctx); err != nil {
		return err
	}

	if err = m.operator.CreateMaterializedViews(ctx); err != nil {
		return err
	}

	slog.Info("Schema created", "database", m.cfg.Database.Database)
	return nil
}

// Migrate updates tables to the current models.
func (m *manager) Migrate(ctx context.Context, recreateViews bool) error {
	gormDB, err := m.gorm()
	if err != nil {
		return err
	}

	if err = m.operator.DropMaterializedViews(ctx); err != nil {
		return err
	}

	if err = schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return MigrateSchemaError(err)
	}

	if recreateViews {
		if err = m.operator.CreateMaterializedViews(ctx); err != nil {
			return err
		}
	}

	slog.Info("Schema migrated",
		"database", m.cfg.Database.Database,
		"views", recreateViews,
	)
	return nil
}

func (m *manager) gorm() (*gorm.DB, error) {
	pool := m.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB, nil
}

func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{"respondents", "nik", 50},
		{"respondents", "unit", 255},
		{"respondents", "subunit", 255},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, col := range columns {
		q := formatCollationSQL(qStr, col.table, col.column, col.varchar)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}
