package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// NotConnectedError is returned when a schema operation runs before the
// operator is connected.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Schema operation attempted without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError wraps failures to open GORM on top of the pool.
func GORMConnectionError(err error) error {
	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  "Cannot connect to database with GORM",
		Err:  fmt.Errorf("open gorm: %w", err),
	}
}

// CreateSchemaError wraps AutoMigrate failures of `esdash create`.
func CreateSchemaError(err error) error {
	msg := `Cannot create export tables

<em>How to fix:</em>
  1. Check that the database user has CREATE permission
  2. Run <em>esdash create --force</em> to drop existing tables`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Err:  fmt.Errorf("create schema: %w", err),
	}
}

// MigrateSchemaError wraps AutoMigrate failures of `esdash migrate`.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate export tables

If the tables hold nothing of value, recreate them with
<em>esdash create --force</em>`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Err:  fmt.Errorf("migrate schema: %w", err),
	}
}

// CollationError is returned when "C" collation cannot be set.
func CollationError(table, column string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaCollationError,
		Msg:  "Cannot set collation on <em>%s.%s</em>",
		Vars: []any{table, column},
		Err: fmt.Errorf(
			"set collation on %s.%s: %w", table, column, err,
		),
	}
}
