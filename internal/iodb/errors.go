package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// ConnectionError is returned when the PostgreSQL pool cannot be created
// or does not answer a ping.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Cannot connect to PostgreSQL at <em>%s:%d</em>

<em>Possible causes:</em>
  1. PostgreSQL is not running
  2. Database <em>%s</em> does not exist or user <em>%s</em> has no access
  3. Settings in ~/.config/esdash/config.yaml are wrong

<em>How to fix:</em>
  Create the database with <em>createdb %s</em> and check the
  <em>database</em> section of config.yaml or ESDASH_DATABASE_* variables`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{host, port, database, user, database},
		Err: fmt.Errorf(
			"connect to %s:%d/%s: %w", host, port, database, err,
		),
	}
}

// NotConnectedError is returned when an operation runs before Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database is not connected",
		Err:  fmt.Errorf("database pool is nil"),
	}
}

// NotReadyError is returned when export tables are missing.
func NotReadyError(database string) error {
	msg := `Database <em>%s</em> has no export tables

Run <em>esdash create</em> first`

	return &gn.Error{
		Code: errcode.DBNotReadyError,
		Msg:  msg,
		Vars: []any{database},
		Err:  fmt.Errorf("database %s is not initialized", database),
	}
}

func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  "Cannot check database tables",
		Err:  fmt.Errorf("check tables: %w", err),
	}
}

func TableExistsCheckError(tableName string, err error) error {
	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  "Cannot check if table <em>%s</em> exists",
		Vars: []any{tableName},
		Err:  fmt.Errorf("check table %s: %w", tableName, err),
	}
}

func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  "Cannot list database tables",
		Err:  fmt.Errorf("query tables: %w", err),
	}
}

func DropTableError(tableName string, err error) error {
	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  "Cannot drop table <em>%s</em>",
		Vars: []any{tableName},
		Err:  fmt.Errorf("drop table %s: %w", tableName, err),
	}
}

func QueryViewsError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryViewsError,
		Msg:  "Cannot list materialized views",
		Err:  fmt.Errorf("query views: %w", err),
	}
}

func DropViewError(view string, err error) error {
	return &gn.Error{
		Code: errcode.DBDropViewError,
		Msg:  "Cannot drop materialized view <em>%s</em>",
		Vars: []any{view},
		Err:  fmt.Errorf("drop view %s: %w", view, err),
	}
}

func CreateViewError(view string, err error) error {
	return &gn.Error{
		Code: errcode.DBCreateViewError,
		Msg:  "Cannot create materialized view <em>%s</em>",
		Vars: []any{view},
		Err:  fmt.Errorf("create view %s: %w", view, err),
	}
}

func RefreshViewError(view string, err error) error {
	return &gn.Error{
		Code: errcode.DBRefreshViewError,
		Msg:  "Cannot refresh materialized view <em>%s</em>",
		Vars: []any{view},
		Err:  fmt.Errorf("refresh view %s: %w", view, err),
	}
}
