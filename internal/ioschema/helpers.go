package ioschema

import "fmt"

// formatCollationSQL fills table, column and varchar size into a
// collation statement.
func formatCollationSQL(
	template string,
	table string,
	column string,
	varchar int,
) string {
	return fmt.Sprintf(template, table, column, varchar)
}
