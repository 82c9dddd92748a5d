// Package access reads analyst accounts from the credentials table and
// limits survey rows to the subunits an analyst may see.
//
// Passwords are carried as they come. Nothing here verifies them.
package access

import (
	"strings"

	"github.com/growthcenter/esdash/pkg/table"
)

// Credentials columns.
const (
	ColUsername = "username"
	ColPassword = "password"
	ColName     = "name"
	ColEmail    = "email"
	ColUnit     = "unit"
)

// ColSubunit is the survey column that access is scoped on.
const ColSubunit = "subunit"

// Account is one analyst.
type Account struct {
	Username string
	// PasswordHash is kept opaque.
	PasswordHash string
	Name         string
	Email        string
	// Units is the list of authorized subunits.
	Units []string
}

// Parse reads accounts from the credentials table. Rows without a username
// are skipped. When a username repeats, the last row wins.
func Parse(creds *table.Table) map[string]Account {
	res := make(map[string]Account)
	if creds == nil {
		return res
	}
	for _, r := range creds.Rows {
		user := strings.TrimSpace(table.Text(r[ColUsername]))
		if user == "" {
			continue
		}
		res[user] = Account{
			Username:     user,
			PasswordHash: table.Text(r[ColPassword]),
			Name:         strings.TrimSpace(table.Text(r[ColName])),
			Email:        strings.TrimSpace(table.Text(r[ColEmail])),
			Units:        Units(table.Text(r[ColUnit])),
		}
	}
	return res
}

// Units splits a comma-separated list of authorized units. Blank entries
// and repeats are dropped.
func Units(list string) []string {
	var res []string
	seen := make(map[string]struct{})
	for _, u := range strings.Split(list, ",") {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		res = append(res, u)
	}
	return res
}

// Scope keeps rows whose subunit is among the authorized units. An empty
// list of units gives an empty table.
func Scope(t *table.Table, units []string) *table.Table {
	set := make(map[string]struct{}, len(units))
	for _, u := range units {
		set[u] = struct{}{}
	}
	return t.Where(func(r table.Row) bool {
		v := r[ColSubunit]
		if table.IsMissing(v) {
			return false
		}
		_, ok := set[table.Text(v)]
		return ok
	}).Clone()
}
