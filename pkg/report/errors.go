package report

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// UnknownUserError is returned when a report is requested for a user that
// has no account in the credentials table.
func UnknownUserError(user string) error {
	msg := `Unknown user <em>%s</em>

Add the user to the credentials dataset with a list of authorized units`

	return &gn.Error{
		Code: errcode.ReportUnknownUserError,
		Msg:  msg,
		Vars: []any{user},
		Err:  fmt.Errorf("user %q has no account", user),
	}
}

// BadArgumentError is returned for an incomplete or inconsistent request.
func BadArgumentError(problem string) error {
	return &gn.Error{
		Code: errcode.ReportBadArgumentError,
		Msg:  "Cannot build report: <em>%s</em>",
		Vars: []any{problem},
		Err:  fmt.Errorf("bad report request: %s", problem),
	}
}
