package iologger

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/growthcenter/esdash/pkg/errcode"
)

// CreateLogFileError is returned when the log file cannot be opened.
func CreateLogFileError(path string, err error) error {
	msg := `Cannot create log file <em>%s</em>

Set <em>log.destination</em> to stderr in config.yaml or fix permissions
of the log directory`

	pc, _, _, _ := runtime.Caller(1)
	return &gn.Error{
		Code: errcode.CreateLogFileError,
		Msg:  msg,
		Vars: []any{path},
		Err: fmt.Errorf("%s: open log %s: %w",
			runtime.FuncForPC(pc).Name(), path, err),
	}
}
