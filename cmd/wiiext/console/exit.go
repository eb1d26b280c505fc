package console

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/wiiext"
)

// Exit codes
const (
	ExitFailure   = 1
	ExitTransport = 2
	ExitData      = 3
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}

// ExitErr picks the exit code from the error kind so scripts can tell a
// missing controller from a malformed report.
func ExitErr(msg string, err error) cli.ExitCoder {
	code := ExitFailure
	var terr *wiiext.TransportError
	switch {
	case errors.As(err, &terr):
		code = ExitTransport
	case errors.Is(err, wiiext.ErrInvalidInputData):
		code = ExitData
	}
	return Exit(code, "%s: %s", msg, Red(err))
}
