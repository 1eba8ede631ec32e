package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
)

// reported wraps an error that was already shown to the user.
type reported struct{ err error }

func (r reported) Error() string { return r.err.Error() }
func (r reported) Unwrap() error { return r.err }

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var r reported
	return stderrors.As(err, &r)
}

// termDialog reports host results on stdout and asks on stdin.
type termDialog struct {
	in  io.Reader
	yes bool
}

func (d termDialog) Info(msg string)  { printSuccess("%s", msg) }
func (d termDialog) Warn(msg string)  { printWarning("%s", msg) }
func (d termDialog) Error(msg string) { printError("%s", msg) }

func (d termDialog) Confirm(_ context.Context, msg string) (bool, error) {
	if d.yes {
		return true, nil
	}
	in := d.in
	if in == nil {
		in = os.Stdin
	}
	return confirm(in, msg)
}
