package cmd

import (
	"errors"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"blobtool/internal/download"
	"blobtool/internal/listing"
	"blobtool/internal/storage"
)

// Process exit codes.
const (
	ExitOK = iota
	ExitFailure
	ExitInvocation
	ExitRemote
	ExitLocalIO
)

// InvocationError is a problem with the command line itself. No remote call
// has been made when one is returned.
type InvocationError struct {
	Message string
}

func (e *InvocationError) Error() string {
	return e.Message
}

func invocationError(message string) error {
	return &InvocationError{Message: message}
}

// reportedError marks an error whose message the command already wrote to
// its output.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return reportedError{err: err}
}

// invocationArgs turns positional-argument validation failures into
// invocation errors.
func invocationArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return invocationError(err.Error())
		}
		return nil
	}
}

func flagError(_ *cobra.Command, err error) error {
	return invocationError(err.Error())
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	var invocationErr *InvocationError
	var localErr *download.LocalIOError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &invocationErr):
		return ExitInvocation
	case errors.As(err, &localErr):
		return ExitLocalIO
	case storage.IsRemote(err), errors.Is(err, listing.ErrOutsideDirectory):
		return ExitRemote
	default:
		return ExitFailure
	}
}

func handleError(w io.Writer, styles fang.Styles, err error) {
	if errors.As(err, new(reportedError)) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
