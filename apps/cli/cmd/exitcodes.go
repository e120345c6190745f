package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
)

// Exit codes for apix CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitRequestFailure indicates the request could not be completed
	ExitRequestFailure = 1

	// ExitManifestError indicates an invalid manifest or template
	ExitManifestError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// errSilent fails a command whose problem was already reported.
var errSilent = errors.New("command failed")

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitUsageError, err: err}
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitConfigError, err: err}
}

// invalidManifest fails a command after manifest problems were reported.
func invalidManifest() error {
	return &exitError{code: ExitManifestError, err: errSilent}
}

// exitCode maps err to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch errdef.KindOf(err) {
	case errdef.KindTemplate, errdef.KindManifest, errdef.KindSerialization:
		return ExitManifestError
	case errdef.KindHTTP:
		return ExitNetworkError
	case errdef.KindParameter:
		return ExitUsageError
	default:
		return ExitRequestFailure
	}
}
