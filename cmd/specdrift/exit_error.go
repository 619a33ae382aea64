// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

const (
	// exitWarnings is returned when a drift run reports warnings, or when
	// discover is pointed at something that is not a directory.
	exitWarnings = 1
	// exitFatal is returned when a drift run cannot complete.
	exitFatal = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
