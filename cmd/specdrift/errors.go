// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specdrift/specdrift/internal/issue"
)

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// printError writes err to w. In verbose mode the linked catalog entry, if
// any, is rendered below it.
func printError(w io.Writer, err error, verboseMode bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verboseMode))
	if !verboseMode {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	entry := ae.CatalogIssue()
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render("dark")
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", entry.Id(), "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// fail prints err and returns an ExitError carrying code. The returned error
// has no message of its own so that it is not printed twice.
func fail(w io.Writer, err error, verboseMode bool, code int) error {
	printError(w, err, verboseMode)
	return &ExitError{Code: code}
}
