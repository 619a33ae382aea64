// SPDX-License-Identifier: MPL-2.0

// Package logging installs the process-wide slog logger.
//
// Library packages log through log/slog only. The CLI calls Init once, which
// routes slog records to a charmbracelet/log logger on stderr. Tests build
// their loggers with NewSlog so the process default is never swapped
// concurrently.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "specdrift"

// New returns a charmbracelet logger writing to w. Verbose enables Debug
// records; otherwise only warnings and errors are shown.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          Prefix,
		ReportTimestamp: verbose,
	})
}

// NewSlog wraps New in a *slog.Logger without touching the slog default.
func NewSlog(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(New(w, verbose))
}

// Init makes a logger from NewSlog the slog default and returns it.
func Init(w io.Writer, verbose bool) *slog.Logger {
	logger := NewSlog(w, verbose)
	slog.SetDefault(logger)
	return logger
}
