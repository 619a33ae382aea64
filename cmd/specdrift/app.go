// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/specdrift/specdrift/internal/clock"
	"github.com/specdrift/specdrift/internal/config"
	"github.com/specdrift/specdrift/internal/logging"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reads configuration, time and output writers from it.
	App struct {
		Config config.Provider
		Clock  clock.Clock
		stdout io.Writer
		stderr io.Writer

		newLogger func(w io.Writer, verbose bool) *slog.Logger
		log       *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Clock  clock.Clock
		Stdout io.Writer
		Stderr io.Writer
		// NewLogger builds the command logger once --verbose is known.
		// The default, logging.Init, also installs it as the slog default.
		NewLogger func(w io.Writer, verbose bool) *slog.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.NewLogger == nil {
		deps.NewLogger = logging.Init
	}
	return &App{
		Config:    deps.Config,
		Clock:     deps.Clock,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		newLogger: deps.NewLogger,
		log:       slog.Default(),
	}
}

// initLogger replaces the app logger according to --verbose.
func (a *App) initLogger(verbose bool) {
	a.log = a.newLogger(a.stderr, verbose)
}
