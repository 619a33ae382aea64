// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/specdrift/specdrift/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// configEnvVar names the config file when --config is not given.
const configEnvVar = "SPECDRIFT_CONFIG"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "specdrift",
		Short: "Keep specification documents in step with the code",
		Long: TitleStyle.Render("specdrift") + SubtitleStyle.Render(" - keep specification documents in step with the code") + `

specdrift describes a project's structure as JSON and checks that the
counts, names and "Last verified" dates recorded in its specification
documents still match the code they describe.

` + SubtitleStyle.Render("Examples:") + `
  specdrift discover .              Describe the project in the current directory
  specdrift drift                   Check spec documents against the code
  specdrift drift --watch           Re-check whenever a document or source changes
  specdrift config init             Write specdrift.cue with the reference layout`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.initLogger(opts.verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(configEnvVar),
		"config file (default: $"+configEnvVar+", else the nearest "+config.FileName()+" above the working directory)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newDiscoverCommand(app, opts),
		newDriftCommand(app, opts),
		newHeadingsCommand(app),
		newRowsCommand(app),
		newConfigCommand(app, opts),
		newIssuesCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	// A missing .env is the common case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
