// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"log/slog"

	"github.com/specdrift/specdrift/internal/discovery"
	"github.com/specdrift/specdrift/internal/issue"
	"github.com/specdrift/specdrift/internal/scan"

	"github.com/spf13/cobra"
)

func newDiscoverCommand(app *App, root *rootOptions) *cobra.Command {
	var homeDir string

	cmd := &cobra.Command{
		Use:   "discover [root]",
		Short: "Describe a project's structure as JSON",
		Long: `Describe a project's structure as JSON.

The report lists specification documents with their headings, the source
code layout, infrastructure-as-code files, build manifests, the test
layout and any CLAUDE.md configuration. It is written to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			res, err := discovery.Discover(cmd.Context(), discovery.Options{
				Root:    dir,
				HomeDir: homeDir,
				Scan:    scan.DefaultOptions(),
			})
			if err != nil {
				if errors.Is(err, discovery.ErrNotDirectory) {
					err = issue.NewErrorContext().
						WithOperation("discover project structure").
						WithResource(dir).
						WithSuggestion("Pass the path of an existing project directory").
						WithIssue(issue.RootNotDirectoryId).
						Wrap(err).
						BuildError()
				}
				return fail(app.stderr, err, root.verbose, exitWarnings)
			}

			logDiagnostics(app.log, res.Diagnostics)

			if err := discovery.ValidateReport(res.Report); err != nil {
				return fail(app.stderr, err, root.verbose, exitFatal)
			}
			return discovery.WriteJSON(app.stdout, res.Report)
		},
	}

	cmd.Flags().StringVar(&homeDir, "home", "", `home directory for the user-level CLAUDE.md ("-" skips it)`)
	return cmd
}

func logDiagnostics(log *slog.Logger, diags []discovery.Diagnostic) {
	for _, d := range diags {
		attrs := []any{"code", d.Code}
		if d.Path != "" {
			attrs = append(attrs, "path", d.Path)
		}
		if d.Cause != nil {
			attrs = append(attrs, "error", d.Cause)
		}
		if d.Severity == discovery.SeverityWarning {
			log.Warn(d.Message, attrs...)
			continue
		}
		log.Debug(d.Message, attrs...)
	}
}
