// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/specdrift/specdrift/internal/config"
	"github.com/specdrift/specdrift/internal/drift"
	"github.com/specdrift/specdrift/internal/issue"
	"github.com/specdrift/specdrift/internal/watch"

	"github.com/spf13/cobra"
)

type driftOptions struct {
	root        string
	json        bool
	watch       bool
	debounce    time.Duration
	clearScreen bool
}

func newDriftCommand(app *App, root *rootOptions) *cobra.Command {
	opts := &driftOptions{}

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Check spec documents against the code",
		Long: `Check spec documents against the code.

Each configured category compares the number of items found in the code
with the number of rows in the matching spec table. Code names missing
from the coverage documents and stale "Last verified" dates are reported
as warnings.

Exit status is 0 when everything matches, 1 when warnings were found and
2 when the check could not run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.watch {
				return runDriftWatch(cmd.Context(), app, root, opts)
			}
			res, err := runDrift(cmd.Context(), app, root, opts)
			if err != nil {
				return fail(app.stderr, err, root.verbose, exitFatal)
			}
			if root.verbose {
				printIssueHints(app.stderr, res)
			}
			if code := res.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "project root (overrides the configured root)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "write findings as JSON")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run whenever a spec document or code path changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "quiet period before a re-run in watch mode (default 500ms)")
	cmd.Flags().BoolVar(&opts.clearScreen, "clear", false, "clear the terminal before each re-run in watch mode")
	return cmd
}

// loadComparator loads configuration and builds a drift.Comparator from it.
func loadComparator(ctx context.Context, app *App, root *rootOptions, opts *driftOptions) (*drift.Comparator, error) {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: root.configPath,
		RootOverride:   opts.root,
	})
	if err != nil {
		return nil, err
	}
	app.log.Debug("configuration loaded", "source", cfg.SourcePath, "root", cfg.ProjectRoot)
	return drift.New(cfg, drift.WithClock(app.Clock))
}

func runDrift(ctx context.Context, app *App, root *rootOptions, opts *driftOptions) (*drift.Result, error) {
	cmp, err := loadComparator(ctx, app, root, opts)
	if err != nil {
		return nil, err
	}
	return cmp.Run(ctx, newReporter(app, opts))
}

func newReporter(app *App, opts *driftOptions) drift.Reporter {
	if opts.json {
		return drift.NewJSONReporter(app.stdout)
	}
	return drift.NewTextReporter(app.stdout)
}

// runDriftWatch runs once, then re-runs on every debounced change until the
// context is canceled. Configuration is reloaded on each run so edits to
// specdrift.cue take effect immediately. Watch patterns come from the
// initial configuration.
func runDriftWatch(ctx context.Context, app *App, root *rootOptions, opts *driftOptions) error {
	cmp, err := loadComparator(ctx, app, root, opts)
	if err != nil {
		return fail(app.stderr, err, root.verbose, exitFatal)
	}

	rerun := func(ctx context.Context) {
		res, runErr := runDrift(ctx, app, root, opts)
		if runErr != nil {
			if errors.Is(runErr, context.Canceled) {
				return
			}
			printError(app.stderr, runErr, root.verbose)
			return
		}
		app.log.Debug("drift run complete", "warnings", res.Warnings)
		if root.verbose {
			printIssueHints(app.stderr, res)
		}
	}

	w, err := watch.New(watch.Config{
		Patterns:    cmp.WatchPatterns(),
		Ignore:      cmp.WatchIgnores(),
		Debounce:    opts.debounce,
		ClearScreen: opts.clearScreen,
		BaseDir:     cmp.Root(),
		Stdout:      app.stdout,
		Logger:      app.log,
		OnChange: func(ctx context.Context, changed []string) error {
			app.log.Info("change detected, re-running", "paths", changed)
			rerun(ctx)
			fmt.Fprintln(app.stderr, SubtitleStyle.Render("watching for changes (Ctrl+C to stop)"))
			return nil
		},
	})
	if err != nil {
		return fail(app.stderr, watchError(cmp.Root(), err), root.verbose, exitFatal)
	}

	app.log.Debug("watching",
		"root", w.BaseDir(),
		"patterns", cmp.WatchPatterns(),
		"ignores", slices.Concat(watch.DefaultIgnores(), cmp.WatchIgnores()))

	rerun(ctx)
	fmt.Fprintln(app.stderr, SubtitleStyle.Render("watching for changes (Ctrl+C to stop)"))

	if err := w.Run(ctx); err != nil {
		return fail(app.stderr, watchError(cmp.Root(), err), root.verbose, exitFatal)
	}
	return nil
}

// printIssueHints points at the catalog entries that explain res.
func printIssueHints(w io.Writer, res *drift.Result) {
	for _, id := range res.Issues() {
		entry := issue.Get(id)
		if entry == nil {
			continue
		}
		fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("More help: specdrift issues %d (%s)", id, issueTitle(entry))))
	}
}

func watchError(root string, err error) error {
	return issue.NewErrorContext().
		WithOperation("watch for changes").
		WithResource(root).
		WithSuggestion("Raise the inotify watch limit or narrow the configured code paths").
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
