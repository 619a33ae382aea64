// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specdrift/specdrift/internal/issue"

	"github.com/spf13/cobra"
)

func newIssuesCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "issues [id]",
		Short: "Explain the problems specdrift can report",
		Long: `Explain the problems specdrift can report.

Without an argument, every catalog entry is listed with its id. With an id,
the entry is rendered in full.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, entry := range issue.Values() {
					fmt.Fprintf(app.stdout, "%s  %s\n", CmdStyle.Render(strconv.Itoa(int(entry.Id()))), issueTitle(entry))
				}
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid issue id %q: %w", args[0], err)
			}
			entry := issue.Get(issue.Id(n))
			if entry == nil {
				return fmt.Errorf("unknown issue id %d", n)
			}
			rendered, err := entry.Render(style)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "", `glamour style ("dark", "light", "notty"; default auto)`)
	return cmd
}

// issueTitle returns the first heading of the entry's markdown.
func issueTitle(entry *issue.Issue) string {
	for line := range strings.Lines(string(entry.MarkdownMsg())) {
		line = strings.TrimSpace(line)
		if title, ok := strings.CutPrefix(line, "#"); ok {
			return strings.TrimSpace(strings.TrimLeft(title, "#"))
		}
	}
	return ""
}
