// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/specdrift/specdrift/internal/issue"
	"github.com/specdrift/specdrift/internal/markdown"

	"github.com/spf13/cobra"
)

func newHeadingsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "headings <file>",
		Short: "Print the headings of a markdown document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := markdown.ReadDocument(args[0])
			if err != nil {
				return issue.WrapWithContext(err, "read markdown document", args[0])
			}
			headings := markdown.ExtractHeadings(text)
			if headings == nil {
				headings = []markdown.Heading{}
			}
			enc := json.NewEncoder(app.stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(headings)
		},
	}
}

func newRowsCommand(app *App) *cobra.Command {
	var start, stop string

	cmd := &cobra.Command{
		Use:   "rows <file>",
		Short: "Count the table rows of a document section",
		Long: `Count the table rows of a document section.

The section begins at the first line matching --start and ends at the first
later line matching --stop. Only data rows of the first table inside it are
counted; the header and separator rows are not. An unmatched --start prints 0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startRe, stopRe, err := markdown.CompileAnchors(start, stop)
			if err != nil {
				return err
			}
			text, err := markdown.ReadDocument(args[0])
			if err != nil {
				return issue.WrapWithContext(err, "read markdown document", args[0])
			}
			section := markdown.FindTableSection(text, startRe, stopRe)
			if !section.Found {
				app.log.Warn("section not found", "file", args[0], "start", start)
			}
			_, err = fmt.Fprintln(app.stdout, section.RowCount())
			return err
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "regular expression matching the first line of the section")
	cmd.Flags().StringVar(&stop, "stop", "", "regular expression matching the line after the section")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
