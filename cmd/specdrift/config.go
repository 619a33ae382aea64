// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/specdrift/specdrift/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `specdrift config` command tree.
func newConfigCommand(app *App, root *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage specdrift configuration",
		Long: `Manage specdrift configuration.

Configuration is read from ` + config.FileName() + ` in the project root. The
nearest file above the working directory is used; without one, the built-in
reference layout applies and the root is the enclosing git repository.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: root.configPath})
			if err != nil {
				return fail(app.stderr, err, root.verbose, exitWarnings)
			}
			source := cfg.SourcePath
			if source == "" {
				source = "(built-in defaults)"
			}
			fmt.Fprintf(app.stdout, "// source: %s\n// project root: %s\n\n", source, cfg.ProjectRoot)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: root.configPath})
			if err != nil {
				return fail(app.stderr, err, root.verbose, exitWarnings)
			}
			if cfg.SourcePath == "" {
				fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
			} else {
				fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Config file"), cfg.SourcePath)
			}
			fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Project root"), cfg.ProjectRoot)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write " + config.FileName() + " with the reference layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.WriteDefault(dir, force)
			if err != nil {
				return fail(app.stderr, err, root.verbose, exitWarnings)
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}
