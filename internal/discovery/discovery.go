// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specdrift/specdrift/internal/scan"
)

// ErrNotDirectory is returned when the project root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

type (
	// Options configures Discover.
	Options struct {
		// Root is the project root. It is resolved to an absolute path with
		// symlinks evaluated.
		Root string
		// HomeDir is consulted for the user-level CLAUDE.md. Empty means
		// os.UserHomeDir; "-" disables the lookup.
		HomeDir string
		// Scan configures the source-code scan.
		Scan scan.Options
	}

	// Result bundles a Report with the diagnostics produced while building it.
	Result struct {
		Report      *Report
		Diagnostics []Diagnostic
	}

	// Report is the structural description of one project.
	Report struct {
		ProjectRoot  string        `json:"project_root"`
		ProjectName  string        `json:"project_name"`
		SpecFiles    []SpecFile    `json:"spec_files"`
		SourceCode   SourceCode    `json:"source_code"`
		IaC          []IaCEntry    `json:"iac"`
		BuildSystem  []BuildMarker `json:"build_system"`
		Tests        TestLayout    `json:"tests"`
		ClaudeConfig ClaudeConfig  `json:"claude_config"`
	}

	// SourceCode is the report rendering of a scan.Result.
	SourceCode struct {
		// PrimaryLanguage is null when no recognized source file exists.
		PrimaryLanguage    *string        `json:"primary_language"`
		LanguageFileCounts map[string]int `json:"language_file_counts"`
		SourceDirectories  []string       `json:"source_directories"`
		EntryPoints        []string       `json:"entry_points"`
		SharedModules      []string       `json:"shared_modules"`
	}
)

// Normalize resolves Root and fills defaults. A root that does not exist or
// is not a directory yields ErrNotDirectory.
func (o *Options) Normalize() error {
	root := o.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}
	if resolved, evalErr := filepath.EvalSymlinks(abs); evalErr == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is %w", abs, ErrNotDirectory)
	}
	o.Root = abs

	if o.HomeDir == "" {
		if home, homeErr := os.UserHomeDir(); homeErr == nil {
			o.HomeDir = home
		}
	}
	return o.Scan.Normalize()
}

// Discover runs every sub-scan against opts.Root and assembles the report.
func Discover(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	d := &discoverer{
		root:   opts.Root,
		fsys:   os.DirFS(opts.Root),
		home:   opts.HomeDir,
		ignore: opts.Scan.IgnoreSet(),
		diags:  &diagnostics{},
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	specFiles := d.specFiles()

	scanned, err := scan.Scan(ctx, opts.Root, opts.Scan)
	if err != nil {
		return nil, fmt.Errorf("scan source code: %w", err)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	report := &Report{
		ProjectRoot:  opts.Root,
		ProjectName:  filepath.Base(opts.Root),
		SpecFiles:    specFiles,
		SourceCode:   sourceCodeOf(scanned),
		IaC:          d.iac(),
		BuildSystem:  d.buildSystem(),
		Tests:        d.tests(),
		ClaudeConfig: d.claudeConfig(),
	}

	return &Result{Report: report, Diagnostics: d.diags.items}, nil
}

// discoverer carries the shared state of one Discover call.
type discoverer struct {
	root   string
	fsys   fs.FS
	home   string
	ignore scan.IgnoreSet
	diags  *diagnostics
}

func (d *discoverer) isFile(rel string) bool {
	info, err := fs.Stat(d.fsys, rel)
	return err == nil && info.Mode().IsRegular()
}

func (d *discoverer) isDir(rel string) bool {
	info, err := fs.Stat(d.fsys, rel)
	return err == nil && info.IsDir()
}

func sourceCodeOf(res *scan.Result) SourceCode {
	sc := SourceCode{
		LanguageFileCounts: res.LanguageCounts,
		SourceDirectories:  res.SourceDirectories,
		EntryPoints:        res.EntryPoints,
		SharedModules:      res.SharedModules,
	}
	if lang := res.PrimaryLanguage(); lang != "" {
		sc.PrimaryLanguage = &lang
	}
	return sc
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
		return nil
	}
}
