// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/specdrift/specdrift/internal/issue"
	"github.com/specdrift/specdrift/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "specdrift"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "specdrift"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (e.g., SPECDRIFT_FRESHNESS_DAYS).
	EnvPrefix = "SPECDRIFT"
)

//go:embed config_schema.cue
var configSchema string

// FileName returns the config file name, "specdrift.cue".
func FileName() string {
	return ConfigFileName + "." + ConfigFileExt
}

// loadWithOptions performs option-driven config loading. It never touches
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfgPath, baseDir, err := resolveConfigPath(opts)
	if err != nil {
		return nil, err
	}

	if cfgPath != "" {
		if err := loadCUEIntoViper(v, cfgPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(cfgPath).
				WithSuggestions(
					"Check that the file contains valid CUE syntax",
					"Verify the configuration values match the expected schema",
					"Use 'specdrift config show' to see the default configuration",
				).
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SourcePath = cfgPath
	if opts.RootOverride != "" {
		cfg.ProjectRoot = opts.RootOverride
	} else {
		cfg.ProjectRoot = cfg.Root
		if !filepath.IsAbs(cfg.ProjectRoot) {
			cfg.ProjectRoot = filepath.Join(baseDir, cfg.ProjectRoot)
		}
	}
	if cfg.ProjectRoot, err = filepath.Abs(cfg.ProjectRoot); err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		resource := cfgPath
		if resource == "" {
			resource = "built-in defaults"
		}
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resource).
			WithSuggestion("Every category must reference a configured document by name").
			WithSuggestion("Section anchors and patterns must be valid regular expressions").
			WithIssue(issue.ConfigInvalidId).
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// resolveConfigPath picks the config file to load and the directory that
// relative roots resolve against. An explicit path must exist; otherwise the
// project root is searched upward from the start directory and a missing file
// means "use defaults".
func resolveConfigPath(opts LoadOptions) (cfgPath, baseDir string, err error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'specdrift config init' to write a starter file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		abs, err := filepath.Abs(opts.ConfigFilePath)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		return abs, filepath.Dir(abs), nil
	}

	start := opts.StartDir
	if opts.RootOverride != "" {
		start = opts.RootOverride
	}
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	start, err = filepath.Abs(start)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve start directory: %w", err)
	}

	root, found := FindProjectRoot(start)
	if !found {
		return "", start, nil
	}
	candidate := filepath.Join(root, FileName())
	if fileExists(candidate) {
		return candidate, root, nil
	}
	return "", root, nil
}

// FindProjectRoot walks upward from start looking for a directory holding
// specdrift.cue, then for one holding .git. It reports false when neither
// exists on the way to the filesystem root.
func FindProjectRoot(start string) (string, bool) {
	if dir, ok := walkUp(start, func(dir string) bool { return fileExists(filepath.Join(dir, FileName())) }); ok {
		return dir, true
	}
	return walkUp(start, func(dir string) bool {
		_, err := os.Stat(filepath.Join(dir, ".git"))
		return err == nil
	})
}

func walkUp(start string, match func(dir string) bool) (string, bool) {
	current := filepath.Clean(start)
	for {
		if match(current) {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// The file decodes to map[string]any rather than a struct so Viper keeps its
// defaults for keys the file leaves out.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to dir/specdrift.cue. An
// existing file is left untouched unless force is set.
func WriteDefault(dir string, force bool) (string, error) {
	cfgPath := filepath.Join(dir, FileName())
	if !force && fileExists(cfgPath) {
		return cfgPath, issue.NewErrorContext().
			WithOperation("write configuration").
			WithResource(cfgPath).
			WithSuggestion("Pass --force to overwrite the existing file").
			Wrap(fs.ErrExist).
			BuildError()
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return cfgPath, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// specdrift configuration\n")
	sb.WriteString("// Paths are relative to the directory holding this file.\n\n")

	root := cfg.Root
	if root == "" {
		root = "."
	}
	fmt.Fprintf(&sb, "root: %q\n", root)

	sb.WriteString("\ndocuments: [\n")
	for _, doc := range cfg.Documents {
		fmt.Fprintf(&sb, "\t{name: %q, path: %q},\n", doc.Name, doc.Path)
	}
	sb.WriteString("]\n")

	sb.WriteString("\ncategories: [\n")
	for _, cat := range cfg.Categories {
		sb.WriteString("\t{\n")
		fmt.Fprintf(&sb, "\t\tname: %q\n", cat.Name)
		writeCodeSource(&sb, cat.Code)
		writeSpecSource(&sb, cat.Spec)
		if cat.Coverage {
			sb.WriteString("\t\tcoverage: true\n")
		}
		sb.WriteString("\t},\n")
	}
	sb.WriteString("]\n")

	sb.WriteString("\ncoverage: {\n")
	fmt.Fprintf(&sb, "\tdocuments: %s\n", cueStringList(cfg.Coverage.Documents))
	if cfg.Coverage.Label != "" {
		fmt.Fprintf(&sb, "\tlabel: %q\n", cfg.Coverage.Label)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nfreshness: {\n")
	fmt.Fprintf(&sb, "\tdays: %d\n", cfg.Freshness.Days)
	if len(cfg.Freshness.Documents) > 0 {
		fmt.Fprintf(&sb, "\tdocuments: %s\n", cueStringList(cfg.Freshness.Documents))
	}
	sb.WriteString("}\n")

	return sb.String()
}

func writeCodeSource(sb *strings.Builder, code CodeSource) {
	sb.WriteString("\t\tcode: {\n")
	fmt.Fprintf(sb, "\t\t\tkind: %q\n", code.Kind)
	fmt.Fprintf(sb, "\t\t\tpath: %q\n", code.Path)
	if code.Glob != "" {
		fmt.Fprintf(sb, "\t\t\tglob: %q\n", code.Glob)
	}
	if len(code.Ignore) > 0 {
		fmt.Fprintf(sb, "\t\t\tignore: %s\n", cueStringList(code.Ignore))
	}
	if code.ResourceType != "" {
		fmt.Fprintf(sb, "\t\t\tresource_type: %q\n", code.ResourceType)
	}
	if code.Pattern != "" {
		fmt.Fprintf(sb, "\t\t\tpattern: %s\n", cueRawString(code.Pattern))
	}
	sb.WriteString("\t\t}\n")
}

func writeSpecSource(sb *strings.Builder, spec SpecSource) {
	sb.WriteString("\t\tspec: {\n")
	fmt.Fprintf(sb, "\t\t\tdocument: %q\n", spec.Document)
	if len(spec.Sections) > 0 {
		sb.WriteString("\t\t\tsections: [\n")
		for _, sec := range spec.Sections {
			if sec.Stop != "" {
				fmt.Fprintf(sb, "\t\t\t\t{start: %s, stop: %s},\n", cueRawString(sec.Start), cueRawString(sec.Stop))
			} else {
				fmt.Fprintf(sb, "\t\t\t\t{start: %s},\n", cueRawString(sec.Start))
			}
		}
		sb.WriteString("\t\t\t]\n")
	}
	if spec.Pattern != "" {
		fmt.Fprintf(sb, "\t\t\tpattern: %s\n", cueRawString(spec.Pattern))
	}
	sb.WriteString("\t\t}\n")
}

func cueStringList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, s := range values {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// cueRawString renders a regular expression as a CUE raw string (#"..."#) so
// backslashes need no escaping.
func cueRawString(s string) string {
	if strings.Contains(s, `"#`) {
		return fmt.Sprintf("%q", s)
	}
	return `#"` + s + `"#`
}
