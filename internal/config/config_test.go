// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specdrift/specdrift/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, FileName())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg, err := NewProvider().Load(t.Context(), LoadOptions{RootOverride: root})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SourcePath != "" {
		t.Errorf("SourcePath = %q, want empty", cfg.SourcePath)
	}
	wantRoot, _ := filepath.Abs(root)
	if cfg.ProjectRoot != wantRoot {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, wantRoot)
	}
	if len(cfg.Documents) != 3 {
		t.Fatalf("len(Documents) = %d, want 3", len(cfg.Documents))
	}
	if len(cfg.Categories) != 4 {
		t.Fatalf("len(Categories) = %d, want 4", len(cfg.Categories))
	}
	if got := cfg.Categories[0]; got.Code.Kind != CodeKindDirs || got.Code.Path != "lambda_functions" || len(got.Spec.Sections) != 2 {
		t.Errorf("Categories[0] = %+v, want lambda_functions dirs with 2 sections", got)
	}
	if cfg.Freshness.Days != DefaultFreshnessDays {
		t.Errorf("Freshness.Days = %d, want %d", cfg.Freshness.Days, DefaultFreshnessDays)
	}
	if got := cfg.CoverageLabel(); got != "03_technical_spec.md" {
		t.Errorf("CoverageLabel() = %q, want 03_technical_spec.md", got)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
documents: [{name: "spec", path: "SPEC.md"}]
categories: [{
	name: "Handlers"
	code: {kind: "dirs", path: "handlers"}
	spec: {document: "spec", sections: [{start: #"##\s+Handlers"#}]}
	coverage: true
}]
coverage: documents: ["spec"]
freshness: days: 7
`)

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{StartDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SourcePath != filepath.Join(dir, FileName()) {
		t.Errorf("SourcePath = %q", cfg.SourcePath)
	}
	if cfg.ProjectRoot != dir {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, dir)
	}
	if len(cfg.Documents) != 1 || cfg.Documents[0].Path != "SPEC.md" {
		t.Errorf("Documents = %+v", cfg.Documents)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Spec.Sections[0].Start != `##\s+Handlers` {
		t.Errorf("Categories = %+v", cfg.Categories)
	}
	if !cfg.Categories[0].Coverage {
		t.Error("Categories[0].Coverage = false, want true")
	}
	if cfg.Freshness.Days != 7 {
		t.Errorf("Freshness.Days = %d, want 7", cfg.Freshness.Days)
	}
}

func TestLoadFindsConfigInParent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `freshness: days: 14`)
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{StartDir: nested})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProjectRoot != dir {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, dir)
	}
	if cfg.Freshness.Days != 14 {
		t.Errorf("Freshness.Days = %d, want 14", cfg.Freshness.Days)
	}
}

func TestLoadRootRelativeToConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "project"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, `root: "project"`)

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(dir, "project"); cfg.ProjectRoot != want {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPECDRIFT_FRESHNESS_DAYS", "3")

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{RootOverride: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Freshness.Days != 3 {
		t.Errorf("Freshness.Days = %d, want 3", cfg.Freshness.Days)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			t.Fatalf("error = %v, want *issue.ActionableError", err)
		}
		if len(ae.Suggestions) == 0 {
			t.Error("expected suggestions on missing config error")
		}
		if ae.Issue != issue.ConfigLoadFailedId {
			t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), `freshness: days: "soon"`)
		_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			t.Fatalf("error = %v, want *issue.ActionableError", err)
		}
		if ae.Issue != issue.ConfigLoadFailedId {
			t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
		}
		if got := ae.CatalogIssue(); got == nil || got.Id() != issue.ConfigLoadFailedId {
			t.Errorf("CatalogIssue() = %v", got)
		}
	})

	t.Run("unknown document reference", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), `
categories: [{
	name: "X"
	code: {kind: "dirs", path: "x"}
	spec: {document: "missing", pattern: "x"}
}]`)
		_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("error = %v, want ErrInvalidConfig", err)
		}
		if !strings.Contains(err.Error(), `unknown document "missing"`) {
			t.Errorf("error = %v, want unknown document message", err)
		}
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.Issue != issue.ConfigInvalidId {
			t.Errorf("error = %#v, want an ActionableError linked to ConfigInvalidId", err)
		}
	})

	t.Run("invalid root option", func(t *testing.T) {
		t.Parallel()

		_, err := NewProvider().Load(t.Context(), LoadOptions{RootOverride: filepath.Join(t.TempDir(), "absent")})
		if !errors.Is(err, ErrInvalidLoadOptions) {
			t.Fatalf("error = %v, want ErrInvalidLoadOptions", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if _, err := NewProvider().Load(ctx, LoadOptions{}); err == nil {
			t.Fatal("expected error for canceled context")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "no documents",
			mutate:  func(c *Config) { c.Documents = nil },
			wantErr: "Documents",
		},
		{
			name:    "duplicate document",
			mutate:  func(c *Config) { c.Documents = append(c.Documents, c.Documents[0]) },
			wantErr: "duplicate name",
		},
		{
			name:    "invalid kind",
			mutate:  func(c *Config) { c.Categories[0].Code.Kind = "lines" },
			wantErr: "invalid code kind",
		},
		{
			name:    "resources without type",
			mutate:  func(c *Config) { c.Categories[2].Code.ResourceType = "" },
			wantErr: "ResourceType",
		},
		{
			name:    "both sections and pattern",
			mutate:  func(c *Config) { c.Categories[0].Spec.Pattern = "x" },
			wantErr: "Sections",
		},
		{
			name:    "neither sections nor pattern",
			mutate:  func(c *Config) { c.Categories[3].Spec.Pattern = "" },
			wantErr: "Pattern",
		},
		{
			name:    "bad section regex",
			mutate:  func(c *Config) { c.Categories[1].Spec.Sections[0].Start = "(" },
			wantErr: "categories[1].spec.sections[0].start",
		},
		{
			name:    "unknown freshness document",
			mutate:  func(c *Config) { c.Freshness.Documents = []string{"ghost"} },
			wantErr: "freshness.documents[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := WriteDefault(dir, false)
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() of generated config error = %v", err)
	}

	want := DefaultConfig()
	if len(cfg.Categories) != len(want.Categories) {
		t.Fatalf("len(Categories) = %d, want %d", len(cfg.Categories), len(want.Categories))
	}
	for i := range want.Categories {
		if got, w := cfg.Categories[i].Spec.Pattern, want.Categories[i].Spec.Pattern; got != w {
			t.Errorf("Categories[%d].Spec.Pattern = %q, want %q", i, got, w)
		}
		for j := range want.Categories[i].Spec.Sections {
			if got, w := cfg.Categories[i].Spec.Sections[j], want.Categories[i].Spec.Sections[j]; got != w {
				t.Errorf("Categories[%d].Spec.Sections[%d] = %+v, want %+v", i, j, got, w)
			}
		}
	}

	if _, err := WriteDefault(dir, false); !errors.Is(err, os.ErrExist) {
		t.Errorf("second WriteDefault() error = %v, want ErrExist", err)
	}
	if _, err := WriteDefault(dir, true); err != nil {
		t.Errorf("forced WriteDefault() error = %v", err)
	}
}

func TestFindProjectRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "x", "y")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok := FindProjectRoot(nested)
	if !ok || got != dir {
		t.Errorf("FindProjectRoot() = %q, %v; want %q, true", got, ok, dir)
	}

	writeConfig(t, filepath.Join(dir, "x"), "")
	got, ok = FindProjectRoot(nested)
	if want := filepath.Join(dir, "x"); !ok || got != want {
		t.Errorf("FindProjectRoot() = %q, %v; want %q, true", got, ok, want)
	}
}

func TestCodeKindIsValid(t *testing.T) {
	t.Parallel()

	for _, k := range []CodeKind{CodeKindDirs, CodeKindFiles, CodeKindResources, CodeKindPattern} {
		if ok, errs := k.IsValid(); !ok || errs != nil {
			t.Errorf("%q.IsValid() = %v, %v", k, ok, errs)
		}
	}
	ok, errs := CodeKind("bogus").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidCodeKind) {
		t.Errorf("bogus.IsValid() = %v, %v", ok, errs)
	}
}
