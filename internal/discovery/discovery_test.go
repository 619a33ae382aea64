// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func discover(t *testing.T, root string) *Result {
	t.Helper()
	res, err := Discover(context.Background(), Options{Root: root, HomeDir: "-"})
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	return res
}

func TestDiscover_RootMustBeDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "README.md")
	writeFiles(t, root, map[string]string{"README.md": "# Readme"})

	_, err := Discover(context.Background(), Options{Root: file})
	require.ErrorIs(t, err, ErrNotDirectory)

	_, err = Discover(context.Background(), Options{Root: filepath.Join(root, "missing")})
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestDiscover_ProjectIdentity(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "addplus-proxy")
	require.NoError(t, os.Mkdir(root, 0o755))

	report := discover(t, root).Report
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, resolved, report.ProjectRoot)
	assert.Equal(t, "addplus-proxy", report.ProjectName)
}

func TestDiscover_SpecFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"docs/specification/01_overview.md": "# Overview\n## Architecture\n",
		"docs/guide.md":                     "# Guide\n",
		"design/adr/0001.md":                "# ADR 1\n",
		"README.md":                         "# Project\ntext\n## Usage\n",
		".hidden.md":                        "# hidden\n",
		"docs/.draft.md":                    "# draft\n",
		"docs/node_modules/pkg/README.md":   "# vendored\n",
		"docs/binary.md":                    "\xff\xfe\x00\xd8",
		"src/notes.md":                      "# not a doc location\n",
	})

	report := discover(t, root).Report

	paths := make([]string, 0, len(report.SpecFiles))
	for _, sf := range report.SpecFiles {
		paths = append(paths, sf.Path)
	}
	assert.Equal(t, []string{
		"docs/binary.md",
		"docs/guide.md",
		"docs/specification/01_overview.md",
		"design/adr/0001.md",
		"README.md",
	}, paths)

	readme := report.SpecFiles[4]
	assert.Equal(t, int64(len("# Project\ntext\n## Usage\n")), readme.SizeBytes)
	require.Len(t, readme.Headings, 2)
	assert.Equal(t, 2, readme.Headings[1].Level)
	assert.Equal(t, "Usage", readme.Headings[1].Title)
}

func TestDiscover_UndecodableSpecHasNoHeadings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"docs/bad.md": "# ok\n\xc3\x28\n"})

	res := discover(t, root)
	require.Len(t, res.Report.SpecFiles, 1)
	assert.Empty(t, res.Report.SpecFiles[0].Headings)
	assert.NotNil(t, res.Report.SpecFiles[0].Headings)

	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "spec_decode_skipped", res.Diagnostics[0].Code)
	assert.Equal(t, "docs/bad.md", res.Diagnostics[0].Path)
}

func TestDiscover_SourceCode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"lambda_functions/fetchRank/handler.py": "",
		"lambda_layer/python/db.py":             "",
		"web/app.ts":                            "",
	})

	sc := discover(t, root).Report.SourceCode
	require.NotNil(t, sc.PrimaryLanguage)
	assert.Equal(t, "Python", *sc.PrimaryLanguage)
	assert.Equal(t, map[string]int{"Python": 2, "TypeScript": 1}, sc.LanguageFileCounts)
	assert.Equal(t, []string{"lambda_functions", "lambda_layer", "web"}, sc.SourceDirectories)
	assert.Equal(t, []string{"lambda_functions/fetchRank/handler.py", "web/app.ts"}, sc.EntryPoints)
	assert.Equal(t, []string{"lambda_layer/python/db.py"}, sc.SharedModules)
}

func TestDiscover_EmptyProjectRendersNulls(t *testing.T) {
	t.Parallel()

	report := discover(t, t.TempDir()).Report
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	source := decoded["source_code"].(map[string]any)
	assert.Nil(t, source["primary_language"])
	assert.Equal(t, []any{}, decoded["spec_files"])
	assert.Equal(t, []any{}, decoded["iac"])

	claude := decoded["claude_config"].(map[string]any)
	assert.Equal(t, false, claude["has_claude_md"])
	assert.Nil(t, claude["claude_md_preview"])
	assert.Nil(t, claude["detected_language"])

	require.NoError(t, ValidateReport(report))
}

func TestDiscover_IaC(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"terraform/main.tf":      "",
		"terraform/dynamodb.tf":  "",
		"terraform/README.md":    "",
		"terraform/modules/x.tf": "",
		"docker-compose.yml":     "services:\n  web:\n    image: nginx\n  db:\n    image: postgres\n",
		"Dockerfile":             "FROM scratch\n",
		"samconfig.toml":         "",
	}
	for i := range 25 {
		files[filepath.ToSlash(filepath.Join("pulumi", "f"+string(rune('a'+i))+".yaml"))] = ""
	}
	writeFiles(t, root, files)

	res := discover(t, root)
	iac := res.Report.IaC
	require.Len(t, iac, 5)

	assert.Equal(t, IaCEntry{
		Type:      "Terraform",
		Directory: "terraform",
		Files:     []string{"terraform/dynamodb.tf", "terraform/main.tf"},
	}, iac[0])

	assert.Equal(t, "Pulumi", iac[1].Type)
	assert.Len(t, iac[1].Files, maxIaCFiles)
	assert.Equal(t, "pulumi/fa.yaml", iac[1].Files[0])

	assert.Equal(t, "Docker Compose", iac[2].Type)
	assert.Equal(t, ".", iac[2].Directory)
	assert.Equal(t, []string{"db", "web"}, iac[2].Services)

	assert.Equal(t, "Docker", iac[3].Type)
	assert.Equal(t, IaCEntry{Type: "SAM", Directory: ".", Files: []string{"samconfig.toml"}}, iac[4])
}

func TestDiscover_BuildSystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Makefile":       "all:\n",
		"package.json":   `{"name": "web-ui", "version": "1.0.0"}`,
		"pyproject.toml": "[tool.poetry]\nname = \"rank-service\"\n",
		"go.mod":         "module example.com/proxy\n\ngo 1.22\n",
		"Cargo.toml":     "[package\nname = broken",
		"justfile":       "",
	})

	res := discover(t, root)
	assert.Equal(t, []BuildMarker{
		{Type: "Make", File: "Makefile"},
		{Type: "npm/Node.js", File: "package.json", Name: "web-ui"},
		{Type: "Python (pyproject)", File: "pyproject.toml", Name: "rank-service"},
		{Type: "Go", File: "go.mod", Name: "example.com/proxy"},
		{Type: "Rust", File: "Cargo.toml"},
		{Type: "Just", File: "justfile"},
	}, res.Report.BuildSystem)

	var codes []string
	for _, diag := range res.Diagnostics {
		codes = append(codes, diag.Code)
	}
	assert.Contains(t, codes, "manifest_parse_skipped")
}

func TestDiscover_Tests(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tests/test_handler.py":           "",
		"tests/unit/db_test.py":           "",
		"test_integration/test_x_test.py": "",
		"web/button.spec.ts":              "",
		"web/node_modules/lib.test.js":    "",
		"cmd/main_test.go":                "",
		"build/Generated_Test.java":       "",
		"build/FooTest.java":              "",
		"pytest.ini":                      "",
		"jest.config.js":                  "",
		"test":                            "a file named test is not a directory",
	})

	tests := discover(t, root).Report.Tests
	assert.Equal(t, []string{"test_integration", "tests"}, tests.TestDirectories)
	assert.Equal(t, 7, tests.TestFilesCount)
	assert.Equal(t, []string{"pytest.ini", "jest.config.js"}, tests.TestConfigFiles)
}

func TestDiscover_ClaudeConfig(t *testing.T) {
	t.Parallel()

	t.Run("project file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		long := "<language>Japanese</language>\n" + strings.Repeat("é", 4000)
		writeFiles(t, root, map[string]string{
			"CLAUDE.md":                         long,
			".claude/skills/spec-sync/SKILL.md": "# skill",
			".claude/skills/empty/README.md":    "no skill file",
		})

		cfg := discover(t, root).Report.ClaudeConfig
		assert.True(t, cfg.HasClaudeMD)
		require.NotNil(t, cfg.ClaudeMDPreview)
		assert.Equal(t, claudePreviewRunes, len([]rune(*cfg.ClaudeMDPreview)))
		require.NotNil(t, cfg.DetectedLanguage)
		assert.Equal(t, "Japanese", *cfg.DetectedLanguage)
		assert.Equal(t, []string{"spec-sync"}, cfg.ExistingSkills)
	})

	t.Run("global fallback", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		home := t.TempDir()
		writeFiles(t, root, map[string]string{"CLAUDE.md": "# No language tag"})
		writeFiles(t, home, map[string]string{".claude/CLAUDE.md": "<language>English</language>"})

		res, err := Discover(context.Background(), Options{Root: root, HomeDir: home})
		require.NoError(t, err)
		cfg := res.Report.ClaudeConfig
		require.NotNil(t, cfg.DetectedLanguage)
		assert.Equal(t, "English", *cfg.DetectedLanguage)
		require.NotNil(t, cfg.ClaudeMDPreview)
		assert.Equal(t, "# No language tag", *cfg.ClaudeMDPreview)
	})
}

func TestDiscover_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, Options{Root: t.TempDir(), HomeDir: "-"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteJSON_KeepsNonASCII(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"docs/spec.md": "# 仕様書 <draft>\n"})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, discover(t, root).Report))
	assert.Contains(t, buf.String(), "仕様書 <draft>")
	assert.Contains(t, buf.String(), "\n  \"project_name\"")
}

func TestValidateReport_RejectsInvalid(t *testing.T) {
	t.Parallel()

	report := discover(t, t.TempDir()).Report
	report.SpecFiles = append(report.SpecFiles, SpecFile{Path: "", Headings: nil})

	err := ValidateReport(report)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Errors)
}
