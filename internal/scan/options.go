// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
)

// Options configures a Scan. Zero-valued fields are filled from
// DefaultOptions by Normalize.
type Options struct {
	// Languages maps a file extension (with leading dot) to a language label.
	Languages map[string]string
	// Ignore lists directory names that are never descended into. Entries
	// containing glob metacharacters are matched with path.Match.
	Ignore []string
	// EntryPoints lists conventional entry-point file names.
	EntryPoints []string
	// SharedDirs lists conventional top-level shared-code directory names.
	SharedDirs []string
}

// DefaultOptions returns the built-in language table, ignore set,
// entry-point names and shared-directory names.
func DefaultOptions() Options {
	return Options{
		Languages: map[string]string{
			".py":    "Python",
			".js":    "JavaScript",
			".ts":    "TypeScript",
			".tsx":   "TypeScript (React)",
			".jsx":   "JavaScript (React)",
			".go":    "Go",
			".rs":    "Rust",
			".java":  "Java",
			".rb":    "Ruby",
			".php":   "PHP",
			".cs":    "C#",
			".swift": "Swift",
			".kt":    "Kotlin",
		},
		Ignore: []string{
			".git", "node_modules", "__pycache__", ".venv", "venv",
			".tox", ".mypy_cache", ".pytest_cache", "dist", "build",
			".next", ".nuxt", "target", "vendor", ".terraform",
			"coverage", ".coverage", "htmlcov", "egg-info", "*.egg-info",
		},
		EntryPoints: []string{
			"main.py", "app.py", "index.py", "handler.py", "wsgi.py",
			"index.js", "index.ts", "app.js", "app.ts", "server.js", "server.ts",
			"main.go", "main.rs", "Main.java", "Program.cs",
			"manage.py", "setup.py",
		},
		SharedDirs: []string{
			"lib", "shared", "common", "utils", "helpers", "core",
			"lambda_layer", "layer", "packages", "internal",
		},
	}
}

// Normalize fills empty fields from DefaultOptions and validates the result.
func (o *Options) Normalize() error {
	defaults := DefaultOptions()
	if len(o.Languages) == 0 {
		o.Languages = defaults.Languages
	}
	if o.Ignore == nil {
		o.Ignore = defaults.Ignore
	}
	if o.EntryPoints == nil {
		o.EntryPoints = defaults.EntryPoints
	}
	if o.SharedDirs == nil {
		o.SharedDirs = defaults.SharedDirs
	}
	return o.Validate()
}

// Validate checks extension keys and ignore patterns.
func (o Options) Validate() error {
	for _, ext := range slices.Sorted(maps.Keys(o.Languages)) {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("language extension %q must start with a dot", ext)
		}
	}
	for _, pattern := range o.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// IgnoreSet compiles the ignore list into a matcher.
func (o Options) IgnoreSet() IgnoreSet {
	set := IgnoreSet{names: make(map[string]struct{}, len(o.Ignore))}
	for _, pattern := range o.Ignore {
		if strings.ContainsAny(pattern, "*?[") {
			set.globs = append(set.globs, pattern)
			continue
		}
		set.names[pattern] = struct{}{}
	}
	return set
}

// IgnoreSet reports whether a directory name is ignored.
type IgnoreSet struct {
	names map[string]struct{}
	globs []string
}

// Match reports whether name is an ignored directory name.
func (s IgnoreSet) Match(name string) bool {
	if _, ok := s.names[name]; ok {
		return true
	}
	for _, pattern := range s.globs {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// MatchPath reports whether any slash-separated component of rel is ignored.
func (s IgnoreSet) MatchPath(rel string) bool {
	for part := range strings.SplitSeq(rel, "/") {
		if s.Match(part) {
			return true
		}
	}
	return false
}
