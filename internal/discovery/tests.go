// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"io/fs"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	testDirPatterns  = []string{"tests", "test", "spec", "__tests__", "test_*"}
	testFilePatterns = []string{
		"test_*.py", "*_test.py", "*.test.js", "*.test.ts",
		"*.spec.js", "*.spec.ts", "*_test.go", "*Test.java",
	}
	testConfigFiles = []string{
		"pytest.ini", "pyproject.toml", "setup.cfg",
		"jest.config.js", "jest.config.ts",
		"vitest.config.ts", "vitest.config.js",
		".mocharc.yml", ".mocharc.json",
	}
	// testIgnoreDirs is narrower than the scan ignore set so that tests
	// under build or dist style directories are still counted.
	testIgnoreDirs = map[string]struct{}{
		".git": {}, "node_modules": {}, "__pycache__": {},
		".venv": {}, "venv": {}, ".terraform": {},
	}
)

// TestLayout describes where a project keeps its tests.
type TestLayout struct {
	TestDirectories []string `json:"test_directories"`
	TestFilesCount  int      `json:"test_files_count"`
	TestConfigFiles []string `json:"test_config_files"`
}

func (d *discoverer) tests() TestLayout {
	layout := TestLayout{
		TestDirectories: make([]string, 0),
		TestConfigFiles: make([]string, 0),
	}

	for _, pattern := range testDirPatterns {
		matches, err := doublestar.Glob(d.fsys, pattern)
		if err != nil {
			continue
		}
		for _, rel := range matches {
			if d.isDir(rel) {
				layout.TestDirectories = append(layout.TestDirectories, rel)
			}
		}
	}
	slices.Sort(layout.TestDirectories)
	layout.TestDirectories = slices.Compact(layout.TestDirectories)

	layout.TestFilesCount = d.countTestFiles()

	for _, name := range testConfigFiles {
		if d.isFile(name) {
			layout.TestConfigFiles = append(layout.TestConfigFiles, name)
		}
	}

	return layout
}

// countTestFiles counts files whose base name matches any test pattern.
// A file matching several patterns is counted once.
func (d *discoverer) countTestFiles() int {
	count := 0
	err := fs.WalkDir(d.fsys, ".", func(rel string, entry fs.DirEntry, err error) error {
		if err != nil {
			if rel != "." && entry != nil && entry.IsDir() {
				d.diags.warn("test_walk_skipped", rel, err, "directory could not be read")
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if _, ignored := testIgnoreDirs[entry.Name()]; ignored && rel != "." {
				return fs.SkipDir
			}
			return nil
		}
		if matchesAny(testFilePatterns, entry.Name()) {
			count++
		}
		return nil
	})
	if err != nil {
		d.diags.warn("test_walk_failed", ".", err, "test files could not be counted")
	}
	return count
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
