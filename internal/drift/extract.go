// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/specdrift/specdrift/internal/config"
	"github.com/specdrift/specdrift/internal/markdown"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotDirectory is returned when a files-kind code path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// codeNames returns the sorted component names for one code source. Paths
// are relative to root.
func codeNames(root string, src config.CodeSource) ([]string, error) {
	target := filepath.Join(root, filepath.FromSlash(src.Path))
	switch src.Kind {
	case config.CodeKindDirs:
		return dirNames(target, src.Ignore)
	case config.CodeKindFiles:
		return fileNames(target, src.Glob, src.Ignore)
	case config.CodeKindResources:
		pattern := regexp.MustCompile(`resource\s+"` + regexp.QuoteMeta(src.ResourceType) + `"\s+"(\w+)"`)
		return patternNames(target, pattern)
	case config.CodeKindPattern:
		pattern, err := regexp.Compile(src.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile code pattern: %w", err)
		}
		return patternNames(target, pattern)
	default:
		_, errs := src.Kind.IsValid()
		return nil, errs[0]
	}
}

// dirNames lists the subdirectories of dir, minus ignored names.
func dirNames(dir string, ignore []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !ignored(e.Name(), ignore) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// fileNames lists the regular files under dir matching glob, minus ignored
// base names. A glob without "/" only sees direct children.
func fileNames(dir, glob string, ignore []string) ([]string, error) {
	if glob == "" {
		glob = "*"
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", glob, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !ignored(path.Base(m), ignore) {
			names = append(names, m)
		}
	}
	slices.Sort(names)
	return names, nil
}

// patternNames returns the first capture group (or the whole match) of every
// match of pattern in the file, in file order.
func patternNames(file string, pattern *regexp.Regexp) ([]string, error) {
	text, err := markdown.ReadDocument(file)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 {
			names = append(names, m[1])
		} else {
			names = append(names, m[0])
		}
	}
	return names, nil
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// sectionCount is the row count of one table section.
type sectionCount struct {
	section config.Section
	table   markdown.TableSection
}

// specSections counts the data rows of every configured section.
func specSections(text string, sections []config.Section) ([]sectionCount, error) {
	counts := make([]sectionCount, 0, len(sections))
	for _, sec := range sections {
		start, stop, err := markdown.CompileAnchors(sec.Start, sec.Stop)
		if err != nil {
			return nil, err
		}
		counts = append(counts, sectionCount{section: sec, table: markdown.FindTableSection(text, start, stop)})
	}
	return counts, nil
}

// coverageKey is the text searched for in the coverage documents: the name
// without its file extension.
func coverageKey(name string) string {
	base := path.Base(name)
	if ext := path.Ext(base); ext != "" && ext != base {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// conventionalPath renders a component as it appears in the report:
// "<path>/<name>/" for directories, "<path>/<name>" for files and
// "<file>:<name>" for names declared inside a file.
func conventionalPath(src config.CodeSource, name string) string {
	base := strings.TrimSuffix(filepath.ToSlash(src.Path), "/")
	switch src.Kind {
	case config.CodeKindDirs:
		return base + "/" + name + "/"
	case config.CodeKindFiles:
		return base + "/" + name
	default:
		return base + ":" + name
	}
}

