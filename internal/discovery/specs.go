// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specdrift/specdrift/internal/markdown"
)

// specPatterns are the documentation globs, in priority order. Root-level
// markdown files come last.
var specPatterns = []string{
	"docs/**/*.md",
	"spec/**/*.md",
	"specification/**/*.md",
	"specifications/**/*.md",
	"doc/**/*.md",
	"documents/**/*.md",
	"wiki/**/*.md",
	"design/**/*.md",
	"*.md",
}

// SpecFile is one candidate specification document.
type SpecFile struct {
	Path      string             `json:"path"`
	Headings  []markdown.Heading `json:"headings"`
	SizeBytes int64              `json:"size_bytes"`
}

// specFiles matches specPatterns in order, sorting each pattern's matches
// and keeping the first occurrence of every path.
func (d *discoverer) specFiles() []SpecFile {
	results := make([]SpecFile, 0)
	seen := make(map[string]struct{})

	for _, pattern := range specPatterns {
		matches, err := doublestar.Glob(d.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			d.diags.warn("spec_glob_failed", pattern, err, "spec pattern could not be evaluated")
			continue
		}
		slices.Sort(matches)

		for _, rel := range matches {
			if _, dup := seen[rel]; dup {
				continue
			}
			if d.skipSpecPath(rel) {
				continue
			}
			seen[rel] = struct{}{}
			results = append(results, d.specFile(rel))
		}
	}

	return results
}

// skipSpecPath reports dotfiles and files beneath ignored directories.
func (d *discoverer) skipSpecPath(rel string) bool {
	if strings.HasPrefix(path.Base(rel), ".") {
		return true
	}
	dir := path.Dir(rel)
	return dir != "." && d.ignore.MatchPath(dir)
}

func (d *discoverer) specFile(rel string) SpecFile {
	sf := SpecFile{Path: rel, Headings: []markdown.Heading{}}

	info, err := fs.Stat(d.fsys, rel)
	if err == nil {
		sf.SizeBytes = info.Size()
	}

	data, err := fs.ReadFile(d.fsys, rel)
	if err != nil {
		d.diags.warn("spec_read_skipped", rel, err, "spec file could not be read; no headings extracted")
		return sf
	}
	text, err := markdown.DecodeText(data)
	if err != nil {
		d.diags.warn("spec_decode_skipped", rel, err, "spec file is not text; no headings extracted")
		return sf
	}
	sf.Headings = markdown.ExtractHeadings(text)
	return sf
}
