// SPDX-License-Identifier: MPL-2.0

// Package scan walks a project tree once and sketches its source layout:
// which top-level directories hold code, how many files each language has,
// where the conventional entry points are, and which files live in shared
// code directories.
//
// The scan is best effort. Unreadable subdirectories are skipped and only an
// unreadable root is reported as an error.
package scan

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Result is an immutable snapshot of a scanned tree. All paths are relative
// to the scan root and slash-separated.
type Result struct {
	SourceDirectories []string       `json:"source_directories"`
	LanguageCounts    map[string]int `json:"language_file_counts"`
	EntryPoints       []string       `json:"entry_points"`
	SharedModules     []string       `json:"shared_modules"`
}

// PrimaryLanguage returns the language with the most files, or "" when no
// recognized file was found. Ties go to the alphabetically first label.
func (r *Result) PrimaryLanguage() string {
	langs := make([]string, 0, len(r.LanguageCounts))
	for lang := range r.LanguageCounts {
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		return ""
	}
	slices.SortFunc(langs, func(a, b string) int {
		if c := cmp.Compare(r.LanguageCounts[b], r.LanguageCounts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return langs[0]
}

// Scan walks root once and classifies its files according to opts.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	if err := opts.Normalize(); err != nil {
		return nil, fmt.Errorf("scan options: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	w := newWalker(opts)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Debug("scan: skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr // paths outside root cannot be classified
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if w.ignore.Match(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		w.visitFile(rel, d.Name())
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", root, walkErr)
	}

	return w.result(), nil
}

type walker struct {
	languages   map[string]string
	ignore      IgnoreSet
	entryPoints map[string]struct{}
	sharedDirs  map[string]struct{}

	sourceDirs map[string]struct{}
	counts     map[string]int
	entries    []string
	shared     []string
}

func newWalker(opts Options) *walker {
	w := &walker{
		languages:   opts.Languages,
		ignore:      opts.IgnoreSet(),
		entryPoints: toSet(opts.EntryPoints),
		sharedDirs:  toSet(opts.SharedDirs),
		sourceDirs:  make(map[string]struct{}),
		counts:      make(map[string]int),
	}
	return w
}

func (w *walker) visitFile(rel, name string) {
	if _, ok := w.entryPoints[name]; ok {
		w.entries = append(w.entries, rel)
	}

	lang, ok := w.languages[filepath.Ext(name)]
	if !ok {
		return
	}
	w.counts[lang]++

	top, _, nested := strings.Cut(rel, "/")
	if !nested {
		return
	}
	if !strings.HasPrefix(top, ".") {
		w.sourceDirs[top] = struct{}{}
	}
	if _, ok := w.sharedDirs[top]; ok {
		w.shared = append(w.shared, rel)
	}
}

func (w *walker) result() *Result {
	dirs := make([]string, 0, len(w.sourceDirs))
	for dir := range w.sourceDirs {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	slices.Sort(w.entries)
	slices.Sort(w.shared)

	return &Result{
		SourceDirectories: dirs,
		LanguageCounts:    w.counts,
		EntryPoints:       nonNil(w.entries),
		SharedModules:     nonNil(w.shared),
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
