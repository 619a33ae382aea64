// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specdrift/specdrift/internal/clock"
	"github.com/specdrift/specdrift/internal/config"
	"github.com/specdrift/specdrift/internal/issue"
	"github.com/specdrift/specdrift/internal/markdown"
)

// ErrDocumentMissing is wrapped by the error returned when a configured
// document cannot be read.
var ErrDocumentMissing = errors.New("spec document missing")

type (
	// Option configures a Comparator.
	Option func(*Comparator)

	// Comparator runs the drift checks for one configuration.
	Comparator struct {
		cfg   *config.Config
		root  string
		clock clock.Clock
	}

	// document is a configured document loaded into memory.
	document struct {
		config.Document
		file string
		text string
	}
)

// WithClock sets the clock used as "today" by the freshness check.
func WithClock(c clock.Clock) Option {
	return func(cmp *Comparator) {
		cmp.clock = c
	}
}

// New creates a Comparator for cfg. The config is validated here so a
// Comparator never runs against inconsistent settings.
func New(cfg *config.Config, opts ...Option) (*Comparator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("drift: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root := cfg.ProjectRoot
	if root == "" {
		root = cfg.Root
	}
	cmp := &Comparator{cfg: cfg, root: root, clock: clock.Real{}}
	for _, opt := range opts {
		opt(cmp)
	}
	return cmp, nil
}

// Root returns the project root the comparator reads from.
func (c *Comparator) Root() string {
	return c.root
}

// WatchPatterns returns doublestar patterns, relative to Root, covering every
// input of a run.
func (c *Comparator) WatchPatterns() []string {
	patterns := make([]string, 0, len(c.cfg.Documents)+len(c.cfg.Categories)+1)
	for _, doc := range c.cfg.Documents {
		patterns = append(patterns, filepath.ToSlash(doc.Path))
	}
	for _, cat := range c.cfg.Categories {
		p := strings.TrimSuffix(filepath.ToSlash(cat.Code.Path), "/")
		switch cat.Code.Kind {
		case config.CodeKindDirs, config.CodeKindFiles:
			patterns = append(patterns, p+"/**")
		default:
			patterns = append(patterns, p)
		}
	}
	return append(patterns, config.FileName())
}

// WatchIgnores returns doublestar patterns, relative to Root, for the entries
// each category excludes from its count. Changes there never affect a run.
func (c *Comparator) WatchIgnores() []string {
	var patterns []string
	for _, cat := range c.cfg.Categories {
		if cat.Code.Kind != config.CodeKindDirs && cat.Code.Kind != config.CodeKindFiles {
			continue
		}
		base := strings.TrimSuffix(filepath.ToSlash(cat.Code.Path), "/")
		for _, name := range cat.Code.Ignore {
			if name == "" {
				continue
			}
			name = globEscaper.Replace(name)
			patterns = append(patterns, base+"/"+name, base+"/"+name+"/**")
		}
	}
	return patterns
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "{", `\{`)

// Run executes every check in order and reports each finding to r as it is
// produced. A nil reporter discards findings. The returned error is non-nil
// only for fatal problems; warnings are reported through the Result.
func (c *Comparator) Run(ctx context.Context, r Reporter) (*Result, error) {
	if r == nil {
		r = discardReporter{}
	}
	res := &Result{Findings: []Finding{}}

	if err := r.Start(); err != nil {
		return nil, err
	}
	docs, err := c.loadDocuments()
	if err != nil {
		return nil, err
	}

	emit := func(f Finding) error {
		res.add(f)
		return r.Report(f)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	names, err := c.checkCounts(docs, emit)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := c.checkCoverage(docs, names, emit); err != nil {
		return nil, err
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := c.checkFreshness(docs, emit); err != nil {
		return nil, err
	}

	slog.Debug("drift check finished", "findings", len(res.Findings), "warnings", res.Warnings)
	if err := r.Finish(res); err != nil {
		return nil, err
	}
	return res, nil
}

// loadDocuments reads every configured document before any check runs.
func (c *Comparator) loadDocuments() (map[string]document, error) {
	docs := make(map[string]document, len(c.cfg.Documents))
	for _, doc := range c.cfg.Documents {
		file := filepath.Join(c.root, filepath.FromSlash(doc.Path))
		text, err := markdown.ReadDocument(file)
		if err != nil {
			return nil, documentError(doc, file, err)
		}
		docs[doc.Name] = document{Document: doc, file: file, text: text}
	}
	return docs, nil
}

func documentError(doc config.Document, file string, err error) error {
	if errors.Is(err, markdown.ErrNotText) {
		return issue.NewErrorContext().
			WithOperation("read spec document " + doc.Name).
			WithResource(file).
			WithSuggestion("Save the document as UTF-8").
			WithIssue(issue.DocumentNotTextId).
			Wrap(err).
			BuildError()
	}
	ctx := issue.NewErrorContext().
		WithOperation("read spec document " + doc.Name).
		WithResource(file).
		WithIssue(issue.DocumentMissingId)
	if errors.Is(err, fs.ErrNotExist) {
		ctx = ctx.
			WithSuggestion("Check the documents paths in " + config.FileName()).
			WithSuggestion("Use --root to point at the project that owns the documents")
	}
	return ctx.Wrap(fmt.Errorf("%w: %w", ErrDocumentMissing, err)).BuildError()
}

// checkCounts compares code and spec counts per category and returns the
// code-side names keyed by category for the coverage check.
func (c *Comparator) checkCounts(docs map[string]document, emit func(Finding) error) (map[string][]string, error) {
	names := make(map[string][]string, len(c.cfg.Categories))
	for _, cat := range c.cfg.Categories {
		codeList, err := codeNames(c.root, cat.Code)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("count " + cat.Name + " in code").
				WithResource(filepath.Join(c.root, filepath.FromSlash(cat.Code.Path))).
				WithSuggestion("Check the category's code.path in " + config.FileName()).
				WithIssue(issue.CodePathMissingId).
				Wrap(err).
				BuildError()
		}
		names[cat.Name] = codeList

		doc := docs[cat.Spec.Document]
		specCount, err := c.specCount(cat, doc, emit)
		if err != nil {
			return nil, err
		}

		status := StatusOK
		if len(codeList) != specCount {
			status = StatusWarn
		}
		slog.Debug("counted category", "category", cat.Name, "code", len(codeList), "spec", specCount)
		if err := emit(Finding{
			Kind:      KindCount,
			Category:  cat.Name,
			CodeCount: len(codeList),
			SpecCount: specCount,
			Document:  path.Base(filepath.ToSlash(doc.Path)),
			Status:    status,
		}); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// specCount sums table rows over the category's sections, or counts pattern
// matches. Unmatched section anchors are reported as section findings.
func (c *Comparator) specCount(cat config.Category, doc document, emit func(Finding) error) (int, error) {
	if cat.Spec.Pattern != "" {
		pattern, err := regexp.Compile(cat.Spec.Pattern)
		if err != nil {
			return 0, fmt.Errorf("compile spec pattern for %s: %w", cat.Name, err)
		}
		return markdown.CountMatches(doc.text, pattern), nil
	}

	counts, err := specSections(doc.text, cat.Spec.Sections)
	if err != nil {
		return 0, fmt.Errorf("compile section anchors for %s: %w", cat.Name, err)
	}
	total := 0
	for _, sc := range counts {
		if !sc.table.Found {
			if err := emit(Finding{
				Kind:     KindSection,
				Category: cat.Name,
				Name:     sc.section.Start,
				Document: path.Base(filepath.ToSlash(doc.Path)),
				Status:   StatusWarn,
				Reason:   ReasonSectionNotFound,
			}); err != nil {
				return 0, err
			}
			continue
		}
		total += sc.table.RowCount()
	}
	return total, nil
}

// checkCoverage reports every name of a coverage-enabled category that does
// not occur in the concatenated coverage documents.
func (c *Comparator) checkCoverage(docs map[string]document, names map[string][]string, emit func(Finding) error) error {
	if len(c.cfg.Coverage.Documents) == 0 {
		return nil
	}
	texts := make([]string, 0, len(c.cfg.Coverage.Documents))
	for _, name := range c.cfg.Coverage.Documents {
		texts = append(texts, docs[name].text)
	}
	combined := strings.Join(texts, "\n")
	label := c.cfg.CoverageLabel()

	for _, cat := range c.cfg.Categories {
		if !cat.Coverage {
			continue
		}
		for _, name := range names[cat.Name] {
			if strings.Contains(combined, coverageKey(name)) {
				continue
			}
			if err := emit(Finding{
				Kind:     KindCoverage,
				Category: cat.Name,
				Name:     name,
				Path:     conventionalPath(cat.Code, name),
				Document: label,
				Status:   StatusMissing,
				Reason:   ReasonNotListed,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkFreshness reports the "Last verified" state of each document.
// Ages are whole calendar days; a document exactly Days old is still fresh.
func (c *Comparator) checkFreshness(docs map[string]document, emit func(Finding) error) error {
	today := clock.Today(c.clock)
	maxAge := c.cfg.Freshness.Days

	for _, cfgDoc := range c.cfg.FreshnessDocuments() {
		doc := docs[cfgDoc.Name]
		f := Finding{
			Kind:       KindFreshness,
			Document:   path.Base(filepath.ToSlash(doc.Path)),
			MaxAgeDays: maxAge,
		}

		date, ok, err := markdown.LastVerified(doc.text)
		switch {
		case err != nil:
			f.Status, f.Reason = StatusWarn, ReasonInvalidDate
			slog.Debug("invalid last verified date", "document", doc.file, "error", err)
		case !ok:
			f.Status, f.Reason = StatusWarn, ReasonNotSet
		case clock.DaysBetween(date, today) > maxAge:
			f.Status, f.Reason = StatusWarn, ReasonStale
			f.LastVerified = date.Format(markdown.DateLayout)
		default:
			f.Status, f.Reason = StatusOK, ReasonFresh
			f.LastVerified = date.Format(markdown.DateLayout)
		}

		if err := emit(f); err != nil {
			return err
		}
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("drift check canceled: %w", ctx.Err())
	default:
		return nil
	}
}
