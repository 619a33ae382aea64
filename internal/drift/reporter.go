// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Header is the first line of the text report.
const Header = "=== Spec Document Consistency Check ==="

type (
	// Reporter receives findings while a Comparator runs.
	Reporter interface {
		// Start is called once before any check runs.
		Start() error
		// Report is called for every finding, in production order.
		Report(f Finding) error
		// Finish is called once with the complete result.
		Finish(res *Result) error
	}

	// TextReporter writes the line-oriented report.
	TextReporter struct {
		w        io.Writer
		ok       lipgloss.Style
		warn     lipgloss.Style
		lastKind Kind
	}

	// JSONReporter writes the Result as one JSON document when the run
	// finishes.
	JSONReporter struct {
		w io.Writer
	}

	discardReporter struct{}
)

// NewTextReporter creates a TextReporter writing to w. Colors follow the
// terminal capabilities of w, so non-terminal writers get plain text.
func NewTextReporter(w io.Writer) *TextReporter {
	r := lipgloss.NewRenderer(w)
	return &TextReporter{
		w:    w,
		ok:   r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		warn: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
	}
}

// Start writes the report header.
func (t *TextReporter) Start() error {
	t.lastKind = ""
	_, err := fmt.Fprintf(t.w, "%s\n\n", Header)
	return err
}

// Report writes one finding. The first coverage finding is preceded by a
// "Files not listed in spec:" heading and the freshness group by a blank line.
func (t *TextReporter) Report(f Finding) error {
	if f.Kind != t.lastKind {
		switch f.Kind {
		case KindCoverage:
			if _, err := fmt.Fprint(t.w, "\nFiles not listed in spec:\n"); err != nil {
				return err
			}
		case KindFreshness:
			if _, err := fmt.Fprintln(t.w); err != nil {
				return err
			}
		}
		t.lastKind = f.Kind
	}
	_, err := fmt.Fprintln(t.w, t.line(f))
	return err
}

// Finish writes the summary line.
func (t *TextReporter) Finish(res *Result) error {
	if res.Warnings == 0 {
		_, err := fmt.Fprint(t.w, "\nResult: All OK - spec documents and code are consistent\n")
		return err
	}
	_, err := fmt.Fprintf(t.w, "\nResult: %d warning(s) found - consider updating spec documents\n", res.Warnings)
	return err
}

func (t *TextReporter) tag(s Status) string {
	if s == StatusOK {
		return t.ok.Render("[OK]")
	}
	return t.warn.Render("[WARN]")
}

// line renders a finding as a single report line.
func (t *TextReporter) line(f Finding) string {
	switch f.Kind {
	case KindCount:
		if f.Status == StatusOK {
			return fmt.Sprintf("%s %s: %d (code) = %d (spec)", t.tag(f.Status), f.Category, f.CodeCount, f.SpecCount)
		}
		return fmt.Sprintf("%s %s: %d (code) != %d (spec) <- needs review", t.tag(f.Status), f.Category, f.CodeCount, f.SpecCount)
	case KindSection:
		return fmt.Sprintf("%s %s: section not found in %s: %s", t.tag(f.Status), f.Category, f.Document, f.Name)
	case KindCoverage:
		return fmt.Sprintf("  - %s -> not listed in %s", f.Path, f.Document)
	case KindFreshness:
		switch f.Reason {
		case ReasonNotSet:
			return fmt.Sprintf("%s Last verified date not set: %s", t.tag(f.Status), f.Document)
		case ReasonInvalidDate:
			return fmt.Sprintf("%s Last verified date is invalid: %s", t.tag(f.Status), f.Document)
		case ReasonStale:
			return fmt.Sprintf("%s Last verified date is over %d days old: %s (last: %s)", t.tag(f.Status), f.MaxAgeDays, f.Document, f.LastVerified)
		default:
			return fmt.Sprintf("%s Last verified: %s (last: %s)", t.tag(f.Status), f.Document, f.LastVerified)
		}
	default:
		return fmt.Sprintf("%s %s", t.tag(f.Status), f.Reason)
	}
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// Start is a no-op.
func (*JSONReporter) Start() error { return nil }

// Report is a no-op; findings are written by Finish.
func (*JSONReporter) Report(Finding) error { return nil }

// Finish writes the indented Result.
func (j *JSONReporter) Finish(res *Result) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode drift result: %w", err)
	}
	return nil
}

func (discardReporter) Start() error         { return nil }
func (discardReporter) Report(Finding) error { return nil }
func (discardReporter) Finish(*Result) error { return nil }
