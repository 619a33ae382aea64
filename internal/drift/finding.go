// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"encoding/json"
	"slices"

	"github.com/specdrift/specdrift/internal/issue"
)

const (
	KindCount     Kind = "count"
	KindCoverage  Kind = "coverage"
	KindFreshness Kind = "freshness"
	KindSection   Kind = "section"

	StatusOK      Status = "OK"
	StatusWarn    Status = "WARN"
	StatusMissing Status = "MISSING"
)

// Reasons attached to non-count findings.
const (
	ReasonSectionNotFound = "section not found"
	ReasonNotListed       = "not listed"
	ReasonNotSet          = "not set"
	ReasonStale           = "stale"
	ReasonInvalidDate     = "invalid date"
	ReasonFresh           = "fresh"
)

type (
	// Kind is the check that produced a Finding.
	Kind string

	// Status is the outcome of a single check.
	Status string

	// Finding is one line of the drift report.
	Finding struct {
		Kind     Kind   `json:"kind"`
		Category string `json:"category,omitempty"`
		// CodeCount and SpecCount are set for count findings only.
		CodeCount int `json:"code_count,omitempty"`
		SpecCount int `json:"spec_count,omitempty"`
		// Name is the component name (coverage) or the unmatched section
		// anchor (section).
		Name string `json:"name,omitempty"`
		// Path is the conventional code path of a coverage finding.
		Path string `json:"path,omitempty"`
		// Document is the file name of the document involved.
		Document     string `json:"document,omitempty"`
		Status       Status `json:"status"`
		Reason       string `json:"reason,omitempty"`
		LastVerified string `json:"last_verified,omitempty"`
		// MaxAgeDays is the freshness threshold applied.
		MaxAgeDays int `json:"max_age_days,omitempty"`
	}

	// Result is the ordered outcome of a run.
	Result struct {
		Findings []Finding `json:"findings"`
		Warnings int       `json:"warnings"`
	}
)

// IsWarning reports whether the finding counts toward Result.Warnings.
func (f Finding) IsWarning() bool {
	return f.Status != StatusOK
}

// Issue returns the catalog entry explaining the finding, or 0.
func (f Finding) Issue() issue.Id {
	if f.Kind == KindSection && f.IsWarning() {
		return issue.SectionNotFoundId
	}
	return 0
}

// MarshalJSON keeps code_count and spec_count on count findings even when
// zero and drops them from every other kind.
func (f Finding) MarshalJSON() ([]byte, error) {
	type plain Finding
	out := struct {
		plain
		CodeCount *int `json:"code_count,omitempty"`
		SpecCount *int `json:"spec_count,omitempty"`
	}{plain: plain(f)}
	if f.Kind == KindCount {
		out.CodeCount, out.SpecCount = &f.CodeCount, &f.SpecCount
	}
	return json.Marshal(out)
}

// Issues lists the catalog entries relevant to the run, most specific first.
// A clean run has none.
func (r *Result) Issues() []issue.Id {
	var ids []issue.Id
	for _, f := range r.Findings {
		if id := f.Issue(); id != 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if r.Warnings > 0 {
		ids = append(ids, issue.DriftDetectedId)
	}
	return ids
}

// ExitCode returns 1 when any warning was found and 0 otherwise.
func (r *Result) ExitCode() int {
	if r.Warnings > 0 {
		return 1
	}
	return 0
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)
	if f.IsWarning() {
		r.Warnings++
	}
}
