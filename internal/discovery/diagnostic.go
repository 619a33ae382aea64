// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityInfo marks an artifact that was skipped on purpose.
	SeverityInfo Severity = "info"
	// SeverityWarning marks an artifact that could not be read or parsed.
	SeverityWarning Severity = "warning"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic records a non-fatal discovery event so the CLI layer can
	// decide whether to render it. Diagnostics never appear in the report.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "spec_decode_skipped").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the project-relative path involved (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}

	// diagnostics accumulates Diagnostic values during one Discover call.
	diagnostics struct {
		items []Diagnostic
	}
)

func (d *diagnostics) warn(code, path string, cause error, message string) {
	d.items = append(d.items, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Path:     path,
		Cause:    cause,
	})
}

func (d *diagnostics) info(code, path, message string) {
	d.items = append(d.items, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Path:     path,
	})
}
