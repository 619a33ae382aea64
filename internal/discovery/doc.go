// SPDX-License-Identifier: MPL-2.0

// Package discovery builds a structural report of an arbitrary project.
//
// Discover aggregates independent sub-scans into one Report: candidate
// specification documents with their heading outlines, the source layout from
// package scan, infrastructure-as-code markers, build-system markers, the test
// layout and agent configuration. Every sub-scan is best effort: a missing or
// unreadable optional artifact is an absence in the report, recorded as a
// Diagnostic, never an error.
//
// File organization:
//   - discovery.go: Options, Report types and Discover
//   - specs.go: documentation candidates
//   - iac.go: infrastructure-as-code markers
//   - build.go: build-system markers and manifest names
//   - tests.go: test layout
//   - claude.go: agent configuration
//   - schema.go: JSON output and schema validation
package discovery
