// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of markdown help
// pages rendered with glamour.
//
// An ActionableError carries the failed operation, the resource involved and
// suggestions. Linking it to a catalog Id lets the CLI print the longer
// guidance page in verbose mode.
package issue
