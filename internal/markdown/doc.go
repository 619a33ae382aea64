// SPDX-License-Identifier: MPL-2.0

// Package markdown extracts lightweight structure from markdown documents.
//
// Nothing here builds a syntax tree. Headings, table sections and
// "Last verified" metadata are recognized line by line with the same
// heuristics a maintainer uses when skimming a spec: a trimmed line starting
// with '#' is a heading, a trimmed line starting with '|' is a table row, and
// a row made only of pipes, dashes and whitespace is the table separator.
package markdown
