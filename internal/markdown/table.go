// SPDX-License-Identifier: MPL-2.0

package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// separatorRow matches a table separator such as "|---|:---:|".
var separatorRow = regexp.MustCompile(`^\|[\s\-|:]+\|$`)

// TableSection is the first markdown table found between a start anchor and a
// stop anchor. Line numbers are 1-based; EndLine is the last line scanned.
type TableSection struct {
	// Found reports whether the start anchor matched at all.
	Found     bool     `json:"found"`
	StartLine int      `json:"start_line,omitempty"`
	EndLine   int      `json:"end_line,omitempty"`
	Header    string   `json:"header,omitempty"`
	Rows      []string `json:"rows,omitempty"`
}

// RowCount returns the number of data rows, excluding header and separator.
func (s TableSection) RowCount() int {
	return len(s.Rows)
}

// FindTableSection locates the table that follows the first line matching
// start.
//
// Scanning begins on the line after the start anchor. A line matching stop
// ends the section. Trimmed lines beginning with '|' are table lines; the
// separator row is skipped, the first remaining row is the header and every
// later row is data. Once the table has begun, the first line that does not
// begin with '|' ends it. A nil stop means the section runs to the end of the
// document. When start never matches the returned section has Found == false
// and no rows.
func FindTableSection(text string, start, stop *regexp.Regexp) TableSection {
	var (
		section   TableSection
		inSection bool
		inTable   bool
	)

	for i, line := range splitLines(text) {
		lineNo := i + 1
		if !inSection {
			if start.MatchString(line) {
				inSection = true
				section.Found = true
				section.StartLine = lineNo
				section.EndLine = lineNo
			}
			continue
		}

		if stop != nil && stop.MatchString(line) {
			break
		}
		section.EndLine = lineNo

		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			if inTable {
				break
			}
			continue
		}
		if separatorRow.MatchString(trimmed) {
			continue
		}
		if !inTable {
			inTable = true
			section.Header = trimmed
			continue
		}
		section.Rows = append(section.Rows, trimmed)
	}

	return section
}

// CountTableRows compiles start and stop and returns the data-row count of
// the table section they delimit. An empty stop runs to the end of the
// document. A start pattern that never matches yields 0.
func CountTableRows(text, start, stop string) (int, error) {
	startRe, stopRe, err := CompileAnchors(start, stop)
	if err != nil {
		return 0, err
	}
	return FindTableSection(text, startRe, stopRe).RowCount(), nil
}

// CompileAnchors compiles a start/stop anchor pair. The stop regexp is nil
// when stop is empty.
func CompileAnchors(start, stop string) (startRe, stopRe *regexp.Regexp, err error) {
	startRe, err = regexp.Compile(start)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start pattern %q: %w", start, err)
	}
	if stop == "" {
		return startRe, nil, nil
	}
	stopRe, err = regexp.Compile(stop)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid stop pattern %q: %w", stop, err)
	}
	return startRe, stopRe, nil
}

// CountMatches returns the number of non-overlapping matches of pattern in text.
func CountMatches(text string, pattern *regexp.Regexp) int {
	return len(pattern.FindAllStringIndex(text, -1))
}
