// SPDX-License-Identifier: MPL-2.0

package markdown

import "strings"

// Heading is one markdown heading in document order.
type Heading struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

// ExtractHeadings returns every heading of text in document order.
//
// A line is a heading when, after trimming surrounding whitespace, it starts
// with one or more '#' characters followed by non-empty text. The level is the
// number of leading '#' characters. The function is pure; repeated calls on the
// same input return equal results.
func ExtractHeadings(text string) []Heading {
	headings := make([]Heading, 0)
	for _, line := range splitLines(text) {
		if h, ok := parseHeading(line); ok {
			headings = append(headings, h)
		}
	}
	return headings
}

func parseHeading(line string) (Heading, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return Heading{}, false
	}
	rest := strings.TrimLeft(trimmed, "#")
	title := strings.TrimSpace(rest)
	if title == "" {
		return Heading{}, false
	}
	return Heading{Level: len(trimmed) - len(rest), Title: title}, true
}

// splitLines splits on \n, \r\n and lone \r the way a line-oriented reader
// would, without producing a trailing empty element for a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
