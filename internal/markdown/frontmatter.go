// SPDX-License-Identifier: MPL-2.0

package markdown

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// SplitFrontmatter separates a leading YAML frontmatter block from text.
//
// The block must open on the first line with "---" and close with a line of
// "---" or "...". found is false when there is no block or it does not parse
// as a YAML mapping; body is then the whole text.
func SplitFrontmatter(text string) (meta map[string]any, body string, found bool) {
	lines := splitLines(strings.TrimPrefix(text, "\ufeff"))
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, text, false
	}

	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != frontmatterDelimiter && trimmed != "..." {
			continue
		}
		block := strings.Join(lines[1:i], "\n")
		if err := yaml.Unmarshal([]byte(block), &meta); err != nil || meta == nil {
			return nil, text, false
		}
		return meta, strings.Join(lines[i+1:], "\n"), true
	}

	return nil, text, false
}
