// SPDX-License-Identifier: MPL-2.0

package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the layout of "Last verified" dates.
const DateLayout = "2006-01-02"

// frontmatterVerifiedKey is the frontmatter key consulted when the document
// has no "Last verified:" line.
const frontmatterVerifiedKey = "last_verified"

var lastVerifiedPattern = regexp.MustCompile(`Last verified:\s*(\d{4}-\d{2}-\d{2})`)

// LastVerified returns the first "Last verified: YYYY-MM-DD" date in text.
// When no such line exists, a last_verified key in YAML frontmatter is used.
// ok is false when neither is present. A malformed date is an error.
func LastVerified(text string) (date time.Time, ok bool, err error) {
	if m := lastVerifiedPattern.FindStringSubmatch(text); m != nil {
		date, err = time.Parse(DateLayout, m[1])
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse last verified date %q: %w", m[1], err)
		}
		return date, true, nil
	}

	meta, _, found := SplitFrontmatter(text)
	if !found {
		return time.Time{}, false, nil
	}
	switch v := meta[frontmatterVerifiedKey].(type) {
	case time.Time:
		y, mo, d := v.Date()
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), true, nil
	case string:
		date, err = time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse frontmatter %s %q: %w", frontmatterVerifiedKey, v, err)
		}
		return date, true, nil
	default:
		return time.Time{}, false, nil
	}
}
