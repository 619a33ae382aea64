// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"

	"github.com/specdrift/specdrift/internal/markdown"
)

const (
	claudeFileName     = "CLAUDE.md"
	claudePreviewRunes = 3000
	skillsDir          = ".claude/skills"
	skillFileName      = "SKILL.md"
)

var languageTagPattern = regexp.MustCompile(`<language>(.*?)</language>`)

// ClaudeConfig summarizes agent configuration found in the project.
type ClaudeConfig struct {
	HasClaudeMD bool `json:"has_claude_md"`
	// ClaudeMDPreview holds the first characters of CLAUDE.md, or null.
	ClaudeMDPreview *string `json:"claude_md_preview"`
	// DetectedLanguage is the <language> tag value from the project or the
	// user-level CLAUDE.md, or null.
	DetectedLanguage *string  `json:"detected_language"`
	ExistingSkills   []string `json:"existing_skills"`
}

func (d *discoverer) claudeConfig() ClaudeConfig {
	cfg := ClaudeConfig{ExistingSkills: make([]string, 0)}

	if d.isFile(claudeFileName) {
		cfg.HasClaudeMD = true
		if text, ok := d.readText(claudeFileName); ok {
			preview := truncateRunes(text, claudePreviewRunes)
			cfg.ClaudeMDPreview = &preview
			cfg.DetectedLanguage = languageTag(text)
		}
	}

	if cfg.DetectedLanguage == nil && d.home != "" && d.home != "-" {
		global := filepath.Join(d.home, ".claude", claudeFileName)
		if text, err := markdown.ReadDocument(global); err == nil {
			cfg.DetectedLanguage = languageTag(text)
		}
	}

	entries, err := fs.ReadDir(d.fsys, skillsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		d.diags.warn("skills_read_skipped", skillsDir, err, "skills directory could not be read")
	}
	for _, entry := range entries {
		if entry.IsDir() && d.isFile(path.Join(skillsDir, entry.Name(), skillFileName)) {
			cfg.ExistingSkills = append(cfg.ExistingSkills, entry.Name())
		}
	}

	return cfg
}

func (d *discoverer) readText(rel string) (string, bool) {
	data, err := fs.ReadFile(d.fsys, rel)
	if err != nil {
		d.diags.warn("claude_read_skipped", rel, err, "file could not be read")
		return "", false
	}
	text, err := markdown.DecodeText(data)
	if err != nil {
		d.diags.warn("claude_decode_skipped", rel, err, "file is not text")
		return "", false
	}
	return text, true
}

func languageTag(text string) *string {
	m := languageTagPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &m[1]
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
