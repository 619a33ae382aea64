// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CodeKindDirs counts subdirectories of Path.
	CodeKindDirs CodeKind = "dirs"
	// CodeKindFiles counts files directly inside Path that match Glob.
	CodeKindFiles CodeKind = "files"
	// CodeKindResources counts `resource "<ResourceType>" "<name>"` blocks in
	// the file at Path.
	CodeKindResources CodeKind = "resources"
	// CodeKindPattern counts matches of Pattern in the file at Path.
	CodeKindPattern CodeKind = "pattern"
)

var (
	// ErrInvalidCodeKind is returned when a CodeKind value is not recognized.
	ErrInvalidCodeKind = errors.New("invalid code kind")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// CodeKind selects how a category is counted in the source tree.
	CodeKind string

	// InvalidCodeKindError is returned when a CodeKind value is not recognized.
	// It wraps ErrInvalidCodeKind for errors.Is() compatibility.
	InvalidCodeKindError struct {
		Value CodeKind
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the drift-check configuration.
	Config struct {
		// Root is the project root, relative to the config file directory.
		Root string `json:"root" mapstructure:"root"`
		// Documents are the tracked specification documents, in report order.
		Documents []Document `json:"documents" mapstructure:"documents" validate:"required,min=1,dive"`
		// Categories are the count checks, in report order.
		Categories []Category `json:"categories" mapstructure:"categories" validate:"dive"`
		// Coverage configures the name-coverage check.
		Coverage CoverageConfig `json:"coverage" mapstructure:"coverage"`
		// Freshness configures the "Last verified" check.
		Freshness FreshnessConfig `json:"freshness" mapstructure:"freshness"`

		// ProjectRoot is the resolved absolute project root. Set by Load.
		ProjectRoot string `json:"-" mapstructure:"-"`
		// SourcePath is the config file that was loaded, or "" for defaults.
		SourcePath string `json:"-" mapstructure:"-"`
	}

	// Document names one specification document.
	Document struct {
		// Name is the identifier categories use to refer to the document.
		Name string `json:"name" mapstructure:"name" validate:"required"`
		// Path is relative to the project root.
		Path string `json:"path" mapstructure:"path" validate:"required"`
	}

	// Category is one tracked component type, counted in code and in a spec document.
	Category struct {
		// Name labels the report line (e.g., "Lambda functions").
		Name string `json:"name" mapstructure:"name" validate:"required"`
		// Code selects the code-side extraction.
		Code CodeSource `json:"code" mapstructure:"code"`
		// Spec selects what is counted in the document.
		Spec SpecSource `json:"spec" mapstructure:"spec"`
		// Coverage enables the name-coverage check for this category's names.
		Coverage bool `json:"coverage,omitempty" mapstructure:"coverage"`
	}

	// CodeSource describes where a category's code-side names come from.
	CodeSource struct {
		Kind CodeKind `json:"kind" mapstructure:"kind" validate:"required"`
		// Path is a directory for dirs and files, a file otherwise.
		Path string `json:"path" mapstructure:"path" validate:"required"`
		// Glob filters file names for the files kind. Empty means "*".
		Glob string `json:"glob,omitempty" mapstructure:"glob"`
		// Ignore lists entry names that are never counted.
		Ignore []string `json:"ignore,omitempty" mapstructure:"ignore"`
		// ResourceType is the declared resource type for the resources kind.
		ResourceType string `json:"resource_type,omitempty" mapstructure:"resource_type" validate:"required_if=Kind resources"`
		// Pattern is the regular expression for the pattern kind. A first
		// capture group, when present, supplies the name.
		Pattern string `json:"pattern,omitempty" mapstructure:"pattern" validate:"required_if=Kind pattern"`
	}

	// SpecSource describes how a category is counted in a spec document.
	// Exactly one of Sections and Pattern must be set.
	SpecSource struct {
		// Document is the Name of a configured Document.
		Document string `json:"document" mapstructure:"document" validate:"required"`
		// Sections are table sections whose data rows are summed.
		Sections []Section `json:"sections,omitempty" mapstructure:"sections" validate:"required_without=Pattern,excluded_with=Pattern,dive"`
		// Pattern counts regular-expression matches in the document.
		Pattern string `json:"pattern,omitempty" mapstructure:"pattern" validate:"required_without=Sections"`
	}

	// Section is a table section bounded by heading anchors.
	Section struct {
		// Start matches the line that opens the section.
		Start string `json:"start" mapstructure:"start" validate:"required"`
		// Stop matches the line that closes it. Empty means end of document.
		Stop string `json:"stop,omitempty" mapstructure:"stop"`
	}

	// CoverageConfig configures the name-coverage check.
	CoverageConfig struct {
		// Documents are searched, concatenated in this order.
		Documents []string `json:"documents" mapstructure:"documents"`
		// Label names the document a missing item should be added to. Empty
		// means the file name of the first coverage document.
		Label string `json:"label,omitempty" mapstructure:"label"`
	}

	// FreshnessConfig configures the "Last verified" check.
	FreshnessConfig struct {
		// Days is the maximum age in calendar days before a document is stale.
		Days int `json:"days" mapstructure:"days" validate:"gte=0"`
		// Documents limits the check to these document names. Empty means all.
		Documents []string `json:"documents,omitempty" mapstructure:"documents"`
	}
)

// String returns the string representation of the CodeKind.
func (k CodeKind) String() string { return string(k) }

// IsValid returns whether the CodeKind is one of the defined kinds.
func (k CodeKind) IsValid() (bool, []error) {
	switch k {
	case CodeKindDirs, CodeKindFiles, CodeKindResources, CodeKindPattern:
		return true, nil
	default:
		return false, []error{&InvalidCodeKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidCodeKindError.
func (e *InvalidCodeKindError) Error() string {
	return fmt.Sprintf("invalid code kind %q (valid: dirs, files, resources, pattern)", e.Value)
}

// Unwrap returns ErrInvalidCodeKind for errors.Is() compatibility.
func (e *InvalidCodeKindError) Unwrap() error { return ErrInvalidCodeKind }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %d field error(s): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Document returns the document with the given name.
func (c *Config) Document(name string) (Document, bool) {
	for _, doc := range c.Documents {
		if doc.Name == name {
			return doc, true
		}
	}
	return Document{}, false
}

// CoverageLabel returns the document name shown for missing coverage items.
func (c *Config) CoverageLabel() string {
	if c.Coverage.Label != "" {
		return c.Coverage.Label
	}
	if len(c.Coverage.Documents) == 0 {
		return ""
	}
	doc, ok := c.Document(c.Coverage.Documents[0])
	if !ok {
		return c.Coverage.Documents[0]
	}
	return baseName(doc.Path)
}

// FreshnessDocuments returns the documents checked for freshness, in order.
func (c *Config) FreshnessDocuments() []Document {
	if len(c.Freshness.Documents) == 0 {
		return c.Documents
	}
	docs := make([]Document, 0, len(c.Freshness.Documents))
	for _, name := range c.Freshness.Documents {
		if doc, ok := c.Document(name); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
