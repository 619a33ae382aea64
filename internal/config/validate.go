// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct-tag constraints and the cross-references that tags
// cannot express. All problems are collected into one InvalidConfigError.
func (c *Config) Validate() error {
	var fieldErrs []error

	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fieldErrs = append(fieldErrs, fmt.Errorf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
			}
		} else {
			fieldErrs = append(fieldErrs, err)
		}
	}

	docNames := make(map[string]bool, len(c.Documents))
	for i, doc := range c.Documents {
		if docNames[doc.Name] {
			fieldErrs = append(fieldErrs, fmt.Errorf("documents[%d]: duplicate name %q", i, doc.Name))
		}
		docNames[doc.Name] = true
	}

	catNames := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if catNames[cat.Name] {
			fieldErrs = append(fieldErrs, fmt.Errorf("%s: duplicate name %q", field, cat.Name))
		}
		catNames[cat.Name] = true

		if ok, errs := cat.Code.Kind.IsValid(); !ok {
			for _, err := range errs {
				fieldErrs = append(fieldErrs, fmt.Errorf("%s.code.kind: %w", field, err))
			}
		}
		if cat.Code.Pattern != "" {
			fieldErrs = appendRegexpErr(fieldErrs, field+".code.pattern", cat.Code.Pattern)
		}
		if cat.Spec.Document != "" && !docNames[cat.Spec.Document] {
			fieldErrs = append(fieldErrs, fmt.Errorf("%s.spec.document: unknown document %q", field, cat.Spec.Document))
		}
		if cat.Spec.Pattern != "" {
			fieldErrs = appendRegexpErr(fieldErrs, field+".spec.pattern", cat.Spec.Pattern)
		}
		for j, sec := range cat.Spec.Sections {
			secField := fmt.Sprintf("%s.spec.sections[%d]", field, j)
			fieldErrs = appendRegexpErr(fieldErrs, secField+".start", sec.Start)
			if sec.Stop != "" {
				fieldErrs = appendRegexpErr(fieldErrs, secField+".stop", sec.Stop)
			}
		}
	}

	for i, name := range c.Coverage.Documents {
		if !docNames[name] {
			fieldErrs = append(fieldErrs, fmt.Errorf("coverage.documents[%d]: unknown document %q", i, name))
		}
	}
	for i, name := range c.Freshness.Documents {
		if !docNames[name] {
			fieldErrs = append(fieldErrs, fmt.Errorf("freshness.documents[%d]: unknown document %q", i, name))
		}
	}

	if len(fieldErrs) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrs}
	}
	return nil
}

func appendRegexpErr(errs []error, field, pattern string) []error {
	if _, err := regexp.Compile(pattern); err != nil {
		return append(errs, fmt.Errorf("%s: %w", field, err))
	}
	return errs
}
