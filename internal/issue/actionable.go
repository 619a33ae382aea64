// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: what specdrift was doing, on
	// which path, how to fix it and, optionally, which catalog entry explains
	// it in depth.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("read spec document").
	//		WithResource("docs/specification/01_overview.md").
	//		WithSuggestion("Run 'specdrift config show' to see the configured paths").
	//		WithIssue(issue.DocumentMissingId).
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
		Issue       Id
	}

	// ErrorContext accumulates the parts of an ActionableError. A context can
	// be reused; each Build copies the current state.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithContext wraps err with the operation and the path it concerned.
// A nil err stays nil.
func WrapWithContext(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders Error followed by one bullet per suggestion. Verbose output
// adds the numbered cause chain and a pointer to the catalog entry.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}
	if !verbose {
		return b.String()
	}

	if e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
		}
	}
	if e.Issue != 0 {
		fmt.Fprintf(&b, "\n\nMore help: specdrift issues %d", e.Issue)
	}
	return b.String()
}

// CatalogIssue returns the linked catalog entry, or nil.
func (e *ActionableError) CatalogIssue() *Issue {
	if e.Issue == 0 {
		return nil
	}
	return Get(e.Issue)
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends one suggestion; suggestions print in call order.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	return c.WithSuggestions(sug)
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sugs...)
	return c
}

// WithIssue links the catalog entry rendered by `--verbose`.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// Wrap sets the cause, replacing any earlier one.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	out.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &out
}

// BuildError is Build typed as error, so a missing operation yields a true
// nil interface.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
