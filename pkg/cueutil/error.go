// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize bounds user-written CUE files (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

type (
	// ValidationError is one CUE problem located in a user file.
	ValidationError struct {
		// FilePath is the file being validated.
		FilePath string
		// Line is the 1-based line of the problem, or 0 when unknown.
		Line int
		// Path is the JSON path to the invalid value (e.g., "categories[0].code.kind").
		Path string
		// Message is the validation error message.
		Message string
	}

	// ValidationErrors collects every problem CUE reported for one file.
	ValidationErrors []*ValidationError
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.FilePath)
	if e.Line > 0 {
		fmt.Fprintf(&sb, ":%d", e.Line)
	}
	if e.Path != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Path)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  %s", len(errs), strings.Join(lines, "\n  "))
}

// FormatError converts a CUE error into ValidationErrors with JSON-path
// prefixes and line numbers. A non-CUE error is wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	out := make(ValidationErrors, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)

		// CUE sometimes repeats the path in the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		line := 0
		if pos := e.Position(); pos.IsValid() {
			line = pos.Line()
		}
		out = append(out, &ValidationError{FilePath: filePath, Line: line, Path: pathStr, Message: msg})
	}
	return out
}

// formatPath converts a CUE error path (["categories", "0", "code"]) to
// JSON-path notation ("categories[0].code").
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize verifies that data does not exceed maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
