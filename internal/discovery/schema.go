// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed report.schema.json
var reportSchema string

type (
	// SchemaError lists every field of a report that violates the schema.
	SchemaError struct {
		Errors []FieldError
	}

	// FieldError is one schema violation.
	FieldError struct {
		Field   string
		Message string
	}
)

// Error implements the error interface.
func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "report does not match schema: " + strings.Join(parts, "; ")
}

// Schema returns the JSON Schema that every Report satisfies.
func Schema() string {
	return reportSchema
}

// Marshal renders r as indented JSON without HTML escaping, followed by a
// newline.
func Marshal(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the JSON rendering of r to w.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ValidateReport checks the JSON rendering of r against Schema.
func ValidateReport(r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("load report schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}
