// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        Config
		wantFields int
	}{
		{name: "zero value", cfg: Config{}},
		{
			name: "document and code patterns",
			cfg: Config{
				Patterns: []string{"overview.md", "functions/**", "infra/*.tf"},
				Ignore:   []string{"**/*.log"},
				BaseDir:  "/srv/project",
			},
		},
		{name: "clear screen only", cfg: Config{ClearScreen: true}},
		{name: "empty pattern", cfg: Config{Patterns: []string{""}}, wantFields: 1},
		{name: "blank ignore", cfg: Config{Ignore: []string{"  "}}, wantFields: 1},
		{name: "malformed glob", cfg: Config{Patterns: []string{"[docs"}}, wantFields: 1},
		{name: "blank base dir", cfg: Config{BaseDir: "   "}, wantFields: 1},
		{
			name: "every problem reported",
			cfg: Config{
				Patterns: []string{"", "docs/**", "[x"},
				Ignore:   []string{""},
				BaseDir:  "\t",
			},
			wantFields: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantFields == 0 {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}

			var cfgErr *InvalidWatchConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *InvalidWatchConfigError", err)
			}
			if len(cfgErr.FieldErrors) != tt.wantFields {
				t.Errorf("got %d field errors, want %d: %v", len(cfgErr.FieldErrors), tt.wantFields, cfgErr.FieldErrors)
			}
			if !errors.Is(err, ErrInvalidWatchConfig) {
				t.Error("error should wrap ErrInvalidWatchConfig")
			}
		})
	}
}

func TestInvalidWatchConfigError_Error(t *testing.T) {
	t.Parallel()

	err := &InvalidWatchConfigError{FieldErrors: []error{
		errors.New("patterns[0]: pattern must not be empty"),
		errors.New("base dir must not be blank"),
	}}

	msg := err.Error()
	for _, want := range []string{"2 error(s)", "patterns[0]", "base dir"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
