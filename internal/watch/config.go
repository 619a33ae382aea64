// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar globs relative to BaseDir (e.g. "docs/**")
		// selecting which paths trigger a re-run. An empty slice accepts every
		// non-ignored path.
		Patterns []string

		// Ignore patterns are merged with the built-in default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// re-run. No terminal detection is performed.
		ClearScreen bool

		// BaseDir is the watched root. Empty means the working directory.
		BaseDir string

		// OnChange receives the sorted, deduplicated changed paths relative to
		// BaseDir. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout receives the clear-screen sequence. nil means os.Stdout.
		Stdout io.Writer

		// Logger receives watcher diagnostics. nil means slog.Default().
		Logger *slog.Logger
	}

	// InvalidWatchConfigError collects every problem found by Config.Validate.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

// Validate checks patterns and BaseDir without touching the filesystem.
func (c Config) Validate() error {
	var errs []error
	for i, pat := range c.Patterns {
		if err := validatePattern(pat); err != nil {
			errs = append(errs, fmt.Errorf("patterns[%d]: %w", i, err))
		}
	}
	for i, pat := range c.Ignore {
		if err := validatePattern(pat); err != nil {
			errs = append(errs, fmt.Errorf("ignore[%d]: %w", i, err))
		}
	}
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base dir must not be blank"))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("%s: %d error(s): %s", ErrInvalidWatchConfig, len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

func validatePattern(pat string) error {
	if strings.TrimSpace(pat) == "" {
		return errors.New("pattern must not be empty")
	}
	if !doublestar.ValidatePattern(pat) {
		return fmt.Errorf("malformed glob %q", pat)
	}
	return nil
}
