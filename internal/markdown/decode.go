// SPDX-License-Identifier: MPL-2.0

package markdown

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotText is returned when document bytes are not valid UTF-8 text.
var ErrNotText = errors.New("not valid UTF-8 text")

// DecodeText converts raw document bytes into a string.
//
// A UTF-8 byte order mark is dropped and UTF-16 input with a byte order mark
// is transcoded. Anything else must already be valid UTF-8.
func DecodeText(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", ErrNotText
	}
	return string(decoded), nil
}

// ReadDocument reads and decodes the document at path.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := DecodeText(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}
