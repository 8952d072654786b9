// Package markdown extracts text from markdown sources. Markdown is
// already plain text; the extractor only validates the encoding.
package markdown

import (
	"context"
	"errors"
	"unicode/utf8"
)

// Extractor handles markdown documents.
type Extractor struct{}

// New creates a markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract decodes the bytes as UTF-8 and returns them unchanged.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("invalid UTF-8")
	}
	return string(data), nil
}
