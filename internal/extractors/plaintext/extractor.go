// Package plaintext extracts text from plain-text sources.
package plaintext

import (
	"context"
	"errors"
	"unicode/utf8"
)

// Extractor handles plain-text documents.
type Extractor struct{}

// New creates a plaintext extractor.
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
