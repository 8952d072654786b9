// Package extractors recovers plain text from uploaded sources.
// Dispatch is by lowercase filename extension; each format lives in its
// own subpackage and the registry wraps every parser failure in
// domain.ErrTextExtraction.
package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/extractors/docx"
	"github.com/corpuslabs/corpusd/internal/extractors/html"
	"github.com/corpuslabs/corpusd/internal/extractors/markdown"
	"github.com/corpuslabs/corpusd/internal/extractors/pdf"
	"github.com/corpuslabs/corpusd/internal/extractors/plaintext"
)

// Ensure Registry implements the port.
var _ driven.Extractor = (*Registry)(nil)

// formatExtractor recovers text from one source format.
type formatExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry dispatches extraction by file extension.
type Registry struct {
	byExtension map[string]formatExtractor
}

// NewRegistry creates a registry with all supported formats registered.
func NewRegistry() *Registry {
	md := markdown.New()
	txt := plaintext.New()
	htm := html.New()

	return &Registry{
		byExtension: map[string]formatExtractor{
			"md":       md,
			"markdown": md,
			"txt":      txt,
			"text":     txt,
			"html":     htm,
			"htm":      htm,
			"pdf":      pdf.New(),
			"docx":     docx.New(),
		},
	}
}

// Extract recovers text from raw bytes, dispatching on the filename's
// lowercase extension.
func (r *Registry) Extract(ctx context.Context, data []byte, filename string) (*driven.Extraction, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	extractor, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported extension %q", domain.ErrTextExtraction, ext)
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTextExtraction, ext, err)
	}

	return &driven.Extraction{Text: text}, nil
}
