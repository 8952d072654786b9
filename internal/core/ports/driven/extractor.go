package driven

import "context"

// Extraction is the recovered text of a source plus any metadata the
// extractor captured (e.g. web-crawl provenance). Metadata keys flow
// into the chunk metadata of every chunk cut from this text.
type Extraction struct {
	Text     string
	Metadata map[string]any
}

// Extractor recovers plain text from raw source bytes. Dispatch is by
// lowercase filename extension; an unsupported extension or a parser
// failure yields domain.ErrTextExtraction.
type Extractor interface {
	// Extract converts raw bytes into text. CPU-bound parsing (PDF,
	// DOCX) runs off the calling goroutine's critical path.
	Extract(ctx context.Context, data []byte, filename string) (*Extraction, error)
}

// URLFetcher fetches a web page for web-crawl ingestion, honoring
// robots.txt when configured.
type URLFetcher interface {
	// Fetch downloads the URL and extracts its text and page metadata.
	Fetch(ctx context.Context, url string) (*Extraction, error)
}
