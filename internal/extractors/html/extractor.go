// Package html extracts readable text from HTML sources. Parsing is
// lenient; script, style and noscript subtrees are dropped and block
// structure is preserved as blank-line separated blocks.
package html

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements emitted as separate text blocks.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote"

var intraBlockSpace = regexp.MustCompile(`\s+`)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates an HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the HTML and returns its block-level text, blocks
// joined by blank lines.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return ExtractDocument(doc), nil
}

// ExtractDocument pulls the block text out of an already parsed
// document. The web crawler reuses this after capturing page metadata.
func ExtractDocument(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// A block that nests other blocks (a list item wrapping a
		// paragraph, a cell wrapping a list) contributes through its
		// children only.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		text := collapseWhitespace(s.Text())
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		// Documents without block markup still have body text.
		if text := collapseWhitespace(doc.Find("body").Text()); text != "" {
			return text
		}
		return ""
	}

	return strings.Join(blocks, "\n\n")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(intraBlockSpace.ReplaceAllString(s, " "))
}
