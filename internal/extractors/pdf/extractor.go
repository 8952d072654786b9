// Package pdf extracts text from PDF sources. The document is
// validated with pdfcpu, then the text layer is recovered with the
// poppler pdftotext tool through a mockable command runner. Extraction
// runs in its own process, off the request goroutine's critical path.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

// Extractor handles PDF documents.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor using pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract returns the per-page text of the PDF, pages joined by blank
// lines.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	// Reject broken files before shelling out.
	if _, err := api.PageCount(bytes.NewReader(data), nil); err != nil {
		return "", fmt.Errorf("invalid pdf: %w", err)
	}

	tmp, err := os.CreateTemp("", "corpusd-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", err
	}

	return joinPages(string(out)), nil
}

// joinPages converts pdftotext's form-feed page separators into blank
// lines and trims per-page whitespace.
func joinPages(raw string) string {
	pages := strings.Split(raw, "\f")
	cleaned := make([]string, 0, len(pages))
	for _, page := range pages {
		if page = strings.TrimSpace(page); page != "" {
			cleaned = append(cleaned, page)
		}
	}
	return strings.Join(cleaned, "\n\n")
}
