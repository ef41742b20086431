// Package docextract turns uploaded files into plain text for prompting
// and knowledge-base storage. Parsing is delegated to langchaingo's
// document loaders; this package only routes by file extension.
package docextract

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/documentloaders"
)

// Extractor extracts plain text from an uploaded file.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// FileType returns the normalized type label for a filename ("pdf",
// "txt", ...), or "" when the extension is unsupported.
func FileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".txt":
		return "txt"
	case ".md":
		return "md"
	default:
		return ""
	}
}

// Extract returns the plain text of the file. Unsupported extensions are
// rejected; callers surface that to the uploader.
func (e *Extractor) Extract(ctx context.Context, filename string, r io.ReaderAt, size int64) (string, error) {
	switch FileType(filename) {
	case "pdf":
		return extractPDF(ctx, r, size)
	case "txt", "md":
		content, err := io.ReadAll(io.NewSectionReader(r, 0, size))
		if err != nil {
			return "", errors.Wrap(err, "failed to read text file")
		}
		return string(content), nil
	default:
		return "", errors.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func extractPDF(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	loader := documentloaders.NewPDF(r, size)
	docs, err := loader.Load(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse pdf")
	}
	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.PageContent)
	}
	return strings.Join(pages, "\n"), nil
}
