package exporter

import (
	"context"

	"github.com/verustcode/reportforge/internal/report"
)

// MarkdownExporter exports documents as a single Markdown file
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export returns the merged Markdown of doc
func (e *MarkdownExporter) Export(_ context.Context, doc *report.Document) ([]byte, error) {
	return []byte(doc.Markdown()), nil
}

// Name returns the human-readable name of this exporter
func (e *MarkdownExporter) Name() string { return "Markdown" }

// FileExtension returns the file extension for Markdown files
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// ContentType returns the Markdown MIME type
func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }
