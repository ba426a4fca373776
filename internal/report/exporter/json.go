package exporter

import (
	"context"
	"encoding/json"

	"github.com/verustcode/reportforge/internal/report"
)

// JSONExporter exports the document structure as indented JSON
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export marshals doc together with its merged Markdown
func (e *JSONExporter) Export(_ context.Context, doc *report.Document) ([]byte, error) {
	out := struct {
		*report.Document
		Markdown string `json:"markdown"`
	}{
		Document: doc,
		Markdown: doc.Markdown(),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Name returns the human-readable name of this exporter
func (e *JSONExporter) Name() string { return "JSON" }

// FileExtension returns the file extension for JSON files
func (e *JSONExporter) FileExtension() string { return ".json" }

// ContentType returns the JSON MIME type
func (e *JSONExporter) ContentType() string { return "application/json; charset=utf-8" }
