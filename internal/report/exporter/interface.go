// Package exporter converts rendered documents to downloadable formats with pluggable exporters.
package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/logger"
	"github.com/verustcode/reportforge/pkg/telemetry"
)

// ExportFormat represents the export format type
type ExportFormat string

const (
	// ExportFormatMarkdown represents Markdown format
	ExportFormatMarkdown ExportFormat = consts.FormatMarkdown
	// ExportFormatJSON represents JSON format
	ExportFormatJSON ExportFormat = consts.FormatJSON
	// ExportFormatHTML represents HTML format
	ExportFormatHTML ExportFormat = consts.FormatHTML
	// ExportFormatPDF represents PDF format
	ExportFormatPDF ExportFormat = consts.FormatPDF
)

// ParseFormat maps user input to an ExportFormat. "md" is accepted for Markdown
// and matching ignores case; an empty string selects Markdown.
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", consts.FormatMarkdown:
		return ExportFormatMarkdown, nil
	case consts.FormatJSON:
		return ExportFormatJSON, nil
	case "htm", consts.FormatHTML:
		return ExportFormatHTML, nil
	case consts.FormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", errors.ErrExportUnsupported(s)
	}
}

// DocumentExporter defines the interface for document exporters
type DocumentExporter interface {
	// Export converts a document to this format
	Export(ctx context.Context, doc *report.Document) ([]byte, error)
	// Name returns the human-readable name of the exporter (e.g., "Markdown", "HTML")
	Name() string
	// FileExtension returns the file extension for this format (e.g., ".md", ".html")
	FileExtension() string
	// ContentType returns the MIME type served for this format
	ContentType() string
}

// ExportManager manages all registered exporters
type ExportManager struct {
	exporters map[ExportFormat]DocumentExporter
	mu        sync.RWMutex
}

// NewExportManager creates a new export manager
func NewExportManager() *ExportManager {
	return &ExportManager{
		exporters: make(map[ExportFormat]DocumentExporter),
	}
}

// NewDefaultManager creates a manager with the Markdown, JSON, HTML and PDF exporters
func NewDefaultManager(pdfOpts PDFOptions) *ExportManager {
	m := NewExportManager()
	m.Register(ExportFormatMarkdown, NewMarkdownExporter())
	m.Register(ExportFormatJSON, NewJSONExporter())
	m.Register(ExportFormatHTML, NewHTMLExporter())
	m.Register(ExportFormatPDF, NewPDFExporterWithOptions(pdfOpts))
	return m
}

// Register registers an exporter for a specific format
func (m *ExportManager) Register(format ExportFormat, exporter DocumentExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exporters[format] = exporter
	logger.Debug("Registered document exporter",
		zap.String("format", string(format)),
		zap.String("name", exporter.Name()),
	)
}

// Export exports a document using the specified format
func (m *ExportManager) Export(ctx context.Context, doc *report.Document, format ExportFormat) ([]byte, error) {
	exporter, err := m.GetExporter(format)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "exporter.Export",
		telemetry.WithExportAttributes(doc.ID, string(format)),
	)
	defer span.End()

	start := time.Now()
	logger.Debug("Exporting document",
		zap.String(logger.FieldRenderID, doc.ID),
		zap.String("format", string(format)),
		zap.String("exporter", exporter.Name()),
	)

	content, err := exporter.Export(ctx, doc)
	telemetry.GetMetrics().RecordExport(ctx, string(format), err == nil, time.Since(start).Seconds())
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, errors.Wrap(errors.ErrCodeExportFailed,
			fmt.Sprintf("failed to export document with %s exporter", exporter.Name()), err)
	}

	span.SetAttributes(telemetry.AttrExportBytes.Int(len(content)))
	telemetry.SetSpanOK(span)
	return content, nil
}

// ExportToFile exports a document to a file
func (m *ExportManager) ExportToFile(ctx context.Context, doc *report.Document, outputPath string, format ExportFormat) error {
	content, err := m.Export(ctx, doc, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("Document exported to file",
		zap.String(logger.FieldRenderID, doc.ID),
		zap.String("format", string(format)),
		zap.String("path", outputPath),
		zap.String("size", formatBytes(len(content))),
	)

	return nil
}

// GenerateFilename generates a filename for the exported document
func (m *ExportManager) GenerateFilename(doc *report.Document, format ExportFormat) string {
	m.mu.RLock()
	exporter, ok := m.exporters[format]
	m.mu.RUnlock()

	baseName := sanitizeFilename(doc.Title)
	if baseName == "" {
		baseName = sanitizeFilename(doc.FlavorID + "-report")
	}
	if baseName == "" {
		baseName = "report"
	}

	if ok {
		return baseName + exporter.FileExtension()
	}

	switch format {
	case ExportFormatMarkdown:
		return baseName + ".md"
	case ExportFormatJSON:
		return baseName + ".json"
	case ExportFormatHTML:
		return baseName + ".html"
	case ExportFormatPDF:
		return baseName + ".pdf"
	default:
		return baseName + ".txt"
	}
}

// SupportedFormats returns the registered formats in sorted order
func (m *ExportManager) SupportedFormats() []ExportFormat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	formats := make([]ExportFormat, 0, len(m.exporters))
	for format := range m.exporters {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// GetExporter returns the exporter for a specific format
func (m *ExportManager) GetExporter(format ExportFormat) (DocumentExporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exporter, ok := m.exporters[format]
	if !ok {
		return nil, errors.ErrExportUnsupported(string(format))
	}
	return exporter, nil
}
