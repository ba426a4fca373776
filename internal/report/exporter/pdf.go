package exporter

import (
	"context"
	"fmt"
	"html"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/pkg/logger"
)

// PDFOptions contains configuration for PDF generation
type PDFOptions struct {
	// Paper dimensions in inches (A4: 8.27 x 11.69)
	PaperWidth  float64
	PaperHeight float64

	// Margins in inches
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	DisplayHeaderFooter bool

	// Print background colors and images
	PrintBackground bool

	// Scale of the webpage rendering (1.0 = 100%)
	Scale float64

	// Timeout bounds one export, browser startup included
	Timeout time.Duration

	// ChromePath overrides the browser binary; CHROME_PATH is used when empty
	ChromePath string
}

// DefaultPDFOptions returns default PDF options for A4 paper
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:  8.27,
		PaperHeight: 11.69,

		MarginTop:    0.71, // ~18mm
		MarginBottom: 0.59, // ~15mm
		MarginLeft:   0.79, // ~20mm
		MarginRight:  0.79, // ~20mm

		DisplayHeaderFooter: true,
		PrintBackground:     true,
		Scale:               1.0,
		Timeout:             consts.DefaultPDFTimeout,
	}
}

// PDFExporter prints the HTML export to PDF with headless Chrome
type PDFExporter struct {
	options PDFOptions
	html    *HTMLExporter
}

// NewPDFExporter creates a new PDF exporter with default options
func NewPDFExporter() *PDFExporter {
	return NewPDFExporterWithOptions(DefaultPDFOptions())
}

// NewPDFExporterWithOptions creates a new PDF exporter with custom options
func NewPDFExporterWithOptions(opts PDFOptions) *PDFExporter {
	if opts.Timeout <= 0 {
		opts.Timeout = consts.DefaultPDFTimeout
	}
	if opts.Scale <= 0 {
		opts.Scale = 1.0
	}
	return &PDFExporter{
		options: opts,
		html:    NewHTMLExporter(),
	}
}

// Options returns the exporter's options
func (e *PDFExporter) Options() PDFOptions {
	return e.options
}

// Export renders doc to PDF bytes
func (e *PDFExporter) Export(ctx context.Context, doc *report.Document) ([]byte, error) {
	startTime := time.Now()
	log := logger.WithRenderContext(doc.ID, doc.FlavorID)

	log.Info("Starting PDF export",
		zap.Int("sections", doc.SectionCount()),
		zap.Duration("timeout", e.options.Timeout),
	)

	htmlData, err := e.html.render(doc, true)
	if err != nil {
		return nil, fmt.Errorf("failed to render print HTML: %w", err)
	}

	// A temporary file avoids data URL size limits
	tmpFile, err := os.CreateTemp("", consts.ServiceName+"-pdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(htmlData); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
		chromedp.WSURLReadTimeout(60*time.Second),
	)
	if chromePath := e.chromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
		log.Debug("Using custom Chrome path", zap.String("chrome_path", chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf("chromedp: "+format, args...))
		}),
	)
	defer browserCancel()

	header, footer := e.headerFooter(doc)

	var pdfData []byte
	chromeStartTime := time.Now()
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPaperWidth(e.options.PaperWidth).
				WithPaperHeight(e.options.PaperHeight).
				WithMarginTop(e.options.MarginTop).
				WithMarginBottom(e.options.MarginBottom).
				WithMarginLeft(e.options.MarginLeft).
				WithMarginRight(e.options.MarginRight).
				WithDisplayHeaderFooter(e.options.DisplayHeaderFooter).
				WithHeaderTemplate(header).
				WithFooterTemplate(footer).
				WithPrintBackground(e.options.PrintBackground).
				WithScale(e.options.Scale).
				WithPreferCSSPageSize(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		log.Error("Failed to generate PDF",
			zap.Error(err),
			zap.Duration("chrome_duration", time.Since(chromeStartTime)),
			zap.Duration("total_duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Info("PDF export completed",
		zap.String("size", formatBytes(len(pdfData))),
		zap.Duration("chrome_duration", time.Since(chromeStartTime)),
		zap.Duration("total_duration", time.Since(startTime)),
	)

	return pdfData, nil
}

func (e *PDFExporter) chromePath() string {
	if e.options.ChromePath != "" {
		return e.options.ChromePath
	}
	return os.Getenv("CHROME_PATH")
}

// headerFooter builds Chrome's page header and footer templates.
// Chrome fills elements with the pageNumber and totalPages classes.
func (e *PDFExporter) headerFooter(doc *report.Document) (header, footer string) {
	title := doc.Title
	if title == "" {
		title = "Report"
	}

	header = fmt.Sprintf(`<div style="width:100%%; padding:8px 20px; font-size:10px; font-family:system-ui,sans-serif; color:#666; display:flex; justify-content:space-between;">
<span style="font-weight:600; color:#1E40AF;">%s</span>
<span>%s</span>
</div>`, html.EscapeString(consts.ProjectName), html.EscapeString(title))

	footer = fmt.Sprintf(`<div style="width:100%%; padding:0 20px; font-size:9px; font-family:system-ui,sans-serif; color:#666; display:flex; justify-content:space-between;">
<span>Generated %s</span>
<span>Page <span class="pageNumber"></span> of <span class="totalPages"></span></span>
</div>`, html.EscapeString(doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))

	return header, footer
}

// Name returns the human-readable name of this exporter
func (e *PDFExporter) Name() string { return "PDF" }

// FileExtension returns the file extension for PDF files
func (e *PDFExporter) FileExtension() string { return ".pdf" }

// ContentType returns the PDF MIME type
func (e *PDFExporter) ContentType() string { return "application/pdf" }
