package exporter

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/report"
)

// HTMLExporter exports documents as a self-contained HTML page with a
// sidebar table of contents. Raw HTML inside section Markdown is not passed through.
type HTMLExporter struct {
	md goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

type htmlSection struct {
	Anchor      string
	Title       string
	Body        template.HTML
	Subsections []htmlSection
}

type htmlPage struct {
	Title       string
	FlavorID    string
	GeneratedAt string
	Generator   string
	Print       bool
	Sections    []htmlSection
}

// Export renders doc as a standalone HTML page
func (e *HTMLExporter) Export(_ context.Context, doc *report.Document) ([]byte, error) {
	return e.render(doc, false)
}

// render builds the page; print drops the sidebar for PDF output
func (e *HTMLExporter) render(doc *report.Document, print bool) ([]byte, error) {
	page := htmlPage{
		Title:       doc.Title,
		FlavorID:    doc.FlavorID,
		GeneratedAt: doc.GeneratedAt.UTC().Format(time.RFC1123),
		Generator:   consts.ProjectName,
		Print:       print,
	}
	if page.Title == "" {
		page.Title = "Report"
	}

	for _, s := range doc.Sections {
		section, err := e.convertSection(s)
		if err != nil {
			return nil, err
		}
		for _, sub := range s.Subsections {
			converted, err := e.convertSection(sub)
			if err != nil {
				return nil, err
			}
			section.Subsections = append(section.Subsections, converted)
		}
		page.Sections = append(page.Sections, section)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *HTMLExporter) convertSection(s report.RenderedSection) (htmlSection, error) {
	var body bytes.Buffer
	if err := e.md.Convert([]byte(s.Markdown), &body); err != nil {
		return htmlSection{}, err
	}
	return htmlSection{
		Anchor: report.HeadingAnchor(s.Title),
		Title:  s.Title,
		// goldmark escapes raw HTML unless WithUnsafe is set
		Body: template.HTML(body.String()),
	}, nil
}

// Name returns the human-readable name of this exporter
func (e *HTMLExporter) Name() string { return "HTML" }

// FileExtension returns the file extension for HTML files
func (e *HTMLExporter) FileExtension() string { return ".html" }

// ContentType returns the HTML MIME type
func (e *HTMLExporter) ContentType() string { return "text/html; charset=utf-8" }

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="{{.Generator}}">
<title>{{.Title}}</title>
<style>
:root { --accent: #1E40AF; --border: #e5e7eb; --muted: #6b7280; }
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; color: #111827; line-height: 1.6; }
.layout { display: flex; min-height: 100vh; }
nav { width: 280px; flex-shrink: 0; border-right: 1px solid var(--border); padding: 24px 16px; position: sticky; top: 0; height: 100vh; overflow-y: auto; background: #f9fafb; }
nav h2 { font-size: 14px; text-transform: uppercase; color: var(--muted); margin: 0 0 12px; }
nav ul { list-style: none; margin: 0; padding: 0; }
nav ul ul { padding-left: 16px; }
nav a { display: block; padding: 4px 8px; color: #374151; text-decoration: none; border-radius: 4px; font-size: 14px; }
nav a:hover { background: #e5e7eb; color: var(--accent); }
main { flex: 1; max-width: 960px; padding: 32px 48px; }
h1 { color: var(--accent); margin-top: 0; }
section > h2 { border-bottom: 1px solid var(--border); padding-bottom: 6px; margin-top: 40px; }
.meta { color: var(--muted); font-size: 13px; }
table { border-collapse: collapse; margin: 16px 0; }
th, td { border: 1px solid var(--border); padding: 6px 12px; text-align: left; }
th { background: #f3f4f6; }
pre { background: #f3f4f6; padding: 12px; border-radius: 6px; overflow-x: auto; }
code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 90%; }
.empty { color: var(--muted); font-style: italic; }
{{if .Print}}nav { display: none; } main { max-width: none; padding: 0; } section { break-inside: auto; } section > h2 { break-after: avoid; }{{end}}
</style>
</head>
<body>
<div class="layout">
<nav>
<h2>Contents</h2>
<ul>
{{range .Sections}}<li><a href="#{{.Anchor}}">{{.Title}}</a>{{if .Subsections}}
<ul>
{{range .Subsections}}<li><a href="#{{.Anchor}}">{{.Title}}</a></li>
{{end}}</ul>{{end}}</li>
{{end}}</ul>
</nav>
<main>
<h1>{{.Title}}</h1>
<p class="meta">{{.FlavorID}} &middot; generated {{.GeneratedAt}}</p>
{{if not .Sections}}<p class="empty">No sections contain data.</p>
{{end}}{{range .Sections}}<section>
<h2 id="{{.Anchor}}">{{.Title}}</h2>
{{.Body}}{{range .Subsections}}<h3 id="{{.Anchor}}">{{.Title}}</h3>
{{.Body}}{{end}}</section>
{{end}}</main>
</div>
</body>
</html>
`))
