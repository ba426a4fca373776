package report

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/jsonvalue"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/idgen"
	"github.com/verustcode/reportforge/pkg/logger"
	"github.com/verustcode/reportforge/pkg/telemetry"
)

// Layout describes how a report type is rendered. flavor.Config implements it.
type Layout interface {
	FlavorID() string
	DocumentTitle() string
	IsFlat() bool
	Descriptor() SectionDescriptor
	SectionTitle(key string) string
	NormalizerOptions() NormalizerOptions
}

// RenderedSection is one numbered section of a Document
type RenderedSection struct {
	Key         string            `json:"key"`
	Number      string            `json:"number"`
	Title       string            `json:"title"`
	Markdown    string            `json:"markdown"`
	Subsections []RenderedSection `json:"subsections,omitempty"`
}

// Document is a rendered report: the populated sections of a payload, numbered
// and converted to Markdown
type Document struct {
	ID          string            `json:"id"`
	FlavorID    string            `json:"flavor_id"`
	Title       string            `json:"title"`
	Numbers     SectionNumbers    `json:"numbers"`
	Sections    []RenderedSection `json:"sections"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// SectionCount returns the number of rendered main sections and subsections
func (d *Document) SectionCount() int {
	n := 0
	for _, s := range d.Sections {
		n += 1 + len(s.Subsections)
	}
	return n
}

// Markdown merges the document into a single Markdown text with a table of contents
func (d *Document) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# ")
	if d.Title != "" {
		sb.WriteString(d.Title)
	} else {
		sb.WriteString("Report")
	}
	sb.WriteString("\n\n")

	if len(d.Sections) == 0 {
		sb.WriteString("*No sections contain data.*\n")
		return sb.String()
	}

	sb.WriteString("## Table of Contents\n\n")
	for _, section := range d.Sections {
		sb.WriteString(section.Number)
		sb.WriteString(" [")
		sb.WriteString(strings.TrimSpace(strings.TrimPrefix(section.Title, section.Number)))
		sb.WriteString("](#")
		sb.WriteString(HeadingAnchor(section.Title))
		sb.WriteString(")\n")

		indent := strings.Repeat(" ", len(section.Number)+1)
		for _, sub := range section.Subsections {
			sb.WriteString(indent)
			sb.WriteString("- [")
			sb.WriteString(sub.Title)
			sb.WriteString("](#")
			sb.WriteString(HeadingAnchor(sub.Title))
			sb.WriteString(")\n")
		}
	}
	sb.WriteString("\n---\n\n")

	for i, section := range d.Sections {
		if i > 0 {
			sb.WriteString("---\n\n")
		}
		writeSection(&sb, "## ", section)
		for _, sub := range section.Subsections {
			writeSection(&sb, "### ", sub)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeSection(sb *strings.Builder, heading string, s RenderedSection) {
	sb.WriteString(heading)
	sb.WriteString(s.Title)
	sb.WriteString("\n\n")
	if body := strings.TrimSpace(s.Markdown); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}
}

// HeadingAnchor builds the heading ID goldmark generates for title: ASCII
// letters and digits lowercased, spaces, hyphens and underscores as hyphens
func HeadingAnchor(title string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + 'a' - 'A')
		case r == ' ', r == '\t', r == '-', r == '_':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

// Renderer turns payloads into Documents. It holds no per-render state and is
// safe for concurrent use.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a Renderer
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render numbers the populated sections of payload according to layout and
// converts each one to Markdown. Sections without data are left out.
func (r *Renderer) Render(ctx context.Context, layout Layout, payload jsonvalue.Value) (*Document, error) {
	start := time.Now()
	renderID := idgen.NewRenderID()
	flavorID := layout.FlavorID()

	numbering := consts.NumberingNested
	if layout.IsFlat() {
		numbering = consts.NumberingFlat
	}

	ctx, span := telemetry.StartSpan(ctx, "report.Render",
		telemetry.WithRenderAttributes(renderID, flavorID, numbering),
	)
	defer span.End()

	log := logger.WithRenderContext(renderID, flavorID)

	if payload.Kind() != jsonvalue.KindObject {
		err := errors.ErrPayloadInvalid("payload must be a JSON object, got "+payload.Kind().String(), nil)
		telemetry.SetSpanError(span, err)
		telemetry.GetMetrics().RecordRender(ctx, flavorID, false, 0, time.Since(start).Seconds())
		log.Warn("Rejected render payload", zap.String("kind", payload.Kind().String()))
		return nil, err
	}

	descriptor := layout.Descriptor()
	var numbers SectionNumbers
	if layout.IsFlat() {
		numbers = CalculateFlatSectionNumbers(payload, descriptor.Keys())
	} else {
		numbers = CalculateSectionNumbers(payload, descriptor)
	}

	normalizer := NewNormalizer(layout.NormalizerOptions())
	renderOne := func(key string) RenderedSection {
		number := numbers[key]
		return RenderedSection{
			Key:      key,
			Number:   number,
			Title:    ReplaceNumberInTitle(layout.SectionTitle(key), number),
			Markdown: normalizer.Extract(payload.Get(key)),
		}
	}

	var sections []RenderedSection
	for _, spec := range descriptor {
		if !numbers.Has(spec.Key) {
			continue
		}
		section := renderOne(spec.Key)
		if !layout.IsFlat() {
			for _, sub := range spec.Subsections {
				if numbers.Has(sub) {
					section.Subsections = append(section.Subsections, renderOne(sub))
				}
			}
		}
		sections = append(sections, section)
	}

	doc := &Document{
		ID:          renderID,
		FlavorID:    flavorID,
		Title:       layout.DocumentTitle(),
		Numbers:     numbers,
		Sections:    sections,
		GeneratedAt: r.now().UTC(),
	}

	count := doc.SectionCount()
	span.SetAttributes(telemetry.AttrSectionCount.Int(count))
	telemetry.SetSpanOK(span)
	telemetry.GetMetrics().RecordRender(ctx, flavorID, true, count, time.Since(start).Seconds())

	log.Debug("Rendered document",
		zap.Int("sections", count),
		zap.Duration("took", time.Since(start)),
	)

	return doc, nil
}
