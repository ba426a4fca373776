package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for reportforge spans
const TracerName = "github.com/verustcode/reportforge"

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span; the caller must End it
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SpanFromContext returns the current span, or a no-op span
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError records err on the span and marks it failed
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK marks the span successful
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Attribute keys shared by render and export spans
var (
	AttrRenderID     = attribute.Key("render.id")
	AttrFlavor       = attribute.Key("render.flavor")
	AttrNumbering    = attribute.Key("render.numbering")
	AttrSectionCount = attribute.Key("render.sections")
	AttrPayloadBytes = attribute.Key("render.payload_bytes")
	AttrExportFormat = attribute.Key("export.format")
	AttrExportBytes  = attribute.Key("export.bytes")
)

// WithRenderAttributes returns span start options describing a render
func WithRenderAttributes(renderID, flavorID, numbering string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrRenderID.String(renderID),
		AttrFlavor.String(flavorID),
		AttrNumbering.String(numbering),
	)
}

// WithExportAttributes returns span start options describing an export
func WithExportAttributes(renderID, format string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrRenderID.String(renderID),
		AttrExportFormat.String(format),
	)
}
