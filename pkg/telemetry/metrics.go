package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/pkg/logger"
)

// MeterName is the instrumentation name used for reportforge metrics
const MeterName = "github.com/verustcode/reportforge"

// Metrics holds all application instruments. Every Record method tolerates
// missing instruments so a failed initialization never breaks callers.
type Metrics struct {
	// Render metrics
	RendersTotal     metric.Int64Counter
	RenderDuration   metric.Float64Histogram
	SectionsRendered metric.Int64Counter

	// Export metrics
	ExportsTotal   metric.Int64Counter
	ExportDuration metric.Float64Histogram

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Archive metrics
	RendersArchived metric.Int64Counter
	RendersPurged   metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the process-wide metrics, creating them against the
// current global meter provider on first use
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = newMetrics(otel.Meter(MeterName))
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// instrumentBuilder creates instruments and keeps the first error
type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name, desc, unit string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.err = err
	return c
}

func (b *instrumentBuilder) histogram(name, desc string, bounds ...float64) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.err = err
	return h
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	b := &instrumentBuilder{meter: meter}
	fast := []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

	m := &Metrics{
		RendersTotal:     b.counter("reportforge_renders_total", "Total number of rendered documents", "{render}"),
		RenderDuration:   b.histogram("reportforge_render_duration_seconds", "Duration of document renders in seconds", fast...),
		SectionsRendered: b.counter("reportforge_sections_rendered_total", "Total number of numbered sections rendered", "{section}"),

		ExportsTotal:   b.counter("reportforge_exports_total", "Total number of document exports", "{export}"),
		ExportDuration: b.histogram("reportforge_export_duration_seconds", "Duration of document exports in seconds", 0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60),

		HTTPRequestsTotal:   b.counter("reportforge_http_requests_total", "Total number of HTTP requests", "{request}"),
		HTTPRequestDuration: b.histogram("reportforge_http_request_duration_seconds", "Duration of HTTP requests in seconds", fast...),

		RendersArchived: b.counter("reportforge_renders_archived_total", "Total number of renders saved to the archive", "{render}"),
		RendersPurged:   b.counter("reportforge_renders_purged_total", "Total number of archived renders removed by retention cleanup", "{render}"),
	}
	if b.err != nil {
		return nil, b.err
	}

	logger.Debug("Metrics initialized")
	return m, nil
}

// RecordRender records one render attempt
func (m *Metrics) RecordRender(ctx context.Context, flavor string, success bool, sections int, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("flavor", flavor),
		attribute.Bool("success", success),
	)
	if m.RendersTotal != nil {
		m.RendersTotal.Add(ctx, 1, attrs)
	}
	if m.RenderDuration != nil {
		m.RenderDuration.Record(ctx, durationSeconds, attrs)
	}
	if success && sections > 0 && m.SectionsRendered != nil {
		m.SectionsRendered.Add(ctx, int64(sections),
			metric.WithAttributes(attribute.String("flavor", flavor)),
		)
	}
}

// RecordExport records one export attempt
func (m *Metrics) RecordExport(ctx context.Context, format string, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	)
	if m.ExportsTotal != nil {
		m.ExportsTotal.Add(ctx, 1, attrs)
	}
	if m.ExportDuration != nil {
		m.ExportDuration.Record(ctx, durationSeconds, attrs)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}

// RecordArchived records a render saved to the archive
func (m *Metrics) RecordArchived(ctx context.Context, flavor string) {
	if m.RendersArchived == nil {
		return
	}
	m.RendersArchived.Add(ctx, 1, metric.WithAttributes(attribute.String("flavor", flavor)))
}

// RecordPurged records renders removed by retention cleanup
func (m *Metrics) RecordPurged(ctx context.Context, count int64) {
	if m.RendersPurged == nil || count <= 0 {
		return
	}
	m.RendersPurged.Add(ctx, count)
}
