package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withRecorder installs a recording tracer provider for the duration of the test
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

// TestStartSpan_RenderAttributes tests span naming and attributes
func TestStartSpan_RenderAttributes(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "report.render",
		WithRenderAttributes("r1", "bug_report", "nested"))
	assert.Equal(t, span, SpanFromContext(ctx))
	SetSpanOK(span)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "report.render", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "r1", attrs[string(AttrRenderID)])
	assert.Equal(t, "bug_report", attrs[string(AttrFlavor)])
	assert.Equal(t, "nested", attrs[string(AttrNumbering)])
}

// TestSetSpanError tests error recording
func TestSetSpanError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "report.export", WithExportAttributes("r1", "pdf"))
	SetSpanError(span, nil)
	SetSpanError(span, errors.New("chrome not found"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "chrome not found", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

// TestSpanFromContext_Empty tests the no-op span
func TestSpanFromContext_Empty(t *testing.T) {
	span := SpanFromContext(context.Background())
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
}
