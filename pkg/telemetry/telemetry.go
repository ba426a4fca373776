// Package telemetry wires OpenTelemetry tracing and metrics for reportforge.
// Traces go to an OTLP collector; metrics are served for Prometheus scraping.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/pkg/logger"
)

const (
	exporterTimeout       = 10 * time.Second
	metricsServerTimeout  = 10 * time.Second
	defaultPrometheusPort = 9090
	defaultMetricsPath    = "/metrics"
)

// Config holds the telemetry configuration
type Config struct {
	Enabled     bool             `yaml:"enabled"`
	ServiceName string           `yaml:"service_name"`
	OTLP        OTLPConfig       `yaml:"otlp"`
	Prometheus  PrometheusConfig `yaml:"prometheus"`
}

// OTLPConfig configures trace export
type OTLPConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint is the collector address, e.g. "localhost:4317"
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
	// SampleRatio is the fraction of traces kept; 0 or >= 1 keeps all
	SampleRatio float64 `yaml:"sample_ratio"`
}

// PrometheusConfig configures the metrics endpoint
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Telemetry owns the providers and the metrics server
type Telemetry struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metricsServer  *http.Server
}

// New builds tracer and meter providers and installs them globally.
// A disabled config yields a Telemetry whose Shutdown is a no-op.
func New(cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		logger.Info("Telemetry is disabled")
		return &Telemetry{config: cfg}, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = consts.ServiceName
	}
	if cfg.Prometheus.Port == 0 {
		cfg.Prometheus.Port = defaultPrometheusPort
	}
	if cfg.Prometheus.Path == "" {
		cfg.Prometheus.Path = defaultMetricsPath
	}

	t := &Telemetry{config: cfg}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(consts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := t.initTracerProvider(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	if err := t.initMeterProvider(res); err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Telemetry initialized",
		zap.String("service_name", cfg.ServiceName),
		zap.Bool("otlp_enabled", cfg.OTLP.Enabled),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
	)
	return t, nil
}

func (t *Telemetry) initTracerProvider(res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(t.config.OTLP.SampleRatio)),
	}

	if t.config.OTLP.Enabled && t.config.OTLP.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), exporterTimeout)
		defer cancel()

		exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(t.config.OTLP.Endpoint)}
		if t.config.OTLP.Insecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.Info("OTLP trace exporter initialized", zap.String("endpoint", t.config.OTLP.Endpoint))
	}

	t.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(t.tracerProvider)
	return nil
}

// sampler keeps every trace unless a ratio in (0, 1) is configured
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func (t *Telemetry) initMeterProvider(res *resource.Resource) error {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if t.config.Prometheus.Enabled {
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
		t.startMetricsServer()
	}

	t.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(t.meterProvider)
	return nil
}

func (t *Telemetry) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle(t.config.Prometheus.Path, promhttp.Handler())

	t.metricsServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", t.config.Prometheus.Port),
		Handler:      mux,
		ReadTimeout:  metricsServerTimeout,
		WriteTimeout: metricsServerTimeout,
	}

	go func() {
		logger.Info("Starting Prometheus metrics server",
			zap.Int("port", t.config.Prometheus.Port),
			zap.String("path", t.config.Prometheus.Path),
		)
		if err := t.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus metrics server error", zap.Error(err))
		}
	}()
}

// Shutdown flushes and stops the providers and the metrics server.
// Failures are logged; the first one is returned.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.config.Enabled {
		return nil
	}

	logger.Info("Shutting down telemetry")

	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		logger.Error("Failed to shutdown "+what, zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	if t.tracerProvider != nil {
		record("tracer provider", t.tracerProvider.Shutdown(ctx))
	}
	if t.meterProvider != nil {
		record("meter provider", t.meterProvider.Shutdown(ctx))
	}
	if t.metricsServer != nil {
		record("metrics server", t.metricsServer.Shutdown(ctx))
	}
	return firstErr
}

// IsEnabled returns whether telemetry is enabled
func (t *Telemetry) IsEnabled() bool {
	return t.config.Enabled
}
