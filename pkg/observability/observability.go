// Package observability provides OpenTelemetry metrics for the AXP
// signal pipeline: provider fetch rates, errors, and durations in the
// RED pattern, plus cache and verification outcome counters.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config configures the OpenTelemetry metric provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // e.g. "localhost:4317" for gRPC
	ExportInterval time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns development defaults.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "axp-signals",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		ExportInterval: 15 * time.Second,
		Enabled:        true,
		Insecure:       true,
	}
}

// Provider manages the OpenTelemetry meter provider and the pipeline
// instruments. A nil *Provider is safe to call; every recording method
// no-ops.
type Provider struct {
	config        *Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	logger        *slog.Logger

	fetchCounter  metric.Int64Counter
	errorCounter  metric.Int64Counter
	fetchDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	verifications metric.Int64Counter
	anomalies     metric.Int64Counter
}

// New creates an observability provider and registers it globally.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "observability"),
	}

	if !config.Enabled {
		p.logger.InfoContext(ctx, "observability disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	interval := config.ExportInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(interval),
		)),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.meter = otel.Meter("axp.signals",
		metric.WithInstrumentationVersion(config.ServiceVersion),
	)

	if err := p.initInstruments(); err != nil {
		return nil, fmt.Errorf("failed to init instruments: %w", err)
	}

	p.logger.InfoContext(ctx, "observability initialized",
		"service", config.ServiceName,
		"environment", config.Environment,
		"endpoint", config.OTLPEndpoint,
	)

	return p, nil
}

func (p *Provider) initInstruments() error {
	var err error

	p.fetchCounter, err = p.meter.Int64Counter("axp.provider.fetches",
		metric.WithDescription("Total provider fetches attempted"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	p.errorCounter, err = p.meter.Int64Counter("axp.errors.total",
		metric.WithDescription("Total errors across the pipeline"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	p.fetchDuration, err = p.meter.Float64Histogram("axp.provider.fetch.duration",
		metric.WithDescription("Provider fetch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	p.cacheHits, err = p.meter.Int64Counter("axp.cache.hits",
		metric.WithDescription("Evidence cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	p.cacheMisses, err = p.meter.Int64Counter("axp.cache.misses",
		metric.WithDescription("Evidence cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	p.verifications, err = p.meter.Int64Counter("axp.verifications.total",
		metric.WithDescription("Trust verifications by method and outcome"),
		metric.WithUnit("{verification}"),
	)
	if err != nil {
		return err
	}

	p.anomalies, err = p.meter.Int64Counter("axp.anomalies.total",
		metric.WithDescription("Anomalous payloads flagged during enrichment"),
		metric.WithUnit("{anomaly}"),
	)
	return err
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.meterProvider == nil {
		return nil
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		p.logger.ErrorContext(ctx, "failed to shutdown meter provider", "error", err)
		return err
	}
	return nil
}

// RecordFetch counts one provider fetch attempt.
func (p *Provider) RecordFetch(ctx context.Context, provider string, attrs ...attribute.KeyValue) {
	if p == nil || p.fetchCounter == nil {
		return
	}
	attrs = append(attrs, attribute.String("provider", provider))
	p.fetchCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordError counts one pipeline error.
func (p *Provider) RecordError(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	if p == nil || p.errorCounter == nil {
		return
	}
	attrs = append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
	p.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFetchDuration records how long one provider fetch took.
func (p *Provider) RecordFetchDuration(ctx context.Context, provider string, d time.Duration) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	p.fetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordCacheHit counts one evidence cache hit or miss.
func (p *Provider) RecordCacheHit(ctx context.Context, provider string, hit bool) {
	if p == nil {
		return
	}
	counter := p.cacheHits
	if !hit {
		counter = p.cacheMisses
	}
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordVerification counts one trust verification outcome.
func (p *Provider) RecordVerification(ctx context.Context, method string, anomalyCount int) {
	if p == nil || p.verifications == nil {
		return
	}
	p.verifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("clean", anomalyCount == 0),
	))
}

// RecordAnomaly counts one anomalous payload flagged at enrichment time.
func (p *Provider) RecordAnomaly(ctx context.Context, provider string) {
	if p == nil || p.anomalies == nil {
		return
	}
	p.anomalies.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}
