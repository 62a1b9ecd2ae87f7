// internal/common/observability/metrics.go
package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the process-wide meter and tracer providers.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	searchCounter  otelmetric.Int64Counter
	searchDuration otelmetric.Float64Histogram
}

type Option func(*options)

type options struct {
	spanProcessors []sdktrace.SpanProcessor
	reader         metric.Reader
}

// WithSpanProcessor attaches a span processor, e.g. a batch exporter or a test recorder.
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, p) }
}

// WithMetricReader replaces the Prometheus exporter.
func WithMetricReader(r metric.Reader) Option {
	return func(o *options) { o.reader = r }
}

// New installs global meter and tracer providers for serviceName. Metrics are exported through
// the Prometheus default registry unless another reader is given.
func New(serviceName string, opts ...Option) (*Observability, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.reader == nil {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, err
		}
		o.reader = exporter
	}

	res := resource.NewSchemaless(semconv.ServiceName(serviceName))

	meterProvider := metric.NewMeterProvider(metric.WithReader(o.reader), metric.WithResource(res))
	otel.SetMeterProvider(meterProvider)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, p := range o.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)

	meter := meterProvider.Meter(serviceName)

	searchCounter, err := meter.Int64Counter(
		"searches.processed",
		otelmetric.WithDescription("Number of searches processed"),
	)
	if err != nil {
		return nil, err
	}

	searchDuration, err := meter.Float64Histogram(
		"searches.duration",
		otelmetric.WithDescription("Search processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		meter:          meter,
		tracer:         tracerProvider.Tracer(serviceName),
		searchCounter:  searchCounter,
		searchDuration: searchDuration,
	}, nil
}

func (o *Observability) Tracer() trace.Tracer {
	return o.tracer
}

func (o *Observability) RecordSearch(ctx context.Context, duration time.Duration, status string) {
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	o.searchCounter.Add(ctx, 1, attrs)
	o.searchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// Shutdown flushes and stops both providers.
func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return errors.Join(
		o.tracerProvider.Shutdown(ctx),
		o.meterProvider.Shutdown(ctx),
	)
}
