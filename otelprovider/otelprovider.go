// Package otelprovider instruments any DataProvider with OpenTelemetry
// tracing and metrics. Each operation becomes one span named after it, errors
// are recorded with their taxonomy kind, and every call feeds a count and a
// duration histogram. The decorator changes no behavior: results and errors
// pass through untouched.
package otelprovider

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hasan-suufi/tensorboard"
)

const scopeName = "tensorboard/dataprovider"

// Provider wraps a DataProvider with telemetry. Construct with Wrap.
type Provider struct {
	next     tensorboard.DataProvider
	tracer   trace.Tracer
	logger   *slog.Logger
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

var _ tensorboard.DataProvider = (*Provider)(nil)

// Option configures the decorator.
type Option func(*config)

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         *slog.Logger
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = mp }
}

// WithLogger sets a structured logger for failed calls. If not set, failures
// are only recorded on the span and metrics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Wrap decorates next with spans and call metrics. By default the global
// OpenTelemetry providers are used, so with no SDK configured the decorator
// is a near-free no-op.
func Wrap(next tensorboard.DataProvider, opts ...Option) *Provider {
	cfg := config{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Provider{
		next:   next,
		tracer: cfg.tracerProvider.Tracer(scopeName),
		logger: cfg.logger,
	}

	// Instrument creation fails only on malformed names; fall back to
	// span-only telemetry rather than refusing to wrap.
	meter := cfg.meterProvider.Meter(scopeName)
	if counter, err := meter.Int64Counter("dataprovider.calls",
		metric.WithDescription("Number of DataProvider operations")); err == nil {
		p.calls = counter
	}
	if hist, err := meter.Float64Histogram("dataprovider.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("DataProvider operation duration")); err == nil {
		p.duration = hist
	}
	return p
}

func (p *Provider) observe(ctx context.Context, op string, start time.Time, span trace.Span, err error) {
	elapsed := time.Since(start)
	kind := tensorboard.Kind(err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		span.SetAttributes(attribute.String("tensorboard.error_kind", kind))
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "data provider call failed",
				"op", op, "error_kind", kind, "duration", elapsed, "error", err)
		}
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("error_kind", kind),
	)
	if p.calls != nil {
		p.calls.Add(ctx, 1, attrs)
	}
	if p.duration != nil {
		p.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
}

// DataLocation delegates with a span; the operation itself never fails.
func (p *Provider) DataLocation(ctx context.Context, experimentID string) string {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.DataLocation",
		trace.WithAttributes(attribute.String("tensorboard.experiment_id", experimentID)))
	location := p.next.DataLocation(ctx, experimentID)
	p.observe(ctx, "DataLocation", start, span, nil)
	return location
}

// ListRuns delegates with a span recording the run count.
func (p *Provider) ListRuns(ctx context.Context, experimentID string) ([]tensorboard.Run, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.ListRuns",
		trace.WithAttributes(attribute.String("tensorboard.experiment_id", experimentID)))
	runs, err := p.next.ListRuns(ctx, experimentID)
	span.SetAttributes(attribute.Int("tensorboard.num_runs", len(runs)))
	p.observe(ctx, "ListRuns", start, span, err)
	return runs, err
}

// ListScalars delegates with a span recording the series count.
func (p *Provider) ListScalars(ctx context.Context, experimentID, pluginName string, filter *tensorboard.RunTagFilter) (map[string]map[string]tensorboard.ScalarTimeSeries, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.ListScalars",
		trace.WithAttributes(readAttrs(experimentID, pluginName, -1)...))
	result, err := p.next.ListScalars(ctx, experimentID, pluginName, filter)
	span.SetAttributes(attribute.Int("tensorboard.num_series", seriesCount(result)))
	p.observe(ctx, "ListScalars", start, span, err)
	return result, err
}

// ReadScalars delegates with a span recording the series count.
func (p *Provider) ReadScalars(ctx context.Context, experimentID, pluginName string, downsample int, filter *tensorboard.RunTagFilter) (map[string]map[string][]tensorboard.ScalarDatum, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.ReadScalars",
		trace.WithAttributes(readAttrs(experimentID, pluginName, downsample)...))
	result, err := p.next.ReadScalars(ctx, experimentID, pluginName, downsample, filter)
	span.SetAttributes(attribute.Int("tensorboard.num_series", seriesCount(result)))
	p.observe(ctx, "ReadScalars", start, span, err)
	return result, err
}

// ListBlobSequences delegates with a span recording the series count.
func (p *Provider) ListBlobSequences(ctx context.Context, experimentID, pluginName string, filter *tensorboard.RunTagFilter) (map[string]map[string]tensorboard.BlobSequenceTimeSeries, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.ListBlobSequences",
		trace.WithAttributes(readAttrs(experimentID, pluginName, -1)...))
	result, err := p.next.ListBlobSequences(ctx, experimentID, pluginName, filter)
	span.SetAttributes(attribute.Int("tensorboard.num_series", seriesCount(result)))
	p.observe(ctx, "ListBlobSequences", start, span, err)
	return result, err
}

// ReadBlobSequences delegates with a span recording the series count.
func (p *Provider) ReadBlobSequences(ctx context.Context, experimentID, pluginName string, downsample int, filter *tensorboard.RunTagFilter) (map[string]map[string][]tensorboard.BlobSequenceDatum, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.ReadBlobSequences",
		trace.WithAttributes(readAttrs(experimentID, pluginName, downsample)...))
	result, err := p.next.ReadBlobSequences(ctx, experimentID, pluginName, downsample, filter)
	span.SetAttributes(attribute.Int("tensorboard.num_series", seriesCount(result)))
	p.observe(ctx, "ReadBlobSequences", start, span, err)
	return result, err
}

// ReadBlob delegates with a span recording the payload size. The blob key is
// URL-safe by contract, so recording it as an attribute leaks nothing.
func (p *Provider) ReadBlob(ctx context.Context, blobKey string) ([]byte, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "tensorboard.ReadBlob",
		trace.WithAttributes(attribute.String("tensorboard.blob_key", blobKey)))
	payload, err := p.next.ReadBlob(ctx, blobKey)
	span.SetAttributes(attribute.Int("tensorboard.blob_size", len(payload)))
	p.observe(ctx, "ReadBlob", start, span, err)
	return payload, err
}

func readAttrs(experimentID, pluginName string, downsample int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("tensorboard.experiment_id", experimentID),
		attribute.String("tensorboard.plugin", pluginName),
	}
	if downsample >= 0 {
		attrs = append(attrs, attribute.Int("tensorboard.downsample", downsample))
	}
	return attrs
}

func seriesCount[V any](result map[string]map[string]V) int {
	n := 0
	for _, tags := range result {
		n += len(tags)
	}
	return n
}
