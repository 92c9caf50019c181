// Package observe provides application-wide observability primitives for
// vidscribe: OpenTelemetry metrics, distributed tracing, and the HTTP
// listener that exposes them.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all vidscribe metrics.
const meterName = "github.com/vidscribe/vidscribe"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// StageDuration tracks wall-clock latency per pipeline stage. Use with
	// attribute: attribute.String("stage", ...)
	StageDuration metric.Float64Histogram

	// Transcriptions counts transcription attempts. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("outcome", ...)
	Transcriptions metric.Int64Counter

	// Fallbacks counts hosted-API failures that were transparently retried
	// on the local engine.
	Fallbacks metric.Int64Counter

	// Chunks counts per-chunk outcomes during chunked transcription. Use
	// with attribute: attribute.String("outcome", ...)
	Chunks metric.Int64Counter

	// AudioBytes tracks the size distribution of audio files submitted for
	// transcription.
	AudioBytes metric.Int64Histogram

	// HTTPRequestDuration tracks request latency on the metrics listener.
	// Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// stageBuckets defines histogram bucket boundaries (in seconds) sized for
// pipeline stages that range from sub-second ffmpeg probes to multi-minute
// transcriptions.
var stageBuckets = []float64{
	0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800,
}

// sizeBuckets defines histogram bucket boundaries (in bytes) for audio file
// sizes. The 25 MiB boundary mirrors the hosted API upload ceiling.
var sizeBuckets = []float64{
	1 << 20, 5 << 20, 10 << 20, 25 << 20, 50 << 20, 100 << 20, 500 << 20, 1 << 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("vidscribe.stage.duration",
		metric.WithDescription("Wall-clock latency per pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Transcriptions, err = m.Int64Counter("vidscribe.transcriptions",
		metric.WithDescription("Total transcription attempts by backend and outcome."),
	); err != nil {
		return nil, err
	}
	if met.Fallbacks, err = m.Int64Counter("vidscribe.fallbacks",
		metric.WithDescription("Total hosted-API failures retried on the local engine."),
	); err != nil {
		return nil, err
	}
	if met.Chunks, err = m.Int64Counter("vidscribe.chunks",
		metric.WithDescription("Total chunk transcriptions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.AudioBytes, err = m.Int64Histogram("vidscribe.audio.bytes",
		metric.WithDescription("Size of audio files submitted for transcription."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("vidscribe.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. When [InitProvider] has not been called the global provider is a
// no-op, so recording is free. Panics if instrument creation fails (should
// not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordStage records the wall-clock duration of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordTranscription records one transcription attempt with the standard
// attribute set.
func (m *Metrics) RecordTranscription(ctx context.Context, backend, outcome string) {
	m.Transcriptions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordFallback records one transparent hosted-API to local-engine fallback.
func (m *Metrics) RecordFallback(ctx context.Context) {
	m.Fallbacks.Add(ctx, 1)
}

// RecordChunk records the outcome of one chunk during chunked transcription.
func (m *Metrics) RecordChunk(ctx context.Context, outcome string) {
	m.Chunks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordAudioBytes records the size of an audio file submitted for
// transcription.
func (m *Metrics) RecordAudioBytes(ctx context.Context, n int64) {
	m.AudioBytes.Record(ctx, n)
}
