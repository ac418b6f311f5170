// Package observe holds the OpenTelemetry instruments recorded by the
// analysis engine. The engine defaults to the global meter provider, which
// is a no-op unless the command installs an SDK provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all analyzer metrics
const meterName = "github.com/RyanBlaney/speech-analyzer"

// Metrics holds the instruments for one engine
type Metrics struct {
	// StageDuration tracks per-stage processing time. Attribute "stage".
	StageDuration metric.Float64Histogram

	// Analyses counts analysis calls. Attribute "status".
	Analyses metric.Int64Counter

	// StageFallbacks counts stages that degraded to an empty or fallback
	// result. Attribute "stage".
	StageFallbacks metric.Int64Counter
}

// stageBuckets in seconds, sized for clips of a few seconds
var stageBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates the instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("speech.stage.duration",
		metric.WithDescription("Processing time of one pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Analyses, err = m.Int64Counter("speech.analyses",
		metric.WithDescription("Number of feature analyses run."),
	); err != nil {
		return nil, err
	}
	if met.StageFallbacks, err = m.Int64Counter("speech.stage.fallbacks",
		metric.WithDescription("Stages that produced empty or fallback results."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Default returns instruments bound to the global meter provider
func Default() *Metrics {
	met, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		// instrument creation only fails on invalid names
		panic(err)
	}
	return met
}

// RecordStage records how long stage took since start
func (m *Metrics) RecordStage(ctx context.Context, stage string, start time.Time) {
	m.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordFallback counts a degraded stage
func (m *Metrics) RecordFallback(ctx context.Context, stage string) {
	m.StageFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordAnalysis counts a finished analysis with its outcome
func (m *Metrics) RecordAnalysis(ctx context.Context, status string) {
	m.Analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
