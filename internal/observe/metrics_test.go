package observe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordStage(ctx, "pitch", time.Now().Add(-20*time.Millisecond))
	m.RecordFallback(ctx, "pitch")
	m.RecordAnalysis(ctx, "ok")
	m.RecordAnalysis(ctx, "ok")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		byName[metric.Name] = metric
	}

	analyses, ok := byName["speech.analyses"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, analyses.DataPoints, 1)
	assert.Equal(t, int64(2), analyses.DataPoints[0].Value)

	hist, ok := byName["speech.stage.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	_, ok = byName["speech.stage.fallbacks"].Data.(metricdata.Sum[int64])
	assert.True(t, ok)
}

func TestDefaultUsesGlobalProvider(t *testing.T) {
	m := Default()
	require.NotNil(t, m)
	m.RecordAnalysis(context.Background(), "ok")
}

func TestProviderSnapshot(t *testing.T) {
	p := NewProvider()
	m, err := NewMetrics(p)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordFallback(ctx, "vad")
	m.RecordFallback(ctx, "vad")
	m.RecordStage(ctx, "envelope", time.Now())

	snap, err := p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap["speech.stage.fallbacks{stage=vad}"])
	assert.Contains(t, snap, "speech.stage.duration{stage=envelope}")
}
