package perturbation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) audio.TimeSeries[float64] {
	times := make([]float64, len(values))
	for i := range times {
		times[i] = float64(i) * 0.01
	}
	return audio.TimeSeries[float64]{Times: times, Values: values}
}

func TestIsDecibelScale(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   bool
	}{
		{"linear rms", []float64{0.01, 0.2, 0.5}, false},
		{"negative dB", []float64{-40, -12, -3}, true},
		{"positive dB", []float64{20, 60, 90}, false},
		{"small range below zero", []float64{-0.5, -0.2}, false},
		{"nan ignored", []float64{math.NaN(), -30, -10}, true},
		{"all nan", []float64{math.NaN()}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDecibelScale(tt.values))
		})
	}
}

func TestInstantaneousJitter(t *testing.T) {
	e := NewEstimator(nil)
	pitch := series(100, 0, 125, 100, math.NaN(), 100)

	jitter, _ := e.Instantaneous(pitch, audio.EmptySeries[float64]())

	// voiced frames: 100, 125, 100, 100
	require.Equal(t, 3, jitter.Len())
	assert.InDeltaSlice(t, []float64{0.02, 0.03, 0.05}, jitter.Times, 1e-12)
	assert.InDelta(t, 20, jitter.Values[0], 1e-9)
	assert.InDelta(t, 25, jitter.Values[1], 1e-9)
	assert.InDelta(t, 0, jitter.Values[2], 1e-9)
}

func TestJitterLengthAndSignProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := NewEstimator(nil)

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(40)
		values := make([]float64, n)
		valid := 0
		for i := range values {
			if rng.Float64() < 0.3 {
				continue
			}
			values[i] = 75 + rng.Float64()*525
			valid++
		}

		jitter, _ := e.Instantaneous(series(values...), audio.EmptySeries[float64]())
		if valid < 2 {
			assert.True(t, jitter.IsEmpty())
			continue
		}
		assert.Equal(t, valid-1, jitter.Len())
		for _, v := range jitter.Values {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestInstantaneousTooFewVoicedFrames(t *testing.T) {
	e := NewEstimator(nil)
	jitter, shimmer := e.Instantaneous(series(0, 150, 0), series(0.1, 0.2, 0.3))
	assert.True(t, jitter.IsEmpty())
	assert.True(t, shimmer.IsEmpty())
}

func TestShimmerIsScaleInvariant(t *testing.T) {
	e := NewEstimator(nil)
	pitch := series(150, 151, 149, 150, 152, 150)

	linear := series(0.05, 0.2, 0.1, 0.4, 0.3, 0.02)
	db := audio.TimeSeries[float64]{Times: linear.Times, Values: make([]float64, linear.Len())}
	for i, v := range linear.Values {
		db.Values[i] = 20 * math.Log10(v)
	}

	_, fromLinear := e.Instantaneous(pitch, linear)
	_, fromDB := e.Instantaneous(pitch, db)

	require.Equal(t, fromLinear.Len(), fromDB.Len())
	assert.InDeltaSlice(t, fromLinear.Values, fromDB.Values, 1e-6)
	assert.Equal(t, fromLinear.Times, fromDB.Times)
}

func TestShimmerInterpolatesOntoPitchGrid(t *testing.T) {
	e := NewEstimator(nil)
	pitch := audio.TimeSeries[float64]{
		Times:  []float64{0.005, 0.015},
		Values: []float64{150, 150},
	}
	// unsorted amplitude on a coarser grid
	amp := audio.TimeSeries[float64]{
		Times:  []float64{0.02, 0},
		Values: []float64{0.4, 0.2},
	}

	_, shimmer := e.Instantaneous(pitch, amp)
	require.Equal(t, 1, shimmer.Len())
	// 0.25 -> 0.35
	assert.InDelta(t, 40, shimmer.Values[0], 1e-6)
	assert.InDelta(t, 0.015, shimmer.Times[0], 1e-12)
}

func TestShimmerZeroAmplitudeIsFinite(t *testing.T) {
	got := Shimmer([]float64{0, 0.01}, []float64{0, 0})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, 0.0, got.Values[0])
}

func TestCustomScaleDetector(t *testing.T) {
	always := func([]float64) bool { return true }

	_, plain := NewEstimator(nil).Instantaneous(series(150, 150), series(20, 40))
	require.Equal(t, 1, plain.Len())
	assert.InDelta(t, 100, plain.Values[0], 1e-6)

	// 20 dB -> 10, 40 dB -> 100
	_, forced := NewEstimator(always).Instantaneous(series(150, 150), series(20, 40))
	require.Equal(t, 1, forced.Len())
	assert.InDelta(t, 900, forced.Values[0], 1e-6)
}

func TestSonarLocalEstimatorShortSignal(t *testing.T) {
	j, s := NewSonarLocalEstimator().Local(audio.NewMono(make([]float64, 1600), 16000))
	assert.Nil(t, j)
	assert.Nil(t, s)
}

func TestFinite(t *testing.T) {
	assert.Nil(t, finite(math.NaN()))
	assert.Nil(t, finite(math.Inf(-1)))
	require.NotNil(t, finite(1.5))
	assert.Equal(t, 1.5, *finite(1.5))
}
