// Package perturbation computes jitter and shimmer, the cycle-to-cycle
// variation in period and amplitude of voiced speech.
package perturbation

import (
	"math"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"gonum.org/v1/gonum/floats"
)

// Epsilon guards shimmer against division by near-zero amplitude
const Epsilon = 1e-12

// ScaleDetector decides whether an amplitude series is in decibels
type ScaleDetector func(values []float64) bool

// IsDecibelScale reports a series as decibels when its dynamic range
// exceeds one unit and it dips below zero. NaN values are ignored.
func IsDecibelScale(values []float64) bool {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return false
	}
	lo, hi := floats.Min(finite), floats.Max(finite)
	return hi-lo > 1 && lo < 0
}

// Estimator computes instantaneous jitter and shimmer series
type Estimator struct {
	isDecibel ScaleDetector
}

// NewEstimator creates an estimator. A nil detector means IsDecibelScale.
func NewEstimator(detector ScaleDetector) *Estimator {
	if detector == nil {
		detector = IsDecibelScale
	}
	return &Estimator{isDecibel: detector}
}

// Instantaneous returns jitter and shimmer in percent, each stamped at the
// later of the two frames compared. Both are empty when fewer than two
// voiced pitch frames exist. Shimmer is also empty when amplitude is.
func (e *Estimator) Instantaneous(pitch, amplitude audio.TimeSeries[float64]) (jitter, shimmer audio.TimeSeries[float64]) {
	times, f0 := voicedFrames(pitch)
	if len(f0) < 2 {
		return audio.EmptySeries[float64](), audio.EmptySeries[float64]()
	}

	jitter = Jitter(times, f0)

	if amplitude.IsEmpty() {
		return jitter, audio.EmptySeries[float64]()
	}

	amp := amplitude
	if e.isDecibel(amplitude.Values) {
		amp = toLinear(amplitude)
	}
	shimmer = Shimmer(times, audio.Interpolate(amp, times))
	return jitter, shimmer
}

// Jitter computes |P[i]-P[i-1]|/P[i-1] in percent over periods P = 1/f0
func Jitter(times, f0 []float64) audio.TimeSeries[float64] {
	if len(f0) < 2 {
		return audio.EmptySeries[float64]()
	}
	out := audio.TimeSeries[float64]{
		Times:  make([]float64, len(f0)-1),
		Values: make([]float64, len(f0)-1),
	}
	for i := 1; i < len(f0); i++ {
		prev, cur := 1/f0[i-1], 1/f0[i]
		out.Times[i-1] = times[i]
		out.Values[i-1] = math.Abs(cur-prev) / prev * 100
	}
	return out
}

// Shimmer computes |A[i]-A[i-1]|/(A[i-1]+Epsilon) in percent over linear
// amplitudes already aligned to times
func Shimmer(times, amp []float64) audio.TimeSeries[float64] {
	if len(amp) < 2 {
		return audio.EmptySeries[float64]()
	}
	out := audio.TimeSeries[float64]{
		Times:  make([]float64, len(amp)-1),
		Values: make([]float64, len(amp)-1),
	}
	for i := 1; i < len(amp); i++ {
		out.Times[i-1] = times[i]
		out.Values[i-1] = math.Abs(amp[i]-amp[i-1]) / (amp[i-1] + Epsilon) * 100
	}
	return out
}

func voicedFrames(pitch audio.TimeSeries[float64]) ([]float64, []float64) {
	times := make([]float64, 0, pitch.Len())
	f0 := make([]float64, 0, pitch.Len())
	for i, f := range pitch.Values {
		if f > 0 && !math.IsInf(f, 0) {
			times = append(times, pitch.Times[i])
			f0 = append(f0, f)
		}
	}
	return times, f0
}

func toLinear(db audio.TimeSeries[float64]) audio.TimeSeries[float64] {
	out := audio.TimeSeries[float64]{
		Times:  db.Times,
		Values: make([]float64, db.Len()),
	}
	for i, v := range db.Values {
		out.Values[i] = math.Pow(10, v/20)
	}
	return out
}
