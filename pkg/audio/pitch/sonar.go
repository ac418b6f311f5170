package pitch

import (
	"context"
	"errors"
	"math"

	"github.com/RyanBlaney/sonido-sonar/algorithms/tonal"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

// ErrSignalTooShort is returned when the waveform cannot fill one
// analysis window
var ErrSignalTooShort = errors.New("signal shorter than one pitch analysis window")

// SonarEstimator estimates F0 with the YIN detector from sonido-sonar.
// Frames are spaced by the shared 10 ms hop and span three periods of
// the band floor.
type SonarEstimator struct {
	// YinThreshold bounds the normalized difference function dip. Zero
	// means 0.15.
	YinThreshold float64
	// MinConfidence below which a frame is reported unvoiced. Zero means 0.5.
	MinConfidence float64
}

// NewSonarEstimator returns a YIN estimator with default thresholds
func NewSonarEstimator() *SonarEstimator {
	return &SonarEstimator{YinThreshold: 0.15, MinConfidence: 0.5}
}

// EstimateF0 implements Estimator
func (se *SonarEstimator) EstimateF0(ctx context.Context, w audio.Waveform, band Band) (audio.TimeSeries[float64], error) {
	geometry := audio.NewGeometry(w.SampleRate)
	window := int(math.Ceil(3 * float64(w.SampleRate) / band.Floor))
	hop := geometry.HopLength

	if len(w.Samples) < window {
		return audio.EmptySeries[float64](), ErrSignalTooShort
	}

	// the detector keeps pitch history between frames, so each call gets its own
	detector := tonal.NewPitchDetectorWithParams(se.params(w.SampleRate, window, hop, band))

	count := (len(w.Samples)-window)/hop + 1
	times := make([]float64, count)
	values := make([]float64, count)
	failed := 0
	var lastErr error

	for i := range count {
		if i%128 == 0 {
			if err := ctx.Err(); err != nil {
				return audio.EmptySeries[float64](), err
			}
		}

		times[i] = geometry.FrameTime(i)
		start := i * hop
		result, err := detector.DetectPitch(w.Samples[start : start+window])
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		values[i] = result.Pitch
	}

	if failed == count {
		return audio.EmptySeries[float64](), lastErr
	}
	return audio.TimeSeries[float64]{Times: times, Values: values}, nil
}

func (se *SonarEstimator) params(sampleRate, window, hop int, band Band) tonal.PitchDetectionParams {
	yin := se.YinThreshold
	if yin <= 0 {
		yin = 0.15
	}
	conf := se.MinConfidence
	if conf <= 0 {
		conf = 0.5
	}

	return tonal.PitchDetectionParams{
		Method:            tonal.AutocorrelationYin,
		SampleRate:        sampleRate,
		WindowSize:        window,
		HopSize:           hop,
		MinFreq:           band.Floor,
		MaxFreq:           band.Ceiling,
		YinThreshold:      yin,
		AutocorrThreshold: 0.3,
		CepstralThreshold: 0.1,
		MinConfidence:     conf,
		MinSalience:       0.3,
		VoicingThreshold:  0.45,
		MaxHarmonics:      10,
		HarmonicTolerance: 0.1,
		PreEmphasis:       false,
		WindowFunction:    "rectangular",
		ZeroPadding:       1,
		MedianFilter:      0,
		TemporalSmoothing: false,
		OctaveCorrection:  false,
	}
}
