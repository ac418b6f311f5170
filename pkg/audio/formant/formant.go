// Package formant measures vowel formants at the middle of a recording.
package formant

import (
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/sonido-sonar/algorithms/speech"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// DefaultSpan is the analysis window centered on mid-duration
const DefaultSpan = 50 * time.Millisecond

// Formants holds the first two formant frequencies in Hz
type Formants struct {
	F1 *float64 `json:"f1"`
	F2 *float64 `json:"f2"`
}

// Estimator measures formants of a mono waveform
type Estimator interface {
	Formants(w audio.Waveform) (Formants, error)
}

// SonarEstimator uses the sonido-sonar LPC formant analyzer on a short
// window at mid-duration
type SonarEstimator struct {
	span   time.Duration
	logger logging.Logger
}

// NewSonarEstimator creates an estimator analyzing span around the midpoint.
// A non-positive span means DefaultSpan.
func NewSonarEstimator(span time.Duration) *SonarEstimator {
	if span <= 0 {
		span = DefaultSpan
	}
	return &SonarEstimator{
		span: span,
		logger: logging.WithFields(logging.Fields{
			"component": "formant_estimator",
		}),
	}
}

// Formants implements Estimator. Values the analyzer cannot produce are nil.
func (se *SonarEstimator) Formants(w audio.Waveform) (f Formants, err error) {
	segment := MidSegment(w, se.span)
	if len(segment) == 0 {
		return Formants{}, fmt.Errorf("no samples to analyze")
	}

	defer func() {
		if r := recover(); r != nil {
			f, err = Formants{}, fmt.Errorf("formant analyzer panicked: %v", r)
		}
	}()

	freqs, err := speech.NewSpeechAnalyzer(w.SampleRate).GetFormantFrequencies(segment)
	if err != nil {
		return Formants{}, fmt.Errorf("formant analysis failed: %w", err)
	}

	se.logger.Debug("Formants measured", logging.Fields{
		"count":   len(freqs),
		"samples": len(segment),
	})

	if len(freqs) > 0 {
		f.F1 = positive(freqs[0])
	}
	if len(freqs) > 1 {
		f.F2 = positive(freqs[1])
	}
	return f, nil
}

// MidSegment returns up to span of samples centered on the midpoint of w
func MidSegment(w audio.Waveform, span time.Duration) []float64 {
	n := len(w.Samples)
	if n == 0 {
		return nil
	}
	width := int(int64(w.SampleRate) * int64(span) / int64(time.Second))
	if width <= 0 || width >= n {
		return w.Samples
	}
	start := n/2 - width/2
	return w.Samples[start : start+width]
}

func positive(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	return &v
}
