package analyzers

import (
	"math"

	"github.com/RyanBlaney/sonido-sonar/algorithms/temporal"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// LoudnessReference is the amplitude mapped to 0 dB (20 micro-units)
const LoudnessReference = 20e-6

// EnvelopeAnalyzer computes the short-term RMS envelope
type EnvelopeAnalyzer struct {
	geometry audio.Geometry
	envelope *temporal.Envelope
	logger   logging.Logger
}

// NewEnvelopeAnalyzer creates an envelope analyzer for sampleRate
func NewEnvelopeAnalyzer(sampleRate int) *EnvelopeAnalyzer {
	return &EnvelopeAnalyzer{
		geometry: audio.NewGeometry(sampleRate),
		envelope: temporal.NewEnvelope(),
		logger: logging.WithFields(logging.Fields{
			"component":   "envelope_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// RMS returns the per-frame root-mean-square energy of w
func (ea *EnvelopeAnalyzer) RMS(w audio.Waveform) audio.TimeSeries[float64] {
	if len(w.Samples) == 0 {
		return audio.EmptySeries[float64]()
	}

	padded := ea.geometry.Pad(w.Samples)
	values := ea.envelope.ComputeRMS(padded, ea.geometry.WindowLength, ea.geometry.HopLength)

	ea.logger.Debug("RMS envelope computed", logging.Fields{
		"frames": len(values),
	})

	return audio.TimeSeries[float64]{
		Times:  ea.geometry.FrameTimes(len(values)),
		Values: values,
	}
}

// Loudness maps an RMS series to decibels relative to LoudnessReference.
// Zero-energy frames would give -Inf and are reported as 0 instead.
func Loudness(rms audio.TimeSeries[float64]) audio.TimeSeries[float64] {
	values := make([]float64, rms.Len())
	for i, v := range rms.Values {
		db := 20 * math.Log10(v/LoudnessReference)
		if math.IsNaN(db) || math.IsInf(db, 0) {
			db = 0
		}
		values[i] = db
	}
	return audio.TimeSeries[float64]{
		Times:  append([]float64{}, rms.Times...),
		Values: values,
	}
}
