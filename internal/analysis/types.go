package analysis

import (
	"math"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/align"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/formant"
)

// FeatureSet is the result of one analysis call
type FeatureSet struct {
	Duration   float64 `json:"duration" yaml:"duration"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`

	Pitch        audio.TimeSeries[float64] `json:"pitch" yaml:"pitch"`
	JitterLocal  *float64                  `json:"jitter_local" yaml:"jitter_local"`
	ShimmerLocal *float64                  `json:"shimmer_local" yaml:"shimmer_local"`

	RMS      audio.TimeSeries[float64] `json:"rms" yaml:"rms"`
	Loudness audio.TimeSeries[float64] `json:"loudness" yaml:"loudness"`
	Jitter   audio.TimeSeries[float64] `json:"jitter" yaml:"jitter"`
	Shimmer  audio.TimeSeries[float64] `json:"shimmer" yaml:"shimmer"`

	ZCR              audio.TimeSeries[float64] `json:"zcr" yaml:"zcr"`
	SpectralCentroid audio.TimeSeries[float64] `json:"spectralCentroid" yaml:"spectralCentroid"`

	SpeechRateSPS float64 `json:"speech_rate_sps" yaml:"speech_rate_sps"`

	Syllables         []SyllableMark `json:"syllables,omitempty" yaml:"syllables,omitempty"`
	AlignmentStrategy align.Strategy `json:"alignment_strategy,omitempty" yaml:"alignment_strategy,omitempty"`

	Formants *formant.Formants `json:"formants,omitempty" yaml:"formants,omitempty"`

	// VoicedIntervals are kept for renderers and are not part of the
	// serialized record
	VoicedIntervals []audio.VoicedInterval `json:"-" yaml:"-"`
}

// SyllableMark is an aligned label with its time rounded to 10 ms
type SyllableMark struct {
	Text string  `json:"text" yaml:"text"`
	Time float64 `json:"time" yaml:"time"`
}

// Round2 rounds v to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func marks(labels []audio.TimedLabel) []SyllableMark {
	out := make([]SyllableMark, len(labels))
	for i, l := range labels {
		out[i] = SyllableMark{Text: l.Label, Time: Round2(l.Time)}
	}
	return out
}
