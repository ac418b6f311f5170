package audio

import "fmt"

// Waveform is decoded PCM audio. Samples are normalized to [-1, 1].
// For multichannel audio Samples are interleaved.
type Waveform struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
}

// NewMono wraps mono samples in a Waveform
func NewMono(samples []float64, sampleRate int) Waveform {
	return Waveform{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

// Validate checks the input contract of the feature pipeline
func (w Waveform) Validate() error {
	if w.Channels != 1 {
		return NewAnalysisError(ErrCodeInvalidInput,
			fmt.Sprintf("expected mono waveform, got %d channels", w.Channels), nil)
	}
	if w.SampleRate <= 0 {
		return NewAnalysisError(ErrCodeInvalidInput,
			fmt.Sprintf("sample rate must be positive, got %d", w.SampleRate), nil)
	}
	if len(w.Samples) == 0 {
		return NewAnalysisError(ErrCodeInvalidInput, "waveform has no samples", nil)
	}
	return nil
}

// Duration returns the length of the waveform in seconds
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 || w.Channels <= 0 {
		return 0
	}
	return float64(len(w.Samples)/w.Channels) / float64(w.SampleRate)
}

// Mono returns a single channel copy of the waveform by averaging channels
func (w Waveform) Mono() Waveform {
	if w.Channels <= 1 {
		return w
	}
	return Waveform{
		Samples:    Downmix(w.Samples, w.Channels),
		SampleRate: w.SampleRate,
		Channels:   1,
	}
}

// Downmix averages interleaved channels into mono. A trailing partial
// frame is dropped.
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}
	n := len(interleaved) / channels
	out := make([]float64, n)
	for i := range n {
		sum := 0.0
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// VoicedInterval is a contiguous run of speech in seconds
type VoicedInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Midpoint returns the center of the interval
func (v VoicedInterval) Midpoint() float64 {
	return (v.Start + v.End) / 2
}

// TimedLabel places a recognized label at an offset in the recording
type TimedLabel struct {
	Label string  `json:"text"`
	Time  float64 `json:"time"`
}
