// Package vad splits a waveform into voiced intervals using a per-frame
// speech classifier.
package vad

import (
	"context"
	"math"
	"time"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// DefaultFrameDuration is the classification frame length
const DefaultFrameDuration = 30 * time.Millisecond

// Segmenter merges runs of speech frames into voiced intervals
type Segmenter struct {
	frameDuration time.Duration
	primary       ClassifierFactory
	fallback      ClassifierFactory
	logger        logging.Logger
}

// Option configures a Segmenter
type Option func(*Segmenter)

// WithFrameDuration overrides the 30 ms classification frame
func WithFrameDuration(d time.Duration) Option {
	return func(s *Segmenter) {
		if d > 0 {
			s.frameDuration = d
		}
	}
}

// WithFallback sets the factory used when the primary one rejects the
// sample rate. A nil fallback disables it.
func WithFallback(f ClassifierFactory) Option {
	return func(s *Segmenter) {
		s.fallback = f
	}
}

// NewSegmenter creates a segmenter around primary. By default rates the
// primary classifier rejects fall back to an energy detector.
func NewSegmenter(primary ClassifierFactory, opts ...Option) *Segmenter {
	s := &Segmenter{
		frameDuration: DefaultFrameDuration,
		primary:       primary,
		fallback:      NewRMSFactory(DefaultEnergyThreshold),
		logger: logging.WithFields(logging.Fields{
			"component": "vad_segmenter",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment classifies w frame by frame and returns the voiced intervals.
// A trailing partial frame is ignored. Silence, unsupported input or a
// classifier failure all produce an empty list.
func (s *Segmenter) Segment(ctx context.Context, w audio.Waveform) ([]audio.VoicedInterval, error) {
	frameLen := s.frameLength(w.SampleRate)
	if frameLen <= 0 || len(w.Samples) < frameLen {
		return []audio.VoicedInterval{}, nil
	}

	classifier := s.classifier(w.SampleRate, frameLen)
	if classifier == nil {
		return []audio.VoicedInterval{}, nil
	}

	count := len(w.Samples) / frameLen
	voiced := make([]bool, count)
	pcm := make([]int16, frameLen)

	for i := range count {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ToPCM16(w.Samples[i*frameLen:(i+1)*frameLen], pcm)
		speech, err := classifier.IsSpeech(pcm, w.SampleRate)
		if err != nil {
			s.logger.Warn("Voice activity classifier failed", logging.Fields{
				"frame": i,
				"error": err.Error(),
			})
			return []audio.VoicedInterval{}, nil
		}
		voiced[i] = speech
	}

	intervals := Merge(voiced, s.frameDuration.Seconds())
	s.logger.Debug("Voice activity segmented", logging.Fields{
		"frames":    count,
		"intervals": len(intervals),
	})
	return intervals, nil
}

func (s *Segmenter) classifier(sampleRate, frameLen int) Classifier {
	if s.primary != nil {
		c, err := s.primary(sampleRate, frameLen)
		if err == nil {
			return c
		}
		s.logger.Warn("Primary voice activity classifier unavailable", logging.Fields{
			"sample_rate": sampleRate,
			"error":       err.Error(),
			"fallback":    s.fallback != nil,
		})
	}
	if s.fallback == nil {
		return nil
	}
	c, err := s.fallback(sampleRate, frameLen)
	if err != nil {
		s.logger.Warn("Fallback voice activity classifier unavailable", logging.Fields{
			"error": err.Error(),
		})
		return nil
	}
	return c
}

// UsesFallback reports whether segmenting at sampleRate would need the
// fallback classifier
func (s *Segmenter) UsesFallback(sampleRate int) bool {
	if s.primary == nil {
		return true
	}
	frameLen := s.frameLength(sampleRate)
	_, err := s.primary(sampleRate, frameLen)
	return err != nil
}

func (s *Segmenter) frameLength(sampleRate int) int {
	return int(int64(sampleRate) * int64(s.frameDuration) / int64(time.Second))
}

// Merge turns per-frame decisions into intervals. Frame i spans
// [i*frameSeconds, (i+1)*frameSeconds); a run still open at the end
// closes at the final frame boundary.
func Merge(voiced []bool, frameSeconds float64) []audio.VoicedInterval {
	intervals := []audio.VoicedInterval{}
	start := -1
	for i, v := range voiced {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			intervals = append(intervals, audio.VoicedInterval{
				Start: float64(start) * frameSeconds,
				End:   float64(i) * frameSeconds,
			})
			start = -1
		}
	}
	if start >= 0 {
		intervals = append(intervals, audio.VoicedInterval{
			Start: float64(start) * frameSeconds,
			End:   float64(len(voiced)) * frameSeconds,
		})
	}
	return intervals
}

// ToPCM16 scales float samples in [-1, 1] to 16-bit PCM, clamping values
// outside the range
func ToPCM16(samples []float64, dst []int16) {
	for i, s := range samples {
		v := math.Round(s * 32768)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		case math.IsNaN(v):
			v = 0
		}
		dst[i] = int16(v)
	}
}
