package perturbation

import (
	"math"

	"github.com/RyanBlaney/sonido-sonar/algorithms/speech"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// LocalEstimator produces whole-utterance jitter and shimmer summaries in
// percent. Either may be nil when it cannot be measured.
type LocalEstimator interface {
	Local(w audio.Waveform) (jitter, shimmer *float64)
}

// SonarLocalEstimator measures period perturbation with the sonido-sonar
// voice quality analyzer
type SonarLocalEstimator struct {
	logger logging.Logger
}

// NewSonarLocalEstimator creates a local estimator
func NewSonarLocalEstimator() *SonarLocalEstimator {
	return &SonarLocalEstimator{
		logger: logging.WithFields(logging.Fields{
			"component": "local_perturbation",
		}),
	}
}

// Local implements LocalEstimator. The analyzer needs about a second of
// periodic signal; anything it rejects yields nil summaries.
func (s *SonarLocalEstimator) Local(w audio.Waveform) (jitter, shimmer *float64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Voice quality analyzer panicked", logging.Fields{"panic": r})
			jitter, shimmer = nil, nil
		}
	}()

	result, err := speech.NewVoiceQualityAnalyzer(w.SampleRate).AnalyzeVoiceQuality(w.Samples)
	if err != nil {
		s.logger.Debug("Local perturbation unavailable", logging.Fields{"reason": err.Error()})
		return nil, nil
	}
	return finite(result.Jitter), finite(result.Shimmer)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
