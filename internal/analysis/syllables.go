package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/align"
	"github.com/RyanBlaney/speech-analyzer/pkg/codec"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
	"github.com/RyanBlaney/speech-analyzer/pkg/render"
	"github.com/RyanBlaney/speech-analyzer/pkg/syllable"
	"github.com/RyanBlaney/speech-analyzer/pkg/transcribe"
)

// DefaultTargetRate is the rate recordings are analyzed and transcribed at
const DefaultTargetRate = 16000

// SyllableReport is the result of a diadochokinetic (pa-ta-ka) session
type SyllableReport struct {
	Transcript        string         `json:"transcript" yaml:"transcript"`
	Syllables         []SyllableMark `json:"syllables" yaml:"syllables"`
	AlignmentStrategy align.Strategy `json:"alignment_strategy" yaml:"alignment_strategy"`
	Duration          float64        `json:"duration" yaml:"duration"`
	WaveformPNG       string         `json:"waveform_png,omitempty" yaml:"waveform_png,omitempty"`
	Features          *FeatureSet    `json:"features,omitempty" yaml:"features,omitempty"`
}

// SessionConfig wires the collaborators of a syllable session
type SessionConfig struct {
	// RequiredInputRate rejects recordings at any other rate. Zero accepts all.
	RequiredInputRate int
	TargetRate        int
	IncludeFeatures   bool

	Transcriber transcribe.Transcriber
	Splitter    syllable.Splitter
	// Renderer is optional; nil disables the waveform image
	Renderer render.Renderer
	Logger   logging.Logger
}

// SyllableSession transcribes a repeated-syllable recording, splits the
// transcript into syllables and places each one on the recording
type SyllableSession struct {
	engine *Engine
	config SessionConfig
	logger logging.Logger
}

func NewSyllableSession(engine *Engine, config SessionConfig) (*SyllableSession, error) {
	if engine == nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "syllable session needs an engine", nil)
	}
	if config.Transcriber == nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "syllable session needs a transcriber", nil)
	}
	if config.TargetRate == 0 {
		config.TargetRate = DefaultTargetRate
	}
	if config.TargetRate < 0 || config.RequiredInputRate < 0 {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig,
			fmt.Sprintf("invalid sample rates: target=%d required=%d", config.TargetRate, config.RequiredInputRate), nil)
	}
	if config.Splitter == nil {
		config.Splitter = syllable.NewTamilPatakaSplitter()
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{"component": "syllable_session"})
	}

	return &SyllableSession{
		engine: engine,
		config: config,
		logger: logger,
	}, nil
}

// Process runs the session over one recording
func (s *SyllableSession) Process(ctx context.Context, w audio.Waveform) (*SyllableReport, error) {
	w = w.Mono()
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if s.config.RequiredInputRate > 0 && w.SampleRate != s.config.RequiredInputRate {
		return nil, audio.NewAnalysisError(audio.ErrCodeInvalidInput,
			fmt.Sprintf("recording must be sampled at %d Hz, got %d Hz", s.config.RequiredInputRate, w.SampleRate), nil)
	}

	start := time.Now()
	resampled, err := codec.Resample(w, s.config.TargetRate)
	if err != nil {
		return nil, err
	}

	text, err := s.config.Transcriber.Transcribe(ctx, resampled)
	if err != nil {
		if audio.IsCanceled(err) {
			return nil, audio.NewAnalysisError(audio.ErrCodeCanceled, "syllable session canceled", err)
		}
		return nil, audio.NewAnalysisError(audio.ErrCodeTranscription, "transcription failed", err)
	}

	labels := s.config.Splitter.Split(text)
	s.logger.Debug("Transcript split into syllables", logging.Fields{
		"transcript": text,
		"syllables":  len(labels),
	})

	fs, err := s.engine.AnalyzeAndAlign(ctx, resampled, labels)
	if err != nil {
		return nil, err
	}

	report := &SyllableReport{
		Transcript:        text,
		Syllables:         fs.Syllables,
		AlignmentStrategy: fs.AlignmentStrategy,
		Duration:          Round2(fs.Duration),
	}
	if s.config.IncludeFeatures {
		report.Features = fs
	}

	if s.config.Renderer != nil {
		marks := make([]audio.TimedLabel, len(fs.Syllables))
		for i, m := range fs.Syllables {
			marks[i] = audio.TimedLabel{Label: m.Text, Time: m.Time}
		}
		png, err := s.config.Renderer.Render(resampled, marks)
		if err != nil {
			return nil, audio.NewAnalysisError(audio.ErrCodeRender, "waveform rendering failed", err)
		}
		report.WaveformPNG = base64.StdEncoding.EncodeToString(png)
	}

	s.logger.Info("Syllable session completed", logging.Fields{
		"syllables":     len(report.Syllables),
		"strategy":      report.AlignmentStrategy,
		"duration_s":    report.Duration,
		"processing_ms": time.Since(start).Milliseconds(),
	})
	return report, nil
}
