// Package analysis runs the frame-synchronous feature pipeline over one
// waveform and assembles the FeatureSet.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/speech-analyzer/internal/observe"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/align"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/formant"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/perturbation"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/pitch"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/vad"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// Engine sequences the analyzers. It holds no per-call state, so one
// Engine may serve concurrent calls.
type Engine struct {
	pitchEstimator pitch.Estimator
	band           pitch.Band
	localEstimator perturbation.LocalEstimator
	perturbation   *perturbation.Estimator
	speechRate     *analyzers.SpeechRateEstimator
	segmenter      *vad.Segmenter
	aligner        *align.Aligner
	formants       formant.Estimator
	concurrent     bool
	metrics        *observe.Metrics
	logger         logging.Logger
}

// EngineConfig contains configuration for the analysis engine. Nil
// collaborators get their default implementations.
type EngineConfig struct {
	PitchFloor          float64
	PitchCeiling        float64
	ThresholdPercentile float64
	MinPeakDistance     time.Duration
	VADMode             int
	VADFrameDuration    time.Duration
	EnergyThreshold     float64
	EnergyFallback      bool
	Concurrent          bool
	Formants            bool

	PitchEstimator   pitch.Estimator
	LocalEstimator   perturbation.LocalEstimator
	ScaleDetector    perturbation.ScaleDetector
	Classifier       vad.ClassifierFactory
	FormantEstimator formant.Estimator
	Metrics          *observe.Metrics
	Logger           logging.Logger
}

// DefaultEngineConfig returns the standard pipeline settings
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		PitchFloor:          pitch.DefaultFloor,
		PitchCeiling:        pitch.DefaultCeiling,
		ThresholdPercentile: analyzers.DefaultThresholdPercentile,
		MinPeakDistance:     analyzers.DefaultMinPeakDistance,
		VADMode:             vad.DefaultMode,
		VADFrameDuration:    vad.DefaultFrameDuration,
		EnergyThreshold:     vad.DefaultEnergyThreshold,
		EnergyFallback:      true,
		Concurrent:          true,
	}
}

// NewEngine creates a new analysis engine
func NewEngine(config *EngineConfig) (*Engine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{"component": "analysis_engine"})
	}

	band := pitch.Band{Floor: config.PitchFloor, Ceiling: config.PitchCeiling}
	if _, err := pitch.NewTracker(pitch.NewSonarEstimator(), band); err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "invalid pitch settings", err)
	}

	speechRate, err := analyzers.NewSpeechRateEstimator(config.ThresholdPercentile, config.MinPeakDistance)
	if err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "invalid speech rate settings", err)
	}

	pitchEstimator := config.PitchEstimator
	if pitchEstimator == nil {
		pitchEstimator = pitch.NewSonarEstimator()
	}
	local := config.LocalEstimator
	if local == nil {
		local = perturbation.NewSonarLocalEstimator()
	}
	classifier := config.Classifier
	if classifier == nil {
		classifier = vad.NewWebRTCFactory(config.VADMode)
	}
	var fallback vad.ClassifierFactory
	if config.EnergyFallback {
		fallback = vad.NewRMSFactory(config.EnergyThreshold)
	}
	var formants formant.Estimator
	if config.Formants {
		formants = config.FormantEstimator
		if formants == nil {
			formants = formant.NewSonarEstimator(formant.DefaultSpan)
		}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = observe.Default()
	}

	return &Engine{
		pitchEstimator: pitchEstimator,
		band:           band,
		localEstimator: local,
		perturbation:   perturbation.NewEstimator(config.ScaleDetector),
		speechRate:     speechRate,
		segmenter: vad.NewSegmenter(classifier,
			vad.WithFrameDuration(config.VADFrameDuration),
			vad.WithFallback(fallback)),
		aligner:    align.NewAligner(),
		formants:   formants,
		concurrent: config.Concurrent,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// stageResults are the outputs of the four independent stages
type stageResults struct {
	pitch     audio.TimeSeries[float64]
	rms       audio.TimeSeries[float64]
	spectral  *analyzers.SpectralResult
	intervals []audio.VoicedInterval
}

// Analyze extracts the feature set of w without alignment
func (e *Engine) Analyze(ctx context.Context, w audio.Waveform) (*FeatureSet, error) {
	return e.run(ctx, w, nil)
}

// AnalyzeAndAlign extracts the feature set of w and aligns labels onto its
// voiced intervals. An empty label list yields an empty syllable list.
func (e *Engine) AnalyzeAndAlign(ctx context.Context, w audio.Waveform, labels []string) (*FeatureSet, error) {
	if labels == nil {
		labels = []string{}
	}
	return e.run(ctx, w, labels)
}

func (e *Engine) run(ctx context.Context, w audio.Waveform, labels []string) (*FeatureSet, error) {
	if err := w.Validate(); err != nil {
		e.metrics.RecordAnalysis(ctx, "invalid")
		return nil, err
	}

	logger := e.logger.WithFields(logging.Fields{
		"sample_rate": w.SampleRate,
		"samples":     len(w.Samples),
	})
	logger.Debug("Starting feature analysis")
	totalStart := time.Now()

	stages, err := e.runStages(ctx, w)
	if err != nil {
		e.metrics.RecordAnalysis(ctx, "canceled")
		return nil, audio.NewAnalysisError(audio.ErrCodeCanceled, "analysis canceled", err)
	}

	if stages.pitch.IsEmpty() {
		e.metrics.RecordFallback(ctx, "pitch")
	}

	start := time.Now()
	jitter, shimmer := e.perturbation.Instantaneous(stages.pitch, stages.rms)
	jitterLocal, shimmerLocal := e.localEstimator.Local(w)
	e.metrics.RecordStage(ctx, "perturbation", start)

	start = time.Now()
	geometry := audio.NewGeometry(w.SampleRate)
	duration := w.Duration()
	sps, _ := e.speechRate.Estimate(stages.rms, geometry.HopSeconds(), duration)
	e.metrics.RecordStage(ctx, "speech_rate", start)

	fs := &FeatureSet{
		Duration:         duration,
		SampleRate:       w.SampleRate,
		Pitch:            stages.pitch,
		JitterLocal:      jitterLocal,
		ShimmerLocal:     shimmerLocal,
		RMS:              stages.rms,
		Loudness:         analyzers.Loudness(stages.rms),
		Jitter:           jitter,
		Shimmer:          shimmer,
		ZCR:              stages.spectral.ZeroCrossingRate,
		SpectralCentroid: stages.spectral.Centroid,
		SpeechRateSPS:    sps,
		VoicedIntervals:  stages.intervals,
	}

	if labels != nil {
		alignment := e.aligner.Align(labels, stages.intervals, duration)
		if alignment.Strategy == align.StrategyUniform {
			e.metrics.RecordFallback(ctx, "alignment")
		}
		fs.Syllables = marks(alignment.Labels)
		fs.AlignmentStrategy = alignment.Strategy
	}

	if e.formants != nil {
		f, err := e.formants.Formants(w)
		if err != nil {
			logger.Debug("Formants unavailable", logging.Fields{"reason": err.Error()})
		}
		fs.Formants = &f
	}

	if err := ctx.Err(); err != nil {
		e.metrics.RecordAnalysis(ctx, "canceled")
		return nil, audio.NewAnalysisError(audio.ErrCodeCanceled, "analysis canceled", err)
	}

	e.metrics.RecordAnalysis(ctx, "ok")
	logger.Debug("Feature analysis completed", logging.Fields{
		"duration_s":      duration,
		"pitch_frames":    fs.Pitch.Len(),
		"voiced_segments": len(stages.intervals),
		"speech_rate_sps": sps,
		"processing_ms":   time.Since(totalStart).Milliseconds(),
	})
	return fs, nil
}

// runStages computes pitch, envelope, spectral features and voice
// activity. They share no data and may run in parallel; the call returns
// only after all four finish.
func (e *Engine) runStages(ctx context.Context, w audio.Waveform) (*stageResults, error) {
	res := &stageResults{}

	tracker, err := pitch.NewTracker(e.pitchEstimator, e.band)
	if err != nil {
		return nil, fmt.Errorf("failed to create pitch tracker: %w", err)
	}

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"pitch", func(ctx context.Context) error {
			res.pitch = tracker.Track(ctx, w)
			return nil
		}},
		{"envelope", func(context.Context) error {
			res.rms = analyzers.NewEnvelopeAnalyzer(w.SampleRate).RMS(w)
			return nil
		}},
		{"spectral", func(ctx context.Context) error {
			r, err := analyzers.NewSpectralAnalyzer(w.SampleRate).Analyze(ctx, w)
			res.spectral = r
			return err
		}},
		{"vad", func(ctx context.Context) error {
			if e.segmenter.UsesFallback(w.SampleRate) {
				e.metrics.RecordFallback(ctx, "vad")
			}
			iv, err := e.segmenter.Segment(ctx, w)
			res.intervals = iv
			return err
		}},
	}

	timed := func(ctx context.Context, name string, fn func(context.Context) error) error {
		start := time.Now()
		defer e.metrics.RecordStage(ctx, name, start)
		return fn(ctx)
	}

	if !e.concurrent {
		for _, s := range stages {
			if err := timed(ctx, s.name, s.fn); err != nil {
				return nil, err
			}
		}
		return res, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range stages {
		g.Go(func() error {
			return timed(gctx, s.name, s.fn)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, ctx.Err()
}
