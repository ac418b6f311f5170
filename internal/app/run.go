package app

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/RyanBlaney/speech-analyzer/internal/analysis"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/formant"
	"github.com/RyanBlaney/speech-analyzer/pkg/codec"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
	"github.com/RyanBlaney/speech-analyzer/pkg/render"
	"github.com/RyanBlaney/speech-analyzer/pkg/syllable"
	"github.com/RyanBlaney/speech-analyzer/pkg/transcribe"
)

var lookPath = exec.LookPath

// VowelReport holds the formants of a sustained vowel
type VowelReport struct {
	Duration float64          `json:"duration" yaml:"duration"`
	Formants formant.Formants `json:"formants" yaml:"formants"`
}

// Analyze extracts the feature set of an audio file. Non-empty labels are
// aligned onto the voiced segments.
func (a *App) Analyze(ctx context.Context, path string, labels []string) error {
	w, err := a.prepare(ctx, path)
	if err != nil {
		return err
	}

	engine, err := a.NewEngine(false)
	if err != nil {
		return err
	}

	var fs *analysis.FeatureSet
	if len(labels) > 0 {
		fs, err = engine.AnalyzeAndAlign(ctx, w, labels)
	} else {
		fs, err = engine.Analyze(ctx, w)
	}
	if err != nil {
		return err
	}

	a.logMetrics(ctx)
	return a.outputResults(fs)
}

// Syllables runs a pa-ta-ka session over an audio file
func (a *App) Syllables(ctx context.Context, path string, renderImage, includeFeatures bool) error {
	w, err := a.Decode(ctx, path)
	if err != nil {
		return err
	}

	engine, err := a.NewEngine(false)
	if err != nil {
		return err
	}

	tc := a.config.Transcription
	transcriber, err := transcribe.New(transcribe.Config{
		Provider: transcribe.Provider(tc.Provider),
		URL:      tc.URL,
		Model:    tc.Model,
		Language: tc.Language,
		APIKey:   tc.APIKey,
		Timeout:  tc.Timeout,
	})
	if err != nil {
		return err
	}
	if transcriber == nil {
		return audio.NewAnalysisError(audio.ErrCodeConfig,
			"syllable sessions need a transcription provider (transcription.provider)", nil)
	}

	var renderer render.Renderer
	if renderImage || a.config.Render.Enabled {
		renderer, err = render.NewPNGRenderer(a.config.Render.Width, a.config.Render.Height)
		if err != nil {
			return err
		}
	}

	session, err := analysis.NewSyllableSession(engine, analysis.SessionConfig{
		RequiredInputRate: a.config.Audio.RequiredInputRate,
		TargetRate:        a.config.Audio.TargetSampleRate,
		IncludeFeatures:   includeFeatures,
		Transcriber:       transcriber,
		Splitter:          syllable.NewTamilPatakaSplitter(),
		Renderer:          renderer,
	})
	if err != nil {
		return err
	}

	report, err := session.Process(ctx, w)
	if err != nil {
		return err
	}

	a.logMetrics(ctx)
	return a.outputResults(report)
}

// Vowel measures the first two formants at the middle of a recording
func (a *App) Vowel(ctx context.Context, path string) error {
	w, err := a.prepare(ctx, path)
	if err != nil {
		return err
	}

	f, err := formant.NewSonarEstimator(formant.DefaultSpan).Formants(w)
	if err != nil {
		a.logger.Warn("Formant estimation failed", logging.Fields{"reason": err.Error()})
	}

	return a.outputResults(&VowelReport{
		Duration: analysis.Round2(w.Duration()),
		Formants: f,
	})
}

// prepare decodes path and brings it to the analysis rate
func (a *App) prepare(ctx context.Context, path string) (audio.Waveform, error) {
	w, err := a.Decode(ctx, path)
	if err != nil {
		return audio.Waveform{}, err
	}
	resampled, err := codec.Resample(w, a.config.Audio.TargetSampleRate)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("failed to resample input: %w", err)
	}
	return resampled, nil
}
