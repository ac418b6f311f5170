package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/speech-analyzer/configs"
	"github.com/RyanBlaney/speech-analyzer/internal/analysis"
	"github.com/RyanBlaney/speech-analyzer/internal/observe"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/codec"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
	"github.com/RyanBlaney/speech-analyzer/pkg/output"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	OutputFile   string
	OutputFormat string
	Verbose      bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App handles the analyzer application lifecycle
type App struct {
	ctx      *Context
	config   *configs.Config
	provider *observe.Provider
	metrics  *observe.Metrics
	decoders *codec.Factory
	logger   logging.Logger
}

// NewApp creates a new application from the bound viper configuration
func NewApp(ctx *Context, v *viper.Viper) (*App, error) {
	config, err := loadConfig(ctx, v)
	if err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "failed to load configuration", err)
	}
	ctx.Config = config

	logger := setupLogging(config)
	ctx.Logger = logger

	provider := observe.NewProvider()
	metrics, err := observe.NewMetrics(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	ffmpeg := config.Audio.FFmpegPath
	if ffmpeg != "" {
		if _, err := lookPath(ffmpeg); err != nil {
			logger.Debug("ffmpeg not available, only wav and mp3 input is supported", logging.Fields{
				"ffmpeg_path": ffmpeg,
			})
			ffmpeg = ""
		}
	}

	logger.Debug("Application initialized", logging.Fields{
		"output_format":  config.Output.Format,
		"output_file":    ctx.OutputFile,
		"target_rate":    config.Audio.TargetSampleRate,
		"transcription":  config.Transcription.Provider,
		"concurrent":     config.Analysis.Concurrent,
		"ffmpeg_enabled": ffmpeg != "",
	})

	return &App{
		ctx:      ctx,
		config:   config,
		provider: provider,
		metrics:  metrics,
		decoders: codec.NewFactory(ffmpeg, config.Audio.TargetSampleRate),
		logger:   logger,
	}, nil
}

// Config returns the validated configuration
func (a *App) Config() *configs.Config {
	return a.config
}

// setupLogging configures logging based on configuration
func setupLogging(config *configs.Config) logging.Logger {
	logging.SetFormat(config.LogFormat)
	level := config.LogLevel
	if config.Verbose && level == "info" {
		level = "debug"
	}
	logging.SetLevel(level)
	return logging.WithFields(logging.Fields{"component": "app"})
}

// loadConfig loads configuration and merges CLI overrides
func loadConfig(ctx *Context, v *viper.Viper) (*configs.Config, error) {
	config, err := configs.LoadConfig(v)
	if err != nil {
		return nil, err
	}

	if ctx.OutputFormat != "" {
		config.Output.Format = strings.ToLower(ctx.OutputFormat)
	}
	if ctx.Verbose {
		config.Verbose = true
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// NewEngine builds an analysis engine from configuration
func (a *App) NewEngine(formants bool) (*analysis.Engine, error) {
	return analysis.NewEngine(a.engineConfig(formants))
}

func (a *App) engineConfig(formants bool) *analysis.EngineConfig {
	c := a.config
	return &analysis.EngineConfig{
		PitchFloor:          c.Analysis.PitchFloor,
		PitchCeiling:        c.Analysis.PitchCeiling,
		ThresholdPercentile: c.Analysis.SpeechRate.ThresholdPercentile,
		MinPeakDistance:     c.Analysis.SpeechRate.MinPeakDistance,
		VADMode:             c.VAD.Mode,
		VADFrameDuration:    c.VAD.FrameDuration,
		EnergyThreshold:     c.VAD.EnergyThreshold,
		EnergyFallback:      c.VAD.EnergyFallback,
		Concurrent:          c.Analysis.Concurrent,
		Formants:            formants || c.Analysis.Formants,
		Metrics:             a.metrics,
	}
}

// Decode reads and decodes an audio file to mono
func (a *App) Decode(ctx context.Context, path string) (audio.Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to open audio file", err)
	}
	defer f.Close()

	w, err := a.decoders.DetectAndDecode(ctx, f)
	if err != nil {
		return audio.Waveform{}, err
	}

	a.logger.Debug("Audio decoded", logging.Fields{
		"path":        path,
		"sample_rate": w.SampleRate,
		"duration_s":  w.Duration(),
	})
	return w, nil
}

// outputResults formats data and writes it to the output file or stdout
func (a *App) outputResults(data any) error {
	formatter, err := output.NewFormatter(a.config.Output.Format)
	if err != nil {
		return audio.NewAnalysisError(audio.ErrCodeConfig, "invalid output format", err)
	}

	formattedData, err := formatter.Format(data, a.config.Output.Pretty)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if a.ctx.OutputFile != "" {
		return a.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// writeToFile writes data to the specified output file
func (a *App) writeToFile(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(a.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(a.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	a.logger.Debug("Results written to file", logging.Fields{
		"output_file": a.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// logMetrics logs the collected pipeline metrics in verbose mode
func (a *App) logMetrics(ctx context.Context) {
	if !a.config.Verbose {
		return
	}
	snapshot, err := a.provider.Snapshot(ctx)
	if err != nil {
		a.logger.Warn("Failed to collect metrics", logging.Fields{"error": err.Error()})
		return
	}
	fields := make(logging.Fields, len(snapshot))
	for k, v := range snapshot {
		fields[k] = v
	}
	a.logger.Info("Pipeline metrics", fields)
}

// Close flushes the metrics provider
func (a *App) Close(ctx context.Context) error {
	return a.provider.Shutdown(ctx)
}
