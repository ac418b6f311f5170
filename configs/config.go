package configs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose   bool   `mapstructure:"verbose"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Audio         AudioConfig         `mapstructure:"audio"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	VAD           VADConfig           `mapstructure:"vad"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Render        RenderConfig        `mapstructure:"render"`
	Output        OutputConfig        `mapstructure:"output"`
}

// AudioConfig contains decoding and resampling settings
type AudioConfig struct {
	TargetSampleRate  int    `mapstructure:"target_sample_rate"`
	RequiredInputRate int    `mapstructure:"required_input_rate"`
	FFmpegPath        string `mapstructure:"ffmpeg_path"`
}

// AnalysisConfig contains feature pipeline settings
type AnalysisConfig struct {
	PitchFloor   float64          `mapstructure:"pitch_floor"`
	PitchCeiling float64          `mapstructure:"pitch_ceiling"`
	Concurrent   bool             `mapstructure:"concurrent"`
	SpeechRate   SpeechRateConfig `mapstructure:"speech_rate"`
	Formants     bool             `mapstructure:"formants"`
}

// SpeechRateConfig contains envelope peak picking settings
type SpeechRateConfig struct {
	ThresholdPercentile float64       `mapstructure:"threshold_percentile"`
	MinPeakDistance     time.Duration `mapstructure:"min_peak_distance"`
}

// VADConfig contains voice activity detection settings
type VADConfig struct {
	Mode            int           `mapstructure:"mode"`
	FrameDuration   time.Duration `mapstructure:"frame_duration"`
	EnergyThreshold float64       `mapstructure:"energy_threshold"`
	EnergyFallback  bool          `mapstructure:"energy_fallback"`
}

// TranscriptionConfig selects the speech recognition backend
type TranscriptionConfig struct {
	Provider string        `mapstructure:"provider"`
	URL      string        `mapstructure:"url"`
	Model    string        `mapstructure:"model"`
	Language string        `mapstructure:"language"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RenderConfig contains waveform image settings
type RenderConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Width   int  `mapstructure:"width"`
	Height  int  `mapstructure:"height"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Pretty bool   `mapstructure:"pretty"`
}

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"console", "json"}
	providers     = []string{"whisper", "openai", "none"}
	outputFormats = []string{"json", "yaml", "table", "csv"}
)

// LoadConfig fills unset keys with defaults and decodes v
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("log level must be one of %v, got %q", logLevels, c.LogLevel)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("log format must be one of %v, got %q", logFormats, c.LogFormat)
	}

	if c.Audio.TargetSampleRate <= 0 {
		return fmt.Errorf("audio target sample rate must be positive")
	}
	if c.Audio.RequiredInputRate < 0 {
		return fmt.Errorf("audio required input rate cannot be negative")
	}

	if c.Analysis.PitchFloor <= 0 || c.Analysis.PitchCeiling <= c.Analysis.PitchFloor {
		return fmt.Errorf("pitch band must satisfy 0 < floor < ceiling, got [%g, %g]",
			c.Analysis.PitchFloor, c.Analysis.PitchCeiling)
	}
	if p := c.Analysis.SpeechRate.ThresholdPercentile; p < 0 || p > 100 {
		return fmt.Errorf("speech rate threshold percentile must be between 0 and 100")
	}
	if c.Analysis.SpeechRate.MinPeakDistance <= 0 {
		return fmt.Errorf("speech rate minimum peak distance must be positive")
	}

	if c.VAD.Mode < 0 || c.VAD.Mode > 3 {
		return fmt.Errorf("vad mode must be between 0 and 3")
	}
	switch c.VAD.FrameDuration {
	case 10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond:
	default:
		return fmt.Errorf("vad frame duration must be 10ms, 20ms or 30ms, got %s", c.VAD.FrameDuration)
	}
	if c.VAD.EnergyThreshold < 0 {
		return fmt.Errorf("vad energy threshold cannot be negative")
	}

	if !slices.Contains(providers, c.Transcription.Provider) {
		return fmt.Errorf("transcription provider must be one of %v, got %q", providers, c.Transcription.Provider)
	}
	if c.Transcription.Timeout < 0 {
		return fmt.Errorf("transcription timeout cannot be negative")
	}

	if c.Render.Enabled && (c.Render.Width <= 0 || c.Render.Height <= 0) {
		return fmt.Errorf("render size must be positive")
	}

	if !slices.Contains(outputFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output format must be one of %v, got %q", outputFormats, c.Output.Format)
	}

	return nil
}
