package configs

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(viper.New())
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, 16000, config.Audio.TargetSampleRate)
	assert.Equal(t, 0, config.Audio.RequiredInputRate)
	assert.Equal(t, 75.0, config.Analysis.PitchFloor)
	assert.Equal(t, 600.0, config.Analysis.PitchCeiling)
	assert.True(t, config.Analysis.Concurrent)
	assert.Equal(t, 100.0, config.Analysis.SpeechRate.ThresholdPercentile)
	assert.Equal(t, 80*time.Millisecond, config.Analysis.SpeechRate.MinPeakDistance)
	assert.Equal(t, 2, config.VAD.Mode)
	assert.Equal(t, 30*time.Millisecond, config.VAD.FrameDuration)
	assert.Equal(t, "none", config.Transcription.Provider)
	assert.Equal(t, "ta", config.Transcription.Language)
	assert.Equal(t, "json", config.Output.Format)
}

func TestLoadConfigFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
log_level: debug
audio:
  required_input_rate: 48000
analysis:
  pitch_ceiling: 400
  speech_rate:
    threshold_percentile: 90
    min_peak_distance: 120ms
vad:
  mode: 3
  frame_duration: 20ms
transcription:
  provider: whisper
  url: http://whisper:8080
`)))

	config, err := LoadConfig(v)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 48000, config.Audio.RequiredInputRate)
	assert.Equal(t, 75.0, config.Analysis.PitchFloor)
	assert.Equal(t, 400.0, config.Analysis.PitchCeiling)
	assert.Equal(t, 90.0, config.Analysis.SpeechRate.ThresholdPercentile)
	assert.Equal(t, 120*time.Millisecond, config.Analysis.SpeechRate.MinPeakDistance)
	assert.Equal(t, 3, config.VAD.Mode)
	assert.Equal(t, 20*time.Millisecond, config.VAD.FrameDuration)
	assert.Equal(t, "whisper", config.Transcription.Provider)
	assert.Equal(t, "http://whisper:8080", config.Transcription.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"pitch band inverted", func(c *Config) { c.Analysis.PitchFloor = 700 }, "pitch band"},
		{"percentile above 100", func(c *Config) { c.Analysis.SpeechRate.ThresholdPercentile = 101 }, "percentile"},
		{"zero peak distance", func(c *Config) { c.Analysis.SpeechRate.MinPeakDistance = 0 }, "peak distance"},
		{"vad mode", func(c *Config) { c.VAD.Mode = 4 }, "vad mode"},
		{"vad frame", func(c *Config) { c.VAD.FrameDuration = 25 * time.Millisecond }, "frame duration"},
		{"provider", func(c *Config) { c.Transcription.Provider = "vosk" }, "provider"},
		{"render size", func(c *Config) { c.Render.Enabled = true; c.Render.Width = 0 }, "render size"},
		{"output format", func(c *Config) { c.Output.Format = "xml" }, "output format"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log level"},
		{"target rate", func(c *Config) { c.Audio.TargetSampleRate = 0 }, "target sample rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(viper.New())
			require.NoError(t, err)
			tt.mutate(config)

			err = config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
