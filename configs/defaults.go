package configs

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.SetDefault("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.SetDefault("log_level", "info")
	}
	if !v.IsSet("log_format") {
		v.SetDefault("log_format", "console")
	}

	// Audio defaults
	if !v.IsSet("audio.target_sample_rate") {
		v.SetDefault("audio.target_sample_rate", 16000)
	}
	if !v.IsSet("audio.required_input_rate") {
		v.SetDefault("audio.required_input_rate", 0)
	}
	if !v.IsSet("audio.ffmpeg_path") {
		v.SetDefault("audio.ffmpeg_path", "ffmpeg")
	}

	// Analysis defaults
	if !v.IsSet("analysis.pitch_floor") {
		v.SetDefault("analysis.pitch_floor", 75.0)
	}
	if !v.IsSet("analysis.pitch_ceiling") {
		v.SetDefault("analysis.pitch_ceiling", 600.0)
	}
	if !v.IsSet("analysis.concurrent") {
		v.SetDefault("analysis.concurrent", true)
	}
	if !v.IsSet("analysis.speech_rate.threshold_percentile") {
		v.SetDefault("analysis.speech_rate.threshold_percentile", 100.0)
	}
	if !v.IsSet("analysis.speech_rate.min_peak_distance") {
		v.SetDefault("analysis.speech_rate.min_peak_distance", 80*time.Millisecond)
	}
	if !v.IsSet("analysis.formants") {
		v.SetDefault("analysis.formants", false)
	}

	// VAD defaults
	if !v.IsSet("vad.mode") {
		v.SetDefault("vad.mode", 2)
	}
	if !v.IsSet("vad.frame_duration") {
		v.SetDefault("vad.frame_duration", 30*time.Millisecond)
	}
	if !v.IsSet("vad.energy_threshold") {
		v.SetDefault("vad.energy_threshold", 0.015)
	}
	if !v.IsSet("vad.energy_fallback") {
		v.SetDefault("vad.energy_fallback", true)
	}

	// Transcription defaults
	if !v.IsSet("transcription.provider") {
		v.SetDefault("transcription.provider", "none")
	}
	if !v.IsSet("transcription.url") {
		v.SetDefault("transcription.url", "http://127.0.0.1:8080")
	}
	if !v.IsSet("transcription.model") {
		v.SetDefault("transcription.model", "")
	}
	if !v.IsSet("transcription.language") {
		v.SetDefault("transcription.language", "ta")
	}
	if !v.IsSet("transcription.api_key") {
		v.SetDefault("transcription.api_key", "")
	}
	if !v.IsSet("transcription.timeout") {
		v.SetDefault("transcription.timeout", 60*time.Second)
	}

	// Render defaults
	if !v.IsSet("render.enabled") {
		v.SetDefault("render.enabled", false)
	}
	if !v.IsSet("render.width") {
		v.SetDefault("render.width", 1000)
	}
	if !v.IsSet("render.height") {
		v.SetDefault("render.height", 300)
	}

	// Output defaults
	if !v.IsSet("output.format") {
		v.SetDefault("output.format", "json")
	}
	if !v.IsSet("output.pretty") {
		v.SetDefault("output.pretty", true)
	}
}
