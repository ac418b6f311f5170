package app

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/codec"
)

func writeTone(t *testing.T, dir string, sampleRate int, seconds float64) string {
	t.Helper()
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		tt := float64(i) / float64(sampleRate)
		samples[i] = (0.5 + 0.3*math.Sin(math.Pi*tt/seconds)) * math.Sin(2*math.Pi*150*tt)
	}
	data, err := codec.EncodeWAV(audio.NewMono(samples, sampleRate))
	require.NoError(t, err)

	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func newTestApp(t *testing.T, v *viper.Viper, outFile string) *App {
	t.Helper()
	v.Set("audio.ffmpeg_path", "")
	a, err := NewApp(&Context{OutputFile: outFile, OutputFormat: "json"}, v)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestAnalyzeWritesFeatureSet(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, 32000, 1.0)
	out := filepath.Join(dir, "results", "features.json")

	a := newTestApp(t, viper.New(), out)
	require.NoError(t, a.Analyze(context.Background(), in, []string{"pa"}))

	got := readJSON(t, out)
	assert.InDelta(t, 1.0, got["duration"], 1e-9)
	assert.Equal(t, 16000.0, got["sample_rate"])
	assert.InDelta(t, 1.0, got["speech_rate_sps"], 1e-9)
	assert.Contains(t, got, "spectralCentroid")
	assert.Contains(t, got, "syllables")
	assert.NotContains(t, got, "formants")
}

func TestSyllablesWithWhisperServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "பா டா கா"})
	}))
	defer srv.Close()

	dir := t.TempDir()
	in := writeTone(t, dir, 48000, 1.0)
	out := filepath.Join(dir, "report.json")

	v := viper.New()
	v.Set("transcription.provider", "whisper")
	v.Set("transcription.url", srv.URL)
	v.Set("audio.required_input_rate", 48000)
	a := newTestApp(t, v, out)

	require.NoError(t, a.Syllables(context.Background(), in, true, false))

	got := readJSON(t, out)
	assert.Equal(t, "பா டா கா", got["transcript"])
	assert.Len(t, got["syllables"], 3)
	assert.Equal(t, 1.0, got["duration"])
	assert.NotEmpty(t, got["waveform_png"])
	assert.NotContains(t, got, "features")
}

func TestSyllablesNeedsProvider(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, 16000, 0.5)

	a := newTestApp(t, viper.New(), filepath.Join(dir, "out.json"))
	err := a.Syllables(context.Background(), in, false, false)
	require.Error(t, err)
	assert.True(t, audio.IsCollaboratorError(err))
}

func TestVowelReport(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, 16000, 0.5)
	out := filepath.Join(dir, "vowel.json")

	a := newTestApp(t, viper.New(), out)
	require.NoError(t, a.Vowel(context.Background(), in))

	got := readJSON(t, out)
	assert.Equal(t, 0.5, got["duration"])
	assert.Contains(t, got, "formants")
}

func TestDecodeMissingFile(t *testing.T) {
	a := newTestApp(t, viper.New(), "")
	_, err := a.Decode(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.True(t, audio.IsCollaboratorError(err))
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	v := viper.New()
	v.Set("vad.mode", 9)

	_, err := NewApp(&Context{}, v)
	require.Error(t, err)
	assert.True(t, audio.IsCollaboratorError(err))
	assert.Contains(t, err.Error(), "vad mode")
}

func TestEngineConfigFollowsSettings(t *testing.T) {
	v := viper.New()
	v.Set("analysis.pitch_ceiling", 400.0)
	v.Set("analysis.concurrent", false)
	a := newTestApp(t, v, "")

	cfg := a.engineConfig(true)
	assert.Equal(t, 400.0, cfg.PitchCeiling)
	assert.False(t, cfg.Concurrent)
	assert.True(t, cfg.Formants)
	assert.Equal(t, 2, cfg.VADMode)
	assert.NotNil(t, cfg.Metrics)
}
