package audio

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaveformValidate(t *testing.T) {
	tests := []struct {
		name    string
		wave    Waveform
		wantErr bool
	}{
		{"valid mono", NewMono([]float64{0, 0.1}, 16000), false},
		{"stereo", Waveform{Samples: []float64{0, 0}, SampleRate: 16000, Channels: 2}, true},
		{"empty", NewMono(nil, 16000), true},
		{"zero rate", NewMono([]float64{0}, 0), true},
		{"negative rate", NewMono([]float64{0}, -8000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wave.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsInputError(err))
				assert.False(t, IsCollaboratorError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWaveformMonoAndDuration(t *testing.T) {
	stereo := Waveform{
		Samples:    []float64{1, 0, 0.5, 0.5, -1, 1},
		SampleRate: 3,
		Channels:   2,
	}

	assert.InDelta(t, 1.0, stereo.Duration(), 1e-12)

	mono := stereo.Mono()
	assert.Equal(t, 1, mono.Channels)
	assert.Equal(t, []float64{0.5, 0.5, 0}, mono.Samples)
}

func TestErrorClassification(t *testing.T) {
	decodeErr := NewAnalysisError(ErrCodeDecode, "bad header", fmt.Errorf("eof"))
	wrapped := fmt.Errorf("load: %w", decodeErr)

	assert.True(t, IsCollaboratorError(wrapped))
	assert.False(t, IsInputError(wrapped))
	assert.Equal(t, "bad header: eof", decodeErr.Error())

	assert.True(t, IsCanceled(fmt.Errorf("stage: %w", context.Canceled)))
	assert.True(t, IsCanceled(NewAnalysisError(ErrCodeCanceled, "analysis canceled", nil)))
	assert.False(t, IsCanceled(decodeErr))
}

func TestVoicedIntervalMidpoint(t *testing.T) {
	assert.InDelta(t, 0.25, VoicedInterval{Start: 0.1, End: 0.4}.Midpoint(), 1e-12)
}
