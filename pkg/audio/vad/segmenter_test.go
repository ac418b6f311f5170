package vad

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constClassifier struct {
	speech bool
	err    error
}

func (c constClassifier) IsSpeech([]int16, int) (bool, error) {
	return c.speech, c.err
}

func constFactory(speech bool) ClassifierFactory {
	return func(int, int) (Classifier, error) {
		return constClassifier{speech: speech}, nil
	}
}

// scriptedClassifier answers from a fixed list of decisions
type scriptedClassifier struct {
	decisions []bool
	next      int
}

func (s *scriptedClassifier) IsSpeech([]int16, int) (bool, error) {
	d := s.decisions[s.next]
	s.next++
	return d, nil
}

func TestSegmentFullyVoiced(t *testing.T) {
	seg := NewSegmenter(constFactory(true))
	w := audio.NewMono(make([]float64, 16000), 16000)

	got, err := seg.Segment(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].Start, 1e-12)
	assert.InDelta(t, 1.0, got[0].End, 0.03)
}

func TestSegmentFullyUnvoiced(t *testing.T) {
	seg := NewSegmenter(constFactory(false))
	got, err := seg.Segment(context.Background(), audio.NewMono(make([]float64, 16000), 16000))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSegmentRuns(t *testing.T) {
	script := &scriptedClassifier{decisions: []bool{false, true, true, false, true}}
	seg := NewSegmenter(func(int, int) (Classifier, error) { return script, nil })

	// five full frames plus a partial one that must be ignored
	w := audio.NewMono(make([]float64, 5*480+100), 16000)
	got, err := seg.Segment(context.Background(), w)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.InDelta(t, 0.03, got[0].Start, 1e-12)
	assert.InDelta(t, 0.09, got[0].End, 1e-12)
	assert.InDelta(t, 0.12, got[1].Start, 1e-12)
	assert.InDelta(t, 0.15, got[1].End, 1e-12)
}

func TestSegmentShortAndEmptyInput(t *testing.T) {
	seg := NewSegmenter(constFactory(true))

	got, err := seg.Segment(context.Background(), audio.NewMono(nil, 16000))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = seg.Segment(context.Background(), audio.NewMono(make([]float64, 100), 16000))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentClassifierErrorIsRecoverable(t *testing.T) {
	seg := NewSegmenter(func(int, int) (Classifier, error) {
		return constClassifier{err: errors.New("bad frame")}, nil
	})
	got, err := seg.Segment(context.Background(), audio.NewMono(make([]float64, 16000), 16000))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentFallsBackForUnsupportedRate(t *testing.T) {
	loud := make([]float64, 22050)
	for i := range loud {
		loud[i] = 0.5 * math.Sin(2*math.Pi*200*float64(i)/22050)
	}

	seg := NewSegmenter(NewWebRTCFactory(DefaultMode))
	assert.True(t, seg.UsesFallback(22050))
	assert.False(t, seg.UsesFallback(16000))

	got, err := seg.Segment(context.Background(), audio.NewMono(loud, 22050))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].Start, 1e-12)

	noFallback := NewSegmenter(NewWebRTCFactory(DefaultMode), WithFallback(nil))
	got, err = noFallback.Segment(context.Background(), audio.NewMono(loud, 22050))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentWebRTCSilence(t *testing.T) {
	seg := NewSegmenter(NewWebRTCFactory(DefaultMode))
	got, err := seg.Segment(context.Background(), audio.NewMono(make([]float64, 16000), 16000))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seg := NewSegmenter(constFactory(true))
	_, err := seg.Segment(ctx, audio.NewMono(make([]float64, 16000), 16000))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerge(t *testing.T) {
	assert.Empty(t, Merge(nil, 0.03))
	assert.Equal(t, []audio.VoicedInterval{{Start: 0, End: 0.06}}, Merge([]bool{true, true}, 0.03))
}

func TestToPCM16(t *testing.T) {
	dst := make([]int16, 5)
	ToPCM16([]float64{0, 0.5, -1, 1.5, -2}, dst)
	assert.Equal(t, []int16{0, 16384, -32768, 32767, -32768}, dst)
}

func TestRMSClassifier(t *testing.T) {
	c := &RMSClassifier{threshold: DefaultEnergyThreshold}

	quiet, err := c.IsSpeech(make([]int16, 480), 16000)
	require.NoError(t, err)
	assert.False(t, quiet)

	frame := make([]int16, 480)
	for i := range frame {
		frame[i] = 8000
	}
	loud, err := c.IsSpeech(frame, 16000)
	require.NoError(t, err)
	assert.True(t, loud)
}
