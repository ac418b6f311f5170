package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestPNGRenderer(t *testing.T) {
	samples := make([]float64, 16000)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*5*float64(i)/16000)
	}
	w := audio.NewMono(samples, 16000)

	r, err := NewPNGRenderer(200, 100)
	require.NoError(t, err)

	data, err := r.Render(w, []audio.TimedLabel{{Label: "pa", Time: 0.5}, {Label: "late", Time: 3}})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	// marker at half the duration spans the full height
	assert.True(t, sameColor(r.Marker, img.At(100, 0)))
	assert.True(t, sameColor(r.Marker, img.At(100, 99)))

	// no envelope reaches the top row away from markers
	assert.True(t, sameColor(r.Background, img.At(10, 0)))
	// the zero line is always drawn
	assert.True(t, sameColor(r.Trace, img.At(150, 50)))
}

func TestPNGRenderer_Errors(t *testing.T) {
	_, err := NewPNGRenderer(0, 10)
	assert.True(t, audio.IsCollaboratorError(err))

	r, err := NewPNGRenderer(10, 10)
	require.NoError(t, err)
	_, err = r.Render(audio.NewMono(nil, 16000), nil)
	assert.True(t, audio.IsInputError(err))
}

func TestPNGRenderer_ShortWaveform(t *testing.T) {
	r, err := NewPNGRenderer(50, 20)
	require.NoError(t, err)

	data, err := r.Render(audio.NewMono([]float64{0.5, -0.5, 1.5}, 16000), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
