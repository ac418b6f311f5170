// Package render draws waveform images for reports.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

const (
	DefaultWidth  = 1000
	DefaultHeight = 300
)

// Renderer produces an encoded image of a waveform with timed markers
type Renderer interface {
	Render(w audio.Waveform, marks []audio.TimedLabel) ([]byte, error)
}

// PNGRenderer draws a min/max envelope per pixel column and a vertical
// line per marker
type PNGRenderer struct {
	Width      int
	Height     int
	Background color.Color
	Trace      color.Color
	Marker     color.Color
}

func NewPNGRenderer(width, height int) (*PNGRenderer, error) {
	if width <= 0 || height <= 0 {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig,
			fmt.Sprintf("render size must be positive, got %dx%d", width, height), nil)
	}
	return &PNGRenderer{
		Width:      width,
		Height:     height,
		Background: color.White,
		Trace:      color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		Marker:     color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	}, nil
}

func (r *PNGRenderer) Render(w audio.Waveform, marks []audio.TimedLabel) ([]byte, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: r.Background}, image.Point{}, draw.Src)

	mid := r.Height / 2
	for x := range r.Width {
		img.Set(x, mid, r.Trace)
	}

	n := len(w.Samples)
	for x := range r.Width {
		lo := x * n / r.Width
		hi := (x + 1) * n / r.Width
		if hi <= lo {
			hi = lo + 1
		}
		if lo >= n {
			break
		}
		column := w.Samples[lo:min(hi, n)]
		yTop := r.toY(floats.Max(column))
		yBottom := r.toY(floats.Min(column))
		for y := yTop; y <= yBottom; y++ {
			img.Set(x, y, r.Trace)
		}
	}

	duration := w.Duration()
	for _, m := range marks {
		if duration <= 0 || m.Time < 0 || m.Time > duration {
			continue
		}
		x := min(int(m.Time/duration*float64(r.Width)), r.Width-1)
		for y := range r.Height {
			img.Set(x, y, r.Marker)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeRender, "failed to encode png", err)
	}
	return buf.Bytes(), nil
}

// toY maps an amplitude in [-1, 1] to a pixel row, clipping outliers
func (r *PNGRenderer) toY(v float64) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	y := int((1 - v) / 2 * float64(r.Height-1))
	return max(0, min(y, r.Height-1))
}
