// Package pitch tracks fundamental frequency over a waveform.
//
// The F0 algorithm itself sits behind the Estimator interface. Tracker adds
// failure isolation and output normalization on top of it: whatever the
// estimator does, callers get either a well-formed series restricted to the
// configured band or an empty series.
package pitch

import (
	"context"
	"fmt"
	"math"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// Default voice band in Hz
const (
	DefaultFloor   = 75.0
	DefaultCeiling = 600.0
)

// Band is the plausible F0 range in Hz
type Band struct {
	Floor   float64
	Ceiling float64
}

// DefaultBand returns the 75..600 Hz human voice band
func DefaultBand() Band {
	return Band{Floor: DefaultFloor, Ceiling: DefaultCeiling}
}

// Contains reports whether f lies inside the band
func (b Band) Contains(f float64) bool {
	return f >= b.Floor && f <= b.Ceiling
}

// Estimator produces raw F0 estimates in Hz. Unvoiced frames may be
// reported as 0.
type Estimator interface {
	EstimateF0(ctx context.Context, w audio.Waveform, band Band) (audio.TimeSeries[float64], error)
}

// Tracker wraps an Estimator with failure isolation
type Tracker struct {
	estimator Estimator
	band      Band
	logger    logging.Logger
}

// NewTracker creates a tracker over estimator restricted to band
func NewTracker(estimator Estimator, band Band) (*Tracker, error) {
	if estimator == nil {
		return nil, fmt.Errorf("pitch estimator is required")
	}
	if band.Floor <= 0 || band.Ceiling <= band.Floor {
		return nil, fmt.Errorf("invalid pitch band %.1f..%.1f Hz", band.Floor, band.Ceiling)
	}
	return &Tracker{
		estimator: estimator,
		band:      band,
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_tracker",
			"floor":     band.Floor,
			"ceiling":   band.Ceiling,
		}),
	}, nil
}

// Track returns the F0 series for w. It never fails: if the estimator
// errors, panics or returns a malformed series, the result is empty.
// Frames outside the band or with non-finite values are reported as 0.
func (t *Tracker) Track(ctx context.Context, w audio.Waveform) audio.TimeSeries[float64] {
	raw, err := t.estimate(ctx, w)
	if err != nil {
		t.logger.Warn("Pitch tracking failed, continuing without pitch", logging.Fields{
			"error":    err.Error(),
			"duration": w.Duration(),
		})
		return audio.EmptySeries[float64]()
	}

	if len(raw.Times) != len(raw.Values) {
		t.logger.Warn("Pitch estimator returned mismatched series", logging.Fields{
			"times":  len(raw.Times),
			"values": len(raw.Values),
		})
		return audio.EmptySeries[float64]()
	}

	return t.normalize(raw)
}

func (t *Tracker) estimate(ctx context.Context, w audio.Waveform) (ts audio.TimeSeries[float64], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pitch estimator panicked: %v", r)
		}
	}()
	return t.estimator.EstimateF0(ctx, w, t.band)
}

func (t *Tracker) normalize(raw audio.TimeSeries[float64]) audio.TimeSeries[float64] {
	out := audio.TimeSeries[float64]{
		Times:  make([]float64, raw.Len()),
		Values: make([]float64, raw.Len()),
	}
	copy(out.Times, raw.Times)

	voiced := 0
	for i, f := range raw.Values {
		if math.IsNaN(f) || math.IsInf(f, 0) || !t.band.Contains(f) {
			continue
		}
		out.Values[i] = f
		voiced++
	}

	t.logger.Debug("Pitch tracked", logging.Fields{
		"frames": out.Len(),
		"voiced": voiced,
	})
	return audio.Sorted(out)
}
